package session

import (
	"fmt"
	"slices"

	"github.com/monbattle/engine/internal/engine"
	"github.com/monbattle/engine/pkg/core"
)

func (s *Session) quantity(itemID int) int {
	for _, e := range s.state.Bag {
		if e.ItemID == itemID {
			return e.Quantity
		}
	}
	return 0
}

func (s *Session) addItem(itemID, n int) {
	for i, e := range s.state.Bag {
		if e.ItemID == itemID {
			s.state.Bag[i].Quantity += n
			return
		}
	}
	s.state.Bag = append(s.state.Bag, core.BagEntry{ItemID: itemID, Quantity: n})
}

// removeItem drops n units; empty stacks leave the bag.
func (s *Session) removeItem(itemID, n int) {
	for i, e := range s.state.Bag {
		if e.ItemID != itemID {
			continue
		}
		if e.Quantity <= n {
			s.state.Bag = slices.Delete(s.state.Bag, i, i+1)
		} else {
			s.state.Bag[i].Quantity -= n
		}
		return
	}
}

func (s *Session) noneLeft(itemID int) error {
	it, err := s.deps.Catalog.Item(itemID)
	if err != nil {
		return reject("You don't have that item!")
	}
	return reject("You don't have any %ss left!", it.Name)
}

// UseItem uses a bag item on a party member outside battle. moveSlot is
// read by single-move PP items only.
func (s *Session) UseItem(itemID, partyIdx, moveSlot int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireField(); err != nil {
		return nil, err
	}
	if s.quantity(itemID) == 0 {
		return nil, s.noneLeft(itemID)
	}
	if err := s.partyIndex(partyIdx); err != nil {
		return nil, err
	}
	it, err := s.deps.Catalog.Item(itemID)
	if err != nil {
		return nil, err
	}
	c, msgs, err := engine.ApplyItem(s.state.Party[partyIdx], it, moveSlot)
	if err != nil {
		return nil, err
	}
	s.state.Party[partyIdx] = c
	s.removeItem(itemID, 1)
	return msgs, nil
}

// Buy purchases n units of an item at its catalog price.
func (s *Session) Buy(itemID, n int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireField(); err != nil {
		return "", err
	}
	if n <= 0 {
		return "", reject("How many do you want?")
	}
	it, err := s.deps.Catalog.Item(itemID)
	if err != nil {
		return "", reject("That item isn't for sale.")
	}
	if it.Price <= 0 || it.Kind == core.ItemKey {
		return "", reject("%s isn't for sale.", it.Name)
	}
	total := it.Price * n
	if s.state.Money < total {
		return "", reject("Not enough money for %s!", it.Name)
	}
	s.state.Money -= total
	s.addItem(itemID, n)
	return fmt.Sprintf("Bought %d %s for $%d.", n, it.Name, total), nil
}
