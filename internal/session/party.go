package session

import (
	"fmt"
	"slices"

	"github.com/monbattle/engine/pkg/core"
)

// store puts a new combatant in the party, or in the first PC box with
// room once the party is full.
func (s *Session) store(c core.Combatant) string {
	if len(s.state.Party) < core.MaxPartySize {
		s.state.Party = append(s.state.Party, c)
		return fmt.Sprintf("%s was added to your party!", c.Name)
	}
	s.ensureBoxes()
	for i, box := range s.state.Boxes {
		if len(box) < core.BoxCapacity {
			s.state.Boxes[i] = append(box, c)
			return fmt.Sprintf("%s was sent to Box %d!", c.Name, i+1)
		}
	}
	s.deps.Logger.Warn("PC is full, released caught Pokemon", "name", c.Name)
	return fmt.Sprintf("There's no room left in the PC! %s was released.", c.Name)
}

func (s *Session) ensureBoxes() {
	for len(s.state.Boxes) < core.BoxCount {
		s.state.Boxes = append(s.state.Boxes, nil)
	}
}

func (s *Session) partyIndex(idx int) error {
	if idx < 0 || idx >= len(s.state.Party) {
		return reject("Choose a Pokemon.")
	}
	return nil
}

func (s *Session) boxIndex(box int) error {
	if box < 0 || box >= core.BoxCount {
		return reject("There is no Box %d.", box+1)
	}
	return nil
}

// Deposit moves a party member into box (zero-based). The party must keep
// at least one healthy member.
func (s *Session) Deposit(partyIdx, box int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireField(); err != nil {
		return "", err
	}
	if err := s.partyIndex(partyIdx); err != nil {
		return "", err
	}
	if err := s.boxIndex(box); err != nil {
		return "", err
	}
	rest := slices.Delete(slices.Clone(s.state.Party), partyIdx, partyIdx+1)
	if core.FirstHealthy(rest) < 0 {
		return "", reject("You need at least one healthy Pokemon!")
	}
	s.ensureBoxes()
	if len(s.state.Boxes[box]) >= core.BoxCapacity {
		return "", reject("This box is full!")
	}

	c := s.state.Party[partyIdx]
	s.state.Boxes[box] = append(s.state.Boxes[box], c)
	s.state.Party = rest
	return fmt.Sprintf("%s was deposited in Box %d!", c.Name, box+1), nil
}

// Withdraw moves a boxed combatant back into the party.
func (s *Session) Withdraw(box, idx int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireField(); err != nil {
		return "", err
	}
	c, err := s.boxed(box, idx)
	if err != nil {
		return "", err
	}
	if len(s.state.Party) >= core.MaxPartySize {
		return "", reject("Your party is full!")
	}
	s.state.Boxes[box] = slices.Delete(s.state.Boxes[box], idx, idx+1)
	s.state.Party = append(s.state.Party, c)
	return fmt.Sprintf("%s was withdrawn from Box %d!", c.Name, box+1), nil
}

// Release removes a boxed combatant for good.
func (s *Session) Release(box, idx int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireField(); err != nil {
		return "", err
	}
	c, err := s.boxed(box, idx)
	if err != nil {
		return "", err
	}
	s.state.Boxes[box] = slices.Delete(s.state.Boxes[box], idx, idx+1)
	return fmt.Sprintf("%s was released. Bye, %s!", c.Name, c.Name), nil
}

func (s *Session) boxed(box, idx int) (core.Combatant, error) {
	if err := s.boxIndex(box); err != nil {
		return core.Combatant{}, err
	}
	s.ensureBoxes()
	if idx < 0 || idx >= len(s.state.Boxes[box]) {
		return core.Combatant{}, reject("Choose a Pokemon.")
	}
	return s.state.Boxes[box][idx], nil
}

// Swap exchanges two party positions. The first healthy member leads the
// next battle.
func (s *Session) Swap(i, j int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireField(); err != nil {
		return "", err
	}
	if err := s.partyIndex(i); err != nil {
		return "", err
	}
	if err := s.partyIndex(j); err != nil {
		return "", err
	}
	s.state.Party[i], s.state.Party[j] = s.state.Party[j], s.state.Party[i]
	return "Swapped party positions!", nil
}

// Heal fully restores the party.
func (s *Session) Heal() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireField(); err != nil {
		return "", err
	}
	for i, c := range s.state.Party {
		s.state.Party[i] = c.FullyRestored()
	}
	return "Your Pokemon were healed at the Pokemon Center!", nil
}
