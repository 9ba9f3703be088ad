package parser

import (
	"github.com/monbattle/engine/pkg/core"
)

// Use parses "use <item> <party slot> [move slot]".
func (p *Parser) Use(args []string, st core.GameState) (FieldItem, error) {
	rest, nums := trailingInts(args, 2)
	if len(rest) == 0 || len(nums) == 0 {
		return FieldItem{}, invalid("use which item on which Pokemon?")
	}
	id, err := p.ItemID(Name(rest))
	if err != nil {
		return FieldItem{}, err
	}
	party, err := Index(nums[0], len(st.Party), "party")
	if err != nil {
		return FieldItem{}, err
	}
	out := FieldItem{ItemID: id, PartyIndex: party, MoveSlot: -1}
	if len(nums) == 2 {
		if out.MoveSlot, err = Index(nums[1], len(st.Party[party].Moves), "move"); err != nil {
			return FieldItem{}, err
		}
	}
	return out, nil
}

// Buy parses "buy <item> [quantity]".
func (p *Parser) Buy(args []string) (Purchase, error) {
	rest, nums := trailingInts(args, 1)
	if len(rest) == 0 {
		return Purchase{}, invalid("buy which item?")
	}
	id, err := p.ItemID(Name(rest))
	if err != nil {
		return Purchase{}, err
	}
	qty := 1
	if len(nums) == 1 {
		if qty, err = parseIntFromFloat(nums[0]); err != nil || qty < 1 {
			return Purchase{}, invalid("%q is not a quantity", nums[0])
		}
	}
	return Purchase{ItemID: id, Quantity: qty}, nil
}

// Deposit parses "deposit <party slot> [box]". The box defaults to Box 1.
func Deposit(args []string, st core.GameState) (party, box int, err error) {
	if len(args) < 1 || len(args) > 2 {
		return 0, 0, invalid("deposit which Pokemon?")
	}
	if party, err = Index(args[0], len(st.Party), "party"); err != nil {
		return 0, 0, err
	}
	if len(args) == 2 {
		if box, err = Index(args[1], core.BoxCount, "box"); err != nil {
			return 0, 0, err
		}
	}
	return party, box, nil
}

// Boxed parses "<box> <slot>" for withdraw and release.
func Boxed(args []string, st core.GameState) (BoxSlot, error) {
	if len(args) != 2 {
		return BoxSlot{}, invalid("choose a box and a Pokemon in it")
	}
	box, err := Index(args[0], core.BoxCount, "box")
	if err != nil {
		return BoxSlot{}, err
	}
	n := 0
	if box < len(st.Boxes) {
		n = len(st.Boxes[box])
	}
	idx, err := Index(args[1], n, "box slot")
	if err != nil {
		return BoxSlot{}, err
	}
	return BoxSlot{Box: box, Index: idx}, nil
}

// Swap parses "swap <party slot> <party slot>".
func Swap(args []string, st core.GameState) (int, int, error) {
	if len(args) != 2 {
		return 0, 0, invalid("swap which two Pokemon?")
	}
	i, err := Index(args[0], len(st.Party), "party")
	if err != nil {
		return 0, 0, err
	}
	j, err := Index(args[1], len(st.Party), "party")
	if err != nil {
		return 0, 0, err
	}
	return i, j, nil
}

// NewGame parses "new <starter> [player name...]".
func (p *Parser) NewGame(args []string) (starter int, name string, err error) {
	if len(args) == 0 {
		return 0, "", invalid("choose a starter: Bulbasaur, Charmander or Squirtle")
	}
	if starter, err = p.SpeciesID(args[0]); err != nil {
		return 0, "", err
	}
	return starter, Name(args[1:]), nil
}
