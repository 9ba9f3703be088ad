package parser

import (
	"strings"

	"github.com/monbattle/engine/internal/util"
	"github.com/monbattle/engine/pkg/core"
)

// trailingInts splits up to n trailing whole-number arguments off args.
func trailingInts(args []string, n int) (rest, nums []string) {
	rest = args
	for len(rest) > 1 && len(nums) < n {
		last := clean(rest[len(rest)-1])
		if _, err := parseIntFromFloat(last); err != nil {
			break
		}
		nums = append([]string{last}, nums...)
		rest = rest[:len(rest)-1]
	}
	return rest, nums
}

// Move parses "move <slot|name>" against the player's active combatant.
func (p *Parser) Move(args []string, s core.Snapshot) (core.Action, error) {
	if len(args) == 0 {
		return core.Action{}, invalid("which move?")
	}
	c := s.Player()
	if len(args) == 1 {
		if _, err := parseIntFromFloat(clean(args[0])); err == nil {
			idx, err := Index(args[0], len(c.Moves), "move")
			if err != nil {
				return core.Action{}, err
			}
			return core.UseMove(c.Moves[idx].Move.ID), nil
		}
	}
	name := util.NormalizeName(Name(args))
	for _, slot := range c.Moves {
		if util.NormalizeName(slot.Move.Name) == name {
			return core.UseMove(slot.Move.ID), nil
		}
	}
	return core.Action{}, invalid("%s doesn't know %s", c.Name, Name(args))
}

// BattleItem parses "item <name|id> [party slot]". The target defaults to
// the active combatant.
func (p *Parser) BattleItem(args []string, s core.Snapshot) (core.Action, error) {
	rest, nums := trailingInts(args, 1)
	if len(rest) == 0 {
		return core.Action{}, invalid("which item?")
	}
	id, err := p.ItemID(Name(rest))
	if err != nil {
		return core.Action{}, err
	}
	target := s.PlayerActive
	if len(nums) == 1 {
		if target, err = Index(nums[0], len(s.PlayerParty), "party"); err != nil {
			return core.Action{}, err
		}
	}
	return core.UseItem(id, target), nil
}

// Switch parses "switch <party slot>".
func Switch(args []string, s core.Snapshot) (core.Action, error) {
	if len(args) != 1 {
		return core.Action{}, invalid("switch to which Pokemon?")
	}
	idx, err := Index(args[0], len(s.PlayerParty), "party")
	if err != nil {
		return core.Action{}, err
	}
	return core.Switch(idx), nil
}

// Forget parses the answer to a pending move: a move slot to forget, or
// one of keep/skip/no to give up on the new move (-1).
func Forget(args []string, s core.Snapshot) (int, error) {
	if len(args) != 1 {
		return 0, invalid("forget which move? (or skip)")
	}
	switch strings.ToLower(clean(args[0])) {
	case "keep", "skip", "no", "cancel":
		return -1, nil
	}
	if s.Pending == nil {
		return 0, invalid("there is no move to learn")
	}
	idx := s.Pending.PartyIndex
	if idx < 0 || idx >= len(s.PlayerParty) {
		return 0, invalid("there is no move to learn")
	}
	return Index(args[0], len(s.PlayerParty[idx].Moves), "move")
}
