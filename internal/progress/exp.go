package progress

import (
	"fmt"
	"math"
	"slices"

	"github.com/monbattle/engine/pkg/core"
)

// ExpForLevel is the cumulative experience needed to reach level.
func ExpForLevel(level int, growth core.GrowthRate) int {
	cube := level * level * level
	switch growth {
	case core.GrowthFast:
		return 4 * cube / 5
	case core.GrowthSlow:
		return 5 * cube / 4
	default:
		return cube
	}
}

// LevelForExp is the highest level whose threshold exp has reached.
func LevelForExp(exp int, growth core.GrowthRate) int {
	level := 1
	for level < MaxLevel && ExpForLevel(level+1, growth) <= exp {
		level++
	}
	return level
}

// ExpGain is the experience awarded for defeating a combatant of the
// given species and level. bonus scales trainer battles.
func ExpGain(defeated core.Species, level int, bonus float64) int {
	if bonus <= 0 {
		bonus = 1
	}
	return int(math.Floor(float64(defeated.BaseExp) * float64(level) * bonus / 7))
}

// MoveLookup resolves move IDs from a learnset.
type MoveLookup interface {
	Move(id int) (core.Move, error)
}

// LevelUp is the result of AwardExp.
type LevelUp struct {
	Combatant core.Combatant
	Messages  []string
	Gained    int
	Levels    int
	// Pending holds learnable moves that need a forget choice because the
	// move list is full.
	Pending []core.Move
}

// AwardExp grants experience and EVs for defeating defeated at level
// defeatedLevel, then walks every level crossed: stats are recomputed, HP
// is refilled and the learnset is checked.
func AwardExp(c core.Combatant, sp, defeated core.Species, defeatedLevel int, bonus float64, moves MoveLookup) (LevelUp, error) {
	gain := ExpGain(defeated, defeatedLevel, bonus)
	res := LevelUp{Gained: gain}

	c = c.Clone()
	c.EVs = GainEVs(c.EVs, defeated)
	c.Exp += gain
	res.Messages = append(res.Messages, fmt.Sprintf("%s gained %d EXP!", c.Name, gain))

	target := LevelForExp(c.Exp, sp.Growth)
	for c.Level < target {
		c.Level++
		res.Levels++
		c.MaxHP, c.Stats = DerivedStats(sp, c.IVs, c.EVs, c.Level)
		c.CurrentHP = c.MaxHP
		res.Messages = append(res.Messages, fmt.Sprintf("%s grew to Level %d!", c.Name, c.Level))

		for _, entry := range sp.Learnset {
			if entry.Level != c.Level {
				continue
			}
			m, err := moves.Move(entry.MoveID)
			if err != nil {
				return LevelUp{}, fmt.Errorf("learnset of %s: %w", sp.Name, err)
			}
			var (
				msg     string
				learned bool
			)
			c, msg, learned = LearnMove(c, m)
			if learned {
				res.Messages = append(res.Messages, msg)
				continue
			}
			if c.MoveIndex(m.ID) < 0 {
				res.Pending = append(res.Pending, m)
			}
		}
	}

	res.Combatant = c
	return res, nil
}

// LearnMove adds m if there is a free slot. It reports false when the move
// is already known or the list is full.
func LearnMove(c core.Combatant, m core.Move) (core.Combatant, string, bool) {
	if c.MoveIndex(m.ID) >= 0 || len(c.Moves) >= MaxMoves {
		return c, "", false
	}
	c = c.Clone()
	c.Moves = append(c.Moves, core.NewMoveSlot(m))
	return c, fmt.Sprintf("%s learned %s!", c.Name, m.Name), true
}

// ReplaceMove forgets the move in slot and learns m in its place.
func ReplaceMove(c core.Combatant, slot int, m core.Move) (core.Combatant, string, error) {
	if slot < 0 || slot >= len(c.Moves) {
		return c, "", fmt.Errorf("move slot %d out of range", slot)
	}
	old := c.Moves[slot].Move.Name
	c = c.Clone()
	c.Moves[slot] = core.NewMoveSlot(m)
	return c, fmt.Sprintf("%s forgot %s and learned %s!", c.Name, old, m.Name), nil
}

// DeclineMessage is logged when a learnable move is passed over.
func DeclineMessage(c core.Combatant, m core.Move) string {
	return fmt.Sprintf("%s did not learn %s.", c.Name, m.Name)
}

// StartingMoves picks the four most recent learnset moves at or below
// level. Tackle is the fallback for an empty learnset.
func StartingMoves(sp core.Species, level int, moves MoveLookup) ([]core.Move, error) {
	entries := slices.Clone(sp.Learnset)
	slices.SortStableFunc(entries, func(a, b core.LearnsetEntry) int { return a.Level - b.Level })

	var ids []int
	for _, entry := range entries {
		if entry.Level <= level && !slices.Contains(ids, entry.MoveID) {
			ids = append(ids, entry.MoveID)
		}
	}
	if len(ids) > MaxMoves {
		ids = ids[len(ids)-MaxMoves:]
	}
	if len(ids) == 0 {
		ids = []int{TackleID}
	}

	out := make([]core.Move, 0, len(ids))
	for _, id := range ids {
		m, err := moves.Move(id)
		if err != nil {
			return nil, fmt.Errorf("starting moves of %s: %w", sp.Name, err)
		}
		out = append(out, m)
	}
	return out, nil
}

// TackleID is the move every species falls back to.
const TackleID = 33
