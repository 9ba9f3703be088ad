// Package progress holds everything that changes a combatant between
// battles: stat formulas, experience, move learning, evolution and capture.
package progress

import (
	"github.com/monbattle/engine/internal/rng"
	"github.com/monbattle/engine/pkg/core"
)

const (
	MaxLevel = 100
	MaxEV    = 65535
	MaxIV    = 15
	MaxMoves = 4
)

// CalcHP derives max HP.
func CalcHP(base, iv, ev, level int) int {
	return (2*base+iv+ev/4)*level/100 + level + 10
}

// CalcStat derives a non-HP stat.
func CalcStat(base, iv, ev, level int) int {
	return (2*base+iv+ev/4)*level/100 + 5
}

// DerivedStats computes max HP and battle stats for a species at level.
func DerivedStats(sp core.Species, ivs, evs core.Stats, level int) (int, core.BattleStats) {
	return CalcHP(sp.Base.HP, ivs.HP, evs.HP, level), core.BattleStats{
		Attack:    CalcStat(sp.Base.Attack, ivs.Attack, evs.Attack, level),
		Defense:   CalcStat(sp.Base.Defense, ivs.Defense, evs.Defense, level),
		SpAttack:  CalcStat(sp.Base.SpAttack, ivs.SpAttack, evs.SpAttack, level),
		SpDefense: CalcStat(sp.Base.SpDefense, ivs.SpDefense, evs.SpDefense, level),
		Speed:     CalcStat(sp.Base.Speed, ivs.Speed, evs.Speed, level),
	}
}

// RecomputeStats refreshes derived stats from sp. Damage already taken is
// kept, and a fainted combatant stays fainted.
func RecomputeStats(c core.Combatant, sp core.Species) core.Combatant {
	taken := c.MaxHP - c.CurrentHP
	c.MaxHP, c.Stats = DerivedStats(sp, c.IVs, c.EVs, c.Level)
	if c.CurrentHP <= 0 {
		c.CurrentHP = 0
		return c
	}
	c.CurrentHP = max(1, c.MaxHP-taken)
	return c
}

// RandomIVs draws six IVs in [0, 15].
func RandomIVs(r rng.Source) core.Stats {
	return core.Stats{
		HP:        r.Intn(MaxIV + 1),
		Attack:    r.Intn(MaxIV + 1),
		Defense:   r.Intn(MaxIV + 1),
		SpAttack:  r.Intn(MaxIV + 1),
		SpDefense: r.Intn(MaxIV + 1),
		Speed:     r.Intn(MaxIV + 1),
	}
}

// NewCombatant builds a fully healed combatant with zero EVs. moves beyond
// the fourth are ignored.
func NewCombatant(sp core.Species, level int, ivs core.Stats, moves []core.Move) core.Combatant {
	level = max(1, min(MaxLevel, level))
	c := core.Combatant{
		SpeciesID: sp.ID,
		Name:      sp.Name,
		Level:     level,
		Exp:       ExpForLevel(level, sp.Growth),
		IVs:       ivs,
		Types:     append([]core.Type(nil), sp.Types...),
		Status:    core.NoStatus(),
	}
	c.MaxHP, c.Stats = DerivedStats(sp, ivs, c.EVs, level)
	c.CurrentHP = c.MaxHP
	for _, m := range moves {
		if len(c.Moves) == MaxMoves {
			break
		}
		c.Moves = append(c.Moves, core.NewMoveSlot(m))
	}
	return c
}

// GainEVs adds a tenth of each of the defeated species' base stats.
func GainEVs(evs core.Stats, defeated core.Species) core.Stats {
	add := func(cur, base int) int { return min(MaxEV, cur+base/10) }
	return core.Stats{
		HP:        add(evs.HP, defeated.Base.HP),
		Attack:    add(evs.Attack, defeated.Base.Attack),
		Defense:   add(evs.Defense, defeated.Base.Defense),
		SpAttack:  add(evs.SpAttack, defeated.Base.SpAttack),
		SpDefense: add(evs.SpDefense, defeated.Base.SpDefense),
		Speed:     add(evs.Speed, defeated.Base.Speed),
	}
}
