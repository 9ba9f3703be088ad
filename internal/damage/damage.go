// Package damage computes hit checks and damage rolls.
package damage

import (
	"fmt"
	"math"

	"github.com/monbattle/engine/internal/rng"
	"github.com/monbattle/engine/internal/stages"
	"github.com/monbattle/engine/internal/typechart"
	"github.com/monbattle/engine/pkg/core"
)

const (
	CritChance     = 0.0625
	CritMultiplier = 1.5
	StabMultiplier = 1.5
)

// Result is the outcome of one damage calculation.
type Result struct {
	Damage        int
	Critical      bool
	Missed        bool
	Effectiveness float64
	Tier          typechart.Tier
	Messages      []string
}

// HitChance returns accuracy scaled by the accuracy and evasion stages.
func HitChance(attacker, defender core.Combatant, move core.Move) float64 {
	return float64(move.Accuracy) * stages.Multiplier(attacker.Stages.Accuracy) / stages.Multiplier(defender.Stages.Evasion)
}

// Hits rolls the accuracy check. Moves with zero accuracy never miss and
// draw nothing.
func Hits(attacker, defender core.Combatant, move core.Move, r rng.Source) bool {
	if move.Accuracy <= 0 {
		return true
	}
	return r.Float64()*100 <= HitChance(attacker, defender, move)
}

// Base is the pre-modifier damage, truncating at every division.
func Base(level, power, atk, def int) int {
	if def < 1 {
		def = 1
	}
	return (2*level/5+2)*power*atk/def/50 + 2
}

// Compute runs the accuracy check and, on a hit, Roll.
func Compute(attacker, defender core.Combatant, move core.Move, r rng.Source) Result {
	if !move.Damaging() {
		return Result{Effectiveness: 1}
	}
	if !Hits(attacker, defender, move, r) {
		return Result{
			Missed:        true,
			Effectiveness: 1,
			Messages:      []string{fmt.Sprintf("%s's attack missed!", attacker.Name)},
		}
	}
	return Roll(attacker, defender, move, r)
}

// Roll computes damage for a move that already hit. It draws the critical
// roll then the variance roll.
func Roll(attacker, defender core.Combatant, move core.Move, r rng.Source) Result {
	if !move.Damaging() {
		return Result{Effectiveness: 1}
	}

	rawAtk, rawDef := attacker.Stats.Attack, defender.Stats.Defense
	atkStage, defStage := attacker.Stages.Attack, defender.Stages.Defense
	if move.Category == core.CategorySpecial {
		rawAtk, rawDef = attacker.Stats.SpAttack, defender.Stats.SpDefense
		atkStage, defStage = attacker.Stages.SpAttack, defender.Stages.SpDefense
	}
	base := Base(attacker.Level, move.Power, stages.Apply(rawAtk, atkStage), stages.Apply(rawDef, defStage))

	stab := 1.0
	if attacker.HasType(move.Type) {
		stab = StabMultiplier
	}
	eff := typechart.Effectiveness(move.Type, defender.Types)

	crit := r.Float64() < CritChance
	critMult := 1.0
	if crit {
		critMult = CritMultiplier
	}
	variance := 0.85 + r.Float64()*0.15

	res := Result{Effectiveness: eff, Tier: typechart.TierOf(eff)}
	if eff == 0 {
		res.Messages = append(res.Messages, res.Tier.Message())
		return res
	}

	res.Damage = max(1, int(math.Floor(float64(base)*stab*eff*critMult*variance)))
	res.Critical = crit
	if crit {
		res.Messages = append(res.Messages, "A critical hit!")
	}
	if msg := res.Tier.Message(); msg != "" {
		res.Messages = append(res.Messages, msg)
	}
	return res
}
