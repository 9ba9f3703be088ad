// Package effects resolves a used move: accuracy, damage and secondary effects.
package effects

import (
	"fmt"

	"github.com/monbattle/engine/internal/damage"
	"github.com/monbattle/engine/internal/rng"
	"github.com/monbattle/engine/internal/stages"
	"github.com/monbattle/engine/internal/status"
	"github.com/monbattle/engine/pkg/core"
)

const (
	defaultDrainPercent  = 50
	defaultRecoilPercent = 25
	defaultHealPercent   = 50
)

// Result carries the updated combatants and everything that was said.
type Result struct {
	Attacker    core.Combatant
	Defender    core.Combatant
	Messages    []string
	DamageDealt int
	Missed      bool
	Critical    bool
	Fainted     bool
}

func (res *Result) say(msg string) {
	if msg != "" {
		res.Messages = append(res.Messages, msg)
	}
}

// Execute resolves move from attacker against defender. Effects run in
// declaration order and each one sees the results of the previous ones.
func Execute(attacker, defender core.Combatant, move core.Move, r rng.Source) Result {
	res := Result{Attacker: attacker, Defender: defender}
	res.say(fmt.Sprintf("%s used %s!", attacker.Name, move.Name))

	if !damage.Hits(attacker, defender, move, r) {
		res.Missed = true
		res.say(fmt.Sprintf("%s's attack missed!", attacker.Name))
		return res
	}

	if move.Damaging() {
		d := damage.Roll(res.Attacker, res.Defender, move, r)
		res.Defender = res.Defender.Damage(d.Damage)
		res.DamageDealt = d.Damage
		res.Critical = d.Critical
		res.Messages = append(res.Messages, d.Messages...)
	}

	for _, e := range move.Effects {
		if !rollChance(e, r) {
			continue
		}
		res.apply(move, e, r)
	}

	res.Fainted = res.Attacker.Fainted() || res.Defender.Fainted()
	return res
}

func rollChance(e core.MoveEffect, r rng.Source) bool {
	if e.Guaranteed() {
		return true
	}
	return r.Float64()*100 < float64(e.Chance)
}

func (res *Result) apply(move core.Move, e core.MoveEffect, r rng.Source) {
	switch e.Kind {
	case core.EffectDrain:
		if res.DamageDealt == 0 || res.Attacker.Fainted() {
			return
		}
		res.Attacker = res.Attacker.Heal(res.DamageDealt * percentOr(e.Percent, defaultDrainPercent) / 100)
		res.say(fmt.Sprintf("%s absorbed some HP!", res.Attacker.Name))

	case core.EffectRecoil:
		var amount int
		if move.IsStruggle() {
			amount = res.Attacker.MaxHP / 4
		} else {
			if res.DamageDealt == 0 {
				return
			}
			amount = res.DamageDealt * percentOr(e.Percent, defaultRecoilPercent) / 100
		}
		res.Attacker = res.Attacker.Damage(amount)
		res.say(fmt.Sprintf("%s was hurt by recoil!", res.Attacker.Name))

	case core.EffectStatus:
		if res.Defender.Fainted() {
			return
		}
		var msg string
		res.Defender, msg, _ = status.ApplyPrimary(res.Defender, e.Status, r)
		res.say(msg)

	case core.EffectVolatile:
		if res.Defender.Fainted() {
			return
		}
		turns := e.Turns
		if turns <= 0 && (e.Volatile == core.VolatileConfusion || e.Volatile == core.VolatileTrap) {
			turns = RandomDuration(r)
		}
		var msg string
		res.Defender, msg, _ = status.ApplyVolatile(res.Defender, e.Volatile, turns)
		res.say(msg)

	case core.EffectStatStage:
		for _, ch := range e.Changes {
			var msg string
			if StageTarget(move, e, ch.Delta) == core.TargetSelf {
				res.Attacker, msg, _ = stages.ApplyDelta(res.Attacker, ch.Stat, ch.Delta)
			} else {
				if res.Defender.Fainted() {
					continue
				}
				res.Defender, msg, _ = stages.ApplyDelta(res.Defender, ch.Stat, ch.Delta)
			}
			res.say(msg)
		}

	case core.EffectHeal:
		res.Attacker = res.Attacker.Heal(res.Attacker.MaxHP * percentOr(e.Percent, defaultHealPercent) / 100)
		res.say(fmt.Sprintf("%s regained health!", res.Attacker.Name))

	case core.EffectLeechSeed:
		if res.Defender.Fainted() {
			return
		}
		var (
			msg     string
			applied bool
		)
		res.Defender, msg, applied = status.ApplyVolatile(res.Defender, core.VolatileLeechSeed, 0)
		if applied {
			msg = fmt.Sprintf("%s planted a seed on %s!", res.Attacker.Name, res.Defender.Name)
		}
		res.say(msg)

	case core.EffectTrap:
		if res.Defender.Fainted() {
			return
		}
		turns := e.Turns
		if turns <= 0 {
			turns = RandomDuration(r)
		}
		var msg string
		res.Defender, msg, _ = status.ApplyVolatile(res.Defender, core.VolatileTrap, turns)
		res.say(msg)
	}
}

// RandomDuration draws a 2-5 turn duration.
func RandomDuration(r rng.Source) int {
	return r.Intn(4) + 2
}

// StageTarget decides who a stat change hits. An explicit target wins.
// Without one, a guaranteed all-negative change on a move with power is a
// self-debuff; otherwise raises go to the user and drops to the opponent.
func StageTarget(move core.Move, e core.MoveEffect, delta int) core.Target {
	if e.Target != core.TargetUnset {
		return e.Target
	}
	if e.Guaranteed() && move.Power > 0 && allNegative(e.Changes) {
		return core.TargetSelf
	}
	if delta > 0 {
		return core.TargetSelf
	}
	return core.TargetOpponent
}

func allNegative(changes []core.StatChange) bool {
	if len(changes) == 0 {
		return false
	}
	for _, c := range changes {
		if c.Delta >= 0 {
			return false
		}
	}
	return true
}

func percentOr(p, def int) int {
	if p <= 0 {
		return def
	}
	return p
}
