// Package ai picks the opponent's move.
package ai

import (
	"github.com/monbattle/engine/internal/effects"
	"github.com/monbattle/engine/internal/rng"
	"github.com/monbattle/engine/internal/stages"
	"github.com/monbattle/engine/pkg/core"
)

// Pick returns a legal move for self to use against target. Moves with PP
// left are preferred; status moves against an already statused target and
// drops on stats that are already at the floor are skipped unless nothing
// else remains. With no PP anywhere the result is Struggle.
func Pick(self, target core.Combatant, r rng.Source) core.Move {
	var usable []core.Move
	for _, slot := range self.Moves {
		if slot.PP > 0 {
			usable = append(usable, slot.Move)
		}
	}
	if len(usable) == 0 {
		return core.Struggle
	}

	candidates := make([]core.Move, 0, len(usable))
	for _, m := range usable {
		if wasted(m, target) {
			continue
		}
		candidates = append(candidates, m)
	}
	if len(candidates) == 0 {
		candidates = usable
	}
	return candidates[r.Intn(len(candidates))]
}

// Action wraps Pick as a battle action.
func Action(self, target core.Combatant, r rng.Source) core.Action {
	return core.UseMove(Pick(self, target, r).ID)
}

func wasted(m core.Move, target core.Combatant) bool {
	if m.InflictsStatus() && !target.Status.IsNone() {
		return true
	}
	return lowersFlooredStat(m, target)
}

func lowersFlooredStat(m core.Move, target core.Combatant) bool {
	for _, e := range m.Effects {
		if e.Kind != core.EffectStatStage {
			continue
		}
		for _, ch := range e.Changes {
			if ch.Delta >= 0 || effects.StageTarget(m, e, ch.Delta) != core.TargetOpponent {
				continue
			}
			if target.Stages.Get(ch.Stat) <= stages.Min {
				return true
			}
		}
	}
	return false
}
