package ai

import (
	"testing"

	"github.com/monbattle/engine/internal/rng"
	"github.com/monbattle/engine/pkg/core"
	"github.com/stretchr/testify/assert"
)

var (
	tackle = core.Move{ID: 33, Name: "Tackle", Type: core.TypeNormal, Category: core.CategoryPhysical, Power: 40, Accuracy: 100, MaxPP: 35}
	growl  = core.Move{ID: 45, Name: "Growl", Type: core.TypeNormal, Category: core.CategoryStatus, Accuracy: 100, MaxPP: 40,
		Effects: []core.MoveEffect{{Kind: core.EffectStatStage, Changes: []core.StatChange{{Stat: core.StatAttack, Delta: -1}}}}}
	poisonPowder = core.Move{ID: 77, Name: "Poison Powder", Type: core.TypePoison, Category: core.CategoryStatus, Accuracy: 75, MaxPP: 35,
		Effects: []core.MoveEffect{{Kind: core.EffectStatus, Status: core.StatusPoison}}}
	swordsDance = core.Move{ID: 14, Name: "Swords Dance", Type: core.TypeNormal, Category: core.CategoryStatus, MaxPP: 20,
		Effects: []core.MoveEffect{{Kind: core.EffectStatStage, Changes: []core.StatChange{{Stat: core.StatAttack, Delta: 2}}}}}
)

func withMoves(slots ...core.MoveSlot) core.Combatant {
	return core.Combatant{Name: "Oddish", CurrentHP: 30, MaxHP: 30, Moves: slots}
}

func slot(m core.Move, pp int) core.MoveSlot { return core.MoveSlot{Move: m, PP: pp} }

func TestPick(t *testing.T) {
	statused := core.Combatant{Name: "Pidgey", Status: core.Poisoned()}
	floored := core.Combatant{Name: "Pidgey", Stages: core.StatStages{Attack: -6}}
	fresh := core.Combatant{Name: "Pidgey"}

	tests := []struct {
		name   string
		self   core.Combatant
		target core.Combatant
		draws  []int
		want   string
	}{
		{"no PP anywhere", withMoves(slot(tackle, 0), slot(growl, 0)), fresh, nil, "Struggle"},
		{"no moves at all", withMoves(), fresh, nil, "Struggle"},
		{"skips empty slots", withMoves(slot(tackle, 0), slot(growl, 3)), fresh, []int{0}, "Growl"},
		{"uniform among usable", withMoves(slot(tackle, 5), slot(growl, 3)), fresh, []int{1}, "Growl"},
		{"status skipped on statused target", withMoves(slot(poisonPowder, 5), slot(tackle, 5)), statused, []int{0}, "Tackle"},
		{"drop skipped at floor", withMoves(slot(growl, 5), slot(tackle, 5)), floored, []int{0}, "Tackle"},
		{"self raise kept at opponent floor", withMoves(slot(swordsDance, 5), slot(growl, 5)), floored, []int{0}, "Swords Dance"},
		{"falls back when everything is filtered", withMoves(slot(poisonPowder, 5)), statused, []int{0}, "Poison Powder"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Pick(tt.self, tt.target, &rng.Scripted{Ints: tt.draws})
			assert.Equal(t, tt.want, got.Name)
		})
	}
}

func TestPick_Distribution(t *testing.T) {
	self := withMoves(slot(tackle, 5), slot(growl, 5))
	r := rng.New(7)
	seen := map[string]int{}
	for range 200 {
		seen[Pick(self, core.Combatant{}, r).Name]++
	}
	assert.Greater(t, seen["Tackle"], 50)
	assert.Greater(t, seen["Growl"], 50)
}

func TestAction(t *testing.T) {
	a := Action(withMoves(slot(tackle, 1)), core.Combatant{}, rng.Neutral())
	assert.Equal(t, core.UseMove(tackle.ID), a)
}
