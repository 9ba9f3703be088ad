package damage

import (
	"math"
	"testing"

	"github.com/monbattle/engine/internal/rng"
	"github.com/monbattle/engine/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fighter(name string, level int, types ...core.Type) core.Combatant {
	return core.Combatant{
		Name:      name,
		Level:     level,
		CurrentHP: 20,
		MaxHP:     20,
		Stats:     core.BattleStats{Attack: 10, Defense: 10, SpAttack: 10, SpDefense: 10, Speed: 10},
		Types:     types,
	}
}

var tackle = core.Move{ID: 33, Name: "Tackle", Type: core.TypeNormal, Category: core.CategoryPhysical, Power: 40, Accuracy: 100, MaxPP: 35}

func TestBase(t *testing.T) {
	assert.Equal(t, 5, Base(5, 40, 10, 10))
	assert.Equal(t, 2, Base(1, 1, 1, 100))
	assert.Equal(t, Base(5, 40, 10, 1), Base(5, 40, 10, 0), "zero defense treated as one")
}

func TestRoll_ScenarioBounds(t *testing.T) {
	attacker := fighter("Pidgey", 5, core.TypeFlying)
	defender := fighter("Rattata", 5, core.TypeGrass)
	base := Base(5, 40, 10, 10)
	lo := int(math.Floor(float64(base) * 0.85))
	hi := int(math.Ceil(float64(base) * 1.5))

	r := rng.New(99)
	for i := 0; i < 2000; i++ {
		res := Roll(attacker, defender, tackle, r)
		require.GreaterOrEqual(t, res.Damage, lo)
		require.LessOrEqual(t, res.Damage, hi)
	}
}

func TestRoll_Modifiers(t *testing.T) {
	attacker := fighter("Squirtle", 20, core.TypeWater)
	defender := fighter("Geodude", 20, core.TypeRock, core.TypeGround)
	waterGun := core.Move{Name: "Water Gun", Type: core.TypeWater, Category: core.CategorySpecial, Power: 40, Accuracy: 100}

	// crit roll misses, variance roll 0 gives 0.85
	res := Roll(attacker, defender, waterGun, &rng.Scripted{Floats: []float64{0.5, 0}})
	base := Base(20, 40, 10, 10)
	assert.Equal(t, int(math.Floor(float64(base)*1.5*4*0.85)), res.Damage)
	assert.Equal(t, 4.0, res.Effectiveness)
	assert.False(t, res.Critical)
	assert.Equal(t, []string{"It's super effective!"}, res.Messages)

	res = Roll(attacker, defender, waterGun, &rng.Scripted{Floats: []float64{0.01, 0}})
	assert.True(t, res.Critical)
	assert.Equal(t, int(math.Floor(float64(base)*1.5*4*1.5*0.85)), res.Damage)
	assert.Equal(t, []string{"A critical hit!", "It's super effective!"}, res.Messages)
}

func TestRoll_StagesApplied(t *testing.T) {
	attacker := fighter("Pidgey", 50, core.TypeFlying)
	attacker.Stages.Attack = 2
	defender := fighter("Rattata", 50, core.TypeNormal)
	defender.Stages.Defense = -1

	res := Roll(attacker, defender, tackle, &rng.Scripted{Floats: []float64{0.5, 0.999999}})
	base := Base(50, 40, 20, 6)
	assert.Equal(t, int(math.Floor(float64(base)*(0.85+0.999999*0.15))), res.Damage)
}

func TestRoll_MinimumOne(t *testing.T) {
	attacker := fighter("Caterpie", 2, core.TypeBug)
	attacker.Stats.Attack = 1
	defender := fighter("Onix", 2, core.TypeRock, core.TypeGround)
	defender.Stats.Defense = 200
	weak := core.Move{Name: "Ember", Type: core.TypeFire, Category: core.CategoryPhysical, Power: 1, Accuracy: 100}

	res := Roll(attacker, defender, weak, &rng.Scripted{Floats: []float64{0.5, 0}})
	assert.Equal(t, 1, res.Damage)
}

func TestRoll_ZeroOnlyWhenImmune(t *testing.T) {
	attacker := fighter("Rattata", 30, core.TypeNormal)
	ghost := fighter("Gastly", 30, core.TypeGhost, core.TypePoison)

	res := Roll(attacker, ghost, tackle, &rng.Scripted{Floats: []float64{0.01, 0.9}})
	assert.Equal(t, 0, res.Damage)
	assert.False(t, res.Critical)
	assert.Equal(t, []string{"It doesn't affect the target..."}, res.Messages)

	r := rng.New(3)
	for _, types := range [][]core.Type{{core.TypeRock}, {core.TypeSteel, core.TypeRock}, {core.TypeNormal}} {
		def := fighter("X", 30, types...)
		for i := 0; i < 200; i++ {
			assert.GreaterOrEqual(t, Roll(attacker, def, tackle, r).Damage, 1)
		}
	}
}

func TestCompute_StatusMoveDrawsNothing(t *testing.T) {
	growl := core.Move{Name: "Growl", Type: core.TypeNormal, Category: core.CategoryStatus, Accuracy: 100}
	s := &rng.Scripted{Floats: []float64{0.1}}
	res := Compute(fighter("A", 5), fighter("B", 5), growl, s)
	assert.Equal(t, 0, res.Damage)
	assert.Len(t, s.Floats, 1)
}

func TestCompute_Miss(t *testing.T) {
	attacker := fighter("Pidgey", 5)
	defender := fighter("Rattata", 5)
	defender.Stages.Evasion = 6

	res := Compute(attacker, defender, tackle, &rng.Scripted{Floats: []float64{0.5}})
	assert.True(t, res.Missed)
	assert.Equal(t, 0, res.Damage)
	assert.Equal(t, []string{"Pidgey's attack missed!"}, res.Messages)
}

func TestHits(t *testing.T) {
	attacker := fighter("Pidgey", 5)
	defender := fighter("Rattata", 5)

	assert.True(t, Hits(attacker, defender, tackle, &rng.Scripted{Floats: []float64{0.999}}))

	sure := tackle
	sure.Accuracy = 0
	s := &rng.Scripted{Floats: []float64{0.999}}
	assert.True(t, Hits(attacker, defender, sure, s))
	assert.Len(t, s.Floats, 1, "never-miss moves draw nothing")

	attacker.Stages.Accuracy = -6
	assert.InDelta(t, 25.0, HitChance(attacker, defender, tackle), 1e-9)
	assert.False(t, Hits(attacker, defender, tackle, &rng.Scripted{Floats: []float64{0.3}}))
}
