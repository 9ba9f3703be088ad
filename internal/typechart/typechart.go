// Package typechart holds the attack-type by defense-type damage table.
package typechart

import "github.com/monbattle/engine/pkg/core"

// chart lists only non-neutral matchups; anything missing is 1.0.
var chart = map[core.Type]map[core.Type]float64{
	core.TypeNormal:   {core.TypeRock: 0.5, core.TypeGhost: 0, core.TypeSteel: 0.5},
	core.TypeFire:     {core.TypeGrass: 2, core.TypeIce: 2, core.TypeBug: 2, core.TypeSteel: 2, core.TypeFire: 0.5, core.TypeWater: 0.5, core.TypeRock: 0.5, core.TypeDragon: 0.5},
	core.TypeWater:    {core.TypeFire: 2, core.TypeGround: 2, core.TypeRock: 2, core.TypeWater: 0.5, core.TypeGrass: 0.5, core.TypeDragon: 0.5},
	core.TypeElectric: {core.TypeWater: 2, core.TypeFlying: 2, core.TypeElectric: 0.5, core.TypeGrass: 0.5, core.TypeDragon: 0.5, core.TypeGround: 0},
	core.TypeGrass:    {core.TypeWater: 2, core.TypeGround: 2, core.TypeRock: 2, core.TypeFire: 0.5, core.TypeGrass: 0.5, core.TypePoison: 0.5, core.TypeFlying: 0.5, core.TypeBug: 0.5, core.TypeDragon: 0.5, core.TypeSteel: 0.5},
	core.TypeIce:      {core.TypeGrass: 2, core.TypeGround: 2, core.TypeFlying: 2, core.TypeDragon: 2, core.TypeFire: 0.5, core.TypeWater: 0.5, core.TypeIce: 0.5, core.TypeSteel: 0.5},
	core.TypeFighting: {core.TypeNormal: 2, core.TypeIce: 2, core.TypeRock: 2, core.TypeDark: 2, core.TypeSteel: 2, core.TypePoison: 0.5, core.TypeFlying: 0.5, core.TypePsychic: 0.5, core.TypeBug: 0.5, core.TypeFairy: 0.5, core.TypeGhost: 0},
	core.TypePoison:   {core.TypeGrass: 2, core.TypeFairy: 2, core.TypePoison: 0.5, core.TypeGround: 0.5, core.TypeRock: 0.5, core.TypeGhost: 0.5, core.TypeSteel: 0},
	core.TypeGround:   {core.TypeFire: 2, core.TypeElectric: 2, core.TypePoison: 2, core.TypeRock: 2, core.TypeSteel: 2, core.TypeGrass: 0.5, core.TypeBug: 0.5, core.TypeFlying: 0},
	core.TypeFlying:   {core.TypeGrass: 2, core.TypeFighting: 2, core.TypeBug: 2, core.TypeElectric: 0.5, core.TypeRock: 0.5, core.TypeSteel: 0.5},
	core.TypePsychic:  {core.TypeFighting: 2, core.TypePoison: 2, core.TypePsychic: 0.5, core.TypeSteel: 0.5, core.TypeDark: 0},
	core.TypeBug:      {core.TypeGrass: 2, core.TypePsychic: 2, core.TypeDark: 2, core.TypeFire: 0.5, core.TypeFighting: 0.5, core.TypePoison: 0.5, core.TypeFlying: 0.5, core.TypeGhost: 0.5, core.TypeSteel: 0.5, core.TypeFairy: 0.5},
	core.TypeRock:     {core.TypeFire: 2, core.TypeIce: 2, core.TypeFlying: 2, core.TypeBug: 2, core.TypeFighting: 0.5, core.TypeGround: 0.5, core.TypeSteel: 0.5},
	core.TypeGhost:    {core.TypePsychic: 2, core.TypeGhost: 2, core.TypeDark: 0.5, core.TypeNormal: 0},
	core.TypeDragon:   {core.TypeDragon: 2, core.TypeSteel: 0.5, core.TypeFairy: 0},
	core.TypeDark:     {core.TypePsychic: 2, core.TypeGhost: 2, core.TypeFighting: 0.5, core.TypeDark: 0.5, core.TypeFairy: 0.5},
	core.TypeSteel:    {core.TypeIce: 2, core.TypeRock: 2, core.TypeFairy: 2, core.TypeFire: 0.5, core.TypeWater: 0.5, core.TypeElectric: 0.5, core.TypeSteel: 0.5},
	core.TypeFairy:    {core.TypeFighting: 2, core.TypeDragon: 2, core.TypeDark: 2, core.TypeFire: 0.5, core.TypePoison: 0.5, core.TypeSteel: 0.5},
}

// Multiplier returns the single-type matchup.
func Multiplier(attack, defend core.Type) float64 {
	if m, ok := chart[attack][defend]; ok {
		return m
	}
	return 1
}

// Effectiveness is the product of Multiplier over every defending type.
func Effectiveness(attack core.Type, defenders []core.Type) float64 {
	eff := 1.0
	for _, d := range defenders {
		eff *= Multiplier(attack, d)
	}
	return eff
}

// Tier buckets an effectiveness value for messaging.
type Tier int

const (
	TierNeutral Tier = iota
	TierSuper
	TierNotVery
	TierImmune
)

// TierOf classifies eff.
func TierOf(eff float64) Tier {
	switch {
	case eff == 0:
		return TierImmune
	case eff >= 2:
		return TierSuper
	case eff < 1:
		return TierNotVery
	}
	return TierNeutral
}

// Message returns the battle text for the tier, empty for neutral.
func (t Tier) Message() string {
	switch t {
	case TierSuper:
		return "It's super effective!"
	case TierNotVery:
		return "It's not very effective..."
	case TierImmune:
		return "It doesn't affect the target..."
	}
	return ""
}
