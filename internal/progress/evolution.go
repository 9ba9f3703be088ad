package progress

import (
	"fmt"

	"github.com/monbattle/engine/pkg/core"
)

// CheckEvolution returns the species c evolves into at its current level.
func CheckEvolution(c core.Combatant, sp core.Species) (int, bool) {
	if sp.Evolution == nil || sp.Evolution.Level <= 0 {
		return 0, false
	}
	if c.Level < sp.Evolution.Level {
		return 0, false
	}
	return sp.Evolution.Into, true
}

// Evolve turns c into the target species. Stats are recomputed and damage
// already taken is kept.
func Evolve(c core.Combatant, into core.Species) (core.Combatant, string) {
	old := c.Name
	c = c.Clone()
	c.SpeciesID = into.ID
	c.Name = into.Name
	c.Types = append([]core.Type(nil), into.Types...)
	c = RecomputeStats(c, into)
	return c, fmt.Sprintf("%s evolved into %s!", old, into.Name)
}
