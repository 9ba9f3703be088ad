// Package status applies and ticks primary and volatile conditions and
// decides whether a combatant may act.
package status

import (
	"fmt"

	"github.com/monbattle/engine/internal/rng"
	"github.com/monbattle/engine/pkg/core"
)

// Immune reports whether types shield against kind.
func Immune(types []core.Type, kind core.StatusKind) bool {
	for _, t := range types {
		switch kind {
		case core.StatusPoison, core.StatusBadlyPoisoned:
			if t == core.TypePoison || t == core.TypeSteel {
				return true
			}
		case core.StatusBurn:
			if t == core.TypeFire {
				return true
			}
		case core.StatusParalysis:
			if t == core.TypeElectric {
				return true
			}
		case core.StatusFreeze:
			if t == core.TypeIce {
				return true
			}
		}
	}
	return false
}

// ApplyPrimary inflicts kind on c. Sleep draws its duration from r.
func ApplyPrimary(c core.Combatant, kind core.StatusKind, r rng.Source) (core.Combatant, string, bool) {
	if kind == core.StatusNone || kind == "" {
		return c, "", false
	}
	if !c.Status.IsNone() {
		return c, "But it failed!", false
	}
	if Immune(c.Types, kind) {
		return c, fmt.Sprintf("It doesn't affect %s...", c.Name), false
	}

	var msg string
	switch kind {
	case core.StatusPoison:
		c.Status = core.Poisoned()
		msg = fmt.Sprintf("%s was poisoned!", c.Name)
	case core.StatusBadlyPoisoned:
		c.Status = core.BadlyPoisoned(1)
		msg = fmt.Sprintf("%s was badly poisoned!", c.Name)
	case core.StatusBurn:
		c.Status = core.Burned()
		msg = fmt.Sprintf("%s was burned!", c.Name)
	case core.StatusParalysis:
		c.Status = core.Paralyzed()
		msg = fmt.Sprintf("%s was paralyzed! It may be unable to move!", c.Name)
	case core.StatusSleep:
		c.Status = core.Asleep(r.Intn(5) + 1)
		msg = fmt.Sprintf("%s fell asleep!", c.Name)
	case core.StatusFreeze:
		c.Status = core.Frozen()
		msg = fmt.Sprintf("%s was frozen solid!", c.Name)
	default:
		return c, "", false
	}
	return c, msg, true
}

// Tick runs the end-of-turn effect of c's primary status.
func Tick(c core.Combatant, r rng.Source) (core.Combatant, string) {
	if c.Fainted() {
		return c, ""
	}
	switch c.Status.Kind() {
	case core.StatusPoison:
		return c.Damage(c.MaxHP / 8), fmt.Sprintf("%s was hurt by poison!", c.Name)
	case core.StatusBadlyPoisoned:
		n, _ := c.Status.StackCount()
		c = c.Damage(c.MaxHP * n / 16)
		c.Status = core.BadlyPoisoned(n + 1)
		return c, fmt.Sprintf("%s was hurt by poison!", c.Name)
	case core.StatusBurn:
		return c.Damage(c.MaxHP / 8), fmt.Sprintf("%s was hurt by its burn!", c.Name)
	case core.StatusSleep:
		n, _ := c.Status.TurnsRemaining()
		if n-1 <= 0 {
			c.Status = core.NoStatus()
			return c, fmt.Sprintf("%s woke up!", c.Name)
		}
		c.Status = core.Asleep(n - 1)
		return c, fmt.Sprintf("%s is fast asleep.", c.Name)
	case core.StatusFreeze:
		if r.Float64() < 0.2 {
			c.Status = core.NoStatus()
			return c, fmt.Sprintf("%s thawed out!", c.Name)
		}
		return c, fmt.Sprintf("%s is frozen solid!", c.Name)
	}
	return c, ""
}

// Cure clears kind from c, or any status when kind is StatusNone.
// It reports whether anything changed.
func Cure(c core.Combatant, kind core.StatusKind) (core.Combatant, bool) {
	if c.Status.IsNone() {
		return c, false
	}
	current := c.Status.Kind()
	match := kind == core.StatusNone || kind == current ||
		(kind == core.StatusPoison && current == core.StatusBadlyPoisoned)
	if !match {
		return c, false
	}
	c.Status = core.NoStatus()
	return c, true
}
