package status

import (
	"fmt"

	"github.com/monbattle/engine/pkg/core"
)

// ApplyVolatile adds kind to c's volatile bag. turns is used by confusion
// and trap only.
func ApplyVolatile(c core.Combatant, kind core.VolatileKind, turns int) (core.Combatant, string, bool) {
	if c.Volatile.Has(kind) {
		return c, "But it failed!", false
	}

	var msg string
	switch kind {
	case core.VolatileConfusion:
		c.Volatile.Confusion = max(1, turns)
		msg = fmt.Sprintf("%s became confused!", c.Name)
	case core.VolatileFlinch:
		c.Volatile.Flinch = true
		msg = fmt.Sprintf("%s flinched!", c.Name)
	case core.VolatileLeechSeed:
		c.Volatile.LeechSeed = true
		msg = fmt.Sprintf("%s was seeded!", c.Name)
	case core.VolatileTrap:
		c.Volatile.Trap = max(1, turns)
		msg = fmt.Sprintf("%s was trapped!", c.Name)
	default:
		return c, "", false
	}
	return c, msg, true
}

// LeechSeed drains floor(seeded.MaxHP/16) from seeded into seeder.
// A fainted seeder does not recover HP.
func LeechSeed(seeded, seeder core.Combatant) (core.Combatant, core.Combatant, string) {
	if !seeded.Volatile.LeechSeed || seeded.Fainted() {
		return seeded, seeder, ""
	}
	amount := seeded.MaxHP / 16
	seeded = seeded.Damage(amount)
	if !seeder.Fainted() {
		seeder = seeder.Heal(amount)
	}
	return seeded, seeder, fmt.Sprintf("%s's health was sapped by Leech Seed!", seeded.Name)
}

// CountDown advances confusion and trap counters and clears flinch.
func CountDown(c core.Combatant) (core.Combatant, []string) {
	var msgs []string
	c.Volatile.Flinch = false
	if c.Volatile.Confusion > 0 {
		c.Volatile.Confusion--
		if c.Volatile.Confusion == 0 {
			msgs = append(msgs, fmt.Sprintf("%s snapped out of confusion!", c.Name))
		}
	}
	if c.Volatile.Trap > 0 {
		c.Volatile.Trap--
		if c.Volatile.Trap == 0 {
			msgs = append(msgs, fmt.Sprintf("%s was freed from the trap!", c.Name))
		}
	}
	return c, msgs
}
