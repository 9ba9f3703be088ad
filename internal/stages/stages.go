// Package stages implements stat stage clamping, multipliers and changes.
package stages

import (
	"fmt"

	"github.com/monbattle/engine/pkg/core"
)

const (
	Min = -6
	Max = 6
)

// ratio is an exact stage multiplier num/den.
type ratio struct{ num, den int }

var table = [13]ratio{
	{1, 4}, {28, 100}, {1, 3}, {2, 5}, {1, 2}, {2, 3},
	{1, 1},
	{3, 2}, {2, 1}, {5, 2}, {3, 1}, {7, 2}, {4, 1},
}

// Clamp limits n to [Min, Max].
func Clamp(n int) int {
	return max(Min, min(Max, n))
}

// Multiplier returns the multiplier for stage after clamping.
func Multiplier(stage int) float64 {
	r := table[Clamp(stage)-Min]
	return float64(r.num) / float64(r.den)
}

// Apply returns floor(value * Multiplier(stage)) computed exactly.
func Apply(value, stage int) int {
	r := table[Clamp(stage)-Min]
	return value * r.num / r.den
}

// ApplyDelta moves stat by delta. applied is false, and c is returned
// unchanged, when the stage is already at the limit.
func ApplyDelta(c core.Combatant, stat core.Stat, delta int) (core.Combatant, string, bool) {
	current := c.Stages.Get(stat)
	next := Clamp(current + delta)
	name := stat.DisplayName()
	if next == current {
		direction := "higher"
		if delta < 0 {
			direction = "lower"
		}
		return c, fmt.Sprintf("%s's %s won't go any %s!", c.Name, name, direction), false
	}

	c.Stages = c.Stages.With(stat, next)
	return c, changeMessage(c.Name, name, next-current), true
}

func changeMessage(who, stat string, actual int) string {
	if actual > 0 {
		switch {
		case actual >= 3:
			return fmt.Sprintf("%s's %s rose drastically!", who, stat)
		case actual == 2:
			return fmt.Sprintf("%s's %s rose sharply!", who, stat)
		}
		return fmt.Sprintf("%s's %s rose!", who, stat)
	}
	switch {
	case actual <= -3:
		return fmt.Sprintf("%s's %s severely fell!", who, stat)
	case actual == -2:
		return fmt.Sprintf("%s's %s harshly fell!", who, stat)
	}
	return fmt.Sprintf("%s's %s fell!", who, stat)
}
