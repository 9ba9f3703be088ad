package status

import (
	"fmt"

	"github.com/monbattle/engine/internal/rng"
	"github.com/monbattle/engine/pkg/core"
)

// Gate is the outcome of the turn-start action check.
type Gate struct {
	CanAct    bool
	Messages  []string
	Combatant core.Combatant
}

// CanAct evaluates primary status, then flinch, then confusion, stopping at
// the first condition that prevents the action. Sleep shares its counter
// with Tick.
func CanAct(c core.Combatant, r rng.Source) Gate {
	g := Gate{CanAct: true, Combatant: c}
	stop := func(msg string) Gate {
		g.CanAct = false
		g.Messages = append(g.Messages, msg)
		return g
	}

	switch c.Status.Kind() {
	case core.StatusParalysis:
		if r.Float64() < 0.25 {
			return stop(fmt.Sprintf("%s is paralyzed! It can't move!", c.Name))
		}
	case core.StatusSleep:
		n, _ := c.Status.TurnsRemaining()
		if n-1 <= 0 {
			g.Combatant.Status = core.NoStatus()
			g.Messages = append(g.Messages, fmt.Sprintf("%s woke up!", c.Name))
		} else {
			g.Combatant.Status = core.Asleep(n - 1)
			return stop(fmt.Sprintf("%s is fast asleep!", c.Name))
		}
	case core.StatusFreeze:
		if r.Float64() < 0.2 {
			g.Combatant.Status = core.NoStatus()
			g.Messages = append(g.Messages, fmt.Sprintf("%s thawed out!", c.Name))
		} else {
			return stop(fmt.Sprintf("%s is frozen solid!", c.Name))
		}
	}

	if g.Combatant.Volatile.Flinch {
		g.Combatant.Volatile.Flinch = false
		return stop(fmt.Sprintf("%s flinched and couldn't move!", c.Name))
	}

	if g.Combatant.Volatile.Confusion > 0 {
		if r.Float64() < 0.5 {
			g.Combatant = g.Combatant.Damage(c.MaxHP / 16)
			return stop(fmt.Sprintf("%s is confused! It hurt itself in confusion!", c.Name))
		}
		g.Messages = append(g.Messages, fmt.Sprintf("%s is confused!", c.Name))
	}
	return g
}
