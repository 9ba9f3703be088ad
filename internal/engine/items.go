package engine

import (
	"fmt"
	"math"

	"github.com/monbattle/engine/internal/progress"
	"github.com/monbattle/engine/internal/status"
	"github.com/monbattle/engine/pkg/core"
)

var errNoEffect = &IllegalActionError{Message: "It won't have any effect!"}

// ApplyItem uses a healing, curing, reviving or PP item on c. moveSlot is
// only read by single-move PP items. Balls are handled by the battle loop.
func ApplyItem(c core.Combatant, it core.Item, moveSlot int) (core.Combatant, []string, error) {
	c = c.Clone()
	switch it.Effect.Kind {
	case core.ItemEffectHeal:
		if c.Fainted() || c.CurrentHP >= c.MaxHP {
			return c, nil, errNoEffect
		}
		before := c.CurrentHP
		c = c.Heal(int(it.Effect.Value))
		return c, []string{recovered(c, before)}, nil

	case core.ItemEffectHealFull:
		if c.Fainted() || (c.CurrentHP >= c.MaxHP && c.Status.IsNone()) {
			return c, nil, errNoEffect
		}
		var msgs []string
		if before := c.CurrentHP; before < c.MaxHP {
			c = c.WithHP(c.MaxHP)
			msgs = append(msgs, recovered(c, before))
		}
		if cured, ok := status.Cure(c, core.StatusNone); ok {
			c = cured
			msgs = append(msgs, fmt.Sprintf("%s was cured of its status problem!", c.Name))
		}
		return c, msgs, nil

	case core.ItemEffectCure, core.ItemEffectCureAll:
		if c.Fainted() {
			return c, nil, errNoEffect
		}
		kind := it.Effect.Cures
		if it.Effect.Kind == core.ItemEffectCureAll {
			kind = core.StatusNone
		}
		cured, ok := status.Cure(c, kind)
		if !ok {
			return c, nil, errNoEffect
		}
		return cured, []string{fmt.Sprintf("%s was cured of its status problem!", c.Name)}, nil

	case core.ItemEffectRevive:
		if !c.Fainted() {
			return c, nil, errNoEffect
		}
		c.Status = core.NoStatus()
		c = c.WithHP(max(1, int(math.Floor(float64(c.MaxHP)*it.Effect.Value))))
		return c, []string{fmt.Sprintf("%s was revived!", c.Name)}, nil

	case core.ItemEffectRestorePP:
		if moveSlot < 0 || moveSlot >= len(c.Moves) {
			return c, nil, illegal("Choose a move to restore.")
		}
		if !restorePP(&c.Moves[moveSlot], int(it.Effect.Value)) {
			return c, nil, errNoEffect
		}
		return c, []string{fmt.Sprintf("%s's %s PP was restored!", c.Name, c.Moves[moveSlot].Move.Name)}, nil

	case core.ItemEffectRestorePPAll:
		restored := false
		for i := range c.Moves {
			if restorePP(&c.Moves[i], int(it.Effect.Value)) {
				restored = true
			}
		}
		if !restored {
			return c, nil, errNoEffect
		}
		return c, []string{fmt.Sprintf("%s's PP was restored!", c.Name)}, nil
	}
	return c, nil, illegal("Can't use that item here!")
}

func restorePP(slot *core.MoveSlot, amount int) bool {
	if slot.PP >= slot.Move.MaxPP {
		return false
	}
	slot.PP = min(slot.Move.MaxPP, slot.PP+amount)
	return true
}

func recovered(c core.Combatant, before int) string {
	return fmt.Sprintf("%s recovered %d HP!", c.Name, c.CurrentHP-before)
}

// checkItem validates an in-battle item: Potion-category items on a party
// member, or balls in a wild battle.
func (e *Engine) checkItem(s core.Snapshot, a core.Action) (core.Item, error) {
	it, err := e.lookup.Item(a.ItemID)
	if err != nil {
		return core.Item{}, fmt.Errorf("%w: %w", ErrInvariant, err)
	}
	switch it.Kind {
	case core.ItemBall:
		if s.Kind.IsTrainer() || it.Effect.Kind != core.ItemEffectCatch {
			return it, illegal("Can't use that item here!")
		}
		if _, err := e.lookup.Species(s.Opponent().SpeciesID); err != nil {
			return it, fmt.Errorf("%w: %w", ErrInvariant, err)
		}
		return it, nil
	case core.ItemPotion:
		if a.Target < 0 || a.Target >= len(s.PlayerParty) {
			return it, illegal("There's no Pokemon in that slot!")
		}
		if _, _, err := ApplyItem(s.PlayerParty[a.Target], it, -1); err != nil {
			return it, err
		}
		return it, nil
	}
	return it, illegal("Can't use that item here!")
}

// useItem applies a validated item. It reports whether the battle ended.
func (t *turn) useItem(it core.Item, target int) bool {
	t.res.ItemUsed = true
	if it.Kind == core.ItemBall {
		return t.throwBall(it)
	}
	c, msgs, err := ApplyItem(t.s.PlayerParty[target], it, -1)
	if err != nil {
		t.err = err
		return true
	}
	t.s.PlayerParty[target] = c
	t.say(msgs...)
	return false
}

func (t *turn) throwBall(it core.Item) bool {
	t.say(fmt.Sprintf("You used a %s!", it.Name))
	target := t.s.Opponent()
	sp, err := t.e.lookup.Species(target.SpeciesID)
	if err != nil {
		t.err = fmt.Errorf("%w: %w", ErrInvariant, err)
		return true
	}
	caught, _ := progress.AttemptCapture(target, sp.CatchRate, it.Effect.Value, t.e.rng)
	if !caught {
		t.say("Oh no! The Pokemon broke free!")
		return false
	}
	t.say(fmt.Sprintf("Gotcha! %s was caught!", target.Name))
	mon := target.Clone().ResetBattleState()
	t.res.Caught = &mon
	t.end(core.OutcomeBattleWon)
	return true
}
