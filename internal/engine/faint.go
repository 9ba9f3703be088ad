package engine

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/monbattle/engine/internal/progress"
	"github.com/monbattle/engine/pkg/core"
)

// resolveFaints runs after any step that left an active combatant at 0 HP.
// The opponent side resolves first, so a double faint on the opponent's
// last combatant is a win.
func (t *turn) resolveFaints() {
	if opp := t.s.Opponent(); opp.Fainted() {
		t.say(fmt.Sprintf("%s fainted!", opp.Name))
		if !t.s.Player().Fainted() {
			t.awardExp()
			if t.err != nil {
				return
			}
			if t.s.Pending != nil {
				t.outcome = core.Outcome{Kind: core.OutcomeMoveLearnPending}
				return
			}
		}
	}
	t.afterExp()
}

// afterExp brings in the next opponent or ends the battle, then handles a
// fainted player combatant.
func (t *turn) afterExp() {
	if t.s.Opponent().Fainted() {
		next := core.FirstHealthy(t.s.OpponentParty)
		if next < 0 {
			t.win()
			return
		}
		t.s.OpponentActive = next
		t.say(fmt.Sprintf("%s sent out %s!", t.s.OpponentName(), t.s.Opponent().Name))
	}

	p := t.s.Player()
	if !p.Fainted() {
		return
	}
	t.say(fmt.Sprintf("%s fainted!", p.Name))
	t.set(core.SidePlayer, p.ResetBattleState())
	next := core.FirstHealthy(t.s.PlayerParty)
	if next < 0 {
		t.whiteout()
		return
	}
	t.s.PlayerActive = next
	t.say(fmt.Sprintf("Go! %s!", t.s.Player().Name))
	t.outcome = core.Outcome{Kind: core.OutcomeFainted, Side: core.SidePlayer}
}

func (t *turn) awardExp() {
	idx := t.s.PlayerActive
	c := t.s.PlayerParty[idx]
	defeated := t.s.Opponent()

	sp, err := t.e.lookup.Species(c.SpeciesID)
	if err != nil {
		t.err = fmt.Errorf("%w: %w", ErrInvariant, err)
		return
	}
	dsp, err := t.e.lookup.Species(defeated.SpeciesID)
	if err != nil {
		t.err = fmt.Errorf("%w: %w", ErrInvariant, err)
		return
	}
	bonus := 1.0
	if t.s.Kind.IsTrainer() {
		bonus = t.e.opts.TrainerExpBonus
	}

	lu, err := progress.AwardExp(c, sp, dsp, defeated.Level, bonus, t.e.lookup)
	if err != nil {
		t.err = fmt.Errorf("%w: %w", ErrInvariant, err)
		return
	}
	t.s.PlayerParty[idx] = lu.Combatant
	t.say(lu.Messages...)

	if lu.Levels > 0 {
		if _, ok := progress.CheckEvolution(lu.Combatant, sp); ok && !slices.Contains(t.res.EvolutionReady, idx) {
			t.res.EvolutionReady = append(t.res.EvolutionReady, idx)
		}
	}
	if len(lu.Pending) > 0 {
		t.s.Pending = &core.PendingMoveLearn{PartyIndex: idx, Moves: lu.Pending}
		t.say(wantsToLearn(lu.Combatant, lu.Pending[0]))
	}
}

func wantsToLearn(c core.Combatant, m core.Move) string {
	return fmt.Sprintf("%s wants to learn %s!", c.Name, m.Name)
}

func (t *turn) win() {
	if tr := t.s.Trainer; tr != nil {
		if tr.AfterText != "" {
			t.say(tr.AfterText)
		}
		if tr.Badge != "" {
			t.say(fmt.Sprintf("Received the %s!", tr.Badge))
		}
		if reward := progress.TrainerReward(*tr); reward > 0 {
			t.say(fmt.Sprintf("%s %s paid out %d!", tr.Class, tr.Name, reward))
			t.res.MoneyDelta += reward
		}
	}
	t.end(core.OutcomeBattleWon)
}

// whiteout ends a lost battle. Trainer losses cost a share of the reward;
// the whole party is restored either way.
func (t *turn) whiteout() {
	t.say("You whited out!")
	if tr := t.s.Trainer; tr != nil && t.s.Kind.IsTrainer() {
		reward := progress.TrainerReward(*tr)
		if reward <= 0 {
			reward = t.e.opts.DefaultReward
		}
		loss := int(math.Floor(float64(reward) * t.e.opts.WhiteoutPenalty))
		t.say(fmt.Sprintf("You lost %d to the winner!", loss))
		t.res.MoneyDelta -= loss
	}
	for i, c := range t.s.PlayerParty {
		t.s.PlayerParty[i] = c.FullyRestored()
	}
	t.say("Your Pokemon were healed at the Pokemon Center!")
	t.end(core.OutcomeBattleLost)
}

// ResolveMoveLearn settles the first pending move. A negative forgetSlot
// declines it; otherwise the move in forgetSlot is replaced. Once nothing
// is pending the interrupted faint resolution continues.
func (e *Engine) ResolveMoveLearn(in core.Snapshot, forgetSlot int) (TurnResult, error) {
	if in.Ended {
		return TurnResult{Snapshot: in}, invariant("battle %s already ended", in.ID)
	}
	if in.Pending == nil || len(in.Pending.Moves) == 0 {
		return TurnResult{Snapshot: in}, invariant("no move waiting to be learned")
	}
	if err := e.validate(in); err != nil {
		return TurnResult{Snapshot: in}, err
	}
	idx := in.Pending.PartyIndex
	if idx < 0 || idx >= len(in.PlayerParty) {
		return TurnResult{Snapshot: in}, invariant("pending party index %d out of range", idx)
	}

	t := e.newTurn(in)
	c := t.s.PlayerParty[idx]
	m := t.s.Pending.Moves[0]
	if forgetSlot < 0 {
		t.say(progress.DeclineMessage(c, m))
	} else {
		learned, msg, err := progress.ReplaceMove(c, forgetSlot, m)
		if err != nil {
			return TurnResult{Snapshot: in}, illegal("Choose a move to forget.")
		}
		t.s.PlayerParty[idx] = learned
		t.say(msg)
	}

	if rest := t.s.Pending.Moves[1:]; len(rest) > 0 {
		t.s.Pending.Moves = rest
		t.say(wantsToLearn(t.s.PlayerParty[idx], rest[0]))
		t.outcome = core.Outcome{Kind: core.OutcomeMoveLearnPending}
		return t.finish(false)
	}
	t.s.Pending = nil
	t.afterExp()
	return t.finish(false)
}

// IsIllegal reports whether err rejected a player action, returning the
// player-facing message.
func IsIllegal(err error) (string, bool) {
	var ia *IllegalActionError
	if errors.As(err, &ia) {
		return ia.Message, true
	}
	return "", false
}
