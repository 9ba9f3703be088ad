package engine

import (
	"fmt"
	"math"

	"github.com/monbattle/engine/internal/ai"
	"github.com/monbattle/engine/internal/effects"
	"github.com/monbattle/engine/internal/stages"
	"github.com/monbattle/engine/internal/status"
	"github.com/monbattle/engine/pkg/core"
)

// turn accumulates one resolution on a private copy of the snapshot.
type turn struct {
	e       *Engine
	in      core.Snapshot
	s       core.Snapshot
	msgs    []string
	outcome core.Outcome
	res     TurnResult
	err     error
}

func (e *Engine) newTurn(in core.Snapshot) *turn {
	return &turn{e: e, in: in, s: in.Clone()}
}

func (t *turn) say(msgs ...string) {
	for _, m := range msgs {
		if m != "" {
			t.msgs = append(t.msgs, m)
		}
	}
}

func (t *turn) active(side core.Side) core.Combatant { return t.s.Active(side) }

func (t *turn) set(side core.Side, c core.Combatant) {
	if side == core.SideOpponent {
		t.s.OpponentParty[t.s.OpponentActive] = c
		return
	}
	t.s.PlayerParty[t.s.PlayerActive] = c
}

func (t *turn) anyFainted() bool {
	return t.s.Player().Fainted() || t.s.Opponent().Fainted()
}

// choice is a validated move pick.
type choice struct {
	move     core.Move
	struggle bool
}

// ResolveTurn runs one full turn. opponent may be nil, in which case the
// opponent's move is picked by the ai package. An illegal player action
// returns an *IllegalActionError and the input snapshot untouched.
func (e *Engine) ResolveTurn(in core.Snapshot, player core.Action, opponent *core.Action) (TurnResult, error) {
	if in.Ended {
		return TurnResult{Snapshot: in}, invariant("battle %s already ended", in.ID)
	}
	if in.Pending != nil {
		return TurnResult{Snapshot: in}, invariant("battle %s is waiting for a move choice", in.ID)
	}
	if err := e.validate(in); err != nil {
		return TurnResult{Snapshot: in}, err
	}
	if in.Player().Fainted() || in.Opponent().Fainted() {
		return TurnResult{Snapshot: in}, invariant("an active combatant has fainted")
	}

	var (
		pick choice
		item core.Item
		err  error
	)
	switch player.Kind {
	case core.ActionMove:
		pick, err = chooseMove(in.Player(), player)
	case core.ActionSwitch:
		err = checkSwitch(in, player)
	case core.ActionFlee:
		err = checkFlee(in)
	case core.ActionItem:
		item, err = e.checkItem(in, player)
	default:
		err = invariant("unknown action kind %q", player.Kind)
	}
	if err != nil {
		return TurnResult{Snapshot: in}, err
	}

	var oppAction core.Action
	if opponent != nil {
		oppAction = *opponent
	} else {
		oppAction = ai.Action(in.Opponent(), in.Player(), e.rng)
	}
	if oppAction.Kind != core.ActionMove {
		return TurnResult{Snapshot: in}, invariant("opponent action %q is not supported", oppAction.Kind)
	}
	oppPick, err := chooseMove(in.Opponent(), oppAction)
	if err != nil {
		return TurnResult{Snapshot: in}, err
	}

	t := e.newTurn(in)
	switch player.Kind {
	case core.ActionMove:
		t.spend(core.SidePlayer, pick)
		t.spend(core.SideOpponent, oppPick)
		t.fight(pick, oppPick)
	case core.ActionSwitch:
		t.switchTo(player.Target)
		t.spend(core.SideOpponent, oppPick)
		t.freeAction(oppPick)
	case core.ActionFlee:
		if t.flee() {
			break
		}
		t.spend(core.SideOpponent, oppPick)
		t.freeAction(oppPick)
	case core.ActionItem:
		if t.useItem(item, player.Target) {
			break
		}
		t.spend(core.SideOpponent, oppPick)
		t.freeAction(oppPick)
	}
	return t.finish(true)
}

func chooseMove(c core.Combatant, a core.Action) (choice, error) {
	if !c.HasUsableMove() {
		return choice{move: core.Struggle, struggle: true}, nil
	}
	idx := c.MoveIndex(a.MoveID)
	if idx < 0 {
		return choice{}, illegal("%s doesn't know that move!", c.Name)
	}
	slot := c.Moves[idx]
	if slot.PP <= 0 {
		return choice{}, illegal("%s has no PP left for %s!", c.Name, slot.Move.Name)
	}
	return choice{move: slot.Move}, nil
}

func checkSwitch(s core.Snapshot, a core.Action) error {
	if a.Target < 0 || a.Target >= len(s.PlayerParty) {
		return illegal("There's no Pokemon in that slot!")
	}
	target := s.PlayerParty[a.Target]
	if target.Fainted() {
		return illegal("%s has no energy left to battle!", target.Name)
	}
	if a.Target == s.PlayerActive {
		return illegal("%s is already in battle!", target.Name)
	}
	return nil
}

func checkFlee(s core.Snapshot) error {
	if !s.CanEscape {
		return illegal("Can't escape from a trainer battle!")
	}
	return nil
}

// spend takes one PP from the chosen move. Struggle costs nothing.
func (t *turn) spend(side core.Side, c choice) {
	cb := t.active(side).Clone()
	if c.struggle {
		t.say(fmt.Sprintf("%s has no PP left!", cb.Name))
		return
	}
	if i := cb.MoveIndex(c.move.ID); i >= 0 && cb.Moves[i].PP > 0 {
		cb.Moves[i].PP--
	}
	t.set(side, cb)
}

// order decides who moves first: priority, then effective speed, then a
// coin flip.
func (t *turn) order(player, opponent core.Move) core.Side {
	if player.Priority != opponent.Priority {
		if player.Priority > opponent.Priority {
			return core.SidePlayer
		}
		return core.SideOpponent
	}
	ps := EffectiveSpeed(t.s.Player())
	os := EffectiveSpeed(t.s.Opponent())
	if ps != os {
		if ps > os {
			return core.SidePlayer
		}
		return core.SideOpponent
	}
	if t.e.rng.Intn(2) == 0 {
		return core.SidePlayer
	}
	return core.SideOpponent
}

// EffectiveSpeed is speed after its stage multiplier.
func EffectiveSpeed(c core.Combatant) int {
	return stages.Apply(c.Stats.Speed, c.Stages.Speed)
}

func (t *turn) fight(player, opponent choice) {
	moves := map[core.Side]core.Move{
		core.SidePlayer:   player.move,
		core.SideOpponent: opponent.move,
	}
	first := t.order(player.move, opponent.move)
	for _, side := range []core.Side{first, first.Other()} {
		t.act(side, moves[side])
		if t.anyFainted() {
			t.resolveFaints()
			return
		}
	}
	t.endOfTurn()
}

// freeAction lets the opponent act after a non-move player action.
func (t *turn) freeAction(opponent choice) {
	t.act(core.SideOpponent, opponent.move)
	if t.anyFainted() {
		t.resolveFaints()
		return
	}
	t.endOfTurn()
}

// act gates and then executes side's move.
func (t *turn) act(side core.Side, move core.Move) {
	g := status.CanAct(t.active(side), t.e.rng)
	t.set(side, g.Combatant)
	t.say(g.Messages...)
	if !g.CanAct {
		return
	}

	res := effects.Execute(g.Combatant, t.active(side.Other()), move, t.e.rng)
	t.set(side, res.Attacker)
	t.set(side.Other(), res.Defender)
	t.say(res.Messages...)
	if side == core.SidePlayer {
		t.res.DamageDealt += res.DamageDealt
	}
}

// endOfTurn runs leech seed, volatile countdowns and status damage,
// stopping at the first step that leaves a combatant fainted.
func (t *turn) endOfTurn() {
	seeds := []core.Side{core.SidePlayer, core.SideOpponent}
	for _, seeded := range seeds {
		victim, seeder, msg := status.LeechSeed(t.active(seeded), t.active(seeded.Other()))
		t.set(seeded, victim)
		t.set(seeded.Other(), seeder)
		t.say(msg)
		if t.anyFainted() {
			t.resolveFaints()
			return
		}
	}

	for _, side := range seeds {
		c, msgs := status.CountDown(t.active(side))
		t.set(side, c)
		t.say(msgs...)
	}

	for _, side := range seeds {
		c, msg := status.Tick(t.active(side), t.e.rng)
		t.set(side, c)
		t.say(msg)
	}
	if t.anyFainted() {
		t.resolveFaints()
	}
}

func (t *turn) switchTo(idx int) {
	out := t.s.Player()
	t.say(fmt.Sprintf("Come back! %s!", out.Name))
	t.set(core.SidePlayer, out.ResetBattleState())
	t.s.PlayerActive = idx
	t.say(fmt.Sprintf("Go! %s!", t.s.Player().Name))
}

// flee rolls the escape. It reports whether the battle ended.
func (t *turn) flee() bool {
	p, o := t.s.Player(), t.s.Opponent()
	denom := math.Mod(float64(o.Stats.Speed)/4, 256)
	escaped := denom == 0
	if !escaped {
		chance := float64(p.Stats.Speed*32)/denom + float64(30*t.s.Turn)
		escaped = t.e.rng.Float64()*256 < chance
	}
	if !escaped {
		t.say("Can't escape!")
		return false
	}
	t.say("Got away safely!")
	t.end(core.OutcomeFled)
	return true
}

// end closes the battle. Stat stages and volatiles never outlive a battle.
func (t *turn) end(kind core.OutcomeKind) {
	t.outcome = core.Outcome{Kind: kind}
	t.s.Ended = true
	for i, c := range t.s.PlayerParty {
		t.s.PlayerParty[i] = c.ResetBattleState()
	}
}

func (t *turn) finish(countTurn bool) (TurnResult, error) {
	if t.err != nil {
		return TurnResult{Snapshot: t.in}, t.err
	}
	for _, party := range [][]core.Combatant{t.s.PlayerParty, t.s.OpponentParty} {
		for i := range party {
			party[i].Volatile.Flinch = false
		}
	}
	if t.outcome.Kind == "" {
		t.outcome = core.Outcome{Kind: core.OutcomeContinue}
	}
	if countTurn && !t.outcome.Terminal() {
		t.s.Turn++
	}
	t.s.Outcome = t.outcome
	t.s.Log = append(t.s.Log, t.msgs...)

	res := t.res
	res.Snapshot = t.s
	res.Messages = t.msgs
	res.Outcome = t.outcome
	return res, nil
}
