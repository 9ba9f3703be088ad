package session

import (
	"errors"
	"fmt"
	"slices"

	"github.com/monbattle/engine/internal/catalog"
	"github.com/monbattle/engine/internal/engine"
	"github.com/monbattle/engine/internal/progress"
	"github.com/monbattle/engine/pkg/core"
)

// ActionLearnMove tags turn records produced by LearnMove. Target holds
// the forgotten slot, or -1 when the move was declined.
const ActionLearnMove core.ActionKind = "learnMove"

// StartWild rolls an encounter on the current location and starts a wild
// battle against it.
func (s *Session) StartWild() (core.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireField(); err != nil {
		return core.Snapshot{}, err
	}
	lead := core.FirstHealthy(s.state.Party)
	if lead < 0 {
		return core.Snapshot{}, reject("You have no healthy Pokemon!")
	}

	route, err := s.deps.Catalog.Route(s.state.Location)
	if errors.Is(err, catalog.ErrNotFound) {
		return core.Snapshot{}, reject("There are no wild Pokemon in %s.", s.state.Location)
	}
	if err != nil {
		return core.Snapshot{}, err
	}
	pm, ok := catalog.RollEncounter(route, s.deps.RNG)
	if !ok {
		return core.Snapshot{}, reject("There are no wild Pokemon in %s.", s.state.Location)
	}
	wild, err := s.deps.Catalog.NewCombatant(pm.SpeciesID, pm.Level, s.deps.RNG)
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("failed to create wild encounter: %w", err)
	}

	return s.begin(engine.Setup{
		Kind:          core.BattleWild,
		CanEscape:     true,
		PlayerParty:   s.state.Party,
		OpponentParty: []core.Combatant{wild},
		PlayerLead:    lead,
	}, wild.Name)
}

// Challenge starts a battle against the named trainer. Each trainer can
// be beaten once.
func (s *Session) Challenge(name string) (core.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireField(); err != nil {
		return core.Snapshot{}, err
	}
	lead := core.FirstHealthy(s.state.Party)
	if lead < 0 {
		return core.Snapshot{}, reject("You have no healthy Pokemon!")
	}

	t, err := s.deps.Catalog.Trainer(name)
	if errors.Is(err, catalog.ErrNotFound) {
		return core.Snapshot{}, reject("There is no trainer named %s.", name)
	}
	if err != nil {
		return core.Snapshot{}, err
	}
	if slices.Contains(s.state.DefeatedTrainers, t.Name) {
		return core.Snapshot{}, reject("%s %s has already been defeated!", t.Class, t.Name)
	}
	party, err := s.deps.Catalog.Party(t, s.deps.RNG)
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("failed to build trainer party: %w", err)
	}
	kind := t.Kind
	if !kind.IsTrainer() {
		kind = core.BattleTrainer
	}

	return s.begin(engine.Setup{
		Kind:          kind,
		CanEscape:     false,
		PlayerParty:   s.state.Party,
		OpponentParty: party,
		PlayerLead:    lead,
		Trainer:       &t,
	}, t.Name)
}

func (s *Session) begin(setup engine.Setup, opponent string) (core.Snapshot, error) {
	snap, err := s.deps.Engine.StartBattle(setup)
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("failed to start battle: %w", err)
	}
	s.resume(snap, opponent)
	s.deps.Logger.Info("Battle started", "kind", snap.Kind, "opponent", opponent)
	return snap.Clone(), nil
}

// resume makes snap the active battle and opens its record.
func (s *Session) resume(snap core.Snapshot, opponent string) {
	s.battle = &activeBattle{
		snap: snap,
		record: core.BattleRecord{
			BattleID:  snap.ID,
			Kind:      snap.Kind,
			Opponent:  opponent,
			StartedAt: s.deps.Now(),
			Start:     snap.Clone(),
		},
	}
	if s.deps.BattleContext != nil {
		s.deps.BattleContext.Set(snap.ID, snap.Turn)
	}
	if s.deps.Recorder != nil {
		s.deps.Recorder.BattleStarted(s.battle.record)
	}
}

// Act resolves one turn with the player's action. The opponent's action
// is chosen by the engine. Rejected actions leave the battle unchanged.
func (s *Session) Act(a core.Action) (engine.TurnResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.battle == nil {
		return engine.TurnResult{}, ErrNoBattle
	}
	if s.battle.snap.Pending != nil {
		return engine.TurnResult{Snapshot: s.battle.snap.Clone()}, reject("Choose whether to learn the new move first.")
	}
	if a.Kind == core.ActionItem && s.quantity(a.ItemID) == 0 {
		s.metrics.actionRejected()
		return engine.TurnResult{Snapshot: s.battle.snap.Clone()}, s.noneLeft(a.ItemID)
	}

	res, err := s.deps.Engine.ResolveTurn(s.battle.snap, a, nil)
	return s.apply(a, res, err)
}

// LearnMove settles a pending move: forgetSlot is the move to replace, or
// negative to give up on the new move.
func (s *Session) LearnMove(forgetSlot int) (engine.TurnResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.battle == nil {
		return engine.TurnResult{}, ErrNoBattle
	}
	if s.battle.snap.Pending == nil {
		return engine.TurnResult{Snapshot: s.battle.snap.Clone()}, reject("There is no move to learn.")
	}
	res, err := s.deps.Engine.ResolveMoveLearn(s.battle.snap, forgetSlot)
	return s.apply(core.Action{Kind: ActionLearnMove, Target: forgetSlot}, res, err)
}

func (s *Session) apply(a core.Action, res engine.TurnResult, err error) (engine.TurnResult, error) {
	if err != nil {
		if _, ok := engine.IsIllegal(err); ok {
			s.metrics.actionRejected()
		} else {
			s.deps.Logger.Error("Failed to resolve turn", "error", err)
		}
		return res, err
	}
	b := s.battle
	b.snap = res.Snapshot
	b.seq++
	s.metrics.turnResolved()

	if res.ItemUsed {
		s.removeItem(a.ItemID, 1)
	}
	for _, idx := range res.EvolutionReady {
		if !slices.Contains(b.evolve, idx) {
			b.evolve = append(b.evolve, idx)
		}
	}
	if s.deps.BattleContext != nil {
		s.deps.BattleContext.Set(b.snap.ID, b.snap.Turn)
	}
	if s.deps.Recorder != nil {
		s.deps.Recorder.TurnResolved(core.TurnRecord{
			BattleID:     b.snap.ID,
			Turn:         b.seq,
			Time:         s.deps.Now(),
			PlayerAction: a,
			Outcome:      res.Outcome,
			Messages:     slices.Clone(res.Messages),
			DamageDealt:  res.DamageDealt,
			Snapshot:     b.snap.Clone(),
		})
	}

	if res.Outcome.Terminal() {
		res.Messages = append(slices.Clone(res.Messages), s.finish(res)...)
	}
	res.Snapshot = res.Snapshot.Clone()
	return res, nil
}

// finish applies a terminal turn to the game state and closes the record.
// It returns the messages produced after the battle.
func (s *Session) finish(res engine.TurnResult) []string {
	b := s.battle
	snap := res.Snapshot
	var msgs []string

	s.state.Party = cloneParty(snap.PlayerParty)
	s.state.Money = max(0, s.state.Money+res.MoneyDelta)

	if res.Outcome.Kind == core.OutcomeBattleWon && snap.Trainer != nil {
		s.state.DefeatedTrainers = append(s.state.DefeatedTrainers, snap.Trainer.Name)
		if badge := snap.Trainer.Badge; badge != "" && !slices.Contains(s.state.Badges, badge) {
			s.state.Badges = append(s.state.Badges, badge)
		}
	}
	if res.Caught != nil {
		msgs = append(msgs, s.store(res.Caught.Clone()))
	}
	msgs = append(msgs, s.evolveParty(b.evolve)...)

	final := snap.Clone()
	rec := b.record
	rec.EndedAt = s.deps.Now()
	rec.Turns = b.seq
	rec.Outcome = res.Outcome.Kind
	rec.MoneyDelta = res.MoneyDelta
	rec.Final = &final

	s.metrics.battleEnded(res.Outcome.Kind)
	s.deps.Logger.Info("Battle ended",
		"outcome", res.Outcome.Kind,
		"turns", rec.Turns,
		"moneyDelta", rec.MoneyDelta,
		"duration", rec.Duration())
	if s.deps.Recorder != nil {
		s.deps.Recorder.BattleEnded(rec)
	}
	if s.deps.BattleContext != nil {
		s.deps.BattleContext.Clear()
	}
	s.battle = nil
	return msgs
}

// evolveParty evolves the listed party members that still qualify.
func (s *Session) evolveParty(indices []int) []string {
	var msgs []string
	for _, idx := range indices {
		if idx < 0 || idx >= len(s.state.Party) {
			continue
		}
		c := s.state.Party[idx]
		sp, err := s.deps.Catalog.Species(c.SpeciesID)
		if err != nil {
			s.deps.Logger.Warn("Skipping evolution", "name", c.Name, "error", err)
			continue
		}
		into, ok := progress.CheckEvolution(c, sp)
		if !ok {
			continue
		}
		target, err := s.deps.Catalog.Species(into)
		if err != nil {
			s.deps.Logger.Warn("Skipping evolution", "name", c.Name, "error", err)
			continue
		}
		evolved, msg := progress.Evolve(c, target)
		s.state.Party[idx] = evolved
		msgs = append(msgs, msg)
	}
	return msgs
}

// abandonBattle drops the active battle without a result. The record is
// closed with the snapshot's current outcome.
func (s *Session) abandonBattle() {
	b := s.battle
	if b == nil {
		return
	}
	final := b.snap.Clone()
	rec := b.record
	rec.EndedAt = s.deps.Now()
	rec.Turns = b.seq
	rec.Outcome = b.snap.Outcome.Kind
	rec.Final = &final
	s.deps.Logger.Warn("Battle abandoned", "battleId", rec.BattleID, "turns", rec.Turns)
	if s.deps.Recorder != nil {
		s.deps.Recorder.BattleEnded(rec)
	}
	if s.deps.BattleContext != nil {
		s.deps.BattleContext.Clear()
	}
	s.battle = nil
}
