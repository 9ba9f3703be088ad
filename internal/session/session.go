// Package session holds the player's game state between battles and drives
// the engine on the player's behalf: it starts encounters, feeds actions to
// the turn orchestrator, applies results to party, bag and money, and hands
// records to storage.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/monbattle/engine/internal/catalog"
	"github.com/monbattle/engine/internal/engine"
	"github.com/monbattle/engine/internal/logging"
	"github.com/monbattle/engine/internal/rng"
	"github.com/monbattle/engine/internal/storage"
	"github.com/monbattle/engine/pkg/core"
)

var (
	// ErrNoGame is returned before NewGame or Load.
	ErrNoGame = errors.New("no game in progress")
	// ErrNoBattle is returned by battle commands outside a battle.
	ErrNoBattle = errors.New("no battle in progress")
	// ErrInBattle is returned by field commands during a battle.
	ErrInBattle = errors.New("battle in progress")
	// ErrNoSaveStore is returned by Save and Load without a Saver.
	ErrNoSaveStore = errors.New("no save store configured")
)

// Starters are the species offered by NewGame.
var Starters = []int{1, 4, 7}

const (
	StartingMoney    = 3000
	StartingLocation = "Pallet Town"
	StarterLevel     = 5
	DefaultName      = "Red"
)

// startingBag is Poke Ball x5, Potion x3, Antidote x2.
var startingBag = []core.BagEntry{
	{ItemID: 1, Quantity: 5},
	{ItemID: 5, Quantity: 3},
	{ItemID: 10, Quantity: 2},
}

// Recorder receives battle records as they happen. Implementations must
// not block the caller for long.
type Recorder interface {
	BattleStarted(rec core.BattleRecord)
	TurnResolved(rec core.TurnRecord)
	BattleEnded(rec core.BattleRecord)
}

// Dependencies are the collaborators of a Session. Catalog, Engine and RNG
// are required; the rest may be nil.
type Dependencies struct {
	Catalog       *catalog.Catalog
	Engine        *engine.Engine
	RNG           rng.Source
	Recorder      Recorder
	Saves         storage.Saver
	BattleContext *logging.BattleContext
	Logger        *slog.Logger
	Now           func() time.Time
}

// Session is one player's game. It is safe for concurrent use; commands
// are serialized.
type Session struct {
	deps    Dependencies
	metrics *metrics

	mu      sync.Mutex
	started bool
	state   core.GameState
	battle  *activeBattle
}

type activeBattle struct {
	snap   core.Snapshot
	record core.BattleRecord
	seq    int
	evolve []int
}

// New builds a session and reports catalog entries worth reviewing.
func New(deps Dependencies) (*Session, error) {
	if deps.Catalog == nil || deps.Engine == nil || deps.RNG == nil {
		return nil, errors.New("session needs a catalog, an engine and a random source")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	m, err := newMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to create session metrics: %w", err)
	}
	for _, w := range deps.Catalog.AmbiguousTargets() {
		deps.Logger.Warn("Stat stage effect has no explicit target", "effect", w)
	}
	return &Session{deps: deps, metrics: m}, nil
}

// reject builds a player-facing refusal that engine.IsIllegal recognizes.
func reject(format string, args ...any) error {
	return &engine.IllegalActionError{Message: fmt.Sprintf(format, args...)}
}

// NewGame discards any current game and starts a new one with starter at
// level 5.
func (s *Session) NewGame(playerName string, starter int) ([]string, error) {
	if !slices.Contains(Starters, starter) {
		return nil, reject("That Pokemon isn't one of the starters.")
	}
	c, err := s.deps.Catalog.NewCombatant(starter, StarterLevel, s.deps.RNG)
	if err != nil {
		return nil, fmt.Errorf("failed to create starter: %w", err)
	}
	if playerName == "" {
		playerName = DefaultName
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.abandonBattle()
	s.state = core.GameState{
		PlayerName:       playerName,
		Party:            []core.Combatant{c},
		Boxes:            make([][]core.Combatant, core.BoxCount),
		Bag:              slices.Clone(startingBag),
		Money:            StartingMoney,
		Badges:           []string{},
		Location:         StartingLocation,
		DefeatedTrainers: []string{},
	}
	s.started = true
	s.deps.Logger.Info("New game started", "player", playerName, "starter", c.Name)
	return []string{fmt.Sprintf("You received a %s!", c.Name)}, nil
}

// State returns a copy of the game state. Battle is set while a battle is
// in progress.
func (s *Session) State() (core.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return core.GameState{}, ErrNoGame
	}
	return s.snapshotState(), nil
}

// Battle returns the current battle snapshot.
func (s *Session) Battle() (core.Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.battle == nil {
		return core.Snapshot{}, false
	}
	return s.battle.snap.Clone(), true
}

// Travel moves the player. Wild encounters need a location with an
// encounter table.
func (s *Session) Travel(location string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireField(); err != nil {
		return err
	}
	if location == "" {
		return reject("Where do you want to go?")
	}
	s.state.Location = location
	return nil
}

func (s *Session) requireGame() error {
	if !s.started {
		return ErrNoGame
	}
	return nil
}

func (s *Session) requireField() error {
	if err := s.requireGame(); err != nil {
		return err
	}
	if s.battle != nil {
		return ErrInBattle
	}
	return nil
}

func (s *Session) snapshotState() core.GameState {
	st := s.state
	st.Party = cloneParty(st.Party)
	st.Boxes = make([][]core.Combatant, len(s.state.Boxes))
	for i, b := range s.state.Boxes {
		st.Boxes[i] = cloneParty(b)
	}
	st.Bag = slices.Clone(st.Bag)
	st.Badges = slices.Clone(st.Badges)
	st.DefeatedTrainers = slices.Clone(st.DefeatedTrainers)
	st.Battle = nil
	if s.battle != nil {
		snap := s.battle.snap.Clone()
		st.Battle = &snap
	}
	return st
}

func cloneParty(p []core.Combatant) []core.Combatant {
	if p == nil {
		return nil
	}
	out := make([]core.Combatant, len(p))
	for i, c := range p {
		out[i] = c.Clone()
	}
	return out
}
