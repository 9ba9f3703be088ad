// Package engine resolves battles turn by turn. Every call takes a
// snapshot and returns a new one; the input is never modified.
package engine

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/monbattle/engine/internal/rng"
	"github.com/monbattle/engine/pkg/core"
)

// ErrInvariant marks a broken precondition: unknown IDs, HP out of range,
// bad slot indices or a call on a finished battle.
var ErrInvariant = errors.New("battle invariant violated")

// IllegalActionError rejects a chosen action. The snapshot is unchanged and
// Message is meant for the player.
type IllegalActionError struct {
	Message string
}

func (e *IllegalActionError) Error() string { return "illegal action: " + e.Message }

func illegal(format string, args ...any) error {
	return &IllegalActionError{Message: fmt.Sprintf(format, args...)}
}

func invariant(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvariant, fmt.Sprintf(format, args...))
}

// Lookup resolves static data by ID.
type Lookup interface {
	Species(id int) (core.Species, error)
	Move(id int) (core.Move, error)
	Item(id int) (core.Item, error)
}

// Options tunes rewards and penalties.
type Options struct {
	TrainerExpBonus float64
	// DefaultReward is used for the whiteout penalty when a trainer carries
	// no reward of its own.
	DefaultReward   int
	WhiteoutPenalty float64
}

// DefaultOptions returns the stock reward settings.
func DefaultOptions() Options {
	return Options{TrainerExpBonus: 1.5, DefaultReward: 2000, WhiteoutPenalty: 0.25}
}

// Engine holds the collaborators shared by every battle. It keeps no
// per-battle state; concurrent battles need separate random sources.
type Engine struct {
	lookup Lookup
	rng    rng.Source
	opts   Options
}

// New builds an engine. Zero option fields take their defaults.
func New(lookup Lookup, r rng.Source, opts Options) *Engine {
	def := DefaultOptions()
	if opts.TrainerExpBonus <= 0 {
		opts.TrainerExpBonus = def.TrainerExpBonus
	}
	if opts.DefaultReward <= 0 {
		opts.DefaultReward = def.DefaultReward
	}
	if opts.WhiteoutPenalty <= 0 {
		opts.WhiteoutPenalty = def.WhiteoutPenalty
	}
	return &Engine{lookup: lookup, rng: r, opts: opts}
}

// Setup describes a battle to start.
type Setup struct {
	Kind          core.BattleKind
	CanEscape     bool
	PlayerParty   []core.Combatant
	OpponentParty []core.Combatant
	PlayerLead    int
	Trainer       *core.Trainer
}

// TurnResult is everything a resolved turn produced.
type TurnResult struct {
	Snapshot core.Snapshot
	// Messages is this turn's slice of the log, in order.
	Messages   []string
	Outcome    core.Outcome
	MoneyDelta int
	// DamageDealt is HP the player's move removed from the opponent.
	DamageDealt int
	// Caught is set when a ball captured the wild opponent.
	Caught *core.Combatant
	// ItemUsed reports that one unit of the player's item was consumed.
	ItemUsed bool
	// EvolutionReady lists player party indices that reached an
	// evolution level this turn.
	EvolutionReady []int
}

// StartBattle builds the opening snapshot.
func (e *Engine) StartBattle(setup Setup) (core.Snapshot, error) {
	if len(setup.PlayerParty) == 0 || len(setup.OpponentParty) == 0 {
		return core.Snapshot{}, invariant("both parties need at least one combatant")
	}
	if len(setup.PlayerParty) > core.MaxPartySize || len(setup.OpponentParty) > core.MaxPartySize {
		return core.Snapshot{}, invariant("party larger than %d", core.MaxPartySize)
	}
	if setup.PlayerLead < 0 || setup.PlayerLead >= len(setup.PlayerParty) {
		return core.Snapshot{}, invariant("player lead %d out of range", setup.PlayerLead)
	}
	if setup.PlayerParty[setup.PlayerLead].Fainted() {
		return core.Snapshot{}, invariant("player lead %s has fainted", setup.PlayerParty[setup.PlayerLead].Name)
	}
	oppLead := core.FirstHealthy(setup.OpponentParty)
	if oppLead < 0 {
		return core.Snapshot{}, invariant("opponent party has no healthy combatant")
	}

	kind := setup.Kind
	if kind == "" {
		kind = core.BattleWild
		if setup.Trainer != nil {
			kind = setup.Trainer.Kind
			if !kind.IsTrainer() {
				kind = core.BattleTrainer
			}
		}
	}
	if kind.IsTrainer() && setup.Trainer == nil {
		return core.Snapshot{}, invariant("%s battle without a trainer", kind)
	}

	s := core.Snapshot{
		ID:             uuid.NewString(),
		Kind:           kind,
		CanEscape:      setup.CanEscape && !kind.IsTrainer(),
		Turn:           1,
		PlayerParty:    resetParty(setup.PlayerParty),
		OpponentParty:  resetParty(setup.OpponentParty),
		PlayerActive:   setup.PlayerLead,
		OpponentActive: oppLead,
		Outcome:        core.Outcome{Kind: core.OutcomeContinue},
	}
	if setup.Trainer != nil && kind.IsTrainer() {
		t := *setup.Trainer
		t.Party = append([]core.PartyMember(nil), t.Party...)
		s.Trainer = &t
	}
	if err := e.validate(s); err != nil {
		return core.Snapshot{}, err
	}

	if s.Trainer != nil {
		if s.Trainer.BeforeText != "" {
			s.Log = append(s.Log, s.Trainer.BeforeText)
		}
		s.Log = append(s.Log, fmt.Sprintf("%s %s sent out %s!", s.Trainer.Class, s.Trainer.Name, s.Opponent().Name))
	} else {
		s.Log = append(s.Log, fmt.Sprintf("A wild %s appeared!", s.Opponent().Name))
	}
	s.Log = append(s.Log, fmt.Sprintf("Go! %s!", s.Player().Name))
	return s, nil
}

func resetParty(p []core.Combatant) []core.Combatant {
	out := make([]core.Combatant, len(p))
	for i, c := range p {
		out[i] = c.Clone().ResetBattleState()
	}
	return out
}

// validate checks the structural invariants of a snapshot.
func (e *Engine) validate(s core.Snapshot) error {
	if s.PlayerActive < 0 || s.PlayerActive >= len(s.PlayerParty) {
		return invariant("player active slot %d out of range", s.PlayerActive)
	}
	if s.OpponentActive < 0 || s.OpponentActive >= len(s.OpponentParty) {
		return invariant("opponent active slot %d out of range", s.OpponentActive)
	}
	for _, party := range [][]core.Combatant{s.PlayerParty, s.OpponentParty} {
		for _, c := range party {
			if c.MaxHP <= 0 || c.CurrentHP < 0 || c.CurrentHP > c.MaxHP {
				return invariant("%s has HP %d/%d", c.Name, c.CurrentHP, c.MaxHP)
			}
			if _, err := e.lookup.Species(c.SpeciesID); err != nil {
				return fmt.Errorf("%w: %w", ErrInvariant, err)
			}
		}
	}
	return nil
}
