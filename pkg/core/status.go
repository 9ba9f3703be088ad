package core

import (
	"encoding/json"
	"fmt"
)

// StatusKind names a primary status condition.
type StatusKind string

const (
	StatusNone          StatusKind = "none"
	StatusPoison        StatusKind = "psn"
	StatusBadlyPoisoned StatusKind = "tox"
	StatusBurn          StatusKind = "brn"
	StatusParalysis     StatusKind = "par"
	StatusSleep         StatusKind = "slp"
	StatusFreeze        StatusKind = "frz"
)

// PrimaryStatus is the single persistent condition of a combatant.
//
// It is a tagged union: the counter field is only meaningful for
// StatusSleep (turns remaining) and StatusBadlyPoisoned (stack count),
// and can only be set through the constructors below. The zero value
// is no status.
type PrimaryStatus struct {
	kind    StatusKind
	counter int
}

func NoStatus() PrimaryStatus  { return PrimaryStatus{} }
func Poisoned() PrimaryStatus  { return PrimaryStatus{kind: StatusPoison} }
func Burned() PrimaryStatus    { return PrimaryStatus{kind: StatusBurn} }
func Paralyzed() PrimaryStatus { return PrimaryStatus{kind: StatusParalysis} }
func Frozen() PrimaryStatus    { return PrimaryStatus{kind: StatusFreeze} }

// Asleep returns a sleep status that lasts turnsRemaining more turns.
func Asleep(turnsRemaining int) PrimaryStatus {
	return PrimaryStatus{kind: StatusSleep, counter: turnsRemaining}
}

// BadlyPoisoned returns a toxic status whose next tick deals stack/16 of max HP.
func BadlyPoisoned(stack int) PrimaryStatus {
	return PrimaryStatus{kind: StatusBadlyPoisoned, counter: stack}
}

// Kind returns the status kind, StatusNone for the zero value.
func (p PrimaryStatus) Kind() StatusKind {
	if p.kind == "" {
		return StatusNone
	}
	return p.kind
}

// IsNone reports whether no primary status is set.
func (p PrimaryStatus) IsNone() bool { return p.Kind() == StatusNone }

// TurnsRemaining returns the sleep counter. ok is false unless asleep.
func (p PrimaryStatus) TurnsRemaining() (int, bool) {
	if p.kind != StatusSleep {
		return 0, false
	}
	return p.counter, true
}

// StackCount returns the toxic counter. ok is false unless badly poisoned.
func (p PrimaryStatus) StackCount() (int, bool) {
	if p.kind != StatusBadlyPoisoned {
		return 0, false
	}
	return p.counter, true
}

func (p PrimaryStatus) String() string {
	switch p.kind {
	case StatusSleep:
		return fmt.Sprintf("slp(%d)", p.counter)
	case StatusBadlyPoisoned:
		return fmt.Sprintf("tox(%d)", p.counter)
	}
	return string(p.Kind())
}

type primaryStatusJSON struct {
	Kind           StatusKind `json:"kind"`
	TurnsRemaining int        `json:"turnsRemaining,omitempty"`
	StackCount     int        `json:"stackCount,omitempty"`
}

func (p PrimaryStatus) MarshalJSON() ([]byte, error) {
	out := primaryStatusJSON{Kind: p.Kind()}
	switch p.kind {
	case StatusSleep:
		out.TurnsRemaining = p.counter
	case StatusBadlyPoisoned:
		out.StackCount = p.counter
	}
	return json.Marshal(out)
}

func (p *PrimaryStatus) UnmarshalJSON(data []byte) error {
	var in primaryStatusJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	switch in.Kind {
	case "", StatusNone:
		*p = NoStatus()
	case StatusPoison:
		*p = Poisoned()
	case StatusBurn:
		*p = Burned()
	case StatusParalysis:
		*p = Paralyzed()
	case StatusFreeze:
		*p = Frozen()
	case StatusSleep:
		*p = Asleep(in.TurnsRemaining)
	case StatusBadlyPoisoned:
		*p = BadlyPoisoned(in.StackCount)
	default:
		return fmt.Errorf("unknown status kind: %s", in.Kind)
	}
	return nil
}

// VolatileKind names a battle-scoped condition.
type VolatileKind string

const (
	VolatileConfusion VolatileKind = "confusion"
	VolatileFlinch    VolatileKind = "flinch"
	VolatileTrap      VolatileKind = "trapped"
	VolatileLeechSeed VolatileKind = "leechSeed"
)

// Volatile is the bag of battle-scoped conditions. Counters are turns
// remaining; zero means inactive.
type Volatile struct {
	Confusion int  `json:"confusion,omitempty"`
	Flinch    bool `json:"flinch,omitempty"`
	Trap      int  `json:"trap,omitempty"`
	LeechSeed bool `json:"leechSeed,omitempty"`
}

// Has reports whether kind is active.
func (v Volatile) Has(kind VolatileKind) bool {
	switch kind {
	case VolatileConfusion:
		return v.Confusion > 0
	case VolatileFlinch:
		return v.Flinch
	case VolatileTrap:
		return v.Trap > 0
	case VolatileLeechSeed:
		return v.LeechSeed
	}
	return false
}
