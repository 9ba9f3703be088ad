package core

// StruggleID is the catalog ID of the fallback move.
const StruggleID = 165

// EffectKind tags a MoveEffect variant.
type EffectKind string

const (
	EffectStatus    EffectKind = "status"
	EffectVolatile  EffectKind = "volatile"
	EffectStatStage EffectKind = "statStage"
	EffectHeal      EffectKind = "heal"
	EffectDrain     EffectKind = "drain"
	EffectRecoil    EffectKind = "recoil"
	EffectLeechSeed EffectKind = "leechSeed"
	EffectTrap      EffectKind = "trap"
)

// Target says who a stat-stage effect applies to. TargetUnset falls back
// to the sign-of-delta inference in effects.StageTarget.
type Target string

const (
	TargetUnset    Target = ""
	TargetSelf     Target = "self"
	TargetOpponent Target = "opponent"
)

// StatChange is a single {stat, delta} pair.
type StatChange struct {
	Stat  Stat `json:"stat" yaml:"stat"`
	Delta int  `json:"delta" yaml:"delta"`
}

// MoveEffect is a secondary effect descriptor. Only the fields relevant to
// Kind are read.
type MoveEffect struct {
	Kind     EffectKind   `json:"kind" yaml:"kind"`
	Chance   int          `json:"chance,omitempty" yaml:"chance,omitempty"` // percent; 0 means always
	Status   StatusKind   `json:"status,omitempty" yaml:"status,omitempty"`
	Volatile VolatileKind `json:"volatile,omitempty" yaml:"volatile,omitempty"`
	Turns    int          `json:"turns,omitempty" yaml:"turns,omitempty"`
	Changes  []StatChange `json:"changes,omitempty" yaml:"changes,omitempty"`
	Target   Target       `json:"target,omitempty" yaml:"target,omitempty"`
	Percent  int          `json:"percent,omitempty" yaml:"percent,omitempty"`
}

// Guaranteed reports whether the effect always applies.
func (e MoveEffect) Guaranteed() bool {
	return e.Chance <= 0 || e.Chance >= 100
}

// Move is an immutable move template.
type Move struct {
	ID       int          `json:"id" yaml:"id"`
	Name     string       `json:"name" yaml:"name"`
	Type     Type         `json:"type" yaml:"type"`
	Category Category     `json:"category" yaml:"category"`
	Power    int          `json:"power" yaml:"power"`
	Accuracy int          `json:"accuracy" yaml:"accuracy"` // 0 never misses
	MaxPP    int          `json:"maxPp" yaml:"maxPp"`
	Priority int          `json:"priority,omitempty" yaml:"priority,omitempty"`
	Effects  []MoveEffect `json:"effects,omitempty" yaml:"effects,omitempty"`
}

// IsStruggle reports whether m is the fallback move.
func (m Move) IsStruggle() bool { return m.ID == StruggleID }

// Damaging reports whether the move runs the damage calculator.
func (m Move) Damaging() bool {
	return m.Category != CategoryStatus && m.Power > 0
}

// InflictsStatus reports whether any effect applies a primary status.
func (m Move) InflictsStatus() bool {
	for _, e := range m.Effects {
		if e.Kind == EffectStatus {
			return true
		}
	}
	return false
}

// Struggle is the always-available fallback move.
var Struggle = Move{
	ID:       StruggleID,
	Name:     "Struggle",
	Type:     TypeNormal,
	Category: CategoryPhysical,
	Power:    50,
	Accuracy: 0,
	MaxPP:    0,
	Effects:  []MoveEffect{{Kind: EffectRecoil}},
}

// MoveSlot is a learned move with its remaining uses.
type MoveSlot struct {
	Move Move `json:"move"`
	PP   int  `json:"pp"`
}

// NewMoveSlot returns a slot at full PP.
func NewMoveSlot(m Move) MoveSlot {
	return MoveSlot{Move: m, PP: m.MaxPP}
}
