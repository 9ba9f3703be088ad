package core

import (
	"errors"
	"time"
)

// ErrSaveNotFound is returned by save stores for an empty slot.
var ErrSaveNotFound = errors.New("save not found")

// BattleRecord is the persisted summary of one battle. ID is the storage
// row ID and is zero until a SQL backend assigns it.
type BattleRecord struct {
	ID         uint        `json:"-"`
	BattleID   string      `json:"battleId"`
	Kind       BattleKind  `json:"kind"`
	Opponent   string      `json:"opponent"`
	StartedAt  time.Time   `json:"startedAt"`
	EndedAt    time.Time   `json:"endedAt"`
	Turns      int         `json:"turns"`
	Outcome    OutcomeKind `json:"outcome"`
	MoneyDelta int         `json:"moneyDelta"`
	Start      Snapshot    `json:"start"`
	Final      *Snapshot   `json:"final,omitempty"`
}

// Duration is the wall-clock length of an ended battle.
func (b BattleRecord) Duration() time.Duration {
	if b.EndedAt.IsZero() {
		return 0
	}
	return b.EndedAt.Sub(b.StartedAt)
}

// TurnRecord is one resolved turn.
type TurnRecord struct {
	BattleID     string    `json:"battleId"`
	Turn         int       `json:"turn"`
	Time         time.Time `json:"time"`
	PlayerAction Action    `json:"playerAction"`
	Outcome      Outcome   `json:"outcome"`
	Messages     []string  `json:"messages"`
	DamageDealt  int       `json:"damageDealt"`
	Snapshot     Snapshot  `json:"snapshot"`
}

// UploadMetadata describes an exported replay for the upload API.
type UploadMetadata struct {
	BattleID string      `json:"battleId"`
	Kind     BattleKind  `json:"kind"`
	Opponent string      `json:"opponent"`
	Turns    int         `json:"turns"`
	Outcome  OutcomeKind `json:"outcome"`
	Duration float64     `json:"duration"`
}
