// Package storage defines the persistence collaborator the session records
// battles through, and picks a backend from configuration.
package storage

import "github.com/monbattle/engine/pkg/core"

// Backend is the interface all storage implementations must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Battle management. StartBattle may assign b.ID.
	StartBattle(b *core.BattleRecord) error
	EndBattle(b *core.BattleRecord) error

	// Turn recording
	RecordTurn(t *core.TurnRecord) error
}

// Saver is implemented by backends that can hold save slots.
// LoadGame returns core.ErrSaveNotFound for an empty slot.
type Saver interface {
	SaveGame(s *core.SaveData) error
	LoadGame(slot string) (*core.SaveData, error)
}

// BattleReader is implemented by backends that can read a battle back.
type BattleReader interface {
	LoadBattle(battleID string) (*core.BattleRecord, []core.TurnRecord, error)
}

// Uploadable is an optional interface for storage backends that produce
// replay files suitable for upload.
type Uploadable interface {
	GetExportedFilePath() string
	GetExportMetadata() core.UploadMetadata
}
