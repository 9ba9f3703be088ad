// Package memory keeps battles in memory and exports each finished battle
// as a replay JSON file. Save slots are JSON files on disk.
package memory

import (
	"fmt"
	"slices"
	"sync"

	"github.com/monbattle/engine/internal/config"
	"github.com/monbattle/engine/pkg/core"
)

// BattleRecord groups a battle with all its turns
type BattleRecord struct {
	Battle core.BattleRecord
	Turns  []core.TurnRecord
}

// Backend stores battle data in memory and exports to JSON
type Backend struct {
	cfg     config.MemoryConfig
	battles map[string]*BattleRecord // keyed by BattleID

	idCounter      uint
	lastExportPath string
	lastExportMeta core.UploadMetadata
	mu             sync.RWMutex
}

// New creates a new memory backend
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{
		cfg:     cfg,
		battles: make(map[string]*BattleRecord),
	}
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// StartBattle begins recording a new battle and assigns it an ID.
func (b *Backend) StartBattle(battle *core.BattleRecord) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.battles[battle.BattleID]; ok {
		return fmt.Errorf("battle %s already started", battle.BattleID)
	}

	b.idCounter++
	battle.ID = b.idCounter
	b.battles[battle.BattleID] = &BattleRecord{
		Battle: *battle,
		Turns:  make([]core.TurnRecord, 0),
	}
	return nil
}

// RecordTurn appends a turn to its battle.
func (b *Backend) RecordTurn(t *core.TurnRecord) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	record, ok := b.battles[t.BattleID]
	if !ok {
		return fmt.Errorf("unknown battle: %s", t.BattleID)
	}
	record.Turns = append(record.Turns, *t)
	return nil
}

// EndBattle stores the final summary and exports the replay.
func (b *Backend) EndBattle(battle *core.BattleRecord) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	record, ok := b.battles[battle.BattleID]
	if !ok {
		return fmt.Errorf("unknown battle: %s", battle.BattleID)
	}
	battle.ID = record.Battle.ID
	record.Battle = *battle

	return b.exportJSON(record)
}

// LoadBattle returns a copy of a recorded battle and its turns.
func (b *Backend) LoadBattle(battleID string) (*core.BattleRecord, []core.TurnRecord, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	record, ok := b.battles[battleID]
	if !ok {
		return nil, nil, fmt.Errorf("unknown battle: %s", battleID)
	}
	battle := record.Battle
	return &battle, slices.Clone(record.Turns), nil
}

// GetExportedFilePath returns the path of the last exported replay.
func (b *Backend) GetExportedFilePath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportPath
}

// GetExportMetadata describes the last exported replay.
func (b *Backend) GetExportMetadata() core.UploadMetadata {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportMeta
}
