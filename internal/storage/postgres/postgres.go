// Package postgres implements the storage.Backend interface using GORM/PostgreSQL
// with an internal turn queue and a background DB writer goroutine.
package postgres

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/monbattle/engine/internal/cache"
	"github.com/monbattle/engine/internal/database"
	"github.com/monbattle/engine/internal/model"
	"github.com/monbattle/engine/internal/model/convert"
	"github.com/monbattle/engine/internal/queue"
	"github.com/monbattle/engine/pkg/core"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const defaultWriteInterval = 2 * time.Second

// Dependencies holds all dependencies for the GORM storage backend.
type Dependencies struct {
	DB          *gorm.DB
	BattleCache *cache.BattleCache
	Logger      *slog.Logger
	// WriteInterval is how often queued rows are flushed. Zero means 2s.
	WriteInterval time.Duration
}

// queues holds all the write queues for batch DB insertion.
type queues struct {
	Turns       *queue.Queue[model.BattleTurn]
	Performance *queue.Queue[model.EnginePerformance]
}

func newQueues() *queues {
	return &queues{
		Turns:       queue.New[model.BattleTurn](),
		Performance: queue.New[model.EnginePerformance](),
	}
}

// Backend implements storage.Backend using GORM with queue-based batch writes.
// Battle and save rows are written synchronously; turn rows go through the queue.
type Backend struct {
	deps     Dependencies
	queues   *queues
	stopChan chan struct{}
	wg       sync.WaitGroup
	writeMu  sync.Mutex

	lastWrite time.Duration
	statsMu   sync.Mutex
}

// New creates a new GORM storage backend.
func New(deps Dependencies) *Backend {
	if deps.BattleCache == nil {
		deps.BattleCache = cache.NewBattleCache()
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.WriteInterval <= 0 {
		deps.WriteInterval = defaultWriteInterval
	}
	return &Backend{
		deps:   deps,
		queues: newQueues(),
	}
}

// Init runs schema migration and starts the DB writer goroutine.
// If no DB was injected via Dependencies, it creates its own postgres connection.
func (b *Backend) Init() error {
	if b.deps.DB == nil {
		db, err := database.GetPostgresDBStandalone()
		if err != nil {
			return fmt.Errorf("failed to connect to postgres: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("failed to access sql interface: %w", err)
		}
		if err = sqlDB.Ping(); err != nil {
			return fmt.Errorf("failed to validate connection: %w", err)
		}
		sqlDB.SetMaxOpenConns(10)
		b.deps.DB = db
	}

	b.deps.Logger.Info("Migrating schema", "dialect", b.deps.DB.Name())
	if err := database.Migrate(b.deps.DB); err != nil {
		return fmt.Errorf("failed to setup DB: %w", err)
	}

	b.stopChan = make(chan struct{})
	b.startDBWriter()
	return nil
}

// Close stops the DB writer goroutine and flushes anything still queued.
func (b *Backend) Close() error {
	if b.stopChan != nil {
		close(b.stopChan)
		b.wg.Wait()
		b.stopChan = nil
	}
	if b.deps.DB == nil {
		return nil
	}
	return b.Flush()
}

// DB exposes the connection for tools that read the store directly.
func (b *Backend) DB() *gorm.DB {
	return b.deps.DB
}

// StartBattle inserts the battle synchronously because turn rows need its
// row ID, and caches that ID.
func (b *Backend) StartBattle(battle *core.BattleRecord) error {
	if b.deps.DB == nil {
		return errors.New("database not initialized")
	}
	row := convert.CoreToBattle(*battle)
	row.ID = 0
	if err := b.deps.DB.Create(&row).Error; err != nil {
		return fmt.Errorf("failed to insert battle %s: %w", battle.BattleID, err)
	}
	battle.ID = row.ID
	b.deps.BattleCache.Set(battle.BattleID, row.ID)
	return nil
}

// EndBattle flushes the battle's queued turns, then updates its summary row.
func (b *Backend) EndBattle(battle *core.BattleRecord) error {
	id, ok := b.deps.BattleCache.Get(battle.BattleID)
	if !ok {
		return fmt.Errorf("unknown battle: %s", battle.BattleID)
	}
	if err := b.Flush(); err != nil {
		return err
	}

	row := convert.CoreToBattle(*battle)
	err := b.deps.DB.Model(&model.Battle{}).Where("id = ?", id).Updates(map[string]any{
		"ended_at":    row.EndedAt,
		"turns":       row.Turns,
		"outcome":     row.Outcome,
		"money_delta": row.MoneyDelta,
		"final":       row.Final,
	}).Error
	if err != nil {
		return fmt.Errorf("failed to update battle %s: %w", battle.BattleID, err)
	}
	battle.ID = id
	b.deps.BattleCache.Delete(battle.BattleID)
	return nil
}

// RecordTurn converts and queues a turn.
func (b *Backend) RecordTurn(t *core.TurnRecord) error {
	id, ok := b.deps.BattleCache.Get(t.BattleID)
	if !ok {
		return fmt.Errorf("unknown battle: %s", t.BattleID)
	}
	b.queues.Turns.Push(convert.CoreToBattleTurn(*t, id))
	return nil
}

// RecordPerformance queues a writer health sample.
func (b *Backend) RecordPerformance(p model.EnginePerformance) {
	b.queues.Performance.Push(p)
}

// QueueLengths reports rows waiting to be written.
func (b *Backend) QueueLengths() model.QueueLengths {
	return model.QueueLengths{
		Turns: uint16(min(b.queues.Turns.Len(), 65535)),
	}
}

// LastWriteDuration is how long the most recent flush took.
func (b *Backend) LastWriteDuration() time.Duration {
	b.statsMu.Lock()
	defer b.statsMu.Unlock()
	return b.lastWrite
}

// SaveGame upserts a save slot.
func (b *Backend) SaveGame(s *core.SaveData) error {
	if b.deps.DB == nil {
		return errors.New("database not initialized")
	}
	row := convert.CoreToSaveGame(*s)
	err := b.deps.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slot"}},
		DoUpdates: clause.AssignmentColumns([]string{"version", "saved_at", "player_name", "money", "badges", "state", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to save slot %s: %w", s.Slot, err)
	}
	return nil
}

// LoadGame reads a save slot.
func (b *Backend) LoadGame(slot string) (*core.SaveData, error) {
	if b.deps.DB == nil {
		return nil, errors.New("database not initialized")
	}
	var row model.SaveGame
	err := b.deps.DB.Where("slot = ?", slot).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, core.ErrSaveNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load slot %s: %w", slot, err)
	}
	s, err := convert.SaveGameToCore(row)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadBattle reads a battle and its turns in turn order.
func (b *Backend) LoadBattle(battleID string) (*core.BattleRecord, []core.TurnRecord, error) {
	if b.deps.DB == nil {
		return nil, nil, errors.New("database not initialized")
	}
	var row model.Battle
	if err := b.deps.DB.Where("battle_id = ?", battleID).First(&row).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to load battle %s: %w", battleID, err)
	}
	battle, err := convert.BattleToCore(row)
	if err != nil {
		return nil, nil, err
	}

	var rows []model.BattleTurn
	if err := b.deps.DB.Where("battle_row_id = ?", row.ID).Order("turn, id").Find(&rows).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to load turns of %s: %w", battleID, err)
	}
	turns := make([]core.TurnRecord, 0, len(rows))
	for _, r := range rows {
		t, err := convert.BattleTurnToCore(r, battleID)
		if err != nil {
			return nil, nil, err
		}
		turns = append(turns, t)
	}
	return &battle, turns, nil
}

// writeQueue writes all items from a queue to the database in a transaction.
// On failure the batch goes back to the front of the queue.
func writeQueue[T any](db *gorm.DB, q *queue.Queue[T], name string, log *slog.Logger) error {
	if q.Empty() {
		return nil
	}

	items := q.Drain()
	err := db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&items).Error
	})
	if err != nil {
		log.Error("Error creating rows", "table", name, "count", len(items), "error", err)
		q.PushFront(items...)
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// Flush writes every queue now.
func (b *Backend) Flush() error {
	b.writeMu.Lock()
	defer b.writeMu.Unlock()

	start := time.Now()
	err := errors.Join(
		writeQueue(b.deps.DB, b.queues.Turns, "battle turns", b.deps.Logger),
		writeQueue(b.deps.DB, b.queues.Performance, "engine performances", b.deps.Logger),
	)

	b.statsMu.Lock()
	b.lastWrite = time.Since(start)
	b.statsMu.Unlock()
	return err
}

// startDBWriter starts the background goroutine that periodically drains queues into the DB.
func (b *Backend) startDBWriter() {
	stop := b.stopChan
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		ticker := time.NewTicker(b.deps.WriteInterval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				// errors are logged by writeQueue and retried next tick
				_ = b.Flush()
			}
		}
	}()
}
