// Package sqlitestorage implements the storage.Backend interface using an in-memory
// SQLite database with periodic disk dumps via VACUUM INTO.
// It wraps the GORM backend; the SQLite-specific concerns are creating the
// in-memory DB and dumping it to disk.
package sqlitestorage

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/monbattle/engine/internal/cache"
	"github.com/monbattle/engine/internal/database"
	"github.com/monbattle/engine/internal/storage/postgres"
	"github.com/monbattle/engine/pkg/core"

	"gorm.io/gorm"
)

// Config holds configuration for the SQLite storage backend.
type Config struct {
	DumpInterval time.Duration
	DumpPath     string // Path for periodic VACUUM INTO dumps
}

// Backend wraps the GORM backend for SQLite-specific behavior.
type Backend struct {
	*postgres.Backend
	db       *gorm.DB
	cfg      Config
	log      *slog.Logger
	stopChan chan struct{}
	done     chan struct{}
}

// New creates a new SQLite storage backend.
func New(cfg Config, battleCache *cache.BattleCache, logger *slog.Logger) (*Backend, error) {
	db, err := database.GetSqliteDBStandalone("")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory SQLite DB: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	gormBackend := postgres.New(postgres.Dependencies{
		DB:          db,
		BattleCache: battleCache,
		Logger:      logger,
	})

	return &Backend{
		Backend:  gormBackend,
		db:       db,
		cfg:      cfg,
		log:      logger.With("component", "sqlite"),
		stopChan: make(chan struct{}),
	}, nil
}

// Init initializes the embedded GORM backend and starts the dump goroutine.
func (b *Backend) Init() error {
	if err := b.Backend.Init(); err != nil {
		return err
	}

	if b.cfg.DumpPath != "" && b.cfg.DumpInterval > 0 {
		b.done = make(chan struct{})
		go b.dumpLoop()
	}

	return nil
}

// Close stops the dump goroutine, closes the embedded GORM backend and
// writes a last dump so nothing recorded since the previous tick is lost.
func (b *Backend) Close() error {
	select {
	case <-b.stopChan:
		return nil
	default:
	}
	close(b.stopChan)
	if b.done != nil {
		<-b.done
	}

	if err := b.Backend.Close(); err != nil {
		return err
	}
	if b.cfg.DumpPath == "" {
		return nil
	}
	return b.Dump()
}

// EndBattle records the battle end and dumps right away; battle ends are
// rare and the most valuable point to persist.
func (b *Backend) EndBattle(battle *core.BattleRecord) error {
	if err := b.Backend.EndBattle(battle); err != nil {
		return err
	}
	if b.cfg.DumpPath == "" {
		return nil
	}
	return b.Dump()
}

// Dump writes the in-memory database to DumpPath.
func (b *Backend) Dump() error {
	start := time.Now()
	if err := database.DumpMemoryDBToDisk(b.db, b.cfg.DumpPath); err != nil {
		b.log.Error("Error dumping to disk", "error", err)
		return err
	}
	b.log.Debug("Dumped to disk", "path", b.cfg.DumpPath, "duration", time.Since(start))
	return nil
}

// dumpLoop periodically dumps the in-memory SQLite database to disk via VACUUM INTO.
// VACUUM INTO creates a point-in-time snapshot, so no pause mechanism is needed.
func (b *Backend) dumpLoop() {
	defer close(b.done)
	ticker := time.NewTicker(b.cfg.DumpInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			return
		case <-ticker.C:
			_ = b.Dump()
		}
	}
}
