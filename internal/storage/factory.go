package storage

import (
	"fmt"
	"log/slog"

	"github.com/monbattle/engine/internal/cache"
	"github.com/monbattle/engine/internal/config"
	"github.com/monbattle/engine/internal/storage/memory"
	"github.com/monbattle/engine/internal/storage/postgres"
	sqlitestorage "github.com/monbattle/engine/internal/storage/sqlite"
	"github.com/monbattle/engine/internal/storage/websocket"
)

// NewBackend creates a storage backend based on configuration. The
// backend is not initialized.
func NewBackend(cfg config.StorageConfig, logger *slog.Logger) (Backend, error) {
	switch cfg.Type {
	case "postgres":
		return postgres.New(postgres.Dependencies{
			BattleCache: cache.NewBattleCache(),
			Logger:      logger,
		}), nil
	case "sqlite":
		return sqlitestorage.New(sqlitestorage.Config{
			DumpInterval: cfg.SQLite.DumpInterval,
			DumpPath:     cfg.SQLite.Path,
		}, cache.NewBattleCache(), logger)
	case "websocket":
		return websocket.New(websocket.Config{
			URL:    cfg.WebSocket.URL,
			Secret: cfg.WebSocket.Secret,
		}, logger), nil
	case "memory", "":
		return memory.New(cfg.Memory), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
