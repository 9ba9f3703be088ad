package main

import (
	"fmt"
	"strings"

	"github.com/monbattle/engine/internal/storage"
)

// liveFeedPath is where the replay server accepts spectator streams.
const liveFeedPath = "/api/v1/battles/live"

func initStorage(opts options) (storage.Backend, error) {
	storageCfg := opts.Storage
	if storageCfg.Type == "websocket" && storageCfg.WebSocket.URL == "" {
		storageCfg.WebSocket.URL = httpToWS(opts.ServerURL) + liveFeedPath
		if storageCfg.WebSocket.Secret == "" {
			storageCfg.WebSocket.Secret = opts.APIKey
		}
	}

	backend, err := storage.NewBackend(storageCfg, Logger)
	if err != nil {
		Logger.Error("Failed to create storage backend", "error", err)
		return nil, err
	}
	if err := backend.Init(); err != nil {
		Logger.Error("Failed to initialize storage backend", "type", storageCfg.Type, "error", err)
		return nil, fmt.Errorf("failed to initialize %s storage: %w", storageCfg.Type, err)
	}
	Logger.Info("Storage backend initialized", "type", storageCfg.Type)
	return backend, nil
}

// httpToWS converts an HTTP(S) URL to a WebSocket URL.
func httpToWS(httpURL string) string {
	s := strings.TrimRight(httpURL, "/")
	s = strings.Replace(s, "https://", "wss://", 1)
	s = strings.Replace(s, "http://", "ws://", 1)
	return s
}
