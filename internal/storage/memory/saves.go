package memory

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/monbattle/engine/pkg/core"
)

func (b *Backend) savePath(slot string) (string, error) {
	if slot == "" || strings.ContainsAny(slot, `/\`) || strings.Contains(slot, "..") {
		return "", fmt.Errorf("invalid save slot: %q", slot)
	}
	return filepath.Join(b.cfg.SaveDir, slot+".json"), nil
}

// SaveGame writes s to <SaveDir>/<slot>.json, replacing any earlier save.
func (b *Backend) SaveGame(s *core.SaveData) error {
	path, err := b.savePath(s.Slot)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(b.cfg.SaveDir, 0755); err != nil {
		return fmt.Errorf("failed to create save directory: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal save: %w", err)
	}

	// write then rename so a crash never leaves a truncated save
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write save: %w", err)
	}
	return os.Rename(tmp, path)
}

// LoadGame reads a slot written by SaveGame.
func (b *Backend) LoadGame(slot string) (*core.SaveData, error) {
	path, err := b.savePath(slot)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, core.ErrSaveNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read save: %w", err)
	}

	var s core.SaveData
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode save %s: %w", slot, err)
	}
	return &s, nil
}
