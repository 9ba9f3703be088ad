package session

import (
	"errors"
	"fmt"

	"github.com/monbattle/engine/pkg/core"
)

// Save writes the game to slot. A battle in progress is saved with it.
func (s *Session) Save(slot string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireGame(); err != nil {
		return "", err
	}
	if s.deps.Saves == nil {
		return "", ErrNoSaveStore
	}
	data := &core.SaveData{
		Slot:    slot,
		Version: core.SaveVersion,
		SavedAt: s.deps.Now(),
		State:   s.snapshotState(),
	}
	if err := s.deps.Saves.SaveGame(data); err != nil {
		return "", fmt.Errorf("failed to save game: %w", err)
	}
	s.deps.Logger.Info("Game saved", "slot", slot)
	return "Game saved!", nil
}

// Load replaces the current game with the one in slot. A saved battle is
// resumed under a fresh record.
func (s *Session) Load(slot string) (string, error) {
	if s.deps.Saves == nil {
		return "", ErrNoSaveStore
	}
	data, err := s.deps.Saves.LoadGame(slot)
	if errors.Is(err, core.ErrSaveNotFound) {
		return "", reject("No save file found.")
	}
	if err != nil {
		return "", fmt.Errorf("failed to load game: %w", err)
	}
	if data.Version != core.SaveVersion {
		s.deps.Logger.Warn("Loading save with different version", "slot", slot, "version", data.Version)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.abandonBattle()
	s.state = data.State
	s.state.Battle = nil
	s.ensureBoxes()
	s.started = true
	if snap := data.State.Battle; snap != nil && !snap.Ended {
		opponent := snap.OpponentName()
		if snap.Trainer == nil && len(snap.OpponentParty) > 0 {
			opponent = snap.Opponent().Name
		}
		s.resume(snap.Clone(), opponent)
	}
	s.deps.Logger.Info("Game loaded", "slot", slot, "savedAt", data.SavedAt)
	return "Game loaded!", nil
}
