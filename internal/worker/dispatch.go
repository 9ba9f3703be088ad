package worker

import (
	"fmt"

	"github.com/monbattle/engine/internal/dispatcher"
	"github.com/monbattle/engine/internal/influx"
	"github.com/monbattle/engine/internal/storage"
	"github.com/monbattle/engine/pkg/core"
)

// Recording commands.
const (
	CmdBattleStart = ":BATTLE:START:"
	CmdBattleTurn  = ":BATTLE:TURN:"
	CmdBattleEnd   = ":BATTLE:END:"
)

// RegisterHandlers registers the recording handlers with the dispatcher.
func (m *Manager) RegisterHandlers(d *dispatcher.Dispatcher) {
	m.d = d

	// Battle start - sync (the backend must know the battle before turns arrive)
	d.Register(CmdBattleStart, m.handleBattleStart, dispatcher.Logged())

	// Turns - buffered, never dropped
	d.Register(CmdBattleTurn, m.handleBattleTurn, dispatcher.Buffered(1000), dispatcher.Blocking(), dispatcher.Logged())

	// Battle end - sync, waits for queued turns
	d.Register(CmdBattleEnd, m.handleBattleEnd, dispatcher.Logged())
}

func (m *Manager) handleBattleStart(e dispatcher.Event) (any, error) {
	rec, ok := e.Payload.(core.BattleRecord)
	if !ok {
		return nil, fmt.Errorf("battle start: unexpected payload %T", e.Payload)
	}
	if err := m.backend.StartBattle(&rec); err != nil {
		return nil, fmt.Errorf("failed to record battle start: %w", err)
	}
	m.deps.Logger.Debug("Battle recorded", "battleId", rec.BattleID, "rowId", rec.ID)
	return nil, nil
}

func (m *Manager) handleBattleTurn(e dispatcher.Event) (any, error) {
	defer m.pending.Done()

	rec, ok := e.Payload.(core.TurnRecord)
	if !ok {
		return nil, fmt.Errorf("battle turn: unexpected payload %T", e.Payload)
	}
	if err := m.backend.RecordTurn(&rec); err != nil {
		return nil, fmt.Errorf("failed to record turn %d: %w", rec.Turn, err)
	}
	if m.deps.Influx != nil {
		if err := m.deps.Influx.WritePoint(m.deps.Influx.BattleBucket(), influx.TurnPoint(rec)); err != nil {
			m.deps.Logger.Warn("Failed to write turn metric", "error", err)
		}
	}
	return nil, nil
}

func (m *Manager) handleBattleEnd(e dispatcher.Event) (any, error) {
	rec, ok := e.Payload.(core.BattleRecord)
	if !ok {
		return nil, fmt.Errorf("battle end: unexpected payload %T", e.Payload)
	}
	m.pending.Wait()

	if err := m.backend.EndBattle(&rec); err != nil {
		return nil, fmt.Errorf("failed to record battle end: %w", err)
	}
	if m.deps.Influx != nil {
		if err := m.deps.Influx.WritePoint(m.deps.Influx.BattleBucket(), influx.BattlePoint(rec)); err != nil {
			m.deps.Logger.Warn("Failed to write battle metric", "error", err)
		}
	}
	m.upload()
	return nil, nil
}

// upload sends the replay the backend just exported, if it exports any.
func (m *Manager) upload() {
	up, ok := m.backend.(storage.Uploadable)
	if !ok || m.deps.Uploader == nil {
		return
	}
	path := up.GetExportedFilePath()
	if path == "" {
		return
	}
	if err := m.deps.Uploader.Upload(path, up.GetExportMetadata()); err != nil {
		m.deps.Logger.Error("Failed to upload replay", "path", path, "error", err)
		return
	}
	m.deps.Logger.Info("Replay uploaded", "path", path)
}
