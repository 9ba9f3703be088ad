// Package worker moves battle records off the game loop: the session
// hands records to the dispatcher and the handlers registered here write
// them to storage and metrics.
package worker

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/monbattle/engine/internal/dispatcher"
	"github.com/monbattle/engine/internal/influx"
	"github.com/monbattle/engine/internal/storage"
	"github.com/monbattle/engine/pkg/core"
)

// Uploader sends an exported replay somewhere.
type Uploader interface {
	Upload(filePath string, meta core.UploadMetadata) error
}

// Dependencies holds all dependencies for the worker manager. Influx and
// Uploader may be nil.
type Dependencies struct {
	Logger   *slog.Logger
	Influx   *influx.Manager
	Uploader Uploader
}

// Manager manages the recording handlers.
type Manager struct {
	deps    Dependencies
	backend storage.Backend

	d *dispatcher.Dispatcher
	// pending counts turns dispatched but not yet written, so a battle is
	// only closed after its last turn.
	pending sync.WaitGroup
}

// NewManager creates a new worker manager
func NewManager(deps Dependencies, backend storage.Backend) *Manager {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Manager{
		deps:    deps,
		backend: backend,
	}
}

// WriteDurationProvider is an optional interface that backends can implement
// to expose their last DB write duration for monitoring.
type WriteDurationProvider interface {
	LastWriteDuration() time.Duration
}

// LastWriteDuration returns the duration of the last DB write cycle.
// Returns 0 if the backend doesn't support this metric.
func (m *Manager) LastWriteDuration() time.Duration {
	if p, ok := m.backend.(WriteDurationProvider); ok {
		return p.LastWriteDuration()
	}
	return 0
}

// BattleStarted records the start synchronously so turns find the battle.
func (m *Manager) BattleStarted(rec core.BattleRecord) {
	m.dispatch(CmdBattleStart, rec)
}

// TurnResolved queues a turn record.
func (m *Manager) TurnResolved(rec core.TurnRecord) {
	m.pending.Add(1)
	if err := m.dispatch(CmdBattleTurn, rec); err != nil {
		m.pending.Done()
	}
}

// BattleEnded closes the battle once its queued turns are written.
func (m *Manager) BattleEnded(rec core.BattleRecord) {
	m.dispatch(CmdBattleEnd, rec)
}

func (m *Manager) dispatch(cmd string, payload any) error {
	if m.d == nil {
		return fmt.Errorf("worker not registered with a dispatcher")
	}
	_, err := m.d.Dispatch(dispatcher.Event{Command: cmd, Payload: payload, Timestamp: time.Now()})
	if err != nil {
		m.deps.Logger.Error("Failed to dispatch record", "command", cmd, "error", err)
	}
	return err
}
