// Package monitor samples writer health while a battle is running and
// publishes it to the status file, the database and InfluxDB.
package monitor

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/monbattle/engine/internal/influx"
	"github.com/monbattle/engine/internal/model"
	"github.com/monbattle/engine/pkg/core"

	"gorm.io/datatypes"
)

const defaultInterval = time.Second

// QueueReporter reports pending events per buffered command.
type QueueReporter interface {
	QueueLengths() map[string]int
}

// BattleSource reports the running battle.
type BattleSource interface {
	Battle() (core.Snapshot, bool)
}

// WriteTimer reports how long the last storage flush took.
type WriteTimer interface {
	LastWriteDuration() time.Duration
}

// PerformanceRecorder is implemented by backends that store samples.
type PerformanceRecorder interface {
	RecordPerformance(p model.EnginePerformance)
	QueueLengths() model.QueueLengths
}

// Dependencies holds all dependencies for the monitor service
type Dependencies struct {
	Logger     *slog.Logger
	Dispatcher QueueReporter
	Battles    BattleSource
	Writes     WriteTimer
	// Recorder and Influx are optional sinks.
	Recorder   PerformanceRecorder
	Influx     *influx.Manager
	StatusFile string
	Interval   time.Duration
	Now        func() time.Time
}

// Service manages status monitoring
type Service struct {
	deps      Dependencies
	isRunning bool
	mu        sync.RWMutex
	stopChan  chan struct{}
	done      chan struct{}
}

// NewService creates a new monitor service
func NewService(deps Dependencies) *Service {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Interval <= 0 {
		deps.Interval = defaultInterval
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Service{deps: deps}
}

// IsRunning returns whether the status monitor is running
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetProgramStatus returns the status file lines and the sample they were
// built from.
func (s *Service) GetProgramStatus() (output []string, perf model.EnginePerformance) {
	perf = model.EnginePerformance{
		Time:             s.deps.Now(),
		DispatcherQueues: datatypes.JSONMap{},
	}
	queues := map[string]int{}
	if s.deps.Dispatcher != nil {
		queues = s.deps.Dispatcher.QueueLengths()
	}
	for cmd, n := range queues {
		perf.DispatcherQueues[cmd] = n
	}
	if s.deps.Battles != nil {
		if snap, ok := s.deps.Battles.Battle(); ok {
			perf.BattleID = snap.ID
		}
	}
	if s.deps.Recorder != nil {
		perf.QueueLengths = s.deps.Recorder.QueueLengths()
	}
	if s.deps.Writes != nil {
		perf.LastWriteDurationMs = float32(s.deps.Writes.LastWriteDuration().Milliseconds())
	}

	output = append(output, fmt.Sprintf("battle: %s", perf.BattleID))
	for _, v := range []any{queues, perf.QueueLengths, perf.LastWriteDurationMs} {
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			b = []byte(fmt.Sprintf(`{"error": "%s"}`, err))
		}
		output = append(output, string(b))
	}
	return output, perf
}

// Sample takes one reading and publishes it. It reports false when no
// battle is running.
func (s *Service) Sample() bool {
	lines, perf := s.GetProgramStatus()
	if perf.BattleID == "" {
		return false
	}
	if s.deps.StatusFile != "" {
		if err := writeStatus(s.deps.StatusFile, lines); err != nil {
			s.deps.Logger.Error("Error writing status file", "error", err)
		}
	}
	if s.deps.Recorder != nil {
		s.deps.Recorder.RecordPerformance(perf)
	}
	if s.deps.Influx != nil {
		queues := make(map[string]int, len(perf.DispatcherQueues))
		for cmd, n := range perf.DispatcherQueues {
			if v, ok := n.(int); ok {
				queues[cmd] = v
			}
		}
		lastWrite := time.Duration(perf.LastWriteDurationMs) * time.Millisecond
		point := influx.PerformancePoint(perf.Time, queues, lastWrite)
		if err := s.deps.Influx.WritePoint(influx.PerformanceBucket, point); err != nil {
			s.deps.Logger.Error("Error writing performance point", "error", err)
		}
	}
	return true
}

func writeStatus(path string, lines []string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	for _, line := range lines {
		if _, err := f.WriteString(line + "\n"); err != nil {
			return err
		}
	}
	return nil
}

// Start starts the status monitor goroutine
func (s *Service) Start() error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.done = make(chan struct{})
	stop, done := s.stopChan, s.done
	s.mu.Unlock()

	go func() {
		defer close(done)
		defer func() {
			s.mu.Lock()
			s.isRunning = false
			s.mu.Unlock()
		}()

		s.deps.Logger.Debug("Starting status monitor goroutine", "interval", s.deps.Interval)
		ticker := time.NewTicker(s.deps.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				s.Sample()
			}
		}
	}()

	return nil
}

// Stop stops the status monitor and waits for it to exit.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	close(s.stopChan)
	done := s.done
	s.isRunning = false
	s.mu.Unlock()
	<-done
}
