// Package influx sends battle metrics to InfluxDB v2, falling back to a
// gzip line-protocol file when the server cannot be reached.
package influx

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2_api "github.com/influxdata/influxdb-client-go/v2/api"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/influxdata/influxdb-client-go/v2/domain"
	"github.com/rs/zerolog"

	"github.com/monbattle/engine/internal/config"
	"github.com/monbattle/engine/pkg/core"
)

// PerformanceBucket holds engine health points next to the battle bucket.
const PerformanceBucket = "engine_performance"

// Manager handles InfluxDB connections and writes.
type Manager struct {
	Client       influxdb2.Client
	Writers      map[string]influxdb2_api.WriteAPI
	BackupWriter *gzip.Writer
	IsValid      bool
	BucketNames  []string
	Logger       zerolog.Logger
	BackupPath   string

	cfg        config.InfluxConfig
	backupFile *os.File
	mu         sync.Mutex
}

// NewManager creates a new InfluxDB manager.
func NewManager(log zerolog.Logger, cfg config.InfluxConfig, backupPath string) *Manager {
	if cfg.Bucket == "" {
		cfg.Bucket = "battles"
	}
	return &Manager{
		Writers:     make(map[string]influxdb2_api.WriteAPI),
		IsValid:     false,
		BucketNames: []string{cfg.Bucket, PerformanceBucket},
		Logger:      log,
		BackupPath:  backupPath,
		cfg:         cfg,
	}
}

// BattleBucket is the bucket turn and battle points go to.
func (m *Manager) BattleBucket() string { return m.BucketNames[0] }

// Connect establishes a connection to InfluxDB.
func (m *Manager) Connect() error {
	if !m.cfg.Enabled {
		return errors.New("influx.enabled is false")
	}

	m.Client = influxdb2.NewClientWithOptions(
		fmt.Sprintf("%s://%s:%s", m.cfg.Protocol, m.cfg.Host, m.cfg.Port),
		m.cfg.Token,
		influxdb2.DefaultOptions().
			SetBatchSize(500).
			SetFlushInterval(1000),
	)

	// validate client connection health
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	running, err := m.Client.Ping(ctx)

	if err != nil || !running {
		m.IsValid = false
		m.Logger.Info().Str("backupPath", m.BackupPath).
			Msg("Failed to initialize InfluxDB client, writing to backup file")
		if err := m.OpenBackup(); err != nil {
			return err
		}
		m.Logger.Warn().Msg("InfluxDB client failed to initialize, using backup writer")
		return nil
	}

	m.IsValid = true
	if err := m.setupOrganizationAndBuckets(); err != nil {
		return err
	}
	m.CreateWriters()
	m.Logger.Info().Msg("InfluxDB client initialized")
	return nil
}

// OpenBackup opens the gzip fallback file if it is not open yet.
func (m *Manager) OpenBackup() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.BackupWriter != nil {
		return nil
	}
	file, err := os.OpenFile(m.BackupPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("error creating backup file: %w", err)
	}
	m.backupFile = file
	m.BackupWriter = gzip.NewWriter(file)
	return nil
}

func (m *Manager) setupOrganizationAndBuckets() error {
	ctx := context.Background()
	orgName := m.cfg.Org

	// ensure org exists
	_, err := m.Client.OrganizationsAPI().FindOrganizationByName(ctx, orgName)
	if err != nil {
		m.Logger.Info().Str("org", orgName).Msg("Organization not found, creating")
		_, err = m.Client.OrganizationsAPI().CreateOrganizationWithName(ctx, orgName)
		if err != nil {
			m.Logger.Error().Err(err).Str("org", orgName).Msg("Error creating organization")
			return err
		}
	}

	influxOrg, err := m.Client.OrganizationsAPI().FindOrganizationByName(ctx, orgName)
	if err != nil {
		m.Logger.Error().Err(err).Str("org", orgName).Msg("Error getting organization")
		return err
	}

	// ensure buckets exist with 90 day retention
	for _, bucket := range m.BucketNames {
		_, err = m.Client.BucketsAPI().FindBucketByName(ctx, bucket)
		if err != nil {
			m.Logger.Info().Str("bucket", bucket).Msg("Bucket not found, creating")

			rule := domain.RetentionRuleTypeExpire
			_, err = m.Client.BucketsAPI().CreateBucketWithName(ctx, influxOrg, bucket, domain.RetentionRule{
				Type:         &rule,
				EverySeconds: 60 * 60 * 24 * 90, // 90 days
			})
			if err != nil {
				m.Logger.Error().Err(err).Str("bucket", bucket).Msg("Error creating bucket")
				return err
			}
		}
	}

	return nil
}

// CreateWriters creates write APIs for all configured buckets.
func (m *Manager) CreateWriters() {
	for _, bucket := range m.BucketNames {
		m.Logger.Trace().Str("bucket", bucket).Msg("Creating InfluxDB writer")
		m.Writers[bucket] = m.Client.WriteAPI(m.cfg.Org, bucket)

		errorsCh := m.Writers[bucket].Errors()
		go func(bucketName string, errorsCh <-chan error) {
			for writeErr := range errorsCh {
				m.Logger.Error().Err(writeErr).Str("bucket", bucketName).
					Msg("Error sending data to InfluxDB")
			}
		}(bucket, errorsCh)
	}

	m.Logger.Debug().Msg("InfluxDB writers initialized")
}

// WritePoint writes a point to InfluxDB or backup file.
func (m *Manager) WritePoint(bucket string, point *influxdb2_write.Point) error {
	if m.IsValid {
		w, ok := m.Writers[bucket]
		if !ok {
			return fmt.Errorf("influxDB bucket '%s' not registered", bucket)
		}
		w.WritePoint(point)
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.BackupWriter == nil {
		return fmt.Errorf("influxDB client not initialized and backup writer not available")
	}
	lineProtocol := influxdb2_write.PointToLineProtocol(point, time.Nanosecond)
	if _, err := m.BackupWriter.Write([]byte(lineProtocol + "\n")); err != nil {
		return fmt.Errorf("error writing to InfluxDB backup file: %w", err)
	}
	return nil
}

// Close flushes pending writes and closes the client or backup file.
func (m *Manager) Close() error {
	for _, w := range m.Writers {
		w.Flush()
	}
	if m.Client != nil {
		m.Client.Close()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.BackupWriter == nil {
		return nil
	}
	err := errors.Join(m.BackupWriter.Close(), m.backupFile.Close())
	m.BackupWriter = nil
	m.backupFile = nil
	return err
}

// TurnPoint is one resolved turn in the battle_turn measurement.
func TurnPoint(rec core.TurnRecord) *influxdb2_write.Point {
	snap := rec.Snapshot
	p := influxdb2_write.NewPointWithMeasurement("battle_turn").
		AddTag("battle_id", rec.BattleID).
		AddTag("kind", string(snap.Kind)).
		AddTag("action", string(rec.PlayerAction.Kind)).
		AddTag("outcome", string(rec.Outcome.Kind)).
		AddField("turn", rec.Turn).
		AddField("damage", rec.DamageDealt).
		AddField("messages", len(rec.Messages)).
		SetTime(rec.Time)
	if len(snap.PlayerParty) > snap.PlayerActive && snap.PlayerActive >= 0 {
		p.AddField("player_hp", snap.Player().CurrentHP)
	}
	if len(snap.OpponentParty) > snap.OpponentActive && snap.OpponentActive >= 0 {
		p.AddField("opponent_hp", snap.Opponent().CurrentHP)
	}
	return p
}

// BattlePoint summarizes a finished battle in the battle measurement.
func BattlePoint(rec core.BattleRecord) *influxdb2_write.Point {
	return influxdb2_write.NewPointWithMeasurement("battle").
		AddTag("battle_id", rec.BattleID).
		AddTag("kind", string(rec.Kind)).
		AddTag("opponent", rec.Opponent).
		AddTag("outcome", string(rec.Outcome)).
		AddField("turns", rec.Turns).
		AddField("money_delta", rec.MoneyDelta).
		AddField("duration_s", rec.Duration().Seconds()).
		SetTime(rec.EndedAt)
}

// PerformancePoint reports queue depths and the last storage write.
func PerformancePoint(at time.Time, queues map[string]int, lastWrite time.Duration) *influxdb2_write.Point {
	p := influxdb2_write.NewPointWithMeasurement("engine_performance").
		AddField("last_write_ms", float64(lastWrite.Microseconds())/1000).
		SetTime(at)
	for cmd, n := range queues {
		p.AddField("queue_"+cmd, n)
	}
	return p
}
