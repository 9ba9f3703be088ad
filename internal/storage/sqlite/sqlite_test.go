package sqlitestorage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/monbattle/engine/internal/cache"
	"github.com/monbattle/engine/internal/database"
	"github.com/monbattle/engine/internal/model"
	"github.com/monbattle/engine/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(id string) *core.BattleRecord {
	return &core.BattleRecord{
		BattleID:  id,
		Kind:      core.BattleWild,
		Opponent:  "Wild",
		StartedAt: time.Date(2026, 5, 2, 14, 30, 0, 0, time.UTC),
		Start:     core.Snapshot{ID: id, Kind: core.BattleWild},
	}
}

func countRows(t *testing.T, path string, m any) int64 {
	t.Helper()
	db, err := database.GetSqliteDBStandalone(path)
	require.NoError(t, err)
	var n int64
	require.NoError(t, db.Model(m).Count(&n).Error)
	return n
}

func TestNew(t *testing.T) {
	b, err := New(Config{}, cache.NewBattleCache(), nil)
	require.NoError(t, err)
	require.NotNil(t, b.Backend)
	require.NotNil(t, b.db)
	require.NoError(t, b.Init())
	assert.Nil(t, b.done, "no dump loop without a path")
	require.NoError(t, b.Close())
	require.NoError(t, b.Close(), "Close is idempotent")
}

func TestEndBattle_Dumps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "battles.db")
	b, err := New(Config{DumpPath: path, DumpInterval: time.Hour}, cache.NewBattleCache(), nil)
	require.NoError(t, err)
	require.NoError(t, b.Init())
	t.Cleanup(func() { _ = b.Close() })

	require.NoError(t, b.StartBattle(record("b-1")))
	require.NoError(t, b.RecordTurn(&core.TurnRecord{BattleID: "b-1", Turn: 1, Outcome: core.Outcome{Kind: core.OutcomeFled}}))

	end := record("b-1")
	end.Outcome = core.OutcomeFled
	end.EndedAt = end.StartedAt.Add(time.Second)
	require.NoError(t, b.EndBattle(end))

	assert.Equal(t, int64(1), countRows(t, path, &model.Battle{}))
	assert.Equal(t, int64(1), countRows(t, path, &model.BattleTurn{}))
}

func TestDumpLoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "loop.db")
	b, err := New(Config{DumpPath: path, DumpInterval: 20 * time.Millisecond}, cache.NewBattleCache(), nil)
	require.NoError(t, err)
	require.NoError(t, b.Init())

	require.NoError(t, b.SaveGame(&core.SaveData{Slot: "default", Version: core.SaveVersion}))

	assert.Eventually(t, func() bool {
		db, err := database.GetSqliteDBStandalone(path)
		if err != nil {
			return false
		}
		var n int64
		return db.Model(&model.SaveGame{}).Count(&n).Error == nil && n == 1
	}, 2*time.Second, 20*time.Millisecond)

	require.NoError(t, b.Close())
}

func TestClose_FinalDump(t *testing.T) {
	path := filepath.Join(t.TempDir(), "final.db")
	b, err := New(Config{DumpPath: path}, cache.NewBattleCache(), nil)
	require.NoError(t, err)
	require.NoError(t, b.Init())

	require.NoError(t, b.SaveGame(&core.SaveData{Slot: "a", Version: core.SaveVersion}))
	require.NoError(t, b.Close())

	assert.Equal(t, int64(1), countRows(t, path, &model.SaveGame{}))
}
