package postgres

import (
	"testing"
	"time"

	"github.com/monbattle/engine/internal/cache"
	"github.com/monbattle/engine/internal/database"
	"github.com/monbattle/engine/internal/model"
	"github.com/monbattle/engine/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var started = time.Date(2026, 5, 2, 14, 30, 0, 0, time.UTC)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.GetSqliteDBStandalone("")
	require.NoError(t, err)
	return db
}

// newTestBackend creates an initialized Backend on a private in-memory SQLite DB.
// The writer ticks rarely so tests control flushing.
func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	b := New(Dependencies{
		DB:            newTestDB(t),
		BattleCache:   cache.NewBattleCache(),
		WriteInterval: time.Hour,
	})
	require.NoError(t, b.Init())
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func battle(id string) *core.BattleRecord {
	return &core.BattleRecord{
		BattleID:  id,
		Kind:      core.BattleWild,
		Opponent:  "Wild",
		StartedAt: started,
		Start:     core.Snapshot{ID: id, Kind: core.BattleWild, Turn: 1, CanEscape: true},
	}
}

func turn(id string, n int) *core.TurnRecord {
	return &core.TurnRecord{
		BattleID:     id,
		Turn:         n,
		Time:         started.Add(time.Duration(n) * time.Second),
		PlayerAction: core.UseMove(33),
		Outcome:      core.Outcome{Kind: core.OutcomeContinue},
		Messages:     []string{"Pikachu used Tackle!"},
		DamageDealt:  4,
	}
}

func TestNew_Defaults(t *testing.T) {
	b := New(Dependencies{})
	require.NotNil(t, b)
	assert.NotNil(t, b.deps.BattleCache)
	assert.NotNil(t, b.deps.Logger)
	assert.Equal(t, defaultWriteInterval, b.deps.WriteInterval)
	assert.NotNil(t, b.queues)
}

func TestInitClose(t *testing.T) {
	db := newTestDB(t)
	b := New(Dependencies{DB: db})

	require.NoError(t, b.Init())
	require.NotNil(t, b.stopChan)
	for _, m := range model.DatabaseModels {
		assert.True(t, db.Migrator().HasTable(m))
	}

	require.NoError(t, b.Close())
	require.NoError(t, b.Close(), "Close is idempotent")
}

func TestNoDB(t *testing.T) {
	b := New(Dependencies{})

	assert.Error(t, b.StartBattle(battle("b-1")))
	assert.Error(t, b.RecordTurn(turn("b-1", 1)), "turns of unknown battles are rejected")
	assert.Error(t, b.SaveGame(&core.SaveData{Slot: "x"}))
	_, err := b.LoadGame("x")
	assert.Error(t, err)
	_, _, err = b.LoadBattle("b-1")
	assert.Error(t, err)
	assert.NoError(t, b.Close())
}

func TestStartBattle_CachesRowID(t *testing.T) {
	b := newTestBackend(t)

	rec := battle("b-1")
	require.NoError(t, b.StartBattle(rec))
	assert.NotZero(t, rec.ID)

	id, ok := b.deps.BattleCache.Get("b-1")
	require.True(t, ok)
	assert.Equal(t, rec.ID, id)

	assert.Error(t, b.StartBattle(battle("b-1")), "battle IDs are unique")
}

func TestRecordTurn_Queues(t *testing.T) {
	b := newTestBackend(t)
	require.NoError(t, b.StartBattle(battle("b-1")))

	require.NoError(t, b.RecordTurn(turn("b-1", 1)))
	require.NoError(t, b.RecordTurn(turn("b-1", 2)))
	assert.Equal(t, 2, b.queues.Turns.Len())
	assert.Equal(t, uint16(2), b.QueueLengths().Turns)

	require.NoError(t, b.Flush())
	assert.True(t, b.queues.Turns.Empty())

	var count int64
	require.NoError(t, b.DB().Model(&model.BattleTurn{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestEndBattle_FlushesAndUpdates(t *testing.T) {
	b := newTestBackend(t)
	require.NoError(t, b.StartBattle(battle("b-1")))
	require.NoError(t, b.RecordTurn(turn("b-1", 1)))

	end := battle("b-1")
	end.EndedAt = started.Add(time.Minute)
	end.Turns = 1
	end.Outcome = core.OutcomeFled
	final := end.Start.Clone()
	final.Ended = true
	end.Final = &final
	require.NoError(t, b.EndBattle(end))

	assert.True(t, b.queues.Turns.Empty())
	_, cached := b.deps.BattleCache.Get("b-1")
	assert.False(t, cached, "ended battles leave the cache")

	got, turns, err := b.LoadBattle("b-1")
	require.NoError(t, err)
	assert.Equal(t, core.OutcomeFled, got.Outcome)
	assert.True(t, end.EndedAt.Equal(got.EndedAt))
	require.NotNil(t, got.Final)
	assert.True(t, got.Final.Ended)
	require.Len(t, turns, 1)
	assert.Equal(t, "b-1", turns[0].BattleID)
	assert.Equal(t, []string{"Pikachu used Tackle!"}, turns[0].Messages)

	assert.Error(t, b.EndBattle(battle("missing")))
}

func TestLoadBattle_TurnOrder(t *testing.T) {
	b := newTestBackend(t)
	require.NoError(t, b.StartBattle(battle("b-1")))
	for _, n := range []int{3, 1, 2} {
		require.NoError(t, b.RecordTurn(turn("b-1", n)))
	}
	require.NoError(t, b.Flush())

	_, turns, err := b.LoadBattle("b-1")
	require.NoError(t, err)
	require.Len(t, turns, 3)
	for i, tr := range turns {
		assert.Equal(t, i+1, tr.Turn)
	}

	_, _, err = b.LoadBattle("missing")
	assert.Error(t, err)
}

func TestSaveGame_Upsert(t *testing.T) {
	b := newTestBackend(t)

	_, err := b.LoadGame("default")
	assert.ErrorIs(t, err, core.ErrSaveNotFound)

	save := &core.SaveData{
		Slot:    "default",
		Version: core.SaveVersion,
		SavedAt: started,
		State:   core.GameState{PlayerName: "Red", Money: 500, Badges: []string{"Boulder Badge"}},
	}
	require.NoError(t, b.SaveGame(save))

	save.State.Money = 900
	save.SavedAt = started.Add(time.Hour)
	require.NoError(t, b.SaveGame(save))

	var count int64
	require.NoError(t, b.DB().Model(&model.SaveGame{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	got, err := b.LoadGame("default")
	require.NoError(t, err)
	assert.Equal(t, 900, got.State.Money)
	assert.Equal(t, []string{"Boulder Badge"}, got.State.Badges)
	assert.True(t, save.SavedAt.Equal(got.SavedAt))
}

func TestWriteQueue_FailureRequeues(t *testing.T) {
	b := newTestBackend(t)

	require.NoError(t, b.DB().Migrator().DropTable(&model.BattleTurn{}))
	b.queues.Turns.Push(model.BattleTurn{BattleRowID: 1, Turn: 1})
	b.queues.Turns.Push(model.BattleTurn{BattleRowID: 1, Turn: 2})

	err := b.Flush()
	require.Error(t, err)
	require.Equal(t, 2, b.queues.Turns.Len())

	first, ok := b.queues.Turns.Pop()
	require.True(t, ok)
	assert.Equal(t, 1, first.Turn, "a failed batch keeps its order")
}

func TestWriteQueue_EmptyQueue(t *testing.T) {
	b := newTestBackend(t)
	assert.NoError(t, writeQueue(b.DB(), b.queues.Turns, "battle turns", b.deps.Logger))
}

func TestRecordPerformance(t *testing.T) {
	b := newTestBackend(t)
	b.RecordPerformance(model.EnginePerformance{
		Time:                started,
		BattleID:            "b-1",
		QueueLengths:        model.QueueLengths{Turns: 3},
		DispatcherQueues:    map[string]any{"battle:record:turn": 2},
		LastWriteDurationMs: 1.5,
	})
	require.NoError(t, b.Flush())

	var rows []model.EnginePerformance
	require.NoError(t, b.DB().Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, uint16(3), rows[0].QueueLengths.Turns)
	assert.GreaterOrEqual(t, b.LastWriteDuration(), time.Duration(0))
}

func TestDBWriter_DrainsQueues(t *testing.T) {
	b := New(Dependencies{DB: newTestDB(t), WriteInterval: 10 * time.Millisecond})
	require.NoError(t, b.Init())
	t.Cleanup(func() { _ = b.Close() })

	require.NoError(t, b.StartBattle(battle("b-1")))
	require.NoError(t, b.RecordTurn(turn("b-1", 1)))

	assert.Eventually(t, b.queues.Turns.Empty, time.Second, 10*time.Millisecond)
}
