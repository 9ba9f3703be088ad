package memory

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/monbattle/engine/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func finish(b *core.BattleRecord) *core.BattleRecord {
	b.EndedAt = started.Add(90 * time.Second)
	b.Turns = 3
	b.Outcome = core.OutcomeBattleWon
	b.MoneyDelta = 120
	final := b.Start.Clone()
	final.Ended = true
	final.Outcome = core.Outcome{Kind: core.OutcomeBattleWon}
	b.Final = &final
	return b
}

func TestReplayFileName(t *testing.T) {
	tests := []struct {
		name     string
		battle   core.BattleRecord
		compress bool
		want     string
	}{
		{"trainer", core.BattleRecord{Kind: core.BattleTrainer, Opponent: "Youngster Joey", StartedAt: started}, false, "trainer_Youngster_Joey_20260502_143000.json"},
		{"gzip", core.BattleRecord{Kind: core.BattleGym, Opponent: "Brock", StartedAt: started}, true, "gym_Brock_20260502_143000.json.gz"},
		{"colon", core.BattleRecord{Kind: core.BattleWild, Opponent: "Wild: Rattata", StartedAt: started}, false, "wild_Wild__Rattata_20260502_143000.json"},
		{"no opponent", core.BattleRecord{Kind: core.BattleWild, StartedAt: started}, false, "wild_unknown_20260502_143000.json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, replayFileName(tt.battle, tt.compress))
		})
	}
}

func TestEndBattle_Exports(t *testing.T) {
	for _, compress := range []bool{false, true} {
		name := "plain"
		if compress {
			name = "gzip"
		}
		t.Run(name, func(t *testing.T) {
			b := newBackend(t, compress)
			require.NoError(t, b.StartBattle(battle("b-1")))
			require.NoError(t, b.RecordTurn(turn("b-1", 1)))
			require.NoError(t, b.RecordTurn(turn("b-1", 2)))
			require.NoError(t, b.EndBattle(finish(battle("b-1"))))

			path := b.GetExportedFilePath()
			require.NotEmpty(t, path)
			assert.True(t, strings.HasPrefix(path, b.cfg.OutputDir))
			assert.Equal(t, compress, strings.HasSuffix(path, ".json.gz"))

			replay, err := ReadReplay(path)
			require.NoError(t, err)
			assert.Equal(t, ReplayVersion, replay.Version)
			assert.Equal(t, "b-1", replay.Battle.BattleID)
			assert.Equal(t, uint(0), replay.Battle.ID, "row IDs are not exported")
			assert.Equal(t, core.OutcomeBattleWon, replay.Battle.Outcome)
			require.NotNil(t, replay.Battle.Final)
			assert.True(t, replay.Battle.Final.Ended)
			require.Len(t, replay.Turns, 2)
			assert.Equal(t, []string{"Pikachu used Tackle!"}, replay.Turns[0].Messages)
		})
	}
}

func TestGetExportMetadata(t *testing.T) {
	b := newBackend(t, true)
	assert.Equal(t, core.UploadMetadata{}, b.GetExportMetadata())

	require.NoError(t, b.StartBattle(battle("b-1")))
	require.NoError(t, b.EndBattle(finish(battle("b-1"))))

	meta := b.GetExportMetadata()
	assert.Equal(t, "b-1", meta.BattleID)
	assert.Equal(t, core.BattleTrainer, meta.Kind)
	assert.Equal(t, "Youngster Joey", meta.Opponent)
	assert.Equal(t, 3, meta.Turns)
	assert.Equal(t, core.OutcomeBattleWon, meta.Outcome)
	assert.InDelta(t, 90.0, meta.Duration, 0.001)
}

func TestEndBattle_KeepsAssignedID(t *testing.T) {
	b := newBackend(t, false)
	rec := battle("b-1")
	require.NoError(t, b.StartBattle(rec))

	end := finish(battle("b-1"))
	require.NoError(t, b.EndBattle(end))
	assert.Equal(t, rec.ID, end.ID)
}

func TestEndBattle_OutputDirFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	b := newBackend(t, false)
	b.cfg.OutputDir = filepath.Join(blocker, "replays")
	require.NoError(t, b.StartBattle(battle("b-1")))
	assert.Error(t, b.EndBattle(finish(battle("b-1"))))
}

func TestReadReplay_Errors(t *testing.T) {
	_, err := ReadReplay(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.json.gz")
	require.NoError(t, os.WriteFile(bad, []byte("not gzip"), 0644))
	_, err = ReadReplay(bad)
	assert.Error(t, err)
}
