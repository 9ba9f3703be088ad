package memory

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/monbattle/engine/pkg/core"
)

// ReplayVersion is written into every exported replay.
const ReplayVersion = "1"

// Replay is the root JSON structure of an exported battle
type Replay struct {
	Version string            `json:"version"`
	Battle  core.BattleRecord `json:"battle"`
	Turns   []core.TurnRecord `json:"turns"`
}

// replayFileName is <kind>_<opponent>_<start>, with spaces and colons replaced.
func replayFileName(battle core.BattleRecord, compress bool) string {
	opponent := strings.ReplaceAll(battle.Opponent, " ", "_")
	opponent = strings.ReplaceAll(opponent, ":", "_")
	if opponent == "" {
		opponent = "unknown"
	}
	timestamp := battle.StartedAt.Format("20060102_150405")

	name := fmt.Sprintf("%s_%s_%s", battle.Kind, opponent, timestamp)
	if compress {
		return name + ".json.gz"
	}
	return name + ".json"
}

// exportJSON writes the battle to a (optionally gzipped) JSON file
func (b *Backend) exportJSON(record *BattleRecord) error {
	replay := Replay{
		Version: ReplayVersion,
		Battle:  record.Battle,
		Turns:   record.Turns,
	}

	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	outputPath := filepath.Join(b.cfg.OutputDir, replayFileName(record.Battle, b.cfg.CompressOutput))

	if err := writeFile(outputPath, replay, b.cfg.CompressOutput); err != nil {
		return err
	}

	b.lastExportPath = outputPath
	b.lastExportMeta = core.UploadMetadata{
		BattleID: record.Battle.BattleID,
		Kind:     record.Battle.Kind,
		Opponent: record.Battle.Opponent,
		Turns:    record.Battle.Turns,
		Outcome:  record.Battle.Outcome,
		Duration: record.Battle.Duration().Seconds(),
	}
	return nil
}

func writeFile(path string, data any, compress bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if !compress {
		return json.NewEncoder(f).Encode(data)
	}

	gzWriter := gzip.NewWriter(f)
	if err := json.NewEncoder(gzWriter).Encode(data); err != nil {
		gzWriter.Close()
		return err
	}
	return gzWriter.Close()
}

// ReadReplay loads a replay written by the memory backend, gzipped or not.
func ReadReplay(path string) (*Replay, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open gzip: %w", err)
		}
		defer gz.Close()
		dec = json.NewDecoder(gz)
	}

	var replay Replay
	if err := dec.Decode(&replay); err != nil {
		return nil, fmt.Errorf("decode replay: %w", err)
	}
	return &replay, nil
}
