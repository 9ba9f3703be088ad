// Package convert provides functions to convert between GORM models and core models
package convert

import (
	"encoding/json"
	"fmt"

	"github.com/monbattle/engine/internal/model"
	"github.com/monbattle/engine/pkg/core"
	"gorm.io/datatypes"
)

// fromJSON decodes a JSON column into dst. Empty and null columns leave dst unchanged.
func fromJSON(col datatypes.JSON, dst any) error {
	if len(col) == 0 || string(col) == "null" {
		return nil
	}
	return json.Unmarshal(col, dst)
}

// BattleToCore converts a GORM Battle to a core.BattleRecord.
func BattleToCore(m model.Battle) (core.BattleRecord, error) {
	b := core.BattleRecord{
		ID:         m.ID,
		BattleID:   m.BattleID,
		Kind:       core.BattleKind(m.Kind),
		Opponent:   m.Opponent,
		StartedAt:  m.StartedAt,
		Turns:      m.Turns,
		Outcome:    core.OutcomeKind(m.Outcome),
		MoneyDelta: m.MoneyDelta,
	}
	if m.EndedAt != nil {
		b.EndedAt = *m.EndedAt
	}
	if err := fromJSON(m.Start, &b.Start); err != nil {
		return b, fmt.Errorf("battle %s start snapshot: %w", m.BattleID, err)
	}
	if len(m.Final) > 0 && string(m.Final) != "null" {
		var final core.Snapshot
		if err := fromJSON(m.Final, &final); err != nil {
			return b, fmt.Errorf("battle %s final snapshot: %w", m.BattleID, err)
		}
		b.Final = &final
	}
	return b, nil
}

// BattleTurnToCore converts a GORM BattleTurn to a core.TurnRecord. The
// battle UUID is not stored on the turn row and has to be supplied.
func BattleTurnToCore(m model.BattleTurn, battleID string) (core.TurnRecord, error) {
	t := core.TurnRecord{
		BattleID:    battleID,
		Turn:        m.Turn,
		Time:        m.Time,
		Outcome:     core.Outcome{Kind: core.OutcomeKind(m.OutcomeKind)},
		DamageDealt: m.DamageDealt,
	}
	if m.OutcomeSide == core.SideOpponent.String() {
		t.Outcome.Side = core.SideOpponent
	}
	if err := fromJSON(m.Action, &t.PlayerAction); err != nil {
		return t, fmt.Errorf("turn %d action: %w", m.Turn, err)
	}
	if err := fromJSON(m.Messages, &t.Messages); err != nil {
		return t, fmt.Errorf("turn %d messages: %w", m.Turn, err)
	}
	if err := fromJSON(m.Snapshot, &t.Snapshot); err != nil {
		return t, fmt.Errorf("turn %d snapshot: %w", m.Turn, err)
	}
	return t, nil
}

// SaveGameToCore converts a GORM SaveGame to a core.SaveData.
func SaveGameToCore(m model.SaveGame) (core.SaveData, error) {
	s := core.SaveData{
		Slot:    m.Slot,
		Version: m.Version,
		SavedAt: m.SavedAt,
	}
	if err := fromJSON(m.State, &s.State); err != nil {
		return s, fmt.Errorf("save %s state: %w", m.Slot, err)
	}
	return s, nil
}
