package convert

import (
	"encoding/json"

	"github.com/monbattle/engine/internal/model"
	"github.com/monbattle/engine/pkg/core"
	"gorm.io/datatypes"
)

// toJSON encodes v for a JSON column. Empty values are stored as "null" so
// the column stays valid JSON.
func toJSON(v any) datatypes.JSON {
	data, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON("null")
	}
	return datatypes.JSON(data)
}

// CoreToBattle converts a core.BattleRecord to a GORM model.Battle.
// A zero EndedAt leaves the row open.
func CoreToBattle(b core.BattleRecord) model.Battle {
	m := model.Battle{
		BattleID:   b.BattleID,
		Kind:       string(b.Kind),
		Opponent:   b.Opponent,
		StartedAt:  b.StartedAt,
		Turns:      b.Turns,
		Outcome:    string(b.Outcome),
		MoneyDelta: b.MoneyDelta,
		Start:      toJSON(b.Start),
		Final:      datatypes.JSON("null"),
	}
	m.ID = b.ID
	if !b.EndedAt.IsZero() {
		ended := b.EndedAt
		m.EndedAt = &ended
	}
	if b.Final != nil {
		m.Final = toJSON(b.Final)
	}
	return m
}

// CoreToBattleTurn converts a core.TurnRecord to a GORM model.BattleTurn
// belonging to the battle row battleRowID.
func CoreToBattleTurn(t core.TurnRecord, battleRowID uint) model.BattleTurn {
	messages := t.Messages
	if messages == nil {
		messages = []string{}
	}
	return model.BattleTurn{
		BattleRowID: battleRowID,
		Turn:        t.Turn,
		Time:        t.Time,
		ActionKind:  string(t.PlayerAction.Kind),
		Action:      toJSON(t.PlayerAction),
		OutcomeKind: string(t.Outcome.Kind),
		OutcomeSide: outcomeSide(t.Outcome),
		Messages:    toJSON(messages),
		DamageDealt: t.DamageDealt,
		Snapshot:    toJSON(t.Snapshot),
	}
}

func outcomeSide(o core.Outcome) string {
	if o.Kind != core.OutcomeFainted {
		return ""
	}
	return o.Side.String()
}

// CoreToSaveGame converts a core.SaveData to a GORM model.SaveGame.
func CoreToSaveGame(s core.SaveData) model.SaveGame {
	return model.SaveGame{
		Slot:       s.Slot,
		Version:    s.Version,
		SavedAt:    s.SavedAt,
		PlayerName: s.State.PlayerName,
		Money:      s.State.Money,
		Badges:     len(s.State.Badges),
		State:      toJSON(s.State),
	}
}
