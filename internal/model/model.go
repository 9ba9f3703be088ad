package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&Battle{},
	&BattleTurn{},
	&SaveGame{},
	&EnginePerformance{},
}

var DatabaseModelsSQLite = []interface{}{
	&Battle{},
	&BattleTurn{},
	&SaveGame{},
	&EnginePerformance{},
}

////////////////////////
// SYSTEM MODELS
////////////////////////

// EnginePerformance is a periodic snapshot of writer health
type EnginePerformance struct {
	Time                time.Time         `json:"time" gorm:"index:idx_perf_time"`
	BattleID            string            `json:"battleId" gorm:"size:36"`
	QueueLengths        QueueLengths      `json:"queueLengths" gorm:"embedded;embeddedPrefix:queue_"`
	DispatcherQueues    datatypes.JSONMap `json:"dispatcherQueues"`
	LastWriteDurationMs float32           `json:"lastWriteDurationMs"`
}

func (*EnginePerformance) TableName() string {
	return "engine_performances"
}

// QueueLengths is the number of rows waiting in each writer queue
type QueueLengths struct {
	Battles uint16 `json:"battles"`
	Turns   uint16 `json:"turns"`
	Saves   uint16 `json:"saves"`
}

////////////////////////
// RECORDING MODELS
////////////////////////

// Battle is one battle from start to end. Final stays empty until the battle ends.
type Battle struct {
	gorm.Model
	BattleID   string         `json:"battleId" gorm:"size:36;uniqueIndex"`
	Kind       string         `json:"kind" gorm:"size:16;index"`
	Opponent   string         `json:"opponent" gorm:"size:64"`
	StartedAt  time.Time      `json:"startedAt" gorm:"index"`
	EndedAt    *time.Time     `json:"endedAt"`
	Turns      int            `json:"turns"`
	Outcome    string         `json:"outcome" gorm:"size:24"`
	MoneyDelta int            `json:"moneyDelta"`
	Start      datatypes.JSON `json:"start"`
	Final      datatypes.JSON `json:"final"`
}

func (*Battle) TableName() string {
	return "battles"
}

// BattleTurn is one resolved turn of a battle.
type BattleTurn struct {
	ID          uint           `json:"id" gorm:"primarykey;autoIncrement;"`
	BattleRowID uint           `json:"battleRowId" gorm:"index:idx_turn_battle"`
	Battle      Battle         `json:"-" gorm:"foreignkey:BattleRowID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Turn        int            `json:"turn" gorm:"index:idx_turn_battle"`
	Time        time.Time      `json:"time"`
	ActionKind  string         `json:"actionKind" gorm:"size:16"`
	Action      datatypes.JSON `json:"action"`
	OutcomeKind string         `json:"outcomeKind" gorm:"size:24"`
	OutcomeSide string         `json:"outcomeSide" gorm:"size:16"`
	Messages    datatypes.JSON `json:"messages"`
	DamageDealt int            `json:"damageDealt"`
	Snapshot    datatypes.JSON `json:"snapshot"`
}

func (*BattleTurn) TableName() string {
	return "battle_turns"
}

////////////////////////
// SAVE MODELS
////////////////////////

// SaveGame holds one save slot. Saving to an existing slot overwrites it.
type SaveGame struct {
	gorm.Model
	Slot       string         `json:"slot" gorm:"size:64;uniqueIndex"`
	Version    string         `json:"version" gorm:"size:16"`
	SavedAt    time.Time      `json:"savedAt"`
	PlayerName string         `json:"playerName" gorm:"size:64"`
	Money      int            `json:"money"`
	Badges     int            `json:"badges"`
	State      datatypes.JSON `json:"state"`
}

func (*SaveGame) TableName() string {
	return "save_games"
}
