package core

import "time"

const (
	// MaxPartySize is the number of combatants a player can carry.
	MaxPartySize = 6
	// BoxCapacity is the number of combatants one storage box holds.
	BoxCapacity = 20
	// BoxCount is the number of PC boxes.
	BoxCount = 12
	// SaveVersion is written into every SaveData.
	SaveVersion = "1.0"
)

// BagEntry is an item stack in the bag.
type BagEntry struct {
	ItemID   int `json:"itemId"`
	Quantity int `json:"quantity"`
}

// GameState is everything the calling shell persists between battles.
type GameState struct {
	PlayerName       string        `json:"playerName"`
	Party            []Combatant   `json:"party"`
	Boxes            [][]Combatant `json:"boxes"`
	Bag              []BagEntry    `json:"bag"`
	Money            int           `json:"money"`
	Badges           []string      `json:"badges"`
	Location         string        `json:"location"`
	DefeatedTrainers []string      `json:"defeatedTrainers"`
	Battle           *Snapshot     `json:"battle,omitempty"`
}

// SaveData is the serialized save file.
type SaveData struct {
	Slot    string    `json:"slot"`
	Version string    `json:"version"`
	SavedAt time.Time `json:"savedAt"`
	State   GameState `json:"gameState"`
}
