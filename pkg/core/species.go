package core

// GrowthRate selects the experience curve.
type GrowthRate string

const (
	GrowthFast   GrowthRate = "fast"
	GrowthMedium GrowthRate = "medium"
	GrowthSlow   GrowthRate = "slow"
)

// Evolution is a level-triggered evolution.
type Evolution struct {
	Into  int `json:"into" yaml:"into"`
	Level int `json:"level" yaml:"level"`
}

// LearnsetEntry is a move learned at a level.
type LearnsetEntry struct {
	Level  int `json:"level" yaml:"level"`
	MoveID int `json:"moveId" yaml:"moveId"`
}

// Species is the immutable template a Combatant is derived from.
type Species struct {
	ID        int             `json:"id" yaml:"id"`
	Name      string          `json:"name" yaml:"name"`
	Types     []Type          `json:"types" yaml:"types"`
	Base      Stats           `json:"base" yaml:"base"`
	BaseExp   int             `json:"baseExp" yaml:"baseExp"`
	CatchRate int             `json:"catchRate" yaml:"catchRate"`
	Growth    GrowthRate      `json:"growth" yaml:"growth"`
	Evolution *Evolution      `json:"evolution,omitempty" yaml:"evolution,omitempty"`
	Learnset  []LearnsetEntry `json:"learnset,omitempty" yaml:"learnset,omitempty"`
}

// ItemKind groups items by how they can be used.
type ItemKind string

const (
	ItemBall       ItemKind = "PokeBall"
	ItemPotion     ItemKind = "Potion"
	ItemStatusHeal ItemKind = "StatusHeal"
	ItemOther      ItemKind = "Other"
	ItemKey        ItemKind = "KeyItem"
)

// ItemEffectKind tags what an item does.
type ItemEffectKind string

const (
	ItemEffectCatch        ItemEffectKind = "catch"
	ItemEffectHeal         ItemEffectKind = "heal"
	ItemEffectHealFull     ItemEffectKind = "healFull"
	ItemEffectCure         ItemEffectKind = "cure"
	ItemEffectCureAll      ItemEffectKind = "cureAll"
	ItemEffectRevive       ItemEffectKind = "revive"
	ItemEffectRestorePP    ItemEffectKind = "restorePP"
	ItemEffectRestorePPAll ItemEffectKind = "restorePPAll"
)

// ItemEffect describes an item's effect. Value is HP for heals, the ball
// bonus for catches, the HP fraction for revives and PP for ethers.
type ItemEffect struct {
	Kind  ItemEffectKind `json:"kind" yaml:"kind"`
	Value float64        `json:"value,omitempty" yaml:"value,omitempty"`
	Cures StatusKind     `json:"cures,omitempty" yaml:"cures,omitempty"`
}

// Item is a catalog item.
type Item struct {
	ID     int        `json:"id" yaml:"id"`
	Name   string     `json:"name" yaml:"name"`
	Kind   ItemKind   `json:"kind" yaml:"kind"`
	Price  int        `json:"price" yaml:"price"`
	Effect ItemEffect `json:"effect" yaml:"effect"`
}

// PartyMember is a species/level pair used by trainer rosters.
type PartyMember struct {
	SpeciesID int `json:"speciesId" yaml:"speciesId"`
	Level     int `json:"level" yaml:"level"`
}

// Trainer is an opponent with a fixed roster.
type Trainer struct {
	Name       string        `json:"name" yaml:"name"`
	Class      string        `json:"class" yaml:"class"`
	Kind       BattleKind    `json:"kind" yaml:"kind"`
	Party      []PartyMember `json:"party" yaml:"party"`
	Reward     int           `json:"reward" yaml:"reward"`
	Badge      string        `json:"badge,omitempty" yaml:"badge,omitempty"`
	BeforeText string        `json:"beforeText,omitempty" yaml:"beforeText,omitempty"`
	AfterText  string        `json:"afterText,omitempty" yaml:"afterText,omitempty"`
	Location   string        `json:"location,omitempty" yaml:"location,omitempty"`
}

// Encounter is one row of a route's wild encounter table.
type Encounter struct {
	SpeciesID int `json:"speciesId" yaml:"speciesId"`
	MinLevel  int `json:"minLevel" yaml:"minLevel"`
	MaxLevel  int `json:"maxLevel" yaml:"maxLevel"`
	Weight    int `json:"weight" yaml:"weight"`
}

// Route is a location with wild encounters.
type Route struct {
	Name       string      `json:"name" yaml:"name"`
	Encounters []Encounter `json:"encounters" yaml:"encounters"`
}
