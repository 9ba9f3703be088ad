// pkg/core/types.go
package core

// Type is an elemental type shared by species and moves.
type Type string

const (
	TypeNormal   Type = "Normal"
	TypeFire     Type = "Fire"
	TypeWater    Type = "Water"
	TypeElectric Type = "Electric"
	TypeGrass    Type = "Grass"
	TypeIce      Type = "Ice"
	TypeFighting Type = "Fighting"
	TypePoison   Type = "Poison"
	TypeGround   Type = "Ground"
	TypeFlying   Type = "Flying"
	TypePsychic  Type = "Psychic"
	TypeBug      Type = "Bug"
	TypeRock     Type = "Rock"
	TypeGhost    Type = "Ghost"
	TypeDragon   Type = "Dragon"
	TypeDark     Type = "Dark"
	TypeSteel    Type = "Steel"
	TypeFairy    Type = "Fairy"
)

// Category selects which attack/defense pair a move uses.
type Category string

const (
	CategoryPhysical Category = "Physical"
	CategorySpecial  Category = "Special"
	CategoryStatus   Category = "Status"
)

// Stat identifies one of the seven stage-modifiable stats.
type Stat string

const (
	StatAttack    Stat = "atk"
	StatDefense   Stat = "def"
	StatSpAttack  Stat = "spa"
	StatSpDefense Stat = "spd"
	StatSpeed     Stat = "spe"
	StatAccuracy  Stat = "acc"
	StatEvasion   Stat = "eva"
)

// DisplayName returns the name used in battle messages.
func (s Stat) DisplayName() string {
	switch s {
	case StatAttack:
		return "Attack"
	case StatDefense:
		return "Defense"
	case StatSpAttack:
		return "Special Attack"
	case StatSpDefense:
		return "Special Defense"
	case StatSpeed:
		return "Speed"
	case StatAccuracy:
		return "Accuracy"
	case StatEvasion:
		return "Evasion"
	}
	return string(s)
}

// Stats is a six-stat block. It holds base stats, IVs, EVs and derived stats.
type Stats struct {
	HP        int `json:"hp" yaml:"hp"`
	Attack    int `json:"attack" yaml:"attack"`
	Defense   int `json:"defense" yaml:"defense"`
	SpAttack  int `json:"spAttack" yaml:"spAttack"`
	SpDefense int `json:"spDefense" yaml:"spDefense"`
	Speed     int `json:"speed" yaml:"speed"`
}

// StatStages holds the seven stage counters, each in [-6, 6].
type StatStages struct {
	Attack    int `json:"atk"`
	Defense   int `json:"def"`
	SpAttack  int `json:"spa"`
	SpDefense int `json:"spd"`
	Speed     int `json:"spe"`
	Accuracy  int `json:"acc"`
	Evasion   int `json:"eva"`
}

// Get returns the stage for stat.
func (s StatStages) Get(stat Stat) int {
	switch stat {
	case StatAttack:
		return s.Attack
	case StatDefense:
		return s.Defense
	case StatSpAttack:
		return s.SpAttack
	case StatSpDefense:
		return s.SpDefense
	case StatSpeed:
		return s.Speed
	case StatAccuracy:
		return s.Accuracy
	case StatEvasion:
		return s.Evasion
	}
	return 0
}

// With returns a copy with stat set to v.
func (s StatStages) With(stat Stat, v int) StatStages {
	switch stat {
	case StatAttack:
		s.Attack = v
	case StatDefense:
		s.Defense = v
	case StatSpAttack:
		s.SpAttack = v
	case StatSpDefense:
		s.SpDefense = v
	case StatSpeed:
		s.Speed = v
	case StatAccuracy:
		s.Accuracy = v
	case StatEvasion:
		s.Evasion = v
	}
	return s
}
