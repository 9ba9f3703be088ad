package core

import "slices"

// BattleStats are the derived stats other than HP.
type BattleStats struct {
	Attack    int `json:"attack"`
	Defense   int `json:"defense"`
	SpAttack  int `json:"spAttack"`
	SpDefense int `json:"spDefense"`
	Speed     int `json:"speed"`
}

// Combatant is one monster instance. It is a value: rules functions take
// a Combatant and return a new one rather than mutating shared state.
type Combatant struct {
	SpeciesID int           `json:"speciesId"`
	Name      string        `json:"name"`
	Level     int           `json:"level"`
	Exp       int           `json:"exp"`
	CurrentHP int           `json:"currentHp"`
	MaxHP     int           `json:"maxHp"`
	Stats     BattleStats   `json:"stats"`
	IVs       Stats         `json:"ivs"`
	EVs       Stats         `json:"evs"`
	Types     []Type        `json:"types"`
	Moves     []MoveSlot    `json:"moves"`
	Status    PrimaryStatus `json:"status"`
	Volatile  Volatile      `json:"volatile"`
	Stages    StatStages    `json:"stages"`
}

// Clone returns a deep copy.
func (c Combatant) Clone() Combatant {
	c.Types = slices.Clone(c.Types)
	c.Moves = slices.Clone(c.Moves)
	return c
}

// Fainted reports whether HP is zero.
func (c Combatant) Fainted() bool { return c.CurrentHP <= 0 }

// HasType reports whether t is one of the combatant's types.
func (c Combatant) HasType(t Type) bool { return slices.Contains(c.Types, t) }

// WithHP returns a copy with HP set to hp clamped to [0, MaxHP].
func (c Combatant) WithHP(hp int) Combatant {
	c.CurrentHP = max(0, min(c.MaxHP, hp))
	return c
}

// Damage returns a copy with amount subtracted from HP, floored at 0.
func (c Combatant) Damage(amount int) Combatant { return c.WithHP(c.CurrentHP - amount) }

// Heal returns a copy with amount added to HP, capped at MaxHP.
func (c Combatant) Heal(amount int) Combatant { return c.WithHP(c.CurrentHP + amount) }

// MoveIndex returns the slot holding moveID, or -1.
func (c Combatant) MoveIndex(moveID int) int {
	for i, s := range c.Moves {
		if s.Move.ID == moveID {
			return i
		}
	}
	return -1
}

// HasUsableMove reports whether any move has PP left.
func (c Combatant) HasUsableMove() bool {
	for _, s := range c.Moves {
		if s.PP > 0 {
			return true
		}
	}
	return false
}

// ResetBattleState clears volatile conditions and stat stages.
func (c Combatant) ResetBattleState() Combatant {
	c.Volatile = Volatile{}
	c.Stages = StatStages{}
	return c
}

// FullyRestored returns a copy with HP, PP, status, volatiles and stages reset.
func (c Combatant) FullyRestored() Combatant {
	c = c.Clone().ResetBattleState()
	c.CurrentHP = c.MaxHP
	c.Status = NoStatus()
	for i := range c.Moves {
		c.Moves[i].PP = c.Moves[i].Move.MaxPP
	}
	return c
}
