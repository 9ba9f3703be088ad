package core

import "slices"

// BattleKind distinguishes wild encounters from trainer battles.
type BattleKind string

const (
	BattleWild     BattleKind = "wild"
	BattleTrainer  BattleKind = "trainer"
	BattleGym      BattleKind = "gym"
	BattleElite    BattleKind = "elite"
	BattleChampion BattleKind = "champion"
)

// IsTrainer reports whether an opposing trainer is involved.
func (k BattleKind) IsTrainer() bool { return k != BattleWild && k != "" }

// Side identifies one of the two battle sides.
type Side int

const (
	SidePlayer Side = iota
	SideOpponent
)

func (s Side) String() string {
	if s == SideOpponent {
		return "opponent"
	}
	return "player"
}

// Other returns the opposing side.
func (s Side) Other() Side {
	if s == SidePlayer {
		return SideOpponent
	}
	return SidePlayer
}

// ActionKind tags an Action.
type ActionKind string

const (
	ActionMove   ActionKind = "move"
	ActionItem   ActionKind = "item"
	ActionSwitch ActionKind = "switch"
	ActionFlee   ActionKind = "flee"
)

// Action is one side's choice for a turn.
type Action struct {
	Kind   ActionKind `json:"kind"`
	MoveID int        `json:"moveId,omitempty"`
	ItemID int        `json:"itemId,omitempty"`
	// Target is the party index for Switch and for items used on a party member.
	Target int `json:"target,omitempty"`
}

func UseMove(moveID int) Action { return Action{Kind: ActionMove, MoveID: moveID} }

// UseItem targets party index target; balls ignore it.
func UseItem(itemID, target int) Action {
	return Action{Kind: ActionItem, ItemID: itemID, Target: target}
}

func Switch(partyIndex int) Action { return Action{Kind: ActionSwitch, Target: partyIndex} }
func Flee() Action                 { return Action{Kind: ActionFlee} }

// OutcomeKind tags the result of a resolved turn.
type OutcomeKind string

const (
	OutcomeContinue         OutcomeKind = "continue"
	OutcomeFainted          OutcomeKind = "fainted"
	OutcomeBattleWon        OutcomeKind = "won"
	OutcomeBattleLost       OutcomeKind = "lost"
	OutcomeFled             OutcomeKind = "fled"
	OutcomeMoveLearnPending OutcomeKind = "moveLearnPending"
)

// Outcome is the turn result tag. Side is set only for OutcomeFainted.
type Outcome struct {
	Kind OutcomeKind `json:"kind"`
	Side Side        `json:"side,omitempty"`
}

// Terminal reports whether the battle is over.
func (o Outcome) Terminal() bool {
	switch o.Kind {
	case OutcomeBattleWon, OutcomeBattleLost, OutcomeFled:
		return true
	}
	return false
}

func (o Outcome) String() string {
	if o.Kind == OutcomeFainted {
		return string(o.Kind) + "(" + o.Side.String() + ")"
	}
	return string(o.Kind)
}

// PendingMoveLearn holds moves waiting for a learn/forget decision.
type PendingMoveLearn struct {
	PartyIndex int    `json:"partyIndex"`
	Moves      []Move `json:"moves"`
}

// Snapshot is a complete battle state at one point in time. Snapshots are
// never mutated in place once returned by the engine.
type Snapshot struct {
	ID             string            `json:"id"`
	Kind           BattleKind        `json:"kind"`
	CanEscape      bool              `json:"canEscape"`
	Turn           int               `json:"turn"`
	PlayerParty    []Combatant       `json:"playerParty"`
	OpponentParty  []Combatant       `json:"opponentParty"`
	PlayerActive   int               `json:"playerActive"`
	OpponentActive int               `json:"opponentActive"`
	Trainer        *Trainer          `json:"trainer,omitempty"`
	Log            []string          `json:"log"`
	Pending        *PendingMoveLearn `json:"pending,omitempty"`
	Outcome        Outcome           `json:"outcome"`
	Ended          bool              `json:"ended"`
}

// Player returns the player's active combatant.
func (s Snapshot) Player() Combatant { return s.PlayerParty[s.PlayerActive] }

// Opponent returns the opponent's active combatant.
func (s Snapshot) Opponent() Combatant { return s.OpponentParty[s.OpponentActive] }

// Active returns the active combatant of side.
func (s Snapshot) Active(side Side) Combatant {
	if side == SideOpponent {
		return s.Opponent()
	}
	return s.Player()
}

// Clone returns a deep copy.
func (s Snapshot) Clone() Snapshot {
	s.PlayerParty = cloneParty(s.PlayerParty)
	s.OpponentParty = cloneParty(s.OpponentParty)
	s.Log = slices.Clone(s.Log)
	if s.Trainer != nil {
		t := *s.Trainer
		t.Party = slices.Clone(t.Party)
		s.Trainer = &t
	}
	if s.Pending != nil {
		p := *s.Pending
		p.Moves = slices.Clone(p.Moves)
		s.Pending = &p
	}
	return s
}

// RecentLog returns at most n of the latest log lines.
func (s Snapshot) RecentLog(n int) []string {
	if n <= 0 || len(s.Log) <= n {
		return s.Log
	}
	return s.Log[len(s.Log)-n:]
}

// OpponentName is the trainer name or "Wild" for wild battles.
func (s Snapshot) OpponentName() string {
	if s.Trainer != nil {
		return s.Trainer.Name
	}
	return "Wild"
}

func cloneParty(p []Combatant) []Combatant {
	if p == nil {
		return nil
	}
	out := make([]Combatant, len(p))
	for i, c := range p {
		out[i] = c.Clone()
	}
	return out
}

// FirstHealthy returns the index of the first party member with HP left, or -1.
func FirstHealthy(party []Combatant) int {
	for i, c := range party {
		if !c.Fainted() {
			return i
		}
	}
	return -1
}
