// Package streaming defines the wire envelope for the battle spectator stream.
package streaming

import (
	"encoding/json"

	"github.com/monbattle/engine/pkg/core"
)

// Message type constants matching the streaming protocol.
const (
	TypeStartBattle = "start_battle"
	TypeEndBattle   = "end_battle"
	TypeTurn        = "turn"
	TypeAck         = "ack"
)

// Envelope wraps all messages sent over the WebSocket.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// AckMessage is the server's acknowledgement response. Turn acks are
// cumulative: acking turn N confirms every earlier turn of the battle.
type AckMessage struct {
	Type     string `json:"type"` // always "ack"
	For      string `json:"for"`  // the message type being acknowledged
	BattleID string `json:"battleId,omitempty"`
	Turn     int    `json:"turn,omitempty"`
}

// NewAck builds the ack a server sends for a message of type kind.
func NewAck(kind, battleID string, turn int) AckMessage {
	return AckMessage{Type: TypeAck, For: kind, BattleID: battleID, Turn: turn}
}

// Confirms reports whether the ack answers a kind message for battleID.
// Servers that do not echo the battle ID confirm any battle.
func (a AckMessage) Confirms(kind, battleID string) bool {
	return a.For == kind && (a.BattleID == "" || a.BattleID == battleID)
}

// StartBattlePayload announces a battle and its opening state.
type StartBattlePayload struct {
	Battle *core.BattleRecord `json:"battle"`
}

// EndBattlePayload carries the final summary of a battle.
type EndBattlePayload struct {
	Battle *core.BattleRecord `json:"battle"`
}

// TurnPayload is one resolved turn. The snapshot is omitted to keep the
// stream small; spectators rebuild state from the start snapshot and the
// turn messages, or request the replay.
type TurnPayload struct {
	BattleID     string       `json:"battleId"`
	Turn         int          `json:"turn"`
	PlayerAction core.Action  `json:"playerAction"`
	Outcome      core.Outcome `json:"outcome"`
	Messages     []string     `json:"messages"`
	DamageDealt  int          `json:"damageDealt"`
	PlayerHP     int          `json:"playerHp"`
	OpponentHP   int          `json:"opponentHp"`
}

// NewTurnPayload builds the stream form of a turn record.
func NewTurnPayload(t *core.TurnRecord) TurnPayload {
	p := TurnPayload{
		BattleID:     t.BattleID,
		Turn:         t.Turn,
		PlayerAction: t.PlayerAction,
		Outcome:      t.Outcome,
		Messages:     t.Messages,
		DamageDealt:  t.DamageDealt,
	}
	s := t.Snapshot
	if s.PlayerActive < len(s.PlayerParty) {
		p.PlayerHP = s.PlayerParty[s.PlayerActive].CurrentHP
	}
	if s.OpponentActive < len(s.OpponentParty) {
		p.OpponentHP = s.OpponentParty[s.OpponentActive].CurrentHP
	}
	return p
}
