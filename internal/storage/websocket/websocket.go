// Package websocket streams battles to a spectator server.
package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/monbattle/engine/pkg/core"
	"github.com/monbattle/engine/pkg/streaming"
)

// Config holds WebSocket backend configuration.
type Config struct {
	URL    string
	Secret string
}

// Backend streams battle data over WebSocket to a spectator server.
// It implements storage.Backend but not storage.Uploadable or storage.Saver.
type Backend struct {
	conn *connection
	cfg  Config
}

// New creates a new WebSocket storage backend.
func New(cfg Config, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{
		conn: newConnection(logger.With("component", "websocket")),
		cfg:  cfg,
	}
}

// Init connects to the WebSocket server.
func (b *Backend) Init() error {
	return b.conn.dial(b.cfg.URL, b.cfg.Secret)
}

// Close disconnects from the WebSocket server.
func (b *Backend) Close() error {
	return b.conn.close()
}

// marshalEnvelope builds a JSON-encoded Envelope from a message type and payload.
func marshalEnvelope(msgType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", msgType, err)
	}
	env := streaming.Envelope{Type: msgType, Payload: raw}
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal %s envelope: %w", msgType, err)
	}
	return data, nil
}

// StartBattle announces the battle and waits for the server to accept it.
// Until EndBattle the battle is replayed after any reconnect.
func (b *Backend) StartBattle(battle *core.BattleRecord) error {
	data, err := marshalEnvelope(streaming.TypeStartBattle, streaming.StartBattlePayload{Battle: battle})
	if err != nil {
		return err
	}
	return b.conn.begin(battle.BattleID, data)
}

// EndBattle sends end_battle and waits for the server ack.
func (b *Backend) EndBattle(battle *core.BattleRecord) error {
	data, err := marshalEnvelope(streaming.TypeEndBattle, streaming.EndBattlePayload{Battle: battle})
	if err != nil {
		return err
	}
	return b.conn.finish(battle.BattleID, data)
}

// RecordTurn streams the turn without waiting. It is kept until the server
// acks it so a reconnect can send it again.
func (b *Backend) RecordTurn(t *core.TurnRecord) error {
	data, err := marshalEnvelope(streaming.TypeTurn, streaming.NewTurnPayload(t))
	if err != nil {
		return err
	}
	b.conn.turn(t.BattleID, t.Turn, data)
	return nil
}
