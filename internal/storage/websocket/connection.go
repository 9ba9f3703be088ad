package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/monbattle/engine/pkg/streaming"
)

const (
	sendChSize   = 1024
	ackChSize    = 16
	maxUnacked   = 512
	maxReconnect = 10
	firstBackoff = time.Second
	maxBackoff   = 30 * time.Second
	writeWait    = 10 * time.Second
	ackTimeout   = 10 * time.Second
)

// frame is one encoded envelope on its way to the server. Start and end
// frames have turn 0.
type frame struct {
	battleID string
	turn     int
	data     []byte
}

// liveBattle is what the server has not confirmed of the running battle:
// its start frame and every turn after the last turn ack. A reconnect
// sends all of it again.
type liveBattle struct {
	id      string
	start   []byte
	acked   int
	pending []frame

	// highest turn written by the last replay; queued copies of those
	// turns are skipped
	replayed int
}

// queue keeps f until the server acks it. It reports whether the oldest
// unacked turn had to be given up to make room.
func (l *liveBattle) queue(f frame) bool {
	dropped := false
	if len(l.pending) >= maxUnacked {
		l.pending = l.pending[1:]
		dropped = true
	}
	l.pending = append(l.pending, f)
	return dropped
}

// ack drops every pending turn up to and including turn.
func (l *liveBattle) ack(turn int) {
	if turn <= l.acked {
		return
	}
	l.acked = turn
	i := 0
	for i < len(l.pending) && l.pending[i].turn <= turn {
		i++
	}
	l.pending = l.pending[i:]
}

// replay lists the frames a fresh connection needs, start first.
func (l *liveBattle) replay() [][]byte {
	out := make([][]byte, 0, len(l.pending)+1)
	out = append(out, l.start)
	for _, f := range l.pending {
		out = append(out, f.data)
	}
	return out
}

// stale reports whether f was already written by a replay.
func (l *liveBattle) stale(f frame) bool {
	return l != nil && f.turn > 0 && l.id == f.battleID && f.turn <= l.replayed
}

// link is one dialed socket. gone is closed when the link is replaced or
// torn down, which stops its loops.
type link struct {
	conn *ws.Conn
	gone chan struct{}
}

// connection streams frames over a WebSocket with a single writer per link.
type connection struct {
	mu     sync.Mutex
	link   *link
	live   *liveBattle
	closed bool

	sendCh chan frame
	ackCh  chan streaming.AckMessage
	done   chan struct{}

	wsURL   string
	secret  string
	backoff time.Duration

	logger *slog.Logger
}

func newConnection(logger *slog.Logger) *connection {
	return &connection{
		sendCh:  make(chan frame, sendChSize),
		ackCh:   make(chan streaming.AckMessage, ackChSize),
		done:    make(chan struct{}),
		backoff: firstBackoff,
		logger:  logger,
	}
}

func (c *connection) dial(rawURL, secret string) error {
	c.wsURL = rawURL
	c.secret = secret

	conn, err := c.dialOnce()
	if err != nil {
		return err
	}
	c.attach(conn)
	return nil
}

// dialOnce performs a single dial with the secret query param.
func (c *connection) dialOnce() (*ws.Conn, error) {
	u, err := url.Parse(c.wsURL)
	if err != nil {
		return nil, fmt.Errorf("invalid websocket URL: %w", err)
	}
	q := u.Query()
	q.Set("secret", c.secret)
	u.RawQuery = q.Encode()

	conn, _, err := ws.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("websocket dial failed: %w", err)
	}
	return conn, nil
}

// attach makes conn the current link and starts its loops.
func (c *connection) attach(conn *ws.Conn) {
	l := &link{conn: conn, gone: make(chan struct{})}
	c.mu.Lock()
	c.link = l
	c.mu.Unlock()

	go c.writeLoop(l)
	go c.readLoop(l)
}

func (c *connection) writeLoop(l *link) {
	for {
		select {
		case <-c.done:
			return
		case <-l.gone:
			return
		case f := <-c.sendCh:
			c.mu.Lock()
			skip := c.live.stale(f)
			c.mu.Unlock()
			if skip {
				continue
			}
			if err := write(l.conn, f.data); err != nil {
				c.logger.Warn("WebSocket write error", "battleId", f.battleID, "turn", f.turn, "error", err)
				go c.reconnect(l)
				return
			}
		}
	}
}

func write(conn *ws.Conn, data []byte) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteMessage(ws.TextMessage, data)
}

// readLoop settles turn acks itself and hands start/end acks to waiters.
func (c *connection) readLoop(l *link) {
	for {
		_, message, err := l.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
			case <-l.gone:
			default:
				c.logger.Warn("WebSocket read error", "error", err)
				go c.reconnect(l)
			}
			return
		}

		var ack streaming.AckMessage
		if err := json.Unmarshal(message, &ack); err != nil || ack.Type != streaming.TypeAck {
			c.logger.Debug("Non-ack message received", "raw", string(message))
			continue
		}

		if ack.For == streaming.TypeTurn {
			c.mu.Lock()
			if c.live != nil && ack.Confirms(streaming.TypeTurn, c.live.id) {
				c.live.ack(ack.Turn)
			}
			c.mu.Unlock()
			continue
		}

		select {
		case c.ackCh <- ack:
		default:
			c.logger.Debug("Ack channel full, dropping", "for", ack.For)
		}
	}
}

// reconnect replaces a failed link. Only the first caller for a given link
// does the work. The running battle is replayed before new frames flow.
func (c *connection) reconnect(failed *link) {
	c.mu.Lock()
	if c.closed || c.link != failed {
		c.mu.Unlock()
		return
	}
	c.link = nil
	close(failed.gone)
	_ = failed.conn.Close()
	c.mu.Unlock()

	backoff := c.backoff
	for attempt := 1; attempt <= maxReconnect; attempt++ {
		select {
		case <-c.done:
			return
		case <-time.After(backoff):
		}

		c.logger.Info("Reconnecting to WebSocket", "attempt", attempt)
		conn, err := c.dialOnce()
		if err != nil {
			c.logger.Warn("Reconnect dial failed", "attempt", attempt, "error", err)
			backoff = min(backoff*2, maxBackoff)
			continue
		}

		if err := c.resume(conn); err != nil {
			c.logger.Warn("Failed to replay battle after reconnect", "attempt", attempt, "error", err)
			_ = conn.Close()
			backoff = min(backoff*2, maxBackoff)
			continue
		}

		c.logger.Info("WebSocket reconnected", "attempt", attempt)
		c.attach(conn)
		return
	}

	c.logger.Error("WebSocket reconnect failed after max attempts", "maxAttempts", maxReconnect)
}

// resume writes the start frame and unacked turns of the running battle.
func (c *connection) resume(conn *ws.Conn) error {
	c.mu.Lock()
	live := c.live
	var frames [][]byte
	last := 0
	if live != nil {
		frames = live.replay()
		if n := len(live.pending); n > 0 {
			last = live.pending[n-1].turn
		}
	}
	c.mu.Unlock()

	for _, data := range frames {
		if err := write(conn, data); err != nil {
			return err
		}
	}
	if live != nil {
		c.mu.Lock()
		live.replayed = max(live.replayed, last)
		c.mu.Unlock()
		c.logger.Info("Replayed battle after reconnect", "battleId", live.id, "turns", len(frames)-1)
	}
	return nil
}

// send queues f for the write loop without blocking. A full queue drops
// the frame; an unacked turn still goes out with the next replay.
func (c *connection) send(f frame) {
	select {
	case c.sendCh <- f:
	default:
		c.logger.Warn("WebSocket send channel full, dropping frame", "battleId", f.battleID, "turn", f.turn)
	}
}

// begin makes battleID the running battle and waits for the server to
// accept its start frame.
func (c *connection) begin(battleID string, data []byte) error {
	c.mu.Lock()
	c.live = &liveBattle{id: battleID, start: data}
	c.mu.Unlock()
	return c.sendAndWait(frame{battleID: battleID, data: data}, streaming.TypeStartBattle)
}

// turn streams one turn of the running battle.
func (c *connection) turn(battleID string, turn int, data []byte) {
	f := frame{battleID: battleID, turn: turn, data: data}
	c.mu.Lock()
	if c.live != nil && c.live.id == battleID && c.live.queue(f) {
		c.logger.Warn("Too many unacked turns, oldest will not be replayed", "battleId", battleID)
	}
	c.mu.Unlock()
	c.send(f)
}

// finish sends the end frame and forgets the battle whether or not the
// server answers.
func (c *connection) finish(battleID string, data []byte) error {
	err := c.sendAndWait(frame{battleID: battleID, data: data}, streaming.TypeEndBattle)
	c.mu.Lock()
	if c.live != nil && c.live.id == battleID {
		c.live = nil
	}
	c.mu.Unlock()
	return err
}

// sendAndWait sends f and blocks until an ack of kind for the same battle
// arrives or ackTimeout passes.
func (c *connection) sendAndWait(f frame, kind string) error {
	c.send(f)

	timer := time.NewTimer(ackTimeout)
	defer timer.Stop()

	for {
		select {
		case ack := <-c.ackCh:
			if ack.Confirms(kind, f.battleID) {
				return nil
			}
		case <-timer.C:
			return fmt.Errorf("timeout waiting for %s ack of battle %s", kind, f.battleID)
		case <-c.done:
			return fmt.Errorf("connection closed while waiting for %s ack of battle %s", kind, f.battleID)
		}
	}
}

// close sends a close frame and stops every loop.
func (c *connection) close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	close(c.done)
	l := c.link
	c.link = nil
	c.mu.Unlock()

	if l == nil {
		return nil
	}
	close(l.gone)
	_ = l.conn.WriteMessage(ws.CloseMessage, ws.FormatCloseMessage(ws.CloseNormalClosure, ""))
	return l.conn.Close()
}
