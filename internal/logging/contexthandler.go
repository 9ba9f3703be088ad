package logging

import (
	"context"
	"log/slog"
	"sync"
)

// ContextProvider is a function that returns dynamic context attributes.
type ContextProvider func() []slog.Attr

// ContextHandler wraps another handler and injects dynamic context attributes.
type ContextHandler struct {
	inner    slog.Handler
	provider ContextProvider
}

// NewContextHandler creates a handler that adds dynamic context to each record.
func NewContextHandler(inner slog.Handler, provider ContextProvider) *ContextHandler {
	return &ContextHandler{
		inner:    inner,
		provider: provider,
	}
}

// Enabled delegates to the inner handler.
func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle adds dynamic context attributes and delegates to the inner handler.
func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.provider != nil {
		r.AddAttrs(h.provider()...)
	}
	return h.inner.Handle(ctx, r)
}

// WithAttrs returns a new ContextHandler with the given attributes.
func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{
		inner:    h.inner.WithAttrs(attrs),
		provider: h.provider,
	}
}

// WithGroup returns a new ContextHandler with the given group.
func (h *ContextHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &ContextHandler{
		inner:    h.inner.WithGroup(name),
		provider: h.provider,
	}
}

// BattleContext tracks the battle currently being played so log records
// can be tagged with it. The zero value has no battle.
type BattleContext struct {
	mu   sync.RWMutex
	id   string
	turn int
}

// Set records the active battle and turn.
func (b *BattleContext) Set(battleID string, turn int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.id = battleID
	b.turn = turn
}

// Clear forgets the active battle.
func (b *BattleContext) Clear() {
	b.Set("", 0)
}

// Current returns the active battle ID and turn.
func (b *BattleContext) Current() (string, int) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.id, b.turn
}

// Attrs is a ContextProvider. Nothing is added outside a battle.
func (b *BattleContext) Attrs() []slog.Attr {
	id, turn := b.Current()
	if id == "" {
		return nil
	}
	return []slog.Attr{slog.String("battleId", id), slog.Int("turn", turn)}
}
