package session

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/monbattle/engine/pkg/core"
)

const instrumentationName = "github.com/monbattle/engine/internal/session"

type metrics struct {
	turns    metric.Int64Counter
	outcomes metric.Int64Counter
	rejected metric.Int64Counter
}

// newMetrics uses the global meter, which is a no-op until a provider is
// registered.
func newMetrics() (*metrics, error) {
	m := otel.Meter(instrumentationName)
	var (
		out metrics
		err error
	)
	out.turns, err = m.Int64Counter(
		"battle.turns.resolved",
		metric.WithDescription("Turns and move-learn choices resolved"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating turns counter: %w", err)
	}
	out.outcomes, err = m.Int64Counter(
		"battle.outcomes",
		metric.WithDescription("Finished battles by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating outcomes counter: %w", err)
	}
	out.rejected, err = m.Int64Counter(
		"battle.actions.rejected",
		metric.WithDescription("Player actions refused as illegal"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating rejected counter: %w", err)
	}
	return &out, nil
}

func (m *metrics) turnResolved() { m.turns.Add(context.Background(), 1) }

func (m *metrics) actionRejected() { m.rejected.Add(context.Background(), 1) }

func (m *metrics) battleEnded(kind core.OutcomeKind) {
	m.outcomes.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("outcome", string(kind))))
}
