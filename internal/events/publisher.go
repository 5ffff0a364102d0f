package events

import (
	"context"

	"customer-api/internal/metrics"
	"go.uber.org/zap"
)

type instrumented struct {
	next    Publisher
	metrics *metrics.Metrics
}

// Instrumented counts every publish attempt on m.
func Instrumented(next Publisher, m *metrics.Metrics) Publisher {
	return &instrumented{next: next, metrics: m}
}

func (p *instrumented) Publish(ctx context.Context, e Event) error {
	err := p.next.Publish(ctx, e)
	p.metrics.IncEventPublished(e.Name, err == nil)
	return err
}

func (p *instrumented) Close() error {
	return p.next.Close()
}

// NopPublisher discards every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }

// Emit builds and publishes an event. Failures are logged, never returned:
// side effects must not fail the write that triggered them.
func Emit(ctx context.Context, p Publisher, logger *zap.Logger, name string, payload any) {
	if p == nil {
		return
	}
	e, err := New(name, payload)
	if err == nil {
		err = p.Publish(ctx, e)
	}
	if err != nil {
		logger.Error("publish event failed", zap.String("event", name), zap.Error(err))
	}
}
