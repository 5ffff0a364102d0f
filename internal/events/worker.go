package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"customer-api/internal/metrics"
	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// Handler reacts to one event. Returned errors are logged and dropped.
type Handler func(ctx context.Context, e Event) error

// Worker pulls events from a Source and dispatches them by name.
type Worker struct {
	source   Source
	logger   *zap.Logger
	metrics  *metrics.Metrics
	handlers map[string][]Handler
	mu       sync.RWMutex

	// MaxRetryInterval caps the wait between failed receives.
	MaxRetryInterval time.Duration
}

func NewWorker(source Source, logger *zap.Logger, m *metrics.Metrics) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{
		source:           source,
		logger:           logger.Named("event_worker"),
		metrics:          m,
		handlers:         make(map[string][]Handler),
		MaxRetryInterval: 30 * time.Second,
	}
}

// On registers h for events called name. Several handlers may share a name;
// they run in registration order.
func (w *Worker) On(name string, h Handler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers[name] = append(w.handlers[name], h)
}

// Run consumes until ctx is cancelled or the source is closed. Transient
// receive errors are retried with exponential backoff.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info("event worker started")
	defer w.logger.Info("event worker stopped")

	for {
		e, err := w.receive(ctx)
		if err != nil {
			if errors.Is(err, ErrClosed) || ctx.Err() != nil {
				return nil
			}
			return err
		}
		w.Dispatch(ctx, e)
	}
}

func (w *Worker) receive(ctx context.Context) (Event, error) {
	b := backoff.NewExponentialBackOff()
	b.MaxInterval = w.MaxRetryInterval
	if b.InitialInterval > b.MaxInterval {
		b.InitialInterval = b.MaxInterval
	}
	b.MaxElapsedTime = 0

	var e Event
	op := func() error {
		var err error
		e, err = w.source.Receive(ctx)
		if errors.Is(err, ErrClosed) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		w.logger.Warn("receive event failed, retrying", zap.Error(err), zap.Duration("wait", wait))
	}
	err := backoff.RetryNotify(op, backoff.WithContext(b, ctx), notify)
	return e, err
}

// Dispatch runs every handler registered for e.Name. A panicking or failing
// handler does not stop the others.
func (w *Worker) Dispatch(ctx context.Context, e Event) {
	w.mu.RLock()
	hs := w.handlers[e.Name]
	w.mu.RUnlock()

	if len(hs) == 0 {
		w.logger.Debug("no handler for event", zap.String("event", e.Name), zap.String("id", e.ID))
		return
	}
	for _, h := range hs {
		err := w.safeCall(ctx, h, e)
		w.metrics.IncEventHandled(e.Name, err == nil)
		if err != nil {
			w.logger.Error("event handler failed",
				zap.String("event", e.Name),
				zap.String("id", e.ID),
				zap.Error(err))
		}
	}
}

func (w *Worker) safeCall(ctx context.Context, h Handler, e Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &panicError{value: r}
		}
	}()
	return h(ctx, e)
}

type panicError struct {
	value any
}

func (p *panicError) Error() string {
	return fmt.Sprintf("handler panic: %v", p.value)
}
