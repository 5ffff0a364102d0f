package events

import (
	"context"
	"errors"
	"sync"
)

// ErrBusFull is returned when the in-memory buffer has no room left.
var ErrBusFull = errors.New("events: memory bus full")

// MemoryBus is a buffered in-process Publisher and Source. Publish never
// blocks; a full buffer drops the event and reports ErrBusFull.
type MemoryBus struct {
	ch     chan Event
	done   chan struct{}
	mu     sync.RWMutex
	closed bool
}

func NewMemoryBus(buffer int) *MemoryBus {
	if buffer < 1 {
		buffer = 1
	}
	return &MemoryBus{
		ch:   make(chan Event, buffer),
		done: make(chan struct{}),
	}
}

func (b *MemoryBus) Publish(ctx context.Context, e Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrClosed
	}
	select {
	case b.ch <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrBusFull
	}
}

// Receive drains buffered events before reporting ErrClosed.
func (b *MemoryBus) Receive(ctx context.Context) (Event, error) {
	select {
	case e := <-b.ch:
		return e, nil
	default:
	}
	select {
	case e := <-b.ch:
		return e, nil
	case <-b.done:
		select {
		case e := <-b.ch:
			return e, nil
		default:
			return Event{}, ErrClosed
		}
	case <-ctx.Done():
		return Event{}, ctx.Err()
	}
}

// Len reports how many events are waiting.
func (b *MemoryBus) Len() int {
	return len(b.ch)
}

func (b *MemoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.closed {
		b.closed = true
		close(b.done)
	}
	return nil
}
