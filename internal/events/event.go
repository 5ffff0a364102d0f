// Package events carries domain events from the API to out-of-band workers.
// Publishers and sources are interchangeable per transport: an in-process
// channel bus, a Redis list or a Kafka topic.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	CustomerCreated  = "customer.created"
	CustomerUpdated  = "customer.updated"
	CustomerDeleted  = "customer.deleted"
	CustomerRestored = "customer.restored"
	UserLoggedIn     = "user.logged_in"
	UserLoggedOut    = "user.logged_out"
)

// ErrClosed is returned by a Source or Publisher used after Close.
var ErrClosed = errors.New("events: closed")

// Event is the envelope written to every transport.
type Event struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// New wraps payload in an Event with a fresh id and timestamp.
func New(name string, payload any) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("encode %s payload: %w", name, err)
	}
	return Event{
		ID:         uuid.NewString(),
		Name:       name,
		OccurredAt: time.Now().UTC(),
		Payload:    raw,
	}, nil
}

// Decode unmarshals the payload into v.
func (e Event) Decode(v any) error {
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", e.Name, err)
	}
	return nil
}

// Publisher hands events to a transport.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Source yields events to a Worker. Receive blocks until an event arrives,
// the context ends, or the source is closed.
type Source interface {
	Receive(ctx context.Context) (Event, error)
	Close() error
}

type CustomerCreatedPayload struct {
	CustomerUUID string `json:"customer_uuid"`
	Name         string `json:"name"`
	Email        string `json:"email"`
}

type CustomerUpdatedPayload struct {
	CustomerUUID string         `json:"customer_uuid"`
	Changes      map[string]any `json:"changes"`
}

type CustomerDeletedPayload struct {
	CustomerUUID string `json:"customer_uuid"`
	Force        bool   `json:"force"`
}

type CustomerRestoredPayload struct {
	CustomerUUID string `json:"customer_uuid"`
}

type UserLoggedInPayload struct {
	UserUUID   string `json:"user_uuid"`
	Username   string `json:"username"`
	DeviceName string `json:"device_name"`
	IP         string `json:"ip"`
}

type UserLoggedOutPayload struct {
	UserUUID   string `json:"user_uuid"`
	AllDevices bool   `json:"all_devices"`
}
