// Package events dispatches named background events to registered handlers.
//
// Send returns as soon as the event has been queued; handlers run on a
// bounded pool of goroutines and their failures are logged, not returned.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Event names.
const (
	UserCreated   = "app/user.created"
	SendDailyNews = "app/send.daily.news"
)

var (
	// ErrUnknownEvent is returned by Send for an event with no handlers.
	ErrUnknownEvent = errors.New("no handler registered for event")

	// ErrClosed is returned by Send after Close.
	ErrClosed = errors.New("dispatcher is closed")
)

// Event is a named payload.
type Event struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Data   json.RawMessage `json:"data,omitempty"`
	SentAt time.Time       `json:"sent_at"`
}

// NewEvent builds an event, JSON-encoding data as its payload.
func NewEvent(name string, data any) (Event, error) {
	e := Event{Name: name}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return Event{}, fmt.Errorf("encoding %s payload: %w", name, err)
		}
		e.Data = raw
	}
	return e, nil
}

// Decode unmarshals the event payload into dst.
func (e Event) Decode(dst any) error {
	if len(e.Data) == 0 {
		return fmt.Errorf("event %s has no payload", e.Name)
	}
	if err := json.Unmarshal(e.Data, dst); err != nil {
		return fmt.Errorf("decoding %s payload: %w", e.Name, err)
	}
	return nil
}

// HandlerFunc processes a single event.
type HandlerFunc func(ctx context.Context, e Event) error

// Dispatcher routes events to handlers on a bounded worker pool.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string][]HandlerFunc
	closed   bool
	group    errgroup.Group
}

// NewDispatcher creates a Dispatcher running at most workers handlers at
// once. Send blocks while all workers are busy.
func NewDispatcher(workers int) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	d := &Dispatcher{handlers: make(map[string][]HandlerFunc)}
	d.group.SetLimit(workers)
	return d
}

// Handle registers h for events called name. Handlers must not call Send
// on the same Dispatcher.
func (d *Dispatcher) Handle(name string, h HandlerFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[name] = append(d.handlers[name], h)
}

// Send queues e for every handler registered under its name and returns
// the assigned event ID. Handlers receive a context that keeps ctx's values
// but not its cancellation, so a finished HTTP request does not abort them.
func (d *Dispatcher) Send(ctx context.Context, e Event) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return "", ErrClosed
	}

	handlers := d.handlers[e.Name]
	if len(handlers) == 0 {
		return "", fmt.Errorf("%w: %s", ErrUnknownEvent, e.Name)
	}

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.SentAt.IsZero() {
		e.SentAt = time.Now()
	}

	hctx := context.WithoutCancel(ctx)
	for _, h := range handlers {
		d.group.Go(func() error {
			start := time.Now()
			if err := h(hctx, e); err != nil {
				slog.Error("event handler failed",
					"event", e.Name,
					"id", e.ID,
					"error", err,
				)
				return nil // one failed handler must not affect the others
			}
			slog.Info("event handled",
				"event", e.Name,
				"id", e.ID,
				"duration", time.Since(start).String(),
			)
			return nil
		})
	}

	return e.ID, nil
}

// Close stops accepting events and waits for queued handlers to finish.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	_ = d.group.Wait()
}
