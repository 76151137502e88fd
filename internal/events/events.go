// Package events publishes domain events (registrations, credit top-ups,
// issued certificates) to whoever listens: a log, or a RabbitMQ exchange.
package events

import (
	"context"
	"log/slog"
	"time"
)

// Routing keys.
const (
	UserRegistered    = "user.registered"
	CreditsAdded      = "credits.added"
	CertificateIssued = "certificate.issued"
)

// Event is a single domain event.
type Event struct {
	Type       string         `json:"type"`
	OccurredAt time.Time      `json:"occurredAt"`
	Data       map[string]any `json:"data"`
}

// New returns an event of type typ stamped with the current time.
func New(typ string, data map[string]any) Event {
	return Event{Type: typ, OccurredAt: time.Now().UTC(), Data: data}
}

// Publisher delivers events. Callers treat publishing as best effort: a
// failed publish is logged and never fails the operation that caused it.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// NopPublisher discards every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

// LogPublisher writes events to a structured logger.
type LogPublisher struct {
	Logger *slog.Logger
}

func (p LogPublisher) Publish(ctx context.Context, e Event) error {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	args := []any{"type", e.Type}
	for k, v := range e.Data {
		args = append(args, k, v)
	}
	logger.InfoContext(ctx, "event", args...)
	return nil
}

// Emit publishes e and logs a warning if that fails.
func Emit(ctx context.Context, p Publisher, logger *slog.Logger, e Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, e); err != nil {
		if logger == nil {
			logger = slog.Default()
		}
		logger.Warn("failed to publish event", "type", e.Type, "error", err)
	}
}
