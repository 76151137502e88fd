package events

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, Event) error { return errors.New("broker down") }

func TestNew(t *testing.T) {
	e := New(CreditsAdded, map[string]any{"userId": 7, "credits": 3})
	if e.Type != CreditsAdded {
		t.Errorf("type = %q", e.Type)
	}
	if e.OccurredAt.IsZero() {
		t.Error("expected a timestamp")
	}
	if e.Data["credits"] != 3 {
		t.Errorf("data = %v", e.Data)
	}
}

func TestLogPublisher(t *testing.T) {
	var buf bytes.Buffer
	p := LogPublisher{Logger: slog.New(slog.NewTextHandler(&buf, nil))}

	if err := p.Publish(context.Background(), New(UserRegistered, map[string]any{"email": "a@b.com"})); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "type=user.registered") {
		t.Errorf("missing type in %q", out)
	}
	if !strings.Contains(out, "email=a@b.com") {
		t.Errorf("missing data in %q", out)
	}
}

func TestEmit_LogsFailure(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	Emit(context.Background(), failingPublisher{}, logger, New(CertificateIssued, nil))

	if !strings.Contains(buf.String(), "failed to publish event") {
		t.Errorf("expected warning, got %q", buf.String())
	}
}

func TestEmit_NilPublisher(t *testing.T) {
	Emit(context.Background(), nil, nil, New(CertificateIssued, nil))
	Emit(context.Background(), NopPublisher{}, nil, New(CertificateIssued, nil))
}
