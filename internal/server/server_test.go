package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/certifica/internal/config"
	"github.com/abhisek/certifica/internal/events"
	"github.com/abhisek/certifica/internal/examgen"
	"github.com/abhisek/certifica/internal/llm"
	"github.com/abhisek/certifica/internal/store"
)

func testConfig(t *testing.T) config.Config {
	cfg := config.DefaultConfig()
	cfg.DB = filepath.Join(t.TempDir(), "nested", "certifica.db")
	cfg.JWTSecret = "0123456789abcdef"
	return cfg
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func examResponse(t *testing.T) json.RawMessage {
	t.Helper()
	type q struct {
		Text    string   `json:"text"`
		Options []string `json:"options"`
		Correct int      `json:"correct"`
	}
	var qs []q
	for i := 1; i <= 10; i++ {
		qs = append(qs, q{
			Text:    fmt.Sprintf("Pergunta gerada %d?", i),
			Options: []string{fmt.Sprintf("A%d", i), fmt.Sprintf("B%d", i), fmt.Sprintf("C%d", i), fmt.Sprintf("D%d", i)},
			Correct: i % 4,
		})
	}
	b, err := json.Marshal(map[string]any{"questions": qs})
	require.NoError(t, err)
	return b
}

func TestBuild_AIWithTemplateFallback(t *testing.T) {
	ctx := context.Background()
	mock := llm.NewScripted(llm.Reply{Content: examResponse(t)})

	s, err := Build(ctx, testConfig(t), quietLogger(), Options{
		Provider:     mock,
		Publisher:    events.NopPublisher{},
		TickInterval: time.Hour,
	})
	require.NoError(t, err)
	defer s.Close()

	c, err := s.Store.Courses().Create(ctx, store.NewCourse{Title: "Excel", DurationHours: 40})
	require.NoError(t, err)

	first, err := s.Exams.Start(ctx, 1, c.ID)
	require.NoError(t, err)
	assert.Equal(t, examgen.OriginAI, first.Origin)
	assert.Contains(t, first.Questions[0].Text, "Pergunta gerada")

	second, err := s.Exams.Start(ctx, 1, c.ID)
	require.NoError(t, err)
	assert.Equal(t, examgen.OriginTemplate, second.Origin)
	assert.Equal(t, 2, len(mock.Requests()))
}

func TestBuild_TemplatesWhenAIDisabled(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.ExamAI = false
	mock := llm.NewScripted()

	s, err := Build(ctx, cfg, quietLogger(), Options{Provider: mock, TickInterval: time.Hour})
	require.NoError(t, err)
	defer s.Close()

	c, err := s.Store.Courses().Create(ctx, store.NewCourse{Title: "Word"})
	require.NoError(t, err)
	snap, err := s.Exams.Start(ctx, 1, c.ID)
	require.NoError(t, err)
	assert.Equal(t, examgen.OriginTemplate, snap.Origin)
	assert.Equal(t, 0, len(mock.Requests()))
}

func TestBuild_BadAMQPURL(t *testing.T) {
	cfg := testConfig(t)
	cfg.AMQPURL = "amqp://127.0.0.1:1/"
	_, err := Build(context.Background(), cfg, quietLogger(), Options{Provider: llm.NewScripted()})
	assert.Error(t, err)
}

func TestHandler(t *testing.T) {
	s, err := Build(context.Background(), testConfig(t), quietLogger(), Options{Provider: llm.NewScripted()})
	require.NoError(t, err)
	defer s.Close()

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/api/me")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestServe_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, "127.0.0.1:0", http.NotFoundHandler(), quietLogger())
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestServe_ListenError(t *testing.T) {
	err := Serve(context.Background(), "256.0.0.1:bad", http.NotFoundHandler(), quietLogger())
	assert.Error(t, err)
}
