// Package server wires the store, domain services and HTTP API into a
// running process.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/abhisek/certifica/internal/api"
	"github.com/abhisek/certifica/internal/auth"
	"github.com/abhisek/certifica/internal/config"
	"github.com/abhisek/certifica/internal/credits"
	"github.com/abhisek/certifica/internal/events"
	"github.com/abhisek/certifica/internal/exam"
	"github.com/abhisek/certifica/internal/examgen"
	"github.com/abhisek/certifica/internal/guard"
	"github.com/abhisek/certifica/internal/llm"
	"github.com/abhisek/certifica/internal/payment"
	"github.com/abhisek/certifica/internal/questionbank"
	"github.com/abhisek/certifica/internal/store"
)

// ShutdownTimeout bounds graceful shutdown of the HTTP server.
const ShutdownTimeout = 10 * time.Second

// OpenStore opens the configured database, resolving the default SQLite
// path when none is set.
func OpenStore(ctx context.Context, cfg config.Config) (*store.Store, error) {
	dsn := cfg.DB
	if cfg.DBDriver == store.DriverSQLite {
		if dsn == "" {
			p, err := store.DefaultDBPath()
			if err != nil {
				return nil, fmt.Errorf("resolve DB path: %w", err)
			}
			dsn = p
		} else if err := store.EnsureDir(dsn); err != nil {
			return nil, fmt.Errorf("create DB directory: %w", err)
		}
	}
	st, err := store.Open(ctx, cfg.DBDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}

// Options overrides collaborators Build would otherwise create from
// configuration.
type Options struct {
	// Provider replaces the LLM provider read from the environment.
	Provider llm.Provider
	// Publisher replaces the AMQP or log publisher.
	Publisher events.Publisher
	// Guard replaces the Redis or in-memory guard.
	Guard exam.InflightGuard
	// TickInterval overrides the exam clock, for tests.
	TickInterval time.Duration
}

// Services are the long-lived collaborators of a process.
type Services struct {
	Config    config.Config
	Store     *store.Store
	Auth      *auth.Service
	Payments  *payment.Service
	Consumer  *credits.Consumer
	Source    exam.QuestionSource
	Exams     *exam.Manager
	Publisher events.Publisher
	Logger    *slog.Logger

	closers []func() error
}

// Build opens the store and assembles every service. Close releases them.
func Build(ctx context.Context, cfg config.Config, logger *slog.Logger, opts Options) (*Services, error) {
	if logger == nil {
		logger = slog.Default()
	}
	st, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	s := &Services{Config: cfg, Store: st, Logger: logger}
	s.closers = append(s.closers, st.Close)

	if err := s.build(ctx, opts); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Services) build(ctx context.Context, opts Options) error {
	cfg, logger := s.Config, s.Logger

	s.Publisher = opts.Publisher
	if s.Publisher == nil {
		if cfg.AMQPURL != "" {
			p, err := events.DialAMQP(cfg.AMQPURL, logger)
			if err != nil {
				return err
			}
			s.closers = append(s.closers, p.Close)
			s.Publisher = p
			logger.Info("publishing events to AMQP", "exchange", events.Exchange)
		} else {
			s.Publisher = events.LogPublisher{Logger: logger}
		}
	}

	g := opts.Guard
	if g == nil {
		if cfg.RedisURL != "" {
			r, err := guard.DialRedis(ctx, cfg.RedisURL, guard.DefaultTTL, logger)
			if err != nil {
				return err
			}
			s.closers = append(s.closers, r.Close)
			g = r
			logger.Info("using Redis certificate guard")
		} else {
			g = guard.NewMemory()
		}
	}

	s.Auth = auth.NewService(s.Store.Users(), auth.Config{
		Secret:      []byte(cfg.JWTSecret),
		TTL:         cfg.TokenTTL,
		AdminEmails: cfg.AdminEmails,
	}, s.Publisher, logger)
	s.Payments = payment.NewService(s.Store.Purchases(), s.Publisher, logger)
	s.Consumer = credits.NewConsumer(s.Store.Certificates(), s.Publisher, logger)
	s.Source = NewQuestionSource(ctx, cfg, s.Store.EventRepo(), opts.Provider, logger)

	s.Exams = exam.NewManager(exam.ManagerConfig{
		Courses:      credits.Courses{Repo: s.Store.Courses()},
		Source:       s.Source,
		Consumer:     s.Consumer,
		Recorder:     credits.Attempts{Repo: s.Store.Attempts()},
		Guard:        g,
		Logger:       logger,
		TickInterval: opts.TickInterval,
	})
	s.closers = append(s.closers, func() error { s.Exams.Close(); return nil })
	return nil
}

// NewQuestionSource uses the LLM when exam AI is enabled and a provider is
// available, and the template engine otherwise. A nil provider is read from
// the environment; its calls are logged to events.
func NewQuestionSource(ctx context.Context, cfg config.Config, events store.EventRepo, provider llm.Provider, logger *slog.Logger) *examgen.FallbackSource {
	engine := questionbank.New()
	if !cfg.ExamAI {
		return examgen.NewFallbackSource(nil, engine, logger)
	}
	if provider == nil {
		p, err := llm.FromEnv(ctx, events, logger)
		if err != nil {
			logger.Warn("LLM provider not configured, exams use templates", "error", err)
			return examgen.NewFallbackSource(nil, engine, logger)
		}
		provider = p
	}
	logger.Info("AI exam generation enabled", "provider", provider.Name(), "model", provider.ModelID())
	gen := examgen.New(provider, examgen.DefaultConfig(), engine)
	return examgen.NewFallbackSource(gen, engine, logger)
}

// Handler returns the HTTP API over the services.
func (s *Services) Handler() http.Handler {
	return api.NewRouter(api.Deps{
		Store:         s.Store,
		Auth:          s.Auth,
		Exams:         s.Exams,
		Payments:      s.Payments,
		WebhookSecret: s.Config.WebhookSecret,
		CORSOrigins:   s.Config.CORSOrigins,
		Logger:        s.Logger,
	})
}

// Close releases resources in reverse order of acquisition.
func (s *Services) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}

// Serve runs h on addr until ctx is cancelled, then shuts down gracefully.
func Serve(ctx context.Context, addr string, h http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
