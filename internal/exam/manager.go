package exam

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ManagerConfig wires the collaborators of a Manager.
type ManagerConfig struct {
	Courses  CourseLookup
	Source   QuestionSource
	Consumer CreditConsumer

	// Recorder persists finished attempts. Optional.
	Recorder AttemptRecorder

	// Guard serializes certificate requests across processes. Optional.
	Guard InflightGuard

	Logger *slog.Logger

	// TickInterval is the wall-clock length of one exam second.
	// Default: 1s.
	TickInterval time.Duration

	// Duration overrides DurationSeconds. Zero keeps the default.
	Duration int

	// Retention is how long a submitted attempt stays in memory so the
	// learner can still request the certificate or retry. Default: 30m.
	Retention time.Duration
}

// Manager owns the in-memory sessions of a server process. Each session
// is driven by its own ticker goroutine until it is submitted or
// abandoned. Nothing about an in-progress attempt is persisted.
type Manager struct {
	cfg    ManagerConfig
	newID  func() string
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	sessions map[string]*entry
}

type entry struct {
	session *Session
	stop    context.CancelFunc

	subMu sync.Mutex
	subs  map[chan Snapshot]struct{}
}

// NewManager creates a Manager. Call Close to stop all timers.
func NewManager(cfg ManagerConfig) *Manager {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}
	if cfg.Duration <= 0 {
		cfg.Duration = DurationSeconds
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 30 * time.Minute
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		cfg:      cfg,
		newID:    uuid.NewString,
		ctx:      ctx,
		cancel:   cancel,
		sessions: make(map[string]*entry),
	}
}

// Close stops every running timer and drops all sessions.
func (m *Manager) Close() {
	m.cancel()
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, e := range m.sessions {
		e.close()
		delete(m.sessions, id)
	}
}

// Start generates questions for the course and begins a new attempt.
func (m *Manager) Start(ctx context.Context, userID, courseID int) (Snapshot, error) {
	course, err := m.cfg.Courses.Course(ctx, courseID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("lookup course %d: %w", courseID, err)
	}
	return m.start(ctx, userID, course)
}

func (m *Manager) start(ctx context.Context, userID int, course Course) (Snapshot, error) {
	questions, origin, err := m.cfg.Source.Questions(ctx, course.Title)
	if err != nil {
		return Snapshot{}, fmt.Errorf("generate questions: %w", err)
	}

	s := NewSession(m.newID(), userID, course, questions,
		WithDuration(m.cfg.Duration),
		WithOrigin(origin),
	)
	runCtx, stop := context.WithCancel(m.ctx)
	e := &entry{session: s, stop: stop, subs: make(map[chan Snapshot]struct{})}

	m.mu.Lock()
	m.sessions[s.ID()] = e
	m.mu.Unlock()

	go m.run(runCtx, e)

	m.cfg.Logger.Info("exam started",
		"attempt", s.ID(), "user", userID, "course", course.ID, "origin", origin)
	return s.Snapshot(), nil
}

// run drives the session clock.
func (m *Manager) run(ctx context.Context, e *entry) {
	t := time.NewTicker(m.cfg.TickInterval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			timedOut := e.session.Tick()
			e.broadcast(e.session.Snapshot())
			if timedOut {
				m.record(e.session)
				return
			}
			if e.session.Phase() != PhaseInProgress {
				return
			}
		}
	}
}

func (m *Manager) record(s *Session) {
	rec, ok := s.Record()
	if !ok {
		return
	}
	m.expire(s)
	m.cfg.Logger.Info("exam submitted",
		"attempt", rec.ID, "user", rec.UserID, "course", rec.CourseID,
		"correct", rec.CorrectCount, "passed", rec.Passed, "timed_out", rec.TimedOut)

	if m.cfg.Recorder == nil {
		return
	}
	if err := m.cfg.Recorder.RecordAttempt(m.ctx, rec); err != nil {
		m.cfg.Logger.Warn("failed to record exam attempt", "attempt", rec.ID, "error", err)
	}
}

// lookup returns the entry for attemptID if it belongs to userID.
func (m *Manager) lookup(attemptID string, userID int) (*entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[attemptID]
	if !ok || e.session.UserID() != userID {
		return nil, ErrNotFound
	}
	return e, nil
}

// Get returns a snapshot of the attempt.
func (m *Manager) Get(attemptID string, userID int) (Snapshot, error) {
	e, err := m.lookup(attemptID, userID)
	if err != nil {
		return Snapshot{}, err
	}
	return e.session.Snapshot(), nil
}

// Session returns the live session for attemptID.
func (m *Manager) Session(attemptID string, userID int) (*Session, error) {
	e, err := m.lookup(attemptID, userID)
	if err != nil {
		return nil, err
	}
	return e.session, nil
}

// SelectAnswer records an answer on the attempt.
func (m *Manager) SelectAnswer(attemptID string, userID, questionID, option int) (Snapshot, error) {
	e, err := m.lookup(attemptID, userID)
	if err != nil {
		return Snapshot{}, err
	}
	if err := e.session.SelectAnswer(questionID, option); err != nil {
		return Snapshot{}, err
	}
	snap := e.session.Snapshot()
	e.broadcast(snap)
	return snap, nil
}

// Submit scores the attempt and stops its clock.
func (m *Manager) Submit(attemptID string, userID int) (Snapshot, error) {
	e, err := m.lookup(attemptID, userID)
	if err != nil {
		return Snapshot{}, err
	}
	if _, err := e.session.Submit(); err != nil {
		return Snapshot{}, err
	}
	e.stop()
	m.record(e.session)

	snap := e.session.Snapshot()
	e.broadcast(snap)
	return snap, nil
}

// Retry replaces a failed attempt with a fresh one for the same course.
func (m *Manager) Retry(ctx context.Context, attemptID string, userID int) (Snapshot, error) {
	e, err := m.lookup(attemptID, userID)
	if err != nil {
		return Snapshot{}, err
	}
	if !e.session.CanRetry() {
		return Snapshot{}, ErrNotFailed
	}
	m.discard(attemptID)
	return m.start(ctx, userID, e.session.Course())
}

// Abandon discards the attempt. No credit is consumed and nothing is
// recorded for an attempt still in progress.
func (m *Manager) Abandon(attemptID string, userID int) error {
	if _, err := m.lookup(attemptID, userID); err != nil {
		return err
	}
	m.discard(attemptID)
	return nil
}

// expire drops the submitted session once Retention has elapsed, unless it
// was already replaced by a retry or abandoned.
func (m *Manager) expire(s *Session) {
	time.AfterFunc(m.cfg.Retention, func() {
		m.mu.Lock()
		e, ok := m.sessions[s.ID()]
		m.mu.Unlock()
		if ok && e.session == s {
			m.discard(s.ID())
		}
	})
}

func (m *Manager) discard(attemptID string) {
	m.mu.Lock()
	e, ok := m.sessions[attemptID]
	delete(m.sessions, attemptID)
	m.mu.Unlock()
	if ok {
		e.close()
	}
}

// CertificateLockKey is the guard key serializing a learner's certificate
// requests.
func CertificateLockKey(userID int) string {
	return "certificate:user:" + strconv.Itoa(userID)
}

// RequestCertificate spends a credit for a passed attempt.
func (m *Manager) RequestCertificate(ctx context.Context, attemptID string, userID int) (CreditResult, error) {
	e, err := m.lookup(attemptID, userID)
	if err != nil {
		return CreditResult{}, err
	}

	// The lock is per learner: a learner's requests may reach any server
	// sharing the guard, and each one spends from the same balance.
	if m.cfg.Guard != nil {
		release, acquired, err := m.cfg.Guard.TryAcquire(ctx, CertificateLockKey(userID))
		if err != nil {
			return CreditResult{}, fmt.Errorf("acquire certificate lock: %w", err)
		}
		if !acquired {
			return CreditResult{}, ErrBusy
		}
		defer release()
	}

	res, err := e.session.RequestCertificate(ctx, m.cfg.Consumer)
	if err != nil {
		return CreditResult{}, err
	}
	if res.Success {
		m.cfg.Logger.Info("certificate issued",
			"attempt", attemptID, "user", userID, "certificate", res.CertificateID, "remaining", res.Remaining)
	}
	e.broadcast(e.session.Snapshot())
	return res, nil
}

// Subscribe streams snapshots of the attempt after every tick and change.
// The channel is closed when the attempt is discarded or cancel is called.
func (m *Manager) Subscribe(attemptID string, userID int) (<-chan Snapshot, func(), error) {
	e, err := m.lookup(attemptID, userID)
	if err != nil {
		return nil, nil, err
	}
	ch := make(chan Snapshot, 1)
	ch <- e.session.Snapshot()

	e.subMu.Lock()
	if e.subs == nil {
		e.subMu.Unlock()
		return nil, nil, ErrNotFound
	}
	e.subs[ch] = struct{}{}
	e.subMu.Unlock()

	cancel := func() {
		e.subMu.Lock()
		defer e.subMu.Unlock()
		if _, ok := e.subs[ch]; ok {
			delete(e.subs, ch)
			close(ch)
		}
	}
	return ch, cancel, nil
}

// Active returns the number of sessions held in memory.
func (m *Manager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// broadcast delivers snap to every subscriber, replacing an undelivered
// older snapshot.
func (e *entry) broadcast(snap Snapshot) {
	e.subMu.Lock()
	defer e.subMu.Unlock()
	for ch := range e.subs {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}

func (e *entry) close() {
	e.stop()
	e.subMu.Lock()
	defer e.subMu.Unlock()
	for ch := range e.subs {
		close(ch)
	}
	e.subs = nil
}
