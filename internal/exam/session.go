package exam

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/abhisek/certifica/internal/questionbank"
)

// Phase is the state of an attempt.
type Phase int

const (
	PhaseInProgress Phase = iota // Accepting answers and ticks
	PhaseSubmitted               // Scored; terminal
)

func (p Phase) String() string {
	switch p {
	case PhaseInProgress:
		return "in_progress"
	case PhaseSubmitted:
		return "submitted"
	default:
		return "unknown"
	}
}

// Result is the score of a submitted attempt.
type Result struct {
	CorrectCount int       `json:"correctCount"`
	Total        int       `json:"total"`
	Passed       bool      `json:"passed"`
	TimedOut     bool      `json:"timedOut"`
	SubmittedAt  time.Time `json:"submittedAt"`
}

// Session is a single timed attempt. All methods are safe for concurrent
// use; the certificate request holds a busy flag instead of the lock while
// the consumer runs.
type Session struct {
	mu sync.Mutex

	id       string
	userID   int
	course   Course
	origin   string
	now      func() time.Time
	started  time.Time
	duration int

	questions     []questionbank.Question
	answers       map[int]int
	timeRemaining int
	phase         Phase
	result        Result

	busy        bool
	certificate *CreditResult
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithClock sets the time source used for timestamps.
func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) { s.now = now }
}

// WithDuration overrides the time limit in seconds.
func WithDuration(seconds int) SessionOption {
	return func(s *Session) { s.duration = seconds }
}

// WithOrigin records where the questions came from.
func WithOrigin(origin string) SessionOption {
	return func(s *Session) { s.origin = origin }
}

// NewSession starts an attempt in PhaseInProgress with the full time limit
// and no answers.
func NewSession(id string, userID int, course Course, questions []questionbank.Question, opts ...SessionOption) *Session {
	s := &Session{
		id:        id,
		userID:    userID,
		course:    course,
		now:       time.Now,
		duration:  DurationSeconds,
		questions: questions,
		answers:   make(map[int]int, len(questions)),
		phase:     PhaseInProgress,
	}
	for _, o := range opts {
		o(s)
	}
	s.timeRemaining = s.duration
	s.started = s.now()
	return s
}

// ID returns the attempt id.
func (s *Session) ID() string { return s.id }

// UserID returns the learner that owns the attempt.
func (s *Session) UserID() int { return s.userID }

// Course returns the course under examination.
func (s *Session) Course() Course { return s.course }

// Phase returns the current phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Result returns the score; ok is false while the attempt is in progress.
func (s *Session) Result() (Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result, s.phase == PhaseSubmitted
}

// TimeRemaining returns the seconds left on the clock.
func (s *Session) TimeRemaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timeRemaining
}

// SelectAnswer records option for questionID, replacing any earlier choice.
func (s *Session) SelectAnswer(questionID, option int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseInProgress {
		return ErrNotInProgress
	}
	if !s.hasQuestion(questionID) {
		return fmt.Errorf("%w: %d", ErrUnknownQuestion, questionID)
	}
	if option < 0 || option >= questionbank.OptionCount {
		return fmt.Errorf("%w: %d", ErrInvalidOption, option)
	}
	s.answers[questionID] = option
	return nil
}

// Answered returns the number of questions with a selected option.
func (s *Session) Answered() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.answers)
}

// CanSubmit reports whether a manual submit is allowed.
func (s *Session) CanSubmit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase == PhaseInProgress && len(s.answers) == len(s.questions)
}

// Tick advances the clock by one second. When the clock reaches zero the
// attempt is submitted regardless of how many questions were answered, and
// Tick returns true. Ticks after submission are ignored.
func (s *Session) Tick() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseInProgress {
		return false
	}
	if s.timeRemaining > 0 {
		s.timeRemaining--
	}
	if s.timeRemaining == 0 {
		s.submitLocked(true)
		return true
	}
	return false
}

// Submit scores a fully answered attempt.
func (s *Session) Submit() (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseInProgress {
		return Result{}, ErrNotInProgress
	}
	if len(s.answers) < len(s.questions) {
		return Result{}, fmt.Errorf("%w: %d of %d answered", ErrIncomplete, len(s.answers), len(s.questions))
	}
	s.submitLocked(false)
	return s.result, nil
}

func (s *Session) submitLocked(timedOut bool) {
	correct := Score(s.questions, s.answers)
	s.result = Result{
		CorrectCount: correct,
		Total:        len(s.questions),
		Passed:       correct >= PassThreshold,
		TimedOut:     timedOut,
		SubmittedAt:  s.now(),
	}
	s.phase = PhaseSubmitted
}

// CanRetry reports whether the attempt failed and may be replaced.
func (s *Session) CanRetry() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase == PhaseSubmitted && !s.result.Passed
}

// RequestCertificate spends a credit through consumer. It is only valid
// after passing. Once a certificate was issued the recorded result is
// returned without calling consumer again. A failed or refused request
// leaves the session unchanged so it can be retried.
func (s *Session) RequestCertificate(ctx context.Context, consumer CreditConsumer) (CreditResult, error) {
	s.mu.Lock()
	if s.phase != PhaseSubmitted || !s.result.Passed {
		s.mu.Unlock()
		return CreditResult{}, ErrNotPassed
	}
	if s.certificate != nil {
		res := *s.certificate
		s.mu.Unlock()
		return res, nil
	}
	if s.busy {
		s.mu.Unlock()
		return CreditResult{}, ErrBusy
	}
	s.busy = true
	req := ConsumeRequest{
		UserID:    s.userID,
		CourseID:  s.course.ID,
		AttemptID: s.id,
		Score:     s.result.CorrectCount,
	}
	s.mu.Unlock()

	res, err := consumer.Consume(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
	if err != nil {
		return CreditResult{}, fmt.Errorf("consume credit: %w", err)
	}
	if res.Success {
		issued := res
		s.certificate = &issued
	}
	return res, nil
}

// Busy reports whether a certificate request is pending.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Record returns the persisted form of a submitted attempt.
func (s *Session) Record() (AttemptRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseSubmitted {
		return AttemptRecord{}, false
	}
	return AttemptRecord{
		ID:           s.id,
		UserID:       s.userID,
		CourseID:     s.course.ID,
		CorrectCount: s.result.CorrectCount,
		Passed:       s.result.Passed,
		TimedOut:     s.result.TimedOut,
		Origin:       s.origin,
		SubmittedAt:  s.result.SubmittedAt,
	}, true
}

func (s *Session) hasQuestion(id int) bool {
	for _, q := range s.questions {
		if q.ID == id {
			return true
		}
	}
	return false
}

// Score counts questions whose selected option equals the correct index.
// Unanswered questions count as incorrect.
func Score(questions []questionbank.Question, answers map[int]int) int {
	correct := 0
	for _, q := range questions {
		if a, ok := answers[q.ID]; ok && q.IsCorrect(a) {
			correct++
		}
	}
	return correct
}
