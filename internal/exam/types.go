package exam

import (
	"context"
	"errors"
	"time"

	"github.com/abhisek/certifica/internal/questionbank"
)

// Exam rules.
const (
	// DurationSeconds is the time limit of an attempt.
	DurationSeconds = 3600

	// PassThreshold is the minimum number of correct answers to pass.
	PassThreshold = 6
)

var (
	ErrNotInProgress   = errors.New("exam is not in progress")
	ErrIncomplete      = errors.New("all questions must be answered before submitting")
	ErrUnknownQuestion = errors.New("unknown question id")
	ErrInvalidOption   = errors.New("option index out of range")
	ErrNotPassed       = errors.New("certificate is only available after passing the exam")
	ErrNotFailed       = errors.New("retry is only available after failing the exam")
	ErrBusy            = errors.New("certificate request already in progress")
	ErrNotFound        = errors.New("exam attempt not found")
)

// Course is the subset of course data an attempt needs.
type Course struct {
	ID       int
	Title    string
	Duration int
}

// CourseLookup resolves a course by id.
type CourseLookup interface {
	Course(ctx context.Context, id int) (Course, error)
}

// QuestionSource produces the questions for a course title. The second
// return value names where they came from, e.g. "ai" or "template".
type QuestionSource interface {
	Questions(ctx context.Context, title string) ([]questionbank.Question, string, error)
}

// ConsumeRequest identifies the attempt a certificate is issued for.
type ConsumeRequest struct {
	UserID    int
	CourseID  int
	AttemptID string
	Score     int
}

// CreditResult is the outcome of spending a credit on a certificate.
type CreditResult struct {
	Success       bool   `json:"success"`
	Remaining     int    `json:"remaining"`
	CertificateID string `json:"certificateId,omitempty"`
	Error         string `json:"error,omitempty"`
	Redirect      string `json:"redirect,omitempty"`
}

// CreditConsumer spends one credit and records a certificate atomically.
// Insufficient credits is reported as Success=false with a Redirect, not
// as an error.
type CreditConsumer interface {
	Consume(ctx context.Context, req ConsumeRequest) (CreditResult, error)
}

// AttemptRecord is a finished attempt as persisted for history.
type AttemptRecord struct {
	ID           string
	UserID       int
	CourseID     int
	CorrectCount int
	Passed       bool
	TimedOut     bool
	Origin       string
	SubmittedAt  time.Time
}

// AttemptRecorder persists finished attempts.
type AttemptRecorder interface {
	RecordAttempt(ctx context.Context, rec AttemptRecord) error
}

// InflightGuard prevents two processes from requesting a certificate for
// the same attempt at the same time.
type InflightGuard interface {
	TryAcquire(ctx context.Context, key string) (release func(), acquired bool, err error)
}
