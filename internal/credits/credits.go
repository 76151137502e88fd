// Package credits connects exam attempts to the store: course lookup,
// credit-for-certificate exchange and attempt history.
package credits

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/abhisek/certifica/internal/certificate"
	"github.com/abhisek/certifica/internal/events"
	"github.com/abhisek/certifica/internal/exam"
	"github.com/abhisek/certifica/internal/store"
)

// TopUpRedirect is where learners without credits are sent.
const TopUpRedirect = "/offer"

// InsufficientCredits is the error text of a refused exchange.
const InsufficientCredits = "Insufficient credits"

// Courses implements exam.CourseLookup over the course table.
type Courses struct {
	Repo store.CourseRepo
}

func (c Courses) Course(ctx context.Context, id int) (exam.Course, error) {
	course, err := c.Repo.Get(ctx, id)
	if err != nil {
		return exam.Course{}, err
	}
	return exam.Course{ID: course.ID, Title: course.Title, Duration: course.DurationHours}, nil
}

// Attempts implements exam.AttemptRecorder over the attempt table.
type Attempts struct {
	Repo store.AttemptRepo
}

func (a Attempts) RecordAttempt(ctx context.Context, rec exam.AttemptRecord) error {
	return a.Repo.Record(ctx, store.Attempt{
		ID:           rec.ID,
		UserID:       rec.UserID,
		CourseID:     rec.CourseID,
		CorrectCount: rec.CorrectCount,
		Passed:       rec.Passed,
		TimedOut:     rec.TimedOut,
		Source:       rec.Origin,
		SubmittedAt:  rec.SubmittedAt,
	})
}

// Consumer implements exam.CreditConsumer: one credit buys the
// certificate of one passed attempt.
type Consumer struct {
	certs     store.CertificateRepo
	publisher events.Publisher
	logger    *slog.Logger
	newCode   func() (string, error)
}

// NewConsumer returns a Consumer. publisher may be nil.
func NewConsumer(certs store.CertificateRepo, publisher events.Publisher, logger *slog.Logger) *Consumer {
	if logger == nil {
		logger = slog.Default()
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Consumer{certs: certs, publisher: publisher, logger: logger, newCode: certificate.NewCode}
}

// Consume spends a credit and issues the certificate. Running out of
// credits is a result, not an error.
func (c *Consumer) Consume(ctx context.Context, req exam.ConsumeRequest) (exam.CreditResult, error) {
	code, err := c.newCode()
	if err != nil {
		return exam.CreditResult{}, err
	}

	out, err := c.certs.ConsumeCredit(ctx, store.ConsumeParams{
		UserID:    req.UserID,
		CourseID:  req.CourseID,
		AttemptID: req.AttemptID,
		Score:     req.Score,
		ID:        uuid.NewString(),
		Code:      code,
	})
	switch {
	case errors.Is(err, store.ErrInsufficientCredits):
		return exam.CreditResult{Success: false, Error: InsufficientCredits, Redirect: TopUpRedirect}, nil
	case err != nil:
		return exam.CreditResult{}, fmt.Errorf("consume credit: %w", err)
	}

	if !out.Existing {
		events.Emit(ctx, c.publisher, c.logger, events.New(events.CertificateIssued, map[string]any{
			"certificateId": out.Certificate.ID,
			"code":          out.Certificate.Code,
			"userId":        req.UserID,
			"courseId":      req.CourseID,
			"attemptId":     req.AttemptID,
			"score":         req.Score,
		}))
	}
	return exam.CreditResult{
		Success:       true,
		Remaining:     out.Remaining,
		CertificateID: out.Certificate.ID,
	}, nil
}
