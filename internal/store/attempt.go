package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

var attemptColumns = []string{"id", "user_id", "course_id", "correct_count", "passed", "timed_out", "source", "submitted_at"}

type attemptRepo struct {
	s *Store
}

func (r *attemptRepo) Record(ctx context.Context, a Attempt) error {
	if a.SubmittedAt.IsZero() {
		a.SubmittedAt = time.Now()
	}
	if a.Source == "" {
		a.Source = "template"
	}
	query, args := r.s.build().Insert("exam_attempts").
		Columns(attemptColumns...).
		Values(a.ID, a.UserID, a.CourseID, a.CorrectCount, a.Passed, a.TimedOut, a.Source, a.SubmittedAt.UTC()).
		OnConflict(entsql.ConflictColumns("id"), entsql.DoNothing()).
		Query()
	if _, err := r.s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("record attempt %s: %w", a.ID, err)
	}
	return nil
}

func (r *attemptRepo) ListByUser(ctx context.Context, userID int) ([]Attempt, error) {
	query, args := r.s.build().Select(attemptColumns...).
		From(r.s.build().Table("exam_attempts")).
		Where(entsql.EQ("user_id", userID)).
		OrderBy(entsql.Desc("submitted_at")).
		Query()
	rows, err := r.s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list attempts of user %d: %w", userID, err)
	}
	defer rows.Close()

	var out []Attempt
	for rows.Next() {
		var a Attempt
		if err := rows.Scan(&a.ID, &a.UserID, &a.CourseID, &a.CorrectCount, &a.Passed, &a.TimedOut, &a.Source, &a.SubmittedAt); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
