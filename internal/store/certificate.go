package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

var certificateColumns = []string{"id", "code", "user_id", "course_id", "attempt_id", "score", "issued_at"}

type certificateRepo struct {
	s *Store
}

func (r *certificateRepo) ConsumeCredit(ctx context.Context, p ConsumeParams) (ConsumeOutcome, error) {
	if p.AttemptID == "" {
		return ConsumeOutcome{}, fmt.Errorf("consume credit: empty attempt id")
	}

	var out ConsumeOutcome
	err := r.s.withTx(ctx, func(tx *sql.Tx) error {
		existing, err := r.byAttempt(ctx, tx, p)
		switch {
		case err == nil:
			u, err := (&userRepo{s: r.s}).get(ctx, tx, entsql.EQ("id", p.UserID))
			if err != nil {
				return err
			}
			out = ConsumeOutcome{Certificate: existing, Remaining: u.Credits, Existing: true}
			return nil
		case !errors.Is(err, ErrNotFound):
			return err
		}

		remaining, err := adjustCredits(ctx, r.s, tx, p.UserID, -1)
		if err != nil {
			return err
		}

		cert := Certificate{
			ID:        p.ID,
			Code:      p.Code,
			UserID:    p.UserID,
			CourseID:  p.CourseID,
			AttemptID: p.AttemptID,
			Score:     p.Score,
			IssuedAt:  time.Now().UTC(),
		}
		query, args := r.s.build().Insert("certificates").
			Columns(certificateColumns...).
			Values(cert.ID, cert.Code, cert.UserID, cert.CourseID, cert.AttemptID, cert.Score, cert.IssuedAt).
			Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
		out = ConsumeOutcome{Certificate: cert, Remaining: remaining}
		return nil
	})
	if err != nil && isUniqueViolation(err) {
		// Another transaction issued the certificate for this attempt
		// first; report that one.
		existing, gerr := r.byAttempt(ctx, r.s.db, p)
		if gerr == nil {
			u, uerr := (&userRepo{s: r.s}).Get(ctx, p.UserID)
			if uerr != nil {
				return ConsumeOutcome{}, uerr
			}
			return ConsumeOutcome{Certificate: existing, Remaining: u.Credits, Existing: true}, nil
		}
	}
	if err != nil {
		return ConsumeOutcome{}, fmt.Errorf("consume credit for attempt %s: %w", p.AttemptID, err)
	}
	return out, nil
}

func (r *certificateRepo) byAttempt(ctx context.Context, q querier, p ConsumeParams) (Certificate, error) {
	query, args := r.s.build().Select(certificateColumns...).
		From(r.s.build().Table("certificates")).
		Where(entsql.And(
			entsql.EQ("user_id", p.UserID),
			entsql.EQ("course_id", p.CourseID),
			entsql.EQ("attempt_id", p.AttemptID),
		)).
		Query()
	var c Certificate
	err := q.QueryRowContext(ctx, query, args...).
		Scan(&c.ID, &c.Code, &c.UserID, &c.CourseID, &c.AttemptID, &c.Score, &c.IssuedAt)
	if err != nil {
		return Certificate{}, notFound(err)
	}
	return c, nil
}

// detailSelector joins certificates with their user and course.
func (r *certificateRepo) detailSelector() (*entsql.Selector, *entsql.SelectTable) {
	b := r.s.build()
	t := b.Table("certificates")
	u := b.Table("users")
	c := b.Table("courses")

	cols := make([]string, 0, len(certificateColumns)+5)
	for _, col := range certificateColumns {
		cols = append(cols, t.C(col))
	}
	cols = append(cols, u.C("name"), u.C("email"), u.C("cpf"), c.C("title"), c.C("duration_hours"))

	sel := b.Select(cols...).
		From(t).
		Join(u).On(t.C("user_id"), u.C("id")).
		Join(c).On(t.C("course_id"), c.C("id"))
	return sel, t
}

func scanDetail(row interface{ Scan(...any) error }) (CertificateDetail, error) {
	var d CertificateDetail
	err := row.Scan(&d.ID, &d.Code, &d.UserID, &d.CourseID, &d.AttemptID, &d.Score, &d.IssuedAt,
		&d.UserName, &d.UserEmail, &d.UserCPF, &d.CourseTitle, &d.DurationHours)
	return d, err
}

func (r *certificateRepo) one(ctx context.Context, col string, v any) (CertificateDetail, error) {
	sel, t := r.detailSelector()
	query, args := sel.Where(entsql.EQ(t.C(col), v)).Query()
	d, err := scanDetail(r.s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return CertificateDetail{}, notFound(err)
	}
	d.Modules, err = (&courseRepo{s: r.s}).modules(ctx, d.CourseID)
	if err != nil {
		return CertificateDetail{}, err
	}
	return d, nil
}

func (r *certificateRepo) Get(ctx context.Context, id string) (CertificateDetail, error) {
	d, err := r.one(ctx, "id", id)
	if err != nil {
		return CertificateDetail{}, fmt.Errorf("get certificate %s: %w", id, err)
	}
	return d, nil
}

func (r *certificateRepo) ByCode(ctx context.Context, code string) (CertificateDetail, error) {
	d, err := r.one(ctx, "code", code)
	if err != nil {
		return CertificateDetail{}, fmt.Errorf("get certificate by code %s: %w", code, err)
	}
	return d, nil
}

// list returns certificates newest first, filtered on col = v when col is
// not empty.
func (r *certificateRepo) list(ctx context.Context, col string, v any, limit int) ([]CertificateDetail, error) {
	sel, t := r.detailSelector()
	if col != "" {
		sel.Where(entsql.EQ(t.C(col), v))
	}
	sel.OrderBy(entsql.Desc(t.C("issued_at")))
	if limit > 0 {
		sel.Limit(limit)
	}
	query, args := sel.Query()
	rows, err := r.s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CertificateDetail
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *certificateRepo) ListByUser(ctx context.Context, userID int) ([]CertificateDetail, error) {
	out, err := r.list(ctx, "user_id", userID, 0)
	if err != nil {
		return nil, fmt.Errorf("list certificates of user %d: %w", userID, err)
	}
	return out, nil
}

func (r *certificateRepo) List(ctx context.Context, limit int) ([]CertificateDetail, error) {
	out, err := r.list(ctx, "", nil, limit)
	if err != nil {
		return nil, fmt.Errorf("list certificates: %w", err)
	}
	return out, nil
}

func (r *certificateRepo) Delete(ctx context.Context, id string) error {
	query, args := r.s.build().Delete("certificates").Where(entsql.EQ("id", id)).Query()
	res, err := r.s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete certificate %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete certificate %s: %w", id, ErrNotFound)
	}
	return nil
}
