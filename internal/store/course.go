package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

var courseColumns = []string{
	"id", "title", "description", "price_cents", "duration_hours", "published", "created_at",
}

type courseRepo struct {
	s *Store
}

func scanCourse(row interface{ Scan(...any) error }) (Course, error) {
	var c Course
	err := row.Scan(&c.ID, &c.Title, &c.Description, &c.PriceCents, &c.DurationHours, &c.Published, &c.CreatedAt)
	return c, err
}

func (r *courseRepo) Create(ctx context.Context, nc NewCourse) (Course, error) {
	title := strings.TrimSpace(nc.Title)
	if title == "" {
		return Course{}, fmt.Errorf("create course: empty title")
	}

	var id int
	err := r.s.withTx(ctx, func(tx *sql.Tx) error {
		query, args := r.s.build().Insert("courses").
			Columns("title", "description", "price_cents", "duration_hours", "published", "created_at").
			Values(title, nc.Description, nc.PriceCents, nc.DurationHours, true, time.Now().UTC()).
			Returning("id").
			Query()
		if err := tx.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicateTitle
			}
			return err
		}
		return insertModules(ctx, r.s, tx, id, nc.Modules)
	})
	if err != nil {
		return Course{}, fmt.Errorf("create course %q: %w", title, err)
	}
	return r.Get(ctx, id)
}

func insertModules(ctx context.Context, s *Store, q querier, courseID int, modules []string) error {
	if len(modules) == 0 {
		return nil
	}
	ins := s.build().Insert("course_modules").Columns("course_id", "position", "title")
	for i, m := range modules {
		ins.Values(courseID, i, m)
	}
	query, args := ins.Query()
	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert modules: %w", err)
	}
	return nil
}

func (r *courseRepo) modules(ctx context.Context, courseID int) ([]string, error) {
	query, args := r.s.build().Select("title").
		From(r.s.build().Table("course_modules")).
		Where(entsql.EQ("course_id", courseID)).
		OrderBy("position", "id").
		Query()
	rows, err := r.s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query modules: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *courseRepo) one(ctx context.Context, p *entsql.Predicate) (Course, error) {
	query, args := r.s.build().Select(courseColumns...).
		From(r.s.build().Table("courses")).
		Where(p).
		Query()
	c, err := scanCourse(r.s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return Course{}, notFound(err)
	}
	c.Modules, err = r.modules(ctx, c.ID)
	if err != nil {
		return Course{}, err
	}
	return c, nil
}

func (r *courseRepo) Get(ctx context.Context, id int) (Course, error) {
	c, err := r.one(ctx, entsql.EQ("id", id))
	if err != nil {
		return Course{}, fmt.Errorf("get course %d: %w", id, err)
	}
	return c, nil
}

func (r *courseRepo) ByTitle(ctx context.Context, title string) (Course, error) {
	c, err := r.one(ctx, entsql.EQ("title", strings.TrimSpace(title)))
	if err != nil {
		return Course{}, fmt.Errorf("get course %q: %w", title, err)
	}
	return c, nil
}

func (r *courseRepo) List(ctx context.Context, publishedOnly bool) ([]Course, error) {
	sel := r.s.build().Select(courseColumns...).
		From(r.s.build().Table("courses")).
		OrderBy("title")
	if publishedOnly {
		sel.Where(entsql.EQ("published", true))
	}
	query, args := sel.Query()
	rows, err := r.s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	defer rows.Close()

	var out []Course
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("scan course: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *courseRepo) Summaries(ctx context.Context) ([]CourseSummary, error) {
	b := r.s.build()
	c := b.Table("courses")
	cert := b.Table("certificates")

	cols := make([]string, 0, len(courseColumns)+2)
	for _, col := range courseColumns {
		cols = append(cols, c.C(col))
	}
	cols = append(cols,
		"COUNT(certificates.id) AS certificate_count",
		"COUNT(DISTINCT certificates.user_id) AS learner_count",
	)
	query, args := b.Select(cols...).
		From(c).
		LeftJoin(cert).On(c.C("id"), cert.C("course_id")).
		GroupBy(cols[:len(courseColumns)]...).
		OrderBy(c.C("title")).
		Query()

	rows, err := r.s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("course summaries: %w", err)
	}
	defer rows.Close()

	var out []CourseSummary
	for rows.Next() {
		var cs CourseSummary
		if err := rows.Scan(&cs.ID, &cs.Title, &cs.Description, &cs.PriceCents, &cs.DurationHours,
			&cs.Published, &cs.CreatedAt, &cs.Certificates, &cs.Learners); err != nil {
			return nil, fmt.Errorf("scan course summary: %w", err)
		}
		out = append(out, cs)
	}
	return out, rows.Err()
}

func (r *courseRepo) Delete(ctx context.Context, id int) error {
	err := r.s.withTx(ctx, func(tx *sql.Tx) error {
		var n int
		query, args := r.s.build().Select(entsql.Count("*")).
			From(r.s.build().Table("certificates")).
			Where(entsql.EQ("course_id", id)).
			Query()
		if err := tx.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
			return err
		}
		if n > 0 {
			return ErrInUse
		}

		query, args = r.s.build().Delete("course_modules").Where(entsql.EQ("course_id", id)).Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
		query, args = r.s.build().Delete("courses").Where(entsql.EQ("id", id)).Query()
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			if isForeignKeyViolation(err) {
				return ErrInUse
			}
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete course %d: %w", id, err)
	}
	return nil
}
