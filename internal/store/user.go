package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

var userColumns = []string{
	"id", "name", "email", "cpf", "password_hash", "role",
	"credits", "plan", "accepted_terms_at", "created_at",
}

type userRepo struct {
	s *Store
}

func scanUser(row interface{ Scan(...any) error }) (User, error) {
	var (
		u       User
		terms   sql.NullTime
		created time.Time
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.CPF, &u.PasswordHash, &u.Role,
		&u.Credits, &u.Plan, &terms, &created); err != nil {
		return User{}, err
	}
	if terms.Valid {
		t := terms.Time
		u.AcceptedTermsAt = &t
	}
	u.CreatedAt = created
	return u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *userRepo) Create(ctx context.Context, nu NewUser) (User, error) {
	role := nu.Role
	if role == "" {
		role = RoleStudent
	}
	if nu.Credits < 0 {
		return User{}, fmt.Errorf("create user: negative credits %d", nu.Credits)
	}
	now := time.Now().UTC()
	email := normalizeEmail(nu.Email)

	var terms any
	if nu.AcceptedTermsAt != nil {
		terms = nu.AcceptedTermsAt.UTC()
	}

	query, args := r.s.build().Insert("users").
		Columns("name", "email", "cpf", "password_hash", "role", "credits", "plan", "accepted_terms_at", "created_at").
		Values(nu.Name, email, nu.CPF, nu.PasswordHash, role, nu.Credits, nu.Plan, terms, now).
		Returning("id").
		Query()

	var id int
	if err := r.s.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		if isUniqueViolation(err) {
			return User{}, ErrDuplicateEmail
		}
		return User{}, fmt.Errorf("create user: %w", err)
	}
	return r.Get(ctx, id)
}

func (r *userRepo) get(ctx context.Context, q querier, p *entsql.Predicate) (User, error) {
	query, args := r.s.build().Select(userColumns...).
		From(r.s.build().Table("users")).
		Where(p).
		Query()
	u, err := scanUser(q.QueryRowContext(ctx, query, args...))
	if err != nil {
		return User{}, notFound(err)
	}
	return u, nil
}

func (r *userRepo) Get(ctx context.Context, id int) (User, error) {
	u, err := r.get(ctx, r.s.db, entsql.EQ("id", id))
	if err != nil {
		return User{}, fmt.Errorf("get user %d: %w", id, err)
	}
	return u, nil
}

func (r *userRepo) ByEmail(ctx context.Context, email string) (User, error) {
	email = normalizeEmail(email)
	u, err := r.get(ctx, r.s.db, entsql.EQ("email", email))
	if err != nil {
		return User{}, fmt.Errorf("get user %q: %w", email, err)
	}
	return u, nil
}

func (r *userRepo) List(ctx context.Context) ([]User, error) {
	query, args := r.s.build().Select(userColumns...).
		From(r.s.build().Table("users")).
		OrderBy(entsql.Desc("created_at"), entsql.Desc("id")).
		Query()
	rows, err := r.s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *userRepo) AdjustCredits(ctx context.Context, id, delta int) (int, error) {
	var balance int
	err := r.s.withTx(ctx, func(tx *sql.Tx) error {
		b, err := adjustCredits(ctx, r.s, tx, id, delta)
		balance = b
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("adjust credits of user %d: %w", id, err)
	}
	return balance, nil
}

// adjustCredits applies delta guarded by credits + delta >= 0 and returns
// the new balance.
func adjustCredits(ctx context.Context, s *Store, q querier, id, delta int) (int, error) {
	preds := []*entsql.Predicate{entsql.EQ("id", id)}
	if delta < 0 {
		preds = append(preds, entsql.GTE("credits", -delta))
	}
	query, args := s.build().Update("users").
		Add("credits", delta).
		Where(entsql.And(preds...)).
		Returning("credits").
		Query()

	var balance int
	err := q.QueryRowContext(ctx, query, args...).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		if _, gerr := (&userRepo{s: s}).get(ctx, q, entsql.EQ("id", id)); gerr != nil {
			return 0, gerr
		}
		return 0, ErrInsufficientCredits
	}
	if err != nil {
		return 0, err
	}
	return balance, nil
}

func (r *userRepo) SetCredits(ctx context.Context, id, credits int) error {
	if credits < 0 {
		return fmt.Errorf("set credits of user %d: negative balance %d", id, credits)
	}
	query, args := r.s.build().Update("users").
		Set("credits", credits).
		Where(entsql.EQ("id", id)).
		Query()
	res, err := r.s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("set credits of user %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("set credits of user %d: %w", id, ErrNotFound)
	}
	return nil
}
