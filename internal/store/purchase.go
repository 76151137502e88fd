package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

var purchaseColumns = []string{"id", "user_id", "amount_cents", "credits", "status", "billing_id", "created_at"}

type purchaseRepo struct {
	s *Store
}

// errReplayed aborts the payment transaction when the event id was seen.
var errReplayed = errors.New("payment event already processed")

func (r *purchaseRepo) ApplyPayment(ctx context.Context, p PaymentParams) (PaymentOutcome, error) {
	if p.EventID == "" {
		return PaymentOutcome{}, fmt.Errorf("apply payment: empty event id")
	}
	if p.Credits <= 0 {
		return PaymentOutcome{}, fmt.Errorf("apply payment %s: non-positive credits %d", p.EventID, p.Credits)
	}

	var out PaymentOutcome
	err := r.s.withTx(ctx, func(tx *sql.Tx) error {
		u, err := (&userRepo{s: r.s}).get(ctx, tx, entsql.EQ("email", normalizeEmail(p.Email)))
		if errors.Is(err, ErrNotFound) {
			out = PaymentOutcome{UnknownUser: true}
			return nil
		}
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		query, args := r.s.build().Insert("payment_events").
			Columns("id", "kind", "received_at").
			Values(p.EventID, p.Kind, now).
			Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			if isUniqueViolation(err) {
				return errReplayed
			}
			return err
		}

		balance, err := adjustCredits(ctx, r.s, tx, u.ID, p.Credits)
		if err != nil {
			return err
		}

		pur := Purchase{
			ID:          p.PurchaseID,
			UserID:      u.ID,
			AmountCents: p.AmountCents,
			Credits:     p.Credits,
			Status:      PurchaseCompleted,
			BillingID:   p.BillingID,
			CreatedAt:   now,
		}
		query, args = r.s.build().Insert("purchases").
			Columns(purchaseColumns...).
			Values(pur.ID, pur.UserID, pur.AmountCents, pur.Credits, pur.Status, pur.BillingID, pur.CreatedAt).
			Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}

		out = PaymentOutcome{Applied: true, UserID: u.ID, Balance: balance, Purchase: &pur}
		return nil
	})
	if errors.Is(err, errReplayed) {
		return PaymentOutcome{Duplicate: true}, nil
	}
	if err != nil {
		return PaymentOutcome{}, fmt.Errorf("apply payment %s: %w", p.EventID, err)
	}
	return out, nil
}

func (r *purchaseRepo) ListByUser(ctx context.Context, userID int) ([]Purchase, error) {
	query, args := r.s.build().Select(purchaseColumns...).
		From(r.s.build().Table("purchases")).
		Where(entsql.EQ("user_id", userID)).
		OrderBy(entsql.Desc("created_at")).
		Query()
	rows, err := r.s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list purchases of user %d: %w", userID, err)
	}
	defer rows.Close()

	var out []Purchase
	for rows.Next() {
		var p Purchase
		if err := rows.Scan(&p.ID, &p.UserID, &p.AmountCents, &p.Credits, &p.Status, &p.BillingID, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan purchase: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
