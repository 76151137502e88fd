package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
)

// eventSequence hands out the store-wide ordering number stamped on every
// logged event. It lives in a one-row table outside the migrated schema.
type eventSequence struct {
	mu sync.Mutex
	db *sql.DB
}

func openEventSequence(ctx context.Context, db *sql.DB) (*eventSequence, error) {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS event_sequence (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			next_val BIGINT NOT NULL DEFAULT 1
		)`,
		`INSERT INTO event_sequence (id, next_val) VALUES (1, 1) ON CONFLICT (id) DO NOTHING`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("event sequence: %w", err)
		}
	}
	return &eventSequence{db: db}, nil
}

// Next returns the current value and advances the counter. Values start
// at 1 and never repeat.
func (e *eventSequence) Next(ctx context.Context) (int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var n int64
	row := e.db.QueryRowContext(ctx,
		`UPDATE event_sequence SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`)
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("event sequence: %w", err)
	}
	return n, nil
}
