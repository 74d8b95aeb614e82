// Package postgres persists audit events in PostgreSQL for deployments that
// want a queryable trail without a broker.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	audit "curio/pkg/platform/audit"
	"curio/pkg/platform/tx"
)

// Store writes audit events to the audit_events table. Writes participate in
// a surrounding transaction when one is carried in the context.
type Store struct {
	db *sql.DB
}

// New creates a PostgreSQL audit store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the audit_events table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS audit_events (
			id         UUID PRIMARY KEY,
			ts         TIMESTAMPTZ NOT NULL,
			action     TEXT NOT NULL,
			actor      TEXT NOT NULL,
			token_id   BIGINT NOT NULL DEFAULT 0,
			amount     BIGINT NOT NULL DEFAULT 0,
			detail     TEXT NOT NULL DEFAULT '',
			request_id TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS audit_events_actor_idx ON audit_events (actor, ts);
	`)
	if err != nil {
		return fmt.Errorf("ensure audit_events schema: %w", err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) q(ctx context.Context) execer {
	if t, ok := tx.From(ctx); ok {
		return t
	}
	return s.db
}

// Save appends an audit event.
func (s *Store) Save(ctx context.Context, event audit.Event) error {
	_, err := s.q(ctx).ExecContext(ctx, `
		INSERT INTO audit_events (id, ts, action, actor, token_id, amount, detail, request_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		event.ID, event.Timestamp, string(event.Action), event.Actor,
		int64(event.TokenID), int64(event.Amount), event.Detail, event.RequestID,
	)
	if err != nil {
		return fmt.Errorf("save audit event: %w", err)
	}
	return nil
}

// ListByActor returns events performed by the given actor, oldest first.
func (s *Store) ListByActor(ctx context.Context, actor string) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, ts, action, actor, token_id, amount, detail, request_id
		FROM audit_events WHERE actor = $1 ORDER BY ts`, actor)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var out []audit.Event
	for rows.Next() {
		var e audit.Event
		var action string
		var tokenID, amount int64
		if err := rows.Scan(&e.ID, &e.Timestamp, &action, &e.Actor,
			&tokenID, &amount, &e.Detail, &e.RequestID); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Action = audit.Action(action)
		e.TokenID = uint64(tokenID)
		e.Amount = uint64(amount)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	return out, nil
}
