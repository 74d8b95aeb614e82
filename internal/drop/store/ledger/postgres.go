package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"curio/internal/drop/models"
	"curio/pkg/platform/sentinel"
	"curio/pkg/platform/tx"
)

// Postgres persists ownership records in PostgreSQL. Writes participate in a
// surrounding transaction when one is carried in the context.
type Postgres struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed ledger.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// EnsureSchema creates the tokens table if it does not exist.
func (s *Postgres) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS tokens (
			id        BIGINT PRIMARY KEY,
			owner     TEXT NOT NULL,
			uri       TEXT NOT NULL,
			approved  TEXT NOT NULL DEFAULT '',
			minted_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS tokens_owner_idx ON tokens (owner);
	`)
	if err != nil {
		return fmt.Errorf("ensure tokens schema: %w", err)
	}
	return nil
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Postgres) q(ctx context.Context) querier {
	if t, ok := tx.From(ctx); ok {
		return t
	}
	return s.db
}

func (s *Postgres) Create(ctx context.Context, token *models.Token) error {
	_, err := s.q(ctx).ExecContext(ctx,
		`INSERT INTO tokens (id, owner, uri, approved, minted_at) VALUES ($1, $2, $3, $4, $5)`,
		int64(token.ID), token.Owner.String(), token.URI, token.Approved.String(), token.MintedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create token: %w", err)
	}
	return nil
}

func (s *Postgres) Get(ctx context.Context, id uint64) (*models.Token, error) {
	row := s.q(ctx).QueryRowContext(ctx,
		`SELECT id, owner, uri, approved, minted_at FROM tokens WHERE id = $1`, int64(id))
	return scanToken(row)
}

func (s *Postgres) Transfer(ctx context.Context, from, to models.Account, id uint64) error {
	res, err := s.q(ctx).ExecContext(ctx,
		`UPDATE tokens SET owner = $1, approved = '' WHERE id = $2 AND owner = $3`,
		to.String(), int64(id), from.String(),
	)
	if err != nil {
		return fmt.Errorf("transfer token: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("transfer token: %w", err)
	}
	if affected == 0 {
		// Distinguish a missing token from a wrong current owner.
		if _, err := s.Get(ctx, id); errors.Is(err, sentinel.ErrNotFound) {
			return sentinel.ErrNotFound
		}
		return sentinel.ErrInvalidState
	}
	return nil
}

func (s *Postgres) SetURI(ctx context.Context, id uint64, uri string) error {
	return s.updateOne(ctx, `UPDATE tokens SET uri = $1 WHERE id = $2`, uri, int64(id))
}

func (s *Postgres) SetApproved(ctx context.Context, id uint64, spender models.Account) error {
	return s.updateOne(ctx, `UPDATE tokens SET approved = $1 WHERE id = $2`, spender.String(), int64(id))
}

func (s *Postgres) Destroy(ctx context.Context, id uint64) error {
	return s.updateOne(ctx, `DELETE FROM tokens WHERE id = $1`, int64(id))
}

func (s *Postgres) updateOne(ctx context.Context, query string, args ...any) error {
	res, err := s.q(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update token: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update token: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) OwnedBy(ctx context.Context, account models.Account) ([]models.Token, error) {
	rows, err := s.q(ctx).QueryContext(ctx,
		`SELECT id, owner, uri, approved, minted_at FROM tokens WHERE owner = $1 ORDER BY id`,
		account.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("list tokens by owner: %w", err)
	}
	defer rows.Close()

	var out []models.Token
	for rows.Next() {
		token, err := scanTokenRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *token)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tokens by owner: %w", err)
	}
	return out, nil
}

func (s *Postgres) TotalSupply(ctx context.Context) (uint64, error) {
	var count int64
	if err := s.q(ctx).QueryRowContext(ctx, `SELECT COUNT(*) FROM tokens`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count tokens: %w", err)
	}
	return uint64(count), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanToken(row *sql.Row) (*models.Token, error) {
	token, err := scanTokenRow(row)
	if err != nil {
		return nil, err
	}
	return token, nil
}

func scanTokenRow(row rowScanner) (*models.Token, error) {
	var token models.Token
	var id int64
	var owner, approved string
	err := row.Scan(&id, &owner, &token.URI, &approved, &token.MintedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan token: %w", err)
	}
	token.ID = uint64(id)
	token.Owner = models.Account(owner)
	token.Approved = models.Account(approved)
	return &token, nil
}
