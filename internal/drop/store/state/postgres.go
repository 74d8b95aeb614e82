package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"curio/internal/drop/models"
	"curio/pkg/platform/sentinel"
	"curio/pkg/platform/tx"
)

// The collection is a singleton; the table holds exactly one row.
const singletonID = 1

// Postgres persists the collection state in PostgreSQL.
type Postgres struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed state store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// EnsureSchema creates the collection_state table if it does not exist.
func (s *Postgres) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS collection_state (
			id              SMALLINT PRIMARY KEY,
			phase           BIGINT NOT NULL,
			phase_limit     BIGINT NOT NULL,
			price           BIGINT NOT NULL,
			cap             BIGINT NOT NULL,
			minted          BIGINT NOT NULL,
			mint_open       BOOLEAN NOT NULL,
			whitelist_on    BOOLEAN NOT NULL,
			paused          BOOLEAN NOT NULL,
			placeholder_uri TEXT NOT NULL,
			admin_status    TEXT NOT NULL,
			admin_account   TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("ensure collection_state schema: %w", err)
	}
	return nil
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Postgres) q(ctx context.Context) querier {
	if t, ok := tx.From(ctx); ok {
		return t
	}
	return s.db
}

func (s *Postgres) Load(ctx context.Context) (*models.Collection, error) {
	row := s.q(ctx).QueryRowContext(ctx, `
		SELECT phase, phase_limit, price, cap, minted, mint_open, whitelist_on,
		       paused, placeholder_uri, admin_status, admin_account
		FROM collection_state WHERE id = $1`, singletonID)

	var c models.Collection
	var adminStatus, adminAccount string
	err := row.Scan(&c.Phase, &c.PhaseLimit, &c.Price, &c.Cap, &c.Minted,
		&c.MintOpen, &c.WhitelistOn, &c.Paused, &c.PlaceholderURI,
		&adminStatus, &adminAccount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("load collection state: %w", err)
	}
	c.Admin = models.Administrator{
		Status:  models.AdministratorStatus(adminStatus),
		Account: models.Account(adminAccount),
	}
	return &c, nil
}

func (s *Postgres) Save(ctx context.Context, c *models.Collection) error {
	_, err := s.q(ctx).ExecContext(ctx, `
		INSERT INTO collection_state (
			id, phase, phase_limit, price, cap, minted, mint_open,
			whitelist_on, paused, placeholder_uri, admin_status, admin_account
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			phase = EXCLUDED.phase,
			phase_limit = EXCLUDED.phase_limit,
			price = EXCLUDED.price,
			cap = EXCLUDED.cap,
			minted = EXCLUDED.minted,
			mint_open = EXCLUDED.mint_open,
			whitelist_on = EXCLUDED.whitelist_on,
			paused = EXCLUDED.paused,
			placeholder_uri = EXCLUDED.placeholder_uri,
			admin_status = EXCLUDED.admin_status,
			admin_account = EXCLUDED.admin_account`,
		singletonID, c.Phase, c.PhaseLimit, c.Price, c.Cap, c.Minted,
		c.MintOpen, c.WhitelistOn, c.Paused, c.PlaceholderURI,
		string(c.Admin.Status), c.Admin.Account.String(),
	)
	if err != nil {
		return fmt.Errorf("save collection state: %w", err)
	}
	return nil
}
