//go:build integration

package state_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"curio/internal/drop/models"
	"curio/internal/drop/store/state"
	"curio/pkg/platform/sentinel"
	"curio/pkg/testutil/containers"
)

type PostgresStateSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *state.Postgres
}

func TestPostgresStateSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStateSuite))
}

func (s *PostgresStateSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.store = state.NewPostgres(s.pg.DB)
	s.Require().NoError(s.store.EnsureSchema(context.Background()))
}

func (s *PostgresStateSuite) SetupTest() {
	_, err := s.pg.DB.Exec(`TRUNCATE collection_state`)
	s.Require().NoError(err)
}

func (s *PostgresStateSuite) TestLoadEmpty() {
	_, err := s.store.Load(context.Background())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStateSuite) TestSaveAndLoadRoundTrip() {
	ctx := context.Background()

	initial, err := models.NewCollection("admin", 100, 10, 1, "ipfs://placeholder")
	s.Require().NoError(err)
	s.Require().NoError(s.store.Save(ctx, initial))

	loaded, err := s.store.Load(ctx)
	s.Require().NoError(err)
	s.Equal(initial, loaded)

	s.Run("save is an upsert over the singleton row", func() {
		loaded.ApplyMint()
		loaded.ApplyAdvancePhase(50, 2)
		loaded.ApplyPause()
		loaded.ApplyRenounceAdministrator()
		s.Require().NoError(s.store.Save(ctx, loaded))

		again, err := s.store.Load(ctx)
		s.Require().NoError(err)
		s.Equal(uint64(1), again.Minted)
		s.Equal(uint64(2), again.Phase)
		s.Equal(uint64(50), again.PhaseLimit)
		s.True(again.Paused)
		s.Equal(models.AdministratorRenounced, again.Admin.Status)
		s.True(again.Admin.Account.IsZero())

		var rows int
		s.Require().NoError(s.pg.DB.QueryRow(`SELECT COUNT(*) FROM collection_state`).Scan(&rows))
		s.Equal(1, rows)
	})
}
