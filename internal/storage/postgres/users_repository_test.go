package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/eventboard/server/internal/domain/users"
	"github.com/eventboard/server/internal/storage"
)

func TestUserRepositoryCreateAndLookup(t *testing.T) {
	pool, _ := setupPostgres(t)
	repo, err := NewRepository(pool)
	require.NoError(t, err)
	ctx := context.Background()

	created, err := repo.Users().Create(ctx, users.CreateParams{Username: "alice", PasswordHash: "hash"})
	require.NoError(t, err)
	_, err = uuid.Parse(created.ID)
	require.NoError(t, err)

	got, err := repo.Users().GetByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)
	require.Equal(t, "hash", got.PasswordHash)

	_, err = repo.Users().GetByUsername(ctx, "Alice")
	require.ErrorIs(t, err, users.ErrNotFound)
}

func TestUserRepositoryDuplicateUsername(t *testing.T) {
	pool, _ := setupPostgres(t)
	repo, err := NewRepository(pool)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = repo.Users().Create(ctx, users.CreateParams{Username: "bob", PasswordHash: "hash"})
	require.NoError(t, err)

	_, err = repo.Users().Create(ctx, users.CreateParams{Username: "bob", PasswordHash: "other"})
	require.ErrorIs(t, err, users.ErrUsernameTaken)
}

func TestRepositoryWithTxRollsBack(t *testing.T) {
	pool, _ := setupPostgres(t)
	repo, err := NewRepository(pool)
	require.NoError(t, err)
	ctx := context.Background()
	boom := errors.New("boom")

	err = repo.WithTx(ctx, func(ctx context.Context, tx storage.Repository) error {
		if _, err := tx.Users().Create(ctx, users.CreateParams{Username: "carol", PasswordHash: "hash"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = repo.Users().GetByUsername(ctx, "carol")
	require.ErrorIs(t, err, users.ErrNotFound)
}

func TestMigrateDownAndUp(t *testing.T) {
	_, dbURL := setupPostgres(t)

	version, dirty, err := MigrationVersion(dbURL)
	require.NoError(t, err)
	require.False(t, dirty)
	require.Equal(t, uint(2), version)

	require.NoError(t, MigrateDown(dbURL, 1))
	version, _, err = MigrationVersion(dbURL)
	require.NoError(t, err)
	require.Equal(t, uint(1), version)

	require.NoError(t, MigrateUp(dbURL))
	version, _, err = MigrationVersion(dbURL)
	require.NoError(t, err)
	require.Equal(t, uint(2), version)
}

func TestNewRepositoryRequiresPool(t *testing.T) {
	_, err := NewRepository(nil)
	require.Error(t, err)
}

func TestRepositoryHealthProbes(t *testing.T) {
	pool, _ := setupPostgres(t)
	repo, err := NewRepository(pool)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, repo.Ping(ctx))
	version, dirty, err := repo.MigrationStatus(ctx)
	require.NoError(t, err)
	require.False(t, dirty)
	require.Equal(t, int64(2), version)
}
