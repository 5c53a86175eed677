package postgres

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/videotube/user-service/internal/core/domain"
)

func TestTranslate(t *testing.T) {
	assert.ErrorIs(t, translate(pgx.ErrNoRows), domain.ErrNotFound)
	assert.ErrorIs(t, translate(&pgconn.PgError{Code: uniqueViolation}), domain.ErrConflict)

	err := translate(errors.New("connection reset"))
	assert.EqualError(t, err, "db error: connection reset")
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}

func TestUserRepository_RejectsMalformedIDs(t *testing.T) {
	repo := NewUserRepository(nil)
	ctx := context.Background()

	_, err := repo.FindByID(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = repo.UpdateProfile(ctx, "not-a-uuid", domain.ProfilePatch{})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, repo.SetRefreshToken(ctx, "not-a-uuid", "t"), domain.ErrNotFound)

	swapped, err := repo.SwapRefreshToken(ctx, "not-a-uuid", "a", "b")
	require.NoError(t, err)
	assert.False(t, swapped)
}

// Runs against a real database when USER_SERVICE_TEST_POSTGRES_DSN is set.
func TestUserRepository_Postgres(t *testing.T) {
	dsn := os.Getenv("USER_SERVICE_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("USER_SERVICE_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()

	pool, repo, audit, err := Open(ctx, Config{DSN: dsn})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	_, err = pool.Exec(ctx, `TRUNCATE users, auth_events`)
	require.NoError(t, err)

	now := time.Now().UTC()
	created, err := repo.Create(ctx, &domain.User{
		Username: "alice", Email: "alice@example.com", FullName: "Alice",
		AvatarURL: "https://media.example.com/a.png", PasswordHash: "hash",
		CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Empty(t, created.CoverImageURL)

	_, err = repo.Create(ctx, &domain.User{Username: "alice", Email: "other@example.com", CreatedAt: now, UpdatedAt: now})
	assert.ErrorIs(t, err, domain.ErrConflict)

	found, err := repo.FindByUsernameOrEmail(ctx, "", "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	require.NoError(t, repo.SetRefreshToken(ctx, created.ID, "r1"))
	swapped, err := repo.SwapRefreshToken(ctx, created.ID, "r1", "r2")
	require.NoError(t, err)
	assert.True(t, swapped)
	swapped, err = repo.SwapRefreshToken(ctx, created.ID, "r1", "r3")
	require.NoError(t, err)
	assert.False(t, swapped)

	require.NoError(t, repo.SetRefreshToken(ctx, created.ID, ""))
	found, err = repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, found.HasSession())

	name := "Alice Liddell"
	updated, err := repo.UpdateProfile(ctx, created.ID, domain.ProfilePatch{FullName: &name})
	require.NoError(t, err)
	assert.Equal(t, name, updated.FullName)
	assert.Equal(t, "alice@example.com", updated.Email)

	require.NoError(t, audit.InsertEvent(ctx, &domain.AuthEvent{
		Type: domain.EventLogin, UserID: created.ID, OccurredAt: now,
	}))
}
