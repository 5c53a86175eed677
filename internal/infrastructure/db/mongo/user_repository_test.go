package mongo

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/videotube/user-service/internal/core/domain"
)

func TestUserRepository_RejectsMalformedIDs(t *testing.T) {
	repo := &UserRepository{}
	ctx := context.Background()

	_, err := repo.FindByID(ctx, "not-an-object-id")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = repo.UpdateProfile(ctx, "not-an-object-id", domain.ProfilePatch{})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, repo.SetRefreshToken(ctx, "not-an-object-id", ""), domain.ErrNotFound)

	swapped, err := repo.SwapRefreshToken(ctx, "not-an-object-id", "a", "b")
	require.NoError(t, err)
	assert.False(t, swapped)
}

// Runs against a real server when USER_SERVICE_TEST_MONGO_URI is set.
func TestUserRepository_Mongo(t *testing.T) {
	uri := os.Getenv("USER_SERVICE_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("USER_SERVICE_TEST_MONGO_URI not set")
	}
	ctx := context.Background()

	dbName := fmt.Sprintf("user_service_test_%d", time.Now().UnixNano())
	client, repo, audit, err := Open(ctx, Config{URI: uri, Database: dbName})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = client.Database(dbName).Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})

	require.NoError(t, repo.Ping(ctx))

	now := time.Now().UTC()
	created, err := repo.Create(ctx, &domain.User{
		Username: "alice", Email: "alice@example.com", FullName: "Alice",
		AvatarURL: "https://media.example.com/a.png", PasswordHash: "hash",
		CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	bob, err := repo.Create(ctx, &domain.User{
		Username: "bob", Email: "bob@example.com", FullName: "Bob",
		PasswordHash: "hash", CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)

	t.Run("duplicate username or email conflicts", func(t *testing.T) {
		_, err := repo.Create(ctx, &domain.User{Username: "alice", Email: "other@example.com", CreatedAt: now, UpdatedAt: now})
		assert.ErrorIs(t, err, domain.ErrConflict)
		_, err = repo.Create(ctx, &domain.User{Username: "other", Email: "alice@example.com", CreatedAt: now, UpdatedAt: now})
		assert.ErrorIs(t, err, domain.ErrConflict)

		taken := "bob@example.com"
		_, err = repo.UpdateProfile(ctx, created.ID, domain.ProfilePatch{Email: &taken})
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("lookup by username or email", func(t *testing.T) {
		found, err := repo.FindByUsernameOrEmail(ctx, "", "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, created.ID, found.ID)

		found, err = repo.FindByUsernameOrEmail(ctx, "bob", "")
		require.NoError(t, err)
		assert.Equal(t, bob.ID, found.ID)

		_, err = repo.FindByUsernameOrEmail(ctx, "nobody", "nobody@example.com")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("refresh token swap is conditional", func(t *testing.T) {
		require.NoError(t, repo.SetRefreshToken(ctx, created.ID, "r1"))

		swapped, err := repo.SwapRefreshToken(ctx, created.ID, "r1", "r2")
		require.NoError(t, err)
		assert.True(t, swapped)

		swapped, err = repo.SwapRefreshToken(ctx, created.ID, "r1", "r3")
		require.NoError(t, err)
		assert.False(t, swapped)

		found, err := repo.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "r2", found.RefreshToken)
	})

	t.Run("clearing the token unsets it", func(t *testing.T) {
		require.NoError(t, repo.SetRefreshToken(ctx, created.ID, ""))
		found, err := repo.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.False(t, found.HasSession())

		swapped, err := repo.SwapRefreshToken(ctx, created.ID, "", "r4")
		require.NoError(t, err)
		assert.False(t, swapped)
	})

	t.Run("profile patch and password", func(t *testing.T) {
		name := "Alice Liddell"
		updated, err := repo.UpdateProfile(ctx, created.ID, domain.ProfilePatch{FullName: &name})
		require.NoError(t, err)
		assert.Equal(t, name, updated.FullName)
		assert.Equal(t, "alice@example.com", updated.Email)

		require.NoError(t, repo.SetPasswordHash(ctx, created.ID, "new-hash"))
		found, err := repo.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "new-hash", found.PasswordHash)
	})

	t.Run("missing user", func(t *testing.T) {
		const missing = "000000000000000000000000"
		_, err := repo.FindByID(ctx, missing)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.ErrorIs(t, repo.SetRefreshToken(ctx, missing, "x"), domain.ErrNotFound)
	})

	require.NoError(t, audit.InsertEvent(ctx, &domain.AuthEvent{
		Type: domain.EventLogin, UserID: created.ID, OccurredAt: now,
	}))
}
