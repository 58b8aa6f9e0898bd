package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gamezone-be/internal/domain"
	"gamezone-be/internal/storage"
	"gamezone-be/pkg/logger"
)

const configuredAdmin = "admin@example.com"

func newTestRepo(t *testing.T) *UserRepository {
	store, err := storage.NewLocalStore(filepath.Join(t.TempDir(), "store"), "test", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	log, err := logger.New("error")
	require.NoError(t, err)

	return NewUserRepository(store, configuredAdmin, log)
}

func TestUserRepository_GetUser_Missing(t *testing.T) {
	repo := newTestRepo(t)

	user, err := repo.GetUser(context.Background(), "nobody@lwsd.org")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestUserRepository_SaveAndGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user := &domain.User{
		Username:     "player",
		Email:        "1234567@lwsd.org",
		PasswordHash: "$2a$10$hash",
		CreatedAt:    "2025-03-10T15:00:00Z",
		Verified:     true,
		Fingerprint:  "fp_device1",
	}
	require.NoError(t, repo.SaveUser(ctx, user))

	got, err := repo.GetUser(ctx, user.Email)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, user, got)
}

func TestUserRepository_DeleteUser(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user := &domain.User{Username: "player", Email: "1234567@lwsd.org"}
	require.NoError(t, repo.SaveUser(ctx, user))
	require.NoError(t, repo.DeleteUser(ctx, user.Email))

	got, err := repo.GetUser(ctx, user.Email)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUserRepository_ListUsers(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	assert.Empty(t, repo.ListUsers(ctx))

	require.NoError(t, repo.SaveUser(ctx, &domain.User{Username: "a", Email: "1111111@lwsd.org"}))
	require.NoError(t, repo.SaveUser(ctx, &domain.User{Username: "b", Email: "2222222@lwsd.org"}))

	users := repo.ListUsers(ctx)
	require.Len(t, users, 2)
}

func TestUserRepository_FindByUsername(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveUser(ctx, &domain.User{Username: "CoolPlayer", Email: "1234567@lwsd.org"}))

	tests := []struct {
		name     string
		username string
		found    bool
	}{
		{
			name:     "Exact match",
			username: "CoolPlayer",
			found:    true,
		},
		{
			name:     "Case-insensitive match",
			username: "coolplayer",
			found:    true,
		},
		{
			name:     "No match",
			username: "stranger",
			found:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := repo.FindByUsername(ctx, tt.username)
			require.NoError(t, err)

			if tt.found {
				require.NotNil(t, user)
				assert.Equal(t, "1234567@lwsd.org", user.Email)
			} else {
				assert.Nil(t, user)
			}
		})
	}
}

func TestUserRepository_Fingerprints(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	email, err := repo.EmailByFingerprint(ctx, "fp_device1")
	require.NoError(t, err)
	assert.Empty(t, email)

	require.NoError(t, repo.BindFingerprint(ctx, "fp_device1", "1234567@lwsd.org"))

	email, err = repo.EmailByFingerprint(ctx, "fp_device1")
	require.NoError(t, err)
	assert.Equal(t, "1234567@lwsd.org", email)

	require.NoError(t, repo.UnbindFingerprint(ctx, "fp_device1"))
	email, err = repo.EmailByFingerprint(ctx, "fp_device1")
	require.NoError(t, err)
	assert.Empty(t, email)

	// Unbinding an empty fingerprint is a no-op
	assert.NoError(t, repo.UnbindFingerprint(ctx, ""))
}

func TestUserRepository_AdminEmail(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	// First call seeds the configured value.
	assert.Equal(t, configuredAdmin, repo.AdminEmail(ctx))
	// Subsequent calls read the stored value.
	assert.Equal(t, configuredAdmin, repo.AdminEmail(ctx))
}
