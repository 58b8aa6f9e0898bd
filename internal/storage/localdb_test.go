package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestLocal(t *testing.T) *LocalStore {
	store, err := NewLocalStore(filepath.Join(t.TempDir(), "store"), "test", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store
}

func TestLocalStore_GetSet(t *testing.T) {
	store := setupTestLocal(t)
	ctx := context.Background()

	_, err := store.Get(ctx, KeyGameStats, ScopeShared)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Set(ctx, KeyGameStats, `{"snake":3}`, ScopeShared))
	val, err := store.Get(ctx, KeyGameStats, ScopeShared)
	require.NoError(t, err)
	assert.Equal(t, `{"snake":3}`, val)

	// Overwrite
	require.NoError(t, store.Set(ctx, KeyGameStats, `{"snake":4}`, ScopeShared))
	val, err = store.Get(ctx, KeyGameStats, ScopeShared)
	require.NoError(t, err)
	assert.Equal(t, `{"snake":4}`, val)
}

func TestLocalStore_Delete(t *testing.T) {
	store := setupTestLocal(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, KeyAdminEmail, "admin@example.com", ScopeShared))
	require.NoError(t, store.Delete(ctx, KeyAdminEmail, ScopeShared))

	_, err := store.Get(ctx, KeyAdminEmail, ScopeShared)
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting a missing key is not an error
	assert.NoError(t, store.Delete(ctx, KeyAdminEmail, ScopeShared))
}

func TestLocalStore_List(t *testing.T) {
	store := setupTestLocal(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, UserKey("a@lwsd.org"), "{}", ScopeShared))
	require.NoError(t, store.Set(ctx, UserKey("b@lwsd.org"), "{}", ScopeShared))
	require.NoError(t, store.Set(ctx, KeyVisitStats, "{}", ScopeShared))
	// Same key name in the private scope must not leak into shared listings
	require.NoError(t, store.Set(ctx, UserKey("c@lwsd.org"), "{}", ScopePrivate))

	keys, err := store.List(ctx, UserKeyPrefix, ScopeShared)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"user:a@lwsd.org", "user:b@lwsd.org"}, keys)
}

func TestLocalStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store")
	ctx := context.Background()

	store, err := NewLocalStore(path, "test", zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, KeySiteShutdown, "true", ScopeShared))
	require.NoError(t, store.Close())

	reopened, err := NewLocalStore(path, "test", zap.NewNop())
	require.NoError(t, err)
	defer reopened.Close()

	val, err := reopened.Get(ctx, KeySiteShutdown, ScopeShared)
	require.NoError(t, err)
	assert.Equal(t, "true", val)
}
