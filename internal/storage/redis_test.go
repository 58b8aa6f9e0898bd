package storage

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *RedisStore) {
	// Create a miniredis server
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	store, err := NewRedisStore("redis://"+mr.Addr(), "test", zap.NewNop())
	require.NoError(t, err)

	return mr, store
}

func TestNewRedisStore(t *testing.T) {
	tests := []struct {
		name        string
		url         string
		expectError bool
	}{
		{
			name:        "Invalid URL",
			url:         "invalid://url",
			expectError: true,
		},
		{
			name:        "Empty URL",
			url:         "",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := NewRedisStore(tt.url, "test", zap.NewNop())

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, store)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, store)
			}
		})
	}
}

func TestRedisStore_GetSet(t *testing.T) {
	mr, store := setupTestRedis(t)
	ctx := context.Background()

	// Missing key returns ErrNotFound
	_, err := store.Get(ctx, KeyVisitStats, ScopeShared)
	assert.ErrorIs(t, err, ErrNotFound)

	// Round trip
	require.NoError(t, store.Set(ctx, KeyVisitStats, `{"visits":[]}`, ScopeShared))
	val, err := store.Get(ctx, KeyVisitStats, ScopeShared)
	require.NoError(t, err)
	assert.Equal(t, `{"visits":[]}`, val)

	// The stored key is namespaced per environment and scope
	raw, err := mr.Get("staging:shared:visit_stats")
	require.NoError(t, err)
	assert.Equal(t, `{"visits":[]}`, raw)

	// Values persist without expiry
	assert.Equal(t, int64(0), int64(mr.TTL("staging:shared:visit_stats")))
}

func TestRedisStore_ScopeIsolation(t *testing.T) {
	_, store := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "settings", "shared-value", ScopeShared))
	require.NoError(t, store.Set(ctx, "settings", "private-value", ScopePrivate))

	shared, err := store.Get(ctx, "settings", ScopeShared)
	require.NoError(t, err)
	assert.Equal(t, "shared-value", shared)

	private, err := store.Get(ctx, "settings", ScopePrivate)
	require.NoError(t, err)
	assert.Equal(t, "private-value", private)
}

func TestRedisStore_Delete(t *testing.T) {
	_, store := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, KeySiteShutdown, "true", ScopeShared))
	require.NoError(t, store.Delete(ctx, KeySiteShutdown, ScopeShared))

	_, err := store.Get(ctx, KeySiteShutdown, ScopeShared)
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting a missing key is not an error
	assert.NoError(t, store.Delete(ctx, KeySiteShutdown, ScopeShared))
}

func TestRedisStore_List(t *testing.T) {
	_, store := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, UserKey("a@lwsd.org"), "{}", ScopeShared))
	require.NoError(t, store.Set(ctx, UserKey("b@lwsd.org"), "{}", ScopeShared))
	require.NoError(t, store.Set(ctx, RecentGamesKey("a@lwsd.org"), "[]", ScopeShared))

	keys, err := store.List(ctx, UserKeyPrefix, ScopeShared)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"user:a@lwsd.org", "user:b@lwsd.org"}, keys)

	// Empty prefix space
	keys, err = store.List(ctx, FingerprintKeyPrefix, ScopeShared)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestRedisStore_Health(t *testing.T) {
	mr, store := setupTestRedis(t)
	ctx := context.Background()

	assert.NoError(t, store.Health(ctx))

	mr.Close()
	assert.Error(t, store.Health(ctx))
}
