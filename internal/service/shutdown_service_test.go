package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gamezone-be/internal/domain"
)

func newTestShutdown(t *testing.T) *ShutdownService {
	store := newTestStore(t)
	analytics := NewAnalyticsService(store, newTestUserRepo(t, store), newTestLogger(t))
	return NewShutdownService(store, analytics, newTestLogger(t))
}

func TestShutdownService_SetActive(t *testing.T) {
	svc := newTestShutdown(t)
	ctx := context.Background()
	admin := &domain.Session{Email: testAdminEmail, Admin: true}

	tests := []struct {
		name        string
		sess        *domain.Session
		expectError bool
	}{
		{
			name:        "Admin session",
			sess:        admin,
			expectError: false,
		},
		{
			name:        "No session",
			sess:        nil,
			expectError: true,
		},
		{
			name:        "Standard user",
			sess:        &domain.Session{Email: "1234567@lwsd.org"},
			expectError: true,
		},
		{
			name:        "Admin previewing the standard view",
			sess:        &domain.Session{Email: testAdminEmail, Admin: true, Preview: true},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.SetActive(ctx, tt.sess, true)

			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestShutdownService_IsActive(t *testing.T) {
	svc := newTestShutdown(t)
	ctx := context.Background()
	admin := &domain.Session{Email: testAdminEmail, Admin: true}

	// Unset flag means live
	active, err := svc.IsActive(ctx)
	require.NoError(t, err)
	assert.False(t, active)

	require.NoError(t, svc.SetActive(ctx, admin, true))
	active, err = svc.IsActive(ctx)
	require.NoError(t, err)
	assert.True(t, active)

	require.NoError(t, svc.SetActive(ctx, admin, false))
	active, err = svc.IsActive(ctx)
	require.NoError(t, err)
	assert.False(t, active)
}

func TestShutdownService_Info(t *testing.T) {
	store := newTestStore(t)
	analytics := NewAnalyticsService(store, newTestUserRepo(t, store), newTestLogger(t))
	svc := NewShutdownService(store, analytics, newTestLogger(t))
	ctx := context.Background()

	for _, game := range []string{"snake", "snake", "tetris", "pong", "pong", "pong", "breakout"} {
		require.NoError(t, analytics.RecordGameClick(ctx, game, nil))
	}

	require.NoError(t, svc.SetActive(ctx, &domain.Session{Email: testAdminEmail, Admin: true}, true))

	info, err := svc.Info(ctx)
	require.NoError(t, err)
	assert.True(t, info.Active)
	require.Len(t, info.TopGames, maintenanceTopGames)
	assert.Equal(t, "pong", info.TopGames[0].Name)
	assert.Equal(t, "snake", info.TopGames[1].Name)
	// breakout and tetris tie at one click; ranking is stable on name order
	assert.Equal(t, "breakout", info.TopGames[2].Name)
}
