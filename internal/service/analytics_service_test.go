package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gamezone-be/internal/domain"
)

func newTestAnalytics(t *testing.T) *AnalyticsService {
	store := newTestStore(t)
	return NewAnalyticsService(store, newTestUserRepo(t, store), newTestLogger(t))
}

func TestAnalyticsService_RecordVisit(t *testing.T) {
	svc := newTestAnalytics(t)
	ctx := context.Background()

	base := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }

	require.NoError(t, svc.RecordVisit(ctx))
	require.NoError(t, svc.RecordVisit(ctx))

	stats, err := svc.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.VisitsToday)
	assert.Equal(t, 2, stats.VisitsWeek)
	assert.Equal(t, 2, stats.VisitsAllTime)
}

func TestAnalyticsService_RecordVisit_PrunesOldEntries(t *testing.T) {
	svc := newTestAnalytics(t)
	ctx := context.Background()

	base := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }
	require.NoError(t, svc.RecordVisit(ctx))

	// A visit 31 days later pushes the first one past the retention window.
	svc.now = func() time.Time { return base.Add(31 * 24 * time.Hour) }
	require.NoError(t, svc.RecordVisit(ctx))

	stats, err := svc.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.VisitsAllTime)
}

func TestAnalyticsService_Statistics_WeekWindow(t *testing.T) {
	svc := newTestAnalytics(t)
	ctx := context.Background()

	base := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)

	// One visit eight days ago, one an hour ago.
	svc.now = func() time.Time { return base.Add(-8 * 24 * time.Hour) }
	require.NoError(t, svc.RecordVisit(ctx))
	svc.now = func() time.Time { return base.Add(-time.Hour) }
	require.NoError(t, svc.RecordVisit(ctx))

	svc.now = func() time.Time { return base }
	stats, err := svc.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.VisitsToday)
	assert.Equal(t, 1, stats.VisitsWeek)
	assert.Equal(t, 2, stats.VisitsAllTime)
}

func TestAnalyticsService_RecordGameClick(t *testing.T) {
	svc := newTestAnalytics(t)
	ctx := context.Background()

	require.Error(t, svc.RecordGameClick(ctx, "", nil))

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.RecordGameClick(ctx, "snake", nil))
	}
	require.NoError(t, svc.RecordGameClick(ctx, "tetris", nil))

	stats, err := svc.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, "snake", stats.MostPopular)
	assert.Equal(t, int64(3), stats.MostClicks)
}

func TestAnalyticsService_RecentGames(t *testing.T) {
	svc := newTestAnalytics(t)
	ctx := context.Background()
	sess := &domain.Session{Email: "1234567@lwsd.org", Username: "player"}

	// Anonymous clicks never touch recent lists.
	require.NoError(t, svc.RecordGameClick(ctx, "snake", nil))
	recent, err := svc.RecentGames(ctx, sess.Email)
	require.NoError(t, err)
	assert.Empty(t, recent)

	games := []string{"snake", "tetris", "pong", "breakout", "asteroids", "pacman", "frogger", "galaga"}
	for _, g := range games {
		require.NoError(t, svc.RecordGameClick(ctx, g, sess))
	}

	recent, err = svc.RecentGames(ctx, sess.Email)
	require.NoError(t, err)
	require.Len(t, recent, domain.MaxRecentGames)

	// Newest first, capped at the limit.
	assert.Equal(t, "galaga", recent[0].Name)
	assert.Equal(t, "pong", recent[len(recent)-1].Name)
}

func TestAnalyticsService_MostPopularTieBreak(t *testing.T) {
	svc := newTestAnalytics(t)
	ctx := context.Background()

	require.NoError(t, svc.RecordGameClick(ctx, "zuma", nil))
	require.NoError(t, svc.RecordGameClick(ctx, "asteroids", nil))

	// Equal clicks resolve to the lexicographically smallest name.
	stats, err := svc.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, "asteroids", stats.MostPopular)
	assert.Equal(t, int64(1), stats.MostClicks)
}

func TestAnalyticsService_TopGames(t *testing.T) {
	svc := newTestAnalytics(t)
	ctx := context.Background()

	clicks := map[string]int{"snake": 5, "tetris": 3, "pong": 8, "breakout": 1}
	for game, n := range clicks {
		for i := 0; i < n; i++ {
			require.NoError(t, svc.RecordGameClick(ctx, game, nil))
		}
	}

	top, err := svc.TopGames(ctx, 3)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, domain.GamePlay{Name: "pong", Clicks: 8}, top[0])
	assert.Equal(t, domain.GamePlay{Name: "snake", Clicks: 5}, top[1])
	assert.Equal(t, domain.GamePlay{Name: "tetris", Clicks: 3}, top[2])
}

func TestAnalyticsService_TopGames_Empty(t *testing.T) {
	svc := newTestAnalytics(t)

	top, err := svc.TopGames(context.Background(), 3)
	require.NoError(t, err)
	assert.Empty(t, top)
}

func TestAnalyticsService_ResetAll(t *testing.T) {
	store := newTestStore(t)
	users := newTestUserRepo(t, store)
	svc := NewAnalyticsService(store, users, newTestLogger(t))
	ctx := context.Background()

	user := &domain.User{Username: "player", Email: "1234567@lwsd.org"}
	require.NoError(t, users.SaveUser(ctx, user))

	sess := &domain.Session{Email: user.Email, Username: user.Username}
	require.NoError(t, svc.RecordVisit(ctx))
	require.NoError(t, svc.RecordGameClick(ctx, "snake", sess))

	require.NoError(t, svc.ResetAll(ctx))

	stats, err := svc.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.VisitsAllTime)
	assert.Equal(t, "", stats.MostPopular)

	recent, err := svc.RecentGames(ctx, user.Email)
	require.NoError(t, err)
	assert.Empty(t, recent)
}
