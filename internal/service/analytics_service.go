package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"gamezone-be/internal/domain"
	"gamezone-be/internal/repository"
	"gamezone-be/internal/storage"
	"gamezone-be/pkg/logger"
)

const (
	visitRetention = 30 * 24 * time.Hour
	weekWindow     = 7 * 24 * time.Hour
)

// AnalyticsService maintains the visit log, per-game click counters and
// per-user recent-games lists, and derives the statistics views from them.
// Everything is read-modify-write through the key-value store; two rapid
// concurrent updates can lose one of them (last write wins). That matches
// the consistency the portal has always offered.
type AnalyticsService struct {
	store storage.Store
	users *repository.UserRepository
	log   *logger.Logger

	now func() time.Time
}

// NewAnalyticsService creates a new analytics service.
func NewAnalyticsService(store storage.Store, users *repository.UserRepository, log *logger.Logger) *AnalyticsService {
	return &AnalyticsService{
		store: store,
		users: users,
		log:   log,
		now:   time.Now,
	}
}

// RecordVisit appends the current timestamp to the visit log and prunes
// entries older than 30 days relative to the new entry. Each call adds one
// entry; visits are not deduplicated per session.
func (s *AnalyticsService) RecordVisit(ctx context.Context) error {
	nowMs := s.now().UnixMilli()

	stats, err := s.visitStats(ctx)
	if err != nil {
		return err
	}

	stats.Visits = append(stats.Visits, nowMs)
	stats.LastVisit = &nowMs

	cutoff := nowMs - visitRetention.Milliseconds()
	kept := stats.Visits[:0]
	for _, v := range stats.Visits {
		if v > cutoff {
			kept = append(kept, v)
		}
	}
	stats.Visits = kept

	return s.writeJSON(ctx, storage.KeyVisitStats, stats)
}

// RecordGameClick increments the click counter for a game and, for an
// authenticated session, prepends the game to that user's recent list.
func (s *AnalyticsService) RecordGameClick(ctx context.Context, gameName string, sess *domain.Session) error {
	if gameName == "" {
		return appErrValidation("Game name is required.")
	}

	stats, err := s.gameStats(ctx)
	if err != nil {
		return err
	}
	stats[gameName]++

	if err := s.writeJSON(ctx, storage.KeyGameStats, stats); err != nil {
		return err
	}

	if sess == nil || sess.Email == "" {
		return nil
	}
	return s.prependRecentGame(ctx, sess.Email, gameName)
}

func (s *AnalyticsService) prependRecentGame(ctx context.Context, email, gameName string) error {
	recent, err := s.RecentGames(ctx, email)
	if err != nil {
		return err
	}

	recent = append([]domain.RecentGame{{
		Name:      gameName,
		Timestamp: s.now().UnixMilli(),
	}}, recent...)
	if len(recent) > domain.MaxRecentGames {
		recent = recent[:domain.MaxRecentGames]
	}

	return s.writeJSON(ctx, storage.RecentGamesKey(email), recent)
}

// RecentGames returns a user's recent-games list, newest first.
func (s *AnalyticsService) RecentGames(ctx context.Context, email string) ([]domain.RecentGame, error) {
	var recent []domain.RecentGame
	if err := s.readJSON(ctx, storage.RecentGamesKey(email), &recent); err != nil {
		return nil, err
	}
	return recent, nil
}

// Statistics derives the visit counters and the most-played game. The
// "today" boundary is local midnight; the week window is rolling. Ties for
// most-played resolve to the lexicographically smallest name so the result
// is deterministic.
func (s *AnalyticsService) Statistics(ctx context.Context) (*domain.Statistics, error) {
	visits, err := s.visitStats(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).UnixMilli()
	weekStart := now.UnixMilli() - weekWindow.Milliseconds()

	result := &domain.Statistics{VisitsAllTime: len(visits.Visits)}
	for _, v := range visits.Visits {
		if v >= todayStart {
			result.VisitsToday++
		}
		if v >= weekStart {
			result.VisitsWeek++
		}
	}

	games, err := s.gameStats(ctx)
	if err != nil {
		return nil, err
	}
	for _, game := range sortedGameNames(games) {
		if games[game] > result.MostClicks {
			result.MostClicks = games[game]
			result.MostPopular = game
		}
	}

	return result, nil
}

// TopGames returns the n most-played games, most clicks first. Used by the
// maintenance page while the site is shut down.
func (s *AnalyticsService) TopGames(ctx context.Context, n int) ([]domain.GamePlay, error) {
	games, err := s.gameStats(ctx)
	if err != nil {
		return nil, err
	}

	ranked := make([]domain.GamePlay, 0, len(games))
	for _, name := range sortedGameNames(games) {
		ranked = append(ranked, domain.GamePlay{Name: name, Clicks: games[name]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Clicks > ranked[j].Clicks
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked, nil
}

// ResetAll clears the visit log, the game counters and every user's recent
// list. This spans many keys with no atomicity; a failure partway leaves the
// earlier writes in place, and the returned error says how far it got.
func (s *AnalyticsService) ResetAll(ctx context.Context) error {
	if err := s.writeJSON(ctx, storage.KeyVisitStats, domain.VisitStats{Visits: []int64{}}); err != nil {
		return fmt.Errorf("reset aborted before clearing game stats: %w", err)
	}
	if err := s.writeJSON(ctx, storage.KeyGameStats, domain.GameStats{}); err != nil {
		return fmt.Errorf("reset cleared visits only: %w", err)
	}

	var failed int
	for _, user := range s.users.ListUsers(ctx) {
		if err := s.writeJSON(ctx, storage.RecentGamesKey(user.Email), []domain.RecentGame{}); err != nil {
			failed++
			s.log.WithError(err).WithField("email", user.Email).Warn("Failed to clear recent games")
		}
	}
	if failed > 0 {
		return fmt.Errorf("reset left %d recent-games lists uncleared", failed)
	}

	s.log.Info("Statistics reset")
	return nil
}

func (s *AnalyticsService) visitStats(ctx context.Context) (domain.VisitStats, error) {
	stats := domain.VisitStats{Visits: []int64{}}
	if err := s.readJSON(ctx, storage.KeyVisitStats, &stats); err != nil {
		return stats, err
	}
	return stats, nil
}

func (s *AnalyticsService) gameStats(ctx context.Context) (domain.GameStats, error) {
	stats := domain.GameStats{}
	if err := s.readJSON(ctx, storage.KeyGameStats, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// readJSON decodes the blob under key into v, leaving v untouched on a miss.
func (s *AnalyticsService) readJSON(ctx context.Context, key string, v interface{}) error {
	raw, err := s.store.Get(ctx, key, storage.ScopeShared)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", key, err)
	}
	if err := domain.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}

func (s *AnalyticsService) writeJSON(ctx context.Context, key string, v interface{}) error {
	raw, err := domain.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := s.store.Set(ctx, key, string(raw), storage.ScopeShared); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func sortedGameNames(games domain.GameStats) []string {
	names := make([]string, 0, len(games))
	for name := range games {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
