package service

import (
	"context"
	"errors"
	"fmt"

	"gamezone-be/internal/domain"
	"gamezone-be/internal/storage"
	"gamezone-be/pkg/logger"
)

// maintenanceTopGames is how many top-played games the maintenance page
// shows.
const maintenanceTopGames = 3

// ShutdownService owns the site-wide maintenance flag. The flag is a single
// persisted boolean: absent or anything but "true" means the site is live.
// Toggling is restricted to an admin who is not previewing the standard
// view, so an admin cannot accidentally lock themselves into the
// maintenance page.
type ShutdownService struct {
	store     storage.Store
	analytics *AnalyticsService
	log       *logger.Logger
}

// MaintenanceInfo is the payload served while the site is shut down.
type MaintenanceInfo struct {
	Active   bool              `json:"active"`
	TopGames []domain.GamePlay `json:"topGames"`
}

// NewShutdownService creates a new shutdown service.
func NewShutdownService(store storage.Store, analytics *AnalyticsService, log *logger.Logger) *ShutdownService {
	return &ShutdownService{
		store:     store,
		analytics: analytics,
		log:       log,
	}
}

// SetActive enables or disables the shutdown. Rejected while the acting
// admin previews the standard view.
func (s *ShutdownService) SetActive(ctx context.Context, sess *domain.Session, active bool) error {
	if sess == nil || !sess.Admin {
		return appErrForbidden("Admin access required!")
	}
	if sess.Preview {
		return appErrForbidden("Shutdown is unavailable in User Mode. Switch to Admin Mode first.")
	}

	value := "false"
	if active {
		value = "true"
	}
	if err := s.store.Set(ctx, storage.KeySiteShutdown, value, storage.ScopeShared); err != nil {
		return appErrWrite("Failed to update shutdown state.", err)
	}

	s.log.WithField("active", active).Info("Site shutdown state changed")
	return nil
}

// IsActive reads the persisted flag. An unset flag means the site is live.
func (s *ShutdownService) IsActive(ctx context.Context) (bool, error) {
	value, err := s.store.Get(ctx, storage.KeySiteShutdown, storage.ScopeShared)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read shutdown flag: %w", err)
	}
	return value == "true", nil
}

// Info returns the current flag plus the top-played games for the
// maintenance page.
func (s *ShutdownService) Info(ctx context.Context) (*MaintenanceInfo, error) {
	active, err := s.IsActive(ctx)
	if err != nil {
		return nil, err
	}

	top, err := s.analytics.TopGames(ctx, maintenanceTopGames)
	if err != nil {
		// The maintenance page is served on a best-effort basis; an empty
		// game list beats a failed page.
		s.log.WithError(err).Warn("Failed to load top games for maintenance page")
		top = nil
	}

	return &MaintenanceInfo{Active: active, TopGames: top}, nil
}
