package container

import (
	"context"
	"fmt"

	"gamezone-be/internal/config"
	"gamezone-be/internal/fingerprint"
	"gamezone-be/internal/identity"
	"gamezone-be/internal/repository"
	"gamezone-be/internal/service"
	"gamezone-be/internal/storage"
	"gamezone-be/pkg/logger"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	Logger *logger.Logger
	Store  storage.Store

	Identity     identity.Provider
	Fingerprints fingerprint.Provider

	Users *repository.UserRepository

	Sessions      *service.SessionService
	Analytics     *service.AnalyticsService
	Announcements *service.AnnouncementService
	Shutdown      *service.ShutdownService
	Auth          *service.AuthService
}

// New creates a new dependency injection container
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Container, error) {
	store, err := newStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	provider, err := newIdentityProvider(ctx, cfg, log)
	if err != nil {
		store.Close()
		return nil, err
	}

	users := repository.NewUserRepository(store, cfg.AdminEmail, log)

	sessions := service.NewSessionService(cfg.JWTSecret)
	analytics := service.NewAnalyticsService(store, users, log)
	announcements := service.NewAnnouncementService(store, log)
	shutdown := service.NewShutdownService(store, analytics, log)

	auth, err := service.NewAuthService(users, analytics, sessions, provider, cfg.StudentEmailPattern, log)
	if err != nil {
		store.Close()
		return nil, err
	}

	return &Container{
		Config:        cfg,
		Logger:        log,
		Store:         store,
		Identity:      provider,
		Fingerprints:  fingerprint.NewRequestHasher(),
		Users:         users,
		Sessions:      sessions,
		Analytics:     analytics,
		Announcements: announcements,
		Shutdown:      shutdown,
		Auth:          auth,
	}, nil
}

// Close releases the container's resources.
func (c *Container) Close() {
	if err := c.Store.Close(); err != nil {
		c.Logger.WithError(err).Warn("Failed to close store")
	}
}

// newStore builds the configured storage backend. The choice is explicit
// configuration, never runtime detection of what happens to be reachable.
func newStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (storage.Store, error) {
	switch cfg.StoreBackend {
	case "redis":
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("STORE_BACKEND=redis requires REDIS_URL")
		}
		return storage.NewRedisStore(cfg.RedisURL, cfg.Environment, log.Logger)
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("STORE_BACKEND=postgres requires DATABASE_URL")
		}
		return storage.NewPostgresStore(ctx, cfg.DatabaseURL, cfg.Environment, log.Logger)
	case "local":
		return storage.NewLocalStore(cfg.LocalStorePath, cfg.Environment, log.Logger)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

func newIdentityProvider(ctx context.Context, cfg *config.Config, log *logger.Logger) (identity.Provider, error) {
	if cfg.IdentityAPIKey == "" {
		log.Info("Identity API key not configured, running in demo mode")
		return identity.NewDisabled(), nil
	}
	return identity.NewGoogleProvider(ctx, cfg.IdentityAPIKey, log.Logger)
}
