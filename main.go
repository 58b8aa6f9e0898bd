package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"gamezone-be/internal/config"
	"gamezone-be/internal/container"
	"gamezone-be/internal/handler"
	"gamezone-be/internal/middleware"
	"gamezone-be/pkg/logger"
)

// Resources holds all resources that need cleanup
type Resources struct {
	container *container.Container
	server    *http.Server
	log       *logger.Logger
	mu        sync.Mutex
	closed    bool
}

// Cleanup gracefully closes all resources
func (r *Resources) Cleanup(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	r.log.Info("Starting graceful shutdown...")

	// Shutdown HTTP server first to stop accepting new requests
	var shutdownErr error
	if r.server != nil {
		if err := r.server.Shutdown(ctx); err != nil {
			r.log.WithError(err).Error("Failed to shutdown HTTP server")
			shutdownErr = fmt.Errorf("HTTP server shutdown: %w", err)
		} else {
			r.log.Info("HTTP server shutdown complete")
		}
	}

	if r.container != nil {
		r.container.Close()
	}

	if shutdownErr != nil {
		return shutdownErr
	}
	r.log.Info("Graceful shutdown completed successfully")
	return nil
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	log.WithFields(map[string]interface{}{
		"port":          cfg.Port,
		"log_level":     cfg.LogLevel,
		"environment":   cfg.Environment,
		"store_backend": cfg.StoreBackend,
	}).Info("Starting gamezone server")

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be configured")
	}

	// Create dependency injection container
	ctx := context.Background()
	c, err := container.New(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to create container")
	}

	// Setup router
	router := setupRouter(c)

	server := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        router,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   60 * time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1MB max header size
	}

	// Create resources manager for cleanup
	resources := &Resources{
		container: c,
		server:    server,
		log:       log,
	}

	// Setup graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)

	defer func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := resources.Cleanup(cleanupCtx); err != nil {
			log.WithError(err).Error("Cleanup completed with errors")
		}
	}()

	// Start server in a goroutine
	serverErrChan := make(chan error, 1)
	go func() {
		log.Info("Server starting on port " + cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("Server error occurred")
			serverErrChan <- err
		}
	}()

	// Wait for interrupt signal or server error
	select {
	case sig := <-quit:
		log.WithField("signal", sig.String()).Info("Received shutdown signal")
	case err := <-serverErrChan:
		log.WithError(err).Error("Server failed, initiating shutdown")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()

	if err := resources.Cleanup(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown completed with errors")
		os.Exit(1)
	}

	log.Info("Application shutdown complete")
}

// setupRouter configures and returns the HTTP router
func setupRouter(c *container.Container) *chi.Mux {
	cfg := c.Config
	log := c.Logger

	r := chi.NewRouter()

	// Setup CORS middleware
	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowedOrigins = cfg.AllowedOrigins

	// Setup middlewares. OptionalAuth runs before the maintenance gate so the
	// gate can tell admins from everyone else.
	r.Use(middleware.CORS(corsConfig, log))
	r.Use(middleware.RequestID(log))
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Compress(5))
	r.Use(chiMiddleware.Timeout(60 * time.Second))
	r.Use(middleware.OptionalAuth(c.Sessions, log))
	r.Use(middleware.Maintenance(c.Shutdown, log))

	// Create handlers
	healthHandler := handler.NewHealthHandler(log)
	authHandler := handler.NewAuthHandler(c.Auth, c.Fingerprints, log)
	portalHandler := handler.NewPortalHandler(c.Analytics, c.Announcements, c.Shutdown, log)
	adminHandler := handler.NewAdminHandler(c.Announcements, c.Analytics, c.Auth, c.Shutdown, log)

	// Health check (no auth required)
	r.Get("/health", healthHandler.Check)

	r.Route("/api", func(r chi.Router) {
		// Maintenance info (served while the site is shut down)
		r.Get("/maintenance", portalHandler.Maintenance)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/auto-login", authHandler.AutoLogin)
			r.Post("/resend-verification", authHandler.ResendVerification)
			r.Post("/password-reset", authHandler.PasswordReset)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(c.Sessions, log))

				r.Get("/me", authHandler.Me)
				r.Post("/logout", authHandler.Logout)
				r.Post("/verify-email", authHandler.VerifyEmail)
			})
		})

		r.Route("/portal", func(r chi.Router) {
			r.Get("/statistics", portalHandler.Statistics)
			r.Get("/announcements", portalHandler.Announcements)
			r.Post("/games/click", portalHandler.GameClick)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(c.Sessions, log))

				r.Get("/games/recent", portalHandler.RecentGames)
			})
		})

		// Admin routes (require admin session)
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.Auth(c.Sessions, log))
			r.Use(middleware.RequireAdmin(log))

			r.Post("/announcements", adminHandler.CreateAnnouncement)
			r.Put("/announcements/{id}", adminHandler.UpdateAnnouncement)
			r.Delete("/announcements/{id}", adminHandler.DeleteAnnouncement)

			r.Get("/users", adminHandler.ListUsers)
			r.Delete("/users/{email}", adminHandler.KickUser)

			r.Put("/shutdown", adminHandler.SetShutdown)
			r.Post("/statistics/reset", adminHandler.ResetStatistics)
		})
	})

	// 404 handler
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":{"type":"not_found","message":"Endpoint not found"}}`))
	})

	log.Info("Router configured successfully")
	return r
}
