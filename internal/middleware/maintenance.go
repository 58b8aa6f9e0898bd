package middleware

import (
	"net/http"
	"strings"

	"gamezone-be/internal/domain"
	"gamezone-be/internal/service"
	"gamezone-be/pkg/logger"
)

// maintenanceResponse is the 503 payload served while the site is shut
// down: the flag plus the top-played games, the one thing the maintenance
// page still shows.
type maintenanceResponse struct {
	Maintenance bool              `json:"maintenance"`
	Message     string            `json:"message"`
	TopGames    []domain.GamePlay `json:"topGames"`
}

// Maintenance gates the whole API behind the shutdown flag. While active,
// every route except health and the maintenance info endpoint is suppressed
// for everyone but an admin who is not previewing the standard view.
func Maintenance(shutdown *service.ShutdownService, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if exemptFromMaintenance(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			active, err := shutdown.IsActive(r.Context())
			if err != nil {
				// A flag read failure must not take the live site down.
				log.WithError(err).Warn("Failed to read shutdown flag, serving request")
				next.ServeHTTP(w, r)
				return
			}
			if !active {
				next.ServeHTTP(w, r)
				return
			}

			if sess := SessionFrom(r.Context()); sess.Elevated() {
				next.ServeHTTP(w, r)
				return
			}

			info, err := shutdown.Info(r.Context())
			resp := maintenanceResponse{
				Maintenance: true,
				Message:     "The site is down for maintenance. Check back soon!",
			}
			if err == nil {
				resp.TopGames = info.TopGames
			}

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			if body, err := domainMarshal(resp); err == nil {
				w.Write(body)
			}
		})
	}
}

func exemptFromMaintenance(path string) bool {
	if path == "/health" || path == "/api/maintenance" {
		return true
	}
	// Login and auto-login stay reachable so an admin can get in and lift
	// the shutdown.
	return strings.HasPrefix(path, "/api/auth/")
}
