package handler

import (
	"net/http"

	"gamezone-be/internal/domain"
	"gamezone-be/internal/middleware"
	"gamezone-be/internal/service"
	"gamezone-be/pkg/errors"
	"gamezone-be/pkg/logger"
)

// PortalHandler serves the public portal endpoints: statistics, the
// announcements board, game clicks and the maintenance info page.
type PortalHandler struct {
	analytics     *service.AnalyticsService
	announcements *service.AnnouncementService
	shutdown      *service.ShutdownService
	log           *logger.Logger
}

// NewPortalHandler creates a new portal handler.
func NewPortalHandler(
	analytics *service.AnalyticsService,
	announcements *service.AnnouncementService,
	shutdown *service.ShutdownService,
	log *logger.Logger,
) *PortalHandler {
	return &PortalHandler{
		analytics:     analytics,
		announcements: announcements,
		shutdown:      shutdown,
		log:           log,
	}
}

// Statistics handles GET /api/portal/statistics
func (h *PortalHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.analytics.Statistics(r.Context())
	if err != nil {
		writeError(w, err, h.log)
		return
	}
	writeJSON(w, http.StatusOK, stats, h.log)
}

// Announcements handles GET /api/portal/announcements
func (h *PortalHandler) Announcements(w http.ResponseWriter, r *http.Request) {
	board, err := h.announcements.List(r.Context())
	if err != nil {
		writeError(w, err, h.log)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"announcements": board}, h.log)
}

// GameClick handles POST /api/portal/games/click
func (h *PortalHandler) GameClick(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Game string `json:"game"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err, h.log)
		return
	}

	sess := middleware.SessionFrom(r.Context())
	if err := h.analytics.RecordGameClick(r.Context(), req.Game, sess); err != nil {
		writeError(w, err, h.log)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Recorded."}, h.log)
}

// RecentGames handles GET /api/portal/games/recent
func (h *PortalHandler) RecentGames(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFrom(r.Context())
	if sess == nil {
		writeError(w, errors.NewAuthenticationError("Not logged in."), h.log)
		return
	}

	recent, err := h.analytics.RecentGames(r.Context(), sess.Email)
	if err != nil {
		writeError(w, err, h.log)
		return
	}
	if recent == nil {
		recent = []domain.RecentGame{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"games": recent}, h.log)
}

// Maintenance handles GET /api/maintenance
func (h *PortalHandler) Maintenance(w http.ResponseWriter, r *http.Request) {
	info, err := h.shutdown.Info(r.Context())
	if err != nil {
		writeError(w, err, h.log)
		return
	}
	writeJSON(w, http.StatusOK, info, h.log)
}
