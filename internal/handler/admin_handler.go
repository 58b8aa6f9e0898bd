package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"gamezone-be/internal/middleware"
	"gamezone-be/internal/service"
	"gamezone-be/pkg/logger"
)

// AdminHandler serves the admin-only endpoints: announcement management,
// user management, the shutdown toggle and the statistics reset.
type AdminHandler struct {
	announcements *service.AnnouncementService
	analytics     *service.AnalyticsService
	auth          *service.AuthService
	shutdown      *service.ShutdownService
	log           *logger.Logger
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(
	announcements *service.AnnouncementService,
	analytics *service.AnalyticsService,
	auth *service.AuthService,
	shutdown *service.ShutdownService,
	log *logger.Logger,
) *AdminHandler {
	return &AdminHandler{
		announcements: announcements,
		analytics:     analytics,
		auth:          auth,
		shutdown:      shutdown,
		log:           log,
	}
}

// CreateAnnouncement handles POST /api/admin/announcements
func (h *AdminHandler) CreateAnnouncement(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err, h.log)
		return
	}

	sess := middleware.SessionFrom(r.Context())
	entry, err := h.announcements.Create(r.Context(), req.Title, req.Content, sess.Username)
	if err != nil {
		writeError(w, err, h.log)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"announcement": entry}, h.log)
}

// UpdateAnnouncement handles PUT /api/admin/announcements/{id}
func (h *AdminHandler) UpdateAnnouncement(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err, h.log)
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.announcements.Update(r.Context(), id, req.Title, req.Content); err != nil {
		writeError(w, err, h.log)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Announcement updated."}, h.log)
}

// DeleteAnnouncement handles DELETE /api/admin/announcements/{id}
func (h *AdminHandler) DeleteAnnouncement(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.announcements.Delete(r.Context(), id); err != nil {
		writeError(w, err, h.log)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Announcement deleted."}, h.log)
}

// ListUsers handles GET /api/admin/users
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users := h.auth.ListUsers(r.Context())

	views := make([]userView, 0, len(users))
	for _, u := range users {
		views = append(views, newUserView(u))
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"users": views}, h.log)
}

// KickUser handles DELETE /api/admin/users/{email}
func (h *AdminHandler) KickUser(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	if err := h.auth.KickUser(r.Context(), email); err != nil {
		writeError(w, err, h.log)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "User kicked."}, h.log)
}

// SetShutdown handles PUT /api/admin/shutdown
func (h *AdminHandler) SetShutdown(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Active bool `json:"active"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err, h.log)
		return
	}

	sess := middleware.SessionFrom(r.Context())
	if err := h.shutdown.SetActive(r.Context(), sess, req.Active); err != nil {
		writeError(w, err, h.log)
		return
	}

	message := "Site is now live."
	if req.Active {
		message = "Site shut down for maintenance."
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": message}, h.log)
}

// ResetStatistics handles POST /api/admin/statistics/reset
func (h *AdminHandler) ResetStatistics(w http.ResponseWriter, r *http.Request) {
	if err := h.analytics.ResetAll(r.Context()); err != nil {
		writeError(w, err, h.log)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Statistics reset."}, h.log)
}
