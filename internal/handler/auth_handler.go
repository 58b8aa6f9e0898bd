package handler

import (
	"net/http"
	"time"

	"gamezone-be/internal/domain"
	"gamezone-be/internal/fingerprint"
	"gamezone-be/internal/middleware"
	"gamezone-be/internal/service"
	"gamezone-be/pkg/errors"
	"gamezone-be/pkg/logger"
)

// AuthHandler serves registration, login and the account endpoints.
type AuthHandler struct {
	auth         *service.AuthService
	fingerprints fingerprint.Provider
	log          *logger.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(auth *service.AuthService, fingerprints fingerprint.Provider, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		auth:         auth,
		fingerprints: fingerprints,
		log:          log,
	}
}

// userView is the account shape returned to clients. The stored password
// hash never leaves the server.
type userView struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	IsAdmin   bool   `json:"isAdmin"`
	CreatedAt string `json:"createdAt"`
	Verified  bool   `json:"verified"`
}

func newUserView(u *domain.User) userView {
	return userView{
		Username:  u.Username,
		Email:     u.Email,
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt,
		Verified:  u.Verified,
	}
}

type sessionResponse struct {
	User      userView `json:"user"`
	Token     string   `json:"token"`
	ExpiresAt string   `json:"expiresAt"`
}

func newSessionResponse(result *service.LoginResult) sessionResponse {
	return sessionResponse{
		User:      newUserView(result.User),
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt.UTC().Format(time.RFC3339),
	}
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err, h.log)
		return
	}

	user, err := h.auth.Register(r.Context(), service.RegisterRequest{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		Fingerprint: h.fingerprints.Fingerprint(r),
	})
	if err != nil {
		writeError(w, err, h.log)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"user":    newUserView(user),
		"message": "Account created! Please verify your email before logging in.",
	}, h.log)
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LoginID  string `json:"loginId"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err, h.log)
		return
	}

	result, err := h.auth.Login(r.Context(), req.LoginID, req.Password)
	if err != nil {
		writeError(w, err, h.log)
		return
	}

	writeJSON(w, http.StatusOK, newSessionResponse(result), h.log)
}

// AutoLogin handles POST /api/auth/auto-login
func (h *AuthHandler) AutoLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err, h.log)
		return
	}

	result, err := h.auth.AutoLogin(r.Context(), req.Token)
	if err != nil {
		writeError(w, err, h.log)
		return
	}

	writeJSON(w, http.StatusOK, newSessionResponse(result), h.log)
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFrom(r.Context())
	if sess == nil {
		writeError(w, errors.NewAuthenticationError("Not logged in."), h.log)
		return
	}

	h.auth.Logout(r.Context(), sess.Email)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out."}, h.log)
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFrom(r.Context())
	if sess == nil {
		writeError(w, errors.NewAuthenticationError("Not logged in."), h.log)
		return
	}

	writeJSON(w, http.StatusOK, sess, h.log)
}

// VerifyEmail handles POST /api/auth/verify-email
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFrom(r.Context())
	if sess == nil {
		writeError(w, errors.NewAuthenticationError("Not logged in."), h.log)
		return
	}

	user, err := h.auth.VerifyEmail(r.Context(), sess.Email)
	if err != nil {
		writeError(w, err, h.log)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user":    newUserView(user),
		"message": "Email verified!",
	}, h.log)
}

// ResendVerification handles POST /api/auth/resend-verification
func (h *AuthHandler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err, h.log)
		return
	}

	if err := h.auth.ResendVerification(r.Context(), req.Email); err != nil {
		writeError(w, err, h.log)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Verification email sent! Check your inbox.",
	}, h.log)
}

// PasswordReset handles POST /api/auth/password-reset
func (h *AuthHandler) PasswordReset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err, h.log)
		return
	}

	if err := h.auth.SendPasswordReset(r.Context(), req.Email); err != nil {
		writeError(w, err, h.log)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Password reset email sent! Check your inbox.",
	}, h.log)
}
