package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"gamezone-be/internal/domain"
	"gamezone-be/internal/service"
	"gamezone-be/pkg/errors"
	"gamezone-be/pkg/logger"
)

// ContextKey represents keys used in request context
type ContextKey string

const (
	// SessionContextKey is the key for the session in context
	SessionContextKey ContextKey = "session"

	// RequestIDContextKey is the key for the request ID in context
	RequestIDContextKey ContextKey = "request_id"
)

// PreviewHeader lets an admin view the portal as a standard user would.
// The header is ignored for non-admin sessions.
const PreviewHeader = "X-Preview-Mode"

// SessionFrom returns the session carried in the context, or nil for an
// unauthenticated request.
func SessionFrom(ctx context.Context) *domain.Session {
	sess, _ := ctx.Value(SessionContextKey).(*domain.Session)
	return sess
}

// Auth creates an authentication middleware that requires a valid session
// token.
func Auth(sessions *service.SessionService, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, appErr := sessionFromRequest(sessions, r)
			if appErr != nil {
				writeErrorResponse(w, appErr, log)
				return
			}

			ctx := context.WithValue(r.Context(), SessionContextKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth validates a session token when one is supplied and otherwise
// continues unauthenticated. The maintenance gate runs behind it so it can
// tell admins from everyone else on public routes.
func OptionalAuth(sessions *service.SessionService, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				next.ServeHTTP(w, r)
				return
			}

			sess, appErr := sessionFromRequest(sessions, r)
			if appErr != nil {
				writeErrorResponse(w, appErr, log)
				return
			}

			ctx := context.WithValue(r.Context(), SessionContextKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects sessions without admin capability. Previewing admins
// keep their elevated writes here; only the shutdown toggle cares about
// preview mode.
func RequireAdmin(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := SessionFrom(r.Context())
			if sess == nil || !sess.Admin {
				writeErrorResponse(w, errors.NewAuthorizationError("Admin access required!"), log)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func sessionFromRequest(sessions *service.SessionService, r *http.Request) (*domain.Session, *errors.AppError) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, errors.NewAuthenticationError("Authorization header is required")
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return nil, errors.NewAuthenticationError("Invalid authorization header format")
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == "" {
		return nil, errors.NewAuthenticationError("Token is required")
	}

	sess, err := sessions.Parse(token)
	if err != nil {
		return nil, errors.NewAuthenticationError("Invalid or expired token")
	}

	if sess.Admin && r.Header.Get(PreviewHeader) == "true" {
		sess.Preview = true
	}
	return sess, nil
}

// RequestID creates a middleware that adds a unique request ID to each request
func RequestID(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := generateRequestID()

			ctx := context.WithValue(r.Context(), RequestIDContextKey, requestID)
			r = r.WithContext(ctx)

			w.Header().Set("X-Request-ID", requestID)

			log.WithField("request_id", requestID).Debug("Request started")

			next.ServeHTTP(w, r)
		})
	}
}

// generateRequestID generates a simple request ID
func generateRequestID() string {
	return fmt.Sprintf("%d-%d", time.Now().Unix(), time.Now().Nanosecond())
}

// writeErrorResponse writes an error response to the client
func writeErrorResponse(w http.ResponseWriter, appErr *errors.AppError, log *logger.Logger) {
	log.WithError(appErr).Debug("Request rejected")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode)

	response := &errors.ErrorResponse{}
	response.Error.Type = appErr.Type
	response.Error.Message = appErr.Message
	response.Error.Details = appErr.Details
	response.Error.Timestamp = time.Now().UTC().Format(time.RFC3339)

	body, err := domainMarshal(response)
	if err != nil {
		return
	}
	w.Write(body)
}
