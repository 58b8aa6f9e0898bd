package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"gamezone-be/internal/domain"
)

const sessionIssuer = "gamezone-portal"

// SessionService issues and validates the signed session tokens the portal
// hands out on login and auto-login.
type SessionService struct {
	secret []byte
	now    func() time.Time
}

// NewSessionService creates a new session service.
func NewSessionService(secret string) *SessionService {
	return &SessionService{
		secret: []byte(secret),
		now:    time.Now,
	}
}

// Issue creates a session token for the user, valid for 24 hours.
func (s *SessionService) Issue(user *domain.User) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(24 * time.Hour)

	claims := jwt.MapClaims{
		"email":    user.Email,
		"username": user.Username,
		"admin":    user.IsAdmin,
		"exp":      expiresAt.Unix(),
		"iat":      now.Unix(),
		"iss":      sessionIssuer,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, expiresAt, nil
}

// Parse validates a session token and rebuilds the session it carries.
// Preview mode is not part of the token; the auth middleware layers it on
// per request.
func (s *SessionService) Parse(tokenString string) (*domain.Session, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return s.now() }))
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	email, _ := claims["email"].(string)
	if email == "" {
		return nil, fmt.Errorf("invalid token: missing email")
	}
	username, _ := claims["username"].(string)
	admin, _ := claims["admin"].(bool)

	return &domain.Session{
		Email:    email,
		Username: username,
		Admin:    admin,
	}, nil
}
