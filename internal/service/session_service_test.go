package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gamezone-be/internal/domain"
)

func TestSessionService_IssueAndParse(t *testing.T) {
	svc := NewSessionService("test-secret")

	user := &domain.User{
		Username: "player",
		Email:    "1234567@lwsd.org",
	}

	token, expiresAt, err := svc.Issue(user)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), expiresAt, time.Minute)

	sess, err := svc.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, user.Email, sess.Email)
	assert.Equal(t, user.Username, sess.Username)
	assert.False(t, sess.Admin)
	assert.False(t, sess.Preview)
}

func TestSessionService_AdminClaim(t *testing.T) {
	svc := NewSessionService("test-secret")

	token, _, err := svc.Issue(&domain.User{
		Username: "admin",
		Email:    "admin@example.com",
		IsAdmin:  true,
	})
	require.NoError(t, err)

	sess, err := svc.Parse(token)
	require.NoError(t, err)
	assert.True(t, sess.Admin)
	// Preview mode is per request, never baked into the token.
	assert.False(t, sess.Preview)
}

func TestSessionService_Parse_Invalid(t *testing.T) {
	svc := NewSessionService("test-secret")

	tests := []struct {
		name  string
		token string
	}{
		{
			name:  "Garbage token",
			token: "not-a-token",
		},
		{
			name:  "Empty token",
			token: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess, err := svc.Parse(tt.token)
			assert.Error(t, err)
			assert.Nil(t, sess)
		})
	}
}

func TestSessionService_Parse_WrongSecret(t *testing.T) {
	issuer := NewSessionService("secret-a")
	verifier := NewSessionService("secret-b")

	token, _, err := issuer.Issue(&domain.User{Username: "player", Email: "1234567@lwsd.org"})
	require.NoError(t, err)

	_, err = verifier.Parse(token)
	assert.Error(t, err)
}

func TestSessionService_Parse_Expired(t *testing.T) {
	svc := NewSessionService("test-secret")

	token, _, err := svc.Issue(&domain.User{Username: "player", Email: "1234567@lwsd.org"})
	require.NoError(t, err)

	// Move validation time past the 24h expiry.
	svc.now = func() time.Time { return time.Now().Add(25 * time.Hour) }

	_, err = svc.Parse(token)
	assert.Error(t, err)
}
