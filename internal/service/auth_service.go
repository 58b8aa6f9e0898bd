package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"gamezone-be/internal/domain"
	"gamezone-be/internal/identity"
	"gamezone-be/internal/repository"
	"gamezone-be/pkg/logger"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

const minPasswordLength = 6

// AuthService implements registration, login and the account lifecycle.
// Credential creation, verification mail and password-reset dispatch are
// delegated to the identity provider; the portal keeps its own user record
// per account and mirrors the provider's verification state into it.
//
// Passwords are stored as bcrypt hashes. The portal used to keep a
// reversible encoding here; that was a known weak point and is deliberately
// not preserved.
type AuthService struct {
	users     *repository.UserRepository
	analytics *AnalyticsService
	sessions  *SessionService
	provider  identity.Provider
	log       *logger.Logger

	studentEmail *regexp.Regexp
	now          func() time.Time
}

// NewAuthService creates a new auth service. studentEmailPattern is the
// anchored regexp a non-admin registration email must match.
func NewAuthService(
	users *repository.UserRepository,
	analytics *AnalyticsService,
	sessions *SessionService,
	provider identity.Provider,
	studentEmailPattern string,
	log *logger.Logger,
) (*AuthService, error) {
	studentEmail, err := regexp.Compile(studentEmailPattern)
	if err != nil {
		return nil, fmt.Errorf("invalid student email pattern: %w", err)
	}

	return &AuthService{
		users:        users,
		analytics:    analytics,
		sessions:     sessions,
		provider:     provider,
		log:          log,
		studentEmail: studentEmail,
		now:          time.Now,
	}, nil
}

// RegisterRequest carries a registration attempt.
type RegisterRequest struct {
	Username    string
	Email       string
	Password    string
	Fingerprint string
}

// LoginResult is a successful login or auto-login.
type LoginResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// Register validates the request, rejects duplicate devices and emails,
// creates the provider account and persists the user record. Validation
// happens before any store or provider access. When a real provider is
// configured the account starts unverified and a verification mail is sent;
// in demo mode it is auto-verified.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if username == "" || email == "" || req.Password == "" {
		return nil, appErrValidation("Please fill out all fields!")
	}
	if !usernamePattern.MatchString(username) {
		return nil, appErrValidation("Username can only contain letters, numbers, underscores (_), and hyphens (-).")
	}

	adminEmail := s.users.AdminEmail(ctx)
	if email != adminEmail && !s.studentEmail.MatchString(email) {
		return nil, appErrValidation("Email must be a valid school address.")
	}
	if len(req.Password) < minPasswordLength {
		return nil, appErrValidation("Password must be at least 6 characters long!")
	}

	if req.Fingerprint != "" {
		boundEmail, err := s.users.EmailByFingerprint(ctx, req.Fingerprint)
		if err != nil {
			return nil, err
		}
		if boundEmail != "" {
			return nil, appErrDuplicate("You have already created an account with this device. Please do not make multiple accounts.")
		}
	}

	existing, err := s.users.GetUser(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, appErrDuplicate("Email already registered!")
	}

	account, err := s.provider.CreateAccount(ctx, email, req.Password)
	if err != nil {
		return nil, appErrExternal("Registration failed at the identity provider.", err)
	}

	if s.provider.Enabled() {
		if err := s.provider.SendVerificationEmail(ctx, email); err != nil {
			s.log.WithError(err).Warn("Failed to send verification email")
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		IsAdmin:      email == adminEmail,
		CreatedAt:    s.now().UTC().Format(time.RFC3339),
		Verified:     account.Verified,
		ExternalUID:  account.UID,
		Fingerprint:  req.Fingerprint,
	}

	if err := s.users.SaveUser(ctx, user); err != nil {
		return nil, appErrWrite("Registration failed. Please try again.", err)
	}
	if req.Fingerprint != "" {
		if err := s.users.BindFingerprint(ctx, req.Fingerprint, email); err != nil {
			return nil, appErrWrite("Registration failed. Please try again.", err)
		}
	}

	s.log.WithField("email", email).Info("User registered")
	return user, nil
}

// Login authenticates by email or username. A successful login records a
// visit and issues a session token. Unverified accounts are rejected until
// the provider confirms verification.
func (s *AuthService) Login(ctx context.Context, loginID, password string) (*LoginResult, error) {
	loginID = strings.TrimSpace(loginID)
	if loginID == "" || password == "" {
		return nil, appErrValidation("Please fill out all fields!")
	}

	user, err := s.findUser(ctx, loginID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, appErrAuth("Invalid credentials!")
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, appErrAuth("Invalid credentials!")
	}

	if s.provider.Enabled() {
		account, err := s.provider.SignIn(ctx, user.Email, password)
		if err != nil {
			return nil, appErrExternal("Identity provider sign-in failed.", err)
		}
		if !account.Verified && !user.Verified {
			return nil, appErrAuth("Please verify your email before logging in. Check your inbox for the verification link.")
		}
		if account.Verified && !user.Verified {
			user.Verified = true
			if err := s.users.SaveUser(ctx, user); err != nil {
				s.log.WithError(err).Warn("Failed to persist verification status")
			}
		}
	}

	return s.openSession(ctx, user)
}

// AutoLogin resumes a session from a previously issued token. The user
// record is reloaded, the verification state refreshed best-effort, and a
// visit recorded.
func (s *AuthService) AutoLogin(ctx context.Context, token string) (*LoginResult, error) {
	sess, err := s.sessions.Parse(token)
	if err != nil {
		return nil, appErrAuth("Invalid or expired session.")
	}

	user, err := s.users.GetUser(ctx, sess.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, appErrAuth("Invalid or expired session.")
	}

	if s.provider.Enabled() && !user.Verified {
		if account, err := s.provider.AccountInfo(ctx, user.Email); err == nil && account.Verified {
			user.Verified = true
			if err := s.users.SaveUser(ctx, user); err != nil {
				s.log.WithError(err).Warn("Failed to persist verification status")
			}
		}
	}

	return s.openSession(ctx, user)
}

func (s *AuthService) openSession(ctx context.Context, user *domain.User) (*LoginResult, error) {
	// Visit tracking is best-effort; a stats failure never blocks a login.
	if err := s.analytics.RecordVisit(ctx); err != nil {
		s.log.WithError(err).Warn("Failed to record visit")
	}

	token, expiresAt, err := s.sessions.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue session: %w", err)
	}

	return &LoginResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// Logout drops the provider session for the email.
func (s *AuthService) Logout(ctx context.Context, email string) {
	if err := s.provider.SignOut(ctx, email); err != nil {
		s.log.WithError(err).Warn("Provider sign-out failed")
	}
}

// VerifyEmail reloads the provider account and, once the provider confirms
// verification, flips the user record. Returns the updated user.
func (s *AuthService) VerifyEmail(ctx context.Context, email string) (*domain.User, error) {
	if !s.provider.Enabled() {
		return nil, appErrValidation("Identity provider not configured. Email verification unavailable.")
	}

	user, err := s.users.GetUser(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, appErrNotFound("User not found.")
	}

	account, err := s.provider.AccountInfo(ctx, email)
	if err != nil {
		return nil, appErrExternal("Verification check failed.", err)
	}
	if !account.Verified {
		return nil, appErrValidation("Email not verified yet. Please check your inbox and click the verification link.")
	}

	user.Verified = true
	if err := s.users.SaveUser(ctx, user); err != nil {
		return nil, appErrWrite("Failed to update verification status.", err)
	}
	return user, nil
}

// ResendVerification re-dispatches the verification mail for an email with
// an active provider session.
func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	if !s.provider.Enabled() {
		return appErrValidation("Identity provider not configured. Email verification unavailable.")
	}
	if err := s.provider.SendVerificationEmail(ctx, email); err != nil {
		if err == identity.ErrNoActiveSession {
			return appErrValidation("Please log in first to resend verification email.")
		}
		return appErrExternal("Failed to resend verification email.", err)
	}
	return nil
}

// SendPasswordReset dispatches a reset mail for a known account.
func (s *AuthService) SendPasswordReset(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return appErrValidation("Please enter your email address!")
	}
	if !s.provider.Enabled() {
		return appErrValidation("Identity provider not configured. Password reset unavailable. Please contact admin.")
	}

	user, err := s.users.GetUser(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return appErrNotFound("No account found with this email!")
	}

	if err := s.provider.SendPasswordResetEmail(ctx, email); err != nil {
		return appErrExternal("Failed to send reset email.", err)
	}
	return nil
}

// ListUsers returns every registered user for the admin view.
func (s *AuthService) ListUsers(ctx context.Context) []*domain.User {
	return s.users.ListUsers(ctx)
}

// KickUser deletes a user record and its device binding. The admin account
// itself can never be kicked. The provider-side account is out of the
// portal's reach and may survive.
func (s *AuthService) KickUser(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == s.users.AdminEmail(ctx) {
		return appErrValidation("Cannot kick the admin!")
	}

	user, err := s.users.GetUser(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return appErrNotFound("User not found.")
	}

	if err := s.users.DeleteUser(ctx, email); err != nil {
		return appErrWrite("Failed to kick user.", err)
	}
	if err := s.users.UnbindFingerprint(ctx, user.Fingerprint); err != nil {
		return appErrWrite("User removed but device binding remains.", err)
	}

	s.log.WithField("email", email).Info("User kicked")
	return nil
}

func (s *AuthService) findUser(ctx context.Context, loginID string) (*domain.User, error) {
	user, err := s.users.GetUser(ctx, strings.ToLower(loginID))
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}
	return s.users.FindByUsername(ctx, loginID)
}
