package identity

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	identitytoolkit "google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"
)

const (
	oobTypeVerifyEmail   = "VERIFY_EMAIL"
	oobTypePasswordReset = "PASSWORD_RESET"
)

// GoogleProvider implements Provider on the Google Identity Toolkit API,
// authenticated with a project API key. ID tokens from sign-up/sign-in are
// cached per email for the lifetime of the process; verification mail needs
// one, which mirrors the provider's own requirement to be signed in before
// resending.
type GoogleProvider struct {
	svc *identitytoolkit.Service
	log *zap.Logger

	mu       sync.Mutex
	idTokens map[string]string
}

// NewGoogleProvider creates a provider backed by the Identity Toolkit API.
func NewGoogleProvider(ctx context.Context, apiKey string, log *zap.Logger) (*GoogleProvider, error) {
	svc, err := identitytoolkit.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create identity toolkit service: %w", err)
	}

	return &GoogleProvider{
		svc:      svc,
		log:      log,
		idTokens: make(map[string]string),
	}, nil
}

// Enabled reports that a real provider is configured.
func (p *GoogleProvider) Enabled() bool { return true }

// CreateAccount registers credentials with the provider.
func (p *GoogleProvider) CreateAccount(ctx context.Context, email, password string) (*Account, error) {
	resp, err := p.svc.Relyingparty.SignupNewUser(&identitytoolkit.IdentitytoolkitRelyingpartySignupNewUserRequest{
		Email:    email,
		Password: password,
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("provider signup failed: %w", err)
	}

	p.rememberToken(email, resp.IdToken)
	p.log.Debug("identity_signup", zap.String("uid", resp.LocalId))

	return &Account{UID: resp.LocalId, Email: email, Verified: false}, nil
}

// SignIn validates credentials against the provider.
func (p *GoogleProvider) SignIn(ctx context.Context, email, password string) (*Account, error) {
	resp, err := p.svc.Relyingparty.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("provider sign-in failed: %w", err)
	}

	p.rememberToken(email, resp.IdToken)

	// VerifyPassword does not report verification state; reload it.
	account, err := p.AccountInfo(ctx, email)
	if err != nil {
		return nil, err
	}
	return account, nil
}

// SignOut drops the cached provider session for the email.
func (p *GoogleProvider) SignOut(ctx context.Context, email string) error {
	p.mu.Lock()
	delete(p.idTokens, email)
	p.mu.Unlock()
	return nil
}

// SendVerificationEmail dispatches a verification mail using the cached
// session token for the email.
func (p *GoogleProvider) SendVerificationEmail(ctx context.Context, email string) error {
	token := p.token(email)
	if token == "" {
		return ErrNoActiveSession
	}

	_, err := p.svc.Relyingparty.GetOobConfirmationCode(&identitytoolkit.Relyingparty{
		RequestType: oobTypeVerifyEmail,
		IdToken:     token,
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}
	return nil
}

// SendPasswordResetEmail dispatches a password-reset mail.
func (p *GoogleProvider) SendPasswordResetEmail(ctx context.Context, email string) error {
	_, err := p.svc.Relyingparty.GetOobConfirmationCode(&identitytoolkit.Relyingparty{
		RequestType: oobTypePasswordReset,
		Email:       email,
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to send password reset email: %w", err)
	}
	return nil
}

// AccountInfo reloads the provider-side account state.
func (p *GoogleProvider) AccountInfo(ctx context.Context, email string) (*Account, error) {
	resp, err := p.svc.Relyingparty.GetAccountInfo(&identitytoolkit.IdentitytoolkitRelyingpartyGetAccountInfoRequest{
		Email: []string{email},
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get account info: %w", err)
	}
	if len(resp.Users) == 0 {
		return nil, fmt.Errorf("provider has no account for this email")
	}

	u := resp.Users[0]
	return &Account{UID: u.LocalId, Email: email, Verified: u.EmailVerified}, nil
}

func (p *GoogleProvider) rememberToken(email, token string) {
	if token == "" {
		return
	}
	p.mu.Lock()
	p.idTokens[email] = token
	p.mu.Unlock()
}

func (p *GoogleProvider) token(email string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.idTokens[email]
}
