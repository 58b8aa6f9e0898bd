package identity

import (
	"context"
	"errors"
)

// Account is the provider-side view of a portal account.
type Account struct {
	UID      string
	Email    string
	Verified bool
}

// ErrProviderDisabled is returned by operations that need a configured
// identity provider while the portal runs in demo mode.
var ErrProviderDisabled = errors.New("identity: provider not configured")

// ErrNoActiveSession is returned when an operation needs a provider session
// that no longer exists, e.g. resending verification mail after a restart.
var ErrNoActiveSession = errors.New("identity: no active provider session")

// Provider is the external identity collaborator: credential creation,
// sign-in/out, email verification and password-reset dispatch. The portal
// never stores provider credentials; it only mirrors the verification state
// into its own user records.
type Provider interface {
	// Enabled reports whether a real provider is configured. When false the
	// portal is in demo mode: accounts auto-verify and mail operations are
	// unavailable.
	Enabled() bool

	// CreateAccount registers credentials and returns the new account.
	CreateAccount(ctx context.Context, email, password string) (*Account, error)

	// SignIn validates credentials and returns the account.
	SignIn(ctx context.Context, email, password string) (*Account, error)

	// SignOut drops any provider session held for the email.
	SignOut(ctx context.Context, email string) error

	// SendVerificationEmail dispatches a verification mail for an email that
	// signed up or signed in during this process lifetime.
	SendVerificationEmail(ctx context.Context, email string) error

	// SendPasswordResetEmail dispatches a password-reset mail.
	SendPasswordResetEmail(ctx context.Context, email string) error

	// AccountInfo reloads the provider-side account, including the current
	// verification status.
	AccountInfo(ctx context.Context, email string) (*Account, error)
}

// Disabled is the demo-mode provider used when no API key is configured.
// CreateAccount succeeds with an auto-verified account so the portal stays
// usable; everything that would send mail reports unavailability.
type Disabled struct{}

// NewDisabled creates the demo-mode provider.
func NewDisabled() *Disabled {
	return &Disabled{}
}

func (Disabled) Enabled() bool { return false }

func (Disabled) CreateAccount(ctx context.Context, email, password string) (*Account, error) {
	return &Account{Email: email, Verified: true}, nil
}

func (Disabled) SignIn(ctx context.Context, email, password string) (*Account, error) {
	return &Account{Email: email, Verified: true}, nil
}

func (Disabled) SignOut(ctx context.Context, email string) error { return nil }

func (Disabled) SendVerificationEmail(ctx context.Context, email string) error {
	return ErrProviderDisabled
}

func (Disabled) SendPasswordResetEmail(ctx context.Context, email string) error {
	return ErrProviderDisabled
}

func (Disabled) AccountInfo(ctx context.Context, email string) (*Account, error) {
	return nil, ErrProviderDisabled
}
