package storage

import (
	"context"
	"errors"
	"fmt"
)

// Scope distinguishes the shared namespace, visible to every client, from a
// private per-deployment namespace. All portal entities live in the shared
// scope.
type Scope string

const (
	ScopeShared  Scope = "shared"
	ScopePrivate Scope = "private"
)

// ErrNotFound is returned by Get when the key does not exist. A miss is not
// a failure; callers treat it as "absent" and fall back to defaults.
var ErrNotFound = errors.New("storage: key not found")

// Store is the key-value boundary every portal component reads and writes
// through. Values are opaque strings, typically JSON blobs; callers own
// encoding and concurrency semantics. No atomicity is guaranteed across
// keys.
//
// Set and Delete failures propagate. List is best-effort: call sites degrade
// a List failure to an empty result so aggregate views stay usable when the
// backend is partially unhealthy.
type Store interface {
	Get(ctx context.Context, key string, scope Scope) (string, error)
	Set(ctx context.Context, key, value string, scope Scope) error
	Delete(ctx context.Context, key string, scope Scope) error
	List(ctx context.Context, prefix string, scope Scope) ([]string, error)
	Close() error
}

// Persisted key names, all in the shared scope.
const (
	KeyAdminEmail    = "admin_email"
	KeyVisitStats    = "visit_stats"
	KeyGameStats     = "game_stats"
	KeyAnnouncements = "announcements"
	KeySiteShutdown  = "site_shutdown"

	UserKeyPrefix        = "user:"
	RecentGamesKeyPrefix = "recent_games:"
	FingerprintKeyPrefix = "ip:"
)

// UserKey returns the key of a user record.
func UserKey(email string) string {
	return UserKeyPrefix + email
}

// RecentGamesKey returns the key of a user's recent-games list.
func RecentGamesKey(email string) string {
	return RecentGamesKeyPrefix + email
}

// FingerprintKey returns the key of a device-fingerprint registration.
func FingerprintKey(fingerprint string) string {
	return FingerprintKeyPrefix + fingerprint
}

// KeyBuilder namespaces raw keys per environment and scope so staging and
// production deployments sharing a backend never collide.
type KeyBuilder struct {
	prefix string
}

// NewKeyBuilder creates a key builder with an environment-based prefix.
func NewKeyBuilder(environment string) *KeyBuilder {
	prefix := "prod"
	if environment == "development" || environment == "staging" || environment == "test" {
		prefix = "staging"
	}

	return &KeyBuilder{prefix: prefix}
}

// Build constructs the full backend key for a portal key in a scope.
func (kb *KeyBuilder) Build(key string, scope Scope) string {
	return fmt.Sprintf("%s:%s:%s", kb.prefix, scope, key)
}

// Strip removes the environment and scope segments from a full backend key.
// The boolean reports whether the key belonged to the given scope.
func (kb *KeyBuilder) Strip(full string, scope Scope) (string, bool) {
	ns := kb.prefix + ":" + string(scope) + ":"
	if len(full) <= len(ns) || full[:len(ns)] != ns {
		return "", false
	}
	return full[len(ns):], true
}

// prefixForLog returns a safe prefix of a key to avoid logging PII
func prefixForLog(key string) string {
	if len(key) <= 24 {
		return key
	}
	return key[:24] + "…"
}
