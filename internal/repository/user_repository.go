package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gamezone-be/internal/domain"
	"gamezone-be/internal/storage"
	"gamezone-be/pkg/logger"
)

// UserRepository persists user records and device-fingerprint bindings
// through the key-value store. Records live under user:<email>, bindings
// under ip:<fingerprint>, and the configured admin address under
// admin_email.
type UserRepository struct {
	store storage.Store
	log   *logger.Logger

	configuredAdmin string
}

// NewUserRepository creates a new user repository.
func NewUserRepository(store storage.Store, configuredAdmin string, log *logger.Logger) *UserRepository {
	return &UserRepository{
		store:           store,
		log:             log,
		configuredAdmin: configuredAdmin,
	}
}

// GetUser retrieves a user by email. Returns nil, nil when no record exists.
func (r *UserRepository) GetUser(ctx context.Context, email string) (*domain.User, error) {
	raw, err := r.store.Get(ctx, storage.UserKey(email), storage.ScopeShared)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	var user domain.User
	if err := domain.Unmarshal([]byte(raw), &user); err != nil {
		return nil, fmt.Errorf("failed to decode user record: %w", err)
	}
	return &user, nil
}

// SaveUser writes a user record.
func (r *UserRepository) SaveUser(ctx context.Context, user *domain.User) error {
	raw, err := domain.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user record: %w", err)
	}
	if err := r.store.Set(ctx, storage.UserKey(user.Email), string(raw), storage.ScopeShared); err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

// DeleteUser removes a user record.
func (r *UserRepository) DeleteUser(ctx context.Context, email string) error {
	if err := r.store.Delete(ctx, storage.UserKey(email), storage.ScopeShared); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// ListUsers returns every stored user record. List is best-effort: a listing
// failure degrades to an empty result so admin views stay usable.
func (r *UserRepository) ListUsers(ctx context.Context) []*domain.User {
	keys, err := r.store.List(ctx, storage.UserKeyPrefix, storage.ScopeShared)
	if err != nil {
		r.log.WithError(err).Warn("User listing failed, returning empty result")
		return nil
	}

	users := make([]*domain.User, 0, len(keys))
	for _, key := range keys {
		raw, err := r.store.Get(ctx, key, storage.ScopeShared)
		if err != nil {
			continue
		}
		var user domain.User
		if err := domain.Unmarshal([]byte(raw), &user); err != nil {
			r.log.WithError(err).WithField("key", key).Warn("Skipping undecodable user record")
			continue
		}
		users = append(users, &user)
	}
	return users
}

// FindByUsername scans user records for a case-insensitive username match.
// Returns nil, nil when no user matches.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	for _, user := range r.ListUsers(ctx) {
		if strings.EqualFold(user.Username, username) {
			return user, nil
		}
	}
	return nil, nil
}

// EmailByFingerprint returns the email bound to a device fingerprint, or ""
// when the device has no registration.
func (r *UserRepository) EmailByFingerprint(ctx context.Context, fp string) (string, error) {
	email, err := r.store.Get(ctx, storage.FingerprintKey(fp), storage.ScopeShared)
	if errors.Is(err, storage.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to check fingerprint: %w", err)
	}
	return email, nil
}

// BindFingerprint records that a device fingerprint created an account.
func (r *UserRepository) BindFingerprint(ctx context.Context, fp, email string) error {
	if err := r.store.Set(ctx, storage.FingerprintKey(fp), email, storage.ScopeShared); err != nil {
		return fmt.Errorf("failed to bind fingerprint: %w", err)
	}
	return nil
}

// UnbindFingerprint removes a device-fingerprint binding.
func (r *UserRepository) UnbindFingerprint(ctx context.Context, fp string) error {
	if fp == "" {
		return nil
	}
	if err := r.store.Delete(ctx, storage.FingerprintKey(fp), storage.ScopeShared); err != nil {
		return fmt.Errorf("failed to unbind fingerprint: %w", err)
	}
	return nil
}

// AdminEmail returns the stored admin address, seeding it from configuration
// on first use. A read failure falls back to the configured value.
func (r *UserRepository) AdminEmail(ctx context.Context) string {
	email, err := r.store.Get(ctx, storage.KeyAdminEmail, storage.ScopeShared)
	if err == nil && email != "" {
		return email
	}
	if errors.Is(err, storage.ErrNotFound) {
		if err := r.store.Set(ctx, storage.KeyAdminEmail, r.configuredAdmin, storage.ScopeShared); err != nil {
			r.log.WithError(err).Warn("Failed to seed admin email")
		}
	}
	return r.configuredAdmin
}
