package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// PostgresStore implements Store on a single key-value table. It exists for
// deployments that already run Postgres and do not want a second backend for
// the portal's handful of blobs.
type PostgresStore struct {
	pool *pgxpool.Pool
	keys *KeyBuilder
	log  *zap.Logger
}

// NewPostgresStore connects to Postgres and ensures the kv table exists.
func NewPostgresStore(ctx context.Context, databaseURL, environment string, log *zap.Logger) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}

	s := &PostgresStore{
		pool: pool,
		keys: NewKeyBuilder(environment),
		log:  log,
	}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS portal_kv (
			k          TEXT PRIMARY KEY,
			v          TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create portal_kv table: %w", err)
	}
	return nil
}

// Get retrieves a value. A missing key returns ErrNotFound.
func (s *PostgresStore) Get(ctx context.Context, key string, scope Scope) (string, error) {
	start := time.Now()
	var val string
	err := s.pool.QueryRow(ctx,
		`SELECT v FROM portal_kv WHERE k = $1`,
		s.keys.Build(key, scope),
	).Scan(&val)
	dur := time.Since(start)
	if errors.Is(err, pgx.ErrNoRows) {
		s.log.Debug("store_get_miss",
			zap.String("key_prefix", prefixForLog(key)),
			zap.Duration("duration", dur))
		return "", ErrNotFound
	}
	if err != nil {
		s.log.Info("store_get",
			zap.String("key_prefix", prefixForLog(key)),
			zap.Duration("duration", dur),
			zap.Error(err))
		return "", fmt.Errorf("postgres get: %w", err)
	}
	return val, nil
}

// Set upserts a value. Failures propagate to the caller.
func (s *PostgresStore) Set(ctx context.Context, key, value string, scope Scope) error {
	query := `
		INSERT INTO portal_kv (k, v, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (k)
		DO UPDATE SET v = EXCLUDED.v, updated_at = NOW()
	`
	if _, err := s.pool.Exec(ctx, query, s.keys.Build(key, scope), value); err != nil {
		s.log.Info("store_set",
			zap.String("key_prefix", prefixForLog(key)),
			zap.Error(err))
		return fmt.Errorf("postgres set: %w", err)
	}
	return nil
}

// Delete removes a key. Deleting a missing key is not an error.
func (s *PostgresStore) Delete(ctx context.Context, key string, scope Scope) error {
	if _, err := s.pool.Exec(ctx,
		`DELETE FROM portal_kv WHERE k = $1`,
		s.keys.Build(key, scope),
	); err != nil {
		return fmt.Errorf("postgres delete: %w", err)
	}
	return nil
}

// List returns all keys with the given prefix, with the namespace stripped.
// Portal keys contain no LIKE metacharacters, so the prefix is matched
// directly.
func (s *PostgresStore) List(ctx context.Context, prefix string, scope Scope) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT k FROM portal_kv WHERE k LIKE $1 || '%' ORDER BY k`,
		s.keys.Build(prefix, scope),
	)
	if err != nil {
		return nil, fmt.Errorf("postgres list: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var full string
		if err := rows.Scan(&full); err != nil {
			return nil, fmt.Errorf("postgres list scan: %w", err)
		}
		if key, ok := s.keys.Strip(full, scope); ok {
			keys = append(keys, key)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres list rows: %w", err)
	}
	return keys, nil
}

// Health checks the database connection.
func (s *PostgresStore) Health(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
