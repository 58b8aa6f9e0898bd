package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
	"go.uber.org/zap"
)

// LocalStore implements Store on a leveldb database in the local
// filesystem. It is the fallback medium when no shared backend is
// provisioned: persistence works, but nothing is shared across devices or
// deployments. Callers must treat that as a degraded mode, not an error.
type LocalStore struct {
	db   *leveldb.DB
	keys *KeyBuilder
	log  *zap.Logger
}

// NewLocalStore opens (creating if needed) a leveldb database at path.
func NewLocalStore(path, environment string, log *zap.Logger) (*LocalStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}

	return &LocalStore{
		db:   db,
		keys: NewKeyBuilder(environment),
		log:  log,
	}, nil
}

// Get retrieves a value. A missing key returns ErrNotFound.
func (s *LocalStore) Get(ctx context.Context, key string, scope Scope) (string, error) {
	start := time.Now()
	val, err := s.db.Get([]byte(s.keys.Build(key, scope)), nil)
	dur := time.Since(start)
	if errors.Is(err, leveldb.ErrNotFound) {
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
		return "", fmt.Errorf("localdb get: %w", err)
	}
	return string(val), nil
}

// Set stores a value. Failures propagate to the caller.
func (s *LocalStore) Set(ctx context.Context, key, value string, scope Scope) error {
	if err := s.db.Put([]byte(s.keys.Build(key, scope)), []byte(value), nil); err != nil {
		s.log.Info("store_set",
			zap.String("key_prefix", prefixForLog(key)),
			zap.Error(err))
		return fmt.Errorf("localdb put: %w", err)
	}
	return nil
}

// Delete removes a key. Deleting a missing key is not an error.
func (s *LocalStore) Delete(ctx context.Context, key string, scope Scope) error {
	if err := s.db.Delete([]byte(s.keys.Build(key, scope)), nil); err != nil {
		return fmt.Errorf("localdb delete: %w", err)
	}
	return nil
}

// List returns all keys with the given prefix, with the namespace stripped.
func (s *LocalStore) List(ctx context.Context, prefix string, scope Scope) ([]string, error) {
	var keys []string
	iter := s.db.NewIterator(util.BytesPrefix([]byte(s.keys.Build(prefix, scope))), nil)
	for iter.Next() {
		if key, ok := s.keys.Strip(string(iter.Key()), scope); ok {
			keys = append(keys, key)
		}
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("localdb iterate: %w", err)
	}
	return keys, nil
}

// Close closes the database.
func (s *LocalStore) Close() error {
	return s.db.Close()
}
