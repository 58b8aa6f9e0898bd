package service

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gamezone-be/internal/repository"
	"gamezone-be/internal/storage"
	"gamezone-be/pkg/logger"
)

const testAdminEmail = "admin@example.com"

func newTestStore(t *testing.T) storage.Store {
	store, err := storage.NewLocalStore(filepath.Join(t.TempDir(), "store"), "test", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store
}

func newTestLogger(t *testing.T) *logger.Logger {
	log, err := logger.New("error")
	require.NoError(t, err)
	return log
}

func newTestUserRepo(t *testing.T, store storage.Store) *repository.UserRepository {
	return repository.NewUserRepository(store, testAdminEmail, newTestLogger(t))
}
