package commands

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ntpusu/su-services/representatives/internal/config"
	"github.com/ntpusu/su-services/representatives/internal/dataset"
	"github.com/ntpusu/su-services/representatives/internal/metrics"
)

func defaultConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	return cfg
}

func TestNewRepositoryFile(t *testing.T) {
	cfg := defaultConfig(t)
	cfg.Storage.Path = filepath.Join(t.TempDir(), "reps.json")

	repo, err := newRepository(cfg, zap.NewNop())
	require.NoError(t, err)

	store, ok := repo.(*dataset.FileStore)
	require.True(t, ok, "expected *dataset.FileStore, got %T", repo)
	assert.Equal(t, cfg.Storage.Path, store.Path())
}

func TestNewRepositoryS3(t *testing.T) {
	cfg := defaultConfig(t)
	cfg.Storage.Backend = config.BackendS3
	cfg.Storage.S3.Endpoint = "localhost:9000"
	cfg.Storage.S3.Bucket = "reps"
	cfg.Storage.S3.Object = "student-representatives.json"

	repo, err := newRepository(cfg, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &dataset.ObjectStore{}, repo)
}

func TestNewRepositoryErrors(t *testing.T) {
	t.Run("unknown backend", func(t *testing.T) {
		cfg := defaultConfig(t)
		cfg.Storage.Backend = "ftp"
		_, err := newRepository(cfg, zap.NewNop())
		assert.ErrorContains(t, err, "unknown storage backend")
	})

	t.Run("unknown format", func(t *testing.T) {
		cfg := defaultConfig(t)
		cfg.Storage.Format = "yaml"
		_, err := newRepository(cfg, zap.NewNop())
		assert.Error(t, err)
	})
}

func TestNewPipeline(t *testing.T) {
	cfg := defaultConfig(t)
	cfg.Storage.Path = filepath.Join(t.TempDir(), "reps.json")
	repo, err := newRepository(cfg, zap.NewNop())
	require.NoError(t, err)

	p, err := newPipeline(cfg, repo, metrics.New(false), zap.NewNop())
	require.NoError(t, err)
	assert.NotNil(t, p)
}
