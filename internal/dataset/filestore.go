package dataset

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

const (
	FilePermissions = 0644
	BackupSuffix    = ".backup"
	tmpPattern      = ".tmp-*"
)

// FileStore persists the dataset as a single file on the local filesystem
type FileStore struct {
	path      string
	backupDir string
	codec     Codec
	logger    *zap.Logger
	now       func() time.Time
}

// NewFileStore creates a file-backed repository. When backupDir is not empty,
// the previous artifact is copied there before it is replaced.
func NewFileStore(path, backupDir string, codec Codec, logger *zap.Logger) *FileStore {
	return &FileStore{
		path:      path,
		backupDir: backupDir,
		codec:     codec,
		logger:    logger,
		now:       time.Now,
	}
}

// Path returns the artifact location
func (s *FileStore) Path() string {
	return s.path
}

// Load reads and decodes the artifact
func (s *FileStore) Load(ctx context.Context) (*Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}

	return s.codec.Decode(data)
}

// Save writes the dataset to a temp file next to the artifact and renames it
// into place.
func (s *FileStore) Save(ctx context.Context, d *Dataset) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := s.codec.Encode(d)
	if err != nil {
		return fmt.Errorf("encode dataset: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	if s.backupDir != "" {
		if err := s.backup(); err != nil {
			s.logger.Warn("Failed to create backup", zap.String("path", s.path), zap.Error(err))
		}
	}

	// The temp file must live in the same directory so the rename stays on one filesystem.
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+tmpPattern)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		if err := os.Remove(tmpName); err != nil && !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("Failed to remove temp file", zap.String("path", tmpName), zap.Error(err))
		}
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, FilePermissions); err != nil {
		cleanup()
		return fmt.Errorf("chmod temp file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		cleanup()
		return fmt.Errorf("replace %s: %w", s.path, err)
	}

	s.logger.Debug("Dataset written", zap.String("path", s.path), zap.Int("bytes", len(data)))
	return nil
}

// backup copies the current artifact into the backup directory. The original
// stays in place so readers never see a missing file.
func (s *FileStore) backup() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}

	if err := os.MkdirAll(s.backupDir, 0755); err != nil {
		return fmt.Errorf("failed to create backup directory: %w", err)
	}

	name := fmt.Sprintf("%d_%s%s", s.now().UnixMilli(), filepath.Base(s.path), BackupSuffix)
	backupFile := filepath.Join(s.backupDir, name)
	if err := os.WriteFile(backupFile, data, FilePermissions); err != nil {
		return err
	}

	s.logger.Info("Backup created", zap.String("path", backupFile))
	return nil
}
