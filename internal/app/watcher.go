package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultSettle = 200 * time.Millisecond

// Watcher reloads the served dataset when the artifact file changes on disk.
// It watches the parent directory since saves replace the file.
type Watcher struct {
	path   string
	server *Server
	logger *zap.Logger
	settle time.Duration
}

// NewWatcher watches path on behalf of server
func NewWatcher(path string, server *Server, logger *zap.Logger) *Watcher {
	return &Watcher{
		path:   filepath.Clean(path),
		server: server,
		logger: logger,
		settle: defaultSettle,
	}
}

// Run blocks until ctx is cancelled. Bursts of events within the settle
// window cause a single reload.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	w.logger.Info("Watching dataset for changes", zap.String("path", w.path))

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.logger.Debug("Dataset file event", zap.String("op", event.Op.String()))
			timer.Reset(w.settle)

		case <-timer.C:
			// Errors are logged and counted by Reload
			_ = w.server.Reload(ctx)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Watcher error", zap.Error(err))
		}
	}
}
