package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ntpusu/su-services/representatives/internal/dataset"
	"github.com/ntpusu/su-services/representatives/internal/importer"
	"github.com/ntpusu/su-services/representatives/internal/metrics"
)

// ErrSyncInProgress is returned when a sync is requested while one is running
var ErrSyncInProgress = errors.New("sync already in progress")

// Syncer runs one import
type Syncer interface {
	Run(ctx context.Context) (*importer.Result, error)
}

var _ Syncer = (*importer.Pipeline)(nil)

// Server holds the dataset served over HTTP. The dataset pointer is swapped
// as a whole, so readers never observe a partial update.
type Server struct {
	repo    dataset.Repository
	syncer  Syncer
	auth    *Authenticator
	metrics *metrics.Metrics
	logger  *zap.Logger
	now     func() time.Time

	mu   sync.RWMutex
	data *dataset.Dataset

	syncMu sync.Mutex
}

// NewServer creates a Server. syncer may be nil, which disables the sync
// endpoint.
func NewServer(repo dataset.Repository, syncer Syncer, auth *Authenticator, m *metrics.Metrics, logger *zap.Logger) *Server {
	return &Server{
		repo:    repo,
		syncer:  syncer,
		auth:    auth,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// Reload replaces the served dataset with the stored one. A missing artifact
// clears it; any other failure keeps the current dataset.
func (s *Server) Reload(ctx context.Context) error {
	d, err := s.repo.Load(ctx)
	switch {
	case errors.Is(err, dataset.ErrNotFound):
		s.logger.Info("No dataset stored yet, serving empty data")
		d, err = nil, nil
	case err != nil:
		s.metrics.ObserveReload(err)
		s.logger.Error("Failed to reload dataset, keeping current one", zap.Error(err))
		return fmt.Errorf("reload dataset: %w", err)
	}

	s.mu.Lock()
	s.data = d
	s.mu.Unlock()

	s.metrics.ObserveReload(nil)
	if d != nil {
		meetings, reps, assignments := d.Counts()
		s.metrics.SetRecords(meetings, reps, assignments)
		s.logger.Info("Dataset loaded",
			zap.Int("meetings", meetings),
			zap.Int("representatives", reps),
			zap.Int("assignments", assignments),
			zap.String("last_updated", d.LastUpdated),
		)
	}
	return nil
}

// Dataset returns the served dataset, or an empty one stamped with the
// current time when nothing is stored.
func (s *Server) Dataset() *dataset.Dataset {
	s.mu.RLock()
	d := s.data
	s.mu.RUnlock()

	if d == nil {
		return dataset.Empty(s.now().UTC().Format(importer.TimestampLayout))
	}
	return d
}

// Sync runs the import pipeline and reloads the served dataset. Only one run
// may be active at a time.
func (s *Server) Sync(ctx context.Context) (*importer.Result, error) {
	if !s.syncMu.TryLock() {
		return nil, ErrSyncInProgress
	}
	defer s.syncMu.Unlock()

	result, err := s.syncer.Run(ctx)
	if err != nil {
		return nil, err
	}
	if result.Outcome != importer.OutcomeUnchanged {
		if err := s.Reload(ctx); err != nil {
			return result, err
		}
	}
	return result, nil
}

// ListenAndServe serves h on port until ctx is cancelled, then shuts down
// gracefully.
func ListenAndServe(ctx context.Context, port int, h http.Handler, logger *zap.Logger) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", zap.Int("port", port))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}
