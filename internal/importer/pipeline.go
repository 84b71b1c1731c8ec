package importer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ntpusu/su-services/representatives/internal/dataset"
	"github.com/ntpusu/su-services/representatives/internal/sheets"
)

// SheetFetcher downloads the source sheets concurrently
type SheetFetcher interface {
	FetchAll(ctx context.Context, refs []sheets.Ref) ([]*sheets.Sheet, error)
}

// Sources names the three sheets of the source spreadsheet
type Sources struct {
	Meetings        sheets.Ref
	Representatives sheets.Ref
	Assignments     sheets.Ref
}

// RunRecorder receives the result of every pipeline run
type RunRecorder interface {
	ObserveRun(result *Result, err error)
}

// Result summarizes one pipeline run
type Result struct {
	RunID    string
	Outcome  Outcome
	Dataset  *dataset.Dataset
	Dropped  Dropped
	Duration time.Duration
}

// Pipeline runs fetch, transform and reconcile in sequence
type Pipeline struct {
	fetcher    SheetFetcher
	sources    Sources
	mapping    Mapping
	reconciler *Reconciler
	timeout    time.Duration
	logger     *zap.Logger
	recorder   RunRecorder
}

// NewPipeline wires the three stages together. A zero timeout disables the
// per-run deadline.
func NewPipeline(fetcher SheetFetcher, sources Sources, mapping Mapping, reconciler *Reconciler, timeout time.Duration, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		fetcher:    fetcher,
		sources:    sources,
		mapping:    mapping,
		reconciler: reconciler,
		timeout:    timeout,
		logger:     logger,
	}
}

// WithRecorder attaches a recorder for run outcomes
func (p *Pipeline) WithRecorder(r RunRecorder) *Pipeline {
	p.recorder = r
	return p
}

// Run executes one import. Any fetch or parse failure aborts the run before
// anything is written.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	runID := uuid.NewString()
	logger := p.logger.With(zap.String("run_id", runID))

	result, err := p.run(ctx, logger)
	if result != nil {
		result.RunID = runID
		result.Duration = time.Since(start)
	}
	if p.recorder != nil {
		p.recorder.ObserveRun(result, err)
	}
	if err != nil {
		logger.Error("Import failed", zap.Error(err), zap.Duration("duration", time.Since(start)))
		return nil, err
	}

	meetings, reps, assignments := result.Dataset.Counts()
	logger.Info("Import finished",
		zap.String("outcome", string(result.Outcome)),
		zap.Int("meetings", meetings),
		zap.Int("representatives", reps),
		zap.Int("assignments", assignments),
		zap.Int("dropped_rows", result.Dropped.Total()),
		zap.String("last_updated", result.Dataset.LastUpdated),
		zap.Duration("duration", result.Duration),
	)
	return result, nil
}

func (p *Pipeline) run(ctx context.Context, logger *zap.Logger) (*Result, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	logger.Info("Fetching spreadsheet data")
	fetched, err := p.fetcher.FetchAll(ctx, []sheets.Ref{
		p.sources.Meetings,
		p.sources.Representatives,
		p.sources.Assignments,
	})
	if err != nil {
		return nil, err
	}
	if len(fetched) != 3 {
		return nil, fmt.Errorf("expected 3 sheets, got %d", len(fetched))
	}

	candidate, dropped, err := Transform(p.mapping, fetched[0], fetched[1], fetched[2])
	if err != nil {
		return nil, err
	}
	if dropped.Total() > 0 {
		logger.Info("Dropped incomplete rows",
			zap.Int("meetings", dropped.Meetings),
			zap.Int("representatives", dropped.Representatives),
			zap.Int("assignments", dropped.Assignments),
		)
	}

	outcome, stored, err := p.reconciler.Reconcile(ctx, candidate)
	if err != nil {
		return nil, err
	}

	return &Result{
		Outcome: outcome,
		Dataset: stored,
		Dropped: dropped,
	}, nil
}
