package importer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"go.uber.org/zap"

	"github.com/ntpusu/su-services/representatives/internal/dataset"
)

// Outcome describes what a reconciliation did with the candidate
type Outcome string

const (
	OutcomeCreated   Outcome = "created"
	OutcomeUpdated   Outcome = "updated"
	OutcomeUnchanged Outcome = "unchanged"
)

// TimestampLayout is the ISO-8601 UTC layout used for lastUpdated
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Reconciler persists a candidate dataset only when its content differs from
// the stored one. It is the only writer of the repository.
type Reconciler struct {
	repo        dataset.Repository
	logger      *zap.Logger
	ignoreOrder bool
	now         func() time.Time
}

// NewReconciler creates a Reconciler. With ignoreOrder, collections that hold
// the same records in a different order compare equal.
func NewReconciler(repo dataset.Repository, ignoreOrder bool, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		repo:        repo,
		logger:      logger,
		ignoreOrder: ignoreOrder,
		now:         time.Now,
	}
}

// Reconcile compares candidate with the stored dataset, ignoring lastUpdated.
// When they differ, candidate is stamped with a new lastUpdated and saved.
// The returned dataset is the one stored after the call.
func (r *Reconciler) Reconcile(ctx context.Context, candidate *dataset.Dataset) (Outcome, *dataset.Dataset, error) {
	prior, err := r.loadPrior(ctx)
	if err != nil {
		return "", nil, err
	}

	if prior != nil && r.Equal(prior, candidate) {
		r.logger.Info("No changes detected", zap.String("last_updated", prior.LastUpdated))
		return OutcomeUnchanged, prior, nil
	}

	next := *candidate
	next.Normalize()
	next.LastUpdated = r.timestamp(prior)

	outcome := OutcomeCreated
	if prior != nil {
		outcome = OutcomeUpdated
		if ce := r.logger.Check(zap.DebugLevel, "Dataset changed"); ce != nil {
			ce.Write(zap.String("diff", cmp.Diff(prior, &next, r.options()...)))
		}
	}

	if err := r.repo.Save(ctx, &next); err != nil {
		return "", nil, fmt.Errorf("save dataset: %w", err)
	}
	return outcome, &next, nil
}

// Equal reports whether two datasets hold the same records, ignoring lastUpdated
func (r *Reconciler) Equal(a, b *dataset.Dataset) bool {
	return cmp.Equal(a, b, r.options()...)
}

func (r *Reconciler) options() []cmp.Option {
	opts := []cmp.Option{
		cmpopts.IgnoreFields(dataset.Dataset{}, "LastUpdated"),
		cmpopts.EquateEmpty(),
	}
	if r.ignoreOrder {
		opts = append(opts,
			cmpopts.SortSlices(byValue[dataset.Meeting]),
			cmpopts.SortSlices(byValue[dataset.Representative]),
			cmpopts.SortSlices(byValue[dataset.Assignment]),
		)
	}
	return opts
}

// byValue orders records by their full Go-syntax representation, which is a
// strict total order over records made of strings.
func byValue[T any](a, b T) bool {
	return fmt.Sprintf("%#v", a) < fmt.Sprintf("%#v", b)
}

func (r *Reconciler) loadPrior(ctx context.Context) (*dataset.Dataset, error) {
	prior, err := r.repo.Load(ctx)
	switch {
	case err == nil:
		return prior, nil
	case errors.Is(err, dataset.ErrNotFound):
		r.logger.Info("No persisted dataset found")
		return nil, nil
	case errors.Is(err, dataset.ErrCorrupt):
		r.logger.Warn("Persisted dataset unreadable, treating as absent", zap.Error(err))
		return nil, nil
	default:
		return nil, fmt.Errorf("load persisted dataset: %w", err)
	}
}

// timestamp returns the current time, moved forward when needed so that it is
// strictly later than the prior lastUpdated.
func (r *Reconciler) timestamp(prior *dataset.Dataset) string {
	ts := r.now().UTC().Truncate(time.Millisecond)
	if prior != nil {
		if last, err := time.Parse(time.RFC3339Nano, prior.LastUpdated); err == nil && !ts.After(last) {
			ts = last.UTC().Truncate(time.Millisecond).Add(time.Millisecond)
		}
	}
	return ts.Format(TimestampLayout)
}
