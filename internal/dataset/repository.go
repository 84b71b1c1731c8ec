package dataset

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by Load when no artifact has been persisted yet.
	ErrNotFound = errors.New("dataset: artifact not found")

	// ErrCorrupt is returned by Load when the artifact exists but cannot be decoded.
	ErrCorrupt = errors.New("dataset: artifact corrupt")
)

// Repository owns the persisted dataset artifact. Save must replace the artifact
// atomically: a concurrent Load observes either the previous or the new dataset.
type Repository interface {
	Load(ctx context.Context) (*Dataset, error)
	Save(ctx context.Context, d *Dataset) error
}
