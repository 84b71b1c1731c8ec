package commands

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ntpusu/su-services/representatives/internal/metrics"
)

func newSyncCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Run one import from the spreadsheet",
		Long: "Fetches the three sheets, transforms them and writes the dataset when its\n" +
			"content changed. Exits non-zero when any step fails; the stored dataset\n" +
			"is left untouched in that case.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSync(cmd.Context(), opts)
		},
	}
}

func runSync(ctx context.Context, opts *rootOptions) error {
	cfg, logger := opts.cfg, opts.logger

	repo, err := newRepository(cfg, logger)
	if err != nil {
		return err
	}
	m := metrics.New(false)
	pipeline, err := newPipeline(cfg, repo, m, logger)
	if err != nil {
		return err
	}

	_, runErr := pipeline.Run(ctx)

	if cfg.Metrics.PushgatewayURL != "" {
		pushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := m.Push(pushCtx, cfg.Metrics.PushgatewayURL, cfg.Metrics.Job); err != nil {
			logger.Warn("Failed to push metrics", zap.Error(err))
		}
	}
	return runErr
}
