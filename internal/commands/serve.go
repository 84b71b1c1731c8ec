package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ntpusu/su-services/representatives/internal/app"
	"github.com/ntpusu/su-services/representatives/internal/config"
	"github.com/ntpusu/su-services/representatives/internal/dataset"
	"github.com/ntpusu/su-services/representatives/internal/metrics"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dataset over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("port") {
				opts.cfg.Server.Port = port
			}
			return runServe(cmd.Context(), opts)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", config.DefaultPort, "port to listen on; overrides server.port")
	return cmd
}

func runServe(ctx context.Context, opts *rootOptions) error {
	cfg, logger := opts.cfg, opts.logger

	repo, err := newRepository(cfg, logger)
	if err != nil {
		return err
	}
	m := metrics.New(true)
	pipeline, err := newPipeline(cfg, repo, m, logger)
	if err != nil {
		return err
	}

	authFile, err := app.AuthFilePath(cfg.Server.AuthFile)
	if err != nil {
		return err
	}
	auth, err := app.LoadAuthenticator(authFile, logger)
	if err != nil {
		return err
	}

	server := app.NewServer(repo, pipeline, auth, m, logger)
	if err := server.Reload(ctx); err != nil && !errors.Is(err, dataset.ErrCorrupt) {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return app.ListenAndServe(gctx, cfg.Server.Port, server.Router(), logger)
	})
	if cfg.Storage.Backend == config.BackendFile && cfg.Server.Watch {
		watcher := app.NewWatcher(cfg.Storage.Path, server, logger)
		g.Go(func() error {
			return watcher.Run(gctx)
		})
	}

	logger.Info("Serving student representatives",
		zap.Int("port", cfg.Server.Port),
		zap.String("backend", cfg.Storage.Backend),
		zap.Bool("auth", auth.Enabled()),
	)
	return g.Wait()
}
