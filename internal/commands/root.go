// Package commands implements the representatives command line.
package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ntpusu/su-services/representatives/internal/config"
	"github.com/ntpusu/su-services/representatives/internal/logger"
)

// Version is set at build time via -ldflags
var Version = "dev"

type rootOptions struct {
	configPath string
	logLevel   string
	logFormat  string

	cfg    *config.Config
	logger *zap.Logger
}

// NewRootCommand creates the root command with all subcommands attached
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "representatives",
		Short:         "Sync and serve the student representatives roster",
		Long:          "Downloads the student representatives spreadsheet, stores it as a dataset\nwhen its content changed, and serves it over HTTP.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.init(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "", "config file path (YAML)")
	pf.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error); overrides log.level")
	pf.StringVar(&opts.logFormat, "log-format", "", "log format (json, console); overrides log.format")

	cmd.AddCommand(
		newSyncCommand(opts),
		newServeCommand(opts),
		newHashPasswordCommand(opts),
	)
	return cmd
}

func (o *rootOptions) init(cmd *cobra.Command) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = o.logLevel
	}
	if cmd.Flags().Changed("log-format") {
		cfg.Log.Format = o.logFormat
	}

	l, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, cfg.Log.Service)
	if err != nil {
		return err
	}

	o.cfg = cfg
	o.logger = l.With(zap.String("command", cmd.Name()))
	return nil
}

// Execute runs the command line and returns the first fatal error
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		return fmt.Errorf("representatives: %w", err)
	}
	return nil
}
