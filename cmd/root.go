// Package cmd implements the tenderwatch command-line interface.
package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tender-watch/pkg/config"
	"tender-watch/pkg/logger"
)

// options holds the global flags shared by every subcommand
type options struct {
	configPath string
	logLevel   string
}

// NewRootCommand builds the tenderwatch command tree.
func NewRootCommand() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "tenderwatch",
		Short: "Watch tender portals and email new tenders",
		Long: `tenderwatch polls a list of public tender-listing pages, detects tenders
that were not seen before and emails them. It is meant to be invoked on a
timer by cron or a CI schedule.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(
		&opts.configPath,
		"config",
		"",
		fmt.Sprintf("config file (default is $CONFIG_PATH or ./%s)", config.DefaultPath),
	)
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	run := newRunCommand(opts)
	root.AddCommand(run)
	root.AddCommand(newSitesCommand(opts))
	root.AddCommand(newMigrateCommand(opts))

	// bare `tenderwatch` behaves like `tenderwatch run`
	root.RunE = run.RunE
	root.Flags().AddFlagSet(run.Flags())

	return root
}

// Execute runs the root command
func Execute() error {
	return NewRootCommand().ExecuteContext(context.Background())
}

// loadConfig reads the configuration and applies the global flag overrides
func (o *options) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if o.logLevel != "" {
		cfg.Logging.Level = strings.ToLower(o.logLevel)
		if err := cfg.Logging.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// newLogger creates the process logger from configuration
func newLogger(cfg *config.Config) (logger.Logger, error) {
	log, err := logger.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return log, nil
}
