package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tender-watch/pkg/db"
	"tender-watch/pkg/logger"
	"tender-watch/pkg/replication"
)

func newMigrateCommand(opts *options) *cobra.Command {
	var to string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Copy every site's state from the configured backend to another",
		Long: `Copy the seen tenders (or last-seen URL) of every configured site from
storage.backend to the backend named by --to. The target backend is
configured by the same storage section, e.g. storage.sqlite_path or
POSTGRES_DSN.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			targetCfg := cfg.Storage
			targetCfg.Backend = strings.ToLower(to)
			if targetCfg.Backend == cfg.Storage.Backend {
				return fmt.Errorf("source and target backend are both %q", targetCfg.Backend)
			}
			if err := targetCfg.Validate(); err != nil {
				return err
			}

			siteList, err := cfg.ResolveSites()
			if err != nil {
				return fmt.Errorf("failed to resolve sites: %w", err)
			}

			log, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx := cmd.Context()

			source, err := db.Open(ctx, cfg.Storage)
			if err != nil {
				return fmt.Errorf("failed to open source store: %w", err)
			}
			defer source.Close()

			target, err := db.Open(ctx, targetCfg)
			if err != nil {
				return fmt.Errorf("failed to open target store: %w", err)
			}
			defer target.Close()

			r, err := replication.NewReplicator(replication.Config{
				Source: source,
				Target: target,
				Logger: log.With(logger.String("from", cfg.Storage.Backend), logger.String("to", targetCfg.Backend)),
			})
			if err != nil {
				return err
			}

			results, err := r.ReplicateSites(ctx, siteList)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			for _, res := range results {
				switch {
				case res.Skipped:
					fmt.Fprintf(cmd.OutOrStdout(), "%-12s skipped (no state)\n", res.Site)
				case res.LastURL != "":
					fmt.Fprintf(cmd.OutOrStdout(), "%-12s last url %s\n", res.Site, res.LastURL)
				default:
					fmt.Fprintf(cmd.OutOrStdout(), "%-12s %d tenders\n", res.Site, res.Tenders)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "target backend (file, sqlite, postgres, supabase, mongo, redis)")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}
