package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tender-watch/pkg/db"
	"tender-watch/pkg/domain"
	"tender-watch/pkg/httpclient"
	"tender-watch/pkg/logger"
	"tender-watch/pkg/notify"
	"tender-watch/pkg/pipeline"
)

type runOptions struct {
	*options
	dryRun bool
	sites  []string
}

func newRunCommand(opts *options) *cobra.Command {
	ro := &runOptions{options: opts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Check every site once and email new tenders",
		Long: `Fetch every configured site, extract its tenders, email the ones not seen
before and record them. A failing site is logged and skipped; the command
still exits zero. Configuration errors exit non-zero before any site is
processed.`,
		Args: cobra.NoArgs,
		RunE: ro.run,
	}

	cmd.Flags().BoolVar(&ro.dryRun, "dry-run", false, "log notifications instead of sending them")
	cmd.Flags().StringSliceVar(&ro.sites, "site", nil, "only process the named site (repeatable)")

	return cmd
}

func (ro *runOptions) run(cmd *cobra.Command, _ []string) error {
	cfg, err := ro.loadConfig()
	if err != nil {
		return err
	}
	if !ro.dryRun {
		if err := cfg.ValidateMail(); err != nil {
			return err
		}
	}

	siteList, err := cfg.ResolveSites()
	if err != nil {
		return fmt.Errorf("failed to resolve sites: %w", err)
	}
	siteList, err = selectSites(siteList, ro.sites)
	if err != nil {
		return err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx := cmd.Context()

	store, err := db.Open(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to open %s state store: %w", cfg.Storage.Backend, err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Warn("Error closing state store", logger.Error(err))
		}
	}()

	var notifier notify.Notifier
	if ro.dryRun {
		// nothing is sent, so nothing may be recorded as seen
		store = db.ReadOnly(store)
		notifier = notify.NewLogNotifier(log)
	} else {
		notifier, err = notify.NewSMTPNotifier(cfg.Mail)
		if err != nil {
			return fmt.Errorf("failed to create notifier: %w", err)
		}
	}

	log.Info("Checking sites",
		logger.String("backend", cfg.Storage.Backend),
		logger.Bool("dry_run", ro.dryRun),
	)

	p := pipeline.NewPipeline(siteList, httpclient.NewPool(cfg.FetchTimeout), store, notifier, log)
	report := p.Run(ctx)

	for _, result := range report.Results {
		fmt.Fprintf(cmd.OutOrStdout(), "%-12s %-15s found=%d new=%d\n", result.Site, result.Status, result.Found, len(result.New))
	}
	return nil
}

// selectSites keeps only the sites named in names (case-insensitive)
func selectSites(all []domain.Site, names []string) ([]domain.Site, error) {
	if len(names) == 0 {
		return all, nil
	}

	byName := make(map[string]domain.Site, len(all))
	for _, s := range all {
		byName[strings.ToLower(s.Name)] = s
	}

	selected := make([]domain.Site, 0, len(names))
	for _, name := range names {
		s, ok := byName[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return nil, fmt.Errorf("unknown site %q", name)
		}
		selected = append(selected, s)
	}
	return selected, nil
}
