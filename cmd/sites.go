package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"tender-watch/pkg/sites"
)

func newSitesCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "sites",
		Short: "List the configured sites and available extractors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tEXTRACTOR\tVARIANT\tSTATE\tURL")
			for _, s := range cfg.Sites {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", s.Name, s.Extractor, s.Variant, s.State, s.URL)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "\nextractors: %v\n", sites.Names())
			return nil
		},
	}
}
