package main

import (
	"fmt"

	"github.com/pevans/mipsize/autosize"
	"github.com/spf13/cobra"
)

// NewResolveCmd creates the resolve command.
func NewResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve <path>...",
		Short: "Print the variable count of the models named by log files",
		Long: `Resolve takes log file paths named <model>-init.csv and prints the
variable count MIPLIB reports for each model. The files themselves are never
opened; only their names are used.

With a single path in text format only the count is printed. Failures go to
stderr and make the command exit non-zero.

Examples:
  mipsize resolve /data/logs/markshare_4_0-init.csv
  mipsize resolve --format json logs/*-init.csv`,
		Args: cobra.MinimumNArgs(1),
		RunE: runResolveCmd,
	}

	cmd.Flags().StringP("format", "f", "text", "Output format: text, json or yaml")
	cmd.Flags().IntP("concurrency", "c", autosize.DefaultConcurrency, "Lookups in flight at once (MIPSIZE_CONCURRENCY)")
	cmd.Flags().Bool("history", false, "Record lookups in the history database")
	addCatalogFlags(cmd)

	return cmd
}

// runResolveCmd executes the resolve command.
func runResolveCmd(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	if !validFormat(format) {
		return fmt.Errorf("unknown format %q: use text, json or yaml", format)
	}

	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if settings.Concurrency <= 0 {
		return fmt.Errorf("--concurrency must be positive")
	}

	resolver := newResolver(settings)
	outcomes := resolver.ResolveAll(cmd.Context(), args, settings.Concurrency)

	if settings.HistoryEnabled {
		store, err := openHistory(settings.HistoryDSN)
		if err != nil {
			return err
		}
		defer store.Close()

		for _, outcome := range outcomes {
			if _, err := store.Record(outcome.Path, outcome.Resolution, outcome.Err); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: failed to record lookup for %s: %v\n", outcome.Path, err)
			}
		}
	}

	if err := printOutcomes(cmd.OutOrStdout(), cmd.ErrOrStderr(), outcomes, format); err != nil {
		return err
	}

	failed := 0
	for _, outcome := range outcomes {
		if outcome.Err != nil {
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d lookups failed", failed, len(outcomes))
	}

	return nil
}
