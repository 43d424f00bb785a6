package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/pevans/mipsize/autosize"
	"github.com/pevans/mipsize/config"
	"github.com/pevans/mipsize/history"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for mipsize.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mipsize",
		Short: "Look up MIPLIB model sizes from log file names",
		Long: `mipsize derives a model name from a log file called <model>-init.csv,
fetches the model's instance page from the MIPLIB catalog and reports its
variable count.

Settings come from ~/.mipsize/config.yaml and MIPSIZE_* environment
variables; command flags take precedence over both.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(NewResolveCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// addCatalogFlags registers the flags overriding catalog settings.
func addCatalogFlags(cmd *cobra.Command) {
	cmd.Flags().String("catalog-url", "", "Catalog base URL (MIPSIZE_CATALOG_URL)")
	cmd.Flags().Duration("timeout", 0, "Per-request timeout, 0 keeps the client default (MIPSIZE_CATALOG_TIMEOUT)")
	cmd.Flags().String("history-dsn", "", "Record lookups in this SQLite database (MIPSIZE_HISTORY_DSN)")
}

// loadSettings reads config file and environment, then applies any flags
// set on cmd.
func loadSettings(cmd *cobra.Command) (*config.Settings, error) {
	settings, err := config.Load()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()

	if flags.Changed("catalog-url") {
		settings.CatalogURL, _ = flags.GetString("catalog-url")
	}
	if flags.Changed("timeout") {
		settings.Timeout, _ = flags.GetDuration("timeout")
	}
	if flags.Changed("concurrency") {
		settings.Concurrency, _ = flags.GetInt("concurrency")
	}
	if flags.Changed("history") {
		settings.HistoryEnabled, _ = flags.GetBool("history")
	}
	if flags.Changed("history-dsn") {
		settings.HistoryDSN, _ = flags.GetString("history-dsn")
		settings.HistoryEnabled = true
	}
	if flags.Changed("addr") {
		settings.ServerAddr, _ = flags.GetString("addr")
	}

	return settings, nil
}

// newResolver builds a resolver for the configured catalog.
func newResolver(settings *config.Settings) *autosize.Resolver {
	var client *http.Client
	if settings.Timeout > 0 {
		client = &http.Client{Timeout: settings.Timeout}
	}

	return autosize.NewResolver(autosize.NewCatalogClient(settings.CatalogURL, client))
}

// openHistory opens the lookup store, creating its directory if needed.
func openHistory(dsn string) (*history.LookupStore, error) {
	if dir := filepath.Dir(dsn); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	store, err := history.NewLookupStore(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}

	return store, nil
}
