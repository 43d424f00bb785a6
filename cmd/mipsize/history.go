package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/pevans/mipsize/config"
	"github.com/pevans/mipsize/history"
	"github.com/spf13/cobra"
)

// NewHistoryCmd creates the history command and its subcommands.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect recorded lookups",
		Long: `History reads the lookup database written by "resolve --history" and by
the API server. The database location comes from history.dsn in the config
file, MIPSIZE_HISTORY_DSN, or --history-dsn.`,
	}

	cmd.PersistentFlags().String("history-dsn", "", "Lookup history database (MIPSIZE_HISTORY_DSN)")

	cmd.AddCommand(newHistoryListCmd())
	cmd.AddCommand(newHistoryShowCmd())
	cmd.AddCommand(newHistoryClearCmd())

	return cmd
}

func newHistoryListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded lookups, newest first",
		Args:  cobra.NoArgs,
		RunE:  runHistoryListCmd,
	}

	cmd.Flags().IntP("limit", "n", 20, "Maximum number of lookups to show (0 for all)")
	cmd.Flags().String("model", "", "Only show lookups for this model")
	cmd.Flags().Bool("failed", false, "Only show failed lookups")
	cmd.Flags().StringP("format", "f", "text", "Output format: text, json or yaml")

	return cmd
}

func newHistoryShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <lookup-id>",
		Short: "Show a single lookup",
		Args:  cobra.ExactArgs(1),
		RunE:  runHistoryShowCmd,
	}
}

func newHistoryClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every recorded lookup",
		Args:  cobra.NoArgs,
		RunE:  runHistoryClearCmd,
	}
}

// openHistoryFromCmd resolves the history database location for cmd.
func openHistoryFromCmd(cmd *cobra.Command) (*history.LookupStore, error) {
	settings, err := config.Load()
	if err != nil {
		return nil, err
	}

	dsn := settings.HistoryDSN
	if cmd.Flags().Changed("history-dsn") {
		dsn, _ = cmd.Flags().GetString("history-dsn")
	}

	return openHistory(dsn)
}

func runHistoryListCmd(cmd *cobra.Command, _ []string) error {
	format, _ := cmd.Flags().GetString("format")
	if !validFormat(format) {
		return fmt.Errorf("unknown format %q: use text, json or yaml", format)
	}

	limit, _ := cmd.Flags().GetInt("limit")
	if limit < 0 {
		return fmt.Errorf("--limit must not be negative")
	}

	filter := history.LookupFilter{Limit: limit}
	if cmd.Flags().Changed("model") {
		model, _ := cmd.Flags().GetString("model")
		filter.Model = &model
	}
	if failed, _ := cmd.Flags().GetBool("failed"); failed {
		filter.Failed = &failed
	}

	store, err := openHistoryFromCmd(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	lookups, err := store.List(filter)
	if err != nil {
		return err
	}

	total, err := store.Count(filter)
	if err != nil {
		return err
	}

	if format != "text" {
		return printStructured(cmd.OutOrStdout(), history.ListLookupsResponse{
			Lookups: lookups,
			Total:   total,
		}, format)
	}

	printLookupTable(cmd.OutOrStdout(), lookups, total)
	return nil
}

func runHistoryShowCmd(cmd *cobra.Command, args []string) error {
	lookupID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid lookup ID: %w", err)
	}

	store, err := openHistoryFromCmd(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	lookup, err := store.Get(lookupID)
	if err != nil {
		return err
	}

	printLookupDetail(cmd.OutOrStdout(), lookup)
	return nil
}

func runHistoryClearCmd(cmd *cobra.Command, _ []string) error {
	store, err := openHistoryFromCmd(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	removed, err := store.Clear()
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed %d lookups\n", removed)
	return nil
}
