package main

import (
	"fmt"

	"github.com/pevans/mipsize/config"
	"github.com/spf13/cobra"
)

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Long: `Init writes ~/.mipsize/config.yaml with the default settings so they can be
edited. An existing file is left alone unless --force is given.`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().BoolP("force", "f", false, "Overwrite an existing configuration file")

	return cmd
}

func runInitCmd(cmd *cobra.Command, _ []string) error {
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	configPath, err := config.ConfigFilePath()
	if err != nil {
		return err
	}

	created, err := config.WriteDefaultConfigFile(force)
	if err != nil {
		return err
	}

	if !created {
		fmt.Fprintf(cmd.OutOrStdout(), "Config file: %s (already exists, use --force to overwrite)\n", configPath)
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Config file: %s\n", configPath)
	return nil
}
