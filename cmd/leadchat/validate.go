package main

import (
	"fmt"

	"github.com/aretw0/leadchat/internal/cli"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [config]",
	Short: "Check a widget configuration",
	Long:  `Loads the configuration, reports validation problems and prints the resolved step script.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := globalOptions(cmd)
		if len(args) > 0 {
			path = args[0]
		}
		if _, err := cli.ValidateConfig(path, cmd.OutOrStdout()); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Configuration is valid!")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
