package main

import (
	"github.com/aretw0/leadchat/internal/cli"
	"github.com/spf13/cobra"
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Inspect the visitor ledger",
	Long:  `Show, sweep and export the entries the widget keeps in its persistent ledger.`,
}

var ledgerShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print every ledger entry",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.ShowLedger(cmd.Context(), ledgerOptions(cmd), cmd.OutOrStdout())
	},
}

var ledgerSweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Remove expired entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.SweepLedger(cmd.Context(), ledgerOptions(cmd), cmd.OutOrStdout())
	},
}

var ledgerBackupsCmd = &cobra.Command{
	Use:   "backups",
	Short: "Print the local lead backups",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.ListBackups(cmd.Context(), ledgerOptions(cmd), cmd.OutOrStdout())
	},
}

func ledgerOptions(cmd *cobra.Command) cli.LedgerOptions {
	config, debug := globalOptions(cmd)
	return cli.LedgerOptions{
		ConfigPath: config,
		Debug:      debug,
		Storage:    storageOptions(cmd),
	}
}

func init() {
	rootCmd.AddCommand(ledgerCmd)
	for _, c := range []*cobra.Command{ledgerShowCmd, ledgerSweepCmd, ledgerBackupsCmd} {
		addStorageFlags(c)
		ledgerCmd.AddCommand(c)
	}
}
