package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "leadchat",
	Short: "leadchat is a scripted lead-capture chat that hands visitors off to WhatsApp",
	Long: `leadchat plays a scripted conversation that collects a visitor's name, email and phone,
records consent, delivers the lead to the configured sinks and hands the visitor off to
the WhatsApp app or web client.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("config", "c", "", "Widget configuration file (YAML or JSON)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
}
