package main

import (
	"os"

	"github.com/aretw0/leadchat/internal/cli"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Chat with the widget in the terminal",
	Long: `Loads one page with the configured widget and plays the conversation on stdin/stdout.
Commands such as /consent, /app and /web stand in for the widget's buttons; /help lists them.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		config, debug := globalOptions(cmd)
		jsonMode, _ := cmd.Flags().GetBool("json")
		quiet, _ := cmd.Flags().GetBool("quiet")
		url, _ := cmd.Flags().GetString("url")
		title, _ := cmd.Flags().GetString("title")
		referrer, _ := cmd.Flags().GetString("referrer")
		userAgent, _ := cmd.Flags().GetString("user-agent")
		mobile, _ := cmd.Flags().GetBool("mobile")
		startClosed, _ := cmd.Flags().GetBool("start-closed")
		metricsAddr, _ := cmd.Flags().GetString("metrics-addr")

		return cli.RunSession(cmd.Context(), cli.RunOptions{
			ConfigPath:  config,
			Debug:       debug,
			JSON:        jsonMode,
			Quiet:       quiet,
			Storage:     storageOptions(cmd),
			URL:         url,
			Title:       title,
			Referrer:    referrer,
			UserAgent:   userAgent,
			Mobile:      mobile,
			StartClosed: startClosed,
			MetricsAddr: metricsAddr,
		}, os.Stdin, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("json", false, "Run in JSON mode (NDJSON input/output)")
	runCmd.Flags().BoolP("quiet", "q", false, "Plain output without banner or markdown rendering")
	runCmd.Flags().String("url", "", "Page URL the visitor lands on, including campaign parameters")
	runCmd.Flags().String("title", "", "Page title")
	runCmd.Flags().String("referrer", "", "Referring page")
	runCmd.Flags().String("user-agent", "", "Visitor user agent")
	runCmd.Flags().Bool("mobile", false, "Treat the visitor as a mobile device")
	runCmd.Flags().Bool("start-closed", false, "Keep the chat closed until /open so notifications play")
	runCmd.Flags().String("metrics-addr", "", "Serve /metrics and /healthz on this address")
	addStorageFlags(runCmd)

	rootCmd.RunE = runCmd.RunE
	rootCmd.Flags().AddFlagSet(runCmd.Flags())
}
