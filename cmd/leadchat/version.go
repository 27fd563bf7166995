package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/leadchat"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of leadchat",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("leadchat version %s\n", strings.TrimSpace(leadchat.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
