package cmd

import (
	"github.com/spf13/cobra"
)

// txCmd groups the commands that inspect and resolve recorded transactions.
var txCmd = &cobra.Command{
	Use:   "tx",
	Short: "Inspect and resolve recorded transactions",
}

//nolint:gochecknoinits
func init() {
	rootCmd.AddCommand(txCmd)
}
