package cmd

import (
	"github.com/spf13/cobra"
)

// logCmd groups the commands that operate on the transaction log file itself.
var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Operate on the transaction log file",
}

//nolint:gochecknoinits
func init() {
	rootCmd.AddCommand(logCmd)
}
