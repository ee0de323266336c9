package cmd

import (
	"github.com/spf13/cobra"
)

// txAbortCmd represents the tx abort command
// fixlog tx abort 20250101000000aaaaaaaa --reason "device decommissioned"
var txAbortCmd = &cobra.Command{
	Use:   "abort <transaction ID>",
	Short: "Mark an in-flight transaction aborted without touching any file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		txID := args[0]
		reason := Must(cmd.Flags().GetString("reason"))
		mgr := getManager()
		if err := mgr.Abort(cmd.Context(), txID, reason); err != nil {
			DieErr(err)
		}
		Fmt("Transaction '%s' aborted\n", txID)
	},
}

//nolint:gochecknoinits
func init() {
	txAbortCmd.Flags().String("reason", "", "reason recorded on the abort records")

	txCmd.AddCommand(txAbortCmd)
}
