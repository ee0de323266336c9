package cmd

import (
	"github.com/spf13/cobra"
)

// txRollbackCmd represents the tx rollback command
// fixlog tx rollback 20250101000000aaaaaaaa
var txRollbackCmd = &cobra.Command{
	Use:   "rollback <transaction ID>",
	Short: "Roll back a transaction by applying inverses newest first",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		txID := args[0]
		confirmation, err := Confirm(cmd.Flags(), "Are you sure you want to roll back transaction: "+txID)
		if err != nil || !confirmation {
			DieFmt("Rollback of transaction '%s' cancelled\n", txID)
		}
		mgr := getManager()
		if err := mgr.Rollback(cmd.Context(), txID); err != nil {
			DieErr(err)
		}
		Fmt("Transaction '%s' rolled back\n", txID)
	},
}

//nolint:gochecknoinits
func init() {
	AssignAutoConfirmFlag(txRollbackCmd.Flags())

	txCmd.AddCommand(txRollbackCmd)
}
