package cmd

import (
	"time"

	"github.com/spf13/cobra"
)

var txListCmd = &cobra.Command{
	Use:   "list",
	Short: "List transactions recorded in the log",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		log := getLog()
		summaries, err := log.ListTransactions()
		if err != nil {
			DieErr(err)
		}
		rows := make([][]interface{}, len(summaries))
		for i, tx := range summaries {
			rows[i] = []interface{}{tx.ID, coloredState(tx.State), tx.Ops, tx.LastTime.Format(time.RFC3339)}
		}
		PrintTable(rows, []interface{}{"Transaction", "State", "Ops", "Updated"})
	},
}

//nolint:gochecknoinits
func init() {
	txCmd.AddCommand(txListCmd)
}
