package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hearthos/fixlog/pkg/wal"
)

const txShowTemplate = `Transaction: {{.TxID|bold}}
State: {{.State}}
{{.Table | table -}}
`

var txShowCmd = &cobra.Command{
	Use:   "show <transaction ID>",
	Short: "Show every record of one transaction",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		txID := args[0]
		log := getLog()
		records, err := log.TxRecords(txID)
		if err != nil {
			DieErr(err)
		}
		if len(records) == 0 {
			DieFmt("transaction %s not found", txID)
		}
		rows := make([][]interface{}, len(records))
		for i, rec := range records {
			op := ""
			if rec.Op != nil {
				op = fmt.Sprintf("%s %s", rec.Op.Kind, rec.Op.Target)
			}
			detail := rec.Reason
			if rec.Error != nil {
				detail = fmt.Sprintf("%s: %s", rec.Error.Name, rec.Error.Message)
			}
			rows[i] = []interface{}{rec.Seq, string(rec.Type), rec.Timestamp.Format(time.RFC3339), op, detail}
		}
		ctx := struct {
			TxID  string
			State string
			Table *Table
		}{
			TxID:  txID,
			State: coloredState(wal.DeriveState(records)),
			Table: &Table{
				Headers: []interface{}{"Seq", "Type", "Time", "Operation", "Detail"},
				Rows:    rows,
			},
		}
		Write(txShowTemplate, ctx)
	},
}

//nolint:gochecknoinits
func init() {
	txCmd.AddCommand(txShowCmd)
}
