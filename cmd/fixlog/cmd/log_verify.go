package cmd

import (
	"github.com/spf13/cobra"

	"github.com/hearthos/fixlog/pkg/wal"
)

const logVerifyTemplate = `Log: {{.Path}} ({{.FileSize|human_bytes}})
Lines: {{.TotalLines}} total, {{.ValidRecords}} valid, {{.CorruptLines}} corrupt{{if .PartialTail}}, partial trailing line{{end}}
Transactions: {{.Transactions}}{{if .HasSpan}} between {{.FirstTime|date}} and {{.LastTime|date}}{{end}}
{{if .Table.Rows}}{{.Table | table -}}
{{end}}{{if .Errors}}{{"Problems:"|red}}
{{range .Errors}}  {{.}}
{{end}}{{end}}`

// logVerifyCmd represents the log verify command
// fixlog log verify
var logVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Scan the transaction log and report integrity problems",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		log := getLog()
		report, err := log.Verify()
		if err != nil {
			DieErr(err)
		}
		printVerifyReport(log.Path(), report)
		if !report.Clean() {
			DieFmt("transaction log failed verification")
		}
	},
}

// verifyStateOrder fixes the display order to the transaction lifecycle.
var verifyStateOrder = []wal.TxState{
	wal.TxStateInFlight,
	wal.TxStateApplied,
	wal.TxStateFailed,
	wal.TxStateAborted,
	wal.TxStateRolledBack,
	wal.TxStateUnknown,
}

func printVerifyReport(path string, report *wal.VerifyReport) {
	rows := make([][]interface{}, 0, len(report.States))
	for _, state := range verifyStateOrder {
		if count := report.States[state]; count > 0 {
			rows = append(rows, []interface{}{coloredState(state), count})
		}
	}
	ctx := struct {
		*wal.VerifyReport
		Path    string
		HasSpan bool
		Table   *Table
	}{
		VerifyReport: report,
		Path:         path,
		HasSpan:      report.ValidRecords > 0,
		Table: &Table{
			Headers: []interface{}{"State", "Transactions"},
			Rows:    rows,
		},
	}
	Write(logVerifyTemplate, ctx)
}

//nolint:gochecknoinits
func init() {
	logCmd.AddCommand(logVerifyCmd)
}
