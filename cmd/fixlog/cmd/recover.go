package cmd

import (
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/hearthos/fixlog/pkg/fixer"
)

const recoverTemplate = `Recovery run: {{.RunID|bold}}
{{.Table | table -}}
`

// recoverCmd represents the recover command
// fixlog recover
var recoverCmd = &cobra.Command{
	Use:   "recover",
	Short: "Roll back every in-flight transaction left behind by a crash",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		mgr := getManager()
		report, err := mgr.Recover(cmd.Context())
		if report != nil {
			printRecoveryReport(report)
		}
		if err != nil {
			DieErr(err)
		}
	},
}

func printRecoveryReport(report *fixer.RecoveryReport) {
	if len(report.Found) == 0 {
		Fmt("No in-flight transactions\n")
		return
	}
	rolledBack := make(map[string]bool, len(report.RolledBack))
	for _, txID := range report.RolledBack {
		rolledBack[txID] = true
	}
	failed := make(map[string]string, len(report.Failed))
	for _, f := range report.Failed {
		failed[f.TxID] = f.Err.Error()
	}
	rows := make([][]interface{}, len(report.Found))
	for i, txID := range report.Found {
		result, detail := text.FgHiYellow.Sprint("skipped"), ""
		if rolledBack[txID] {
			result = text.FgHiGreen.Sprint("rolled back")
		} else if msg, ok := failed[txID]; ok {
			result, detail = text.FgHiRed.Sprint("failed"), msg
		}
		rows[i] = []interface{}{txID, result, detail}
	}
	ctx := struct {
		RunID string
		Table *Table
	}{
		RunID: report.RunID,
		Table: &Table{
			Headers: []interface{}{"Transaction", "Result", "Detail"},
			Rows:    rows,
		},
	}
	Write(recoverTemplate, ctx)
}

//nolint:gochecknoinits
func init() {
	rootCmd.AddCommand(recoverCmd)
}
