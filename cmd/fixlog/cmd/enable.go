package cmd

import (
	"github.com/spf13/cobra"

	"github.com/hearthos/fixlog/pkg/fsop"
)

// enableCmd represents the enable command
// fixlog enable /srv/devices/thermostat.yaml
var enableCmd = &cobra.Command{
	Use:   "enable <target path>",
	Short: "Enable a component by restoring its target path",
	Long: `Enable moves <target path>` + fsop.DisabledSuffix + ` back to <target path>.
A target that was never created before is created empty.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		target := args[0]
		op := fsop.NewSetEnabled(target, false, true)
		txID := applyOne(cmd, op)
		Fmt("Enabled '%s' (transaction %s)\n", target, txID)
	},
}

//nolint:gochecknoinits
func init() {
	enableCmd.Flags().String("reason", "", "reason recorded on the intent")

	rootCmd.AddCommand(enableCmd)
}
