package cmd

import (
	"github.com/spf13/cobra"

	"github.com/hearthos/fixlog/pkg/fsop"
)

// disableCmd represents the disable command
// fixlog disable /srv/devices/thermostat.yaml
var disableCmd = &cobra.Command{
	Use:   "disable <target path>",
	Short: "Disable a component by parking its target path aside",
	Long:  `Disable moves <target path> to <target path>` + fsop.DisabledSuffix + `.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		target := args[0]
		op := fsop.NewSetEnabled(target, true, false)
		txID := applyOne(cmd, op)
		Fmt("Disabled '%s' (transaction %s)\n", target, txID)
	},
}

//nolint:gochecknoinits
func init() {
	disableCmd.Flags().String("reason", "", "reason recorded on the intent")

	rootCmd.AddCommand(disableCmd)
}
