package cmd

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hearthos/fixlog/pkg/fsop"
)

// renameCmd represents the rename command
// fixlog rename /srv/devices/old.yaml /srv/devices/new.yaml
var renameCmd = &cobra.Command{
	Use:   "rename <before path> <after path>",
	Short: "Rename a file inside the allowlist as a logged transaction",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		before, after := args[0], args[1]
		op := fsop.NewRename(filepath.Base(before), before, after)
		txID := applyOne(cmd, op)
		Fmt("Renamed '%s' to '%s' (transaction %s)\n", before, after, txID)
	},
}

//nolint:gochecknoinits
func init() {
	renameCmd.Flags().String("reason", "", "reason recorded on the intent")

	rootCmd.AddCommand(renameCmd)
}
