package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// configCmd groups the commands that inspect fixlog configuration.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect fixlog configuration",
}

// configShowCmd prints the configuration the process actually runs with,
// after defaults, file values and environment variables are merged.
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if file := viper.ConfigFileUsed(); file != "" {
			Fmt("# %s\n", file)
		}
		out, err := yaml.Marshal(viper.AllSettings())
		if err != nil {
			DieErr(err)
		}
		Fmt("%s", out)
	},
}

//nolint:gochecknoinits
func init() {
	configCmd.AddCommand(configShowCmd)

	rootCmd.AddCommand(configCmd)
}
