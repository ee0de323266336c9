package cmd

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hearthos/fixlog/pkg/config"
	"github.com/hearthos/fixlog/pkg/fixer"
	"github.com/hearthos/fixlog/pkg/fsop"
	"github.com/hearthos/fixlog/pkg/logging"
	"github.com/hearthos/fixlog/pkg/version"
	"github.com/hearthos/fixlog/pkg/wal"
)

var (
	cfgFile string
	cfg     *config.Config

	// logLevel logging level, overrides the configured one when set
	logLevel string
	// logFormat logging format
	logFormat string
	// logOutputs logging outputs
	logOutputs []string
)

// rootCmd represents the base command when called without any sub-commands
var rootCmd = &cobra.Command{
	Use:   "fixlog",
	Short: "Transactional renames and enable toggles for managed config files",
	Long: `fixlog renames and enables/disables files under allowlisted directories,
journaling every step to an append-only transaction log so that interrupted
work can be detected and rolled back.`,
	Version: version.Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// flags win over whatever the configuration file set up
		if logLevel != "" {
			logging.SetLevel(logLevel)
		}
		if logFormat != "" {
			logging.SetOutputFormat(logFormat)
		}
		if len(logOutputs) > 0 {
			logging.SetOutputs(logOutputs, 0, 0)
		}
		if noColorRequested {
			DisableColors()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		DieErr(err)
	}
}

//nolint:gochecknoinits
func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default locations are ., $HOME/.fixlog and /etc/fixlog)")
	rootCmd.PersistentFlags().BoolVar(&noColorRequested, "no-color", false, "don't use fancy output colors (default when not attached to an interactive terminal)")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "", "", "set logging level")
	rootCmd.PersistentFlags().StringVarP(&logFormat, "log-format", "", "", "set logging output format")
	rootCmd.PersistentFlags().StringSliceVarP(&logOutputs, "log-output", "", []string{}, "set logging output(s)")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
		viper.AddConfigPath(".")
		viper.AddConfigPath(filepath.Join(getHomeDir(), ".fixlog"))
		viper.AddConfigPath("/etc/fixlog")
	}

	viper.SetEnvPrefix("FIXLOG")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // support nested config
	viper.AutomaticEnv()                                   // read in environment variables that match

	err := viper.ReadInConfig()
	var errFileNotFound viper.ConfigFileNotFoundError
	if err != nil && !errors.As(err, &errFileNotFound) {
		DieFmt("error reading configuration file: %v", err)
	}

	cfg, err = config.NewConfig()
	if err != nil {
		DieFmt("error loading configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		DieFmt("invalid configuration: %v", err)
	}
	if file := viper.ConfigFileUsed(); file != "" {
		logging.Default().
			WithField("file", file).
			Debug("loaded configuration from file")
	}
}

// getHomeDir find and return the home directory
func getHomeDir() string {
	home, err := homedir.Dir()
	if err != nil {
		DieErr(err)
	}
	return home
}

// getLog opens the transaction log at the configured location.
func getLog() *wal.Log {
	logPath, err := cfg.LogPath()
	if err != nil {
		DieErr(err)
	}
	return wal.Open(logPath, logging.Default())
}

// getManager composes the transaction manager from the effective configuration.
func getManager() *fixer.Manager {
	roots, err := cfg.AllowlistRoots()
	if err != nil {
		DieErr(err)
	}
	allowlist, err := fsop.NewAllowlist(roots)
	if err != nil {
		DieErr(err)
	}
	return fixer.NewManager(getLog(), allowlist, cfg.Actor(), logging.Default())
}

// applyOne runs a single operation as its own transaction and returns the
// transaction ID, dying with the operation error when it fails to apply.
func applyOne(cmd *cobra.Command, op fsop.Operation) string {
	reason := Must(cmd.Flags().GetString("reason"))
	mgr := getManager()
	txID := mgr.Begin()
	if _, err := mgr.AppendIntent(cmd.Context(), txID, 1, op, reason, nil); err != nil {
		DieErr(err)
	}
	result, err := mgr.Apply(cmd.Context(), txID)
	if err != nil {
		DieErr(err)
	}
	if !result.Success {
		DieFmt("%s failed: %s (transaction %s recorded as failed)", op.Kind(), result.Ops[0].Error, txID)
	}
	return txID
}
