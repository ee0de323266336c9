package config

import (
	"errors"
	"fmt"
	"os"
	"os/user"
	"reflect"

	"github.com/go-viper/mapstructure/v2"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/hearthos/fixlog/pkg/wal"
)

var (
	ErrBadConfiguration = errors.New("bad configuration")
	ErrMissingLogPath   = fmt.Errorf("%w: log.path cannot be empty", ErrBadConfiguration)
)

// configuration is the viper-facing shape of the config file.  Access goes
// through Config so callers get expanded paths and filled-in actor identity.
type configuration struct {
	Log struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"log"`
	Allowlist struct {
		Roots Strings `mapstructure:"roots"`
	} `mapstructure:"allowlist"`
	Actor struct {
		Service string `mapstructure:"service"`
		User    string `mapstructure:"user"`
	} `mapstructure:"actor"`
	Logging struct {
		Format        string  `mapstructure:"format"`
		Level         string  `mapstructure:"level"`
		Output        Strings `mapstructure:"output"`
		FileMaxSizeMB int     `mapstructure:"file_max_size_mb"`
		FilesKeep     int     `mapstructure:"files_keep"`
	} `mapstructure:"logging"`
}

type Config struct {
	values configuration
}

func NewConfig() (*Config, error) {
	c := &Config{}

	// Inform viper of all expected fields.  Otherwise, it fails to deserialize from the
	// environment.
	keys := GetStructKeys(reflect.TypeOf(c.values), "mapstructure", "squash")
	for _, key := range keys {
		viper.SetDefault(key, nil)
	}

	setDefaults()
	setupLogger()

	err := viper.UnmarshalExact(&c.values, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			DecodeStrings, mapstructure.StringToTimeDurationHookFunc())))
	if err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Config) Validate() error {
	if c.values.Log.Path == "" {
		return ErrMissingLogPath
	}
	return nil
}

// LogPath returns the transaction log location with a leading ~ expanded.
func (c *Config) LogPath() (string, error) {
	path, err := homedir.Expand(c.values.Log.Path)
	if err != nil {
		return "", fmt.Errorf("expand log path %s: %w", c.values.Log.Path, err)
	}
	return path, nil
}

// AllowlistRoots returns the configured allowlist roots, each with a leading
// ~ expanded.  An empty result means no mutation is permitted anywhere.
func (c *Config) AllowlistRoots() ([]string, error) {
	roots := make([]string, 0, len(c.values.Allowlist.Roots))
	for _, root := range c.values.Allowlist.Roots {
		expanded, err := homedir.Expand(root)
		if err != nil {
			return nil, fmt.Errorf("expand allowlist root %s: %w", root, err)
		}
		roots = append(roots, expanded)
	}
	return roots, nil
}

// Actor returns the identity stamped on every appended record.  Host always
// comes from the running machine; user falls back to the OS user when not
// configured.
func (c *Config) Actor() wal.Actor {
	actor := wal.Actor{
		Service: c.values.Actor.Service,
		User:    c.values.Actor.User,
		Host:    "localhost",
	}
	if host, err := os.Hostname(); err == nil {
		actor.Host = host
	}
	if actor.User == "" {
		if u, err := user.Current(); err == nil {
			actor.User = u.Username
		}
	}
	return actor
}

func (c *Config) LoggingLevel() string {
	return c.values.Logging.Level
}
