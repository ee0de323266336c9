package config

import (
	"github.com/spf13/viper"

	"github.com/hearthos/fixlog/pkg/logging"
)

const (
	DefaultLoggingFormat = "text"
	DefaultLoggingLevel  = "INFO"
	DefaultLoggingOutput = "-"
)

func setupLogger() {
	// set output format
	logging.SetOutputFormat(viper.GetString(LoggingFormatKey))

	// set outputs
	logging.SetOutputs(viper.GetStringSlice(LoggingOutputKey),
		viper.GetInt(LoggingFileMaxSizeMBKey), viper.GetInt(LoggingFilesKeepKey))

	// set level
	logging.SetLevel(viper.GetString(LoggingLevelKey))
}
