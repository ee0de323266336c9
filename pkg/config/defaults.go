package config

import (
	"github.com/spf13/viper"
)

const (
	LogPathKey     = "log.path"
	DefaultLogPath = "~/.fixlog/transactions.log"

	AllowlistRootsKey = "allowlist.roots"

	ActorServiceKey     = "actor.service"
	DefaultActorService = "fixlog"

	ActorUserKey = "actor.user"

	LoggingFormatKey        = "logging.format"
	LoggingLevelKey         = "logging.level"
	LoggingOutputKey        = "logging.output"
	LoggingFileMaxSizeMBKey = "logging.file_max_size_mb"
	LoggingFilesKeepKey     = "logging.files_keep"

	DefaultLoggingFileMaxSizeMB = 100
	DefaultLoggingFilesKeep     = 100
)

func setDefaults() {
	viper.SetDefault(LogPathKey, DefaultLogPath)

	viper.SetDefault(ActorServiceKey, DefaultActorService)

	viper.SetDefault(LoggingFormatKey, DefaultLoggingFormat)
	viper.SetDefault(LoggingLevelKey, DefaultLoggingLevel)
	viper.SetDefault(LoggingOutputKey, DefaultLoggingOutput)
	viper.SetDefault(LoggingFileMaxSizeMBKey, DefaultLoggingFileMaxSizeMB)
	viper.SetDefault(LoggingFilesKeepKey, DefaultLoggingFilesKeep)
}
