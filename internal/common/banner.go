package common

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/banner"
)

// PrintBanner displays the application banner and logs the resolved configuration
func PrintBanner(config *Config, logger arbor.ILogger) {
	banner.Print("FinSync", GetVersion())

	logger.Info().
		Str("version", GetFullVersion()).
		Str("environment", config.Environment).
		Str("storage_type", config.Storage.Type).
		Str("data_dir", config.Storage.File.Dir).
		Str("state_file", config.StateFilePath()).
		Str("log_level", config.Logging.Level).
		Msg("FinSync starting")
}
