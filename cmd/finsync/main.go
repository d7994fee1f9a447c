// -----------------------------------------------------------------------
// Last Modified: Monday, 12th October 2026 4:30:00 pm
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/finsync/internal/app"
	"github.com/ternarybob/finsync/internal/common"
)

var (
	// Command-line flags
	configFiles []string // Multiple --config flags supported
	dataDir     string
	logLevel    string

	// Global state
	config *common.Config
	logger arbor.ILogger
)

var rootCmd = &cobra.Command{
	Use:           "finsync",
	Short:         "Financial statement cache and growth analytics",
	Long:          `FinSync keeps a local cache of J-Quants financial statements up to date and derives standalone-quarter values and growth metrics from it.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}
		return loadConfiguration()
	},
}

func init() {
	rootCmd.PersistentFlags().StringArrayVarP(&configFiles, "config", "c", nil, "Configuration file path (can be specified multiple times, later files override earlier ones)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Record directory (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: trace, debug, info, warn, error (overrides config)")

	rootCmd.AddCommand(syncCmd, analyzeCmd, listCmd, statusCmd, serveCmd, versionCmd)
}

func main() {
	defer common.RecoverWithCrashFile()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if logger != nil {
			logger.Error().Err(err).Msg("Command failed")
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		stop()
		os.Exit(1)
	}
}

// loadConfiguration runs the startup sequence (REQUIRED ORDER):
// 1. Load config (defaults -> file1 -> file2 -> ... -> env)
// 2. Apply CLI overrides (highest priority)
// 3. Validate
// 4. Initialize logger
func loadConfiguration() error {
	// Auto-discover config file if not specified
	if len(configFiles) == 0 {
		if _, err := os.Stat("finsync.toml"); err == nil {
			configFiles = append(configFiles, "finsync.toml")
		} else if _, err := os.Stat("deployments/local/finsync.toml"); err == nil {
			configFiles = append(configFiles, "deployments/local/finsync.toml")
		}
	}

	var err error
	config, err = common.LoadFromFiles(configFiles...)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	common.ApplyFlagOverrides(config, dataDir, logLevel)

	if err := config.Validate(); err != nil {
		return err
	}

	logger = common.SetupLogger(config)
	common.InstallCrashHandler(config.Logging.Dir)

	logger.Debug().
		Strs("config_files", configFiles).
		Str("storage_type", config.Storage.Type).
		Str("data_dir", config.Storage.File.Dir).
		Str("log_level", config.Logging.Level).
		Strs("markets", config.Sync.Markets).
		Msg("Resolved configuration (sanitized)")

	return nil
}

// newApplication initializes the application from the loaded configuration
func newApplication() (*app.App, error) {
	application, err := app.New(config, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize application: %w", err)
	}
	return application, nil
}
