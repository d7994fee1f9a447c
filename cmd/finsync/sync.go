package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/ternarybob/finsync/internal/common"
	"github.com/ternarybob/finsync/internal/models"
)

var syncCmd = &cobra.Command{
	Use:   "sync [code...]",
	Short: "Bring the statement cache up to date",
	Long: `Runs one synchronization cycle: decides from the freshness state whether a full,
date-range or same-day resync is needed and fetches only what changed.

With codes given, those securities are re-fetched unconditionally and the
freshness state is left untouched.`,
	RunE: runSync,
}

func runSync(cmd *cobra.Command, args []string) error {
	common.PrintBanner(config, logger)

	application, err := newApplication()
	if err != nil {
		return err
	}
	defer application.Close()

	if err := application.RequireToken(); err != nil {
		return err
	}

	var result *models.SyncResult
	if len(args) > 0 {
		result, err = application.SyncService.RefreshSymbols(cmd.Context(), args)
	} else {
		result, err = application.SyncService.Run(cmd.Context(), application.Today())
	}

	if result != nil {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if encErr := encoder.Encode(result); encErr != nil {
			logger.Warn().Err(encErr).Msg("Failed to write sync result")
		}
	}

	return err
}
