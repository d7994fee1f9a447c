package main

import (
	"github.com/spf13/cobra"

	"github.com/ternarybob/finsync/internal/app"
	"github.com/ternarybob/finsync/internal/common"
)

var serveRunNow bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run synchronization on the configured schedule",
	Long:  `Starts the scheduler, which runs a synchronization cycle on sync.schedule in the market timezone until interrupted.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveRunNow, "run-now", false, "Run one cycle immediately after starting")
}

func runServe(cmd *cobra.Command, args []string) error {
	common.PrintBanner(config, logger)

	application, err := newApplication()
	if err != nil {
		return err
	}
	defer application.Close()

	if err := application.RequireToken(); err != nil {
		return err
	}

	ctx := cmd.Context()
	if err := application.StartScheduler(ctx); err != nil {
		return err
	}

	if serveRunNow {
		if err := application.SchedulerService.TriggerNow(app.SyncJobName); err != nil {
			logger.Warn().Err(err).Msg("Failed to trigger initial sync")
		}
	}

	if status, err := application.SchedulerService.GetJobStatus(app.SyncJobName); err == nil && status.NextRun != nil {
		logger.Info().
			Str("schedule", status.Schedule).
			Str("next_run", status.NextRun.Format("2006-01-02 15:04 MST")).
			Msg("Scheduler ready - Press Ctrl+C to stop")
	}

	<-ctx.Done()
	logger.Info().Msg("Interrupt signal received, shutting down")

	return nil
}
