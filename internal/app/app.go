// -----------------------------------------------------------------------
// Last Modified: Monday, 12th October 2026 4:05:00 pm
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package app

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/finsync/internal/common"
	"github.com/ternarybob/finsync/internal/interfaces"
	"github.com/ternarybob/finsync/internal/jquants"
	"github.com/ternarybob/finsync/internal/services/analysis"
	"github.com/ternarybob/finsync/internal/services/freshness"
	"github.com/ternarybob/finsync/internal/services/scheduler"
	syncsvc "github.com/ternarybob/finsync/internal/services/sync"
	"github.com/ternarybob/finsync/internal/storage"
)

// SyncJobName is the scheduler job that runs a synchronization cycle
const SyncJobName = "statement_sync"

// App holds all application components and dependencies
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	StorageManager interfaces.StorageManager

	// Remote API
	Client *jquants.Client

	// Domain services
	Tracker         *freshness.Tracker
	SyncService     *syncsvc.Service
	AnalysisService *analysis.Service

	// Scheduling
	SchedulerService *scheduler.Service
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	if err := app.initStorage(); err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	if err := app.initServices(); err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	logger.Debug().
		Str("storage_type", cfg.Storage.Type).
		Str("base_url", cfg.JQuants.BaseURL).
		Bool("token_configured", cfg.JQuants.IDToken != "").
		Msg("Application initialization complete")

	return app, nil
}

// initStorage initializes the record store and freshness state backends
func (a *App) initStorage() error {
	storageManager, err := storage.NewStorageManager(a.Logger, a.Config)
	if err != nil {
		return fmt.Errorf("failed to create storage manager: %w", err)
	}
	a.StorageManager = storageManager

	a.Logger.Debug().
		Str("storage", a.Config.Storage.Type).
		Str("state_file", a.Config.StateFilePath()).
		Msg("Storage layer initialized")

	return nil
}

// initServices wires the API client, freshness tracker, sync, analysis and scheduler
func (a *App) initServices() error {
	a.Client = jquants.NewClient(
		a.Config.JQuants.IDToken,
		jquants.WithBaseURL(a.Config.JQuants.BaseURL),
		jquants.WithTimeout(a.Config.JQuants.TimeoutDuration()),
		jquants.WithRateLimit(a.Config.JQuants.RateLimit),
		jquants.WithLogger(a.Logger),
	)

	records := a.StorageManager.RecordStore()
	state := a.StorageManager.FreshnessStore()

	a.Tracker = freshness.NewTracker(state, a.Client, a.Logger)
	a.SyncService = syncsvc.NewService(
		a.Client,
		records,
		state,
		syncsvc.OptionsFromConfig(a.Config.Sync),
		a.Logger,
	)

	options, err := analysis.OptionsFromConfig(a.Config.Analysis)
	if err != nil {
		return fmt.Errorf("invalid analysis configuration: %w", err)
	}
	a.AnalysisService = analysis.NewService(records, a.SyncService, options, a.Logger)

	a.SchedulerService = scheduler.NewService(a.Logger, a.Config.Location())

	return nil
}

// Today returns the current date in the configured market timezone
func (a *App) Today() time.Time {
	return time.Now().In(a.Config.Location())
}

// RequireToken fails when no API ID token is configured
func (a *App) RequireToken() error {
	if a.Config.JQuants.IDToken == "" {
		return fmt.Errorf("no J-Quants ID token configured (set jquants.id_token or JQUANTS_ID_TOKEN)")
	}
	return nil
}

// RunSync executes one synchronization cycle for today
func (a *App) RunSync(ctx context.Context) error {
	if err := a.RequireToken(); err != nil {
		return err
	}

	result, err := a.SyncService.Run(ctx, a.Today())
	if result != nil {
		a.Logger.Info().
			Str("run_id", result.RunID).
			Bool("up_to_date", result.UpToDate).
			Int("saved", result.Saved).
			Int("failed", result.Failed).
			Dur("duration", result.Duration()).
			Msg("Sync cycle finished")
	}
	return err
}

// StartScheduler registers the daily sync job and starts dispatching it
func (a *App) StartScheduler(ctx context.Context) error {
	if !a.Config.Sync.ScheduleEnabled {
		return fmt.Errorf("scheduled sync is disabled (sync.schedule_enabled = false)")
	}

	handler := func() error {
		return a.RunSync(ctx)
	}
	if err := a.SchedulerService.RegisterJob(SyncJobName, a.Config.Sync.Schedule, handler); err != nil {
		return fmt.Errorf("failed to register sync job: %w", err)
	}

	return a.SchedulerService.Start()
}

// Close stops background work and releases storage
func (a *App) Close() error {
	if a.SchedulerService != nil {
		if err := a.SchedulerService.Stop(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to stop scheduler service")
		}
	}

	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
		a.Logger.Debug().Msg("Storage closed")
	}

	return nil
}
