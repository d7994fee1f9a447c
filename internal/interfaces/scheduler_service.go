package interfaces

import "time"

// JobStatus represents the current status of a scheduled job
type JobStatus struct {
	Name      string
	Schedule  string
	LastRun   *time.Time
	NextRun   *time.Time
	IsRunning bool
	LastError string
}

// SchedulerService manages cron-based scheduling
type SchedulerService interface {
	// RegisterJob registers a job with the scheduler
	RegisterJob(name string, schedule string, handler func() error) error

	// Start the scheduler
	Start() error

	// Stop the scheduler and wait for a running job to finish
	Stop() error

	// TriggerNow runs the named job immediately, skipping if it is already running
	TriggerNow(name string) error

	// IsRunning returns true if scheduler is active
	IsRunning() bool

	// GetJobStatus returns the status of a specific job
	GetJobStatus(name string) (*JobStatus, error)
}
