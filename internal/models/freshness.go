package models

import "time"

// FreshnessStateVersion is the current encoding version of FreshnessState.
const FreshnessStateVersion = 1

// RunMode records which kind of synchronization produced a FreshnessState.
type RunMode string

const (
	RunModeFullForce RunMode = "fullForce"
	RunModeDateRange RunMode = "dateRange"
	RunModeSameDay   RunMode = "sameDay"
)

// IsValid reports whether m is a known run mode.
func (m RunMode) IsValid() bool {
	switch m {
	case RunModeFullForce, RunModeDateRange, RunModeSameDay:
		return true
	}
	return false
}

// FreshnessState is the persisted record of the last completed synchronization.
// ProcessedDate never moves backwards.
type FreshnessState struct {
	Version                      int       `toml:"version" json:"version"`
	ProcessedDate                string    `toml:"processed_date" json:"processed_date"`
	LastRunMode                  RunMode   `toml:"last_run_mode" json:"last_run_mode"`
	TodayDisclosureCount         int       `toml:"today_disclosure_count" json:"today_disclosure_count"`
	PreviousTodayDisclosureCount int       `toml:"previous_today_disclosure_count" json:"previous_today_disclosure_count"`
	UpdatedAt                    time.Time `toml:"updated_at" json:"updated_at"`
	RunID                        string    `toml:"run_id" json:"run_id"`
}
