// Package freshness decides whether the local statement cache must be refreshed.
package freshness

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/finsync/internal/interfaces"
	"github.com/ternarybob/finsync/internal/models"
)

// State is the outcome of a freshness decision.
type State string

const (
	StateNoHistory            State = "no_history"
	StateUpToDate             State = "up_to_date"
	StateNeedsFullResync      State = "needs_full_resync"
	StateNeedsDateRangeResync State = "needs_date_range_resync"
	StateNeedsSameDayResync   State = "needs_same_day_resync"
)

// RunMode maps a resync state to the mode recorded in the persisted state.
func (s State) RunMode() models.RunMode {
	switch s {
	case StateNoHistory, StateNeedsFullResync:
		return models.RunModeFullForce
	case StateNeedsDateRangeResync:
		return models.RunModeDateRange
	case StateNeedsSameDayResync:
		return models.RunModeSameDay
	}
	return ""
}

// Decision describes what a synchronization cycle has to do.
type Decision struct {
	State State  `json:"state"`
	Today string `json:"today"`
	// Dates are the disclosure dates to scan, oldest first. Empty for full resyncs.
	Dates    []string               `json:"dates,omitempty"`
	Previous *models.FreshnessState `json:"previous,omitempty"`
	// TodayCount is the remote disclosure count for Today, -1 when not queried.
	TodayCount int    `json:"today_count"`
	Reason     string `json:"reason"`
	// TodayDisclosures holds the records counted for Today so the cycle can reuse them.
	TodayDisclosures []models.StatementRecord `json:"-"`
}

// NeedsSync reports whether the decision requires any remote work.
func (d Decision) NeedsSync() bool {
	return d.State != StateUpToDate
}

// IsFull reports whether the whole listed universe must be re-fetched.
func (d Decision) IsFull() bool {
	return d.State == StateNoHistory || d.State == StateNeedsFullResync
}

// Tracker compares the persisted freshness state with the current date
// and the remote disclosure count.
type Tracker struct {
	store  interfaces.FreshnessStore
	source interfaces.StatementSource
	logger arbor.ILogger
}

// NewTracker creates a new freshness tracker
func NewTracker(store interfaces.FreshnessStore, source interfaces.StatementSource, logger arbor.ILogger) *Tracker {
	return &Tracker{
		store:  store,
		source: source,
		logger: logger,
	}
}

// Decide determines the freshness state for today.
// Only the same-day case queries the remote source; a failure there is returned.
func (t *Tracker) Decide(ctx context.Context, today time.Time) (Decision, error) {
	todayStr := today.Format(models.DateLayout)
	decision := Decision{Today: todayStr, TodayCount: -1}

	previous, err := t.store.Load(ctx)
	if err != nil {
		return decision, fmt.Errorf("failed to load freshness state: %w", err)
	}
	decision.Previous = previous

	if previous == nil {
		decision.State = StateNoHistory
		decision.Reason = "no synchronization history"
		t.log(decision)
		return decision, nil
	}

	processed, err := time.Parse(models.DateLayout, previous.ProcessedDate)
	if err != nil {
		decision.State = StateNeedsFullResync
		decision.Reason = fmt.Sprintf("unreadable processed date %q", previous.ProcessedDate)
		t.log(decision)
		return decision, nil
	}

	switch {
	case previous.ProcessedDate == todayStr:
		records, err := t.source.StatementsByDate(ctx, todayStr)
		if err != nil {
			return decision, fmt.Errorf("failed to count today's disclosures: %w", err)
		}
		decision.TodayCount = len(records)
		decision.TodayDisclosures = records

		switch {
		case decision.TodayCount == 0:
			decision.State = StateUpToDate
			decision.Reason = "no disclosures today"
		case decision.TodayCount > previous.TodayDisclosureCount:
			decision.State = StateNeedsSameDayResync
			decision.Dates = []string{todayStr}
			decision.Reason = fmt.Sprintf("disclosure count rose from %d to %d", previous.TodayDisclosureCount, decision.TodayCount)
		default:
			decision.State = StateUpToDate
			decision.Reason = "no new disclosures since last run"
		}

	case previous.ProcessedDate < todayStr:
		decision.State = StateNeedsDateRangeResync
		decision.Dates = DateRange(processed, today)
		decision.Reason = fmt.Sprintf("last processed %s", previous.ProcessedDate)

	default:
		decision.State = StateUpToDate
		decision.Reason = fmt.Sprintf("processed date %s is ahead of today, clock skew", previous.ProcessedDate)
	}

	t.log(decision)
	return decision, nil
}

func (t *Tracker) log(d Decision) {
	t.logger.Info().
		Str("state", string(d.State)).
		Str("today", d.Today).
		Int("dates", len(d.Dates)).
		Str("reason", d.Reason).
		Msg("Freshness decision")
}

// NextState builds the state to persist after a successful cycle.
// ProcessedDate never moves behind the previous state.
func NextState(d Decision, todayCount int, runID string, now time.Time) *models.FreshnessState {
	state := &models.FreshnessState{
		Version:              models.FreshnessStateVersion,
		ProcessedDate:        d.Today,
		LastRunMode:          d.State.RunMode(),
		TodayDisclosureCount: todayCount,
		UpdatedAt:            now.UTC(),
		RunID:                runID,
	}
	if d.Previous != nil {
		state.PreviousTodayDisclosureCount = d.Previous.TodayDisclosureCount
		if d.Previous.ProcessedDate > state.ProcessedDate {
			state.ProcessedDate = d.Previous.ProcessedDate
		}
	}
	return state
}

// DateRange returns every calendar date from start to end inclusive, oldest first.
func DateRange(start, end time.Time) []string {
	from := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	to := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)

	var dates []string
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format(models.DateLayout))
	}
	return dates
}
