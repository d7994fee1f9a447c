package models

import "time"

// SyncResult summarizes one synchronization cycle.
type SyncResult struct {
	RunID      string        `json:"run_id"`
	Mode       RunMode       `json:"mode,omitempty"`
	UpToDate   bool          `json:"up_to_date"`
	Dates      []string      `json:"dates,omitempty"`
	Total      int           `json:"total"`
	Saved      int           `json:"saved"`
	Skipped    int           `json:"skipped"`
	Failed     int           `json:"failed"`
	Errors     []SymbolError `json:"errors,omitempty"`
	Aborted    bool          `json:"aborted"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
}

// SymbolError records a per-symbol failure that did not stop the batch.
type SymbolError struct {
	Symbol string `json:"symbol"`
	Error  string `json:"error"`
}

// Duration returns the elapsed wall time of the cycle.
func (r *SyncResult) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
