package models

import (
	"sort"
	"strings"
	"time"
)

// DateLayout is the calendar date format used by the API and the freshness state.
const DateLayout = "2006-01-02"

// Period types reported in TypeOfCurrentPeriod.
const (
	PeriodQ1 = "1Q"
	PeriodQ2 = "2Q"
	PeriodQ3 = "3Q"
	PeriodFY = "FY"
)

// financialStatementsMarker identifies earnings reports among disclosure document types
// (e.g. "FYFinancialStatements_Consolidated_JP"), as opposed to forecast revisions
const financialStatementsMarker = "FinancialStatements"

// StatementRecord is one disclosed financial statement as returned by the API.
// Figures are kept as raw strings so missing markers survive a save/load round trip.
type StatementRecord struct {
	DisclosedDate                string `json:"DisclosedDate"`
	DisclosedTime                string `json:"DisclosedTime"`
	LocalCode                    string `json:"LocalCode"`
	DisclosureNumber             string `json:"DisclosureNumber,omitempty"`
	TypeOfDocument               string `json:"TypeOfDocument"`
	TypeOfCurrentPeriod          string `json:"TypeOfCurrentPeriod"`
	CurrentPeriodStartDate       string `json:"CurrentPeriodStartDate,omitempty"`
	CurrentPeriodEndDate         string `json:"CurrentPeriodEndDate,omitempty"`
	CurrentFiscalYearStartDate   string `json:"CurrentFiscalYearStartDate"`
	CurrentFiscalYearEndDate     string `json:"CurrentFiscalYearEndDate"`
	NetSales                     string `json:"NetSales"`
	OperatingProfit              string `json:"OperatingProfit"`
	OrdinaryProfit               string `json:"OrdinaryProfit"`
	Profit                       string `json:"Profit"`
	EarningsPerShare             string `json:"EarningsPerShare,omitempty"`
	TotalAssets                  string `json:"TotalAssets,omitempty"`
	Equity                       string `json:"Equity"`
	ResultDividendPerShareAnnual string `json:"ResultDividendPerShareAnnual,omitempty"`
}

// Key returns the identity of the record: (LocalCode, DisclosedDate, TypeOfDocument).
func (r StatementRecord) Key() string {
	return r.LocalCode + "|" + r.DisclosedDate + "|" + r.TypeOfDocument
}

// Disclosed parses DisclosedDate.
func (r StatementRecord) Disclosed() (time.Time, bool) {
	t, err := time.Parse(DateLayout, r.DisclosedDate)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// DisclosureYear returns the calendar year of DisclosedDate, or 0 if unparseable.
func (r StatementRecord) DisclosureYear() int {
	t, ok := r.Disclosed()
	if !ok {
		return 0
	}
	return t.Year()
}

// FiscalYear is the year in which the reporting fiscal year ends.
// Falls back to the disclosure year when the end date is absent.
func (r StatementRecord) FiscalYear() int {
	if t, err := time.Parse(DateLayout, r.CurrentFiscalYearEndDate); err == nil {
		return t.Year()
	}
	return r.DisclosureYear()
}

// IsFinancialStatement reports whether the record is an earnings report.
func (r StatementRecord) IsFinancialStatement() bool {
	return strings.Contains(r.TypeOfDocument, financialStatementsMarker)
}

// IsAnnual reports whether the record covers a full fiscal year.
func (r StatementRecord) IsAnnual() bool {
	return r.TypeOfCurrentPeriod == PeriodFY
}

// SortNewestFirst orders records by disclosure date then disclosure time, newest first.
func SortNewestFirst(records []StatementRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].DisclosedDate != records[j].DisclosedDate {
			return records[i].DisclosedDate > records[j].DisclosedDate
		}
		return records[i].DisclosedTime > records[j].DisclosedTime
	})
}

// FilterFinancialStatements keeps earnings reports only, preserving order.
func FilterFinancialStatements(records []StatementRecord) []StatementRecord {
	out := make([]StatementRecord, 0, len(records))
	for _, r := range records {
		if r.IsFinancialStatement() {
			out = append(out, r)
		}
	}
	return out
}

// WithinWindow keeps records disclosed no earlier than asOf minus days.
// Records with an unparseable disclosure date are dropped.
func WithinWindow(records []StatementRecord, asOf time.Time, days int) []StatementRecord {
	cutoff := asOf.AddDate(0, 0, -days)
	out := make([]StatementRecord, 0, len(records))
	for _, r := range records {
		t, ok := r.Disclosed()
		if !ok || t.Before(cutoff) {
			continue
		}
		out = append(out, r)
	}
	return out
}
