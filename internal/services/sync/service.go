// Package sync keeps the local statement cache in step with the remote API.
package sync

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/finsync/internal/common"
	"github.com/ternarybob/finsync/internal/interfaces"
	"github.com/ternarybob/finsync/internal/models"
	"github.com/ternarybob/finsync/internal/services/freshness"
)

// Options controls batch pacing and failure handling.
type Options struct {
	Markets              []string
	RequestDelay         time.Duration
	RequestJitter        time.Duration
	RetryAttempts        int
	RetryDelay           time.Duration
	MaxConsecutiveErrors int
}

// OptionsFromConfig builds Options from the sync configuration.
func OptionsFromConfig(config common.SyncConfig) Options {
	return Options{
		Markets:              config.Markets,
		RequestDelay:         config.RequestDelayDuration(),
		RequestJitter:        config.RequestJitterDuration(),
		RetryAttempts:        config.RetryAttempts,
		RetryDelay:           config.RetryDelayDuration(),
		MaxConsecutiveErrors: config.MaxConsecutiveErrors,
	}
}

// Service runs synchronization cycles: freshness decision, remote fetch, save, state update.
type Service struct {
	tracker *freshness.Tracker
	source  interfaces.StatementSource
	records interfaces.RecordStore
	state   interfaces.FreshnessStore
	options Options
	logger  arbor.ILogger
	sleep   func(ctx context.Context, d time.Duration) error
	now     func() time.Time
}

// NewService creates a new sync service
func NewService(
	source interfaces.StatementSource,
	records interfaces.RecordStore,
	state interfaces.FreshnessStore,
	options Options,
	logger arbor.ILogger,
) *Service {
	return &Service{
		tracker: freshness.NewTracker(state, source, logger),
		source:  source,
		records: records,
		state:   state,
		options: options,
		logger:  logger,
		sleep:   sleepContext,
		now:     time.Now,
	}
}

// batch holds the per-cycle counters and pacing state
type batch struct {
	result      *models.SyncResult
	pacer       *pacer
	consecutive int
}

// target is one symbol to fetch plus the code it was requested as
type target struct {
	symbol string
	code   string
}

func targetsOf(symbols []string) []target {
	targets := make([]target, len(symbols))
	for i, symbol := range symbols {
		targets[i] = target{symbol: symbol, code: symbol}
	}
	return targets
}

var _ interfaces.RecordLoader = (*Service)(nil)

// Run executes one synchronization cycle for today.
// The freshness state is written only when the whole cycle succeeds.
func (s *Service) Run(ctx context.Context, today time.Time) (*models.SyncResult, error) {
	result := &models.SyncResult{
		RunID:     common.NewRunID(),
		StartedAt: s.now(),
	}
	defer func() { result.FinishedAt = s.now() }()

	decision, err := s.tracker.Decide(ctx, today)
	if err != nil {
		return result, err
	}
	result.Mode = decision.State.RunMode()

	if !decision.NeedsSync() {
		result.UpToDate = true
		s.logger.Info().
			Str("run_id", result.RunID).
			Str("reason", decision.Reason).
			Msg("Cache is up to date")
		return result, nil
	}

	b := s.newBatch(result)
	result.Dates = decision.Dates

	var symbols []string
	todayCount := decision.TodayCount
	if decision.IsFull() {
		symbols, err = s.listedSymbols(ctx, b)
	} else {
		known := make(map[string][]models.StatementRecord, 1)
		if decision.TodayCount >= 0 {
			known[decision.Today] = decision.TodayDisclosures
		}
		var counts map[string]int
		symbols, counts, err = s.affectedSymbols(ctx, b, decision.Dates, known)
		if n, ok := counts[decision.Today]; ok && todayCount < 0 {
			todayCount = n
		}
	}
	if err != nil {
		return result, err
	}

	s.logger.Info().
		Str("run_id", result.RunID).
		Str("mode", string(result.Mode)).
		Int("symbols", len(symbols)).
		Int("dates", len(decision.Dates)).
		Msg("Starting synchronization")

	if err := s.fetchAll(ctx, b, targetsOf(symbols)); err != nil {
		return result, err
	}

	if todayCount < 0 {
		todayCount = s.countToday(ctx, b, decision.Today)
	}

	state := freshness.NextState(decision, todayCount, result.RunID, s.now())
	if err := s.state.Save(ctx, state); err != nil {
		return result, fmt.Errorf("failed to save freshness state: %w", err)
	}

	s.logger.Info().
		Str("run_id", result.RunID).
		Int("total", result.Total).
		Int("saved", result.Saved).
		Int("skipped", result.Skipped).
		Int("failed", result.Failed).
		Str("processed_date", state.ProcessedDate).
		Msg("Synchronization completed")

	return result, nil
}

// RefreshSymbols re-fetches the given codes unconditionally. The freshness
// state is not consulted or written.
func (s *Service) RefreshSymbols(ctx context.Context, codes []string) (*models.SyncResult, error) {
	result := &models.SyncResult{
		RunID:     common.NewRunID(),
		StartedAt: s.now(),
	}
	defer func() { result.FinishedAt = s.now() }()

	seen := make(map[string]bool, len(codes))
	targets := make([]target, 0, len(codes))
	invalid := 0
	for _, code := range codes {
		symbol, err := common.NormalizeSymbol(code)
		if err != nil {
			invalid++
			result.Failed++
			result.Errors = append(result.Errors, models.SymbolError{
				Symbol: code,
				Error:  models.ErrInvalidSymbol.Error(),
			})
			continue
		}
		if seen[symbol] {
			continue
		}
		seen[symbol] = true
		targets = append(targets, target{symbol: symbol, code: code})
	}

	err := s.fetchAll(ctx, s.newBatch(result), targets)
	result.Total += invalid
	return result, err
}

// LoadOrFetch returns the cached record set for code. A missing or unreadable
// cache entry is fetched from the remote source and saved first.
// Returns nil when the remote has no statements for the symbol.
func (s *Service) LoadOrFetch(ctx context.Context, code string) (*models.SymbolRecordSet, error) {
	symbol, err := common.NormalizeSymbol(code)
	if err != nil {
		return nil, err
	}

	set, err := s.records.Load(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to load records: %w", err)
	}
	if set != nil {
		return set, nil
	}

	exists, err := s.records.Exists(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to check cached records: %w", err)
	}
	reason := "not cached"
	if exists {
		reason = "cached record unreadable"
	}
	s.logger.Info().Str("symbol", symbol).Str("reason", reason).Msg("Fetching statements")

	p := &pacer{delay: s.options.RequestDelay, jitter: s.options.RequestJitter, sleep: s.sleep}
	records, err := s.fetchStatements(ctx, p, symbol)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		s.logger.Debug().Str("symbol", symbol).Msg("No statements returned")
		return nil, nil
	}

	set, err = s.records.Save(ctx, code, records)
	if err != nil {
		return nil, fmt.Errorf("failed to save records: %w", err)
	}
	return set, nil
}

func (s *Service) newBatch(result *models.SyncResult) *batch {
	return &batch{
		result: result,
		pacer: &pacer{
			delay:  s.options.RequestDelay,
			jitter: s.options.RequestJitter,
			sleep:  s.sleep,
		},
	}
}

func (s *Service) retryPolicy() *RetryPolicy {
	return &RetryPolicy{
		Retries: s.options.RetryAttempts,
		Delay:   s.options.RetryDelay,
		sleep:   s.sleep,
	}
}

// listedSymbols enumerates the universe for a full resync. Failure after retries is fatal.
func (s *Service) listedSymbols(ctx context.Context, b *batch) ([]string, error) {
	var codes []string
	err := s.retryPolicy().Execute(ctx, s.logger, func() error {
		if err := b.pacer.Wait(ctx); err != nil {
			return err
		}
		var err error
		codes, err = s.source.ListedSymbols(ctx, s.options.Markets)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate listed symbols: %w", err)
	}

	symbols, invalid := common.NormalizeSymbols(codes)
	if len(invalid) > 0 {
		s.logger.Warn().Strs("codes", invalid).Msg("Ignoring invalid listed codes")
	}
	sort.Strings(symbols)
	return symbols, nil
}

// affectedSymbols collects the codes disclosed on each date, sorted and de-duplicated,
// plus the number of disclosures per date. Dates present in known are not listed again.
// Any failure after retries is fatal.
func (s *Service) affectedSymbols(ctx context.Context, b *batch, dates []string, known map[string][]models.StatementRecord) ([]string, map[string]int, error) {
	counts := make(map[string]int, len(dates))
	var codes []string
	for _, date := range dates {
		records, ok := known[date]
		if !ok {
			var err error
			records, err = s.disclosures(ctx, b, date)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to list disclosures for %s: %w", date, err)
			}
		}
		counts[date] = len(records)
		for _, r := range records {
			codes = append(codes, r.LocalCode)
		}
		s.logger.Debug().Str("date", date).Int("disclosures", len(records)).Msg("Scanned disclosure date")
	}

	symbols, invalid := common.NormalizeSymbols(codes)
	if len(invalid) > 0 {
		s.logger.Warn().Strs("codes", invalid).Msg("Ignoring invalid disclosed codes")
	}
	sort.Strings(symbols)
	return symbols, counts, nil
}

// disclosures lists the statements disclosed on date with retry
func (s *Service) disclosures(ctx context.Context, b *batch, date string) ([]models.StatementRecord, error) {
	var records []models.StatementRecord
	err := s.retryPolicy().Execute(ctx, s.logger, func() error {
		if err := b.pacer.Wait(ctx); err != nil {
			return err
		}
		var err error
		records, err = s.source.StatementsByDate(ctx, date)
		return err
	})
	return records, err
}

// countToday fetches today's disclosure count once. A failure is logged and counted as zero.
func (s *Service) countToday(ctx context.Context, b *batch, today string) int {
	records, err := s.disclosures(ctx, b, today)
	if err != nil {
		s.logger.Warn().Err(err).Str("date", today).Msg("Failed to count today's disclosures")
		return 0
	}
	return len(records)
}

// fetchAll fetches and saves each symbol's full history. Per-symbol failures are
// recorded and skipped until MaxConsecutiveErrors follow one another.
func (s *Service) fetchAll(ctx context.Context, b *batch, targets []target) error {
	result := b.result
	result.Total += len(targets)

	for i, t := range targets {
		if err := ctx.Err(); err != nil {
			result.Aborted = true
			return err
		}

		saved, err := s.syncSymbol(ctx, b, t)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				result.Aborted = true
				return ctxErr
			}

			result.Failed++
			result.Errors = append(result.Errors, models.SymbolError{Symbol: t.symbol, Error: err.Error()})
			b.consecutive++
			s.logger.Warn().Err(err).Str("symbol", t.symbol).Int("consecutive", b.consecutive).Msg("Symbol sync failed")

			if s.options.MaxConsecutiveErrors > 0 && b.consecutive >= s.options.MaxConsecutiveErrors {
				result.Aborted = true
				s.logger.Error().
					Int("consecutive", b.consecutive).
					Int("remaining", len(targets)-i-1).
					Msg("Abandoning batch after consecutive failures")
				return fmt.Errorf("%w: %d consecutive failures, last %s: %v", models.ErrErrorCeiling, b.consecutive, t.symbol, err)
			}
			continue
		}

		b.consecutive = 0
		if saved {
			result.Saved++
		} else {
			result.Skipped++
		}

		if (i+1)%100 == 0 {
			s.logger.Info().Int("processed", i+1).Int("total", len(targets)).Msg("Sync progress")
		}
	}
	return nil
}

// fetchStatements fetches one symbol's full history with retry, pacing every attempt
func (s *Service) fetchStatements(ctx context.Context, p *pacer, symbol string) ([]models.StatementRecord, error) {
	var records []models.StatementRecord
	err := s.retryPolicy().Execute(ctx, s.logger, func() error {
		if err := p.Wait(ctx); err != nil {
			return err
		}
		var err error
		records, err = s.source.Statements(ctx, symbol)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch statements: %w", err)
	}
	return records, nil
}

// syncSymbol fetches one symbol and replaces its stored records.
// Returns false when the remote has no statements for it.
func (s *Service) syncSymbol(ctx context.Context, b *batch, t target) (bool, error) {
	records, err := s.fetchStatements(ctx, b.pacer, t.symbol)
	if err != nil {
		return false, err
	}

	if len(records) == 0 {
		s.logger.Debug().Str("symbol", t.symbol).Msg("No statements returned, skipping")
		return false, nil
	}

	set, err := s.records.Save(ctx, t.code, records)
	if err != nil {
		if errors.Is(err, models.ErrInvalidSymbol) {
			return false, err
		}
		return false, fmt.Errorf("failed to save records: %w", err)
	}

	s.logger.Debug().Str("symbol", set.Metadata.Symbol).Int("records", set.Metadata.RecordCount).Msg("Saved statements")
	return true, nil
}
