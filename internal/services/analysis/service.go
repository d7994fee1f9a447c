package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/finsync/internal/common"
	"github.com/ternarybob/finsync/internal/interfaces"
	"github.com/ternarybob/finsync/internal/models"
)

// Recent growth thresholds and weights used by Score, most recent period first.
var (
	salesGrowthThreshold  = 10.0
	profitGrowthThreshold = 20.0
	recentWeights         = []float64{0.4, 0.3, 0.2, 0.1}
)

// Options configures the analysis windows and selection policies.
type Options struct {
	AnnualPolicy             Policy
	QuarterlyPolicy          Policy
	ReconstructionWindowDays int
	OutputWindowDays         int
	AnnualYears              int
	RecentPeriods            int
}

// DefaultOptions returns the standard analysis settings.
func DefaultOptions() Options {
	return Options{
		AnnualPolicy:             PolicyStrict,
		QuarterlyPolicy:          PolicyLenient,
		ReconstructionWindowDays: 1095,
		OutputWindowDays:         730,
		AnnualYears:              10,
		RecentPeriods:            4,
	}
}

// OptionsFromConfig builds Options from the analysis configuration.
func OptionsFromConfig(config common.AnalysisConfig) (Options, error) {
	annual, err := ParsePolicy(config.AnnualPolicy)
	if err != nil {
		return Options{}, err
	}
	quarterly, err := ParsePolicy(config.QuarterlyPolicy)
	if err != nil {
		return Options{}, err
	}
	return Options{
		AnnualPolicy:             annual,
		QuarterlyPolicy:          quarterly,
		ReconstructionWindowDays: config.ReconstructionWindowDays,
		OutputWindowDays:         config.OutputWindowDays,
		AnnualYears:              config.AnnualYears,
		RecentPeriods:            config.RecentPeriods,
	}, nil
}

// Service runs the load -> select -> reconstruct -> growth pipeline for cached symbols.
type Service struct {
	records interfaces.RecordStore
	loader  interfaces.RecordLoader
	options Options
	logger  arbor.ILogger
}

// NewService creates a new analysis service. Symbols are enumerated from records
// and their record sets read through loader.
func NewService(records interfaces.RecordStore, loader interfaces.RecordLoader, options Options, logger arbor.ILogger) *Service {
	return &Service{
		records: records,
		loader:  loader,
		options: options,
		logger:  logger,
	}
}

// AnalyzeSymbol loads the symbol's records, fetching them when the cache has
// no readable copy, and computes its metrics as of asOf.
// Returns nil when no statements exist for the symbol.
func (s *Service) AnalyzeSymbol(ctx context.Context, symbol string, asOf time.Time) (*models.SymbolMetrics, error) {
	set, err := s.loader.LoadOrFetch(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to load records: %w", err)
	}
	if set == nil {
		s.logger.Debug().Str("symbol", symbol).Msg("No statements for symbol")
		return nil, nil
	}

	metrics := Analyze(set, asOf, s.options)

	s.logger.Debug().
		Str("symbol", metrics.Symbol).
		Str("profit_metric", string(metrics.ProfitMetric)).
		Str("avg_growth_10y", metrics.AverageProfitGrowth10Y.String()).
		Float64("score", metrics.Score).
		Msg("Analyzed symbol")

	return metrics, nil
}

// AnalyzeAll analyzes every cached symbol. Symbols that fail to load are logged and skipped.
func (s *Service) AnalyzeAll(ctx context.Context, asOf time.Time) ([]*models.SymbolMetrics, error) {
	symbols, err := s.records.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list cached symbols: %w", err)
	}

	results := make([]*models.SymbolMetrics, 0, len(symbols))
	for _, symbol := range symbols {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		metrics, err := s.AnalyzeSymbol(ctx, symbol, asOf)
		if err != nil {
			s.logger.Warn().Err(err).Str("symbol", symbol).Msg("Skipping symbol")
			continue
		}
		if metrics != nil {
			results = append(results, metrics)
		}
	}
	return results, nil
}

// Analyze computes the metrics of one record set as of asOf.
func Analyze(set *models.SymbolRecordSet, asOf time.Time, options Options) *models.SymbolMetrics {
	statements := models.FilterFinancialStatements(set.Records)
	symbol := set.Metadata.Symbol

	// Multi-year average over the annual series
	annual := AnnualSeries(statements, options.AnnualYears)
	annualMetric := SelectProfitMetric(options.AnnualPolicy, annual)
	average := AverageRate(AnnualGrowthRates(annual, annualMetric))

	// Quarterly growth over the reconstruction window
	window := models.WithinWindow(statements, asOf, options.ReconstructionWindowDays)
	metric := SelectProfitMetric(options.QuarterlyPolicy, window)
	values := Reconstruct(symbol, window, metric)
	growth := QuarterlyYoY(values)

	cutoff := asOf.AddDate(0, 0, -options.OutputWindowDays).Format(models.DateLayout)
	recent := make([]models.GrowthRecord, 0, options.RecentPeriods)
	for _, g := range growth {
		if g.DisclosedDate < cutoff || len(recent) == options.RecentPeriods {
			continue
		}
		recent = append(recent, g)
	}
	periods := make([]models.PeriodValue, 0, len(values))
	for _, v := range values {
		if v.DisclosedDate >= cutoff {
			periods = append(periods, v)
		}
	}

	metrics := &models.SymbolMetrics{
		Symbol:                 symbol,
		ProfitMetric:           metric,
		AnnualProfitMetric:     annualMetric,
		AverageProfitGrowth10Y: average,
		RecentGrowth:           recent,
		ROE:                    ROE(statements),
		Periods:                periods,
	}
	metrics.Score = Score(metrics.AverageProfitGrowth10Y, recent)

	return metrics
}

// ROE is Profit / Equity * 100 from the newest annual financial statement that
// carries a parseable profit and a positive equity.
func ROE(records []models.StatementRecord) models.Rate {
	for _, r := range records {
		if !r.IsFinancialStatement() || !r.IsAnnual() {
			continue
		}
		profit := models.ParseAmount(r.Profit)
		equity := models.ParseAmount(r.Equity)
		if !profit.Valid || !equity.Valid || !equity.Value.IsPositive() {
			continue
		}
		return models.NewRate(profit.Value.Div(equity.Value).Mul(hundred))
	}
	return models.Rate{}
}

// Score rates a symbol from 0 to 2.0: up to 1.0 from the multi-year average
// (clamped to 0..10 percent) plus weighted points for each recent period whose
// sales growth reaches 10% and whose profit growth reaches 20%.
func Score(average models.Rate, recent []models.GrowthRecord) float64 {
	score := decimal.Zero

	if average.Valid {
		clamped := decimal.Min(decimal.Max(decimal.NewFromFloat(average.Value), decimal.Zero), decimal.NewFromInt(10))
		score = score.Add(clamped.Div(decimal.NewFromInt(10)).Round(1))
	}

	for i, g := range recent {
		if i >= len(recentWeights) {
			break
		}
		weight := decimal.NewFromFloat(recentWeights[i])
		if g.SalesGrowth.Valid && g.SalesGrowth.Value >= salesGrowthThreshold {
			score = score.Add(weight)
		}
		if g.ProfitGrowth.Valid && g.ProfitGrowth.Value >= profitGrowthThreshold {
			score = score.Add(weight)
		}
	}

	return score.Round(1).InexactFloat64()
}
