package analysis

import (
	"github.com/shopspring/decimal"

	"github.com/ternarybob/finsync/internal/models"
)

var hundred = decimal.NewFromInt(100)

// GrowthRate returns (current - previous) / |previous| * 100 rounded to one decimal.
// Dividing by the absolute value keeps the sign right for loss-to-profit turnarounds.
// The rate is undeterminable when either value is missing or previous is zero.
func GrowthRate(current, previous models.Amount) models.Rate {
	if !current.Valid || !previous.Valid || previous.Value.IsZero() {
		return models.Rate{}
	}
	change := current.Value.Sub(previous.Value)
	return models.NewRate(change.Div(previous.Value.Abs()).Mul(hundred))
}

// QuarterlyYoY matches each period value with the nearest older value of the same
// period type disclosed in the previous calendar year. values must be newest first.
func QuarterlyYoY(values []models.PeriodValue) []models.GrowthRecord {
	records := make([]models.GrowthRecord, 0, len(values))
	for i, current := range values {
		growth := models.GrowthRecord{
			Symbol:        current.Symbol,
			DisclosedDate: current.DisclosedDate,
			PeriodType:    current.PeriodType,
		}

		if previous, ok := priorYearValue(current, values[i+1:]); ok {
			growth.SalesGrowth = GrowthRate(current.NetSales, previous.NetSales)
			growth.ProfitGrowth = GrowthRate(current.Profit, previous.Profit)
		}

		records = append(records, growth)
	}
	return records
}

func priorYearValue(current models.PeriodValue, older []models.PeriodValue) (models.PeriodValue, bool) {
	year := disclosureYear(current.DisclosedDate)
	if year == 0 {
		return models.PeriodValue{}, false
	}
	for _, candidate := range older {
		if candidate.PeriodType == current.PeriodType && disclosureYear(candidate.DisclosedDate) == year-1 {
			return candidate, true
		}
	}
	return models.PeriodValue{}, false
}

func disclosureYear(date string) int {
	return models.StatementRecord{DisclosedDate: date}.DisclosureYear()
}

// AnnualSeries returns up to limit annual financial-statement records, newest first.
func AnnualSeries(records []models.StatementRecord, limit int) []models.StatementRecord {
	annual := make([]models.StatementRecord, 0, limit)
	for _, r := range records {
		if !r.IsFinancialStatement() || !r.IsAnnual() {
			continue
		}
		annual = append(annual, r)
		if limit > 0 && len(annual) == limit {
			break
		}
	}
	return annual
}

// AnnualGrowthRates compares each annual record with the one after it in the
// series (positional adjacency, not calendar matching). annual must be newest first.
func AnnualGrowthRates(annual []models.StatementRecord, metric models.ProfitMetric) []models.Rate {
	if len(annual) < 2 {
		return nil
	}
	rates := make([]models.Rate, 0, len(annual)-1)
	for i := 0; i < len(annual)-1; i++ {
		rates = append(rates, GrowthRate(metric.Of(annual[i]), metric.Of(annual[i+1])))
	}
	return rates
}

// AverageRate averages the defined rates, undeterminable when none are defined.
func AverageRate(rates []models.Rate) models.Rate {
	sum := decimal.Zero
	count := 0
	for _, r := range rates {
		if !r.Valid {
			continue
		}
		sum = sum.Add(decimal.NewFromFloat(r.Value))
		count++
	}
	if count == 0 {
		return models.Rate{}
	}
	return models.NewRate(sum.Div(decimal.NewFromInt(int64(count))))
}

// AnnualAverage is the multi-year average profit growth over the most recent
// years annual records.
func AnnualAverage(records []models.StatementRecord, metric models.ProfitMetric, years int) models.Rate {
	return AverageRate(AnnualGrowthRates(AnnualSeries(records, years), metric))
}
