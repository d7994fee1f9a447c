package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/finsync/internal/models"
)

func TestGrowthRate(t *testing.T) {
	tests := []struct {
		name      string
		current   models.Amount
		previous  models.Amount
		wantValid bool
		want      float64
	}{
		{"increase", models.NewAmount(1100), models.NewAmount(1000), true, 10.0},
		{"decrease", models.NewAmount(900), models.NewAmount(1000), true, -10.0},
		{"loss to profit", models.NewAmount(50), models.NewAmount(-50), true, 200.0},
		{"deeper loss", models.NewAmount(-150), models.NewAmount(-50), true, -200.0},
		{"rounded to one decimal", models.NewAmount(4), models.NewAmount(3), true, 33.3},
		{"current zero is defined", models.NewAmount(0), models.NewAmount(10), true, -100.0},
		{"previous zero", models.NewAmount(10), models.NewAmount(0), false, 0},
		{"previous missing", models.NewAmount(10), models.Amount{}, false, 0},
		{"current missing", models.Amount{}, models.NewAmount(10), false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GrowthRate(tt.current, tt.previous)
			assert.Equal(t, tt.wantValid, got.Valid)
			if tt.wantValid {
				assert.Equal(t, tt.want, got.Value)
			}
		})
	}
}

func TestQuarterlyYoYMatchesSamePeriodPriorYear(t *testing.T) {
	values := []models.PeriodValue{
		{DisclosedDate: "2024-08-01", PeriodType: "1Q", NetSales: models.NewAmount(1200), Profit: models.NewAmount(130)},
		{DisclosedDate: "2024-05-08", PeriodType: "FY", NetSales: models.NewAmount(1600), Profit: models.NewAmount(160)},
		{DisclosedDate: "2023-11-01", PeriodType: "2Q", NetSales: models.NewAmount(1100), Profit: models.NewAmount(110)},
		{DisclosedDate: "2023-08-01", PeriodType: "1Q", NetSales: models.NewAmount(1000), Profit: models.NewAmount(100)},
		{DisclosedDate: "2022-08-01", PeriodType: "1Q", NetSales: models.NewAmount(500), Profit: models.NewAmount(50)},
	}

	growth := QuarterlyYoY(values)

	require.Len(t, growth, 5)
	assert.Equal(t, models.Rate{Value: 20.0, Valid: true}, growth[0].SalesGrowth)
	assert.Equal(t, models.Rate{Value: 30.0, Valid: true}, growth[0].ProfitGrowth)
	assert.False(t, growth[1].SalesGrowth.Valid, "no FY disclosed in 2023")
	assert.False(t, growth[2].ProfitGrowth.Valid, "no 2Q disclosed in 2022")
	assert.Equal(t, models.Rate{Value: 100.0, Valid: true}, growth[3].ProfitGrowth)
	assert.False(t, growth[4].ProfitGrowth.Valid)
	assert.Equal(t, "1Q", growth[0].PeriodType)
	assert.Equal(t, "2024-08-01", growth[0].DisclosedDate)
}

func TestQuarterlyYoYSkipsNonAdjacentYears(t *testing.T) {
	values := []models.PeriodValue{
		{DisclosedDate: "2024-08-01", PeriodType: "1Q", Profit: models.NewAmount(130)},
		{DisclosedDate: "2022-08-01", PeriodType: "1Q", Profit: models.NewAmount(100)},
	}

	growth := QuarterlyYoY(values)

	assert.False(t, growth[0].ProfitGrowth.Valid)
}

func TestAnnualAverage(t *testing.T) {
	records := []models.StatementRecord{
		stmt("2024-05-08", "FY", "", "1210"),
		stmt("2024-02-06", "3Q", "", "900"),
		stmt("2023-05-10", "FY", "", "1100"),
		stmt("2022-05-11", "FY", "", "1000"),
	}

	rates := AnnualGrowthRates(AnnualSeries(records, 10), models.ProfitMetricOrdinary)
	require.Len(t, rates, 2)
	assert.Equal(t, 10.0, rates[0].Value)
	assert.Equal(t, 10.0, rates[1].Value)

	assert.Equal(t, models.Rate{Value: 10.0, Valid: true}, AnnualAverage(records, models.ProfitMetricOrdinary, 10))
}

func TestAnnualAverageIsPositional(t *testing.T) {
	// a missing year is bridged: 2024 is compared with 2021
	records := []models.StatementRecord{
		stmt("2024-05-08", "FY", "", "1500"),
		stmt("2021-05-11", "FY", "", "1000"),
	}

	assert.Equal(t, models.Rate{Value: 50.0, Valid: true}, AnnualAverage(records, models.ProfitMetricOrdinary, 10))
}

func TestAnnualAverageLimitsYears(t *testing.T) {
	records := []models.StatementRecord{
		stmt("2024-05-08", "FY", "", "200"),
		stmt("2023-05-10", "FY", "", "100"),
		stmt("2022-05-11", "FY", "", "1000"),
	}

	assert.Equal(t, models.Rate{Value: 100.0, Valid: true}, AnnualAverage(records, models.ProfitMetricOrdinary, 2))
}

func TestAnnualAverageUndefined(t *testing.T) {
	assert.False(t, AnnualAverage(nil, models.ProfitMetricOrdinary, 10).Valid)

	single := []models.StatementRecord{stmt("2024-05-08", "FY", "", "100")}
	assert.False(t, AnnualAverage(single, models.ProfitMetricOrdinary, 10).Valid)

	zeroBase := []models.StatementRecord{
		stmt("2024-05-08", "FY", "", "100"),
		stmt("2023-05-10", "FY", "", "0"),
	}
	assert.False(t, AnnualAverage(zeroBase, models.ProfitMetricOrdinary, 10).Valid)
}

func TestAverageRateIgnoresUndefined(t *testing.T) {
	rates := []models.Rate{{Value: 10, Valid: true}, {}, {Value: 15.5, Valid: true}}

	assert.Equal(t, models.Rate{Value: 12.8, Valid: true}, AverageRate(rates))
}
