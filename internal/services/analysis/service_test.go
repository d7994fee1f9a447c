package analysis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/finsync/internal/models"
)

// mockRecordStore is a mock implementation of interfaces.RecordStore
type mockRecordStore struct {
	mock.Mock
}

func (m *mockRecordStore) Exists(ctx context.Context, symbol string) (bool, error) {
	args := m.Called(ctx, symbol)
	return args.Bool(0), args.Error(1)
}

func (m *mockRecordStore) Save(ctx context.Context, originalCode string, records []models.StatementRecord) (*models.SymbolRecordSet, error) {
	args := m.Called(ctx, originalCode, records)
	set, _ := args.Get(0).(*models.SymbolRecordSet)
	return set, args.Error(1)
}

func (m *mockRecordStore) Load(ctx context.Context, symbol string) (*models.SymbolRecordSet, error) {
	args := m.Called(ctx, symbol)
	set, _ := args.Get(0).(*models.SymbolRecordSet)
	return set, args.Error(1)
}

func (m *mockRecordStore) List(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	symbols, _ := args.Get(0).([]string)
	return symbols, args.Error(1)
}

// mockRecordLoader is a mock implementation of interfaces.RecordLoader
type mockRecordLoader struct {
	mock.Mock
}

func (m *mockRecordLoader) LoadOrFetch(ctx context.Context, code string) (*models.SymbolRecordSet, error) {
	args := m.Called(ctx, code)
	set, _ := args.Get(0).(*models.SymbolRecordSet)
	return set, args.Error(1)
}

var asOf = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func toyotaSet() *models.SymbolRecordSet {
	return models.NewSymbolRecordSet("72030", "7203", []models.StatementRecord{
		stmt("2023-05-10", "FY", "", "1000"),
		stmt("2024-05-08", "FY", "", "1100"),
	}, asOf)
}

func TestAnalyzeEndToEnd(t *testing.T) {
	metrics := Analyze(toyotaSet(), asOf, DefaultOptions())

	assert.Equal(t, "72030", metrics.Symbol)
	assert.Equal(t, models.ProfitMetricOrdinary, metrics.AnnualProfitMetric)
	assert.Equal(t, models.Rate{Value: 10.0, Valid: true}, metrics.AverageProfitGrowth10Y)

	require.NotEmpty(t, metrics.RecentGrowth)
	assert.Equal(t, "2024-05-08", metrics.RecentGrowth[0].DisclosedDate)
	assert.Equal(t, models.Rate{Value: 10.0, Valid: true}, metrics.RecentGrowth[0].ProfitGrowth)
	assert.False(t, metrics.RecentGrowth[0].SalesGrowth.Valid)

	assert.Equal(t, 1.0, metrics.Score)
	assert.False(t, metrics.ROE.Valid)
}

func TestAnalyzeRecentWindowAndLimit(t *testing.T) {
	set := models.NewSymbolRecordSet("72030", "7203", []models.StatementRecord{
		stmt("2024-05-08", "FY", "4800", "480"),
		stmt("2024-02-06", "3Q", "3300", "330"),
		stmt("2023-11-01", "2Q", "2300", "230"),
		stmt("2023-08-01", "1Q", "1100", "110"),
		stmt("2023-05-10", "FY", "4600", "460"),
		stmt("2023-02-06", "3Q", "3000", "300"),
		stmt("2022-11-01", "2Q", "2200", "220"),
		stmt("2022-08-01", "1Q", "1000", "100"),
		stmt("2021-05-10", "FY", "3000", "300"),
	}, asOf)

	metrics := Analyze(set, asOf, DefaultOptions())

	require.Len(t, metrics.RecentGrowth, 4)
	assert.Equal(t, "FY", metrics.RecentGrowth[0].PeriodType)
	// FY 2024: 480-330=150 vs FY 2023: 460-300=160
	assert.Equal(t, models.Rate{Value: -6.3, Valid: true}, metrics.RecentGrowth[0].ProfitGrowth)
	// 1Q 2023: 110 vs 1Q 2022: 100
	assert.Equal(t, models.Rate{Value: 10.0, Valid: true}, metrics.RecentGrowth[3].ProfitGrowth)
	for _, p := range metrics.Periods {
		assert.GreaterOrEqual(t, p.DisclosedDate, "2022-06-02")
	}
}

func TestROE(t *testing.T) {
	latest := stmt("2024-05-08", "FY", "", "")
	latest.Profit = "100"
	latest.Equity = "0"
	older := stmt("2023-05-10", "FY", "", "")
	older.Profit = "120"
	older.Equity = "1000"
	quarter := stmt("2024-02-06", "3Q", "", "")
	quarter.Profit = "999"
	quarter.Equity = "1"

	assert.Equal(t, models.Rate{Value: 12.0, Valid: true}, ROE([]models.StatementRecord{latest, quarter, older}))
	assert.False(t, ROE([]models.StatementRecord{latest}).Valid)
}

func TestScore(t *testing.T) {
	valid := func(v float64) models.Rate { return models.Rate{Value: v, Valid: true} }

	tests := []struct {
		name    string
		average models.Rate
		recent  []models.GrowthRecord
		want    float64
	}{
		{"nothing defined", models.Rate{}, nil, 0},
		{"average clamped high", valid(25), nil, 1.0},
		{"average clamped low", valid(-5), nil, 0},
		{"average fraction", valid(4.4), nil, 0.4},
		{
			name:    "weighted recent periods",
			average: valid(10),
			recent: []models.GrowthRecord{
				{SalesGrowth: valid(10), ProfitGrowth: valid(20)},
				{SalesGrowth: valid(9.9), ProfitGrowth: valid(25)},
				{SalesGrowth: valid(12), ProfitGrowth: models.Rate{}},
				{SalesGrowth: models.Rate{}, ProfitGrowth: valid(19.9)},
			},
			// 1.0 + (0.4 + 0.4) + 0.3 + 0.2
			want: 2.3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(tt.average, tt.recent))
		})
	}
}

func TestServiceAnalyzeSymbol(t *testing.T) {
	loader := new(mockRecordLoader)
	loader.On("LoadOrFetch", mock.Anything, "7203").Return(toyotaSet(), nil)
	loader.On("LoadOrFetch", mock.Anything, "6758").Return(nil, nil)

	service := NewService(new(mockRecordStore), loader, DefaultOptions(), arbor.NewLogger())

	metrics, err := service.AnalyzeSymbol(context.Background(), "7203", asOf)
	require.NoError(t, err)
	require.NotNil(t, metrics)
	assert.Equal(t, 10.0, metrics.AverageProfitGrowth10Y.Value)

	metrics, err = service.AnalyzeSymbol(context.Background(), "6758", asOf)
	require.NoError(t, err)
	assert.Nil(t, metrics)

	loader.AssertExpectations(t)
}

func TestServiceAnalyzeSymbolLoadFailure(t *testing.T) {
	loader := new(mockRecordLoader)
	loader.On("LoadOrFetch", mock.Anything, "7203").Return(nil, models.ErrRemoteUnavailable)

	service := NewService(new(mockRecordStore), loader, DefaultOptions(), arbor.NewLogger())

	metrics, err := service.AnalyzeSymbol(context.Background(), "7203", asOf)
	assert.ErrorIs(t, err, models.ErrRemoteUnavailable)
	assert.Nil(t, metrics)
}

func TestServiceAnalyzeAll(t *testing.T) {
	store := new(mockRecordStore)
	store.On("List", mock.Anything).Return([]string{"67580", "72030", "99840"}, nil)
	loader := new(mockRecordLoader)
	loader.On("LoadOrFetch", mock.Anything, "67580").Return(nil, nil)
	loader.On("LoadOrFetch", mock.Anything, "72030").Return(toyotaSet(), nil)
	loader.On("LoadOrFetch", mock.Anything, "99840").Return(nil, models.ErrRemoteUnavailable)

	service := NewService(store, loader, DefaultOptions(), arbor.NewLogger())

	results, err := service.AnalyzeAll(context.Background(), asOf)

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "72030", results[0].Symbol)
	store.AssertNotCalled(t, "Load", mock.Anything, mock.Anything)
}
