package models

// ProfitMetric names the statement field used as the profit series.
type ProfitMetric string

const (
	ProfitMetricOrdinary  ProfitMetric = "OrdinaryProfit"
	ProfitMetricOperating ProfitMetric = "OperatingProfit"
)

// Of extracts the metric from a record.
func (m ProfitMetric) Of(r StatementRecord) Amount {
	switch m {
	case ProfitMetricOperating:
		return ParseAmount(r.OperatingProfit)
	default:
		return ParseAmount(r.OrdinaryProfit)
	}
}

// PeriodValue holds standalone (non-cumulative) figures for one reporting period.
// SalesDegraded/ProfitDegraded are set when no predecessor was found and the
// cumulative figure was used as is.
type PeriodValue struct {
	Symbol         string `json:"symbol"`
	DisclosedDate  string `json:"disclosed_date"`
	PeriodType     string `json:"period_type"`
	FiscalYear     int    `json:"fiscal_year"`
	NetSales       Amount `json:"net_sales"`
	Profit         Amount `json:"profit"`
	SalesDegraded  bool   `json:"sales_degraded,omitempty"`
	ProfitDegraded bool   `json:"profit_degraded,omitempty"`
}

// GrowthRecord holds year-over-year growth rates for one period.
type GrowthRecord struct {
	Symbol        string `json:"symbol"`
	DisclosedDate string `json:"disclosed_date"`
	PeriodType    string `json:"period_type"`
	SalesGrowth   Rate   `json:"sales_growth_rate"`
	ProfitGrowth  Rate   `json:"profit_growth_rate"`
}

// SymbolMetrics is the analysis summary for one security.
type SymbolMetrics struct {
	Symbol                 string         `json:"symbol"`
	ProfitMetric           ProfitMetric   `json:"profit_metric"`
	AnnualProfitMetric     ProfitMetric   `json:"annual_profit_metric"`
	AverageProfitGrowth10Y Rate           `json:"average_profit_growth_10y"`
	RecentGrowth           []GrowthRecord `json:"recent_growth"`
	ROE                    Rate           `json:"roe"`
	Score                  float64        `json:"score"`
	Periods                []PeriodValue  `json:"periods,omitempty"`
}
