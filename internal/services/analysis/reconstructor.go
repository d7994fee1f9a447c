package analysis

import (
	"github.com/ternarybob/finsync/internal/models"
)

// predecessorOf maps a cumulative period type to the period type it accumulates over.
var predecessorOf = map[string]string{
	models.PeriodQ2: models.PeriodQ1,
	models.PeriodQ3: models.PeriodQ2,
	models.PeriodFY: models.PeriodQ3,
}

// Reconstruct converts year-to-date cumulative figures into standalone period values.
// records must be newest first; the result keeps that order, one value per record.
//
// 1Q values are taken as is. 2Q, 3Q and FY subtract the nearest older record of the
// preceding period type that carries a parseable figure. When none exists the
// cumulative figure is used unchanged and the value is flagged as degraded.
func Reconstruct(symbol string, records []models.StatementRecord, metric models.ProfitMetric) []models.PeriodValue {
	salesOf := func(r models.StatementRecord) models.Amount { return models.ParseAmount(r.NetSales) }
	profitOf := metric.Of

	values := make([]models.PeriodValue, 0, len(records))
	for i, r := range records {
		older := records[i+1:]
		sales, salesDegraded := standalone(r, older, salesOf)
		profit, profitDegraded := standalone(r, older, profitOf)

		values = append(values, models.PeriodValue{
			Symbol:         symbol,
			DisclosedDate:  r.DisclosedDate,
			PeriodType:     r.TypeOfCurrentPeriod,
			FiscalYear:     r.FiscalYear(),
			NetSales:       sales,
			Profit:         profit,
			SalesDegraded:  salesDegraded,
			ProfitDegraded: profitDegraded,
		})
	}
	return values
}

// standalone computes one field's period value and whether the fallback was used
func standalone(r models.StatementRecord, older []models.StatementRecord, field func(models.StatementRecord) models.Amount) (models.Amount, bool) {
	cumulative := field(r)
	if !cumulative.Valid {
		return models.Amount{}, false
	}

	predecessorType, ok := predecessorOf[r.TypeOfCurrentPeriod]
	if !ok {
		// 1Q, or a period type without a cumulative predecessor
		return cumulative, false
	}

	for _, candidate := range older {
		if candidate.TypeOfCurrentPeriod != predecessorType {
			continue
		}
		previous := field(candidate)
		if !previous.Valid {
			continue
		}
		return cumulative.Sub(previous), false
	}

	return cumulative, true
}
