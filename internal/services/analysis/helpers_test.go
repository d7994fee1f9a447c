package analysis

import (
	"github.com/ternarybob/finsync/internal/models"
)

const fsDoc = "FinancialStatements_Consolidated_JP"

// stmt builds a financial-statement record; ordinary is used for both sales and profit
// unless overridden by the caller.
func stmt(date, period, sales, ordinary string) models.StatementRecord {
	return models.StatementRecord{
		LocalCode:           "72030",
		DisclosedDate:       date,
		TypeOfDocument:      period + fsDoc,
		TypeOfCurrentPeriod: period,
		NetSales:            sales,
		OrdinaryProfit:      ordinary,
	}
}
