// Package analysis derives standalone period values, growth rates and summary
// metrics from cached financial statement records.
package analysis

import (
	"fmt"

	"github.com/ternarybob/finsync/internal/models"
)

// Policy selects between ordinary and operating profit for a record series.
type Policy string

const (
	// PolicyStrict picks ordinary profit only when every annual record carries it.
	PolicyStrict Policy = "strict"
	// PolicyLenient picks ordinary profit when any record carries it.
	PolicyLenient Policy = "lenient"
)

// ParsePolicy converts a configuration value into a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyStrict, PolicyLenient:
		return Policy(s), nil
	}
	return "", fmt.Errorf("unknown selection policy %q", s)
}

// SelectProfitMetric applies the policy to the financial-statement records of the series.
func SelectProfitMetric(policy Policy, records []models.StatementRecord) models.ProfitMetric {
	if policy == PolicyLenient {
		return SelectLenient(records)
	}
	return SelectStrict(records)
}

// SelectStrict returns ordinary profit only if it is parseable on every
// annual financial-statement record. A series without annual records keeps ordinary.
func SelectStrict(records []models.StatementRecord) models.ProfitMetric {
	for _, r := range records {
		if !r.IsFinancialStatement() || !r.IsAnnual() {
			continue
		}
		if !models.ParseAmount(r.OrdinaryProfit).Valid {
			return models.ProfitMetricOperating
		}
	}
	return models.ProfitMetricOrdinary
}

// SelectLenient returns ordinary profit if at least one financial-statement
// record carries a parseable value. An empty series keeps ordinary.
func SelectLenient(records []models.StatementRecord) models.ProfitMetric {
	considered := 0
	for _, r := range records {
		if !r.IsFinancialStatement() {
			continue
		}
		considered++
		if models.ParseAmount(r.OrdinaryProfit).Valid {
			return models.ProfitMetricOrdinary
		}
	}
	if considered == 0 {
		return models.ProfitMetricOrdinary
	}
	return models.ProfitMetricOperating
}
