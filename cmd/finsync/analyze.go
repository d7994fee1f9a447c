package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ternarybob/finsync/internal/models"
)

var analyzeAsOf string

var analyzeCmd = &cobra.Command{
	Use:   "analyze [code...]",
	Short: "Compute growth metrics from the cache",
	Long:  `Reconstructs standalone period values and reports YoY growth, the multi-year average profit growth, ROE and score as JSON. Without codes every cached symbol is analyzed. Symbols missing from the cache or with an unreadable cache file are fetched first.`,
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeAsOf, "as-of", "", "Analysis date YYYY-MM-DD (default: today)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	application, err := newApplication()
	if err != nil {
		return err
	}
	defer application.Close()

	asOf := application.Today()
	if analyzeAsOf != "" {
		asOf, err = time.ParseInLocation(models.DateLayout, analyzeAsOf, config.Location())
		if err != nil {
			return fmt.Errorf("invalid --as-of date %q: %w", analyzeAsOf, err)
		}
	}

	ctx := cmd.Context()
	var results []*models.SymbolMetrics
	if len(args) == 0 {
		results, err = application.AnalysisService.AnalyzeAll(ctx, asOf)
		if err != nil {
			return err
		}
	} else {
		for _, code := range args {
			metrics, err := application.AnalysisService.AnalyzeSymbol(ctx, code, asOf)
			if err != nil {
				return fmt.Errorf("failed to analyze %s: %w", code, err)
			}
			if metrics == nil {
				logger.Warn().Str("code", code).Msg("No statements available for code")
				continue
			}
			results = append(results, metrics)
		}
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(results)
}
