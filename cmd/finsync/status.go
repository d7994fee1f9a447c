package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/ternarybob/finsync/internal/models"
	"github.com/ternarybob/finsync/internal/services/freshness"
)

var statusCheck bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the freshness state",
	Long:  `Prints the persisted freshness state. With --check the freshness decision for today is computed as well (this may query the API once).`,
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusCheck, "check", false, "Also decide whether a sync is needed today")
}

type statusReport struct {
	StateFile string                 `json:"state_file"`
	State     *models.FreshnessState `json:"state"`
	Decision  *freshness.Decision    `json:"decision,omitempty"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	application, err := newApplication()
	if err != nil {
		return err
	}
	defer application.Close()

	report := statusReport{StateFile: config.StateFilePath()}

	report.State, err = application.StorageManager.FreshnessStore().Load(cmd.Context())
	if err != nil {
		return err
	}

	if statusCheck {
		if err := application.RequireToken(); err != nil {
			return err
		}
		decision, err := application.Tracker.Decide(cmd.Context(), application.Today())
		if err != nil {
			return err
		}
		report.Decision = &decision
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}
