package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached symbols",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := newApplication()
		if err != nil {
			return err
		}
		defer application.Close()

		symbols, err := application.StorageManager.RecordStore().List(cmd.Context())
		if err != nil {
			return err
		}
		for _, symbol := range symbols {
			fmt.Println(symbol)
		}
		logger.Debug().Int("count", len(symbols)).Msg("Listed cached symbols")
		return nil
	},
}
