package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-clutch-metrics/internal/report"
	"github.com/pable/go-clutch-metrics/internal/storage"
)

var failuresCmd = &cobra.Command{
	Use:   "failures",
	Short: "List games that failed in previous fetch runs",
	Args:  cobra.NoArgs,
	RunE:  runFailures,
}

func runFailures(cmd *cobra.Command, args []string) error {
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	list, err := db.ListFetchFailures()
	if err != nil {
		return fmt.Errorf("list failures: %w", err)
	}
	if len(list) == 0 {
		fmt.Fprintln(os.Stdout, "No fetch failures recorded.")
		return nil
	}
	report.PrintFailures(os.Stdout, list)
	return nil
}
