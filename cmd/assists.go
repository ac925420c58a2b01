package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-clutch-metrics/internal/report"
	"github.com/pable/go-clutch-metrics/internal/storage"
)

var assistsTeam string

var assistsCmd = &cobra.Command{
	Use:   "assists",
	Short: "Season passer to scorer assist pairs",
	Args:  cobra.NoArgs,
	RunE:  runAssists,
}

func init() {
	assistsCmd.Flags().StringVar(&assistsTeam, "team", "", "only this team")
}

func runAssists(cmd *cobra.Command, args []string) error {
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	pairs, err := db.SeasonAssistPairs(assistsTeam)
	if err != nil {
		return fmt.Errorf("season assists: %w", err)
	}
	if len(pairs) == 0 {
		fmt.Fprintln(os.Stdout, "No assist pairs stored.")
		return nil
	}
	report.PrintAssistTable(os.Stdout, pairs)
	return nil
}
