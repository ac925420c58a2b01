package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pable/go-clutch-metrics/internal/report"
	"github.com/pable/go-clutch-metrics/internal/storage"
)

var trendCmd = &cobra.Command{
	Use:   "trend <player>",
	Short: "Per-game clutch line for a player",
	Long:  "Player names are matched exactly as the feed prints them, e.g. \"GARCIA, J.\".",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTrend,
}

func runTrend(cmd *cobra.Command, args []string) error {
	player := strings.Join(args, " ")

	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	rows, err := db.PlayerTrend(player)
	if err != nil {
		return fmt.Errorf("query trend: %w", err)
	}
	if len(rows) == 0 {
		fmt.Printf("no clutch games found for %q\n", player)
		return nil
	}
	report.PrintTrendTable(os.Stdout, rows)
	return nil
}
