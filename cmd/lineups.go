package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-clutch-metrics/internal/report"
	"github.com/pable/go-clutch-metrics/internal/storage"
)

var (
	lineupsTeam       string
	lineupsMinSeconds float64
)

var lineupsCmd = &cobra.Command{
	Use:   "lineups",
	Short: "Season clutch lineup leaderboard",
	Long: `Sums the stored five-man lineup rows across games and ranks them by net
rating within each team. Lineups below --min-seconds of clutch time are hidden.`,
	Args: cobra.NoArgs,
	RunE: runLineups,
}

func init() {
	lineupsCmd.Flags().StringVar(&lineupsTeam, "team", "", "only this team")
	lineupsCmd.Flags().Float64Var(&lineupsMinSeconds, "min-seconds", 60, "minimum clutch seconds together")
}

func runLineups(cmd *cobra.Command, args []string) error {
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	board, err := db.LineupLeaderboard(lineupsTeam, lineupsMinSeconds)
	if err != nil {
		return fmt.Errorf("lineup leaderboard: %w", err)
	}
	if len(board) == 0 {
		fmt.Fprintln(os.Stdout, "No lineups match.")
		return nil
	}
	report.PrintLeaderboard(os.Stdout, board)
	return nil
}
