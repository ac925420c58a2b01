package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pable/go-clutch-metrics/internal/logging"
	"github.com/pable/go-clutch-metrics/internal/pipeline"
	"github.com/pable/go-clutch-metrics/internal/report"
	"github.com/pable/go-clutch-metrics/internal/snapshot"
)

var (
	parseGameID   string
	parsePlayer   string
	parseSegments bool
)

var parseCmd = &cobra.Command{
	Use:   "parse <snapshot.html[.zst]>",
	Short: "Re-parse a saved widget snapshot and store its metrics",
	Long: `Parses a play-by-play widget saved by 'fetch --snapshot-dir' (or any saved
keyfacts HTML) without touching the network, stores the result and prints it.
The game id defaults to the snapshot file name.`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().StringVar(&parseGameID, "game-id", "", "game id (default: from the file name)")
	parseCmd.Flags().StringVar(&parsePlayer, "player", "", "highlight this player")
	parseCmd.Flags().BoolVar(&parseSegments, "segments", false, "also print every clutch lineup segment")
}

func runParse(cmd *cobra.Command, args []string) error {
	path := args[0]
	gameID := parseGameID
	if gameID == "" {
		gameID = snapshot.GameID(path)
	}

	html, err := snapshot.Load(path)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	fmt.Fprintf(os.Stdout, "Parsing %s as game %s...\n", path, gameID)
	res, err := pipeline.ProcessHTML(gameID, html, cfg.Engine(), logging.Default())
	if err != nil {
		return err
	}
	res.Summary.StoredAt = time.Now().UTC().Format(time.RFC3339)

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.StoreGameResult(res); err != nil {
		return fmt.Errorf("store game: %w", err)
	}

	printGameTables(os.Stdout, res.Summary, res.Players, res.Lineups, res.Assists, parsePlayer)
	if parseSegments {
		fmt.Fprintln(os.Stdout, "\nLineup segments:")
		report.PrintSegmentTable(os.Stdout, res.Segments, cfg.Clock())
	}
	return nil
}
