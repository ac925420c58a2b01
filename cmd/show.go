package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-clutch-metrics/internal/logging"
	"github.com/pable/go-clutch-metrics/internal/model"
	"github.com/pable/go-clutch-metrics/internal/pipeline"
	"github.com/pable/go-clutch-metrics/internal/report"
	"github.com/pable/go-clutch-metrics/internal/snapshot"
	"github.com/pable/go-clutch-metrics/internal/storage"
)

var (
	showPlayer     string
	showLineupsAll bool
)

var showCmd = &cobra.Command{
	Use:   "show <game-id>",
	Short: "Show a stored game's clutch tables",
	Long: `Prints the game summary followed by the clutch player, lineup and assist tables.

--lineups-all also lists every clutch lineup segment, including those that did
not resolve to exactly five players. Segments are not stored, so the game is
re-parsed from its snapshot under snapshot_dir.`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	showCmd.Flags().StringVar(&showPlayer, "player", "", "highlight this player")
	showCmd.Flags().BoolVar(&showLineupsAll, "lineups-all", false, "also list invalid lineup segments (needs a snapshot)")
}

func runShow(cmd *cobra.Command, args []string) error {
	gameID := args[0]

	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	found, err := printStoredGame(os.Stdout, db, gameID, showPlayer)
	if err != nil {
		return err
	}
	if !found {
		fmt.Fprintf(os.Stderr, "No game stored with id %q\n", gameID)
		return nil
	}
	if showLineupsAll {
		return printSnapshotSegments(os.Stdout, gameID)
	}
	return nil
}

// printStoredGame prints every stored table of a game. It reports false when
// the game is not stored.
func printStoredGame(w io.Writer, db *storage.DB, gameID, focus string) (bool, error) {
	game, err := db.GetGame(gameID)
	if err != nil {
		return false, fmt.Errorf("query game: %w", err)
	}
	if game == nil {
		return false, nil
	}
	players, err := db.GetPlayerClutchStats(gameID)
	if err != nil {
		return true, fmt.Errorf("get player stats: %w", err)
	}
	lineups, err := db.GetLineupClutchStats(gameID)
	if err != nil {
		return true, fmt.Errorf("get lineup stats: %w", err)
	}
	pairs, err := db.GetAssistPairs(gameID)
	if err != nil {
		return true, fmt.Errorf("get assist pairs: %w", err)
	}
	printGameTables(w, *game, players, lineups, pairs, focus)
	return true, nil
}

func printGameTables(w io.Writer, game model.GameSummary, players []model.PlayerClutchMetrics,
	lineups []model.LineupClutchMetrics, pairs []model.AssistPair, focus string) {
	report.PrintGameSummary(w, game)
	if game.ClutchSeconds == 0 {
		fmt.Fprintln(w, "\nNo clutch time in this game.")
		return
	}
	fmt.Fprintln(w, "\nPlayers:")
	report.PrintPlayerTable(w, players, focus)
	fmt.Fprintln(w, "\nLineups:")
	report.PrintLineupTable(w, lineups)
	if len(pairs) > 0 {
		fmt.Fprintln(w, "\nAssists:")
		report.PrintAssistTable(w, pairs)
	}
}

func printSnapshotSegments(w io.Writer, gameID string) error {
	if cfg.SnapshotDir == "" {
		fmt.Fprintln(os.Stderr, "--lineups-all needs snapshot_dir to be configured")
		return nil
	}
	path := snapshot.PathFor(cfg.SnapshotDir, gameID)
	html, err := snapshot.Load(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "No snapshot for game %s at %s\n", gameID, path)
			return nil
		}
		return fmt.Errorf("load snapshot: %w", err)
	}
	res, err := pipeline.ProcessHTML(gameID, html, cfg.Engine(), logging.Default())
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "\nLineup segments:")
	report.PrintSegmentTable(w, res.Segments, cfg.Clock())
	return nil
}
