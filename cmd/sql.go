package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/pable/go-clutch-metrics/internal/storage"
)

var sqlCmd = &cobra.Command{
	Use:   "sql <query>",
	Short: "Run a raw SQL query against the metrics database",
	Long: `Run an arbitrary SQL query against the metrics database and print results as a table.

Schema overview:
  games(game_id, team_a, team_b, score_a, score_b, periods, row_count, duplicates,
    untimed, unattributed, invalid_segments, clutch_seconds, run_id, stored_at)
  player_clutch_stats(game_id, team, player, sec_clutch, pts, fga, fgm, fg3a, fg3m,
    fta, ftm, ast, tov, stl, blk, reb, oreb, dreb, plus_minus, points_for,
    points_against, fga_on, ..., opp_fta_on, efg, ts, usg, net_rtg)
  lineup_clutch_stats(game_id, team, lineup, n_players, sec_clutch, points_for,
    points_against, fga_on, ..., opp_fta_on, off_rtg, def_rtg, net_rtg)
  assist_pairs(game_id, team, passer, scorer, count)
  clutch_events(game_id, seq, elapsed, period, clock, team, player, detail)
  fetch_failures(id, game_id, run_id, attempts, error, failed_at)

Lineups are stored as "A | B | C | D | E" with names sorted. Undefined rates are NULL.
Clutch minutes: sec_clutch / 60.0`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSQL,
}

func runSQL(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()
	return printQuery(db, query)
}

// printQuery runs query and renders every column as text.
func printQuery(db *storage.DB, query string) error {
	cols, rows, err := db.QueryRaw(query)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Println("(no rows)")
		return nil
	}

	table := tablewriter.NewTable(os.Stdout, tablewriter.WithConfig(tablewriter.Config{
		Row:    tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignRight}},
		Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignCenter}},
	}))

	colsAny := make([]any, len(cols))
	for i, c := range cols {
		colsAny[i] = c
	}
	table.Header(colsAny...)

	for _, row := range rows {
		rowAny := make([]any, len(row))
		for i, v := range row {
			rowAny[i] = v
		}
		table.Append(rowAny...)
	}
	table.Render()
	fmt.Fprintf(os.Stdout, "\n(%d rows)\n", len(rows))
	return nil
}
