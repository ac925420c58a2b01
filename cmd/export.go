package cmd

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/pable/go-clutch-metrics/internal/model"
	"github.com/pable/go-clutch-metrics/internal/storage"
)

var (
	exportAll    bool
	exportTable  string
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export [game-id]",
	Short: "Export per-game clutch tables as CSV or JSON",
	Long: `Writes one of the flat per-game tables for downstream season aggregation.

Tables:
  players  one row per (game, team, player), with MIN_CLUTCH in minutes and seconds
  lineups  one row per (game, team, lineup)
  assists  one row per (game, team, passer, scorer)

Undefined rates are empty in CSV and null in JSON.

Examples:
  clutchmetrics export 2301 --table players
  clutchmetrics export --all --table lineups --format json --out lineups.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().BoolVar(&exportAll, "all", false, "export every stored game")
	exportCmd.Flags().StringVar(&exportTable, "table", "players", "players, lineups or assists")
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "csv or json")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output file (default stdout)")
}

// playerExport is the JSON shape of a player row.
type playerExport struct {
	GameID        string   `json:"game_id"`
	Team          string   `json:"team"`
	Player        string   `json:"player"`
	MinClutch     float64  `json:"min_clutch"`
	SecClutch     float64  `json:"sec_clutch"`
	PTS           int      `json:"pts"`
	FGA           int      `json:"fga"`
	FGM           int      `json:"fgm"`
	FG3A          int      `json:"fg3a"`
	FG3M          int      `json:"fg3m"`
	FTA           int      `json:"fta"`
	FTM           int      `json:"ftm"`
	AST           int      `json:"ast"`
	TOV           int      `json:"tov"`
	STL           int      `json:"stl"`
	BLK           int      `json:"blk"`
	REB           int      `json:"reb"`
	OREB          int      `json:"oreb"`
	DREB          int      `json:"dreb"`
	PlusMinus     int      `json:"plus_minus"`
	PointsFor     int      `json:"points_for"`
	PointsAgainst int      `json:"points_against"`
	EFG           *float64 `json:"efg"`
	TS            *float64 `json:"ts"`
	USG           *float64 `json:"usg"`
	NetRtg        *float64 `json:"net_rtg"`
}

// lineupExport is the JSON shape of a lineup row.
type lineupExport struct {
	GameID        string   `json:"game_id"`
	Team          string   `json:"team"`
	Lineup        []string `json:"lineup"`
	MinClutch     float64  `json:"min_clutch"`
	SecClutch     float64  `json:"sec_clutch"`
	PointsFor     int      `json:"points_for"`
	PointsAgainst int      `json:"points_against"`
	OffRtg        *float64 `json:"off_rtg"`
	DefRtg        *float64 `json:"def_rtg"`
	NetRtg        *float64 `json:"net_rtg"`
}

// assistExport is the JSON shape of an assist pair.
type assistExport struct {
	GameID string `json:"game_id"`
	Team   string `json:"team"`
	Passer string `json:"passer"`
	Scorer string `json:"scorer"`
	Count  int    `json:"count"`
}

func runExport(cmd *cobra.Command, args []string) error {
	var gameID string
	switch {
	case exportAll && len(args) > 0:
		return fmt.Errorf("give a game id or --all, not both")
	case !exportAll && len(args) == 0:
		return fmt.Errorf("give a game id or --all")
	case len(args) == 1:
		gameID = args[0]
	}
	if exportFormat != "csv" && exportFormat != "json" {
		return fmt.Errorf("unknown format %q (csv or json)", exportFormat)
	}

	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	header, rows, doc, err := exportData(db, exportTable, gameID)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if exportOut != "" {
		f, err := os.Create(exportOut)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		w = f
	}

	if exportFormat == "json" {
		data, err := sonic.Marshal(doc)
		if err != nil {
			return fmt.Errorf("marshal json: %w", err)
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("write json: %w", err)
		}
	} else {
		cw := csv.NewWriter(w)
		if err := cw.Write(header); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		if err := cw.WriteAll(rows); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
	}

	if exportOut != "" {
		fmt.Fprintf(os.Stderr, "Wrote %d %s rows to %s\n", len(rows), exportTable, exportOut)
	}
	return nil
}

// exportData loads a table and returns both its CSV rows and its JSON document.
func exportData(db *storage.DB, table, gameID string) ([]string, [][]string, any, error) {
	switch table {
	case "players":
		players, err := db.GetPlayerClutchStats(gameID)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("get player stats: %w", err)
		}
		header, rows := playerCSV(players)
		return header, rows, playerDocs(players), nil
	case "lineups":
		lineups, err := db.GetLineupClutchStats(gameID)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("get lineup stats: %w", err)
		}
		header, rows := lineupCSV(lineups)
		return header, rows, lineupDocs(lineups), nil
	case "assists":
		pairs, err := db.GetAssistPairs(gameID)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("get assist pairs: %w", err)
		}
		header := []string{"game_id", "team", "passer", "scorer", "count"}
		rows := make([][]string, 0, len(pairs))
		docs := make([]assistExport, 0, len(pairs))
		for _, a := range pairs {
			rows = append(rows, []string{a.GameID, a.Team, a.Passer, a.Scorer, strconv.Itoa(a.Count)})
			docs = append(docs, assistExport{a.GameID, a.Team, a.Passer, a.Scorer, a.Count})
		}
		return header, rows, docs, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown table %q (players, lineups or assists)", table)
	}
}

func playerCSV(players []model.PlayerClutchMetrics) ([]string, [][]string) {
	header := []string{
		"game_id", "team", "player", "min_clutch", "sec_clutch",
		"pts", "fga", "fgm", "fg3a", "fg3m", "fta", "ftm", "ast", "tov", "stl", "blk",
		"reb", "oreb", "dreb", "plus_minus", "points_for", "points_against",
		"efg", "ts", "usg", "net_rtg",
	}
	rows := make([][]string, 0, len(players))
	for i := range players {
		p := &players[i]
		row := []string{p.GameID, p.Team, p.Player, csvFloat(p.Minutes()), csvFloat(p.Seconds)}
		for _, v := range []int{
			p.PTS, p.FGA, p.FGM, p.ThreePA, p.ThreePM, p.FTA, p.FTM, p.AST, p.TO, p.STL, p.BLK,
			p.REB, p.REBO, p.REBD, p.PlusMinus, p.PointsFor, p.PointsAgainst,
		} {
			row = append(row, strconv.Itoa(v))
		}
		row = append(row, csvFloat(p.EFG()), csvFloat(p.TS()), csvFloat(p.Usage()), csvFloat(p.NetRating()))
		rows = append(rows, row)
	}
	return header, rows
}

func playerDocs(players []model.PlayerClutchMetrics) []playerExport {
	out := make([]playerExport, 0, len(players))
	for i := range players {
		p := &players[i]
		out = append(out, playerExport{
			GameID: p.GameID, Team: p.Team, Player: p.Player,
			MinClutch: p.Minutes(), SecClutch: p.Seconds,
			PTS: p.PTS, FGA: p.FGA, FGM: p.FGM, FG3A: p.ThreePA, FG3M: p.ThreePM,
			FTA: p.FTA, FTM: p.FTM, AST: p.AST, TOV: p.TO, STL: p.STL, BLK: p.BLK,
			REB: p.REB, OREB: p.REBO, DREB: p.REBD,
			PlusMinus: p.PlusMinus, PointsFor: p.PointsFor, PointsAgainst: p.PointsAgainst,
			EFG: jsonFloat(p.EFG()), TS: jsonFloat(p.TS()), USG: jsonFloat(p.Usage()), NetRtg: jsonFloat(p.NetRating()),
		})
	}
	return out
}

func lineupCSV(lineups []model.LineupClutchMetrics) ([]string, [][]string) {
	header := []string{
		"game_id", "team", "lineup", "min_clutch", "sec_clutch",
		"points_for", "points_against", "off_rtg", "def_rtg", "net_rtg",
	}
	rows := make([][]string, 0, len(lineups))
	for i := range lineups {
		l := &lineups[i]
		rows = append(rows, []string{
			l.GameID, l.Team, l.Key(), csvFloat(l.Minutes()), csvFloat(l.Seconds),
			strconv.Itoa(l.PointsFor), strconv.Itoa(l.PointsAgainst),
			csvFloat(l.OffRating()), csvFloat(l.DefRating()), csvFloat(l.NetRating()),
		})
	}
	return header, rows
}

func lineupDocs(lineups []model.LineupClutchMetrics) []lineupExport {
	out := make([]lineupExport, 0, len(lineups))
	for i := range lineups {
		l := &lineups[i]
		out = append(out, lineupExport{
			GameID: l.GameID, Team: l.Team, Lineup: l.Players,
			MinClutch: l.Minutes(), SecClutch: l.Seconds,
			PointsFor: l.PointsFor, PointsAgainst: l.PointsAgainst,
			OffRtg: jsonFloat(l.OffRating()), DefRtg: jsonFloat(l.DefRating()), NetRtg: jsonFloat(l.NetRating()),
		})
	}
	return out
}

// csvFloat formats v, leaving undefined values empty.
func csvFloat(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func jsonFloat(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
