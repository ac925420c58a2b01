package report

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/pable/go-clutch-metrics/internal/clock"
	"github.com/pable/go-clutch-metrics/internal/model"
)

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
}

// rate formats v with format, or "—" when the rate is undefined.
func rate(format string, v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "—"
	}
	return fmt.Sprintf(format, v)
}

func pct(v float64) string { return rate("%.1f%%", 100*v) }

// minutes renders seconds as m:ss.
func minutes(seconds float64) string {
	s := int(math.Round(seconds))
	return fmt.Sprintf("%d:%02d", s/60, s%60)
}

func madeOf(made, att int) string { return fmt.Sprintf("%d-%d", made, att) }

func signed(n int) string {
	if n > 0 {
		return "+" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

// PrintGameSummary prints a one-line header for a stored game.
func PrintGameSummary(w io.Writer, s model.GameSummary) {
	fmt.Fprintf(w, "\nGame: %s  |  %s %d – %d %s  |  Periods: %d  |  Clutch: %s  |  Rows: %d (dup %d, untimed %d, unattributed %d)  |  Invalid segments: %d\n\n",
		s.GameID, s.Teams[0], s.FinalScore[0], s.FinalScore[1], s.Teams[1], s.Periods,
		minutes(s.ClutchSeconds), s.Parse.Rows, s.Parse.Duplicates, s.Parse.Untimed,
		s.Parse.Unattributed, s.InvalidSegments)
}

// PrintGameList prints one row per stored game.
func PrintGameList(w io.Writer, games []model.GameSummary) {
	table := newTable(w)
	table.Header("GAME", "HOME", "AWAY", "SCORE", "PER", "CLUTCH", "ROWS", "UNTIMED", "UNATTR", "INVALID_SEG", "STORED")
	for _, s := range games {
		table.Append(
			s.GameID,
			s.Teams[0],
			s.Teams[1],
			fmt.Sprintf("%d-%d", s.FinalScore[0], s.FinalScore[1]),
			strconv.Itoa(s.Periods),
			minutes(s.ClutchSeconds),
			strconv.Itoa(s.Parse.Rows),
			strconv.Itoa(s.Parse.Untimed),
			strconv.Itoa(s.Parse.Unattributed),
			strconv.Itoa(s.InvalidSegments),
			s.StoredAt,
		)
	}
	table.Render()
}

// PrintPlayerTable prints the per-player clutch table.
// If focus is non-empty, that player's row is marked with ">".
func PrintPlayerTable(w io.Writer, players []model.PlayerClutchMetrics, focus string) {
	table := newTable(w)
	table.Header(
		" ", "TEAM", "PLAYER", "MIN", "PTS", "FG", "3P", "FT", "eFG%", "TS%",
		"AST", "TO", "STL", "BLK", "REB", "OREB", "DREB", "+/-", "USG%", "ORTG", "DRTG", "NET",
	)
	for i := range players {
		p := &players[i]
		marker := " "
		if focus != "" && p.Player == focus {
			marker = ">"
		}
		table.Append(
			marker,
			p.Team,
			p.Player,
			minutes(p.Seconds),
			strconv.Itoa(p.PTS),
			madeOf(p.FGM, p.FGA),
			madeOf(p.ThreePM, p.ThreePA),
			madeOf(p.FTM, p.FTA),
			pct(p.EFG()),
			pct(p.TS()),
			strconv.Itoa(p.AST),
			strconv.Itoa(p.TO),
			strconv.Itoa(p.STL),
			strconv.Itoa(p.BLK),
			strconv.Itoa(p.REB),
			strconv.Itoa(p.REBO),
			strconv.Itoa(p.REBD),
			signed(p.PlusMinus),
			rate("%.1f", p.Usage()),
			rate("%.1f", p.OffRating()),
			rate("%.1f", p.DefRating()),
			rate("%+.1f", p.NetRating()),
		)
	}
	table.Render()
}

// PrintLineupTable prints per-game lineup clutch rows.
func PrintLineupTable(w io.Writer, lineups []model.LineupClutchMetrics) {
	table := newTable(w)
	table.Header("TEAM", "LINEUP", "MIN", "PF", "PA", "OFF_POSS", "DEF_POSS", "ORTG", "DRTG", "NET")
	for i := range lineups {
		l := &lineups[i]
		table.Append(
			l.Team,
			l.Key(),
			minutes(l.Seconds),
			strconv.Itoa(l.PointsFor),
			strconv.Itoa(l.PointsAgainst),
			fmt.Sprintf("%.1f", l.Off.Possessions()),
			fmt.Sprintf("%.1f", l.Def.Possessions()),
			rate("%.1f", l.OffRating()),
			rate("%.1f", l.DefRating()),
			rate("%+.1f", l.NetRating()),
		)
	}
	table.Render()
}

// PrintLeaderboard prints season lineup aggregates.
func PrintLeaderboard(w io.Writer, aggs []model.LineupAggregate) {
	table := newTable(w)
	table.Header("TEAM", "LINEUP", "GP", "MIN", "PF", "PA", "ORTG", "DRTG", "NET")
	for i := range aggs {
		a := &aggs[i]
		table.Append(
			a.Team,
			a.Key(),
			strconv.Itoa(a.Games),
			minutes(a.Seconds),
			strconv.Itoa(a.PointsFor),
			strconv.Itoa(a.PointsAgainst),
			rate("%.1f", a.OffRating()),
			rate("%.1f", a.DefRating()),
			rate("%+.1f", a.NetRating()),
		)
	}
	table.Render()
}

// PrintSegmentTable lists clutch lineup segments, including invalid ones.
// Bounds are shown as period and game clock.
func PrintSegmentTable(w io.Writer, segs []model.LineupSegment, cc clock.Config) {
	table := newTable(w)
	table.Header("TEAM", "FROM", "TO", "SEC", "N", "VALID", "PLAYERS")
	for _, s := range segs {
		valid := "yes"
		if !s.Valid {
			valid = "NO"
		}
		table.Append(
			s.Team,
			gameTime(cc, s.Start, false),
			gameTime(cc, s.End, true),
			fmt.Sprintf("%.0f", s.Duration()),
			strconv.Itoa(len(s.Players)),
			valid,
			s.Key(),
		)
	}
	table.Render()
}

// PrintAssistTable prints passer→scorer pairs.
func PrintAssistTable(w io.Writer, pairs []model.AssistPair) {
	table := newTable(w)
	table.Header("TEAM", "PASSER", "SCORER", "N")
	for _, a := range pairs {
		table.Append(a.Team, a.Passer, a.Scorer, strconv.Itoa(a.Count))
	}
	table.Render()
}

// PrintEventTable prints the clutch-time event audit.
func PrintEventTable(w io.Writer, events []model.Event) {
	table := newTable(w)
	table.Header("T", "PER", "CLOCK", "TEAM", "PLAYER", "DETAIL")
	for i := range events {
		e := &events[i]
		per := "—"
		if e.Period != nil {
			per = strconv.Itoa(*e.Period)
		}
		clk := e.ClockString()
		if clk == "" {
			clk = "—"
		}
		table.Append(
			rate("%.0f", e.T()),
			per,
			clk,
			e.Team,
			e.Player,
			e.Detail,
		)
	}
	table.Render()
}

// PrintTrendTable prints a player's clutch line game by game.
func PrintTrendTable(w io.Writer, rows []model.PlayerTrendRow) {
	table := newTable(w)
	table.Header("GAME", "TEAM", "VS", "MIN", "PTS", "FG", "3P", "FT", "TS%", "AST", "TO", "+/-", "NET")
	for i := range rows {
		r := &rows[i]
		table.Append(
			r.GameID,
			r.Team,
			r.Opponent,
			minutes(r.Seconds),
			strconv.Itoa(r.PTS),
			madeOf(r.FGM, r.FGA),
			madeOf(r.ThreePM, r.ThreePA),
			madeOf(r.FTM, r.FTA),
			pct(r.TS()),
			strconv.Itoa(r.AST),
			strconv.Itoa(r.TO),
			signed(r.PlusMinus),
			rate("%+.1f", r.NetRating()),
		)
	}
	table.Render()
}

// PrintRunSummary prints the per-category counts of a fetch run.
func PrintRunSummary(w io.Writer, stored []model.GameSummary, failed []model.FetchFailure, skipped []string) {
	var rows, dups, untimed, unattr, invalid int
	for _, s := range stored {
		rows += s.Parse.Rows
		dups += s.Parse.Duplicates
		untimed += s.Parse.Untimed
		unattr += s.Parse.Unattributed
		invalid += s.InvalidSegments
	}

	table := newTable(w)
	table.Header("STORED", "FAILED", "SKIPPED", "ROWS", "DUPLICATES", "UNTIMED", "UNATTRIBUTED", "INVALID_SEG")
	table.Append(
		strconv.Itoa(len(stored)),
		strconv.Itoa(len(failed)),
		strconv.Itoa(len(skipped)),
		strconv.Itoa(rows),
		strconv.Itoa(dups),
		strconv.Itoa(untimed),
		strconv.Itoa(unattr),
		strconv.Itoa(invalid),
	)
	table.Render()

	if len(failed) > 0 {
		fmt.Fprintln(w, "\nFailed games:")
		PrintFailures(w, failed)
	}
}

// PrintFailures lists recorded acquisition failures.
func PrintFailures(w io.Writer, failures []model.FetchFailure) {
	table := newTable(w)
	table.Header("GAME", "RUN", "ATTEMPTS", "FAILED_AT", "ERROR")
	for _, f := range failures {
		table.Append(f.GameID, shortRun(f.RunID), strconv.Itoa(f.Attempts), f.FailedAt, f.Error)
	}
	table.Render()
}

func shortRun(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// gameTime formats an elapsed time as "P4 04:30". An end bound on a period
// boundary is shown as 00:00 of the period it closes.
func gameTime(cc clock.Config, elapsed float64, end bool) string {
	period, clk := cc.Locate(elapsed)
	if end && period > 1 && clk == cc.PeriodLength(period) {
		period, clk = period-1, 0
	}
	return fmt.Sprintf("P%d %s", period, model.FormatClock(clk))
}
