package storage

import (
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/pable/go-clutch-metrics/internal/model"
)

// perGameTables are cleared before a game is re-stored. Children first.
var perGameTables = []string{
	"clutch_events",
	"assist_pairs",
	"lineup_clutch_stats",
	"player_clutch_stats",
	"games",
}

// GameExists returns true if a game with the given id is already stored.
func (db *DB) GameExists(gameID string) (bool, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(1) FROM games WHERE game_id = ?", gameID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// StoreGameResult replaces every stored row of the game with res in a single
// transaction. Storing the same result twice leaves identical rows.
func (db *DB) StoreGameResult(res *model.GameResult) error {
	s := res.Summary
	if s.StoredAt == "" {
		s.StoredAt = time.Now().UTC().Format(time.RFC3339)
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range perGameTables {
		if _, err := tx.Exec("DELETE FROM "+table+" WHERE game_id = ?", s.GameID); err != nil {
			return fmt.Errorf("clear %s for %s: %w", table, s.GameID, err)
		}
	}

	_, err = tx.Exec(`
		INSERT INTO games(game_id, team_a, team_b, score_a, score_b, periods,
			row_count, duplicates, untimed, unattributed, invalid_segments,
			clutch_seconds, run_id, stored_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		s.GameID, s.Teams[0], s.Teams[1], s.FinalScore[0], s.FinalScore[1], s.Periods,
		s.Parse.Rows, s.Parse.Duplicates, s.Parse.Untimed, s.Parse.Unattributed, s.InvalidSegments,
		s.ClutchSeconds, s.RunID, s.StoredAt,
	)
	if err != nil {
		return fmt.Errorf("insert game %s: %w", s.GameID, err)
	}

	if err := insertPlayers(tx, res.Players); err != nil {
		return err
	}
	if err := insertLineups(tx, res.Lineups); err != nil {
		return err
	}
	if err := insertAssists(tx, res.Assists); err != nil {
		return err
	}
	if err := insertClutchEvents(tx, s.GameID, res.ClutchEvents); err != nil {
		return err
	}
	return tx.Commit()
}

func insertPlayers(tx *sql.Tx, players []model.PlayerClutchMetrics) error {
	stmt, err := tx.Prepare(`
		INSERT INTO player_clutch_stats(
			game_id, team, player, sec_clutch,
			pts, fga, fgm, fg3a, fg3m, fta, ftm,
			ast, tov, stl, blk, reb, oreb, dreb,
			plus_minus, points_for, points_against,
			fga_on, orb_on, tov_on, fta_on,
			opp_fga_on, opp_orb_on, opp_tov_on, opp_fta_on,
			efg, ts, usg, net_rtg
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := range players {
		p := &players[i]
		_, err = stmt.Exec(
			p.GameID, p.Team, p.Player, p.Seconds,
			p.PTS, p.FGA, p.FGM, p.ThreePA, p.ThreePM, p.FTA, p.FTM,
			p.AST, p.TO, p.STL, p.BLK, p.REB, p.REBO, p.REBD,
			p.PlusMinus, p.PointsFor, p.PointsAgainst,
			p.TeamOn.FGA, p.TeamOn.ORB, p.TeamOn.TO, p.TeamOn.FTA,
			p.OppOn.FGA, p.OppOn.ORB, p.OppOn.TO, p.OppOn.FTA,
			nullFloat(p.EFG()), nullFloat(p.TS()), nullFloat(p.Usage()), nullFloat(p.NetRating()),
		)
		if err != nil {
			return fmt.Errorf("insert player_clutch_stats for %s/%s: %w", p.Team, p.Player, err)
		}
	}
	return nil
}

func insertLineups(tx *sql.Tx, lineups []model.LineupClutchMetrics) error {
	stmt, err := tx.Prepare(`
		INSERT INTO lineup_clutch_stats(
			game_id, team, lineup, n_players, sec_clutch, points_for, points_against,
			fga_on, orb_on, tov_on, fta_on,
			opp_fga_on, opp_orb_on, opp_tov_on, opp_fta_on,
			off_rtg, def_rtg, net_rtg
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := range lineups {
		l := &lineups[i]
		_, err = stmt.Exec(
			l.GameID, l.Team, l.Key(), len(l.Players), l.Seconds, l.PointsFor, l.PointsAgainst,
			l.Off.FGA, l.Off.ORB, l.Off.TO, l.Off.FTA,
			l.Def.FGA, l.Def.ORB, l.Def.TO, l.Def.FTA,
			nullFloat(l.OffRating()), nullFloat(l.DefRating()), nullFloat(l.NetRating()),
		)
		if err != nil {
			return fmt.Errorf("insert lineup_clutch_stats for %s: %w", l.Key(), err)
		}
	}
	return nil
}

func insertAssists(tx *sql.Tx, pairs []model.AssistPair) error {
	stmt, err := tx.Prepare(`
		INSERT INTO assist_pairs(game_id, team, passer, scorer, count)
		VALUES (?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, a := range pairs {
		if _, err := stmt.Exec(a.GameID, a.Team, a.Passer, a.Scorer, a.Count); err != nil {
			return fmt.Errorf("insert assist_pairs %s->%s: %w", a.Passer, a.Scorer, err)
		}
	}
	return nil
}

func insertClutchEvents(tx *sql.Tx, gameID string, events []model.Event) error {
	stmt, err := tx.Prepare(`
		INSERT INTO clutch_events(game_id, seq, elapsed, period, clock, team, player, detail)
		VALUES (?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := range events {
		e := &events[i]
		_, err = stmt.Exec(gameID, e.Seq, e.T(), nullInt(e.Period), nullInt(e.ClockSeconds),
			e.Team, e.Player, e.Detail)
		if err != nil {
			return fmt.Errorf("insert clutch_events seq %d: %w", e.Seq, err)
		}
	}
	return nil
}

const gameColumns = `game_id, team_a, team_b, score_a, score_b, periods,
	row_count, duplicates, untimed, unattributed, invalid_segments,
	clutch_seconds, run_id, stored_at`

func scanGame(sc interface{ Scan(...any) error }) (model.GameSummary, error) {
	var s model.GameSummary
	err := sc.Scan(&s.GameID, &s.Teams[0], &s.Teams[1], &s.FinalScore[0], &s.FinalScore[1], &s.Periods,
		&s.Parse.Rows, &s.Parse.Duplicates, &s.Parse.Untimed, &s.Parse.Unattributed, &s.InvalidSegments,
		&s.ClutchSeconds, &s.RunID, &s.StoredAt)
	return s, err
}

// ListGames returns all stored game summaries ordered by game id.
func (db *DB) ListGames() ([]model.GameSummary, error) {
	rows, err := db.conn.Query(`SELECT ` + gameColumns + ` FROM games ORDER BY game_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.GameSummary
	for rows.Next() {
		s, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetGame returns the stored summary of a game, or nil if it is not stored.
func (db *DB) GetGame(gameID string) (*model.GameSummary, error) {
	s, err := scanGame(db.conn.QueryRow(`SELECT `+gameColumns+` FROM games WHERE game_id = ?`, gameID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

const playerColumns = `game_id, team, player, sec_clutch,
	pts, fga, fgm, fg3a, fg3m, fta, ftm,
	ast, tov, stl, blk, reb, oreb, dreb,
	plus_minus, points_for, points_against,
	fga_on, orb_on, tov_on, fta_on,
	opp_fga_on, opp_orb_on, opp_tov_on, opp_fta_on`

func scanPlayer(sc interface{ Scan(...any) error }, extra ...any) (model.PlayerClutchMetrics, error) {
	var p model.PlayerClutchMetrics
	dest := []any{
		&p.GameID, &p.Team, &p.Player, &p.Seconds,
		&p.PTS, &p.FGA, &p.FGM, &p.ThreePA, &p.ThreePM, &p.FTA, &p.FTM,
		&p.AST, &p.TO, &p.STL, &p.BLK, &p.REB, &p.REBO, &p.REBD,
		&p.PlusMinus, &p.PointsFor, &p.PointsAgainst,
		&p.TeamOn.FGA, &p.TeamOn.ORB, &p.TeamOn.TO, &p.TeamOn.FTA,
		&p.OppOn.FGA, &p.OppOn.ORB, &p.OppOn.TO, &p.OppOn.FTA,
	}
	err := sc.Scan(append(dest, extra...)...)
	return p, err
}

// GetPlayerClutchStats returns the player rows of a game, or of every game
// when gameID is empty, ordered by game, team and clutch seconds descending.
func (db *DB) GetPlayerClutchStats(gameID string) ([]model.PlayerClutchMetrics, error) {
	where, args := gameFilter(gameID)
	rows, err := db.conn.Query(`SELECT `+playerColumns+` FROM player_clutch_stats`+where+`
		ORDER BY game_id, team, sec_clutch DESC, pts DESC, player`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.PlayerClutchMetrics
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

const lineupColumns = `game_id, team, lineup, sec_clutch, points_for, points_against,
	fga_on, orb_on, tov_on, fta_on,
	opp_fga_on, opp_orb_on, opp_tov_on, opp_fta_on`

func scanLineup(sc interface{ Scan(...any) error }) (model.LineupClutchMetrics, error) {
	var l model.LineupClutchMetrics
	var key string
	err := sc.Scan(&l.GameID, &l.Team, &key, &l.Seconds, &l.PointsFor, &l.PointsAgainst,
		&l.Off.FGA, &l.Off.ORB, &l.Off.TO, &l.Off.FTA,
		&l.Def.FGA, &l.Def.ORB, &l.Def.TO, &l.Def.FTA)
	l.Players = splitLineup(key)
	return l, err
}

// GetLineupClutchStats returns the lineup rows of a game, or of every game
// when gameID is empty.
func (db *DB) GetLineupClutchStats(gameID string) ([]model.LineupClutchMetrics, error) {
	where, args := gameFilter(gameID)
	rows, err := db.conn.Query(`SELECT `+lineupColumns+` FROM lineup_clutch_stats`+where+`
		ORDER BY game_id, team, sec_clutch DESC, lineup`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.LineupClutchMetrics
	for rows.Next() {
		l, err := scanLineup(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// GetAssistPairs returns the assist pairs of a game, or of every game when
// gameID is empty.
func (db *DB) GetAssistPairs(gameID string) ([]model.AssistPair, error) {
	where, args := gameFilter(gameID)
	rows, err := db.conn.Query(`SELECT game_id, team, passer, scorer, count FROM assist_pairs`+where+`
		ORDER BY game_id, team, count DESC, passer, scorer`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.AssistPair
	for rows.Next() {
		var a model.AssistPair
		if err := rows.Scan(&a.GameID, &a.Team, &a.Passer, &a.Scorer, &a.Count); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// GetClutchEvents returns the stored clutch-time events of a game in order.
func (db *DB) GetClutchEvents(gameID string) ([]model.Event, error) {
	rows, err := db.conn.Query(`
		SELECT seq, elapsed, period, clock, team, player, detail
		FROM clutch_events WHERE game_id = ?
		ORDER BY elapsed, seq`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Event
	for rows.Next() {
		var e model.Event
		var elapsed float64
		var period, clk sql.NullInt64
		if err := rows.Scan(&e.Seq, &elapsed, &period, &clk, &e.Team, &e.Player, &e.Detail); err != nil {
			return nil, err
		}
		e.Elapsed = &elapsed
		e.Period = intPtr(period)
		e.ClockSeconds = intPtr(clk)
		out = append(out, e)
	}
	return out, rows.Err()
}

// InsertFetchFailure records a game that could not be acquired.
func (db *DB) InsertFetchFailure(f model.FetchFailure) error {
	if f.FailedAt == "" {
		f.FailedAt = time.Now().UTC().Format(time.RFC3339)
	}
	_, err := db.conn.Exec(`
		INSERT INTO fetch_failures(game_id, run_id, attempts, error, failed_at)
		VALUES (?,?,?,?,?)`,
		f.GameID, f.RunID, f.Attempts, f.Error, f.FailedAt)
	return err
}

// ListFetchFailures returns recorded failures, newest first.
func (db *DB) ListFetchFailures() ([]model.FetchFailure, error) {
	rows, err := db.conn.Query(`
		SELECT id, game_id, run_id, attempts, error, failed_at
		FROM fetch_failures ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.FetchFailure
	for rows.Next() {
		var f model.FetchFailure
		if err := rows.Scan(&f.ID, &f.GameID, &f.RunID, &f.Attempts, &f.Error, &f.FailedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// QueryRaw runs an arbitrary query and returns column names and stringified rows.
func (db *DB) QueryRaw(query string) ([]string, [][]string, error) {
	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}
	var out [][]string
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		row := make([]string, len(cols))
		for i, v := range vals {
			switch x := v.(type) {
			case nil:
				row[i] = "NULL"
			case []byte:
				row[i] = string(x)
			default:
				row[i] = fmt.Sprint(x)
			}
		}
		out = append(out, row)
	}
	return cols, out, rows.Err()
}

func gameFilter(gameID string) (string, []any) {
	if gameID == "" {
		return "", nil
	}
	return " WHERE game_id = ?", []any{gameID}
}

func splitLineup(key string) []string {
	if key == "" || key == model.LineupKey(nil) {
		return nil
	}
	return strings.Split(key, " | ")
}

// nullFloat stores undefined rates as NULL rather than 0.
func nullFloat(v float64) sql.NullFloat64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}
