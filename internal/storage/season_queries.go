package storage

import (
	"math"
	"sort"

	"github.com/pable/go-clutch-metrics/internal/model"
)

// PlayerTrend returns every stored clutch row of a player in game order,
// with the opponent resolved from the game's matchup.
func (db *DB) PlayerTrend(player string) ([]model.PlayerTrendRow, error) {
	rows, err := db.conn.Query(`
		SELECT p.game_id, p.team, p.player, p.sec_clutch,
		       p.pts, p.fga, p.fgm, p.fg3a, p.fg3m, p.fta, p.ftm,
		       p.ast, p.tov, p.stl, p.blk, p.reb, p.oreb, p.dreb,
		       p.plus_minus, p.points_for, p.points_against,
		       p.fga_on, p.orb_on, p.tov_on, p.fta_on,
		       p.opp_fga_on, p.opp_orb_on, p.opp_tov_on, p.opp_fta_on,
		       CASE WHEN g.team_a = p.team THEN g.team_b ELSE g.team_a END
		FROM player_clutch_stats p
		JOIN games g ON g.game_id = p.game_id
		WHERE p.player = ?
		ORDER BY g.stored_at, p.game_id`, player)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.PlayerTrendRow
	for rows.Next() {
		var opp string
		p, err := scanPlayer(rows, &opp)
		if err != nil {
			return nil, err
		}
		out = append(out, model.PlayerTrendRow{GameID: p.GameID, Opponent: opp, PlayerClutchMetrics: p})
	}
	return out, rows.Err()
}

// LineupLeaderboard sums five-man lineup rows across games, keeps lineups
// with at least minSeconds of clutch time and orders them by team, then net
// rating descending. Lineups with an undefined net rating sort last.
func (db *DB) LineupLeaderboard(team string, minSeconds float64) ([]model.LineupAggregate, error) {
	query := `
		SELECT team, lineup, COUNT(DISTINCT game_id),
		       SUM(sec_clutch), SUM(points_for), SUM(points_against),
		       SUM(fga_on), SUM(orb_on), SUM(tov_on), SUM(fta_on),
		       SUM(opp_fga_on), SUM(opp_orb_on), SUM(opp_tov_on), SUM(opp_fta_on)
		FROM lineup_clutch_stats
		WHERE n_players = 5`
	args := []any{}
	if team != "" {
		query += ` AND team = ?`
		args = append(args, team)
	}
	query += ` GROUP BY team, lineup HAVING SUM(sec_clutch) >= ?`
	args = append(args, minSeconds)

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.LineupAggregate
	for rows.Next() {
		var a model.LineupAggregate
		var key string
		l := &a.LineupClutchMetrics
		if err := rows.Scan(&l.Team, &key, &a.Games,
			&l.Seconds, &l.PointsFor, &l.PointsAgainst,
			&l.Off.FGA, &l.Off.ORB, &l.Off.TO, &l.Off.FTA,
			&l.Def.FGA, &l.Def.ORB, &l.Def.TO, &l.Def.FTA); err != nil {
			return nil, err
		}
		l.Players = splitLineup(key)
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := &out[i], &out[j]
		if a.Team != b.Team {
			return a.Team < b.Team
		}
		na, nb := a.NetRating(), b.NetRating()
		switch {
		case math.IsNaN(na) && math.IsNaN(nb):
		case math.IsNaN(na):
			return false
		case math.IsNaN(nb):
			return true
		case na != nb:
			return na > nb
		}
		if a.Seconds != b.Seconds {
			return a.Seconds > b.Seconds
		}
		return a.Key() < b.Key()
	})
	return out, nil
}

// SeasonAssistPairs sums passer→scorer counts across all stored games.
func (db *DB) SeasonAssistPairs(team string) ([]model.AssistPair, error) {
	query := `SELECT team, passer, scorer, SUM(count) FROM assist_pairs`
	args := []any{}
	if team != "" {
		query += ` WHERE team = ?`
		args = append(args, team)
	}
	query += ` GROUP BY team, passer, scorer ORDER BY team, SUM(count) DESC, passer, scorer`

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.AssistPair
	for rows.Next() {
		var a model.AssistPair
		if err := rows.Scan(&a.Team, &a.Passer, &a.Scorer, &a.Count); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
