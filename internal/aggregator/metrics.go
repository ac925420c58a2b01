package aggregator

import (
	"sort"

	"github.com/pable/go-clutch-metrics/internal/model"
)

type lineupKey struct {
	team string
	key  string
}

// tally accumulates clutch counters for one game.
type tally struct {
	gameID  string
	players map[playerKey]*model.PlayerClutchMetrics
	lineups map[lineupKey]*model.LineupClutchMetrics
}

func newTally(gameID string) *tally {
	return &tally{
		gameID:  gameID,
		players: make(map[playerKey]*model.PlayerClutchMetrics),
		lineups: make(map[lineupKey]*model.LineupClutchMetrics),
	}
}

func (t *tally) player(team, name string) *model.PlayerClutchMetrics {
	k := playerKey{team, name}
	p, ok := t.players[k]
	if !ok {
		p = &model.PlayerClutchMetrics{GameID: t.gameID, Team: team, Player: name}
		t.players[k] = p
	}
	return p
}

func (t *tally) lineup(team string, players []string) *model.LineupClutchMetrics {
	k := lineupKey{team, model.LineupKey(players)}
	l, ok := t.lineups[k]
	if !ok {
		l = &model.LineupClutchMetrics{GameID: t.gameID, Team: team, Players: players}
		t.lineups[k] = l
	}
	return l
}

// onFloorDelta is the possession contribution of a single event.
func onFloorDelta(e *model.Event, offReb bool) model.OnFloor {
	var d model.OnFloor
	if e.Shot.IsFieldGoal() {
		d.FGA = 1
	}
	if e.Shot == model.ShotFreeThrow {
		d.FTA = 1
	}
	if offReb {
		d.ORB = 1
	}
	if e.Has(model.FlagTurnover) {
		d.TO = 1
	}
	return d
}

func addFloor(dst *model.OnFloor, d model.OnFloor) {
	dst.FGA += d.FGA
	dst.ORB += d.ORB
	dst.TO += d.TO
	dst.FTA += d.FTA
}

// addIndividual credits the acting player's own box-score counters.
func addIndividual(p *model.PlayerClutchMetrics, e *model.Event, side ReboundSide) {
	switch {
	case e.Shot.IsFieldGoal():
		p.FGA++
		if e.Made {
			p.FGM++
		}
		if e.Shot == model.ShotThree {
			p.ThreePA++
			if e.Made {
				p.ThreePM++
			}
		}
	case e.Shot == model.ShotFreeThrow:
		p.FTA++
		if e.Made {
			p.FTM++
		}
	}
	p.PTS += e.Points()
	if e.Has(model.FlagAssist) {
		p.AST++
	}
	if e.Has(model.FlagTurnover) {
		p.TO++
	}
	if e.Has(model.FlagSteal) {
		p.STL++
	}
	if e.Has(model.FlagBlock) {
		p.BLK++
	}
	if e.Has(model.FlagRebound) {
		p.REB++
		switch side {
		case ReboundOffensive:
			p.REBO++
		case ReboundDefensive:
			p.REBD++
		}
	}
}

func hasBoxStats(p *model.PlayerClutchMetrics) bool {
	return p.FGA+p.FTA+p.AST+p.TO+p.STL+p.BLK+p.REB+p.PTS > 0
}

// countClutch walks timed events once, tracking the team of the last missed
// shot across the whole game, and credits players and lineups for events
// inside a clutch window.
func (t *tally) countClutch(events []model.Event, roster *Roster, teams model.Matchup, windows []model.ClutchWindow, rebounds ReboundContext) {
	lastMiss := ""
	for i := range events {
		e := &events[i]
		if !e.Timed() {
			continue
		}
		side := ReboundUnknown
		if e.Has(model.FlagRebound) {
			side = rebounds.Side(e.Team, lastMiss)
		}

		if idx := teams.Index(e.Team); idx >= 0 && InWindows(windows, e.T()) {
			t.countEvent(e, side, roster, teams)
		}

		switch {
		case e.Shot != model.ShotNone && e.Has(model.FlagMissed):
			lastMiss = e.Team
		case e.Has(model.FlagRebound):
			lastMiss = ""
		}
	}
}

func (t *tally) countEvent(e *model.Event, side ReboundSide, roster *Roster, teams model.Matchup) {
	team, opp := e.Team, teams.Opponent(e.Team)
	at := e.T()

	if e.Player != "" {
		addIndividual(t.player(team, e.Player), e, side)
	}

	delta := onFloorDelta(e, side == ReboundOffensive)
	pts := e.Points()
	own := roster.OnCourt(team, at)
	against := roster.OnCourt(opp, at)

	for _, name := range own {
		p := t.player(team, name)
		addFloor(&p.TeamOn, delta)
		p.PlusMinus += pts
		p.PointsFor += pts
	}
	for _, name := range against {
		p := t.player(opp, name)
		addFloor(&p.OppOn, delta)
		p.PlusMinus -= pts
		p.PointsAgainst += pts
	}

	// Lineups are credited only when the side fields exactly five.
	if len(own) == 5 {
		l := t.lineup(team, own)
		addFloor(&l.Off, delta)
		l.PointsFor += pts
	}
	if len(against) == 5 {
		l := t.lineup(opp, against)
		addFloor(&l.Def, delta)
		l.PointsAgainst += pts
	}
}

// addSeconds credits clutch seconds to players from their intervals and to
// lineups from valid clipped segments.
func (t *tally) addSeconds(intervals []model.PlayerInterval, teams model.Matchup, windows []model.ClutchWindow, clipped []model.LineupSegment) {
	for _, iv := range intervals {
		if teams.Index(iv.Team) < 0 {
			continue
		}
		var secs float64
		for _, w := range windows {
			secs += overlap(iv.Start, iv.End, w.Start, w.End)
		}
		if secs > 0 {
			t.player(iv.Team, iv.Player).Seconds += secs
		}
	}
	for _, s := range clipped {
		if s.Valid {
			t.lineup(s.Team, s.Players).Seconds += s.Duration()
		}
	}
}

// playerRows returns players with clutch seconds or any box-score stat,
// ordered by team, then seconds and points descending.
func (t *tally) playerRows() []model.PlayerClutchMetrics {
	out := make([]model.PlayerClutchMetrics, 0, len(t.players))
	for _, p := range t.players {
		if p.Seconds > 0 || hasBoxStats(p) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Team != b.Team {
			return a.Team < b.Team
		}
		if a.Seconds != b.Seconds {
			return a.Seconds > b.Seconds
		}
		if a.PTS != b.PTS {
			return a.PTS > b.PTS
		}
		return a.Player < b.Player
	})
	return out
}

// lineupRows returns lineups with clutch seconds, ordered by team, then
// seconds descending.
func (t *tally) lineupRows() []model.LineupClutchMetrics {
	out := make([]model.LineupClutchMetrics, 0, len(t.lineups))
	for _, l := range t.lineups {
		if l.Seconds > 0 {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Team != b.Team {
			return a.Team < b.Team
		}
		if a.Seconds != b.Seconds {
			return a.Seconds > b.Seconds
		}
		return a.Key() < b.Key()
	})
	return out
}
