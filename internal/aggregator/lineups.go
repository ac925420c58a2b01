package aggregator

import (
	"sort"

	"github.com/pable/go-clutch-metrics/internal/model"
)

// Roster indexes on-court intervals by team for point-in-time lookups.
type Roster struct {
	byTeam map[string][]model.PlayerInterval
}

// NewRoster groups intervals by team.
func NewRoster(intervals []model.PlayerInterval) *Roster {
	r := &Roster{byTeam: make(map[string][]model.PlayerInterval)}
	for _, iv := range intervals {
		r.byTeam[iv.Team] = append(r.byTeam[iv.Team], iv)
	}
	return r
}

// OnCourt returns the sorted, de-duplicated players of team on court at t.
func (r *Roster) OnCourt(team string, t float64) []string {
	seen := make(map[string]bool)
	var players []string
	for _, iv := range r.byTeam[team] {
		if iv.Contains(t) && !seen[iv.Player] {
			seen[iv.Player] = true
			players = append(players, iv.Player)
		}
	}
	sort.Strings(players)
	return players
}

// boundaries returns the sorted distinct change points of a team's
// intervals within [0, end], always including 0 and end.
func (r *Roster) boundaries(team string, end float64) []float64 {
	set := map[float64]bool{0: true, end: true}
	for _, iv := range r.byTeam[team] {
		for _, b := range []float64{iv.Start, iv.End} {
			if b >= 0 && b <= end {
				set[b] = true
			}
		}
	}
	out := make([]float64, 0, len(set))
	for b := range set {
		out = append(out, b)
	}
	sort.Float64s(out)
	return out
}

// SweepLineups splits [0, end) for each matchup team into maximal segments
// with a constant on-court set. Segments without exactly five players are
// returned with Valid=false.
func SweepLineups(r *Roster, teams model.Matchup, end float64) []model.LineupSegment {
	var out []model.LineupSegment
	for _, team := range teams {
		if team == "" {
			continue
		}
		bounds := r.boundaries(team, end)
		var cur *model.LineupSegment
		for i := 0; i+1 < len(bounds); i++ {
			a, b := bounds[i], bounds[i+1]
			if b <= a {
				continue
			}
			players := r.OnCourt(team, a)
			if cur != nil && cur.End == a && sameLineup(cur.Players, players) {
				cur.End = b
				continue
			}
			if cur != nil {
				out = append(out, *cur)
			}
			cur = &model.LineupSegment{
				Team:    team,
				Players: players,
				Start:   a,
				End:     b,
				Valid:   len(players) == 5,
			}
		}
		if cur != nil {
			out = append(out, *cur)
		}
	}
	return out
}

// ClipSegments intersects segments with clutch windows, dropping empty
// pieces.
func ClipSegments(segments []model.LineupSegment, windows []model.ClutchWindow) []model.LineupSegment {
	var out []model.LineupSegment
	for _, s := range segments {
		for _, w := range windows {
			lo, hi := max(s.Start, w.Start), min(s.End, w.End)
			if hi <= lo {
				continue
			}
			clipped := s
			clipped.Start, clipped.End = lo, hi
			out = append(out, clipped)
		}
	}
	return out
}

func sameLineup(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
