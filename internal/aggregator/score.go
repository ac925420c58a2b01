package aggregator

import (
	"sort"

	"github.com/pable/go-clutch-metrics/internal/model"
)

// FindMatchup returns the first two distinct teams seen among timed events.
func FindMatchup(events []model.Event) model.Matchup {
	var m model.Matchup
	n := 0
	for i := range events {
		e := &events[i]
		if !e.Timed() || e.Team == "" || m.Index(e.Team) >= 0 {
			continue
		}
		m[n] = e.Team
		n++
		if n == 2 {
			break
		}
	}
	return m
}

// ScoreState is the replayed running score of a game.
type ScoreState struct {
	Teams     model.Matchup
	Snapshots []model.ScoreSnapshot
}

// ReplayScore replays scoring events in order. Made free throws count for
// one point alongside made field goals, so margins match the real score.
func ReplayScore(events []model.Event, teams model.Matchup) *ScoreState {
	s := &ScoreState{Teams: teams}
	var running [2]int
	for i := range events {
		e := &events[i]
		if !e.Timed() {
			continue
		}
		idx := teams.Index(e.Team)
		pts := e.Points()
		if idx < 0 || pts == 0 {
			continue
		}
		running[idx] += pts
		s.Snapshots = append(s.Snapshots, model.ScoreSnapshot{
			Index:   i,
			Elapsed: e.T(),
			Score:   running,
		})
	}
	return s
}

// marginAt returns the margin of the last snapshot at or before t.
func (s *ScoreState) marginAt(t float64) int {
	n := sort.Search(len(s.Snapshots), func(i int) bool { return s.Snapshots[i].Elapsed > t })
	if n == 0 {
		return 0
	}
	return s.Snapshots[n-1].Margin()
}

// MarginBefore returns the margin immediately before the event at index i,
// ignoring that event's own points.
func (s *ScoreState) MarginBefore(i int) int {
	n := sort.Search(len(s.Snapshots), func(k int) bool { return s.Snapshots[k].Index >= i })
	if n == 0 {
		return 0
	}
	return s.Snapshots[n-1].Margin()
}

// Final returns the score after the last scoring event.
func (s *ScoreState) Final() [2]int {
	if len(s.Snapshots) == 0 {
		return [2]int{}
	}
	return s.Snapshots[len(s.Snapshots)-1].Score
}
