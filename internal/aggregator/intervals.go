package aggregator

import (
	"sort"

	"github.com/pable/go-clutch-metrics/internal/clock"
	"github.com/pable/go-clutch-metrics/internal/model"
)

type playerKey struct{ team, player string }

type openEntry struct {
	start  float64
	reason model.OpenReason
}

// BuildIntervals replays substitutions in elapsed order and returns every
// player's closed on-court intervals, sorted by team, player and start.
//
// Starters are the players subbed in at the opening clock of period 1. Their
// intervals open at 0 on the team's first period-1 event after the opening
// clock. A SUB_OUT with nothing open becomes an inferred starter interval
// from 0 only while the team's starters are not yet opened; afterwards it is
// ignored. Untimed, teamless and playerless events are skipped.
func BuildIntervals(events []model.Event, cc clock.Config) []model.PlayerInterval {
	tipClock := cc.PeriodLength(1)

	// Starters per team, in first-seen order.
	starters := make(map[string][]string)
	seen := make(map[playerKey]bool)
	for i := range events {
		e := &events[i]
		if !usableForIntervals(e) || e.Action != model.ActionSubIn {
			continue
		}
		if atTip(e, tipClock) {
			k := playerKey{e.Team, e.Player}
			if !seen[k] {
				seen[k] = true
				starters[e.Team] = append(starters[e.Team], e.Player)
			}
		}
	}

	open := make(map[playerKey]openEntry)
	startersOpened := make(map[string]bool)
	var out []model.PlayerInterval

	closeOpen := func(k playerKey, end float64, reason model.CloseReason) {
		entry := open[k]
		delete(open, k)
		if end < entry.start {
			end = entry.start
		}
		out = append(out, model.PlayerInterval{
			Team:        k.team,
			Player:      k.player,
			Start:       entry.start,
			End:         end,
			OpenReason:  entry.reason,
			CloseReason: reason,
		})
	}

	for i := range events {
		e := &events[i]
		if !usableForIntervals(e) {
			continue
		}
		k := playerKey{e.Team, e.Player}
		t := e.T()

		if !startersOpened[e.Team] && e.PeriodOr(0) == 1 && e.ClockOr(tipClock) < tipClock {
			for _, p := range starters[e.Team] {
				sk := playerKey{e.Team, p}
				if _, ok := open[sk]; !ok {
					open[sk] = openEntry{start: 0, reason: model.OpenStarter}
				}
			}
			startersOpened[e.Team] = true
		}

		switch e.Action {
		case model.ActionSubIn:
			if _, ok := open[k]; ok {
				closeOpen(k, t, model.CloseSubInWithoutSubOut)
			}
			reason := model.OpenSubIn
			if atTip(e, tipClock) {
				reason = model.OpenStarter
			}
			open[k] = openEntry{start: t, reason: reason}

		case model.ActionSubOut:
			if _, ok := open[k]; ok {
				closeOpen(k, t, model.CloseSubOut)
				continue
			}
			if !startersOpened[e.Team] {
				out = append(out, model.PlayerInterval{
					Team:        k.team,
					Player:      k.player,
					Start:       0,
					End:         t,
					OpenReason:  model.OpenInferredStarter,
					CloseReason: model.CloseInferredStarter,
				})
			}
			// Orphan SUB_OUT after starters opened: no interval.
		}
	}

	end := cc.GameEnd(maxPeriod(events))
	remaining := make([]playerKey, 0, len(open))
	for k := range open {
		remaining = append(remaining, k)
	}
	sort.Slice(remaining, func(i, j int) bool { return lessKey(remaining[i], remaining[j]) })
	for _, k := range remaining {
		closeOpen(k, end, model.CloseEndOfGame)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Team != b.Team {
			return a.Team < b.Team
		}
		if a.Player != b.Player {
			return a.Player < b.Player
		}
		return a.Start < b.Start
	})
	return out
}

func usableForIntervals(e *model.Event) bool {
	return e.Timed() && e.Team != "" && e.Player != ""
}

func atTip(e *model.Event, tipClock int) bool {
	return e.PeriodOr(0) == 1 && e.ClockOr(-1) == tipClock
}

func lessKey(a, b playerKey) bool {
	if a.team != b.team {
		return a.team < b.team
	}
	return a.player < b.player
}

// maxPeriod returns the highest period among timed events, 0 if none.
func maxPeriod(events []model.Event) int {
	maxP := 0
	for i := range events {
		if !events[i].Timed() {
			continue
		}
		if p := events[i].PeriodOr(0); p > maxP {
			maxP = p
		}
	}
	return maxP
}
