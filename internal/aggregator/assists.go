package aggregator

import (
	"sort"

	"github.com/pable/go-clutch-metrics/internal/model"
)

type pendingAssist struct {
	team   string
	passer string
}

type pairKey struct {
	team, passer, scorer string
}

// MatchAssists pairs assist rows with made field goals of the same team.
// Rows are replayed in feed order (Seq), so rows without a clock keep their
// place. Pending assists form a FIFO queue; on each made shot the queue is
// scanned from the front, non-matching entries are re-queued at the back in
// order, and the first same-team entry is consumed. Assists without a team
// are ignored. Free throws never classify as made shots.
func MatchAssists(gameID string, events []model.Event) []model.AssistPair {
	feed := make([]*model.Event, len(events))
	for i := range events {
		feed[i] = &events[i]
	}
	sort.SliceStable(feed, func(i, j int) bool { return feed[i].Seq < feed[j].Seq })

	var queue []pendingAssist
	counts := make(map[pairKey]int)

	for _, e := range feed {
		if e.Team == "" || e.Player == "" {
			continue
		}
		switch {
		case e.Action == model.ActionAssist:
			queue = append(queue, pendingAssist{team: e.Team, passer: e.Player})

		case e.Action == model.ActionMadeShot:
			for n := len(queue); n > 0; n-- {
				head := queue[0]
				queue = queue[1:]
				if head.team == e.Team {
					counts[pairKey{e.Team, head.passer, e.Player}]++
					break
				}
				queue = append(queue, head)
			}
		}
	}

	pairs := make([]model.AssistPair, 0, len(counts))
	for k, n := range counts {
		pairs = append(pairs, model.AssistPair{
			GameID: gameID,
			Team:   k.team,
			Passer: k.passer,
			Scorer: k.scorer,
			Count:  n,
		})
	}
	sort.Slice(pairs, func(i, j int) bool {
		a, b := pairs[i], pairs[j]
		if a.Team != b.Team {
			return a.Team < b.Team
		}
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		if a.Passer != b.Passer {
			return a.Passer < b.Passer
		}
		return a.Scorer < b.Scorer
	})
	return pairs
}
