package aggregator

import (
	"testing"

	"github.com/pable/go-clutch-metrics/internal/model"
)

func TestMatchAssists_NextSameTeamBasket(t *testing.T) {
	g := newGame().
		assist(2, "05:00", "A", "P1").
		shot(2, "05:00", "A", "P2", model.ShotTwo, true).
		shot(2, "04:40", "B", "P3", model.ShotThree, true)

	pairs := MatchAssists("g1", g.events)
	if len(pairs) != 1 {
		t.Fatalf("expected 1 pair, got %+v", pairs)
	}
	want := model.AssistPair{GameID: "g1", Team: "A", Passer: "P1", Scorer: "P2", Count: 1}
	if pairs[0] != want {
		t.Errorf("got %+v, want %+v", pairs[0], want)
	}
}

func TestMatchAssists_RequeuesOtherTeams(t *testing.T) {
	g := newGame().
		assist(2, "05:00", "B", "Q1").
		assist(2, "04:58", "A", "P1").
		shot(2, "04:58", "A", "P2", model.ShotThree, true).
		shot(2, "04:30", "B", "Q2", model.ShotTwo, true).
		assist(2, "04:00", "A", "P1").
		shot(2, "04:00", "A", "P2", model.ShotDunk, true)

	pairs := MatchAssists("g1", g.events)
	if len(pairs) != 2 {
		t.Fatalf("expected 2 pairs, got %+v", pairs)
	}
	if p := pairs[0]; p.Team != "A" || p.Passer != "P1" || p.Scorer != "P2" || p.Count != 2 {
		t.Errorf("unexpected A pair %+v", p)
	}
	if p := pairs[1]; p.Team != "B" || p.Passer != "Q1" || p.Scorer != "Q2" || p.Count != 1 {
		t.Errorf("unexpected B pair %+v", p)
	}
}

func TestMatchAssists_IgnoresTeamlessAndFreeThrows(t *testing.T) {
	g := newGame().
		assist(2, "05:00", "", "P1").
		shot(2, "05:00", "A", "P2", model.ShotTwo, true).
		assist(2, "04:00", "A", "P3").
		shot(2, "04:00", "A", "P4", model.ShotFreeThrow, true)

	if pairs := MatchAssists("g1", g.events); len(pairs) != 0 {
		t.Fatalf("expected no pairs, got %+v", pairs)
	}
}

func TestMatchAssists_UnmatchedDiscarded(t *testing.T) {
	g := newGame().assist(4, "00:05", "A", "P1")
	if pairs := MatchAssists("g1", g.events); len(pairs) != 0 {
		t.Fatalf("expected no pairs, got %+v", pairs)
	}
}

func TestMatchAssists_FeedOrderKeepsUntimedAssist(t *testing.T) {
	// Feed: untimed assist P1, basket P2, assist P3, basket P4. Normalized
	// order puts the untimed row last.
	events := newGame().
		shot(2, "05:00", "A", "P2", model.ShotTwo, true).
		assist(2, "04:00", "A", "P3").
		shot(2, "03:00", "A", "P4", model.ShotTwo, true).events
	for i := range events {
		events[i].Seq++
	}
	events = append(events, model.Event{Seq: 0, Team: "A", Player: "P1", Action: model.ActionAssist})

	pairs := MatchAssists("g1", events)
	if len(pairs) != 2 {
		t.Fatalf("expected 2 pairs, got %+v", pairs)
	}
	if p := pairs[0]; p.Passer != "P1" || p.Scorer != "P2" || p.Count != 1 {
		t.Errorf("unexpected first pair %+v", p)
	}
	if p := pairs[1]; p.Passer != "P3" || p.Scorer != "P4" || p.Count != 1 {
		t.Errorf("unexpected second pair %+v", p)
	}
	if events[len(events)-1].Seq != 0 {
		t.Error("input order must not be modified")
	}
}
