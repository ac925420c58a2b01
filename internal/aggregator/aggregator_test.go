package aggregator

import (
	"math"
	"reflect"
	"testing"

	"github.com/pable/go-clutch-metrics/internal/model"
)

func TestAggregate_CloseGame(t *testing.T) {
	res, err := Aggregate(closeGame().game(), DefaultConfig())
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	if len(res.Windows) != 1 || res.Windows[0] != (model.ClutchWindow{Start: 2130, End: 2400}) {
		t.Fatalf("expected one window [2130,2400), got %+v", res.Windows)
	}
	s := res.Summary
	if s.Teams != (model.Matchup{"A", "B"}) || s.FinalScore != [2]int{5, 3} || s.Periods != 4 {
		t.Errorf("unexpected summary %+v", s)
	}
	if s.ClutchSeconds != 270 {
		t.Errorf("expected 270 clutch seconds, got %v", s.ClutchSeconds)
	}
	if len(res.ClutchEvents) != 6 {
		t.Errorf("expected 6 clutch events, got %d", len(res.ClutchEvents))
	}

	for _, p := range append(append([]string{}, fiveA...), fiveB...) {
		team := p[:1]
		m := findPlayer(res.Players, team, p)
		if m == nil {
			t.Fatalf("missing row for %s", p)
		}
		if m.Seconds != 270 {
			t.Errorf("%s: expected 270s, got %v", p, m.Seconds)
		}
	}

	a2 := findPlayer(res.Players, "A", "A2")
	if a2.PTS != 3 || a2.FGA != 1 || a2.FGM != 1 || a2.ThreePA != 1 || a2.ThreePM != 1 {
		t.Errorf("A2 shooting: %+v", a2)
	}
	if a2.EFG() != 1.5 {
		t.Errorf("A2 eFG: got %v, want 1.5", a2.EFG())
	}
	a1 := findPlayer(res.Players, "A", "A1")
	if a1.FGA != 1 || a1.FGM != 0 || a1.PTS != 0 {
		t.Errorf("A1 shooting: %+v", a1)
	}
	if a3 := findPlayer(res.Players, "A", "A3"); a3.PTS != 2 {
		t.Errorf("A3 points: got %d, want 2", a3.PTS)
	}

	// The first-quarter three by B1 is outside clutch time.
	if b1 := findPlayer(res.Players, "B", "B1"); b1.PTS != 0 || b1.FGA != 0 {
		t.Errorf("B1 should have no clutch shooting: %+v", b1)
	}

	if b3 := findPlayer(res.Players, "B", "B3"); b3.REB != 1 || b3.REBD != 1 || b3.REBO != 0 {
		t.Errorf("B3 rebounds: %+v", b3)
	}
	if a4 := findPlayer(res.Players, "A", "A4"); a4.REB != 1 || a4.REBD != 1 {
		t.Errorf("A4 rebounds: %+v", a4)
	}

	for _, p := range fiveA {
		m := findPlayer(res.Players, "A", p)
		if m.PlusMinus != 5 || m.PointsFor != 5 || m.PointsAgainst != 0 {
			t.Errorf("%s: +/- %d for %d against %d", p, m.PlusMinus, m.PointsFor, m.PointsAgainst)
		}
		if m.TeamOn.FGA != 3 || m.OppOn.FGA != 1 {
			t.Errorf("%s: on-floor %+v / %+v", p, m.TeamOn, m.OppOn)
		}
	}
	for _, p := range fiveB {
		if m := findPlayer(res.Players, "B", p); m.PlusMinus != -5 {
			t.Errorf("%s: expected -5, got %d", p, m.PlusMinus)
		}
	}

	if len(res.Lineups) != 2 {
		t.Fatalf("expected 2 lineups, got %+v", res.Lineups)
	}
	la := res.Lineups[0]
	if la.Team != "A" || la.Seconds != 270 || la.PointsFor != 5 || la.Off.FGA != 3 || la.Def.FGA != 1 {
		t.Errorf("A lineup: %+v", la)
	}
	if math.Abs(la.OffRating()-500.0/3) > 1e-9 {
		t.Errorf("A lineup OffRtg: got %v", la.OffRating())
	}
	if la.DefRating() != 0 {
		t.Errorf("A lineup DefRtg: got %v", la.DefRating())
	}
	if lb := res.Lineups[1]; lb.Team != "B" || lb.PointsAgainst != 5 {
		t.Errorf("B lineup: %+v", lb)
	}
	if s.InvalidSegments != 0 {
		t.Errorf("expected no invalid segments, got %d", s.InvalidSegments)
	}
}

func TestAggregate_InvalidLineupDoesNotHalt(t *testing.T) {
	g := newGame().
		starters("A", fiveA[:4]...).
		starters("B", fiveB...).
		shot(4, "04:30", "A", "A1", model.ShotTwo, true).
		shot(4, "04:00", "B", "B1", model.ShotTwo, true)

	res, err := Aggregate(g.game(), DefaultConfig())
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	for _, l := range res.Lineups {
		if l.Team == "A" {
			t.Errorf("4-man lineup should not be aggregated: %+v", l)
		}
	}
	if len(res.Lineups) != 1 {
		t.Errorf("expected only B's lineup, got %d", len(res.Lineups))
	}
	if res.Summary.InvalidSegments != 1 {
		t.Errorf("expected 1 invalid segment, got %d", res.Summary.InvalidSegments)
	}
	if a1 := findPlayer(res.Players, "A", "A1"); a1 == nil || a1.Seconds != 270 || a1.PTS != 2 {
		t.Errorf("A1 minutes and points must survive an invalid lineup: %+v", a1)
	}
	// A's basket still counts against B's valid five.
	if lb := res.Lineups[0]; lb.PointsFor != 2 || lb.PointsAgainst != 2 {
		t.Errorf("B lineup: %+v", lb)
	}
}

func TestAggregate_Idempotent(t *testing.T) {
	g := closeGame().game()
	first, err := Aggregate(g, DefaultConfig())
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	second, err := Aggregate(g, DefaultConfig())
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatal("two runs over the same game differ")
	}
}

func TestAggregate_ZeroRows(t *testing.T) {
	res, err := Aggregate(&model.Game{GameID: "empty"}, DefaultConfig())
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if len(res.Intervals)+len(res.Windows)+len(res.Players)+len(res.Lineups)+len(res.Assists) != 0 {
		t.Errorf("expected empty outputs, got %+v", res)
	}
	if res.Summary.Periods != 4 {
		t.Errorf("expected regulation period count, got %d", res.Summary.Periods)
	}
}

func TestAggregate_Errors(t *testing.T) {
	if _, err := Aggregate(nil, DefaultConfig()); err == nil {
		t.Error("expected error for nil game")
	}
	cfg := DefaultConfig()
	cfg.ClutchMargin = -1
	if _, err := Aggregate(&model.Game{}, cfg); err == nil {
		t.Error("expected error for negative margin")
	}
}

type alwaysOffensive struct{}

func (alwaysOffensive) Side(string, string) ReboundSide { return ReboundOffensive }

func TestAggregate_ReboundContext(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Rebounds = alwaysOffensive{}
	res, err := Aggregate(closeGame().game(), cfg)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if a4 := findPlayer(res.Players, "A", "A4"); a4.REBO != 1 || a4.REBD != 0 {
		t.Errorf("A4 rebounds: %+v", a4)
	}
	a5 := findPlayer(res.Players, "A", "A5")
	if a5.TeamOn.ORB != 1 || a5.OppOn.ORB != 1 {
		t.Errorf("A5 on-floor ORB: team %+v opp %+v", a5.TeamOn, a5.OppOn)
	}
}

func TestLastMissRebounds(t *testing.T) {
	var rc LastMissRebounds
	cases := []struct {
		team, lastMiss string
		want           ReboundSide
	}{
		{"A", "A", ReboundOffensive},
		{"A", "B", ReboundDefensive},
		{"A", "", ReboundUnknown},
	}
	for _, tc := range cases {
		if got := rc.Side(tc.team, tc.lastMiss); got != tc.want {
			t.Errorf("Side(%q, %q) = %s, want %s", tc.team, tc.lastMiss, got, tc.want)
		}
	}
}
