package aggregator

import (
	"reflect"
	"testing"

	"github.com/pable/go-clutch-metrics/internal/clock"
	"github.com/pable/go-clutch-metrics/internal/model"
)

func sweep(b *gameBuilder) []model.LineupSegment {
	ivs := BuildIntervals(b.events, clock.Default())
	teams := FindMatchup(b.events)
	return SweepLineups(NewRoster(ivs), teams, clock.Default().GameEnd(maxPeriod(b.events)))
}

func TestSweepLineups_Substitution(t *testing.T) {
	g := newGame().
		starters("A", fiveA...).
		out(2, "05:00", "A", "A1").
		in(2, "05:00", "A", "A6").
		out(3, "10:00", "A", "A6").
		in(3, "10:00", "A", "A1").
		shot(4, "00:10", "A", "A2", model.ShotTwo, false)

	segs := sweep(g)
	if len(segs) != 3 {
		t.Fatalf("expected 3 segments, got %+v", segs)
	}
	bench := []string{"A2", "A3", "A4", "A5", "A6"}
	wants := []struct {
		start, end float64
		players    []string
	}{
		{0, 900, fiveA},
		{900, 1200, bench},
		{1200, 2400, fiveA},
	}
	for i, w := range wants {
		s := segs[i]
		if s.Start != w.start || s.End != w.end || !reflect.DeepEqual(s.Players, w.players) || !s.Valid {
			t.Errorf("segment %d: got %+v, want [%v,%v) %v", i, s, w.start, w.end, w.players)
		}
	}
}

func TestSweepLineups_CoalescesSameFive(t *testing.T) {
	// A SUB_IN for a player already on court adds a boundary without
	// changing the five.
	g := newGame().
		starters("A", fiveA...).
		in(2, "05:00", "A", "A1").
		shot(4, "00:10", "A", "A2", model.ShotTwo, false)

	segs := sweep(g)
	if len(segs) != 1 || segs[0].Start != 0 || segs[0].End != 2400 {
		t.Fatalf("expected one coalesced segment, got %+v", segs)
	}
}

func TestSweepLineups_FlagsInvalidFive(t *testing.T) {
	g := newGame().
		starters("A", fiveA[:4]...).
		shot(4, "00:10", "A", "A2", model.ShotTwo, false)

	segs := sweep(g)
	if len(segs) != 1 {
		t.Fatalf("expected 1 segment, got %+v", segs)
	}
	if segs[0].Valid || len(segs[0].Players) != 4 {
		t.Errorf("expected an invalid 4-player segment, got %+v", segs[0])
	}
}

func TestClipSegments(t *testing.T) {
	segs := []model.LineupSegment{
		{Team: "A", Players: fiveA, Start: 0, End: 2200, Valid: true},
		{Team: "A", Players: fiveA, Start: 2200, End: 2400, Valid: true},
	}
	windows := []model.ClutchWindow{{Start: 2100, End: 2280}, {Start: 2370, End: 2400}}

	got := ClipSegments(segs, windows)
	want := [][2]float64{{2100, 2200}, {2200, 2280}, {2370, 2400}}
	if len(got) != len(want) {
		t.Fatalf("expected %d pieces, got %+v", len(want), got)
	}
	for i, w := range want {
		if got[i].Start != w[0] || got[i].End != w[1] {
			t.Errorf("piece %d: got [%v,%v), want %v", i, got[i].Start, got[i].End, w)
		}
	}
}

func TestRoster_OnCourtHalfOpen(t *testing.T) {
	r := NewRoster([]model.PlayerInterval{
		{Team: "A", Player: "X", Start: 0, End: 100},
		{Team: "A", Player: "Y", Start: 100, End: 200},
	})
	if got := r.OnCourt("A", 100); !reflect.DeepEqual(got, []string{"Y"}) {
		t.Errorf("OnCourt at a change instant: got %v, want [Y]", got)
	}
	if got := r.OnCourt("B", 50); len(got) != 0 {
		t.Errorf("unknown team: got %v", got)
	}
}
