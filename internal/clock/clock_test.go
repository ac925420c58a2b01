package clock

import (
	"sort"
	"testing"
)

func intp(v int) *int { return &v }

func TestPeriodLength(t *testing.T) {
	c := Default()
	for p := 1; p <= 4; p++ {
		if got := c.PeriodLength(p); got != 600 {
			t.Errorf("period %d: expected 600, got %d", p, got)
		}
	}
	for _, p := range []int{5, 6, 9} {
		if got := c.PeriodLength(p); got != 300 {
			t.Errorf("period %d: expected 300, got %d", p, got)
		}
	}
}

func TestElapsed(t *testing.T) {
	c := Default()
	cases := []struct {
		period, clock int
		want          float64
	}{
		{1, 600, 0},
		{1, 0, 600},
		{2, 600, 600},
		{4, 300, 2100},
		{4, 0, 2400},
		{5, 300, 2400},
		{5, 0, 2700},
		{6, 150, 2850},
	}
	for _, tc := range cases {
		got, ok := c.Elapsed(intp(tc.period), intp(tc.clock))
		if !ok {
			t.Fatalf("P%d %d: expected ok", tc.period, tc.clock)
		}
		if got != tc.want {
			t.Errorf("P%d %d: expected %.0f, got %.0f", tc.period, tc.clock, tc.want, got)
		}
	}
}

func TestElapsed_Unknown(t *testing.T) {
	c := Default()
	if _, ok := c.Elapsed(nil, intp(100)); ok {
		t.Error("missing period must be unknown")
	}
	if _, ok := c.Elapsed(intp(2), nil); ok {
		t.Error("missing clock must be unknown")
	}
	if _, ok := c.Elapsed(intp(0), intp(100)); ok {
		t.Error("period 0 must be unknown")
	}
}

// Logical order (period asc, clock desc) and elapsed order must agree, and
// Locate must recover the stamp.
func TestElapsed_OrderRoundTrip(t *testing.T) {
	c := Default()
	type stamp struct{ period, clock int }
	var stamps []stamp
	for p := 1; p <= 6; p++ {
		for clk := c.PeriodLength(p); clk >= 1; clk -= 37 {
			stamps = append(stamps, stamp{p, clk})
		}
	}

	shuffled := make([]stamp, len(stamps))
	for i := range stamps {
		shuffled[i] = stamps[(i*7919)%len(stamps)]
	}
	sort.SliceStable(shuffled, func(i, j int) bool {
		return c.ElapsedAt(shuffled[i].period, shuffled[i].clock) < c.ElapsedAt(shuffled[j].period, shuffled[j].clock)
	})

	for i := 1; i < len(shuffled); i++ {
		a, b := shuffled[i-1], shuffled[i]
		if a.period > b.period || (a.period == b.period && a.clock <= b.clock) {
			t.Fatalf("order mismatch at %d: %+v before %+v", i, a, b)
		}
	}
	for _, s := range stamps {
		p, clk := c.Locate(c.ElapsedAt(s.period, s.clock))
		if p != s.period || clk != s.clock {
			t.Errorf("Locate(%+v) = P%d %d", s, p, clk)
		}
	}
}

func TestGameEnd(t *testing.T) {
	c := Default()
	if got := c.GameEnd(4); got != 2400 {
		t.Errorf("expected 2400, got %.0f", got)
	}
	if got := c.GameEnd(6); got != 3000 {
		t.Errorf("expected 3000, got %.0f", got)
	}
	if got := c.GameEnd(0); got != 2400 {
		t.Errorf("no period should fall back to regulation end, got %.0f", got)
	}
}
