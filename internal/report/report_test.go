package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pable/go-clutch-metrics/internal/clock"
	"github.com/pable/go-clutch-metrics/internal/model"
)

func TestPrintPlayerTable_UndefinedRates(t *testing.T) {
	var buf bytes.Buffer
	PrintPlayerTable(&buf, []model.PlayerClutchMetrics{
		{Team: "A", Player: "A1", Seconds: 95},
		{Team: "A", Player: "A2", Seconds: 270, PTS: 3, FGA: 1, FGM: 1, ThreePA: 1, ThreePM: 1, PlusMinus: 5},
	}, "A2")
	out := buf.String()

	for _, want := range []string{"A1", "A2", "1:35", "4:30", "150.0%", "+5", "—", ">"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "NaN") {
		t.Errorf("undefined rates must not print as NaN:\n%s", out)
	}
}

func TestPrintLineupTable(t *testing.T) {
	var buf bytes.Buffer
	PrintLineupTable(&buf, []model.LineupClutchMetrics{
		{Team: "A", Players: []string{"A1", "A2", "A3", "A4", "A5"}, Seconds: 60, PointsFor: 4, Off: model.OnFloor{FGA: 2}},
	})
	out := buf.String()
	if !strings.Contains(out, "A1 | A2 | A3 | A4 | A5") {
		t.Errorf("lineup key missing:\n%s", out)
	}
	if !strings.Contains(out, "200.0") {
		t.Errorf("expected ORTG 200.0:\n%s", out)
	}
}

func TestPrintRunSummary(t *testing.T) {
	var buf bytes.Buffer
	stored := []model.GameSummary{
		{GameID: "g1", Parse: model.ParseStats{Rows: 10, Untimed: 1, Unattributed: 2}, InvalidSegments: 1},
		{GameID: "g2", Parse: model.ParseStats{Rows: 20, Untimed: 3}},
	}
	failed := []model.FetchFailure{{GameID: "g3", RunID: "0123456789", Attempts: 3, Error: "timeout"}}
	PrintRunSummary(&buf, stored, failed, []string{"g0"})
	out := buf.String()

	for _, want := range []string{"30", "Failed games", "g3", "01234567", "timeout"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestMinutes(t *testing.T) {
	cases := map[float64]string{0: "0:00", 59.6: "1:00", 270: "4:30", 605: "10:05"}
	for in, want := range cases {
		if got := minutes(in); got != want {
			t.Errorf("minutes(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestPrintSegmentTable_GameClockBounds(t *testing.T) {
	var buf bytes.Buffer
	PrintSegmentTable(&buf, []model.LineupSegment{
		{Team: "A", Players: []string{"A1", "A2", "A3", "A4", "A5"}, Start: 2130, End: 2400, Valid: true},
		{Team: "B", Players: []string{"B1", "B2", "B3", "B4"}, Start: 2400, End: 2520},
	}, clock.Default())
	out := buf.String()

	for _, want := range []string{"P4 04:30", "P4 00:00", "P5 05:00", "P5 03:00", "NO"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

