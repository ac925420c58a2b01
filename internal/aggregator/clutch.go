package aggregator

import (
	"github.com/pable/go-clutch-metrics/internal/model"
)

// InPeriodGate reports whether a game instant is in the last
// ClutchLastSeconds of regulation or in any overtime period.
func (c Config) InPeriodGate(period, clockSeconds int) bool {
	if c.Clock.IsOvertime(period) {
		return true
	}
	return period == c.Clock.RegulationPeriods && clockSeconds <= c.ClutchLastSeconds
}

// IsClutch combines the period gate with the margin gate.
func (c Config) IsClutch(period, clockSeconds, margin int) bool {
	return c.InPeriodGate(period, clockSeconds) && margin <= c.ClutchMargin
}

// ClutchAt evaluates the clutch predicate for events[i] using the score
// immediately before that play.
func (c Config) ClutchAt(events []model.Event, i int, score *ScoreState) bool {
	e := &events[i]
	if !e.Timed() || e.Period == nil || e.ClockSeconds == nil {
		return false
	}
	return c.IsClutch(*e.Period, *e.ClockSeconds, score.MarginBefore(i))
}

// BuildWindows sweeps timed events and returns the half-open spans during
// which the clutch predicate held. A window opens or closes at the elapsed
// time of the event where the predicate flips, and a window still open at
// the end runs to end. Without two known teams there are no windows.
func BuildWindows(events []model.Event, score *ScoreState, cfg Config, end float64) []model.ClutchWindow {
	if !score.Teams.Complete() {
		return nil
	}
	var windows []model.ClutchWindow
	emit := func(start, stop float64) {
		if stop > start {
			windows = append(windows, model.ClutchWindow{Start: start, End: stop})
		}
	}

	prevT, prevState := 0.0, false
	for i := range events {
		if !events[i].Timed() {
			continue
		}
		state := cfg.ClutchAt(events, i, score)
		if state == prevState {
			continue
		}
		t := events[i].T()
		if prevState {
			emit(prevT, t)
		}
		prevT, prevState = t, state
	}
	if prevState {
		emit(prevT, end)
	}
	return windows
}

// InWindows reports whether t falls inside any window.
func InWindows(windows []model.ClutchWindow, t float64) bool {
	for _, w := range windows {
		if w.Contains(t) {
			return true
		}
	}
	return false
}

// overlap returns the length of [a0,a1) ∩ [b0,b1).
func overlap(a0, a1, b0, b1 float64) float64 {
	lo, hi := max(a0, b0), min(a1, b1)
	if hi <= lo {
		return 0
	}
	return hi - lo
}
