// Package clock converts a period and its countdown clock into a single
// elapsed-game-time axis.
package clock

// Config holds period lengths in seconds.
type Config struct {
	RegulationSeconds int
	OvertimeSeconds   int
	RegulationPeriods int
}

// Default returns FIBA lengths: four 10-minute periods, 5-minute overtimes.
func Default() Config {
	return Config{
		RegulationSeconds: 600,
		OvertimeSeconds:   300,
		RegulationPeriods: 4,
	}
}

// PeriodLength returns the length of the given period in seconds.
func (c Config) PeriodLength(period int) int {
	if period > c.RegulationPeriods {
		return c.OvertimeSeconds
	}
	return c.RegulationSeconds
}

// IsOvertime reports whether period is past regulation.
func (c Config) IsOvertime(period int) bool { return period > c.RegulationPeriods }

// Elapsed returns seconds since tip-off for a point inside period with
// clockSeconds remaining. ok is false when either input is missing or the
// period is not positive.
func (c Config) Elapsed(period, clockSeconds *int) (elapsed float64, ok bool) {
	if period == nil || clockSeconds == nil || *period < 1 {
		return 0, false
	}
	return c.ElapsedAt(*period, *clockSeconds), true
}

// ElapsedAt is Elapsed for known inputs.
func (c Config) ElapsedAt(period, clockSeconds int) float64 {
	total := 0
	for p := 1; p < period; p++ {
		total += c.PeriodLength(p)
	}
	return float64(total + c.PeriodLength(period) - clockSeconds)
}

// GameEnd returns the elapsed time at the final buzzer of maxPeriod. A
// non-positive maxPeriod falls back to the end of regulation.
func (c Config) GameEnd(maxPeriod int) float64 {
	if maxPeriod < 1 {
		maxPeriod = c.RegulationPeriods
	}
	return c.ElapsedAt(maxPeriod, 0)
}

// Locate inverts ElapsedAt, returning the period and remaining clock for an
// elapsed time. Period boundaries resolve to the start of the next period.
func (c Config) Locate(elapsed float64) (period, clockSeconds int) {
	period = 1
	start := 0.0
	for {
		length := float64(c.PeriodLength(period))
		if elapsed < start+length {
			return period, int(start + length - elapsed)
		}
		start += length
		period++
	}
}
