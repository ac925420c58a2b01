// Package aggregator reconstructs on-court intervals, clutch windows and
// lineups from a normalized game and rolls them into clutch metrics.
package aggregator

import (
	"errors"
	"fmt"

	"github.com/pable/go-clutch-metrics/internal/clock"
	"github.com/pable/go-clutch-metrics/internal/model"
)

// Config holds the engine parameters. The zero value is not usable; start
// from DefaultConfig.
type Config struct {
	Clock             clock.Config
	ClutchMargin      int // max |margin| before the play
	ClutchLastSeconds int // clock threshold in the last regulation period
	Rebounds          ReboundContext
}

// DefaultConfig returns the standard clutch definition: last five minutes of
// the fourth period plus overtime, margin within five.
func DefaultConfig() Config {
	return Config{
		Clock:             clock.Default(),
		ClutchMargin:      5,
		ClutchLastSeconds: 300,
		Rebounds:          LastMissRebounds{},
	}
}

// Validate checks that the config describes a playable game.
func (c Config) Validate() error {
	if c.Clock.RegulationSeconds <= 0 || c.Clock.OvertimeSeconds <= 0 || c.Clock.RegulationPeriods <= 0 {
		return fmt.Errorf("invalid clock config %+v", c.Clock)
	}
	if c.ClutchMargin < 0 {
		return fmt.Errorf("clutch margin must be >= 0, got %d", c.ClutchMargin)
	}
	if c.ClutchLastSeconds < 0 || c.ClutchLastSeconds > c.Clock.RegulationSeconds {
		return fmt.Errorf("clutch last seconds out of range: %d", c.ClutchLastSeconds)
	}
	return nil
}

// Aggregate runs every reconstruction pass over one normalized game. It never
// mutates g and returns the same result for the same input.
func Aggregate(g *model.Game, cfg Config) (*model.GameResult, error) {
	if g == nil {
		return nil, errors.New("nil game")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Rebounds == nil {
		cfg.Rebounds = LastMissRebounds{}
	}
	events := g.Events

	// ---- Pass 1: on-court intervals ----
	intervals := BuildIntervals(events, cfg.Clock)
	periods := maxPeriod(events)
	end := cfg.Clock.GameEnd(periods)
	if periods == 0 {
		periods = cfg.Clock.RegulationPeriods
	}

	// ---- Pass 2: matchup and running score ----
	teams := FindMatchup(events)
	score := ReplayScore(events, teams)

	// ---- Pass 3: clutch windows ----
	windows := BuildWindows(events, score, cfg, end)

	// ---- Pass 4: lineup segments, clipped to clutch time ----
	roster := NewRoster(intervals)
	segments := SweepLineups(roster, teams, end)
	clipped := ClipSegments(segments, windows)

	// ---- Pass 5: clutch counters ----
	t := newTally(g.GameID)
	t.addSeconds(intervals, teams, windows, clipped)
	t.countClutch(events, roster, teams, windows, cfg.Rebounds)

	// ---- Pass 6: assist pairs ----
	assists := MatchAssists(g.GameID, events)

	var clutchEvents []model.Event
	for i := range events {
		if events[i].Timed() && InWindows(windows, events[i].T()) {
			clutchEvents = append(clutchEvents, events[i])
		}
	}

	var clutchSecs float64
	for _, w := range windows {
		clutchSecs += w.Duration()
	}
	invalid := 0
	for _, s := range clipped {
		if !s.Valid {
			invalid++
		}
	}

	return &model.GameResult{
		Summary: model.GameSummary{
			GameID:          g.GameID,
			Teams:           teams,
			FinalScore:      score.Final(),
			Periods:         periods,
			ClutchSeconds:   clutchSecs,
			Parse:           g.Stats,
			InvalidSegments: invalid,
		},
		Intervals:    intervals,
		Windows:      windows,
		Segments:     clipped,
		Players:      t.playerRows(),
		Lineups:      t.lineupRows(),
		Assists:      assists,
		ClutchEvents: clutchEvents,
	}, nil
}
