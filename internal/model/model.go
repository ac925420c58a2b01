package model

import (
	"fmt"
	"math"
	"strings"
)

// ActionKind is the coarse classification of a play-by-play row.
type ActionKind int

const (
	ActionOther ActionKind = iota
	ActionSubIn
	ActionSubOut
	ActionMadeShot
	ActionAssist
)

func (a ActionKind) String() string {
	switch a {
	case ActionSubIn:
		return "SUB_IN"
	case ActionSubOut:
		return "SUB_OUT"
	case ActionMadeShot:
		return "MADE_SHOT"
	case ActionAssist:
		return "ASSIST"
	default:
		return "OTHER"
	}
}

// ShotKind identifies the type of shot attempt found in an event's detail.
type ShotKind int

const (
	ShotNone ShotKind = iota
	ShotFreeThrow
	ShotTwo
	ShotThree
	ShotDunk
)

// Value returns the points a made shot of this kind is worth.
func (s ShotKind) Value() int {
	switch s {
	case ShotFreeThrow:
		return 1
	case ShotTwo, ShotDunk:
		return 2
	case ShotThree:
		return 3
	default:
		return 0
	}
}

// IsFieldGoal reports whether the shot counts toward FGA (2s, 3s and dunks).
func (s ShotKind) IsFieldGoal() bool {
	return s == ShotTwo || s == ShotThree || s == ShotDunk
}

func (s ShotKind) String() string {
	switch s {
	case ShotFreeThrow:
		return "FT"
	case ShotTwo:
		return "2PT"
	case ShotThree:
		return "3PT"
	case ShotDunk:
		return "DUNK"
	default:
		return ""
	}
}

// StatFlag is a bitset of secondary stat markers found in an event's detail.
type StatFlag uint8

const (
	FlagAssist StatFlag = 1 << iota
	FlagTurnover
	FlagSteal
	FlagBlock
	FlagRebound
	FlagMissed
)

// ---- Raw rows emitted by the acquisition collaborator ----

// RawEventRow is one displayed row of the play-by-play widget.
// Period is the raw period marker (e.g. the data-cuarto attribute), which may
// be empty or carry surrounding markup noise.
type RawEventRow struct {
	Period    string
	ClockText string
	Text      string
}

// Game is the normalized event stream for a single game.
type Game struct {
	GameID string
	Events []Event
	Stats  ParseStats
}

// ParseStats counts per-row outcomes of normalization.
type ParseStats struct {
	Rows         int // rows received, before de-duplication
	Duplicates   int // consecutive duplicate rows removed
	Untimed      int // events without a usable elapsed time
	Unattributed int // events with no player after the attribution cascade
}

// Event is a normalized play-by-play row. Optional fields are nil when the
// row did not carry them.
type Event struct {
	Seq          int // position in the de-duplicated feed
	Period       *int
	ClockSeconds *int
	Elapsed      *float64

	Team   string
	Player string
	Detail string

	Action ActionKind
	Shot   ShotKind
	Made   bool
	Flags  StatFlag

	RawText string
}

// Timed reports whether the event has a derived elapsed time.
func (e *Event) Timed() bool { return e.Elapsed != nil }

// T returns the elapsed time. Callers must check Timed first.
func (e *Event) T() float64 {
	if e.Elapsed == nil {
		return math.NaN()
	}
	return *e.Elapsed
}

// PeriodOr returns the period or def when it is missing.
func (e *Event) PeriodOr(def int) int {
	if e.Period == nil {
		return def
	}
	return *e.Period
}

// ClockOr returns the clock seconds or def when it is missing.
func (e *Event) ClockOr(def int) int {
	if e.ClockSeconds == nil {
		return def
	}
	return *e.ClockSeconds
}

// Has reports whether the given stat flag is set.
func (e *Event) Has(f StatFlag) bool { return e.Flags&f != 0 }

// Points returns the points scored by the event (0 unless a made shot).
func (e *Event) Points() int {
	if !e.Made {
		return 0
	}
	return e.Shot.Value()
}

// ClockString renders the clock as mm:ss, or "" when unknown.
func (e *Event) ClockString() string {
	if e.ClockSeconds == nil {
		return ""
	}
	return FormatClock(*e.ClockSeconds)
}

// FormatClock renders seconds as zero-padded mm:ss.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// ---- Reconstruction products ----

// OpenReason records why an on-court interval was opened.
type OpenReason int

const (
	OpenSubIn OpenReason = iota
	OpenStarter
	OpenInferredStarter
)

func (r OpenReason) String() string {
	switch r {
	case OpenStarter:
		return "STARTER"
	case OpenInferredStarter:
		return "INFERRED_STARTER"
	default:
		return "SUB_IN"
	}
}

// CloseReason records why an on-court interval was closed.
type CloseReason int

const (
	CloseSubOut CloseReason = iota
	CloseSubInWithoutSubOut
	CloseInferredStarter
	CloseEndOfGame
)

func (r CloseReason) String() string {
	switch r {
	case CloseSubInWithoutSubOut:
		return "SUB_IN_WITHOUT_PRIOR_SUB_OUT"
	case CloseInferredStarter:
		return "INFERRED_STARTER_CLOSE"
	case CloseEndOfGame:
		return "END_OF_GAME"
	default:
		return "SUB_OUT"
	}
}

// PlayerInterval is a closed span of elapsed time a player spent on court.
type PlayerInterval struct {
	Team        string
	Player      string
	Start       float64
	End         float64
	OpenReason  OpenReason
	CloseReason CloseReason
}

// Duration returns End - Start in seconds.
func (iv PlayerInterval) Duration() float64 { return iv.End - iv.Start }

// Contains uses the half-open on-court test start <= t < end.
func (iv PlayerInterval) Contains(t float64) bool { return iv.Start <= t && t < iv.End }

// Matchup holds the two teams of a game in first-seen order.
type Matchup [2]string

// Index returns 0 or 1 for a team in the matchup, -1 otherwise.
func (m Matchup) Index(team string) int {
	if team == "" {
		return -1
	}
	for i, t := range m {
		if t == team {
			return i
		}
	}
	return -1
}

// Opponent returns the other team, or "" when team is not in the matchup.
func (m Matchup) Opponent(team string) string {
	switch m.Index(team) {
	case 0:
		return m[1]
	case 1:
		return m[0]
	default:
		return ""
	}
}

// Complete reports whether both teams are known.
func (m Matchup) Complete() bool { return m[0] != "" && m[1] != "" }

// ScoreSnapshot is the running score right after a scoring event.
// Index is the position of that event in Game.Events.
type ScoreSnapshot struct {
	Index   int
	Elapsed float64
	Score   [2]int // indexed like Matchup
}

// Margin returns the absolute score difference.
func (s ScoreSnapshot) Margin() int {
	d := s.Score[0] - s.Score[1]
	if d < 0 {
		return -d
	}
	return d
}

// ClutchWindow is a half-open [Start, End) span of clutch time.
type ClutchWindow struct {
	Start float64
	End   float64
}

// Contains reports Start <= t < End.
func (w ClutchWindow) Contains(t float64) bool { return w.Start <= t && t < w.End }

// Duration returns End - Start in seconds.
func (w ClutchWindow) Duration() float64 { return w.End - w.Start }

// LineupSegment is a span during which one team fielded the same players.
// Segments whose player count is not five are kept but marked invalid.
type LineupSegment struct {
	Team    string
	Players []string // sorted
	Start   float64
	End     float64
	Valid   bool
}

// Duration returns End - Start in seconds.
func (s LineupSegment) Duration() float64 { return s.End - s.Start }

// Key returns the players joined into a stable lineup identifier.
func (s LineupSegment) Key() string { return LineupKey(s.Players) }

// LineupKey joins sorted player names into the stored lineup identifier.
func LineupKey(players []string) string {
	if len(players) == 0 {
		return "(empty)"
	}
	return strings.Join(players, " | ")
}

// AssistPair counts passer→scorer connections within one team.
type AssistPair struct {
	GameID string
	Team   string
	Passer string
	Scorer string
	Count  int
}

// ---- Aggregated clutch metrics ----

// OnFloor counts possession components while a player or lineup was on court.
type OnFloor struct {
	FGA int
	ORB int
	TO  int
	FTA int
}

// Possessions estimates possessions as FGA - ORB + TO + 0.44*FTA.
func (o OnFloor) Possessions() float64 {
	return float64(o.FGA-o.ORB+o.TO) + 0.44*float64(o.FTA)
}

// PlayerClutchMetrics are one player's counters restricted to clutch time.
type PlayerClutchMetrics struct {
	GameID string
	Team   string
	Player string

	Seconds float64

	PTS       int
	FGA, FGM  int
	ThreePA   int
	ThreePM   int
	FTA, FTM  int
	AST, TO   int
	STL, BLK  int
	REB       int
	REBO      int
	REBD      int

	PlusMinus     int
	PointsFor     int
	PointsAgainst int

	TeamOn OnFloor // own team while on court
	OppOn  OnFloor // opponent while on court
}

// Minutes returns clutch seconds in decimal minutes.
func (p *PlayerClutchMetrics) Minutes() float64 { return p.Seconds / 60 }

// EFG returns (FGM + 0.5*3PM) / FGA, NaN with no attempts.
func (p *PlayerClutchMetrics) EFG() float64 {
	if p.FGA <= 0 {
		return math.NaN()
	}
	return (float64(p.FGM) + 0.5*float64(p.ThreePM)) / float64(p.FGA)
}

// TS returns PTS / (2*(FGA + 0.44*FTA)), NaN with no attempts.
func (p *PlayerClutchMetrics) TS() float64 {
	den := float64(p.FGA) + 0.44*float64(p.FTA)
	if den <= 0 {
		return math.NaN()
	}
	return float64(p.PTS) / (2 * den)
}

// Usage returns the share of team possessions used while on court.
func (p *PlayerClutchMetrics) Usage() float64 {
	poss := p.TeamOn.Possessions()
	if poss <= 0 {
		return math.NaN()
	}
	return 100 * (float64(p.FGA) + 0.44*float64(p.FTA) + float64(p.TO)) / poss
}

// OffRating returns points scored per 100 team possessions on court.
func (p *PlayerClutchMetrics) OffRating() float64 {
	return rating(p.PointsFor, p.TeamOn.Possessions())
}

// DefRating returns points allowed per 100 opponent possessions on court.
func (p *PlayerClutchMetrics) DefRating() float64 {
	return rating(p.PointsAgainst, p.OppOn.Possessions())
}

// NetRating returns OffRating - DefRating; NaN if either is undefined.
func (p *PlayerClutchMetrics) NetRating() float64 {
	return p.OffRating() - p.DefRating()
}

// LineupClutchMetrics are one five-player lineup's clutch totals in a game.
type LineupClutchMetrics struct {
	GameID  string
	Team    string
	Players []string

	Seconds       float64
	PointsFor     int
	PointsAgainst int

	Off OnFloor // lineup's own possessions
	Def OnFloor // opponent possessions faced
}

// Key returns the stored lineup identifier.
func (l *LineupClutchMetrics) Key() string { return LineupKey(l.Players) }

// Minutes returns clutch seconds in decimal minutes.
func (l *LineupClutchMetrics) Minutes() float64 { return l.Seconds / 60 }

func (l *LineupClutchMetrics) OffRating() float64 { return rating(l.PointsFor, l.Off.Possessions()) }
func (l *LineupClutchMetrics) DefRating() float64 { return rating(l.PointsAgainst, l.Def.Possessions()) }
func (l *LineupClutchMetrics) NetRating() float64 { return l.OffRating() - l.DefRating() }

func rating(points int, poss float64) float64 {
	if poss <= 0 {
		return math.NaN()
	}
	return 100 * float64(points) / poss
}

// GameSummary describes one processed game and its error counts.
type GameSummary struct {
	GameID          string
	Teams           Matchup
	FinalScore      [2]int
	Periods         int
	ClutchSeconds   float64
	Parse           ParseStats
	InvalidSegments int
	RunID           string
	StoredAt        string
}

// GameResult bundles every per-game output of the engine.
type GameResult struct {
	Summary      GameSummary
	Intervals    []PlayerInterval
	Windows      []ClutchWindow
	Segments     []LineupSegment
	Players      []PlayerClutchMetrics
	Lineups      []LineupClutchMetrics
	Assists      []AssistPair
	ClutchEvents []Event
}

// FetchFailure records a game that could not be acquired in a run.
type FetchFailure struct {
	ID       int64
	GameID   string
	RunID    string
	Attempts int
	Error    string
	FailedAt string
}

// LineupAggregate sums a lineup's clutch rows across stored games.
type LineupAggregate struct {
	Games int
	LineupClutchMetrics
}

// PlayerTrendRow is one game of a player's clutch history.
type PlayerTrendRow struct {
	GameID   string
	Opponent string
	PlayerClutchMetrics
}
