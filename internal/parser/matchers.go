package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pable/go-clutch-metrics/internal/model"
)

// Attribution is the team/player/detail split of a row's text.
type Attribution struct {
	Team   string
	Player string
	Detail string
}

// A Matcher tries to attribute a row's text. Matchers are pure and are tried
// in order, strictest first.
type Matcher func(text string) (Attribution, bool)

var (
	teamColonRE   = regexp.MustCompile(`(?i)\((?P<team>[^)]+)\)\s*(?P<player>[^:]+):\s*(?P<detail>.+)`)
	teamDashRE    = regexp.MustCompile(`(?i)\((?P<team>[^)]+)\)\s*(?P<player>[^-:]+)\s*[-:]\s*(?P<detail>.+)`)
	playerColonRE = regexp.MustCompile(`(?i)^(?P<player>[^:]{2,}?)\s*:\s*(?P<detail>.+)$`)
)

// MatchTeamColon matches "(TEAM) PLAYER: DETAIL".
func MatchTeamColon(text string) (Attribution, bool) { return matchNamed(teamColonRE, text) }

// MatchTeamDash matches "(TEAM) PLAYER - DETAIL".
func MatchTeamDash(text string) (Attribution, bool) { return matchNamed(teamDashRE, text) }

// MatchPlayerColon matches "PLAYER: DETAIL" with no team.
func MatchPlayerColon(text string) (Attribution, bool) { return matchNamed(playerColonRE, text) }

// RowMatchers is the attribution cascade in order of decreasing strictness.
var RowMatchers = []Matcher{MatchTeamColon, MatchTeamDash, MatchPlayerColon}

// Attribute runs the cascade and returns the first match.
func Attribute(text string) (Attribution, bool) {
	for _, m := range RowMatchers {
		if a, ok := m(text); ok {
			return a, true
		}
	}
	return Attribution{}, false
}

func matchNamed(re *regexp.Regexp, text string) (Attribution, bool) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return Attribution{}, false
	}
	var a Attribution
	for i, name := range re.SubexpNames() {
		switch name {
		case "team":
			a.Team = strings.TrimSpace(m[i])
		case "player":
			a.Player = strings.TrimSpace(m[i])
		case "detail":
			a.Detail = strings.TrimSpace(m[i])
		}
	}
	if a.Player == "" {
		return Attribution{}, false
	}
	return a, true
}

// ---- Action classification ----

var (
	subInRE    = regexp.MustCompile(`(?i)Sustituci[oó]n\s*\(.*Entra.*\)`)
	subOutRE   = regexp.MustCompile(`(?i)Sustituci[oó]n\s*\(.*Sale.*\)`)
	madeFGRE   = regexp.MustCompile(`(?i)TIRO\s*DE\s*[23]\s*ANOTADO|Triple\s*.*(anot|conv)|Canasta\s*de\s*2\s*.*(anot|conv)|MATE\s*ANOTADO`)
	assistRE   = regexp.MustCompile(`(?i)\bAsistenc`)
	turnoverRE = regexp.MustCompile(`(?i)P[eé]rdid`)
	stealRE    = regexp.MustCompile(`(?i)Robo`)
	blockRE    = regexp.MustCompile(`(?i)Tap[oó]n`)
	reboundRE  = regexp.MustCompile(`(?i)Rebote`)
	missedRE   = regexp.MustCompile(`(?i)FALLAD`)
)

type actionRule struct {
	kind model.ActionKind
	re   *regexp.Regexp
}

// actionRules are evaluated in order; the first match wins.
var actionRules = []actionRule{
	{model.ActionSubIn, subInRE},
	{model.ActionSubOut, subOutRE},
	{model.ActionMadeShot, madeFGRE},
	{model.ActionAssist, assistRE},
}

// ClassifyAction returns the action kind of a row's full text.
func ClassifyAction(text string) model.ActionKind {
	for _, r := range actionRules {
		if r.re.MatchString(text) {
			return r.kind
		}
	}
	return model.ActionOther
}

type shotRule struct {
	kind model.ShotKind
	made *regexp.Regexp
	try  *regexp.Regexp
}

var shotRules = []shotRule{
	{
		kind: model.ShotThree,
		made: regexp.MustCompile(`(?i)TIRO\s*DE\s*3\s*ANOTADO|Triple\s*.*(anot|conv)`),
		try:  regexp.MustCompile(`(?i)TIRO\s*DE\s*3|Triple`),
	},
	{
		kind: model.ShotTwo,
		made: regexp.MustCompile(`(?i)TIRO\s*DE\s*2\s*ANOTADO|Canasta\s*de\s*2\s*.*(anot|conv)`),
		try:  regexp.MustCompile(`(?i)TIRO\s*DE\s*2|Canasta\s*de\s*2`),
	},
	{
		kind: model.ShotDunk,
		made: regexp.MustCompile(`(?i)MATE\s*ANOTADO`),
		try:  regexp.MustCompile(`(?i)MATE`),
	},
	{
		kind: model.ShotFreeThrow,
		made: regexp.MustCompile(`(?i)TIRO\s*DE\s*1\s*ANOTADO`),
		try:  regexp.MustCompile(`(?i)TIRO\s*DE\s*1`),
	},
}

// ClassifyShot returns the shot kind in detail and whether it was made.
// Made patterns are checked across all kinds before attempt patterns.
func ClassifyShot(detail string) (model.ShotKind, bool) {
	for _, r := range shotRules {
		if r.made.MatchString(detail) {
			return r.kind, true
		}
	}
	for _, r := range shotRules {
		if r.try.MatchString(detail) {
			return r.kind, false
		}
	}
	return model.ShotNone, false
}

// ClassifyFlags returns the secondary stat markers found in detail.
func ClassifyFlags(detail string) model.StatFlag {
	var f model.StatFlag
	if assistRE.MatchString(detail) {
		f |= model.FlagAssist
	}
	if turnoverRE.MatchString(detail) {
		f |= model.FlagTurnover
	}
	if stealRE.MatchString(detail) {
		f |= model.FlagSteal
	}
	if blockRE.MatchString(detail) {
		f |= model.FlagBlock
	}
	if reboundRE.MatchString(detail) {
		f |= model.FlagRebound
	}
	if missedRE.MatchString(detail) {
		f |= model.FlagMissed
	}
	return f
}

// ---- Period and clock ----

var (
	firstIntRE = regexp.MustCompile(`\d+`)
	clockRE    = regexp.MustCompile(`(\d{1,2}):([0-5]\d)`)
)

// FirstInt returns the first integer in s. Markup is inconsistent, so the
// first number wins over strict field parsing.
func FirstInt(s string) (int, bool) {
	m := firstIntRE.FindString(s)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}

// FindClock returns the seconds of the first mm:ss anywhere in text and the
// byte span of the match.
func FindClock(text string) (seconds int, span [2]int, ok bool) {
	loc := clockRE.FindStringSubmatchIndex(text)
	if loc == nil {
		return 0, span, false
	}
	mm, _ := strconv.Atoi(text[loc[2]:loc[3]])
	ss, _ := strconv.Atoi(text[loc[4]:loc[5]])
	return mm*60 + ss, [2]int{loc[0], loc[1]}, true
}

var spaceRE = regexp.MustCompile(`\s+`)

// CleanText replaces non-breaking spaces and collapses whitespace runs.
func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.TrimSpace(spaceRE.ReplaceAllString(s, " "))
}
