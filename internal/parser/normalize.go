package parser

import (
	"sort"
	"strings"

	"github.com/pable/go-clutch-metrics/internal/clock"
	"github.com/pable/go-clutch-metrics/internal/model"
)

// Dedupe drops rows whose (text, clock) pair repeats the previous row.
// The widget re-renders rows while scrolling, so repeats are expected.
func Dedupe(rows []model.RawEventRow) ([]model.RawEventRow, int) {
	out := make([]model.RawEventRow, 0, len(rows))
	dropped := 0
	var prevText, prevClock string
	for i, r := range rows {
		text, clk := CleanText(r.Text), CleanText(r.ClockText)
		if i > 0 && text == prevText && clk == prevClock {
			dropped++
			continue
		}
		prevText, prevClock = text, clk
		out = append(out, r)
	}
	return out, dropped
}

// NormalizeRow turns one raw row into an event. It never fails: fields that
// cannot be read are left unset.
func NormalizeRow(r model.RawEventRow, cc clock.Config) model.Event {
	text := CleanText(r.Text)
	clockText := CleanText(r.ClockText)
	full := text
	if clockText != "" && !strings.Contains(text, clockText) {
		full = strings.TrimSpace(clockText + " " + text)
	}

	ev := model.Event{RawText: full}

	if p, ok := FirstInt(r.Period); ok {
		ev.Period = &p
	}

	body := full
	if secs, span, ok := FindClock(full); ok {
		ev.ClockSeconds = &secs
		// The clock token must not be mistaken for a "PLAYER:" prefix.
		body = strings.TrimSpace(full[:span[0]] + " " + full[span[1]:])
	}
	if t, ok := cc.Elapsed(ev.Period, ev.ClockSeconds); ok {
		ev.Elapsed = &t
	}

	a, attributed := Attribute(body)
	if attributed {
		ev.Team, ev.Player, ev.Detail = a.Team, a.Player, a.Detail
	} else {
		ev.Detail = body
	}

	// Rows without a player stay OTHER; shot and flag fields are best effort.
	ev.Action = model.ActionOther
	if attributed {
		ev.Action = ClassifyAction(full)
	}
	ev.Shot, ev.Made = ClassifyShot(ev.Detail)
	ev.Flags = ClassifyFlags(ev.Detail)
	return ev
}

// Normalize de-duplicates rows, normalizes each one and orders the result:
// timed events by (elapsed, period) with feed order kept for ties, then
// untimed events in feed order.
func Normalize(gameID string, rows []model.RawEventRow, cc clock.Config) *model.Game {
	g := &model.Game{GameID: gameID}
	g.Stats.Rows = len(rows)

	deduped, dropped := Dedupe(rows)
	g.Stats.Duplicates = dropped

	timed := make([]model.Event, 0, len(deduped))
	var untimed []model.Event
	for i, r := range deduped {
		ev := NormalizeRow(r, cc)
		ev.Seq = i
		if ev.Player == "" {
			g.Stats.Unattributed++
		}
		if ev.Timed() {
			timed = append(timed, ev)
		} else {
			g.Stats.Untimed++
			untimed = append(untimed, ev)
		}
	}

	sort.SliceStable(timed, func(i, j int) bool {
		ti, tj := timed[i].T(), timed[j].T()
		if ti != tj {
			return ti < tj
		}
		return timed[i].PeriodOr(0) < timed[j].PeriodOr(0)
	})

	g.Events = append(timed, untimed...)
	return g
}
