package aggregator

import (
	"fmt"

	"github.com/pable/go-clutch-metrics/internal/clock"
	"github.com/pable/go-clutch-metrics/internal/model"
)

// gameBuilder appends timed events in the order given; callers keep them in
// elapsed order.
type gameBuilder struct {
	cc     clock.Config
	events []model.Event
}

func newGame() *gameBuilder { return &gameBuilder{cc: clock.Default()} }

func (b *gameBuilder) add(period int, clk, team, player string, fill func(*model.Event)) *gameBuilder {
	var mm, ss int
	if _, err := fmt.Sscanf(clk, "%d:%d", &mm, &ss); err != nil {
		panic(err)
	}
	p, c := period, mm*60+ss
	el := b.cc.ElapsedAt(p, c)
	e := model.Event{
		Seq:          len(b.events),
		Period:       &p,
		ClockSeconds: &c,
		Elapsed:      &el,
		Team:         team,
		Player:       player,
	}
	if fill != nil {
		fill(&e)
	}
	b.events = append(b.events, e)
	return b
}

func (b *gameBuilder) in(period int, clk, team, player string) *gameBuilder {
	return b.add(period, clk, team, player, func(e *model.Event) { e.Action = model.ActionSubIn })
}

func (b *gameBuilder) out(period int, clk, team, player string) *gameBuilder {
	return b.add(period, clk, team, player, func(e *model.Event) { e.Action = model.ActionSubOut })
}

func (b *gameBuilder) starters(team string, players ...string) *gameBuilder {
	for _, p := range players {
		b.in(1, "10:00", team, p)
	}
	return b
}

func (b *gameBuilder) shot(period int, clk, team, player string, kind model.ShotKind, made bool) *gameBuilder {
	return b.add(period, clk, team, player, func(e *model.Event) {
		e.Shot = kind
		e.Made = made
		if made && kind.IsFieldGoal() {
			e.Action = model.ActionMadeShot
		}
		if !made {
			e.Flags |= model.FlagMissed
		}
	})
}

func (b *gameBuilder) assist(period int, clk, team, player string) *gameBuilder {
	return b.add(period, clk, team, player, func(e *model.Event) {
		e.Action = model.ActionAssist
		e.Flags |= model.FlagAssist
	})
}

func (b *gameBuilder) flag(period int, clk, team, player string, f model.StatFlag) *gameBuilder {
	return b.add(period, clk, team, player, func(e *model.Event) { e.Flags |= f })
}

func (b *gameBuilder) untimed(team, player string) *gameBuilder {
	b.events = append(b.events, model.Event{Seq: len(b.events), Team: team, Player: player, Action: model.ActionSubIn})
	return b
}

func (b *gameBuilder) game() *model.Game {
	return &model.Game{GameID: "g1", Events: b.events}
}

var (
	fiveA = []string{"A1", "A2", "A3", "A4", "A5"}
	fiveB = []string{"B1", "B2", "B3", "B4", "B5"}
)

// closeGame is a regulation game where A trails by three at 04:30 of the
// fourth, ties with a three at 04:20, gets a stop and goes up two at 04:05.
func closeGame() *gameBuilder {
	return newGame().
		starters("A", fiveA...).
		starters("B", fiveB...).
		shot(1, "09:40", "B", "B1", model.ShotThree, true).
		shot(4, "04:30", "A", "A1", model.ShotTwo, false).
		flag(4, "04:28", "B", "B3", model.FlagRebound).
		shot(4, "04:20", "A", "A2", model.ShotThree, true).
		shot(4, "04:10", "B", "B2", model.ShotTwo, false).
		flag(4, "04:08", "A", "A4", model.FlagRebound).
		shot(4, "04:05", "A", "A3", model.ShotTwo, true)
}

func findPlayer(rows []model.PlayerClutchMetrics, team, player string) *model.PlayerClutchMetrics {
	for i := range rows {
		if rows[i].Team == team && rows[i].Player == player {
			return &rows[i]
		}
	}
	return nil
}
