package aggregator

// ReboundSide classifies a rebound as offensive or defensive.
type ReboundSide int

const (
	ReboundUnknown ReboundSide = iota
	ReboundOffensive
	ReboundDefensive
)

func (s ReboundSide) String() string {
	switch s {
	case ReboundOffensive:
		return "OFF"
	case ReboundDefensive:
		return "DEF"
	default:
		return "?"
	}
}

// ReboundContext decides the side of a rebound from the rebounding team and
// the team of the most recent missed shot ("" when no miss is pending).
type ReboundContext interface {
	Side(team, lastMissTeam string) ReboundSide
}

// LastMissRebounds calls a rebound offensive when the rebounder's team missed
// the last shot and defensive when the other team did. With no pending miss
// the side is unknown.
type LastMissRebounds struct{}

func (LastMissRebounds) Side(team, lastMissTeam string) ReboundSide {
	switch {
	case lastMissTeam == "":
		return ReboundUnknown
	case team == lastMissTeam:
		return ReboundOffensive
	default:
		return ReboundDefensive
	}
}
