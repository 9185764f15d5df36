package gameevent

import "time"

const (
	TypeTouchdown   = "touchdown"
	TypeFieldGoal   = "field_goal"
	TypeSafety      = "safety"
	TypeGameEnd     = "game_end"
	TypeElimination = "elimination"
)

// Event is one append-only audit record tied to a game. Events are created
// by the sync pipeline only and feed the live notification stream.
type Event struct {
	ID          int64
	GameID      int64
	Type        string
	TeamID      *int64
	Description string
	ScoreHome   *int
	ScoreAway   *int
	CreatedAt   time.Time
}

// TypeForPointDelta classifies a score increase by its point value. This is
// a best-effort heuristic over aggregate scores: a six-point jump reads as a
// touchdown, three as a field goal, anything else as a safety-or-other
// scoring play.
func TypeForPointDelta(delta int) string {
	switch delta {
	case 6:
		return TypeTouchdown
	case 3:
		return TypeFieldGoal
	default:
		return TypeSafety
	}
}
