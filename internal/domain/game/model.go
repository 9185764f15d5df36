package game

import "time"

// Game is one scheduled NFL matchup, keyed for idempotent upsert by the
// external source's game id. Scores stay nil until kickoff.
type Game struct {
	ID          int64
	SeasonYear  int
	Week        int
	HomeTeamID  int64
	AwayTeamID  int64
	HomeScore   *int
	AwayScore   *int
	IsFinal     bool
	GameTime    time.Time
	ExternalID  string
	LastUpdated time.Time
}

// HasStarted reports whether the source has published any score yet.
func (g Game) HasStarted() bool {
	return g.HomeScore != nil && g.AwayScore != nil
}

// LosingTeamID returns the loser of a finished game. The second return is
// false when scores are missing or the game ended in a tie; ties eliminate
// nobody in a survivor pool.
func (g Game) LosingTeamID() (int64, bool) {
	if g.HomeScore == nil || g.AwayScore == nil {
		return 0, false
	}
	switch {
	case *g.HomeScore > *g.AwayScore:
		return g.AwayTeamID, true
	case *g.AwayScore > *g.HomeScore:
		return g.HomeTeamID, true
	default:
		return 0, false
	}
}
