package usecase

import (
	"context"
	"time"
)

// SeasonTypeRegular is the season-phase code the score source uses for the
// regular season.
const SeasonTypeRegular = 2

// ScoreSource fetches one week of schedule/score data from the external
// provider. Implementations surface transport and parse failures as typed
// errors and never retry; retry policy belongs to the caller.
type ScoreSource interface {
	FetchWeek(ctx context.Context, seasonYear, seasonType, week int) ([]CanonicalGame, error)
}

// CanonicalGame is the validated, provider-agnostic shape of one fetched
// game. Team identities arrive as internal abbreviations; an empty
// abbreviation marks an external team id the static mapping does not know,
// which callers skip without aborting the batch.
type CanonicalGame struct {
	ExternalID       string
	Week             int
	HomeAbbreviation string
	AwayAbbreviation string
	HomeTeamName     string
	AwayTeamName     string
	HomeScore        *int
	AwayScore        *int
	StartsAt         time.Time
	IsCompleted      bool
	Status           string
}
