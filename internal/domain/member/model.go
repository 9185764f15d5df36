package member

// Member is a user's seat in one league. The elimination flag is monotonic
// within a season: once set it is never cleared, and only the elimination
// processor writes it.
type Member struct {
	ID             int64
	LeagueID       string
	UserID         string
	IsEliminated   bool
	EliminatedWeek *int
}
