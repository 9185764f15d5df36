package gameevent

import "context"

// Repository appends and reads game events. Events are never mutated or
// deleted.
type Repository interface {
	Insert(ctx context.Context, events []Event) ([]Event, error)
	ListRecentByTeams(ctx context.Context, teamIDs []int64, limit int) ([]Event, error)
}
