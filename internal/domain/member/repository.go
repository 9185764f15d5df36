package member

import "context"

// Repository reads league membership and applies elimination writes.
type Repository interface {
	GetByID(ctx context.Context, id int64) (Member, bool, error)
	ListByIDs(ctx context.Context, ids []int64) ([]Member, error)
	MarkEliminated(ctx context.Context, ids []int64, week int) error
}
