package game

import "context"

// Repository persists games. Writes are upsert-by-external-id; games are
// never deleted during a season.
type Repository interface {
	GetByID(ctx context.Context, id int64) (Game, bool, error)
	GetByExternalID(ctx context.Context, externalID string) (Game, bool, error)
	Insert(ctx context.Context, item Game) (Game, error)
	Update(ctx context.Context, item Game) error
	ListByWeek(ctx context.Context, seasonYear, week int) ([]Game, error)
}
