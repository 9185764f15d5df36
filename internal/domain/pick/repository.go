package pick

import "context"

// Repository persists picks with upsert-by-(member, week) semantics.
type Repository interface {
	GetByMemberAndWeek(ctx context.Context, memberID int64, week int) (Pick, bool, error)
	ListByMember(ctx context.Context, memberID int64) ([]Pick, error)
	ListByTeamAndWeek(ctx context.Context, teamID int64, week int) ([]Pick, error)
	ListTeamIDsByUser(ctx context.Context, userID string) ([]int64, error)
	Upsert(ctx context.Context, item Pick) (Pick, error)
}
