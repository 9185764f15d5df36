package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/pickemlabs/survivor-pool/internal/domain/pick"
	qb "github.com/pickemlabs/survivor-pool/internal/platform/querybuilder"
)

type PickRepository struct {
	db *sqlx.DB
}

func NewPickRepository(db *sqlx.DB) *PickRepository {
	return &PickRepository{db: db}
}

func (r *PickRepository) GetByMemberAndWeek(ctx context.Context, memberID int64, week int) (pick.Pick, bool, error) {
	query, args, err := qb.Select("*").From("picks").
		Where(qb.Eq("league_member_id", memberID), qb.Eq("week", week)).
		ToSQL()
	if err != nil {
		return pick.Pick{}, false, fmt.Errorf("build select pick query: %w", err)
	}

	var row pickTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return pick.Pick{}, false, nil
		}
		return pick.Pick{}, false, fmt.Errorf("select pick member=%d week=%d: %w", memberID, week, err)
	}
	return row.toDomain(), true, nil
}

func (r *PickRepository) ListByMember(ctx context.Context, memberID int64) ([]pick.Pick, error) {
	query, args, err := qb.Select("*").From("picks").
		Where(qb.Eq("league_member_id", memberID)).
		OrderBy("week").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select picks query: %w", err)
	}
	return r.selectPicks(ctx, query, args)
}

func (r *PickRepository) ListByTeamAndWeek(ctx context.Context, teamID int64, week int) ([]pick.Pick, error) {
	query, args, err := qb.Select("*").From("picks").
		Where(qb.Eq("team_id", teamID), qb.Eq("week", week)).
		OrderBy("league_member_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select picks by team query: %w", err)
	}
	return r.selectPicks(ctx, query, args)
}

func (r *PickRepository) ListTeamIDsByUser(ctx context.Context, userID string) ([]int64, error) {
	query, args, err := qb.Select("DISTINCT p.team_id").
		From("picks p").
		Join("league_members m ON m.id = p.league_member_id").
		Where(qb.Eq("m.user_id", userID)).
		OrderBy("p.team_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select picked teams query: %w", err)
	}

	var out []int64
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("select picked teams user=%s: %w", userID, err)
	}
	return out, nil
}

func (r *PickRepository) Upsert(ctx context.Context, item pick.Pick) (pick.Pick, error) {
	now := item.UpdatedAt
	if now.IsZero() {
		now = time.Now().UTC()
	}

	query, args, err := qb.InsertInto("picks").
		Columns("league_member_id", "week", "team_id", "created_at", "updated_at").
		Values(item.LeagueMemberID, item.Week, item.TeamID, now, now).
		Suffix("ON CONFLICT (league_member_id, week) DO UPDATE SET team_id = EXCLUDED.team_id, updated_at = EXCLUDED.updated_at RETURNING id, created_at, updated_at").
		ToSQL()
	if err != nil {
		return pick.Pick{}, fmt.Errorf("build upsert pick query: %w", err)
	}

	var returned struct {
		ID        int64     `db:"id"`
		CreatedAt time.Time `db:"created_at"`
		UpdatedAt time.Time `db:"updated_at"`
	}
	if err := r.db.GetContext(ctx, &returned, query, args...); err != nil {
		return pick.Pick{}, fmt.Errorf("upsert pick member=%d week=%d: %w", item.LeagueMemberID, item.Week, err)
	}

	item.ID = returned.ID
	item.CreatedAt = returned.CreatedAt.UTC()
	item.UpdatedAt = returned.UpdatedAt.UTC()
	return item, nil
}

func (r *PickRepository) selectPicks(ctx context.Context, query string, args []any) ([]pick.Pick, error) {
	var rows []pickTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select picks: %w", err)
	}

	out := make([]pick.Pick, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
