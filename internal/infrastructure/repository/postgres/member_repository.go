package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/pickemlabs/survivor-pool/internal/domain/member"
	qb "github.com/pickemlabs/survivor-pool/internal/platform/querybuilder"
)

type MemberRepository struct {
	db *sqlx.DB
}

func NewMemberRepository(db *sqlx.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

func (r *MemberRepository) GetByID(ctx context.Context, id int64) (member.Member, bool, error) {
	query, args, err := qb.Select("*").From("league_members").Where(qb.Eq("id", id)).ToSQL()
	if err != nil {
		return member.Member{}, false, fmt.Errorf("build select member query: %w", err)
	}

	var row memberTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return member.Member{}, false, nil
		}
		return member.Member{}, false, fmt.Errorf("select member id=%d: %w", id, err)
	}
	return row.toDomain(), true, nil
}

func (r *MemberRepository) ListByIDs(ctx context.Context, ids []int64) ([]member.Member, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	values := make([]any, 0, len(ids))
	for _, id := range ids {
		values = append(values, id)
	}

	query, args, err := qb.Select("*").From("league_members").
		Where(qb.In("id", values)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select members query: %w", err)
	}

	var rows []memberTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select members: %w", err)
	}

	out := make([]member.Member, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// MarkEliminated flips the elimination flag for every listed member that is
// still alive. The is_eliminated guard makes the write idempotent under
// repeated completion processing.
func (r *MemberRepository) MarkEliminated(ctx context.Context, ids []int64, week int) error {
	if len(ids) == 0 {
		return nil
	}

	values := make([]any, 0, len(ids))
	for _, id := range ids {
		values = append(values, id)
	}

	query, args, err := qb.Update("league_members").
		Set("is_eliminated", true).
		SetExpr("eliminated_week = ?", week).
		Where(qb.In("id", values), qb.Eq("is_eliminated", false)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build mark eliminated query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("mark %d members eliminated: %w", len(ids), err)
	}
	return nil
}
