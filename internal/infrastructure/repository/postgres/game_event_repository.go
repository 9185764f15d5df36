package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/pickemlabs/survivor-pool/internal/domain/gameevent"
	qb "github.com/pickemlabs/survivor-pool/internal/platform/querybuilder"
)

type GameEventRepository struct {
	db *sqlx.DB
}

func NewGameEventRepository(db *sqlx.DB) *GameEventRepository {
	return &GameEventRepository{db: db}
}

func (r *GameEventRepository) Insert(ctx context.Context, events []gameevent.Event) ([]gameevent.Event, error) {
	if len(events) == 0 {
		return nil, nil
	}

	builder := qb.InsertInto("game_events").
		Columns("game_id", "event_type", "team_id", "description", "score_home", "score_away", "created_at")
	for _, item := range events {
		builder.Values(
			item.GameID,
			item.Type,
			int64PtrToNullInt64(item.TeamID),
			sql.NullString{String: item.Description, Valid: item.Description != ""},
			intPtrToNullInt64(item.ScoreHome),
			intPtrToNullInt64(item.ScoreAway),
			item.CreatedAt.UTC(),
		)
	}

	query, args, err := builder.Suffix("RETURNING id").ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build insert events query: %w", err)
	}

	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, fmt.Errorf("insert %d events: %w", len(events), err)
	}
	if len(ids) != len(events) {
		return nil, fmt.Errorf("insert events returned %d ids for %d rows", len(ids), len(events))
	}

	out := make([]gameevent.Event, len(events))
	copy(out, events)
	for i := range out {
		out[i].ID = ids[i]
	}
	return out, nil
}

// ListRecentByTeams returns the newest events touching any of the teams,
// either attributed directly or via a whole-game event on a matchup the
// team played in.
func (r *GameEventRepository) ListRecentByTeams(ctx context.Context, teamIDs []int64, limit int) ([]gameevent.Event, error) {
	if len(teamIDs) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}

	query, args, err := qb.Select(
		"e.id", "e.game_id", "e.event_type", "e.team_id",
		"e.description", "e.score_home", "e.score_away", "e.created_at",
	).
		From("game_events e").
		Join("games g ON g.id = e.game_id").
		Where(
			qb.Expr("(e.team_id = ANY(?) OR (e.team_id IS NULL AND (g.home_team_id = ANY(?) OR g.away_team_id = ANY(?))))",
				pq.Array(teamIDs), pq.Array(teamIDs), pq.Array(teamIDs)),
		).
		OrderBy("e.created_at DESC", "e.id DESC").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select events query: %w", err)
	}

	var rows []gameEventTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select events: %w", err)
	}

	out := make([]gameevent.Event, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
