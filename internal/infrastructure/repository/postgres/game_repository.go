package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/pickemlabs/survivor-pool/internal/domain/game"
	qb "github.com/pickemlabs/survivor-pool/internal/platform/querybuilder"
)

type GameRepository struct {
	db *sqlx.DB
}

func NewGameRepository(db *sqlx.DB) *GameRepository {
	return &GameRepository{db: db}
}

func (r *GameRepository) GetByID(ctx context.Context, id int64) (game.Game, bool, error) {
	return r.getOne(ctx, qb.Eq("id", id))
}

func (r *GameRepository) GetByExternalID(ctx context.Context, externalID string) (game.Game, bool, error) {
	return r.getOne(ctx, qb.Eq("external_id", externalID))
}

func (r *GameRepository) getOne(ctx context.Context, cond qb.Cond) (game.Game, bool, error) {
	query, args, err := qb.Select("*").From("games").Where(cond).ToSQL()
	if err != nil {
		return game.Game{}, false, fmt.Errorf("build select game query: %w", err)
	}

	var row gameTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return game.Game{}, false, nil
		}
		return game.Game{}, false, fmt.Errorf("select game: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *GameRepository) Insert(ctx context.Context, item game.Game) (game.Game, error) {
	query, args, err := qb.InsertInto("games").
		Columns("season_year", "week", "home_team_id", "away_team_id", "home_score", "away_score", "is_final", "game_time", "external_id", "last_updated").
		Values(
			item.SeasonYear,
			item.Week,
			item.HomeTeamID,
			item.AwayTeamID,
			intPtrToNullInt64(item.HomeScore),
			intPtrToNullInt64(item.AwayScore),
			item.IsFinal,
			item.GameTime.UTC(),
			item.ExternalID,
			item.LastUpdated.UTC(),
		).
		Suffix("RETURNING id").
		ToSQL()
	if err != nil {
		return game.Game{}, fmt.Errorf("build insert game query: %w", err)
	}

	if err := r.db.GetContext(ctx, &item.ID, query, args...); err != nil {
		return game.Game{}, fmt.Errorf("insert game external_id=%s: %w", item.ExternalID, err)
	}
	return item, nil
}

func (r *GameRepository) Update(ctx context.Context, item game.Game) error {
	query, args, err := qb.Update("games").
		Set("season_year", item.SeasonYear).
		Set("week", item.Week).
		Set("home_team_id", item.HomeTeamID).
		Set("away_team_id", item.AwayTeamID).
		Set("home_score", intPtrToNullInt64(item.HomeScore)).
		Set("away_score", intPtrToNullInt64(item.AwayScore)).
		Set("is_final", item.IsFinal).
		Set("game_time", item.GameTime.UTC()).
		Set("last_updated", item.LastUpdated.UTC()).
		Where(qb.Eq("id", item.ID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update game query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update game id=%d: %w", item.ID, err)
	}
	return nil
}

func (r *GameRepository) ListByWeek(ctx context.Context, seasonYear, week int) ([]game.Game, error) {
	query, args, err := qb.Select("*").From("games").
		Where(qb.Eq("season_year", seasonYear), qb.Eq("week", week)).
		OrderBy("game_time", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select games by week query: %w", err)
	}

	var rows []gameTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select games week=%d: %w", week, err)
	}

	out := make([]game.Game, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
