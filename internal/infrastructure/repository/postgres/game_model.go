package postgres

import (
	"database/sql"
	"time"

	"github.com/pickemlabs/survivor-pool/internal/domain/game"
)

type gameTableModel struct {
	ID          int64         `db:"id"`
	SeasonYear  int           `db:"season_year"`
	Week        int           `db:"week"`
	HomeTeamID  int64         `db:"home_team_id"`
	AwayTeamID  int64         `db:"away_team_id"`
	HomeScore   sql.NullInt64 `db:"home_score"`
	AwayScore   sql.NullInt64 `db:"away_score"`
	IsFinal     bool          `db:"is_final"`
	GameTime    time.Time     `db:"game_time"`
	ExternalID  string        `db:"external_id"`
	LastUpdated time.Time     `db:"last_updated"`
}

func (m gameTableModel) toDomain() game.Game {
	return game.Game{
		ID:          m.ID,
		SeasonYear:  m.SeasonYear,
		Week:        m.Week,
		HomeTeamID:  m.HomeTeamID,
		AwayTeamID:  m.AwayTeamID,
		HomeScore:   nullInt64ToIntPtr(m.HomeScore),
		AwayScore:   nullInt64ToIntPtr(m.AwayScore),
		IsFinal:     m.IsFinal,
		GameTime:    m.GameTime.UTC(),
		ExternalID:  m.ExternalID,
		LastUpdated: m.LastUpdated.UTC(),
	}
}

func nullInt64ToIntPtr(value sql.NullInt64) *int {
	if !value.Valid {
		return nil
	}
	v := int(value.Int64)
	return &v
}

func intPtrToNullInt64(value *int) sql.NullInt64 {
	if value == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*value), Valid: true}
}
