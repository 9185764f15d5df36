package postgres

import (
	"database/sql"
	"time"

	"github.com/pickemlabs/survivor-pool/internal/domain/gameevent"
)

type gameEventTableModel struct {
	ID          int64          `db:"id"`
	GameID      int64          `db:"game_id"`
	Type        string         `db:"event_type"`
	TeamID      sql.NullInt64  `db:"team_id"`
	Description sql.NullString `db:"description"`
	ScoreHome   sql.NullInt64  `db:"score_home"`
	ScoreAway   sql.NullInt64  `db:"score_away"`
	CreatedAt   time.Time      `db:"created_at"`
}

func (m gameEventTableModel) toDomain() gameevent.Event {
	var teamID *int64
	if m.TeamID.Valid {
		v := m.TeamID.Int64
		teamID = &v
	}
	return gameevent.Event{
		ID:          m.ID,
		GameID:      m.GameID,
		Type:        m.Type,
		TeamID:      teamID,
		Description: m.Description.String,
		ScoreHome:   nullInt64ToIntPtr(m.ScoreHome),
		ScoreAway:   nullInt64ToIntPtr(m.ScoreAway),
		CreatedAt:   m.CreatedAt.UTC(),
	}
}

func int64PtrToNullInt64(value *int64) sql.NullInt64 {
	if value == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *value, Valid: true}
}
