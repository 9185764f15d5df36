package postgres

import (
	"database/sql"

	"github.com/pickemlabs/survivor-pool/internal/domain/member"
)

type memberTableModel struct {
	ID             int64         `db:"id"`
	LeagueID       string        `db:"league_id"`
	UserID         string        `db:"user_id"`
	IsEliminated   bool          `db:"is_eliminated"`
	EliminatedWeek sql.NullInt64 `db:"eliminated_week"`
}

func (m memberTableModel) toDomain() member.Member {
	return member.Member{
		ID:             m.ID,
		LeagueID:       m.LeagueID,
		UserID:         m.UserID,
		IsEliminated:   m.IsEliminated,
		EliminatedWeek: nullInt64ToIntPtr(m.EliminatedWeek),
	}
}
