package postgres

import (
	"time"

	"github.com/pickemlabs/survivor-pool/internal/domain/pick"
)

type pickTableModel struct {
	ID             int64     `db:"id"`
	LeagueMemberID int64     `db:"league_member_id"`
	Week           int       `db:"week"`
	TeamID         int64     `db:"team_id"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

func (m pickTableModel) toDomain() pick.Pick {
	return pick.Pick{
		ID:             m.ID,
		LeagueMemberID: m.LeagueMemberID,
		Week:           m.Week,
		TeamID:         m.TeamID,
		CreatedAt:      m.CreatedAt.UTC(),
		UpdatedAt:      m.UpdatedAt.UTC(),
	}
}
