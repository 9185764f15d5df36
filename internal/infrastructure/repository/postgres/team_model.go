package postgres

import "github.com/pickemlabs/survivor-pool/internal/domain/team"

type teamTableModel struct {
	ID           int64  `db:"id"`
	Name         string `db:"name"`
	Abbreviation string `db:"abbreviation"`
	ExternalID   string `db:"external_id"`
}

func (m teamTableModel) toDomain() team.Team {
	return team.Team{
		ID:           m.ID,
		Name:         m.Name,
		Abbreviation: m.Abbreviation,
		ExternalID:   m.ExternalID,
	}
}
