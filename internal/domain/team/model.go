package team

// Team is immutable NFL reference data. Abbreviation is the cross-reference
// key against the external score source.
type Team struct {
	ID           int64
	Name         string
	Abbreviation string
	ExternalID   string
}

// IDByAbbreviation builds the lookup map the sync pipeline resolves fetched
// games against.
func IDByAbbreviation(teams []Team) map[string]int64 {
	out := make(map[string]int64, len(teams))
	for _, item := range teams {
		if item.Abbreviation == "" {
			continue
		}
		out[item.Abbreviation] = item.ID
	}
	return out
}
