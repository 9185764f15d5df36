package pick

import "time"

// Pick is a member's team choice for one week. One pick per (member, week);
// resubmission before the deadline replaces the team.
type Pick struct {
	ID             int64
	LeagueMemberID int64
	Week           int
	TeamID         int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// UsedTeamIDs returns the teams picked in any week other than the given one.
// A member may never ride the same team twice in a season.
func UsedTeamIDs(picks []Pick, excludeWeek int) []int64 {
	seen := make(map[int64]struct{}, len(picks))
	out := make([]int64, 0, len(picks))
	for _, item := range picks {
		if item.Week == excludeWeek {
			continue
		}
		if _, ok := seen[item.TeamID]; ok {
			continue
		}
		seen[item.TeamID] = struct{}{}
		out = append(out, item.TeamID)
	}
	return out
}
