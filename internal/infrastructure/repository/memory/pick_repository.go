package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/pickemlabs/survivor-pool/internal/domain/pick"
)

// PickRepository keys picks by (member, week) in process. The user-scoped
// read needs membership data, so the repository is constructed with the
// member store it shares with the rest of the wiring.
type PickRepository struct {
	mu      sync.RWMutex
	nextID  int64
	items   map[int64]pick.Pick
	members *MemberRepository
}

func NewPickRepository(members *MemberRepository) *PickRepository {
	return &PickRepository{
		nextID:  1,
		items:   make(map[int64]pick.Pick),
		members: members,
	}
}

func (r *PickRepository) GetByMemberAndWeek(_ context.Context, memberID int64, week int) (pick.Pick, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.items {
		if item.LeagueMemberID == memberID && item.Week == week {
			return item, true, nil
		}
	}
	return pick.Pick{}, false, nil
}

func (r *PickRepository) ListByMember(_ context.Context, memberID int64) ([]pick.Pick, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]pick.Pick, 0, 18)
	for _, item := range r.items {
		if item.LeagueMemberID == memberID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Week < out[j].Week })
	return out, nil
}

func (r *PickRepository) ListByTeamAndWeek(_ context.Context, teamID int64, week int) ([]pick.Pick, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]pick.Pick, 0, 8)
	for _, item := range r.items {
		if item.TeamID == teamID && item.Week == week {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LeagueMemberID < out[j].LeagueMemberID })
	return out, nil
}

func (r *PickRepository) ListTeamIDsByUser(ctx context.Context, userID string) ([]int64, error) {
	memberIDs := make(map[int64]struct{})
	if r.members != nil {
		ids, err := r.members.listIDsByUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			memberIDs[id] = struct{}{}
		}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[int64]struct{})
	out := make([]int64, 0, 18)
	for _, item := range r.items {
		if _, ok := memberIDs[item.LeagueMemberID]; !ok {
			continue
		}
		if _, ok := seen[item.TeamID]; ok {
			continue
		}
		seen[item.TeamID] = struct{}{}
		out = append(out, item.TeamID)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (r *PickRepository) Upsert(_ context.Context, item pick.Pick) (pick.Pick, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, existing := range r.items {
		if existing.LeagueMemberID == item.LeagueMemberID && existing.Week == item.Week {
			item.ID = id
			item.CreatedAt = existing.CreatedAt
			r.items[id] = item
			return item, nil
		}
	}

	item.ID = r.nextID
	r.nextID++
	r.items[item.ID] = item
	return item, nil
}
