package memory

import (
	"context"
	"sync"

	"github.com/pickemlabs/survivor-pool/internal/domain/member"
)

type MemberRepository struct {
	mu    sync.RWMutex
	items map[int64]member.Member
}

func NewMemberRepository(seed []member.Member) *MemberRepository {
	items := make(map[int64]member.Member, len(seed))
	for _, item := range seed {
		items[item.ID] = item
	}
	return &MemberRepository{items: items}
}

func (r *MemberRepository) GetByID(_ context.Context, id int64) (member.Member, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	return item, ok, nil
}

func (r *MemberRepository) ListByIDs(_ context.Context, ids []int64) ([]member.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]member.Member, 0, len(ids))
	for _, id := range ids {
		if item, ok := r.items[id]; ok {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *MemberRepository) MarkEliminated(_ context.Context, ids []int64, week int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range ids {
		item, ok := r.items[id]
		if !ok || item.IsEliminated {
			continue
		}
		item.IsEliminated = true
		eliminatedWeek := week
		item.EliminatedWeek = &eliminatedWeek
		r.items[id] = item
	}
	return nil
}

func (r *MemberRepository) listIDsByUser(_ context.Context, userID string) ([]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]int64, 0, 2)
	for _, item := range r.items {
		if item.UserID == userID {
			out = append(out, item.ID)
		}
	}
	return out, nil
}
