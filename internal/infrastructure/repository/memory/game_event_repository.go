package memory

import (
	"context"
	"sync"

	"github.com/pickemlabs/survivor-pool/internal/domain/gameevent"
)

// GameEventRepository is the append-only event log in process. It keeps a
// reference to the game store so team-scoped reads can include whole-game
// events such as finals, matching the relational implementation's join.
type GameEventRepository struct {
	mu     sync.RWMutex
	nextID int64
	items  []gameevent.Event
	games  *GameRepository
}

func NewGameEventRepository(games *GameRepository) *GameEventRepository {
	return &GameEventRepository{nextID: 1, games: games}
}

func (r *GameEventRepository) Insert(_ context.Context, events []gameevent.Event) ([]gameevent.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]gameevent.Event, 0, len(events))
	for _, item := range events {
		item.ID = r.nextID
		r.nextID++
		r.items = append(r.items, item)
		out = append(out, item)
	}
	return out, nil
}

func (r *GameEventRepository) ListRecentByTeams(ctx context.Context, teamIDs []int64, limit int) ([]gameevent.Event, error) {
	wanted := make(map[int64]struct{}, len(teamIDs))
	for _, id := range teamIDs {
		wanted[id] = struct{}{}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]gameevent.Event, 0, limit)
	for i := len(r.items) - 1; i >= 0 && len(out) < limit; i-- {
		item := r.items[i]
		if r.matches(ctx, item, wanted) {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *GameEventRepository) matches(ctx context.Context, item gameevent.Event, wanted map[int64]struct{}) bool {
	if item.TeamID != nil {
		_, ok := wanted[*item.TeamID]
		return ok
	}
	if r.games == nil {
		return false
	}
	stored, found, err := r.games.GetByID(ctx, item.GameID)
	if err != nil || !found {
		return false
	}
	if _, ok := wanted[stored.HomeTeamID]; ok {
		return true
	}
	_, ok := wanted[stored.AwayTeamID]
	return ok
}
