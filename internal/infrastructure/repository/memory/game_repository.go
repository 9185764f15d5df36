package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/pickemlabs/survivor-pool/internal/domain/game"
)

type GameRepository struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]game.Game
	byExt  map[string]int64
}

func NewGameRepository() *GameRepository {
	return &GameRepository{
		nextID: 1,
		items:  make(map[int64]game.Game),
		byExt:  make(map[string]int64),
	}
}

func (r *GameRepository) GetByID(_ context.Context, id int64) (game.Game, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	return item, ok, nil
}

func (r *GameRepository) GetByExternalID(_ context.Context, externalID string) (game.Game, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byExt[externalID]
	if !ok {
		return game.Game{}, false, nil
	}
	item, ok := r.items[id]
	return item, ok, nil
}

func (r *GameRepository) Insert(_ context.Context, item game.Game) (game.Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item.ID = r.nextID
	r.nextID++
	r.items[item.ID] = item
	r.byExt[item.ExternalID] = item.ID
	return item, nil
}

func (r *GameRepository) Update(_ context.Context, item game.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[item.ID] = item
	r.byExt[item.ExternalID] = item.ID
	return nil
}

func (r *GameRepository) ListByWeek(_ context.Context, seasonYear, week int) ([]game.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]game.Game, 0, 16)
	for _, item := range r.items {
		if item.SeasonYear == seasonYear && item.Week == week {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].GameTime.Equal(out[j].GameTime) {
			return out[i].GameTime.Before(out[j].GameTime)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
