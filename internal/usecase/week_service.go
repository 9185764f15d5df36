package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/pickemlabs/survivor-pool/internal/domain/game"
	"github.com/pickemlabs/survivor-pool/internal/domain/season"
	"github.com/pickemlabs/survivor-pool/internal/platform/logging"
)

// WeekState is the read model the pick UI drives its countdown and lockout
// messaging from.
type WeekState struct {
	SeasonYear   int        `json:"seasonYear"`
	Week         int        `json:"week"`
	PickableWeek int        `json:"pickableWeek"`
	PicksLocked  bool       `json:"picksLocked"`
	LockAt       *time.Time `json:"lockAt,omitempty"`
	UnlockAt     *time.Time `json:"unlockAt,omitempty"`
}

// WeekService answers time-derived questions about the season.
type WeekService struct {
	gameRepo game.Repository
	calendar season.Calendar
	clock    clockwork.Clock
	logger   *logging.Logger
}

func NewWeekService(
	gameRepo game.Repository,
	calendar season.Calendar,
	clock clockwork.Clock,
	logger *logging.Logger,
) *WeekService {
	if logger == nil {
		logger = logging.Default()
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &WeekService{
		gameRepo: gameRepo,
		calendar: calendar,
		clock:    clock,
		logger:   logger,
	}
}

// CurrentState resolves the week containing now plus the pick-window state
// around it. Off-season state has week 0 and pickable week 1 with no
// deadline instants.
func (s *WeekService) CurrentState(ctx context.Context) WeekState {
	_, span := startUsecaseSpan(ctx, "WeekService.CurrentState")
	defer span.End()

	now := s.clock.Now().UTC()
	state := WeekState{
		SeasonYear:   s.calendar.SeasonYear(),
		Week:         s.calendar.CurrentWeek(now),
		PickableWeek: s.calendar.PickableWeek(now),
		PicksLocked:  s.calendar.PicksLocked(now),
	}

	if state.Week > 0 {
		lockAt := s.calendar.PickLockInstant(state.Week)
		unlockAt := s.calendar.PickUnlockInstant(state.Week)
		state.LockAt = &lockAt
		state.UnlockAt = &unlockAt
	}

	return state
}

// ListGames returns the stored games of one week, kickoff order preserved by
// the repository.
func (s *WeekService) ListGames(ctx context.Context, week int) ([]game.Game, error) {
	ctx, span := startUsecaseSpan(ctx, "WeekService.ListGames")
	defer span.End()

	if week < season.FirstWeek || week > season.LastWeek {
		return nil, fmt.Errorf("%w: week must fall within %d..%d", ErrInvalidInput, season.FirstWeek, season.LastWeek)
	}
	return s.gameRepo.ListByWeek(ctx, s.calendar.SeasonYear(), week)
}
