package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/pickemlabs/survivor-pool/internal/domain/game"
	"github.com/pickemlabs/survivor-pool/internal/domain/gameevent"
	"github.com/pickemlabs/survivor-pool/internal/domain/member"
	"github.com/pickemlabs/survivor-pool/internal/domain/pick"
	"github.com/pickemlabs/survivor-pool/internal/platform/logging"
)

// EliminationService knocks out members who rode the losing side of a
// finished game. Processing the same completion twice is harmless: already
// eliminated members are filtered before the write, so no member is
// eliminated twice and no duplicate elimination events are produced.
type EliminationService struct {
	pickRepo   pick.Repository
	memberRepo member.Repository
	clock      clockwork.Clock
	logger     *logging.Logger
}

func NewEliminationService(
	pickRepo pick.Repository,
	memberRepo member.Repository,
	clock clockwork.Clock,
	logger *logging.Logger,
) *EliminationService {
	if logger == nil {
		logger = logging.Default()
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &EliminationService{
		pickRepo:   pickRepo,
		memberRepo: memberRepo,
		clock:      clock,
		logger:     logger,
	}
}

// ProcessCompletion resolves the loser of a finished game and eliminates
// every surviving member who picked that team for the game's week. A tie
// eliminates nobody. Returned events are not yet persisted; the caller owns
// the event write.
func (s *EliminationService) ProcessCompletion(ctx context.Context, finished game.Game) ([]gameevent.Event, error) {
	ctx, span := startUsecaseSpan(ctx, "EliminationService.ProcessCompletion")
	defer span.End()

	if !finished.IsFinal {
		return nil, fmt.Errorf("%w: game %d is not final", ErrInvalidInput, finished.ID)
	}

	loserID, decided := finished.LosingTeamID()
	if !decided {
		s.logger.InfoContext(ctx, "game ended without a loser, no eliminations", "game_id", finished.ID)
		return nil, nil
	}

	losingPicks, err := s.pickRepo.ListByTeamAndWeek(ctx, loserID, finished.Week)
	if err != nil {
		return nil, fmt.Errorf("list picks for losing team: %w", err)
	}
	if len(losingPicks) == 0 {
		return nil, nil
	}

	memberIDs := make([]int64, 0, len(losingPicks))
	for _, item := range losingPicks {
		memberIDs = append(memberIDs, item.LeagueMemberID)
	}

	members, err := s.memberRepo.ListByIDs(ctx, memberIDs)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}

	toEliminate := make([]int64, 0, len(members))
	for _, item := range members {
		if item.IsEliminated {
			continue
		}
		toEliminate = append(toEliminate, item.ID)
	}
	if len(toEliminate) == 0 {
		return nil, nil
	}
	sort.Slice(toEliminate, func(i, j int) bool { return toEliminate[i] < toEliminate[j] })

	if err := s.memberRepo.MarkEliminated(ctx, toEliminate, finished.Week); err != nil {
		return nil, fmt.Errorf("mark eliminated: %w", err)
	}

	s.logger.InfoContext(ctx, "members eliminated",
		"game_id", finished.ID,
		"week", finished.Week,
		"losing_team_id", loserID,
		"count", len(toEliminate),
	)

	now := s.clock.Now().UTC()
	events := make([]gameevent.Event, 0, len(toEliminate))
	for _, memberID := range toEliminate {
		events = append(events, eliminationEvent(finished, loserID, memberID, now))
	}
	return events, nil
}

func eliminationEvent(finished game.Game, loserID, memberID int64, now time.Time) gameevent.Event {
	teamID := loserID
	return gameevent.Event{
		GameID:      finished.ID,
		Type:        gameevent.TypeElimination,
		TeamID:      &teamID,
		Description: fmt.Sprintf("member %d eliminated in week %d", memberID, finished.Week),
		ScoreHome:   finished.HomeScore,
		ScoreAway:   finished.AwayScore,
		CreatedAt:   now,
	}
}
