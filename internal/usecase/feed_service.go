package usecase

import (
	"context"
	"fmt"

	"github.com/pickemlabs/survivor-pool/internal/domain/gameevent"
	"github.com/pickemlabs/survivor-pool/internal/domain/pick"
	"github.com/pickemlabs/survivor-pool/internal/platform/logging"
)

const defaultFeedLimit = 50

// FeedService serves each user the event history relevant to them: scoring
// plays, finals, and eliminations touching any team the user has ever
// picked.
type FeedService struct {
	pickRepo  pick.Repository
	eventRepo gameevent.Repository
	logger    *logging.Logger
}

func NewFeedService(pickRepo pick.Repository, eventRepo gameevent.Repository, logger *logging.Logger) *FeedService {
	if logger == nil {
		logger = logging.Default()
	}

	return &FeedService{
		pickRepo:  pickRepo,
		eventRepo: eventRepo,
		logger:    logger,
	}
}

// GetUserGameEvents returns the most recent events for the user's picked
// teams, newest first. A user with no picks gets an empty feed.
func (s *FeedService) GetUserGameEvents(ctx context.Context, userID string, limit int) ([]gameevent.Event, error) {
	ctx, span := startUsecaseSpan(ctx, "FeedService.GetUserGameEvents")
	defer span.End()

	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if limit <= 0 || limit > 200 {
		limit = defaultFeedLimit
	}

	teamIDs, err := s.pickRepo.ListTeamIDsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list picked teams: %w", err)
	}
	if len(teamIDs) == 0 {
		return []gameevent.Event{}, nil
	}

	events, err := s.eventRepo.ListRecentByTeams(ctx, teamIDs, limit)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}
