package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/pickemlabs/survivor-pool/internal/domain/member"
	"github.com/pickemlabs/survivor-pool/internal/domain/pick"
	"github.com/pickemlabs/survivor-pool/internal/domain/season"
	"github.com/pickemlabs/survivor-pool/internal/domain/team"
	"github.com/pickemlabs/survivor-pool/internal/platform/logging"
)

// PickService validates and stores weekly survivor picks.
type PickService struct {
	pickRepo   pick.Repository
	memberRepo member.Repository
	teamRepo   team.Repository
	calendar   season.Calendar
	clock      clockwork.Clock
	logger     *logging.Logger
}

func NewPickService(
	pickRepo pick.Repository,
	memberRepo member.Repository,
	teamRepo team.Repository,
	calendar season.Calendar,
	clock clockwork.Clock,
	logger *logging.Logger,
) *PickService {
	if logger == nil {
		logger = logging.Default()
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &PickService{
		pickRepo:   pickRepo,
		memberRepo: memberRepo,
		teamRepo:   teamRepo,
		calendar:   calendar,
		clock:      clock,
		logger:     logger,
	}
}

// SubmitPick records a member's team for a week, replacing any earlier pick
// for the same week. Rules, in order: the member must exist and still be
// alive, the week must be the one currently open for submission, and the
// team must exist and must not have been used by the member in any other
// week.
func (s *PickService) SubmitPick(ctx context.Context, memberID int64, week int, teamID int64) (pick.Pick, error) {
	ctx, span := startUsecaseSpan(ctx, "PickService.SubmitPick")
	defer span.End()

	if memberID <= 0 || teamID <= 0 {
		return pick.Pick{}, fmt.Errorf("%w: member and team ids are required", ErrInvalidInput)
	}
	if week < season.FirstWeek || week > season.LastWeek {
		return pick.Pick{}, fmt.Errorf("%w: week must fall within %d..%d", ErrInvalidInput, season.FirstWeek, season.LastWeek)
	}

	item, found, err := s.memberRepo.GetByID(ctx, memberID)
	if err != nil {
		return pick.Pick{}, fmt.Errorf("lookup member: %w", err)
	}
	if !found {
		return pick.Pick{}, fmt.Errorf("%w: member %d", ErrNotFound, memberID)
	}
	if item.IsEliminated {
		return pick.Pick{}, fmt.Errorf("%w: member is eliminated", ErrForbidden)
	}

	now := s.clock.Now().UTC()
	openWeek := s.calendar.PickableWeek(now)
	if openWeek == 0 {
		deadline := s.calendar.PickDeadline(week)
		return pick.Pick{}, fmt.Errorf("%w: picks for week %d closed at %s", ErrForbidden, week, deadline.Format(time.RFC3339))
	}
	if week != openWeek {
		return pick.Pick{}, fmt.Errorf("%w: week %d is not open for picks, week %d is", ErrInvalidInput, week, openWeek)
	}

	if _, found, err := s.teamRepo.GetByID(ctx, teamID); err != nil {
		return pick.Pick{}, fmt.Errorf("lookup team: %w", err)
	} else if !found {
		return pick.Pick{}, fmt.Errorf("%w: team %d", ErrNotFound, teamID)
	}

	history, err := s.pickRepo.ListByMember(ctx, memberID)
	if err != nil {
		return pick.Pick{}, fmt.Errorf("list member picks: %w", err)
	}
	for _, used := range pick.UsedTeamIDs(history, week) {
		if used == teamID {
			return pick.Pick{}, fmt.Errorf("%w: team %d was already used in an earlier week", ErrInvalidInput, teamID)
		}
	}

	stored, err := s.pickRepo.Upsert(ctx, pick.Pick{
		LeagueMemberID: memberID,
		Week:           week,
		TeamID:         teamID,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		return pick.Pick{}, fmt.Errorf("store pick: %w", err)
	}

	s.logger.InfoContext(ctx, "pick submitted", "member_id", memberID, "week", week, "team_id", teamID)
	return stored, nil
}

// GetPick returns the member's pick for a week, reporting whether one exists.
func (s *PickService) GetPick(ctx context.Context, memberID int64, week int) (pick.Pick, bool, error) {
	ctx, span := startUsecaseSpan(ctx, "PickService.GetPick")
	defer span.End()

	if memberID <= 0 {
		return pick.Pick{}, false, fmt.Errorf("%w: member id is required", ErrInvalidInput)
	}
	if week < season.FirstWeek || week > season.LastWeek {
		return pick.Pick{}, false, fmt.Errorf("%w: week must fall within %d..%d", ErrInvalidInput, season.FirstWeek, season.LastWeek)
	}

	return s.pickRepo.GetByMemberAndWeek(ctx, memberID, week)
}

// ListPicks returns the member's full pick history.
func (s *PickService) ListPicks(ctx context.Context, memberID int64) ([]pick.Pick, error) {
	ctx, span := startUsecaseSpan(ctx, "PickService.ListPicks")
	defer span.End()

	if memberID <= 0 {
		return nil, fmt.Errorf("%w: member id is required", ErrInvalidInput)
	}
	return s.pickRepo.ListByMember(ctx, memberID)
}
