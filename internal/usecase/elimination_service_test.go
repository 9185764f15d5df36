package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/pickemlabs/survivor-pool/internal/domain/game"
	"github.com/pickemlabs/survivor-pool/internal/domain/gameevent"
	"github.com/pickemlabs/survivor-pool/internal/domain/member"
	"github.com/pickemlabs/survivor-pool/internal/domain/pick"
	"github.com/pickemlabs/survivor-pool/internal/infrastructure/repository/memory"
	"github.com/pickemlabs/survivor-pool/internal/platform/logging"
)

func newEliminationFixture(t *testing.T) (*EliminationService, *memory.PickRepository, *memory.MemberRepository) {
	t.Helper()

	members := memory.NewMemberRepository([]member.Member{
		{ID: 10, LeagueID: "league-1", UserID: "user-a"},
		{ID: 11, LeagueID: "league-1", UserID: "user-b"},
		{ID: 12, LeagueID: "league-1", UserID: "user-c", IsEliminated: true},
	})
	picks := memory.NewPickRepository(members)
	clock := clockwork.NewFakeClockAt(time.Date(2025, 9, 8, 4, 0, 0, 0, time.UTC))
	service := NewEliminationService(picks, members, clock, logging.NewNop())
	return service, picks, members
}

func finishedGame(homeScore, awayScore int) game.Game {
	return game.Game{
		ID:         7,
		SeasonYear: 2025,
		Week:       1,
		HomeTeamID: 1,
		AwayTeamID: 2,
		HomeScore:  &homeScore,
		AwayScore:  &awayScore,
		IsFinal:    true,
	}
}

func TestEliminationService_EliminatesLosingPickers(t *testing.T) {
	t.Parallel()

	service, picks, members := newEliminationFixture(t)
	ctx := context.Background()

	// All three members picked the away team, which loses 24-17.
	for _, memberID := range []int64{10, 11, 12} {
		if _, err := picks.Upsert(ctx, pick.Pick{LeagueMemberID: memberID, Week: 1, TeamID: 2}); err != nil {
			t.Fatalf("seed pick: %v", err)
		}
	}

	events, err := service.ProcessCompletion(ctx, finishedGame(24, 17))
	if err != nil {
		t.Fatalf("process completion: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 elimination events, got %d", len(events))
	}
	for _, event := range events {
		if event.Type != gameevent.TypeElimination {
			t.Fatalf("unexpected event type %q", event.Type)
		}
		if event.TeamID == nil || *event.TeamID != 2 {
			t.Fatalf("elimination must reference the losing team: %+v", event)
		}
	}

	for _, memberID := range []int64{10, 11} {
		item, _, err := members.GetByID(ctx, memberID)
		if err != nil {
			t.Fatalf("get member: %v", err)
		}
		if !item.IsEliminated || item.EliminatedWeek == nil || *item.EliminatedWeek != 1 {
			t.Fatalf("member %d should be out in week 1: %+v", memberID, item)
		}
	}
}

func TestEliminationService_Reprocessing(t *testing.T) {
	t.Parallel()

	service, picks, _ := newEliminationFixture(t)
	ctx := context.Background()

	if _, err := picks.Upsert(ctx, pick.Pick{LeagueMemberID: 10, Week: 1, TeamID: 2}); err != nil {
		t.Fatalf("seed pick: %v", err)
	}

	first, err := service.ProcessCompletion(ctx, finishedGame(24, 17))
	if err != nil {
		t.Fatalf("first pass: %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("expected 1 elimination, got %d", len(first))
	}

	second, err := service.ProcessCompletion(ctx, finishedGame(24, 17))
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if len(second) != 0 {
		t.Fatalf("reprocessing must not eliminate twice, got %d events", len(second))
	}
}

func TestEliminationService_TieEliminatesNobody(t *testing.T) {
	t.Parallel()

	service, picks, members := newEliminationFixture(t)
	ctx := context.Background()

	if _, err := picks.Upsert(ctx, pick.Pick{LeagueMemberID: 10, Week: 1, TeamID: 1}); err != nil {
		t.Fatalf("seed pick: %v", err)
	}
	if _, err := picks.Upsert(ctx, pick.Pick{LeagueMemberID: 11, Week: 1, TeamID: 2}); err != nil {
		t.Fatalf("seed pick: %v", err)
	}

	events, err := service.ProcessCompletion(ctx, finishedGame(20, 20))
	if err != nil {
		t.Fatalf("process completion: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("tie produced %d eliminations", len(events))
	}

	for _, memberID := range []int64{10, 11} {
		item, _, err := members.GetByID(ctx, memberID)
		if err != nil {
			t.Fatalf("get member: %v", err)
		}
		if item.IsEliminated {
			t.Fatalf("member %d eliminated on a tie", memberID)
		}
	}
}

func TestEliminationService_RejectsUnfinishedGame(t *testing.T) {
	t.Parallel()

	service, _, _ := newEliminationFixture(t)
	unfinished := finishedGame(10, 7)
	unfinished.IsFinal = false

	if _, err := service.ProcessCompletion(context.Background(), unfinished); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input for non-final game, got %v", err)
	}
}

func TestEliminationService_NoPicksNoWork(t *testing.T) {
	t.Parallel()

	service, _, _ := newEliminationFixture(t)
	events, err := service.ProcessCompletion(context.Background(), finishedGame(31, 10))
	if err != nil {
		t.Fatalf("process completion: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("expected no events without picks, got %d", len(events))
	}
}
