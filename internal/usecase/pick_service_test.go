package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/pickemlabs/survivor-pool/internal/domain/member"
	"github.com/pickemlabs/survivor-pool/internal/domain/season"
	"github.com/pickemlabs/survivor-pool/internal/domain/team"
	"github.com/pickemlabs/survivor-pool/internal/infrastructure/repository/memory"
	"github.com/pickemlabs/survivor-pool/internal/platform/logging"
)

func newPickFixture(t *testing.T, now time.Time) (*PickService, *clockwork.FakeClock) {
	t.Helper()

	members := memory.NewMemberRepository([]member.Member{
		{ID: 10, LeagueID: "league-1", UserID: "user-a"},
		{ID: 12, LeagueID: "league-1", UserID: "user-c", IsEliminated: true},
	})
	picks := memory.NewPickRepository(members)
	teams := memory.NewTeamRepository([]team.Team{
		{ID: 1, Name: "Buffalo Bills", Abbreviation: "BUF"},
		{ID: 2, Name: "Kansas City Chiefs", Abbreviation: "KC"},
	})

	clock := clockwork.NewFakeClockAt(now)
	calendar := season.NewCalendar(2025, testEpoch)
	service := NewPickService(picks, members, teams, calendar, clock, logging.NewNop())
	return service, clock
}

func TestPickService_SubmitAndReplace(t *testing.T) {
	t.Parallel()

	// One hour into week 1, well before Thursday kickoff.
	service, _ := newPickFixture(t, testEpoch.Add(time.Hour))
	ctx := context.Background()

	first, err := service.SubmitPick(ctx, 10, 1, 1)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if first.TeamID != 1 || first.Week != 1 {
		t.Fatalf("unexpected stored pick: %+v", first)
	}

	// Changing your mind before the deadline replaces the row.
	second, err := service.SubmitPick(ctx, 10, 1, 2)
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("resubmission must replace, not create: %d vs %d", second.ID, first.ID)
	}
	if second.TeamID != 2 {
		t.Fatalf("resubmission kept old team: %+v", second)
	}

	stored, found, err := service.GetPick(ctx, 10, 1)
	if err != nil || !found {
		t.Fatalf("get pick: found=%v err=%v", found, err)
	}
	if stored.TeamID != 2 {
		t.Fatalf("unexpected pick after replace: %+v", stored)
	}
}

func TestPickService_RejectsLockedWindow(t *testing.T) {
	t.Parallel()

	// One second after the Thursday lock.
	lock := season.NewCalendar(2025, testEpoch).PickLockInstant(1)
	service, _ := newPickFixture(t, lock.Add(time.Second))

	_, err := service.SubmitPick(context.Background(), 10, 1, 1)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden during blackout, got %v", err)
	}
	if !strings.Contains(err.Error(), lock.Format(time.RFC3339)) {
		t.Fatalf("rejection should name the week's deadline: %v", err)
	}
}

func TestPickService_NextWeekOpensAfterUnlock(t *testing.T) {
	t.Parallel()

	unlock := season.NewCalendar(2025, testEpoch).PickUnlockInstant(1)
	service, _ := newPickFixture(t, unlock)
	ctx := context.Background()

	if _, err := service.SubmitPick(ctx, 10, 1, 1); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("week 1 must be closed after its unlock, got %v", err)
	}
	if _, err := service.SubmitPick(ctx, 10, 2, 1); err != nil {
		t.Fatalf("week 2 should be open at the unlock instant: %v", err)
	}
}

func TestPickService_RejectsReusedTeam(t *testing.T) {
	t.Parallel()

	service, clock := newPickFixture(t, testEpoch.Add(time.Hour))
	ctx := context.Background()

	if _, err := service.SubmitPick(ctx, 10, 1, 1); err != nil {
		t.Fatalf("week 1 pick: %v", err)
	}

	// Jump to week 2's open window and try to ride the same team again.
	clock.Advance(7*24*time.Hour + time.Hour)
	if _, err := service.SubmitPick(ctx, 10, 2, 1); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected reuse rejection, got %v", err)
	}
	if _, err := service.SubmitPick(ctx, 10, 2, 2); err != nil {
		t.Fatalf("fresh team in week 2: %v", err)
	}
}

func TestPickService_RejectsEliminatedMember(t *testing.T) {
	t.Parallel()

	service, _ := newPickFixture(t, testEpoch.Add(time.Hour))
	if _, err := service.SubmitPick(context.Background(), 12, 1, 1); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden for eliminated member, got %v", err)
	}
}

func TestPickService_RejectsUnknowns(t *testing.T) {
	t.Parallel()

	service, _ := newPickFixture(t, testEpoch.Add(time.Hour))
	ctx := context.Background()

	if _, err := service.SubmitPick(ctx, 99, 1, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found for unknown member, got %v", err)
	}
	if _, err := service.SubmitPick(ctx, 10, 1, 99); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found for unknown team, got %v", err)
	}
	if _, err := service.SubmitPick(ctx, 10, 99, 1); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input for out-of-range week, got %v", err)
	}
	if _, err := service.SubmitPick(ctx, 10, 2, 1); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input for a week that is not open, got %v", err)
	}
}
