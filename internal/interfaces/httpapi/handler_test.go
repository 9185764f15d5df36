package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/jonboulle/clockwork"

	"github.com/pickemlabs/survivor-pool/internal/domain/gameevent"
	"github.com/pickemlabs/survivor-pool/internal/domain/member"
	"github.com/pickemlabs/survivor-pool/internal/domain/season"
	"github.com/pickemlabs/survivor-pool/internal/domain/team"
	"github.com/pickemlabs/survivor-pool/internal/infrastructure/repository/memory"
	"github.com/pickemlabs/survivor-pool/internal/interfaces/livefeed"
	"github.com/pickemlabs/survivor-pool/internal/platform/ratelimit"
	"github.com/pickemlabs/survivor-pool/internal/usecase"
)

var routerTestEpoch = time.Date(2025, time.September, 4, 0, 0, 0, 0, time.UTC)

type routerScoreSource struct {
	games []usecase.CanonicalGame
}

func (s *routerScoreSource) FetchWeek(context.Context, int, int, int) ([]usecase.CanonicalGame, error) {
	return s.games, nil
}

type routerSink struct {
	published int
}

func (s *routerSink) Publish(_ context.Context, events []gameevent.Event) {
	s.published += len(events)
}

type routerFixture struct {
	clock  *clockwork.FakeClock
	source *routerScoreSource
	sink   *routerSink
	events *memory.GameEventRepository
	router http.Handler
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()

	clock := clockwork.NewFakeClockAt(routerTestEpoch.Add(time.Hour))
	calendar := season.NewCalendar(2025, routerTestEpoch)

	teams := memory.NewTeamRepository([]team.Team{
		{ID: 1, Name: "Buffalo Bills", Abbreviation: "BUF", ExternalID: "2"},
		{ID: 2, Name: "Kansas City Chiefs", Abbreviation: "KC", ExternalID: "12"},
		{ID: 3, Name: "Detroit Lions", Abbreviation: "DET", ExternalID: "8"},
	})
	members := memory.NewMemberRepository([]member.Member{
		{ID: 10, LeagueID: "league-1", UserID: "user-a"},
		{ID: 11, LeagueID: "league-1", UserID: "user-b"},
	})
	games := memory.NewGameRepository()
	events := memory.NewGameEventRepository(games)
	picks := memory.NewPickRepository(members)

	eliminations := usecase.NewEliminationService(picks, members, clock, nil)
	sink := &routerSink{}
	source := &routerScoreSource{}
	sync := usecase.NewGameSyncService(
		source, games, teams, events, eliminations, sink,
		calendar, ratelimit.NewLimiterWithClock(clock.Now), clock, nil,
	)

	hub, err := livefeed.NewHub(livefeed.DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("new hub: %v", err)
	}
	t.Cleanup(hub.Close)

	handler := NewHandler(
		usecase.NewWeekService(games, calendar, clock, nil),
		usecase.NewPickService(picks, members, teams, calendar, clock, nil),
		usecase.NewFeedService(picks, events, nil),
		sync,
		hub,
		nil,
	)

	return &routerFixture{
		clock:  clock,
		source: source,
		sink:   sink,
		events: events,
		router: NewRouter(handler, nil, []string{"*"}, "job-secret"),
	}
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}
	return body
}

func TestRouter_Healthz(t *testing.T) {
	fx := newRouterFixture(t)

	rec := httptest.NewRecorder()
	fx.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	data, _ := decodeEnvelope(t, rec)["data"].(map[string]any)
	if got, _ := data["status"].(string); got != "ok" {
		t.Fatalf("expected status ok, got %v", data["status"])
	}
}

func TestRouter_GetCurrentWeek(t *testing.T) {
	fx := newRouterFixture(t)

	rec := httptest.NewRecorder()
	fx.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/weeks/current", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	data, _ := decodeEnvelope(t, rec)["data"].(map[string]any)
	if got, _ := data["week"].(float64); got != 1 {
		t.Fatalf("expected week 1, got %v", data["week"])
	}
	if got, _ := data["pickableWeek"].(float64); got != 1 {
		t.Fatalf("expected pickable week 1, got %v", data["pickableWeek"])
	}
}

func TestRouter_SubmitAndListPicks(t *testing.T) {
	fx := newRouterFixture(t)

	rec := httptest.NewRecorder()
	fx.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/v1/members/10/picks",
		strings.NewReader(`{"week":1,"teamId":2}`)))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	data, _ := decodeEnvelope(t, rec)["data"].(map[string]any)
	if got, _ := data["teamId"].(float64); got != 2 {
		t.Fatalf("expected teamId 2, got %v", data["teamId"])
	}

	rec = httptest.NewRecorder()
	fx.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/members/10/picks", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	list, _ := decodeEnvelope(t, rec)["data"].([]any)
	if len(list) != 1 {
		t.Fatalf("expected one pick, got %d", len(list))
	}
}

func TestRouter_GetMemberPickByWeek(t *testing.T) {
	fx := newRouterFixture(t)

	rec := httptest.NewRecorder()
	fx.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/v1/members/10/picks",
		strings.NewReader(`{"week":1,"teamId":2}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("seed pick: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	fx.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/members/10/picks?week=1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	data, _ := decodeEnvelope(t, rec)["data"].(map[string]any)
	if got, _ := data["teamId"].(float64); got != 2 {
		t.Fatalf("expected teamId 2, got %v", data["teamId"])
	}
	if got, _ := data["week"].(float64); got != 1 {
		t.Fatalf("expected week 1, got %v", data["week"])
	}

	rec = httptest.NewRecorder()
	fx.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/members/10/picks?week=2", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for a week with no pick, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	fx.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/members/10/picks?week=nope", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a non-numeric week, got %d", rec.Code)
	}
}

func TestRouter_SubmitPickValidation(t *testing.T) {
	fx := newRouterFixture(t)

	rec := httptest.NewRecorder()
	fx.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/v1/members/10/picks",
		strings.NewReader(`{"week":0,"teamId":2}`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for out-of-range week, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	fx.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/v1/members/10/picks",
		strings.NewReader(`{"week":`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	fx.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/v1/members/nope/picks",
		strings.NewReader(`{"week":1,"teamId":2}`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-numeric member id, got %d", rec.Code)
	}
}

func TestRouter_SubmitPickLockedWindow(t *testing.T) {
	fx := newRouterFixture(t)

	// Jump past the Thursday kickoff lock into the blackout window.
	fx.clock.Advance(2 * 24 * time.Hour)

	rec := httptest.NewRecorder()
	fx.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/v1/members/10/picks",
		strings.NewReader(`{"week":1,"teamId":2}`)))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 during blackout, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_SyncGamesJob(t *testing.T) {
	fx := newRouterFixture(t)
	kickoff := routerTestEpoch.Add(24*time.Hour + 20*time.Minute)
	home, away := 24, 17
	fx.source.games = []usecase.CanonicalGame{
		{
			ExternalID:       "401001",
			Week:             1,
			HomeAbbreviation: "BUF",
			AwayAbbreviation: "KC",
			HomeScore:        &home,
			AwayScore:        &away,
			StartsAt:         kickoff,
			IsCompleted:      true,
			Status:           "STATUS_FINAL",
		},
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/sync-games", nil)
	fx.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without job token, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/sync-games", nil)
	req.Header.Set("X-Internal-Job-Token", "job-secret")
	fx.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	data, _ := decodeEnvelope(t, rec)["data"].(map[string]any)
	if got, _ := data["week"].(float64); got != 1 {
		t.Fatalf("expected week 1, got %v", data["week"])
	}
	if got, _ := data["created"].(float64); got != 1 {
		t.Fatalf("expected one created game, got %v", data["created"])
	}
	if fx.sink.published == 0 {
		t.Fatalf("expected events handed to the notification sink")
	}

	// Triggering again inside the rate window is a skip, not a failure.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/sync-games", nil)
	req.Header.Set("X-Internal-Job-Token", "job-secret")
	fx.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("throttled job should still answer 200, got %d: %s", rec.Code, rec.Body.String())
	}
	data, _ = decodeEnvelope(t, rec)["data"].(map[string]any)
	if got, _ := data["reason"].(string); got != "rate_limited" {
		t.Fatalf("expected rate_limited skip reason, got %v", data["reason"])
	}
}

func TestRouter_UserFeed(t *testing.T) {
	fx := newRouterFixture(t)

	// Seed one pick and one event tied to the picked team.
	rec := httptest.NewRecorder()
	fx.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/v1/members/10/picks",
		strings.NewReader(`{"week":1,"teamId":1}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("seed pick: expected 200, got %d", rec.Code)
	}

	teamID := int64(1)
	if _, err := fx.events.Insert(context.Background(), []gameevent.Event{
		{GameID: 1, Type: gameevent.TypeTouchdown, TeamID: &teamID, Description: "BUF touchdown", CreatedAt: fx.clock.Now()},
	}); err != nil {
		t.Fatalf("seed event: %v", err)
	}

	rec = httptest.NewRecorder()
	fx.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/feed/events?userId=user-a", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	list, _ := decodeEnvelope(t, rec)["data"].([]any)
	if len(list) != 1 {
		t.Fatalf("expected one feed event, got %d", len(list))
	}

	rec = httptest.NewRecorder()
	fx.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/feed/events", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without userId, got %d", rec.Code)
	}
}
