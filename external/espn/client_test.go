package espn

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pickemlabs/survivor-pool/internal/platform/logging"
	"github.com/pickemlabs/survivor-pool/internal/platform/resilience"
	"github.com/pickemlabs/survivor-pool/internal/usecase"
)

const sampleScoreboard = `{
  "week": {"number": 1},
  "events": [
    {
      "id": "401671789",
      "date": "2025-09-07T17:00Z",
      "name": "Kansas City Chiefs at Buffalo Bills",
      "status": {"type": {"name": "STATUS_FINAL", "state": "post", "completed": true}},
      "competitions": [
        {
          "id": "401671789",
          "date": "2025-09-07T17:00Z",
          "status": {"type": {"name": "STATUS_FINAL", "state": "post", "completed": true}},
          "competitors": [
            {"homeAway": "home", "score": "24", "team": {"id": "2", "abbreviation": "BUF", "displayName": "Buffalo Bills"}},
            {"homeAway": "away", "score": "21", "team": {"id": "12", "abbreviation": "KC", "displayName": "Kansas City Chiefs"}}
          ]
        }
      ]
    },
    {
      "id": "401671790",
      "date": "2025-09-07T20:25Z",
      "status": {"type": {"name": "STATUS_SCHEDULED", "state": "pre", "completed": false}},
      "competitions": [
        {
          "id": "401671790",
          "date": "2025-09-07T20:25Z",
          "status": {"type": {"name": "STATUS_SCHEDULED", "state": "pre", "completed": false}},
          "competitors": [
            {"homeAway": "home", "score": "", "team": {"id": "8", "abbreviation": "DET", "displayName": "Detroit Lions"}},
            {"homeAway": "away", "score": "", "team": {"id": "99", "abbreviation": "XX", "displayName": "Mystery Team"}}
          ]
        }
      ]
    }
  ]
}`

func newTestClient(t *testing.T, handler http.Handler, breaker resilience.CircuitBreakerConfig) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(ClientConfig{
		BaseURL:        server.URL,
		Timeout:        2 * time.Second,
		Logger:         logging.NewNop(),
		CircuitBreaker: breaker,
	})
	return client, server
}

func TestClient_FetchWeek(t *testing.T) {
	t.Parallel()

	var gotQuery map[string]string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"dates":      r.URL.Query().Get("dates"),
			"seasontype": r.URL.Query().Get("seasontype"),
			"week":       r.URL.Query().Get("week"),
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleScoreboard))
	}), resilience.CircuitBreakerConfig{})

	games, err := client.FetchWeek(context.Background(), 2025, usecase.SeasonTypeRegular, 1)
	if err != nil {
		t.Fatalf("FetchWeek: %v", err)
	}
	if gotQuery["dates"] != "2025" || gotQuery["seasontype"] != "2" || gotQuery["week"] != "1" {
		t.Fatalf("unexpected query params: %v", gotQuery)
	}
	if len(games) != 2 {
		t.Fatalf("expected 2 games, got %d", len(games))
	}

	final := games[0]
	if final.ExternalID != "401671789" {
		t.Fatalf("expected earliest kickoff first, got %s", final.ExternalID)
	}
	if final.HomeAbbreviation != "BUF" || final.AwayAbbreviation != "KC" {
		t.Fatalf("unexpected team mapping: home=%q away=%q", final.HomeAbbreviation, final.AwayAbbreviation)
	}
	if final.HomeScore == nil || *final.HomeScore != 24 || final.AwayScore == nil || *final.AwayScore != 21 {
		t.Fatalf("unexpected scores: %+v", final)
	}
	if !final.IsCompleted {
		t.Fatalf("expected completed game")
	}
	if final.StartsAt != time.Date(2025, 9, 7, 17, 0, 0, 0, time.UTC) {
		t.Fatalf("unexpected kickoff: %v", final.StartsAt)
	}

	scheduled := games[1]
	if scheduled.IsCompleted {
		t.Fatalf("scheduled game reported as completed")
	}
	if scheduled.HomeScore != nil || scheduled.AwayScore != nil {
		t.Fatalf("scheduled game should have nil scores: %+v", scheduled)
	}
	if scheduled.AwayAbbreviation != "" {
		t.Fatalf("unknown provider team id must map to empty abbreviation, got %q", scheduled.AwayAbbreviation)
	}
	if scheduled.HomeAbbreviation != "DET" {
		t.Fatalf("unexpected home abbreviation %q", scheduled.HomeAbbreviation)
	}
}

func TestClient_FetchWeekRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	client := NewClient(ClientConfig{Logger: logging.NewNop()})
	if _, err := client.FetchWeek(context.Background(), 0, usecase.SeasonTypeRegular, 1); err == nil {
		t.Fatalf("expected error for zero season year")
	}
	if _, err := client.FetchWeek(context.Background(), 2025, usecase.SeasonTypeRegular, 0); err == nil {
		t.Fatalf("expected error for zero week")
	}
}

func TestClient_FetchWeekServerError(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}), resilience.CircuitBreakerConfig{})

	if _, err := client.FetchWeek(context.Background(), 2025, usecase.SeasonTypeRegular, 1); err == nil {
		t.Fatalf("expected error on 502")
	}
}

func TestClient_CircuitBreakerOpensAfterFailures(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusServiceUnavailable)
	}), resilience.CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 2,
		OpenTimeout:      time.Minute,
		HalfOpenMaxReq:   1,
	})

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := client.FetchWeek(ctx, 2025, usecase.SeasonTypeRegular, 1); err == nil {
			t.Fatalf("expected failure on attempt %d", i+1)
		}
	}

	_, err := client.FetchWeek(ctx, 2025, usecase.SeasonTypeRegular, 1)
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected dependency unavailable from open breaker, got %v", err)
	}
}

func TestAbbreviationForTeamID(t *testing.T) {
	t.Parallel()

	if got := AbbreviationForTeamID("33"); got != "BAL" {
		t.Fatalf("expected BAL for id 33, got %q", got)
	}
	if got := AbbreviationForTeamID("99"); got != "" {
		t.Fatalf("expected empty abbreviation for unknown id, got %q", got)
	}
	if len(abbreviationByTeamID) != 32 {
		t.Fatalf("expected 32 franchises, got %d", len(abbreviationByTeamID))
	}
}
