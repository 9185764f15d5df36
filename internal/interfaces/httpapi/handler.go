package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"

	"github.com/pickemlabs/survivor-pool/internal/domain/game"
	"github.com/pickemlabs/survivor-pool/internal/domain/gameevent"
	"github.com/pickemlabs/survivor-pool/internal/domain/pick"
	"github.com/pickemlabs/survivor-pool/internal/interfaces/livefeed"
	"github.com/pickemlabs/survivor-pool/internal/platform/logging"
	"github.com/pickemlabs/survivor-pool/internal/usecase"
)

type Handler struct {
	weeks    *usecase.WeekService
	picks    *usecase.PickService
	feed     *usecase.FeedService
	sync     *usecase.GameSyncService
	hub      *livefeed.Hub
	validate *validator.Validate
	logger   *logging.Logger
}

func NewHandler(
	weeks *usecase.WeekService,
	picks *usecase.PickService,
	feed *usecase.FeedService,
	sync *usecase.GameSyncService,
	hub *livefeed.Hub,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		weeks:    weeks,
		picks:    picks,
		feed:     feed,
		sync:     sync,
		hub:      hub,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	payload := map[string]any{"status": "ok"}
	if h.hub != nil {
		payload["liveSubscribers"] = h.hub.SubscriberCount()
	}
	writeSuccess(r.Context(), w, http.StatusOK, payload)
}

func (h *Handler) GetCurrentWeek(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.GetCurrentWeek")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, h.weeks.CurrentState(ctx))
}

func (h *Handler) ListWeekGames(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.ListWeekGames")
	defer span.End()

	week, err := strconv.Atoi(r.PathValue("week"))
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: week must be a number", usecase.ErrInvalidInput))
		return
	}

	games, err := h.weeks.ListGames(ctx, week)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, mapGames(games))
}

type submitPickRequest struct {
	Week   int   `json:"week" validate:"required,min=1,max=18"`
	TeamID int64 `json:"teamId" validate:"required,min=1"`
}

func (h *Handler) SubmitMemberPick(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.SubmitMemberPick")
	defer span.End()

	memberID, err := strconv.ParseInt(r.PathValue("memberID"), 10, 64)
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: member id must be a number", usecase.ErrInvalidInput))
		return
	}

	var req submitPickRequest
	if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: malformed request body", usecase.ErrInvalidInput))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: %s", usecase.ErrInvalidInput, validationMessage(err)))
		return
	}

	stored, err := h.picks.SubmitPick(ctx, memberID, req.Week, req.TeamID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, mapPick(stored))
}

// GetMemberPicks lists a member's pick history, or returns the single pick
// for one week when the week query parameter is present.
func (h *Handler) GetMemberPicks(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.GetMemberPicks")
	defer span.End()

	memberID, err := strconv.ParseInt(r.PathValue("memberID"), 10, 64)
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: member id must be a number", usecase.ErrInvalidInput))
		return
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("week")); raw != "" {
		week, err := strconv.Atoi(raw)
		if err != nil {
			writeError(ctx, w, fmt.Errorf("%w: week must be a number", usecase.ErrInvalidInput))
			return
		}

		stored, found, err := h.picks.GetPick(ctx, memberID, week)
		if err != nil {
			writeError(ctx, w, err)
			return
		}
		if !found {
			writeError(ctx, w, fmt.Errorf("%w: no pick for member %d in week %d", usecase.ErrNotFound, memberID, week))
			return
		}
		writeSuccess(ctx, w, http.StatusOK, mapPick(stored))
		return
	}

	picks, err := h.picks.ListPicks(ctx, memberID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	out := make([]pickResponse, 0, len(picks))
	for _, item := range picks {
		out = append(out, mapPick(item))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) GetUserFeed(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.GetUserFeed")
	defer span.End()

	userID := strings.TrimSpace(r.URL.Query().Get("userId"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	events, err := h.feed.GetUserGameEvents(ctx, userID, limit)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	out := make([]eventResponse, 0, len(events))
	for _, item := range events {
		out = append(out, mapEvent(item))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) LiveFeed(w http.ResponseWriter, r *http.Request) {
	h.hub.HandleWS(w, r)
}

func (h *Handler) RunSyncGamesJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.RunSyncGamesJob")
	defer span.End()

	result, err := h.sync.SyncGames(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, result)
}

type syncScheduleRequest struct {
	FromWeek int `json:"fromWeek" validate:"required,min=1,max=18"`
	ToWeek   int `json:"toWeek" validate:"required,min=1,max=18,gtefield=FromWeek"`
}

func (h *Handler) RunSyncScheduleJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.RunSyncScheduleJob")
	defer span.End()

	var req syncScheduleRequest
	if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: malformed request body", usecase.ErrInvalidInput))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: %s", usecase.ErrInvalidInput, validationMessage(err)))
		return
	}

	results, err := h.sync.SyncWeekRange(ctx, req.FromWeek, req.ToWeek)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, results)
}

type pickResponse struct {
	ID        int64  `json:"id"`
	MemberID  int64  `json:"memberId"`
	Week      int    `json:"week"`
	TeamID    int64  `json:"teamId"`
	UpdatedAt string `json:"updatedAt"`
}

func mapPick(item pick.Pick) pickResponse {
	return pickResponse{
		ID:        item.ID,
		MemberID:  item.LeagueMemberID,
		Week:      item.Week,
		TeamID:    item.TeamID,
		UpdatedAt: item.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

type gameResponse struct {
	ID         int64  `json:"id"`
	Week       int    `json:"week"`
	HomeTeamID int64  `json:"homeTeamId"`
	AwayTeamID int64  `json:"awayTeamId"`
	HomeScore  *int   `json:"homeScore"`
	AwayScore  *int   `json:"awayScore"`
	IsFinal    bool   `json:"isFinal"`
	GameTime   string `json:"gameTime"`
}

func mapGames(games []game.Game) []gameResponse {
	out := make([]gameResponse, 0, len(games))
	for _, item := range games {
		out = append(out, gameResponse{
			ID:         item.ID,
			Week:       item.Week,
			HomeTeamID: item.HomeTeamID,
			AwayTeamID: item.AwayTeamID,
			HomeScore:  item.HomeScore,
			AwayScore:  item.AwayScore,
			IsFinal:    item.IsFinal,
			GameTime:   item.GameTime.UTC().Format(time.RFC3339),
		})
	}
	return out
}

type eventResponse struct {
	ID          int64  `json:"id"`
	GameID      int64  `json:"gameId"`
	Type        string `json:"type"`
	TeamID      *int64 `json:"teamId,omitempty"`
	Description string `json:"description,omitempty"`
	ScoreHome   *int   `json:"scoreHome,omitempty"`
	ScoreAway   *int   `json:"scoreAway,omitempty"`
	CreatedAt   string `json:"createdAt"`
}

func mapEvent(item gameevent.Event) eventResponse {
	return eventResponse{
		ID:          item.ID,
		GameID:      item.GameID,
		Type:        item.Type,
		TeamID:      item.TeamID,
		Description: item.Description,
		ScoreHome:   item.ScoreHome,
		ScoreAway:   item.ScoreAway,
		CreatedAt:   item.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func validationMessage(err error) string {
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) || len(fieldErrors) == 0 {
		return "invalid request"
	}

	parts := make([]string, 0, len(fieldErrors))
	for _, item := range fieldErrors {
		parts = append(parts, fmt.Sprintf("%s failed %s validation", item.Field(), item.Tag()))
	}
	return strings.Join(parts, "; ")
}
