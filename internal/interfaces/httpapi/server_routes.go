package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPublicDomainRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/weeks/current", handler.GetCurrentWeek)
	mux.HandleFunc("GET /v1/weeks/{week}/games", handler.ListWeekGames)
	mux.HandleFunc("GET /v1/members/{memberID}/picks", handler.GetMemberPicks)
	mux.HandleFunc("PUT /v1/members/{memberID}/picks", handler.SubmitMemberPick)
	mux.HandleFunc("GET /v1/feed/events", handler.GetUserFeed)
	mux.HandleFunc("GET /v1/feed/live", handler.LiveFeed)
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/sync-games", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunSyncGamesJob)))
	mux.Handle("POST /v1/internal/jobs/sync-schedule", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunSyncScheduleJob)))
}
