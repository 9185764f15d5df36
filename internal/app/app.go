package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/jonboulle/clockwork"

	"github.com/pickemlabs/survivor-pool/external/espn"
	"github.com/pickemlabs/survivor-pool/internal/config"
	"github.com/pickemlabs/survivor-pool/internal/domain/season"
	"github.com/pickemlabs/survivor-pool/internal/infrastructure/repository/postgres"
	"github.com/pickemlabs/survivor-pool/internal/interfaces/httpapi"
	"github.com/pickemlabs/survivor-pool/internal/interfaces/livefeed"
	"github.com/pickemlabs/survivor-pool/internal/platform/logging"
	"github.com/pickemlabs/survivor-pool/internal/platform/ratelimit"
	"github.com/pickemlabs/survivor-pool/internal/platform/resilience"
	"github.com/pickemlabs/survivor-pool/internal/usecase"
)

// Application owns the wired object graph and its background loops.
type Application struct {
	cfg     config.Config
	logger  *logging.Logger
	db      *sqlx.DB
	hub     *livefeed.Hub
	limiter *ratelimit.Limiter
	sync    *usecase.GameSyncService
	server  *http.Server
}

func New(cfg config.Config, logger *logging.Logger) (*Application, error) {
	if logger == nil {
		logger = logging.Default()
	}

	db, err := openDB(cfg, logger)
	if err != nil {
		return nil, err
	}

	teamRepo := postgres.NewTeamRepository(db)
	gameRepo := postgres.NewGameRepository(db)
	eventRepo := postgres.NewGameEventRepository(db)
	memberRepo := postgres.NewMemberRepository(db)
	pickRepo := postgres.NewPickRepository(db)

	calendar := season.NewCalendar(cfg.SeasonYear, cfg.SeasonEpoch)
	clock := clockwork.NewRealClock()
	limiter := ratelimit.NewLimiter()

	hubCfg := livefeed.DefaultConfig()
	hubCfg.Workers = cfg.LiveFeedWorkers
	hub, err := livefeed.NewHub(hubCfg, logger)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("build live feed hub: %w", err)
	}

	scoreSource := espn.NewClient(espn.ClientConfig{
		BaseURL: cfg.ESPNBaseURL,
		Timeout: cfg.ESPNTimeout,
		Logger:  logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.ESPNCircuitEnabled,
			FailureThreshold: cfg.ESPNCircuitFailureCount,
			OpenTimeout:      cfg.ESPNCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.ESPNCircuitHalfOpenMaxReq,
		},
	})

	eliminationSvc := usecase.NewEliminationService(pickRepo, memberRepo, clock, logger)
	syncSvc := usecase.NewGameSyncService(
		scoreSource, gameRepo, teamRepo, eventRepo, eliminationSvc, hub,
		calendar, limiter, clock, logger,
	)
	weekSvc := usecase.NewWeekService(gameRepo, calendar, clock, logger)
	pickSvc := usecase.NewPickService(pickRepo, memberRepo, teamRepo, calendar, clock, logger)
	feedSvc := usecase.NewFeedService(pickRepo, eventRepo, logger)

	handler := httpapi.NewHandler(weekSvc, pickSvc, feedSvc, syncSvc, hub, logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	if server.Addr == "" {
		hub.Close()
		_ = db.Close()
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return &Application{
		cfg:     cfg,
		logger:  logger,
		db:      db,
		hub:     hub,
		limiter: limiter,
		sync:    syncSvc,
		server:  server,
	}, nil
}

func (a *Application) Server() *http.Server {
	return a.server
}

// StartBackground launches the recurring score sync and the rate limiter
// sweeper. Both stop when ctx is cancelled.
func (a *Application) StartBackground(ctx context.Context) {
	go a.sync.RunScheduler(ctx, a.cfg.JobSyncInterval)
	go a.limiter.RunSweeper(ctx, a.cfg.JobSyncInterval)
}

func (a *Application) Close() {
	a.hub.Close()
	if err := a.db.Close(); err != nil {
		a.logger.Error("close database", "error", err)
	}
}
