package usecase

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sourcegraph/conc/pool"

	"github.com/pickemlabs/survivor-pool/internal/domain/game"
	"github.com/pickemlabs/survivor-pool/internal/domain/gameevent"
	"github.com/pickemlabs/survivor-pool/internal/domain/season"
	"github.com/pickemlabs/survivor-pool/internal/domain/team"
	"github.com/pickemlabs/survivor-pool/internal/platform/cache"
	"github.com/pickemlabs/survivor-pool/internal/platform/logging"
	"github.com/pickemlabs/survivor-pool/internal/platform/ratelimit"
)

const (
	scoreboardRateKey    = "espn-scoreboard"
	scoreboardRateMax    = 1
	scoreboardRateWindow = time.Minute

	teamLookupCacheKey = "teams:by-abbreviation"
	teamLookupCacheTTL = time.Hour
)

// NotificationSink receives freshly persisted events for delivery to live
// consumers. Implementations must not block the sync pipeline.
type NotificationSink interface {
	Publish(ctx context.Context, events []gameevent.Event)
}

// SyncResult summarizes one sync pass for logging and the admin trigger
// response.
type SyncResult struct {
	Week         int    `json:"week"`
	Fetched      int    `json:"fetched"`
	Created      int    `json:"created"`
	Updated      int    `json:"updated"`
	Skipped      int    `json:"skipped"`
	Failed       int    `json:"failed"`
	Events       int    `json:"events"`
	Eliminations int    `json:"eliminations"`
	Reason       string `json:"reason,omitempty"`
}

// GameSyncService pulls the current week's scoreboard, reconciles it into
// storage, derives scoring and completion events, and hands eliminations to
// the elimination processor. At most one sync runs at a time and the
// provider is called at most once per rate window.
type GameSyncService struct {
	source       ScoreSource
	gameRepo     game.Repository
	teamRepo     team.Repository
	eventRepo    gameevent.Repository
	eliminations *EliminationService
	sink         NotificationSink
	calendar     season.Calendar
	limiter      *ratelimit.Limiter
	lookupCache  *cache.Store
	clock        clockwork.Clock
	logger       *logging.Logger
	syncing      atomic.Bool
}

func NewGameSyncService(
	source ScoreSource,
	gameRepo game.Repository,
	teamRepo team.Repository,
	eventRepo gameevent.Repository,
	eliminations *EliminationService,
	sink NotificationSink,
	calendar season.Calendar,
	limiter *ratelimit.Limiter,
	clock clockwork.Clock,
	logger *logging.Logger,
) *GameSyncService {
	if logger == nil {
		logger = logging.Default()
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if limiter == nil {
		limiter = ratelimit.NewLimiter()
	}

	return &GameSyncService{
		source:       source,
		gameRepo:     gameRepo,
		teamRepo:     teamRepo,
		eventRepo:    eventRepo,
		eliminations: eliminations,
		sink:         sink,
		calendar:     calendar,
		limiter:      limiter,
		lookupCache:  cache.NewStore(teamLookupCacheTTL),
		clock:        clock,
		logger:       logger,
	}
}

// SyncGames runs one full sync pass for the week containing now. Skipped
// passes are not errors: off-season instants, a pass already running, and
// throttled polls all resolve to a no-op result carrying the reason, so
// schedulers and admin triggers can fire the job freely.
func (s *GameSyncService) SyncGames(ctx context.Context) (SyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "GameSyncService.SyncGames")
	defer span.End()

	if !s.syncing.CompareAndSwap(false, true) {
		s.logger.InfoContext(ctx, "game sync already running, pass dropped")
		return SyncResult{Reason: "in_progress"}, nil
	}
	defer s.syncing.Store(false)

	now := s.clock.Now().UTC()
	week := s.calendar.CurrentWeek(now)
	if week == 0 {
		s.logger.InfoContext(ctx, "game sync skipped outside season window")
		return SyncResult{Reason: "off_season"}, nil
	}

	if !s.limiter.Allow(scoreboardRateKey, scoreboardRateMax, scoreboardRateWindow) {
		s.logger.InfoContext(ctx, "game sync throttled", "week", week)
		return SyncResult{Week: week, Reason: "rate_limited"}, nil
	}

	result, err := s.syncWeek(ctx, week)
	if err != nil {
		return result, err
	}

	s.logger.InfoContext(ctx, "game sync completed",
		"week", result.Week,
		"fetched", result.Fetched,
		"created", result.Created,
		"updated", result.Updated,
		"skipped", result.Skipped,
		"failed", result.Failed,
		"events", result.Events,
		"eliminations", result.Eliminations,
	)
	return result, nil
}

// SyncWeekRange preloads the schedule for an inclusive span of weeks, a few
// weeks at a time. Scoreboard pacing does not apply; this is an operator
// action, not the recurring score poll.
func (s *GameSyncService) SyncWeekRange(ctx context.Context, fromWeek, toWeek int) ([]SyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "GameSyncService.SyncWeekRange")
	defer span.End()

	if fromWeek < season.FirstWeek || toWeek > season.LastWeek || fromWeek > toWeek {
		return nil, fmt.Errorf("%w: week range must fall within %d..%d", ErrInvalidInput, season.FirstWeek, season.LastWeek)
	}

	results := make([]SyncResult, toWeek-fromWeek+1)
	workers := pool.New().WithContext(ctx).WithMaxGoroutines(4)
	for week := fromWeek; week <= toWeek; week++ {
		index := week - fromWeek
		target := week
		workers.Go(func(ctx context.Context) error {
			result, err := s.syncWeek(ctx, target)
			if err != nil {
				return fmt.Errorf("sync week %d: %w", target, err)
			}
			results[index] = result
			return nil
		})
	}
	if err := workers.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *GameSyncService) syncWeek(ctx context.Context, week int) (SyncResult, error) {
	result := SyncResult{Week: week}

	fetched, err := s.source.FetchWeek(ctx, s.calendar.SeasonYear(), SeasonTypeRegular, week)
	if err != nil {
		return result, fmt.Errorf("fetch week %d: %w", week, err)
	}
	result.Fetched = len(fetched)

	teamIDByAbbr, err := s.teamLookup(ctx)
	if err != nil {
		return result, fmt.Errorf("load team lookup: %w", err)
	}

	published := make([]gameevent.Event, 0, 8)
	for _, item := range fetched {
		homeID, homeKnown := teamIDByAbbr[item.HomeAbbreviation]
		awayID, awayKnown := teamIDByAbbr[item.AwayAbbreviation]
		if !homeKnown || !awayKnown {
			result.Skipped++
			s.logger.WarnContext(ctx, "skipping game with unmapped team",
				"external_id", item.ExternalID,
				"home", item.HomeAbbreviation,
				"away", item.AwayAbbreviation,
			)
			continue
		}

		events, created, err := s.reconcileGame(ctx, item, homeID, awayID)
		if err != nil {
			result.Failed++
			s.logger.ErrorContext(ctx, "game reconcile failed", "external_id", item.ExternalID, "error", err)
			continue
		}
		if created {
			result.Created++
		} else {
			result.Updated++
		}

		if len(events) == 0 {
			continue
		}
		// Events are persisted game by game so one bad write cannot strand
		// the whole pass. Eliminations for a game commit inside its own
		// reconcile, so its events must land in the same iteration.
		stored, err := s.eventRepo.Insert(ctx, events)
		if err != nil {
			result.Failed++
			s.logger.ErrorContext(ctx, "persist game events failed", "external_id", item.ExternalID, "error", err)
			continue
		}
		result.Events += len(stored)
		for _, event := range stored {
			if event.Type == gameevent.TypeElimination {
				result.Eliminations++
			}
		}
		published = append(published, stored...)
	}

	if len(published) > 0 && s.sink != nil {
		s.sink.Publish(ctx, published)
	}

	return result, nil
}

// reconcileGame upserts one fetched game and derives the events implied by
// the difference against the stored row. A game whose completion was already
// recorded produces no new completion work, which is what makes the sync
// safe to re-run.
func (s *GameSyncService) reconcileGame(ctx context.Context, item CanonicalGame, homeID, awayID int64) ([]gameevent.Event, bool, error) {
	existing, found, err := s.gameRepo.GetByExternalID(ctx, item.ExternalID)
	if err != nil {
		return nil, false, fmt.Errorf("lookup game: %w", err)
	}

	next := game.Game{
		SeasonYear:  s.calendar.SeasonYear(),
		Week:        item.Week,
		HomeTeamID:  homeID,
		AwayTeamID:  awayID,
		HomeScore:   item.HomeScore,
		AwayScore:   item.AwayScore,
		IsFinal:     item.IsCompleted,
		GameTime:    item.StartsAt,
		ExternalID:  item.ExternalID,
		LastUpdated: s.clock.Now().UTC(),
	}

	if !found {
		stored, err := s.gameRepo.Insert(ctx, next)
		if err != nil {
			return nil, false, fmt.Errorf("insert game: %w", err)
		}
		if stored.HasStarted() {
			// A game first observed mid-play diffs against an implied 0-0
			// snapshot, so the points already on the board become events.
			events, err := s.deriveEvents(ctx, firstSeenBaseline(stored), stored, true)
			return events, true, err
		}
		events, err := s.deriveEvents(ctx, game.Game{}, stored, false)
		return events, true, err
	}

	next.ID = existing.ID
	if err := s.gameRepo.Update(ctx, next); err != nil {
		return nil, false, fmt.Errorf("update game: %w", err)
	}
	events, err := s.deriveEvents(ctx, existing, next, true)
	return events, false, err
}

func (s *GameSyncService) deriveEvents(ctx context.Context, previous, current game.Game, hadPrevious bool) ([]gameevent.Event, error) {
	now := s.clock.Now().UTC()
	out := make([]gameevent.Event, 0, 4)

	if hadPrevious {
		out = append(out, scoringEvents(previous, current, now)...)
	}

	justCompleted := current.IsFinal && (!hadPrevious || !previous.IsFinal)
	if justCompleted {
		out = append(out, gameevent.Event{
			GameID:      current.ID,
			Type:        gameevent.TypeGameEnd,
			Description: gameEndDescription(current),
			ScoreHome:   current.HomeScore,
			ScoreAway:   current.AwayScore,
			CreatedAt:   now,
		})

		if s.eliminations != nil {
			eliminationEvents, err := s.eliminations.ProcessCompletion(ctx, current)
			if err != nil {
				return nil, fmt.Errorf("process completion: %w", err)
			}
			out = append(out, eliminationEvents...)
		}
	}

	return out, nil
}

// scoringEvents classifies per-team score increases between two snapshots of
// the same game. Decreases are stat corrections from the provider and emit
// nothing.
func scoringEvents(previous, current game.Game, now time.Time) []gameevent.Event {
	out := make([]gameevent.Event, 0, 2)

	if delta := scoreDelta(previous.HomeScore, current.HomeScore); delta > 0 {
		teamID := current.HomeTeamID
		out = append(out, gameevent.Event{
			GameID:      current.ID,
			Type:        gameevent.TypeForPointDelta(delta),
			TeamID:      &teamID,
			Description: fmt.Sprintf("home team scored %d", delta),
			ScoreHome:   current.HomeScore,
			ScoreAway:   current.AwayScore,
			CreatedAt:   now,
		})
	}
	if delta := scoreDelta(previous.AwayScore, current.AwayScore); delta > 0 {
		teamID := current.AwayTeamID
		out = append(out, gameevent.Event{
			GameID:      current.ID,
			Type:        gameevent.TypeForPointDelta(delta),
			TeamID:      &teamID,
			Description: fmt.Sprintf("away team scored %d", delta),
			ScoreHome:   current.HomeScore,
			ScoreAway:   current.AwayScore,
			CreatedAt:   now,
		})
	}

	return out
}

// firstSeenBaseline is the snapshot a game is assumed to have had before it
// was first observed: the same matchup, scoreless and not yet final.
func firstSeenBaseline(current game.Game) game.Game {
	previous := current
	previous.IsFinal = false
	home, away := 0, 0
	previous.HomeScore = &home
	previous.AwayScore = &away
	return previous
}

func scoreDelta(previous, current *int) int {
	if current == nil {
		return 0
	}
	if previous == nil {
		return *current
	}
	return *current - *previous
}

func gameEndDescription(item game.Game) string {
	if item.HomeScore == nil || item.AwayScore == nil {
		return "game final"
	}
	return fmt.Sprintf("game final %d-%d", *item.HomeScore, *item.AwayScore)
}

func (s *GameSyncService) teamLookup(ctx context.Context) (map[string]int64, error) {
	value, err := s.lookupCache.GetOrLoad(ctx, teamLookupCacheKey, func(ctx context.Context) (any, error) {
		teams, err := s.teamRepo.ListAll(ctx)
		if err != nil {
			return nil, err
		}
		return team.IDByAbbreviation(teams), nil
	})
	if err != nil {
		return nil, err
	}

	lookup, ok := value.(map[string]int64)
	if !ok || len(lookup) == 0 {
		return nil, fmt.Errorf("team lookup unavailable")
	}
	return lookup, nil
}

// RunScheduler polls on the given interval until ctx is cancelled. Skipped
// passes report themselves through the result reason and stay quiet here;
// real failures are logged and the loop keeps going.
func (s *GameSyncService) RunScheduler(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := s.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			if _, err := s.SyncGames(ctx); err != nil {
				s.logger.ErrorContext(ctx, "scheduled game sync failed", "error", err)
			}
		}
	}
}
