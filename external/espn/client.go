package espn

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/pickemlabs/survivor-pool/internal/platform/logging"
	"github.com/pickemlabs/survivor-pool/internal/platform/resilience"
	"github.com/pickemlabs/survivor-pool/internal/usecase"
)

const defaultBaseURL = "https://site.api.espn.com/apis/site/v2/sports/football/nfl"

var errScoreboardTransient = crerr.New("scoreboard transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Timeout        time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client fetches NFL scoreboard data. It performs exactly one request
// attempt per call; callers own retry and pacing policy.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

// FetchWeek retrieves every game of one regular-season week, mapped to the
// canonical shape. Competitors whose team id the static table does not know
// keep an empty abbreviation so callers can skip them per game instead of
// failing the batch.
func (c *Client) FetchWeek(ctx context.Context, seasonYear, seasonType, week int) ([]usecase.CanonicalGame, error) {
	if seasonYear <= 0 {
		return nil, fmt.Errorf("season year must be greater than zero")
	}
	if week <= 0 {
		return nil, fmt.Errorf("week must be greater than zero")
	}
	if seasonType <= 0 {
		seasonType = usecase.SeasonTypeRegular
	}

	query := map[string]string{
		"dates":      strconv.Itoa(seasonYear),
		"seasontype": strconv.Itoa(seasonType),
		"week":       strconv.Itoa(week),
	}

	var envelope scoreboardEnvelope
	if err := c.doJSON(ctx, "/scoreboard", query, &envelope); err != nil {
		return nil, fmt.Errorf("fetch scoreboard season=%d week=%d: %w", seasonYear, week, err)
	}

	out := make([]usecase.CanonicalGame, 0, len(envelope.Events))
	for _, item := range envelope.Events {
		mapped, ok := mapScoreboardEvent(item, week)
		if !ok {
			continue
		}
		out = append(out, mapped)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].StartsAt.Equal(out[j].StartsAt) {
			return out[i].StartsAt.Before(out[j].StartsAt)
		}
		return out[i].ExternalID < out[j].ExternalID
	})

	return out, nil
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "scoreboard circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("%w: score provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}

	fullURL := c.baseURL + path
	if encoded := values.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	key := path + "?" + values.Encode()
	out, err, _ := c.flight.Do(key, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && crerr.Is(reqErr, errScoreboardTransient) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode provider payload: %w", err)
	}

	return nil
}

// executeRequest issues a single attempt. Transport faults and retryable
// statuses wrap errScoreboardTransient so the breaker only counts failures
// the provider can recover from.
func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		reqErr := fmt.Errorf("%w: send request: %v", errScoreboardTransient, err)
		c.logger.WarnContext(ctx, "scoreboard request failed", "url", fullURL, "error", reqErr)
		return nil, reqErr
	}

	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 6<<20))
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, fmt.Errorf("%w: read response body: %v", errScoreboardTransient, readErr)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return raw, nil
	}

	if isRetryableStatus(resp.StatusCode) {
		return nil, fmt.Errorf("%w: provider status=%d body=%s", errScoreboardTransient, resp.StatusCode, abbreviateBody(raw))
	}
	return nil, fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
}

func isRetryableStatus(status int) bool {
	if status == http.StatusTooManyRequests || status == http.StatusRequestTimeout {
		return true
	}
	return status >= 500
}

func abbreviateBody(raw []byte) string {
	value := strings.TrimSpace(string(raw))
	if len(value) > 256 {
		return value[:256] + "..."
	}
	return value
}
