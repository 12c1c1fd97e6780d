package apifootball

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/quiniela/internal/platform/logging"
	"github.com/riskibarqy/quiniela/internal/platform/resilience"
	"github.com/riskibarqy/quiniela/internal/usecase"
	"github.com/valyala/bytebufferpool"
)

const (
	DefaultHost        = "api-football-v1.p.rapidapi.com"
	defaultOddsWorkers = 4
	maxResponseBytes   = 6 << 20
)

var errAPIFootballTransient = crerr.New("api-football transient failure")

// Metrics receives one observation per provider request and every circuit
// breaker transition.
type Metrics interface {
	ObserveProviderRequest(endpoint, outcome string, elapsed time.Duration)
	ObserveCircuitState(name, state string)
}

type ClientConfig struct {
	HTTPClient *http.Client
	// BaseURL overrides https://{Host}/v3.
	BaseURL        string
	Host           string
	APIKey         string
	Timeout        time.Duration
	MaxRetries     int
	OddsWorkers    int
	Logger         *logging.Logger
	Metrics        Metrics
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client talks to API-Football through RapidAPI. It implements
// usecase.FootballProvider.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	host           string
	apiKey         string
	maxRetries     int
	oddsWorkers    int
	logger         *logging.Logger
	metrics        Metrics
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight[[]byte]
}

var _ usecase.FootballProvider = (*Client)(nil)

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

	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = DefaultHost
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://" + host + "/v3"
	}
	oddsWorkers := cfg.OddsWorkers
	if oddsWorkers <= 0 {
		oddsWorkers = defaultOddsWorkers
	}
	breakerCfg := cfg.CircuitBreaker
	if breakerCfg.Name == "" {
		breakerCfg.Name = "api-football"
	}
	breakerCfg.OnStateChange = func(name string, from, to resilience.CircuitState) {
		logger.Warn("api-football circuit breaker state changed", "breaker", name, "from", from, "to", to)
		if cfg.Metrics != nil {
			cfg.Metrics.ObserveCircuitState(name, string(to))
		}
	}

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		host:           host,
		apiKey:         strings.TrimSpace(cfg.APIKey),
		maxRetries:     max(cfg.MaxRetries, 0),
		oddsWorkers:    oddsWorkers,
		logger:         logger,
		metrics:        cfg.Metrics,
		breaker:        resilience.NewCircuitBreaker(breakerCfg),
		circuitEnabled: breakerCfg.Enabled,
	}
}

func (c *Client) ListLeagues(ctx context.Context, query usecase.LeagueQuery) ([]usecase.ExternalLeague, error) {
	params := url.Values{}
	if country := strings.TrimSpace(query.Country); country != "" {
		params.Set("country", country)
	}
	if query.Season > 0 {
		params.Set("season", strconv.Itoa(query.Season))
	}

	var payload envelope[leagueItem]
	if err := c.doJSON(ctx, "leagues", params, &payload); err != nil {
		return nil, err
	}

	out := make([]usecase.ExternalLeague, 0, len(payload.Response))
	for _, item := range payload.Response {
		out = append(out, item.toExternal())
	}
	return out, nil
}

func (c *Client) ListTeams(ctx context.Context, leagueID int64, season int) ([]usecase.ExternalTeam, error) {
	if leagueID <= 0 {
		return nil, fmt.Errorf("%w: league id must be greater than zero", usecase.ErrInvalidInput)
	}

	params := url.Values{}
	params.Set("league", strconv.FormatInt(leagueID, 10))
	if season > 0 {
		params.Set("season", strconv.Itoa(season))
	}

	var payload envelope[teamItem]
	if err := c.doJSON(ctx, "teams", params, &payload); err != nil {
		return nil, err
	}

	out := make([]usecase.ExternalTeam, 0, len(payload.Response))
	for _, item := range payload.Response {
		out = append(out, item.toExternal())
	}
	return out, nil
}

func (c *Client) ListFixtures(ctx context.Context, query usecase.FixtureQuery) ([]usecase.ExternalFixture, error) {
	var payload envelope[fixtureItem]
	if err := c.doJSON(ctx, "fixtures", fixtureParams(query), &payload); err != nil {
		return nil, err
	}

	out := make([]usecase.ExternalFixture, 0, len(payload.Response))
	for _, item := range payload.Response {
		out = append(out, item.toExternal())
	}
	return out, nil
}

func (c *Client) GetFixture(ctx context.Context, fixtureID int64) (usecase.ExternalFixture, bool, error) {
	if fixtureID <= 0 {
		return usecase.ExternalFixture{}, false, fmt.Errorf("%w: fixture id must be greater than zero", usecase.ErrInvalidInput)
	}

	params := url.Values{}
	params.Set("id", strconv.FormatInt(fixtureID, 10))

	var payload envelope[fixtureItem]
	if err := c.doJSON(ctx, "fixtures", params, &payload); err != nil {
		return usecase.ExternalFixture{}, false, err
	}
	if len(payload.Response) == 0 {
		return usecase.ExternalFixture{}, false, nil
	}
	return payload.Response[0].toExternal(), true, nil
}

func (c *Client) ListOdds(ctx context.Context, fixtureID int64) ([]usecase.ExternalOdds, error) {
	params := url.Values{}
	if fixtureID > 0 {
		params.Set("fixture", strconv.FormatInt(fixtureID, 10))
	}

	var payload envelope[oddsItem]
	if err := c.doJSON(ctx, "odds", params, &payload); err != nil {
		return nil, err
	}

	out := make([]usecase.ExternalOdds, 0, len(payload.Response))
	for _, item := range payload.Response {
		out = append(out, item.toExternal())
	}
	return out, nil
}

// ListFixturesWithOdds fetches fixtures and looks up the odds of each one on
// a bounded worker pool. A failed odds lookup leaves that fixture without
// odds.
func (c *Client) ListFixturesWithOdds(ctx context.Context, query usecase.FixtureQuery) ([]usecase.ExternalFixture, error) {
	fixtures, err := c.ListFixtures(ctx, query)
	if err != nil {
		return nil, err
	}

	targets := make([]usecase.ExternalFixture, 0, len(fixtures))
	for _, item := range fixtures {
		if item.FixtureID > 0 {
			targets = append(targets, item)
		}
	}
	if len(targets) == 0 {
		return targets, nil
	}

	pool, err := ants.NewPool(min(c.oddsWorkers, len(targets)))
	if err != nil {
		return nil, fmt.Errorf("create odds worker pool: %w", err)
	}
	defer pool.Release()

	var (
		mu      sync.Mutex
		workers sync.WaitGroup
		failed  int
	)
	for idx := range targets {
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			odds, err := c.ListOdds(ctx, targets[idx].FixtureID)
			if err != nil {
				c.logger.WarnContext(ctx, "fetch fixture odds failed", "fixture_id", targets[idx].FixtureID, "error", err)
				mu.Lock()
				failed++
				mu.Unlock()
				return
			}
			targets[idx].Odds = odds
		}); err != nil {
			workers.Done()
			return nil, fmt.Errorf("submit odds lookup to worker pool: %w", err)
		}
	}
	workers.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if failed > 0 {
		c.logger.WarnContext(ctx, "fixtures synced with missing odds", "fixtures", len(targets), "failed", failed)
	}

	sort.SliceStable(targets, func(i, j int) bool {
		if !targets[i].KickoffAt.Equal(targets[j].KickoffAt) {
			return targets[i].KickoffAt.Before(targets[j].KickoffAt)
		}
		return targets[i].FixtureID < targets[j].FixtureID
	})
	return targets, nil
}

// doJSON decodes the response of endpoint into target. Transport failures
// and 429/5xx wrap usecase.ErrDependencyUnavailable; an error payload or any
// other status wraps usecase.ErrUpstreamRejected.
func (c *Client) doJSON(ctx context.Context, endpoint string, params url.Values, target any) error {
	key := requestKey(endpoint, params)
	fullURL := c.baseURL + "/" + key

	started := time.Now()
	raw, _, err := c.flight.Do(ctx, key, func(loadCtx context.Context) ([]byte, error) {
		if !c.circuitEnabled {
			return c.executeRequest(loadCtx, fullURL)
		}
		var body []byte
		err := c.breaker.Execute(loadCtx, func(ctx context.Context) error {
			var reqErr error
			body, reqErr = c.executeRequest(ctx, fullURL)
			return reqErr
		}, isTransient)
		return body, err
	})
	if stderrors.Is(err, resilience.ErrCircuitOpen) {
		c.logger.WarnContext(ctx, "api-football circuit breaker rejected request", "endpoint", endpoint, "state", c.breaker.State())
		c.observe(endpoint, "rejected", 0)
		return fmt.Errorf("%w: sport data provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
	}
	if err != nil {
		c.observe(endpoint, "error", time.Since(started))
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if isTransient(err) {
			return fmt.Errorf("%w: %w", usecase.ErrDependencyUnavailable, err)
		}
		return fmt.Errorf("%w: %w", usecase.ErrUpstreamRejected, err)
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		c.observe(endpoint, "error", time.Since(started))
		return crerr.Wrapf(err, "decode %s payload", endpoint)
	}
	if carrier, ok := target.(errorCarrier); ok {
		if message := carrier.errorMessage(); message != "" {
			c.observe(endpoint, "rejected", time.Since(started))
			c.logger.ErrorContext(ctx, "api-football returned errors", "endpoint", endpoint, "errors", message)
			return fmt.Errorf("%w: %s: %s", usecase.ErrUpstreamRejected, endpoint, message)
		}
	}

	c.observe(endpoint, "success", time.Since(started))
	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("X-RapidAPI-Key", c.apiKey)
		req.Header.Set("X-RapidAPI-Host", c.host)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = fmt.Errorf("%w: send request: %s", errAPIFootballTransient, sanitizeSensitiveText(err.Error(), c.apiKey))
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errAPIFootballTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: provider status=%d body=%s", errAPIFootballTransient, resp.StatusCode, abbreviateBody(raw))
			default:
				return nil, fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("%w: provider request failed", errAPIFootballTransient)
	}
	c.logger.WarnContext(ctx, "api-football request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func (c *Client) observe(endpoint, outcome string, elapsed time.Duration) {
	if c.metrics == nil {
		return
	}
	c.metrics.ObserveProviderRequest(endpoint, outcome, elapsed)
}

// fixtureParams maps a query onto /fixtures parameters. The provider requires
// a season with from/to, so it is derived from the window start when absent.
func fixtureParams(query usecase.FixtureQuery) url.Values {
	params := url.Values{}
	if query.LeagueID > 0 {
		params.Set("league", strconv.FormatInt(query.LeagueID, 10))
	}
	season := query.Season
	if season <= 0 && !query.From.IsZero() && query.LeagueID > 0 {
		season = seasonForDate(query.From)
	}
	if season > 0 {
		params.Set("season", strconv.Itoa(season))
	}
	if query.TeamID > 0 {
		params.Set("team", strconv.FormatInt(query.TeamID, 10))
	}
	if !query.Date.IsZero() {
		params.Set("date", query.Date.UTC().Format(time.DateOnly))
	}
	if !query.From.IsZero() {
		params.Set("from", query.From.UTC().Format(time.DateOnly))
	}
	if !query.To.IsZero() {
		params.Set("to", query.To.UTC().Format(time.DateOnly))
	}
	return params
}

// seasonForDate returns the starting year of the European season containing
// t; seasons roll over in July.
func seasonForDate(t time.Time) int {
	t = t.UTC()
	if t.Month() >= time.July {
		return t.Year()
	}
	return t.Year() - 1
}

// requestKey renders endpoint?sorted-query. It doubles as the singleflight
// key and the request path.
func requestKey(endpoint string, params url.Values) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString(endpoint)
	if encoded := params.Encode(); encoded != "" {
		_ = buf.WriteByte('?')
		_, _ = buf.WriteString(encoded)
	}
	return buf.String()
}

func formatProviderErrors(value any) string {
	switch value := value.(type) {
	case nil:
		return ""
	case []any:
		parts := make([]string, 0, len(value))
		for _, item := range value {
			parts = append(parts, fmt.Sprint(item))
		}
		return strings.Join(parts, "; ")
	case map[string]any:
		keys := make([]string, 0, len(value))
		for key := range value {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, key := range keys {
			parts = append(parts, fmt.Sprintf("%s: %v", key, value[key]))
		}
		return strings.Join(parts, "; ")
	default:
		return fmt.Sprint(value)
	}
}

func isTransient(err error) bool {
	return err != nil && stderrors.Is(err, errAPIFootballTransient)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func sanitizeSensitiveText(value, apiKey string) string {
	value = strings.TrimSpace(value)
	if value == "" || apiKey == "" {
		return value
	}
	return strings.ReplaceAll(value, apiKey, "REDACTED")
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
