package bdl

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/courtline/courtline/internal/domain/identity"
	"github.com/courtline/courtline/internal/platform/logging"
	"github.com/courtline/courtline/internal/platform/resilience"
	"github.com/courtline/courtline/internal/usecase"
)

const (
	defaultBaseURL = "https://api.balldontlie.io/v1"
	pageSize       = 100
	maxPages       = 50
)

var errBDLTransient = crerr.New("bdl transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Token          string
	Timeout        time.Duration
	Retry          resilience.RetryConfig
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

type Client struct {
	httpClient     *http.Client
	baseURL        string
	token          string
	retry          resilience.RetryConfig
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
		token:          strings.TrimSpace(cfg.Token),
		retry:          resilience.NormalizeRetryConfig(cfg.Retry),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg),
		circuitEnabled: breakerCfg.Enabled,
	}
}

func (c *Client) Name() string {
	return identity.ProviderBDL
}

func (c *Client) GamesByDate(ctx context.Context, date time.Time) ([]usecase.GameObservation, error) {
	return c.GamesByDateRange(ctx, date, date)
}

// GamesByDateRange pages through the games listing with cursor pagination
// and maps each row into an observation.
func (c *Client) GamesByDateRange(ctx context.Context, from, to time.Time) ([]usecase.GameObservation, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("date range end precedes start")
	}

	out := make([]usecase.GameObservation, 0, pageSize)
	cursor := ""
	for page := 0; page < maxPages; page++ {
		query := map[string]string{
			"start_date": from.Format("2006-01-02"),
			"end_date":   to.Format("2006-01-02"),
			"per_page":   strconv.Itoa(pageSize),
		}
		if cursor != "" {
			query["cursor"] = cursor
		}

		var envelope gamesEnvelope
		if err := c.doJSON(ctx, "/games", query, &envelope); err != nil {
			return nil, fmt.Errorf("fetch games from=%s to=%s: %w", from.Format("2006-01-02"), to.Format("2006-01-02"), err)
		}

		for _, row := range envelope.Data {
			out = append(out, mapGame(row))
		}

		if envelope.Meta.NextCursor == nil {
			return out, nil
		}
		cursor = strconv.FormatInt(*envelope.Meta.NextCursor, 10)
	}

	return nil, fmt.Errorf("games listing exceeded %d pages", maxPages)
}

func mapGame(row gameRow) usecase.GameObservation {
	obs := usecase.GameObservation{
		Provider:           identity.ProviderBDL,
		ProviderGameID:     strconv.FormatInt(row.ID, 10),
		Season:             row.Season,
		HomeAbbr:           row.HomeTeam.Abbreviation,
		AwayAbbr:           row.VisitorTeam.Abbreviation,
		HomeProviderTeamID: strconv.FormatInt(row.HomeTeam.ID, 10),
		AwayProviderTeamID: strconv.FormatInt(row.VisitorTeam.ID, 10),
		RawStatus:          row.Status,
	}

	// Scores of 0-0 on a non-final row mean "not played yet" in this feed.
	if row.HomeScore != 0 || row.VisitorScore != 0 || strings.EqualFold(row.Status, "Final") {
		home := row.HomeScore
		away := row.VisitorScore
		obs.HomeScore = &home
		obs.AwayScore = &away
	}

	if parsed, err := time.Parse(time.RFC3339, row.Datetime); err == nil {
		obs.StartTime = parsed
	} else if parsed, err := time.Parse("2006-01-02", row.Date); err == nil {
		obs.StartTime = parsed
	}

	return obs
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "bdl circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("%w: aggregator provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
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

	out, err, _ := c.flight.Do(fullURL, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && isBDLCircuitFailure(reqErr) {
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

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < c.retry.MaxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if c.token != "" {
			req.Header.Set("Authorization", c.token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %s", errBDLTransient, sanitizeSensitiveText(err.Error(), c.token))
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 6<<20))
			_ = resp.Body.Close()
			if readErr != nil {
				lastErr = fmt.Errorf("%w: read response body: %v", errBDLTransient, readErr)
			} else if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return raw, nil
			} else if isRetryableStatus(resp.StatusCode) {
				lastErr = fmt.Errorf("%w: provider status=%d body=%s", errBDLTransient, resp.StatusCode, abbreviateBody(raw))
			} else {
				return nil, fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.retry.MaxAttempts-1 {
			break
		}
		backoff := time.Duration(attempt+1) * c.retry.BaseBackoff
		if backoff > c.retry.MaxBackoff {
			backoff = c.retry.MaxBackoff
		}
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("provider request failed")
	}
	c.logger.WarnContext(ctx, "bdl request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func sanitizeSensitiveText(value, token string) string {
	value = strings.TrimSpace(value)
	if value == "" || token == "" {
		return value
	}
	return strings.ReplaceAll(value, token, "REDACTED")
}

func isBDLCircuitFailure(err error) bool {
	if err == nil {
		return false
	}
	return stderrors.Is(err, errBDLTransient)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}

type gamesEnvelope struct {
	Data []gameRow `json:"data"`
	Meta struct {
		NextCursor *int64 `json:"next_cursor"`
		PerPage    int    `json:"per_page"`
	} `json:"meta"`
}

type gameRow struct {
	ID           int64   `json:"id"`
	Date         string  `json:"date"`
	Datetime     string  `json:"datetime"`
	Season       int     `json:"season"`
	Status       string  `json:"status"`
	Postseason   bool    `json:"postseason"`
	HomeScore    int     `json:"home_team_score"`
	VisitorScore int     `json:"visitor_team_score"`
	HomeTeam     teamRow `json:"home_team"`
	VisitorTeam  teamRow `json:"visitor_team"`
}

type teamRow struct {
	ID           int64  `json:"id"`
	Abbreviation string `json:"abbreviation"`
	FullName     string `json:"full_name"`
}
