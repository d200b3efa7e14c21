package nbastats

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
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
	defaultBaseURL = "https://stats.nba.com/stats"
	leagueID       = "00"
)

var errNBAStatsTransient = crerr.New("nbastats transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Timeout        time.Duration
	Retry          resilience.RetryConfig
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client talks to the official stats API. Responses come back as tabular
// result sets, so every fetch decodes the envelope and reads rows by header
// name.
type Client struct {
	httpClient     *http.Client
	baseURL        string
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
		retry:          resilience.NormalizeRetryConfig(cfg.Retry),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg),
		circuitEnabled: breakerCfg.Enabled,
	}
}

func (c *Client) Name() string {
	return identity.ProviderNBAStats
}

// GamesByDate fetches the scoreboard for one calendar date and maps its game
// header rows, joined with line scores, into observations.
func (c *Client) GamesByDate(ctx context.Context, date time.Time) ([]usecase.GameObservation, error) {
	query := map[string]string{
		"GameDate":  date.Format("01/02/2006"),
		"LeagueID":  leagueID,
		"DayOffset": "0",
	}

	var envelope resultSetEnvelope
	if err := c.doJSON(ctx, "/scoreboardv2", query, &envelope); err != nil {
		return nil, fmt.Errorf("fetch scoreboard date=%s: %w", date.Format("2006-01-02"), err)
	}

	headers, err := envelope.rows("GameHeader")
	if err != nil {
		return nil, fmt.Errorf("scoreboard date=%s: %w", date.Format("2006-01-02"), err)
	}
	lineScores, err := envelope.rows("LineScore")
	if err != nil {
		return nil, fmt.Errorf("scoreboard date=%s: %w", date.Format("2006-01-02"), err)
	}

	type teamLine struct {
		abbr   string
		points *int
	}
	linesByKey := make(map[string]teamLine, len(lineScores))
	for _, row := range lineScores {
		key := row.str("GAME_ID") + ":" + row.int64Str("TEAM_ID")
		linesByKey[key] = teamLine{
			abbr:   row.str("TEAM_ABBREVIATION"),
			points: row.intPtr("PTS"),
		}
	}

	out := make([]usecase.GameObservation, 0, len(headers))
	for _, row := range headers {
		gameID := row.str("GAME_ID")
		if gameID == "" {
			continue
		}

		home := linesByKey[gameID+":"+row.int64Str("HOME_TEAM_ID")]
		away := linesByKey[gameID+":"+row.int64Str("VISITOR_TEAM_ID")]

		out = append(out, usecase.GameObservation{
			Provider:           identity.ProviderNBAStats,
			ProviderGameID:     gameID,
			Season:             parseSeason(row.str("SEASON")),
			StartTime:          parseStartTime(row.str("GAME_DATE_EST"), row.str("GAME_STATUS_TEXT"), date),
			HomeAbbr:           home.abbr,
			AwayAbbr:           away.abbr,
			HomeProviderTeamID: row.int64Str("HOME_TEAM_ID"),
			AwayProviderTeamID: row.int64Str("VISITOR_TEAM_ID"),
			HomeScore:          home.points,
			AwayScore:          away.points,
			RawStatus:          row.str("GAME_STATUS_TEXT"),
			Venue:              row.str("ARENA_NAME"),
		})
	}

	return out, nil
}

// BoxScoreByGame fetches the traditional box score for a provider game id.
// The game candidate stays empty: scoreboard ingestion establishes the game
// mapping first, so the resolver finds the game by provider id.
func (c *Client) BoxScoreByGame(ctx context.Context, providerGameID string) (usecase.BoxScoreObservation, error) {
	providerGameID = strings.TrimSpace(providerGameID)
	if providerGameID == "" {
		return usecase.BoxScoreObservation{}, fmt.Errorf("provider game id is required")
	}

	query := map[string]string{
		"GameID":      providerGameID,
		"StartPeriod": "0",
		"EndPeriod":   "10",
		"RangeType":   "0",
		"StartRange":  "0",
		"EndRange":    "0",
	}

	var envelope resultSetEnvelope
	if err := c.doJSON(ctx, "/boxscoretraditionalv2", query, &envelope); err != nil {
		return usecase.BoxScoreObservation{}, fmt.Errorf("fetch box score game_id=%s: %w", providerGameID, err)
	}

	rows, err := envelope.rows("PlayerStats")
	if err != nil {
		return usecase.BoxScoreObservation{}, fmt.Errorf("box score game_id=%s: %w", providerGameID, err)
	}

	lines := make([]usecase.PlayerStatObservation, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, usecase.PlayerStatObservation{
			ProviderPlayerID:    row.int64Str("PLAYER_ID"),
			PlayerName:          row.str("PLAYER_NAME"),
			TeamAbbr:            row.str("TEAM_ABBREVIATION"),
			ProviderTeamID:      row.int64Str("TEAM_ID"),
			Minutes:             row.str("MIN"),
			StartPosition:       row.str("START_POSITION"),
			Comment:             strings.TrimSpace(row.str("COMMENT")),
			Points:              row.intOr("PTS", 0),
			Rebounds:            row.intOr("REB", 0),
			Assists:             row.intOr("AST", 0),
			Steals:              row.intOr("STL", 0),
			Blocks:              row.intOr("BLK", 0),
			Turnovers:           row.intOr("TO", 0),
			FieldGoalsMade:      row.intOr("FGM", 0),
			FieldGoalsAttempted: row.intOr("FGA", 0),
			ThreesMade:          row.intOr("FG3M", 0),
			ThreesAttempted:     row.intOr("FG3A", 0),
			FreeThrowsMade:      row.intOr("FTM", 0),
			FreeThrowsAttempted: row.intOr("FTA", 0),
			PlusMinus:           row.intPtr("PLUS_MINUS"),
		})
	}

	return usecase.BoxScoreObservation{
		Provider:       identity.ProviderNBAStats,
		ProviderGameID: providerGameID,
		Lines:          lines,
	}, nil
}

// QuarterScoresByGame fetches the summary line score, which carries the
// per-period team totals the traditional box score lacks.
func (c *Client) QuarterScoresByGame(ctx context.Context, providerGameID string) ([]usecase.QuarterObservation, error) {
	providerGameID = strings.TrimSpace(providerGameID)
	if providerGameID == "" {
		return nil, fmt.Errorf("provider game id is required")
	}

	query := map[string]string{"GameID": providerGameID}

	var envelope resultSetEnvelope
	if err := c.doJSON(ctx, "/boxscoresummaryv2", query, &envelope); err != nil {
		return nil, fmt.Errorf("fetch box score summary game_id=%s: %w", providerGameID, err)
	}

	rows, err := envelope.rows("LineScore")
	if err != nil {
		return nil, fmt.Errorf("box score summary game_id=%s: %w", providerGameID, err)
	}

	out := make([]usecase.QuarterObservation, 0, len(rows))
	for _, row := range rows {
		out = append(out, usecase.QuarterObservation{
			ProviderTeamID: row.int64Str("TEAM_ID"),
			Q1:             row.intPtr("PTS_QTR1"),
			Q2:             row.intPtr("PTS_QTR2"),
			Q3:             row.intPtr("PTS_QTR3"),
			Q4:             row.intPtr("PTS_QTR4"),
			OT:             sumOvertime(row),
		})
	}

	return out, nil
}

// sumOvertime collapses the ten possible overtime period columns into one
// total. Nil when the game had no overtime.
func sumOvertime(row rowReader) *int {
	total := 0
	played := false
	for period := 1; period <= 10; period++ {
		if pts := row.intPtr(fmt.Sprintf("PTS_OT%d", period)); pts != nil && *pts > 0 {
			total += *pts
			played = true
		}
	}
	if !played {
		return nil
	}
	return &total
}

// RosterByTeam fetches a team's roster for the season. Every returned row is
// an active entry; waived players simply fall off the provider's roster.
func (c *Client) RosterByTeam(ctx context.Context, providerTeamID string, season int) ([]usecase.RosterObservation, error) {
	providerTeamID = strings.TrimSpace(providerTeamID)
	if providerTeamID == "" {
		return nil, fmt.Errorf("provider team id is required")
	}

	query := map[string]string{
		"TeamID":   providerTeamID,
		"Season":   formatSeason(season),
		"LeagueID": leagueID,
	}

	var envelope resultSetEnvelope
	if err := c.doJSON(ctx, "/commonteamroster", query, &envelope); err != nil {
		return nil, fmt.Errorf("fetch roster team_id=%s season=%d: %w", providerTeamID, season, err)
	}

	rows, err := envelope.rows("CommonTeamRoster")
	if err != nil {
		return nil, fmt.Errorf("roster team_id=%s season=%d: %w", providerTeamID, season, err)
	}

	out := make([]usecase.RosterObservation, 0, len(rows))
	for _, row := range rows {
		out = append(out, usecase.RosterObservation{
			ProviderPlayerID: row.int64Str("PLAYER_ID"),
			PlayerName:       row.str("PLAYER"),
			FirstName:        row.str("FIRST_NAME"),
			LastName:         row.str("LAST_NAME"),
			Active:           true,
		})
	}

	return out, nil
}

// formatSeason renders a season start year the way the provider expects,
// 2025 becoming "2025-26".
func formatSeason(season int) string {
	return fmt.Sprintf("%d-%02d", season, (season+1)%100)
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "nbastats circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("%w: stats provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
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
			if reqErr != nil && isNBAStatsCircuitFailure(reqErr) {
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
		req.Header.Set("User-Agent", "Mozilla/5.0")
		req.Header.Set("Referer", "https://www.nba.com/")
		req.Header.Set("Origin", "https://www.nba.com")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %v", errNBAStatsTransient, err)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 6<<20))
			_ = resp.Body.Close()
			if readErr != nil {
				lastErr = fmt.Errorf("%w: read response body: %v", errNBAStatsTransient, readErr)
			} else if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return raw, nil
			} else if isRetryableStatus(resp.StatusCode) {
				lastErr = fmt.Errorf("%w: provider status=%d body=%s", errNBAStatsTransient, resp.StatusCode, abbreviateBody(raw))
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
	c.logger.WarnContext(ctx, "nbastats request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func isNBAStatsCircuitFailure(err error) bool {
	if err == nil {
		return false
	}
	return stderrors.Is(err, errNBAStatsTransient)
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

// parseSeason turns "2025" or "2025-26" into the season start year.
func parseSeason(raw string) int {
	raw = strings.TrimSpace(raw)
	if idx := strings.IndexByte(raw, '-'); idx > 0 {
		raw = raw[:idx]
	}
	var season int
	for _, r := range raw {
		if r < '0' || r > '9' {
			return 0
		}
		season = season*10 + int(r-'0')
	}
	return season
}

// parseStartTime combines the eastern game date with the pre-game status
// text, which carries the tip time ("7:30 pm ET") until the game starts.
func parseStartTime(gameDateEST, statusText string, fallback time.Time) time.Time {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		loc = time.UTC
	}

	day := fallback.In(loc)
	if parsed, parseErr := time.ParseInLocation("2006-01-02T15:04:05", strings.TrimSpace(gameDateEST), loc); parseErr == nil {
		day = parsed
	}

	statusText = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(statusText), "ET"))
	if parsed, parseErr := time.ParseInLocation("3:04 pm", strings.ToLower(statusText), loc); parseErr == nil {
		return time.Date(day.Year(), day.Month(), day.Day(), parsed.Hour(), parsed.Minute(), 0, 0, loc)
	}

	return time.Date(day.Year(), day.Month(), day.Day(), day.Hour(), day.Minute(), 0, 0, loc)
}
