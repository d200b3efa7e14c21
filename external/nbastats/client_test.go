package nbastats

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/courtline/courtline/internal/platform/logging"
)

const scoreboardFixture = `{
	"resource": "scoreboardv2",
	"resultSets": [
		{
			"name": "GameHeader",
			"headers": ["GAME_ID", "GAME_STATUS_TEXT", "HOME_TEAM_ID", "VISITOR_TEAM_ID", "GAME_DATE_EST", "SEASON", "ARENA_NAME"],
			"rowSet": [
				["0022600412", "Final", 1610612738, 1610612752, "2026-01-10T00:00:00", "2025", "TD Garden"],
				["0022600413", "7:30 pm ET", 1610612743, 1610612747, "2026-01-10T00:00:00", "2025", "Ball Arena"]
			]
		},
		{
			"name": "LineScore",
			"headers": ["GAME_ID", "TEAM_ID", "TEAM_ABBREVIATION", "PTS"],
			"rowSet": [
				["0022600412", 1610612738, "BOS", 112],
				["0022600412", 1610612752, "NYK", 104],
				["0022600413", 1610612743, "DEN", null],
				["0022600413", 1610612747, "LAL", null]
			]
		}
	]
}`

const boxScoreFixture = `{
	"resource": "boxscoretraditionalv2",
	"resultSets": [
		{
			"name": "PlayerStats",
			"headers": ["GAME_ID", "TEAM_ID", "TEAM_ABBREVIATION", "PLAYER_ID", "PLAYER_NAME", "START_POSITION", "COMMENT", "MIN", "FGM", "FGA", "FG3M", "FG3A", "FTM", "FTA", "REB", "AST", "STL", "BLK", "TO", "PTS", "PLUS_MINUS"],
			"rowSet": [
				["0022600412", 1610612738, "BOS", 1628369, "Jayson Tatum", "F", "", "36:24", 10, 21, 4, 9, 6, 6, 8, 5, 1, 0, 3, 30, 12],
				["0022600412", 1610612738, "BOS", 1628401, "Payton Pritchard", "", "DNP - Coach's Decision", null, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, null]
			]
		}
	]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(ClientConfig{
		HTTPClient: server.Client(),
		BaseURL:    server.URL,
		Logger:     logging.NewNop(),
	})
}

func TestGamesByDate_MapsHeaderAndLineScoreRows(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/scoreboardv2" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("GameDate"); got != "01/10/2026" {
			t.Errorf("unexpected GameDate %q", got)
		}
		_, _ = w.Write([]byte(scoreboardFixture))
	})

	date := time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC)
	games, err := client.GamesByDate(context.Background(), date)
	if err != nil {
		t.Fatalf("GamesByDate: %v", err)
	}
	if len(games) != 2 {
		t.Fatalf("expected 2 games, got %d", len(games))
	}

	final := games[0]
	if final.ProviderGameID != "0022600412" {
		t.Fatalf("unexpected provider game id %q", final.ProviderGameID)
	}
	if final.HomeAbbr != "BOS" || final.AwayAbbr != "NYK" {
		t.Fatalf("unexpected pair %s/%s", final.HomeAbbr, final.AwayAbbr)
	}
	if final.HomeScore == nil || *final.HomeScore != 112 {
		t.Fatalf("unexpected home score %v", final.HomeScore)
	}
	if final.Season != 2025 {
		t.Fatalf("unexpected season %d", final.Season)
	}

	upcoming := games[1]
	if upcoming.HomeScore != nil || upcoming.AwayScore != nil {
		t.Fatalf("expected nil scores for upcoming game")
	}
	if upcoming.RawStatus != "7:30 pm ET" {
		t.Fatalf("unexpected raw status %q", upcoming.RawStatus)
	}
	eastern, _ := time.LoadLocation("America/New_York")
	want := time.Date(2026, time.January, 10, 19, 30, 0, 0, eastern)
	if !upcoming.StartTime.Equal(want) {
		t.Fatalf("expected tip time %s, got %s", want, upcoming.StartTime)
	}
}

func TestBoxScoreByGame_MapsPlayerRows(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("GameID"); got != "0022600412" {
			t.Errorf("unexpected GameID %q", got)
		}
		_, _ = w.Write([]byte(boxScoreFixture))
	})

	obs, err := client.BoxScoreByGame(context.Background(), "0022600412")
	if err != nil {
		t.Fatalf("BoxScoreByGame: %v", err)
	}
	if len(obs.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(obs.Lines))
	}

	tatum := obs.Lines[0]
	if tatum.PlayerName != "Jayson Tatum" || tatum.ProviderPlayerID != "1628369" {
		t.Fatalf("unexpected first line %+v", tatum)
	}
	if tatum.Minutes != "36:24" || tatum.StartPosition != "F" {
		t.Fatalf("unexpected minutes/start %q/%q", tatum.Minutes, tatum.StartPosition)
	}
	if tatum.Points != 30 || tatum.PlusMinus == nil || *tatum.PlusMinus != 12 {
		t.Fatalf("unexpected stat mapping %+v", tatum)
	}

	dnp := obs.Lines[1]
	if dnp.Minutes != "" {
		t.Fatalf("expected empty minutes for DNP, got %q", dnp.Minutes)
	}
	if dnp.Comment != "DNP - Coach's Decision" {
		t.Fatalf("unexpected comment %q", dnp.Comment)
	}
	if dnp.PlusMinus != nil {
		t.Fatalf("expected nil plus minus for DNP")
	}
}

const summaryFixture = `{
	"resource": "boxscoresummaryv2",
	"resultSets": [
		{
			"name": "LineScore",
			"headers": ["GAME_ID", "TEAM_ID", "TEAM_ABBREVIATION", "PTS_QTR1", "PTS_QTR2", "PTS_QTR3", "PTS_QTR4", "PTS_OT1", "PTS_OT2", "PTS"],
			"rowSet": [
				["0022600412", 1610612738, "BOS", 30, 28, 26, 20, 8, 0, 112],
				["0022600412", 1610612752, "NYK", 25, 30, 24, 25, 4, 0, 108]
			]
		}
	]
}`

func TestQuarterScoresByGame_MapsLineScoreRows(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/boxscoresummaryv2" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("GameID"); got != "0022600412" {
			t.Errorf("unexpected GameID %q", got)
		}
		_, _ = w.Write([]byte(summaryFixture))
	})

	quarters, err := client.QuarterScoresByGame(context.Background(), "0022600412")
	if err != nil {
		t.Fatalf("QuarterScoresByGame: %v", err)
	}
	if len(quarters) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(quarters))
	}

	home := quarters[0]
	if home.ProviderTeamID != "1610612738" {
		t.Fatalf("unexpected team id %q", home.ProviderTeamID)
	}
	if home.Q1 == nil || *home.Q1 != 30 || home.Q4 == nil || *home.Q4 != 20 {
		t.Fatalf("unexpected regulation totals %+v", home)
	}
	if home.OT == nil || *home.OT != 8 {
		t.Fatalf("expected overtime periods collapsed into 8, got %+v", home.OT)
	}
}

const rosterFixture = `{
	"resource": "commonteamroster",
	"resultSets": [
		{
			"name": "CommonTeamRoster",
			"headers": ["TeamID", "SEASON", "PLAYER_ID", "PLAYER", "FIRST_NAME", "LAST_NAME", "NUM", "POSITION"],
			"rowSet": [
				[1610612738, "2025", 1628369, "Jayson Tatum", "Jayson", "Tatum", "0", "F-G"],
				[1610612738, "2025", 1630573, "Sam Hauser", "Sam", "Hauser", "30", "F"]
			]
		}
	]
}`

func TestRosterByTeam_MapsRosterRows(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/commonteamroster" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("TeamID"); got != "1610612738" {
			t.Errorf("unexpected TeamID %q", got)
		}
		if got := r.URL.Query().Get("Season"); got != "2025-26" {
			t.Errorf("unexpected Season %q", got)
		}
		_, _ = w.Write([]byte(rosterFixture))
	})

	rows, err := client.RosterByTeam(context.Background(), "1610612738", 2025)
	if err != nil {
		t.Fatalf("RosterByTeam: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].ProviderPlayerID != "1628369" || rows[0].PlayerName != "Jayson Tatum" {
		t.Fatalf("unexpected first row %+v", rows[0])
	}
	if !rows[0].Active {
		t.Fatalf("expected roster rows to be active entries")
	}
}

func TestFormatSeason(t *testing.T) {
	t.Parallel()

	if got := formatSeason(2025); got != "2025-26" {
		t.Fatalf("expected 2025-26, got %q", got)
	}
	if got := formatSeason(2099); got != "2099-00" {
		t.Fatalf("expected 2099-00, got %q", got)
	}
}

func TestExecuteRequest_RetriesTransientStatus(t *testing.T) {
	t.Parallel()

	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(scoreboardFixture))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		HTTPClient: server.Client(),
		BaseURL:    server.URL,
		Logger:     logging.NewNop(),
	})

	if _, err := client.GamesByDate(context.Background(), time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("expected retry to recover, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
}

func TestExecuteRequest_DoesNotRetryClientError(t *testing.T) {
	t.Parallel()

	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		HTTPClient: server.Client(),
		BaseURL:    server.URL,
		Logger:     logging.NewNop(),
	})

	if _, err := client.GamesByDate(context.Background(), time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC)); err == nil {
		t.Fatalf("expected error for client status")
	}
	if calls != 1 {
		t.Fatalf("expected single call, got %d", calls)
	}
}

func TestParseSeason(t *testing.T) {
	t.Parallel()

	if got := parseSeason("2025"); got != 2025 {
		t.Fatalf("expected 2025, got %d", got)
	}
	if got := parseSeason("2025-26"); got != 2025 {
		t.Fatalf("expected 2025 from range form, got %d", got)
	}
	if got := parseSeason("n/a"); got != 0 {
		t.Fatalf("expected 0 for junk, got %d", got)
	}
}
