package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/courtline/courtline/internal/domain/boxscore"
	"github.com/courtline/courtline/internal/domain/game"
	"github.com/courtline/courtline/internal/usecase"
)

func (h *Handler) ListGames(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListGames")
	defer span.End()

	season, err := queryInt(r, "season")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	teamID, err := queryInt64(r, "team_id")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	limit, offset, err := queryPage(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if date != "" {
		if _, perr := time.Parse("2006-01-02", date); perr != nil {
			writeError(ctx, w, fmt.Errorf("%w: date must be YYYY-MM-DD", usecase.ErrInvalidInput))
			return
		}
	}

	page, err := h.gameService.List(ctx, game.Filter{
		Season: season,
		Date:   date,
		Status: strings.TrimSpace(r.URL.Query().Get("status")),
		TeamID: teamID,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "list games failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]gameDTO, 0, len(page.Games))
	for _, g := range page.Games {
		items = append(items, gameToDTO(ctx, g))
	}

	writeSuccess(ctx, w, http.StatusOK, gamePageDTO{
		Items:   items,
		Total:   page.Total,
		HasMore: page.HasMore,
	})
}

func (h *Handler) GetGame(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetGame")
	defer span.End()

	gameID, err := pathID(r, "gameID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	detail, err := h.gameService.Get(ctx, gameID)
	if err != nil {
		h.logger.WarnContext(ctx, "get game failed", "game_id", gameID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, gameDetailDTO{
		Game:            gameToDTO(ctx, detail.Game),
		BoxScoreSources: append([]string(nil), detail.BoxScoreSources...),
		HasPlayerStats:  detail.HasPlayerStats,
	})
}

func (h *Handler) GetGameBoxScore(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetGameBoxScore")
	defer span.End()

	gameID, err := pathID(r, "gameID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	box, err := h.gameService.BoxScore(ctx, gameID)
	if err != nil {
		h.logger.WarnContext(ctx, "get box score failed", "game_id", gameID, "error", err)
		writeError(ctx, w, err)
		return
	}

	playerLines := make([]playerLineDTO, 0, len(box.PlayerLines))
	for _, line := range box.PlayerLines {
		playerLines = append(playerLines, playerLineToDTO(ctx, line))
	}
	teamLines := make([]teamLineDTO, 0, len(box.TeamLines))
	for _, line := range box.TeamLines {
		teamLines = append(teamLines, teamLineToDTO(ctx, line))
	}

	writeSuccess(ctx, w, http.StatusOK, boxScoreDTO{
		Game:        gameToDTO(ctx, box.Game),
		PlayerLines: playerLines,
		TeamLines:   teamLines,
	})
}

type gamePageDTO struct {
	Items   []gameDTO `json:"items"`
	Total   int       `json:"total"`
	HasMore bool      `json:"hasMore"`
}

type gameDTO struct {
	ID         int64  `json:"id"`
	Season     int    `json:"season"`
	StartTime  string `json:"startTime"`
	Status     string `json:"status"`
	HomeTeamID int64  `json:"homeTeamId"`
	AwayTeamID int64  `json:"awayTeamId"`
	HomeScore  *int   `json:"homeScore"`
	AwayScore  *int   `json:"awayScore"`
	Venue      string `json:"venue,omitempty"`
}

type gameDetailDTO struct {
	Game            gameDTO  `json:"game"`
	BoxScoreSources []string `json:"boxScoreSources"`
	HasPlayerStats  bool     `json:"hasPlayerStats"`
}

type boxScoreDTO struct {
	Game        gameDTO         `json:"game"`
	PlayerLines []playerLineDTO `json:"playerLines"`
	TeamLines   []teamLineDTO   `json:"teamLines"`
}

type playerLineDTO struct {
	GameID              int64    `json:"gameId"`
	PlayerID            int64    `json:"playerId"`
	TeamID              int64    `json:"teamId"`
	Source              string   `json:"source"`
	Minutes             *float64 `json:"minutes"`
	Points              int      `json:"points"`
	Rebounds            int      `json:"rebounds"`
	Assists             int      `json:"assists"`
	Steals              int      `json:"steals"`
	Blocks              int      `json:"blocks"`
	Turnovers           int      `json:"turnovers"`
	FieldGoalsMade      int      `json:"fieldGoalsMade"`
	FieldGoalsAttempted int      `json:"fieldGoalsAttempted"`
	ThreesMade          int      `json:"threesMade"`
	ThreesAttempted     int      `json:"threesAttempted"`
	FreeThrowsMade      int      `json:"freeThrowsMade"`
	FreeThrowsAttempted int      `json:"freeThrowsAttempted"`
	PlusMinus           *int     `json:"plusMinus"`
	Started             bool     `json:"started"`
	DNPReason           string   `json:"dnpReason,omitempty"`
}

type teamLineDTO struct {
	GameID              int64  `json:"gameId"`
	TeamID              int64  `json:"teamId"`
	Source              string `json:"source"`
	PointsQ1            *int   `json:"pointsQ1"`
	PointsQ2            *int   `json:"pointsQ2"`
	PointsQ3            *int   `json:"pointsQ3"`
	PointsQ4            *int   `json:"pointsQ4"`
	PointsOT            *int   `json:"pointsOT"`
	Points              int    `json:"points"`
	Rebounds            int    `json:"rebounds"`
	Assists             int    `json:"assists"`
	Steals              int    `json:"steals"`
	Blocks              int    `json:"blocks"`
	Turnovers           int    `json:"turnovers"`
	FieldGoalsMade      int    `json:"fieldGoalsMade"`
	FieldGoalsAttempted int    `json:"fieldGoalsAttempted"`
	ThreesMade          int    `json:"threesMade"`
	ThreesAttempted     int    `json:"threesAttempted"`
	FreeThrowsMade      int    `json:"freeThrowsMade"`
	FreeThrowsAttempted int    `json:"freeThrowsAttempted"`
}

func gameToDTO(ctx context.Context, g game.Game) gameDTO {
	ctx, span := startSpan(ctx, "httpapi.gameToDTO")
	defer span.End()

	return gameDTO{
		ID:         g.ID,
		Season:     g.Season,
		StartTime:  g.StartTime.UTC().Format(time.RFC3339),
		Status:     g.Status,
		HomeTeamID: g.HomeTeamID,
		AwayTeamID: g.AwayTeamID,
		HomeScore:  g.HomeScore,
		AwayScore:  g.AwayScore,
		Venue:      g.Venue,
	}
}

func playerLineToDTO(ctx context.Context, line boxscore.PlayerLine) playerLineDTO {
	ctx, span := startSpan(ctx, "httpapi.playerLineToDTO")
	defer span.End()

	return playerLineDTO{
		GameID:              line.GameID,
		PlayerID:            line.PlayerID,
		TeamID:              line.TeamID,
		Source:              line.Source,
		Minutes:             line.Minutes,
		Points:              line.Points,
		Rebounds:            line.Rebounds,
		Assists:             line.Assists,
		Steals:              line.Steals,
		Blocks:              line.Blocks,
		Turnovers:           line.Turnovers,
		FieldGoalsMade:      line.FieldGoalsMade,
		FieldGoalsAttempted: line.FieldGoalsAttempted,
		ThreesMade:          line.ThreesMade,
		ThreesAttempted:     line.ThreesAttempted,
		FreeThrowsMade:      line.FreeThrowsMade,
		FreeThrowsAttempted: line.FreeThrowsAttempted,
		PlusMinus:           line.PlusMinus,
		Started:             line.Started,
		DNPReason:           line.DNPReason,
	}
}

func teamLineToDTO(ctx context.Context, line boxscore.TeamLine) teamLineDTO {
	ctx, span := startSpan(ctx, "httpapi.teamLineToDTO")
	defer span.End()

	return teamLineDTO{
		GameID:              line.GameID,
		TeamID:              line.TeamID,
		Source:              line.Source,
		PointsQ1:            line.Quarters.Q1,
		PointsQ2:            line.Quarters.Q2,
		PointsQ3:            line.Quarters.Q3,
		PointsQ4:            line.Quarters.Q4,
		PointsOT:            line.Quarters.OT,
		Points:              line.Points,
		Rebounds:            line.Rebounds,
		Assists:             line.Assists,
		Steals:              line.Steals,
		Blocks:              line.Blocks,
		Turnovers:           line.Turnovers,
		FieldGoalsMade:      line.FieldGoalsMade,
		FieldGoalsAttempted: line.FieldGoalsAttempted,
		ThreesMade:          line.ThreesMade,
		ThreesAttempted:     line.ThreesAttempted,
		FreeThrowsMade:      line.FreeThrowsMade,
		FreeThrowsAttempted: line.FreeThrowsAttempted,
	}
}
