package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/courtline/courtline/internal/domain/player"
)

func (h *Handler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPlayers")
	defer span.End()

	limit, offset, err := queryPage(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("search"))
	page, err := h.playerService.Search(ctx, query, limit, offset)
	if err != nil {
		h.logger.WarnContext(ctx, "search players failed", "query", query, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]playerDTO, 0, len(page.Players))
	for _, p := range page.Players {
		items = append(items, playerToDTO(ctx, p))
	}

	writeSuccess(ctx, w, http.StatusOK, playerPageDTO{
		Items:   items,
		Total:   page.Total,
		HasMore: page.HasMore,
	})
}

func (h *Handler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPlayer")
	defer span.End()

	playerID, err := pathID(r, "playerID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	p, err := h.playerService.Get(ctx, playerID)
	if err != nil {
		h.logger.WarnContext(ctx, "get player failed", "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, playerToDTO(ctx, p))
}

func (h *Handler) GetPlayerGameLog(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPlayerGameLog")
	defer span.End()

	playerID, err := pathID(r, "playerID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	limit, offset, err := queryPage(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	log, err := h.playerService.GameLog(ctx, playerID, limit, offset)
	if err != nil {
		h.logger.WarnContext(ctx, "get game log failed", "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	lines := make([]playerLineDTO, 0, len(log.Lines))
	for _, l := range log.Lines {
		lines = append(lines, playerLineToDTO(ctx, l))
	}

	writeSuccess(ctx, w, http.StatusOK, gameLogDTO{
		Lines:   lines,
		Total:   log.Total,
		HasMore: log.HasMore,
	})
}

type playerPageDTO struct {
	Items   []playerDTO `json:"items"`
	Total   int         `json:"total"`
	HasMore bool        `json:"hasMore"`
}

type playerDTO struct {
	ID           int64  `json:"id"`
	FullName     string `json:"fullName"`
	FirstName    string `json:"firstName,omitempty"`
	LastName     string `json:"lastName,omitempty"`
	BirthDate    string `json:"birthDate,omitempty"`
	HeightInches *int   `json:"heightInches,omitempty"`
	WeightLbs    *int   `json:"weightLbs,omitempty"`
}

type gameLogDTO struct {
	Lines   []playerLineDTO `json:"lines"`
	Total   int             `json:"total"`
	HasMore bool            `json:"hasMore"`
}

func playerToDTO(ctx context.Context, p player.Player) playerDTO {
	ctx, span := startSpan(ctx, "httpapi.playerToDTO")
	defer span.End()

	dto := playerDTO{
		ID:           p.ID,
		FullName:     p.FullName,
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		HeightInches: p.HeightInches,
		WeightLbs:    p.WeightLbs,
	}
	if p.BirthDate != nil {
		dto.BirthDate = p.BirthDate.UTC().Format(time.DateOnly)
	}
	return dto
}
