package httpapi

import (
	"context"
	"net/http"

	"github.com/courtline/courtline/internal/domain/roster"
	"github.com/courtline/courtline/internal/domain/team"
)

func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTeams")
	defer span.End()

	teams, err := h.teamService.List(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "list teams failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]teamDTO, 0, len(teams))
	for _, t := range teams {
		items = append(items, teamToDTO(ctx, t))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTeam")
	defer span.End()

	teamID, err := pathID(r, "teamID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	t, err := h.teamService.Get(ctx, teamID)
	if err != nil {
		h.logger.WarnContext(ctx, "get team failed", "team_id", teamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, teamToDTO(ctx, t))
}

func (h *Handler) GetTeamRoster(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTeamRoster")
	defer span.End()

	teamID, err := pathID(r, "teamID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	season, err := queryInt(r, "season")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	entries, err := h.teamService.Roster(ctx, teamID, season)
	if err != nil {
		h.logger.WarnContext(ctx, "get roster failed", "team_id", teamID, "season", season, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]rosterEntryDTO, 0, len(entries))
	for _, e := range entries {
		items = append(items, rosterEntryToDTO(ctx, e))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetTeamRecord(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTeamRecord")
	defer span.End()

	teamID, err := pathID(r, "teamID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	cutoff, err := queryCutoff(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	record, err := h.teamService.Record(ctx, teamID, cutoff)
	if err != nil {
		h.logger.WarnContext(ctx, "get record failed", "team_id", teamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, record)
}

type teamDTO struct {
	ID           int64  `json:"id"`
	Abbreviation string `json:"abbreviation"`
	Name         string `json:"name"`
	Conference   string `json:"conference,omitempty"`
	Division     string `json:"division,omitempty"`
}

type rosterEntryDTO struct {
	PlayerID int64 `json:"playerId"`
	TeamID   int64 `json:"teamId"`
	Season   int   `json:"season"`
	Active   bool  `json:"active"`
}

func teamToDTO(ctx context.Context, t team.Team) teamDTO {
	ctx, span := startSpan(ctx, "httpapi.teamToDTO")
	defer span.End()

	return teamDTO{
		ID:           t.ID,
		Abbreviation: t.Abbreviation,
		Name:         t.Name,
		Conference:   t.Conference,
		Division:     t.Division,
	}
}

func rosterEntryToDTO(ctx context.Context, e roster.Entry) rosterEntryDTO {
	ctx, span := startSpan(ctx, "httpapi.rosterEntryToDTO")
	defer span.End()

	return rosterEntryDTO{
		PlayerID: e.PlayerID,
		TeamID:   e.TeamID,
		Season:   e.Season,
		Active:   e.Active,
	}
}
