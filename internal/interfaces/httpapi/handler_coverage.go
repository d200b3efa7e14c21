package httpapi

import (
	"net/http"
)

// GetCoverage reports box-score coverage. With team_id it scopes to one
// team, otherwise it rolls up the whole league.
func (h *Handler) GetCoverage(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetCoverage")
	defer span.End()

	teamID, err := queryInt64(r, "team_id")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	cutoff, err := queryCutoff(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var report any
	if teamID > 0 {
		report, err = h.coverageService.TeamReport(ctx, teamID, cutoff)
	} else {
		report, err = h.coverageService.LeagueReport(ctx, cutoff)
	}
	if err != nil {
		h.logger.WarnContext(ctx, "coverage report failed", "team_id", teamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, report)
}

func (h *Handler) ListStandings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListStandings")
	defer span.End()

	cutoff, err := queryCutoff(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	standings, err := h.coverageService.Standings(ctx, cutoff)
	if err != nil {
		h.logger.WarnContext(ctx, "standings failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, standings)
}
