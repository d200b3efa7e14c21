package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	mux.HandleFunc("GET /readyz", handler.Readyz)
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /api/v1/games", handler.ListGames)
	mux.HandleFunc("GET /api/v1/games/{gameID}", handler.GetGame)
	mux.HandleFunc("GET /api/v1/games/{gameID}/boxscore", handler.GetGameBoxScore)
	mux.HandleFunc("GET /api/v1/teams", handler.ListTeams)
	mux.HandleFunc("GET /api/v1/teams/{teamID}", handler.GetTeam)
	mux.HandleFunc("GET /api/v1/teams/{teamID}/roster", handler.GetTeamRoster)
	mux.HandleFunc("GET /api/v1/teams/{teamID}/record", handler.GetTeamRecord)
	mux.HandleFunc("GET /api/v1/players", handler.ListPlayers)
	mux.HandleFunc("GET /api/v1/players/{playerID}", handler.GetPlayer)
	mux.HandleFunc("GET /api/v1/players/{playerID}/gamelog", handler.GetPlayerGameLog)
	mux.HandleFunc("GET /api/v1/coverage", handler.GetCoverage)
	mux.HandleFunc("GET /api/v1/standings", handler.ListStandings)
}

func registerInternalRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /internal/jobs/status-sweep", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunStatusSweepJob)))
	mux.Handle("POST /internal/jobs/crossref-sweep", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunCrossRefSweepJob)))
	mux.Handle("POST /internal/jobs/score-backfill", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunScoreBackfillJob)))
	mux.Handle("GET /internal/jobs/unmapped", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.ListUnmapped)))
	mux.Handle("GET /internal/mappings", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.ListMappings)))
	mux.Handle("POST /internal/mappings", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RecordMapping)))
}
