package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/courtline/courtline/internal/domain/identity"
	"github.com/courtline/courtline/internal/domain/roster"
	"github.com/courtline/courtline/internal/domain/team"
)

// RosterObservation is one roster row as a provider reports it.
type RosterObservation struct {
	ProviderPlayerID string
	PlayerName       string
	FirstName        string
	LastName         string
	Active           bool
}

// ProviderRosterSource fetches a team's roster for one season.
type ProviderRosterSource interface {
	RosterByTeam(ctx context.Context, providerTeamID string, season int) ([]RosterObservation, error)
}

// RosterSyncResult summarizes one roster sync run.
type RosterSyncResult struct {
	RunID          string         `json:"runId"`
	Teams          int            `json:"teams"`
	EntriesApplied int            `json:"entriesApplied"`
	PlayersCreated int            `json:"playersCreated"`
	Defects        []IngestDefect `json:"defects,omitempty"`
}

// SyncRosters pulls every team's roster for the season from the first
// roster-capable source and upserts the entries. Players seen for the first
// time go through the same resolution ladder box score rows use, so the
// mapping is recorded and later stat ingestion resolves them directly.
func (s *IngestionService) SyncRosters(ctx context.Context, season int) (RosterSyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionService.SyncRosters")
	defer span.End()

	if season <= 0 {
		return RosterSyncResult{}, fmt.Errorf("%w: season is required", ErrInvalidInput)
	}

	runID, err := s.runIDs.NewID()
	if err != nil {
		return RosterSyncResult{}, fmt.Errorf("new run id: %w", err)
	}
	result := RosterSyncResult{RunID: runID}

	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return result, fmt.Errorf("list teams: %w", err)
	}

	for _, source := range s.sources {
		rosterSource, ok := source.(ProviderRosterSource)
		if !ok {
			continue
		}
		for _, t := range teams {
			if err := s.syncTeamRoster(ctx, rosterSource, source.Name(), t, season, &result); err != nil {
				return result, err
			}
		}
		result.Teams = len(teams)
		// Rosters are not cross-referenced between providers; the first
		// capable source wins.
		break
	}

	s.logger.InfoContext(ctx, "roster sync finished",
		"run_id", runID,
		"season", season,
		"teams", result.Teams,
		"entries_applied", result.EntriesApplied,
		"players_created", result.PlayersCreated,
		"defects", len(result.Defects),
	)

	return result, nil
}

func (s *IngestionService) syncTeamRoster(ctx context.Context, src ProviderRosterSource, provider string, t team.Team, season int, result *RosterSyncResult) error {
	mappings, err := s.resolver.ListMappings(ctx, identity.EntityTypeTeam, t.ID)
	if err != nil {
		return err
	}
	providerTeamID := ""
	for _, m := range mappings {
		if m.Provider == provider {
			providerTeamID = m.ProviderID
			break
		}
	}
	if providerTeamID == "" {
		result.Defects = append(result.Defects, IngestDefect{
			Provider:   provider,
			ProviderID: t.Abbreviation,
			Entity:     identity.EntityTypeTeam,
			Detail:     fmt.Sprintf("team %d has no %s mapping for the roster fetch", t.ID, provider),
		})
		return nil
	}

	rows, err := src.RosterByTeam(ctx, providerTeamID, season)
	if err != nil {
		return fmt.Errorf("%w: %s roster team=%s season=%d: %v", ErrUpstreamFailure, provider, providerTeamID, season, err)
	}

	for _, row := range rows {
		playerID, err := s.resolver.ResolvePlayer(ctx, provider, row.ProviderPlayerID, row.PlayerName)
		switch {
		case err == nil:
		case errors.Is(err, ErrAmbiguousMatch):
			result.Defects = append(result.Defects, IngestDefect{
				Provider:   provider,
				ProviderID: row.ProviderPlayerID,
				Entity:     identity.EntityTypePlayer,
				Detail:     err.Error(),
			})
			continue
		case errors.Is(err, ErrNotFound):
			playerID, err = s.createPlayer(ctx, provider, PlayerStatObservation{
				ProviderPlayerID: row.ProviderPlayerID,
				PlayerName:       row.PlayerName,
				FirstName:        row.FirstName,
				LastName:         row.LastName,
			})
			if err != nil {
				if errors.Is(err, ErrInvalidInput) {
					result.Defects = append(result.Defects, IngestDefect{
						Provider:   provider,
						ProviderID: row.ProviderPlayerID,
						Entity:     identity.EntityTypePlayer,
						Detail:     err.Error(),
					})
					continue
				}
				return err
			}
			result.PlayersCreated++
		default:
			return err
		}

		entry := roster.Entry{
			PlayerID: playerID,
			TeamID:   t.ID,
			Season:   season,
			Active:   row.Active,
		}
		if err := s.rosterRepo.Upsert(ctx, entry); err != nil {
			return fmt.Errorf("upsert roster entry: %w", err)
		}
		result.EntriesApplied++
	}

	return nil
}
