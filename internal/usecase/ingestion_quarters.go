package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/courtline/courtline/internal/domain/boxscore"
	"github.com/courtline/courtline/internal/domain/identity"
)

// QuarterObservation is one team's per-period point totals as a provider
// summary reports them.
type QuarterObservation struct {
	ProviderTeamID string
	Q1             *int
	Q2             *int
	Q3             *int
	Q4             *int
	OT             *int
}

func (q QuarterObservation) quarterScores() boxscore.QuarterScores {
	return boxscore.QuarterScores{Q1: q.Q1, Q2: q.Q2, Q3: q.Q3, Q4: q.Q4, OT: q.OT}
}

// ProviderQuarterSource fetches per-period team totals for one game. Sources
// that can do so get picked up by the quarter backfill.
type ProviderQuarterSource interface {
	QuarterScoresByGame(ctx context.Context, providerGameID string) ([]QuarterObservation, error)
}

// QuarterBackfillResult summarizes one quarter backfill run.
type QuarterBackfillResult struct {
	RunID    string         `json:"runId"`
	Examined int            `json:"examined"`
	Updated  int            `json:"updated"`
	Skipped  int            `json:"skipped"`
	Defects  []IngestDefect `json:"defects,omitempty"`
}

// BackfillQuarters fills per-period totals on team lines of Final games that
// have none yet. Totals come from provider summaries, so only games with a
// mapping for a quarter-capable source can be filled; the rest are skipped
// and picked up on a later run once the mapping exists.
func (s *IngestionService) BackfillQuarters(ctx context.Context) (QuarterBackfillResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionService.BackfillQuarters")
	defer span.End()

	runID, err := s.runIDs.NewID()
	if err != nil {
		return QuarterBackfillResult{}, fmt.Errorf("new run id: %w", err)
	}
	result := QuarterBackfillResult{RunID: runID}

	games, err := s.gameRepo.ListFinals(ctx, time.Time{})
	if err != nil {
		return result, fmt.Errorf("list finals: %w", err)
	}
	ids := make([]int64, 0, len(games))
	for _, g := range games {
		ids = append(ids, g.ID)
	}

	missing, err := s.boxscoreRepo.GameIDsMissingQuarterScores(ctx, ids)
	if err != nil {
		return result, fmt.Errorf("games missing quarter scores: %w", err)
	}
	result.Examined = len(missing)

	for _, g := range games {
		if !missing[g.ID] {
			continue
		}
		filled, err := s.backfillGameQuarters(ctx, g.ID, &result)
		if err != nil {
			return result, err
		}
		if filled {
			result.Updated++
		} else {
			result.Skipped++
		}
	}

	s.logger.InfoContext(ctx, "quarter backfill finished",
		"run_id", runID,
		"examined", result.Examined,
		"updated", result.Updated,
		"skipped", result.Skipped,
		"defects", len(result.Defects),
	)

	return result, nil
}

func (s *IngestionService) backfillGameQuarters(ctx context.Context, gameID int64, result *QuarterBackfillResult) (bool, error) {
	mappings, err := s.resolver.ListMappings(ctx, identity.EntityTypeGame, gameID)
	if err != nil {
		return false, err
	}
	byProvider := make(map[string]string, len(mappings))
	for _, m := range mappings {
		byProvider[m.Provider] = m.ProviderID
	}

	for _, source := range s.sources {
		quarterSource, ok := source.(ProviderQuarterSource)
		if !ok {
			continue
		}
		providerGameID, ok := byProvider[source.Name()]
		if !ok {
			continue
		}

		observations, err := quarterSource.QuarterScoresByGame(ctx, providerGameID)
		if err != nil {
			return false, fmt.Errorf("%w: %s quarter scores %s: %v", ErrUpstreamFailure, source.Name(), providerGameID, err)
		}

		applied := false
		for _, obs := range observations {
			scores := obs.quarterScores()
			if !scores.Reported() {
				continue
			}
			teamID, err := s.resolver.ResolveTeam(ctx, source.Name(), obs.ProviderTeamID, "")
			if err != nil {
				if errors.Is(err, ErrNotFound) || errors.Is(err, ErrAmbiguousMatch) {
					result.Defects = append(result.Defects, IngestDefect{
						Provider:   source.Name(),
						ProviderID: obs.ProviderTeamID,
						Entity:     identity.EntityTypeTeam,
						Detail:     err.Error(),
					})
					continue
				}
				return false, err
			}
			changed, err := s.boxscoreRepo.SetQuarterScores(ctx, gameID, teamID, scores)
			if err != nil {
				return false, fmt.Errorf("set quarter scores: %w", err)
			}
			if changed {
				applied = true
			}
		}
		if applied {
			return true, nil
		}
	}

	return false, nil
}
