package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/courtline/courtline/internal/domain/boxscore"
	"github.com/courtline/courtline/internal/domain/game"
	"github.com/courtline/courtline/internal/domain/identity"
	"github.com/courtline/courtline/internal/domain/player"
	"github.com/courtline/courtline/internal/domain/roster"
	"github.com/courtline/courtline/internal/domain/team"
	"github.com/courtline/courtline/internal/platform/logging"
)

// GameObservation is one provider's view of one game.
type GameObservation struct {
	Provider           string
	ProviderGameID     string
	Season             int
	StartTime          time.Time
	HomeAbbr           string
	AwayAbbr           string
	HomeProviderTeamID string
	AwayProviderTeamID string
	HomeScore          *int
	AwayScore          *int
	RawStatus          string
	Venue              string
}

// PlayerStatObservation is one provider row of a box score.
type PlayerStatObservation struct {
	ProviderPlayerID    string
	PlayerName          string
	FirstName           string
	LastName            string
	TeamAbbr            string
	ProviderTeamID      string
	Minutes             string
	StartPosition       string
	Comment             string
	Points              int
	Rebounds            int
	Assists             int
	Steals              int
	Blocks              int
	Turnovers           int
	FieldGoalsMade      int
	FieldGoalsAttempted int
	ThreesMade          int
	ThreesAttempted     int
	FreeThrowsMade      int
	FreeThrowsAttempted int
	PlusMinus           *int
}

// BoxScoreObservation is a provider's full box score for one game.
type BoxScoreObservation struct {
	Provider       string
	ProviderGameID string
	Game           GameCandidate
	Season         int
	Lines          []PlayerStatObservation
}

// IngestDefect is a row the pipeline refused to apply, with the reason.
type IngestDefect struct {
	Provider   string `json:"provider"`
	ProviderID string `json:"providerId"`
	Entity     string `json:"entity"`
	Detail     string `json:"detail"`
}

// IngestResult summarizes one ingestion call. Defects are reported, never
// silently guessed around.
type IngestResult struct {
	RunID            string         `json:"runId"`
	GamesApplied     int            `json:"gamesApplied"`
	GamesCreated     int            `json:"gamesCreated"`
	LinesApplied     int            `json:"linesApplied"`
	PlayersCreated   int            `json:"playersCreated"`
	TeamLinesDerived int            `json:"teamLinesDerived"`
	Defects          []IngestDefect `json:"defects,omitempty"`
	Conflicts        []IngestDefect `json:"conflicts,omitempty"`
}

// ProviderGameSource lists a provider's games for one calendar date. The
// external clients implement this.
type ProviderGameSource interface {
	Name() string
	GamesByDate(ctx context.Context, date time.Time) ([]GameObservation, error)
}

// ProviderBoxScoreSource fetches one game's full box score. Sources that can
// do so get their final games' stats pulled during the daily ingest.
type ProviderBoxScoreSource interface {
	BoxScoreByGame(ctx context.Context, providerGameID string) (BoxScoreObservation, error)
}

// IngestionService turns provider observations into store rows: resolve,
// guarded game upsert, player resolution ladder, stat upsert, team line
// derivation. All writes are keyed upserts or guarded updates, so repeated
// ingestion of the same payload converges.
type IngestionService struct {
	resolver            *ResolverService
	gameRepo            game.Repository
	teamRepo            team.Repository
	playerRepo          player.Repository
	boxscoreRepo        boxscore.Repository
	rosterRepo          roster.Repository
	sources             []ProviderGameSource
	runIDs              IDSource
	logger              *logging.Logger
	refLoc              *time.Location
	authoritativeSource string
}

func NewIngestionService(
	resolver *ResolverService,
	gameRepo game.Repository,
	teamRepo team.Repository,
	playerRepo player.Repository,
	boxscoreRepo boxscore.Repository,
	rosterRepo roster.Repository,
	sources []ProviderGameSource,
	runIDs IDSource,
	logger *logging.Logger,
	refLoc *time.Location,
	authoritativeSource string,
) *IngestionService {
	if refLoc == nil {
		refLoc = time.UTC
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	return &IngestionService{
		resolver:            resolver,
		gameRepo:            gameRepo,
		teamRepo:            teamRepo,
		playerRepo:          playerRepo,
		boxscoreRepo:        boxscoreRepo,
		rosterRepo:          rosterRepo,
		sources:             sources,
		runIDs:              runIDs,
		logger:              logger,
		refLoc:              refLoc,
		authoritativeSource: authoritativeSource,
	}
}

// IngestGames applies game observations through the guarded upsert. Games
// that resolve to nothing are created; ambiguous matches are reported and
// skipped.
func (s *IngestionService) IngestGames(ctx context.Context, observations []GameObservation) (IngestResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionService.IngestGames")
	defer span.End()

	runID, err := s.runIDs.NewID()
	if err != nil {
		return IngestResult{}, fmt.Errorf("new run id: %w", err)
	}
	result := IngestResult{RunID: runID}

	for _, obs := range observations {
		if err := s.ingestGame(ctx, obs, &result); err != nil {
			return result, err
		}
	}

	s.logger.InfoContext(ctx, "game ingestion finished",
		"run_id", runID,
		"observed", len(observations),
		"applied", result.GamesApplied,
		"created", result.GamesCreated,
		"defects", len(result.Defects),
	)

	return result, nil
}

func (s *IngestionService) ingestGame(ctx context.Context, obs GameObservation, result *IngestResult) error {
	status, ok := game.ParseStatus(obs.RawStatus)
	if !ok {
		result.Defects = append(result.Defects, IngestDefect{
			Provider:   obs.Provider,
			ProviderID: obs.ProviderGameID,
			Entity:     identity.EntityTypeGame,
			Detail:     fmt.Sprintf("unrecognized status %q", obs.RawStatus),
		})
		return nil
	}

	gameID, err := s.resolver.ResolveGame(ctx, obs.Provider, obs.ProviderGameID, GameCandidate{
		StartTime: obs.StartTime,
		HomeAbbr:  obs.HomeAbbr,
		AwayAbbr:  obs.AwayAbbr,
	})
	switch {
	case err == nil:
	case errors.Is(err, ErrAmbiguousMatch):
		result.Defects = append(result.Defects, IngestDefect{
			Provider:   obs.Provider,
			ProviderID: obs.ProviderGameID,
			Entity:     identity.EntityTypeGame,
			Detail:     err.Error(),
		})
		return nil
	case errors.Is(err, ErrNotFound):
		gameID, err = s.createGame(ctx, obs, status)
		if err != nil {
			if errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrNotFound) {
				result.Defects = append(result.Defects, IngestDefect{
					Provider:   obs.Provider,
					ProviderID: obs.ProviderGameID,
					Entity:     identity.EntityTypeGame,
					Detail:     err.Error(),
				})
				return nil
			}
			return err
		}
		result.GamesCreated++
	default:
		return err
	}

	if err := s.gameRepo.ApplyObservation(ctx, game.Observation{
		GameID:    gameID,
		Status:    status,
		HomeScore: obs.HomeScore,
		AwayScore: obs.AwayScore,
	}); err != nil {
		return fmt.Errorf("apply game observation: %w", err)
	}
	result.GamesApplied++

	return nil
}

func (s *IngestionService) createGame(ctx context.Context, obs GameObservation, status string) (int64, error) {
	homeTeamID, err := s.resolver.ResolveTeam(ctx, obs.Provider, obs.HomeProviderTeamID, obs.HomeAbbr)
	if err != nil {
		return 0, err
	}
	awayTeamID, err := s.resolver.ResolveTeam(ctx, obs.Provider, obs.AwayProviderTeamID, obs.AwayAbbr)
	if err != nil {
		return 0, err
	}

	g := game.Game{
		Season:     obs.Season,
		StartTime:  obs.StartTime,
		Status:     status,
		HomeTeamID: homeTeamID,
		AwayTeamID: awayTeamID,
		HomeScore:  obs.HomeScore,
		AwayScore:  obs.AwayScore,
		Venue:      obs.Venue,
	}
	if err := g.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	gameID, err := s.gameRepo.Create(ctx, g)
	if err != nil {
		return 0, fmt.Errorf("create game: %w", err)
	}

	if err := s.resolver.RecordMapping(ctx, identity.Mapping{
		EntityType: identity.EntityTypeGame,
		Provider:   obs.Provider,
		ProviderID: obs.ProviderGameID,
		InternalID: gameID,
	}); err != nil {
		return 0, err
	}

	return gameID, nil
}

// IngestDay pulls one calendar date's slate from every registered source,
// applies the games, then pulls box scores for the final ones where the
// source can supply them.
func (s *IngestionService) IngestDay(ctx context.Context, date time.Time) (IngestResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionService.IngestDay")
	defer span.End()

	runID, err := s.runIDs.NewID()
	if err != nil {
		return IngestResult{}, fmt.Errorf("new run id: %w", err)
	}
	total := IngestResult{RunID: runID}

	for _, source := range s.sources {
		observations, err := source.GamesByDate(ctx, date)
		if err != nil {
			return total, fmt.Errorf("%w: %s games for %s: %v", ErrUpstreamFailure, source.Name(), date.Format("2006-01-02"), err)
		}

		games, err := s.IngestGames(ctx, observations)
		mergeIngestResults(&total, games)
		if err != nil {
			return total, err
		}

		boxSource, ok := source.(ProviderBoxScoreSource)
		if !ok {
			continue
		}
		for _, obs := range observations {
			status, parsed := game.ParseStatus(obs.RawStatus)
			if !parsed || status != game.StatusFinal {
				continue
			}
			box, err := boxSource.BoxScoreByGame(ctx, obs.ProviderGameID)
			if err != nil {
				return total, fmt.Errorf("%w: %s box score %s: %v", ErrUpstreamFailure, source.Name(), obs.ProviderGameID, err)
			}
			// Box score payloads rarely carry the season; the slate does,
			// and the roster check needs it.
			if box.Season == 0 {
				box.Season = obs.Season
			}
			applied, err := s.IngestBoxScore(ctx, box)
			mergeIngestResults(&total, applied)
			if err != nil {
				return total, err
			}
		}
	}

	s.logger.InfoContext(ctx, "daily ingestion finished",
		"run_id", runID,
		"date", date.Format("2006-01-02"),
		"games_applied", total.GamesApplied,
		"lines_applied", total.LinesApplied,
		"defects", len(total.Defects),
		"conflicts", len(total.Conflicts),
	)

	return total, nil
}

func mergeIngestResults(total *IngestResult, part IngestResult) {
	total.GamesApplied += part.GamesApplied
	total.GamesCreated += part.GamesCreated
	total.LinesApplied += part.LinesApplied
	total.PlayersCreated += part.PlayersCreated
	total.TeamLinesDerived += part.TeamLinesDerived
	total.Defects = append(total.Defects, part.Defects...)
	total.Conflicts = append(total.Conflicts, part.Conflicts...)
}

// IngestBoxScore applies one provider box score: resolve the game, run the
// player resolution ladder per row, upsert the lines, then derive per-team
// aggregate lines from the same source only.
func (s *IngestionService) IngestBoxScore(ctx context.Context, obs BoxScoreObservation) (IngestResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionService.IngestBoxScore")
	defer span.End()

	runID, err := s.runIDs.NewID()
	if err != nil {
		return IngestResult{}, fmt.Errorf("new run id: %w", err)
	}
	result := IngestResult{RunID: runID}

	gameID, err := s.resolver.ResolveGame(ctx, obs.Provider, obs.ProviderGameID, obs.Game)
	if err != nil {
		if errors.Is(err, ErrAmbiguousMatch) || errors.Is(err, ErrNotFound) {
			result.Defects = append(result.Defects, IngestDefect{
				Provider:   obs.Provider,
				ProviderID: obs.ProviderGameID,
				Entity:     identity.EntityTypeGame,
				Detail:     err.Error(),
			})
			return result, nil
		}
		return result, err
	}

	lines := make([]boxscore.PlayerLine, 0, len(obs.Lines))
	for _, row := range obs.Lines {
		line, ok, err := s.resolveStatRow(ctx, obs, gameID, row, &result)
		if err != nil {
			return result, err
		}
		if ok {
			lines = append(lines, line)
		}
	}

	if len(lines) > 0 {
		if err := s.boxscoreRepo.UpsertPlayerLines(ctx, lines); err != nil {
			return result, fmt.Errorf("upsert player lines: %w", err)
		}
		result.LinesApplied = len(lines)
	}

	if err := s.deriveTeamLines(ctx, lines, &result); err != nil {
		return result, err
	}
	if err := s.detectScoreConflicts(ctx, gameID, obs.Provider, &result); err != nil {
		return result, err
	}
	s.reportRosterGaps(ctx, obs.Season, lines, &result)

	s.logger.InfoContext(ctx, "box score ingestion finished",
		"run_id", runID,
		"provider", obs.Provider,
		"game_id", gameID,
		"lines", result.LinesApplied,
		"players_created", result.PlayersCreated,
		"defects", len(result.Defects),
		"conflicts", len(result.Conflicts),
	)

	return result, nil
}

// resolveStatRow runs the player resolution ladder: provider map, exact
// name, folded name, then create. Every successful resolution records the
// mapping so the next ingest is a direct lookup.
func (s *IngestionService) resolveStatRow(ctx context.Context, obs BoxScoreObservation, gameID int64, row PlayerStatObservation, result *IngestResult) (boxscore.PlayerLine, bool, error) {
	teamID, err := s.resolver.ResolveTeam(ctx, obs.Provider, row.ProviderTeamID, row.TeamAbbr)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrAmbiguousMatch) {
			result.Defects = append(result.Defects, IngestDefect{
				Provider:   obs.Provider,
				ProviderID: row.ProviderTeamID,
				Entity:     identity.EntityTypeTeam,
				Detail:     err.Error(),
			})
			return boxscore.PlayerLine{}, false, nil
		}
		return boxscore.PlayerLine{}, false, err
	}

	playerID, err := s.resolver.ResolvePlayer(ctx, obs.Provider, row.ProviderPlayerID, row.PlayerName)
	switch {
	case err == nil:
	case errors.Is(err, ErrAmbiguousMatch):
		result.Defects = append(result.Defects, IngestDefect{
			Provider:   obs.Provider,
			ProviderID: row.ProviderPlayerID,
			Entity:     identity.EntityTypePlayer,
			Detail:     err.Error(),
		})
		return boxscore.PlayerLine{}, false, nil
	case errors.Is(err, ErrNotFound):
		playerID, err = s.createPlayer(ctx, obs.Provider, row)
		if err != nil {
			return boxscore.PlayerLine{}, false, err
		}
		result.PlayersCreated++
	default:
		return boxscore.PlayerLine{}, false, err
	}

	minutes, err := boxscore.ParseMinutes(row.Minutes)
	if err != nil {
		result.Defects = append(result.Defects, IngestDefect{
			Provider:   obs.Provider,
			ProviderID: row.ProviderPlayerID,
			Entity:     identity.EntityTypePlayer,
			Detail:     err.Error(),
		})
		return boxscore.PlayerLine{}, false, nil
	}

	line := boxscore.PlayerLine{
		GameID:              gameID,
		PlayerID:            playerID,
		TeamID:              teamID,
		Source:              obs.Provider,
		Minutes:             minutes,
		Points:              row.Points,
		Rebounds:            row.Rebounds,
		Assists:             row.Assists,
		Steals:              row.Steals,
		Blocks:              row.Blocks,
		Turnovers:           row.Turnovers,
		FieldGoalsMade:      row.FieldGoalsMade,
		FieldGoalsAttempted: row.FieldGoalsAttempted,
		ThreesMade:          row.ThreesMade,
		ThreesAttempted:     row.ThreesAttempted,
		FreeThrowsMade:      row.FreeThrowsMade,
		FreeThrowsAttempted: row.FreeThrowsAttempted,
		PlusMinus:           row.PlusMinus,
		Started:             strings.TrimSpace(row.StartPosition) != "",
	}
	// The comment column carries a DNP reason only for players who never
	// took the floor.
	if minutes == nil {
		line.DNPReason = strings.TrimSpace(row.Comment)
	}

	return line, true, nil
}

func (s *IngestionService) createPlayer(ctx context.Context, provider string, row PlayerStatObservation) (int64, error) {
	p := player.Player{
		FullName:  strings.TrimSpace(row.PlayerName),
		FirstName: strings.TrimSpace(row.FirstName),
		LastName:  strings.TrimSpace(row.LastName),
	}
	if err := p.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	playerID, err := s.playerRepo.Create(ctx, p)
	if err != nil {
		return 0, fmt.Errorf("create player: %w", err)
	}

	if err := s.resolver.RecordMapping(ctx, identity.Mapping{
		EntityType: identity.EntityTypePlayer,
		Provider:   provider,
		ProviderID: row.ProviderPlayerID,
		InternalID: playerID,
	}); err != nil {
		return 0, err
	}

	return playerID, nil
}

func (s *IngestionService) deriveTeamLines(ctx context.Context, lines []boxscore.PlayerLine, result *IngestResult) error {
	byTeam := make(map[int64][]boxscore.PlayerLine)
	for _, l := range lines {
		byTeam[l.TeamID] = append(byTeam[l.TeamID], l)
	}

	for _, teamLines := range byTeam {
		aggregate, err := boxscore.SumPlayerLines(teamLines)
		if err != nil {
			return fmt.Errorf("aggregate team line: %w", err)
		}
		if err := s.boxscoreRepo.UpsertTeamLine(ctx, aggregate); err != nil {
			return fmt.Errorf("upsert team line: %w", err)
		}
		result.TeamLinesDerived++
	}

	return nil
}

// detectScoreConflicts compares player-point sums against the game's
// authoritative score. Disagreement is reported, never auto-corrected.
func (s *IngestionService) detectScoreConflicts(ctx context.Context, gameID int64, provider string, result *IngestResult) error {
	g, found, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return fmt.Errorf("get game: %w", err)
	}
	if !found || !g.HasScores() {
		return nil
	}

	sums, err := s.boxscoreRepo.SumPlayerPoints(ctx, gameID, provider)
	if err != nil {
		return fmt.Errorf("sum player points: %w", err)
	}

	expected := map[int64]int{
		g.HomeTeamID: *g.HomeScore,
		g.AwayTeamID: *g.AwayScore,
	}
	for _, sum := range sums {
		want, ok := expected[sum.TeamID]
		if !ok || sum.Points == want {
			continue
		}
		result.Conflicts = append(result.Conflicts, IngestDefect{
			Provider:   provider,
			ProviderID: fmt.Sprintf("game=%d team=%d", gameID, sum.TeamID),
			Entity:     identity.EntityTypeGame,
			Detail:     fmt.Sprintf("%v: player points sum %d disagrees with score %d", ErrDataConflict, sum.Points, want),
		})
	}

	return nil
}

// reportRosterGaps flags stat rows for players with no active roster entry.
// A gap is a reported defect, not a rejection.
func (s *IngestionService) reportRosterGaps(ctx context.Context, season int, lines []boxscore.PlayerLine, result *IngestResult) {
	if season <= 0 {
		return
	}

	for _, l := range lines {
		active, err := s.rosterRepo.HasActiveEntry(ctx, l.PlayerID, l.TeamID, season)
		if err != nil {
			s.logger.WarnContext(ctx, "roster check failed", "player_id", l.PlayerID, "team_id", l.TeamID, "error", err)
			continue
		}
		if !active {
			result.Defects = append(result.Defects, IngestDefect{
				Entity: identity.EntityTypePlayer,
				Detail: fmt.Sprintf("player %d has stats for team %d in season %d without an active roster entry", l.PlayerID, l.TeamID, season),
			})
		}
	}
}

// BackfillScores fills null Final scores from per-team player-point sums of
// the authoritative source. Only rows whose scores are still null change.
type BackfillResult struct {
	RunID    string `json:"runId"`
	Examined int    `json:"examined"`
	Filled   int    `json:"filled"`
	Skipped  int    `json:"skipped"`
}

func (s *IngestionService) BackfillScores(ctx context.Context) (BackfillResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionService.BackfillScores")
	defer span.End()

	runID, err := s.runIDs.NewID()
	if err != nil {
		return BackfillResult{}, fmt.Errorf("new run id: %w", err)
	}
	result := BackfillResult{RunID: runID}

	games, err := s.gameRepo.ListFinalsMissingScores(ctx)
	if err != nil {
		return result, fmt.Errorf("list finals missing scores: %w", err)
	}
	result.Examined = len(games)

	for _, g := range games {
		sums, err := s.boxscoreRepo.SumPlayerPoints(ctx, g.ID, s.authoritativeSource)
		if err != nil {
			return result, fmt.Errorf("sum player points: %w", err)
		}

		byTeam := make(map[int64]int, len(sums))
		for _, sum := range sums {
			byTeam[sum.TeamID] = sum.Points
		}
		home, homeOK := byTeam[g.HomeTeamID]
		away, awayOK := byTeam[g.AwayTeamID]
		if !homeOK || !awayOK {
			result.Skipped++
			continue
		}

		changed, err := s.gameRepo.SetScoresIfNull(ctx, g.ID, home, away)
		if err != nil {
			return result, fmt.Errorf("set scores: %w", err)
		}
		if changed {
			result.Filled++
		} else {
			result.Skipped++
		}
	}

	s.logger.InfoContext(ctx, "score backfill finished",
		"run_id", runID, "examined", result.Examined, "filled", result.Filled, "skipped", result.Skipped)

	return result, nil
}

// CrossRefResult summarizes one cross-reference sweep.
type CrossRefResult struct {
	RunID     string         `json:"runId"`
	Providers int            `json:"providers"`
	Observed  int            `json:"observed"`
	Mapped    int            `json:"mapped"`
	Ambiguous []IngestDefect `json:"ambiguous,omitempty"`
	Unmatched int            `json:"unmatched"`
}

// CrossRefSweep asks every registered provider source for its games on the
// given dates and records mappings for the ones that resolve by date and
// team pair. Ambiguous pairs are skipped and reported.
func (s *IngestionService) CrossRefSweep(ctx context.Context, from, to time.Time) (CrossRefResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionService.CrossRefSweep")
	defer span.End()

	if to.Before(from) {
		return CrossRefResult{}, fmt.Errorf("%w: date range is inverted", ErrInvalidInput)
	}

	runID, err := s.runIDs.NewID()
	if err != nil {
		return CrossRefResult{}, fmt.Errorf("new run id: %w", err)
	}
	result := CrossRefResult{RunID: runID, Providers: len(s.sources)}

	for _, source := range s.sources {
		for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
			observations, err := source.GamesByDate(ctx, day)
			if err != nil {
				return result, fmt.Errorf("%w: %s games for %s: %v", ErrUpstreamFailure, source.Name(), day.Format("2006-01-02"), err)
			}
			result.Observed += len(observations)

			for _, obs := range observations {
				_, err := s.resolver.ResolveGame(ctx, source.Name(), obs.ProviderGameID, GameCandidate{
					StartTime: obs.StartTime,
					HomeAbbr:  obs.HomeAbbr,
					AwayAbbr:  obs.AwayAbbr,
				})
				switch {
				case err == nil:
					result.Mapped++
				case errors.Is(err, ErrAmbiguousMatch):
					result.Ambiguous = append(result.Ambiguous, IngestDefect{
						Provider:   source.Name(),
						ProviderID: obs.ProviderGameID,
						Entity:     identity.EntityTypeGame,
						Detail:     err.Error(),
					})
				case errors.Is(err, ErrNotFound):
					result.Unmatched++
				default:
					return result, err
				}
			}
		}
	}

	s.logger.InfoContext(ctx, "cross-reference sweep finished",
		"run_id", runID, "observed", result.Observed, "mapped", result.Mapped,
		"ambiguous", len(result.Ambiguous), "unmatched", result.Unmatched)

	return result, nil
}
