package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtline/courtline/internal/domain/boxscore"
	"github.com/courtline/courtline/internal/domain/game"
	"github.com/courtline/courtline/internal/domain/identity"
	"github.com/courtline/courtline/internal/infrastructure/repository/memory"
	"github.com/courtline/courtline/internal/platform/id"
)

type ingestFixture struct {
	svc          *IngestionService
	gameRepo     *memory.GameRepository
	playerRepo   *memory.PlayerRepository
	boxscoreRepo *memory.BoxScoreRepository
	identityRepo *memory.IdentityRepository
	rosterRepo   *memory.RosterRepository
}

type stubGameSource struct {
	name  string
	games map[string][]GameObservation
	err   error
}

func (s *stubGameSource) Name() string { return s.name }

func (s *stubGameSource) GamesByDate(_ context.Context, date time.Time) ([]GameObservation, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.games[date.Format("2006-01-02")], nil
}

func newIngestFixture(t *testing.T, sources ...ProviderGameSource) ingestFixture {
	t.Helper()

	et := mustEastern(t)
	identityRepo := memory.NewIdentityRepository()
	gameRepo := memory.NewGameRepository(et, memory.SeedTeamAbbreviations(), memory.SeedGames())
	playerRepo := memory.NewPlayerRepository(memory.SeedPlayers())
	teamRepo := memory.NewTeamRepository(memory.SeedTeams())
	boxscoreRepo := memory.NewBoxScoreRepository()
	rosterRepo := memory.NewRosterRepository(memory.SeedRosters())

	resolver := NewResolverService(identityRepo, gameRepo, playerRepo, teamRepo, et)
	svc := NewIngestionService(resolver, gameRepo, teamRepo, playerRepo, boxscoreRepo, rosterRepo,
		sources, id.NewRandomGenerator(), nil, et, identity.ProviderNBAStats)

	return ingestFixture{
		svc:          svc,
		gameRepo:     gameRepo,
		playerRepo:   playerRepo,
		boxscoreRepo: boxscoreRepo,
		identityRepo: identityRepo,
		rosterRepo:   rosterRepo,
	}
}

func TestIngestGames_CreatesUnknownGame(t *testing.T) {
	t.Parallel()

	fx := newIngestFixture(t)
	ctx := context.Background()
	et := mustEastern(t)

	result, err := fx.svc.IngestGames(ctx, []GameObservation{{
		Provider:           identity.ProviderBDL,
		ProviderGameID:     "9001",
		Season:             memory.SeedSeason,
		StartTime:          time.Date(2026, time.February, 14, 19, 30, 0, 0, et),
		HomeAbbr:           "GSW",
		AwayAbbr:           "LAL",
		HomeProviderTeamID: "10",
		AwayProviderTeamID: "14",
		RawStatus:          "Scheduled",
	}})
	require.NoError(t, err)
	assert.Equal(t, 1, result.GamesCreated)
	assert.Equal(t, 1, result.GamesApplied)
	assert.Empty(t, result.Defects)

	internalID, err := fx.svc.resolver.Resolve(ctx, identity.EntityTypeGame, identity.ProviderBDL, "9001")
	require.NoError(t, err)
	g, found, err := fx.gameRepo.GetByID(ctx, internalID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, game.StatusScheduled, g.Status)
}

func TestIngestGames_GuardedUpsertNeverClearsScores(t *testing.T) {
	t.Parallel()

	fx := newIngestFixture(t)
	ctx := context.Background()
	et := mustEastern(t)

	// Seed game 1 is Final 112-104; a stale provider view without scores
	// must not clear them or regress the status.
	result, err := fx.svc.IngestGames(ctx, []GameObservation{{
		Provider:       identity.ProviderBDL,
		ProviderGameID: "8001",
		Season:         memory.SeedSeason,
		StartTime:      time.Date(2026, time.January, 10, 19, 30, 0, 0, et),
		HomeAbbr:       "BOS",
		AwayAbbr:       "NYK",
		RawStatus:      "InProgress",
	}})
	require.NoError(t, err)
	assert.Equal(t, 1, result.GamesApplied)
	assert.Equal(t, 0, result.GamesCreated)

	g, _, err := fx.gameRepo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, game.StatusFinal, g.Status)
	require.NotNil(t, g.HomeScore)
	assert.Equal(t, 112, *g.HomeScore)
}

func TestIngestGames_UnrecognizedStatusIsDefect(t *testing.T) {
	t.Parallel()

	fx := newIngestFixture(t)

	result, err := fx.svc.IngestGames(context.Background(), []GameObservation{{
		Provider:       identity.ProviderBDL,
		ProviderGameID: "8002",
		RawStatus:      "Quantum",
	}})
	require.NoError(t, err)
	assert.Equal(t, 0, result.GamesApplied)
	require.Len(t, result.Defects, 1)
	assert.Contains(t, result.Defects[0].Detail, "Quantum")
}

func TestIngestBoxScore_FullPipeline(t *testing.T) {
	t.Parallel()

	fx := newIngestFixture(t)
	ctx := context.Background()
	et := mustEastern(t)

	obs := BoxScoreObservation{
		Provider:       identity.ProviderNBAStats,
		ProviderGameID: "0022600551",
		Season:         memory.SeedSeason,
		Game: GameCandidate{
			StartTime: time.Date(2026, time.January, 10, 19, 30, 0, 0, et),
			HomeAbbr:  "BOS",
			AwayAbbr:  "NYK",
		},
		Lines: []PlayerStatObservation{
			{
				ProviderPlayerID: "1628369",
				PlayerName:       "Jayson Tatum",
				TeamAbbr:         "BOS",
				ProviderTeamID:   "1610612738",
				Minutes:          "36:30",
				StartPosition:    "F",
				Points:           34,
				Rebounds:         8,
			},
			{
				ProviderPlayerID: "9999999",
				PlayerName:       "Rookie Newman",
				FirstName:        "Rookie",
				LastName:         "Newman",
				TeamAbbr:         "BOS",
				ProviderTeamID:   "1610612738",
				Minutes:          "",
				Comment:          "DNP - Coach's Decision",
			},
		},
	}

	result, err := fx.svc.IngestBoxScore(ctx, obs)
	require.NoError(t, err)
	assert.Equal(t, 2, result.LinesApplied)
	assert.Equal(t, 1, result.PlayersCreated)
	assert.Equal(t, 1, result.TeamLinesDerived)

	lines, err := fx.boxscoreRepo.ListPlayerLinesByGame(ctx, 1)
	require.NoError(t, err)
	require.Len(t, lines, 2)

	tatum := lines[0]
	require.NotNil(t, tatum.Minutes)
	assert.InDelta(t, 36.5, *tatum.Minutes, 0.001)
	assert.True(t, tatum.Started)
	assert.Empty(t, tatum.DNPReason)

	rookie := lines[1]
	assert.Nil(t, rookie.Minutes)
	assert.False(t, rookie.Started)
	assert.Equal(t, "DNP - Coach's Decision", rookie.DNPReason)

	teamLines, err := fx.boxscoreRepo.ListTeamLinesByGame(ctx, 1)
	require.NoError(t, err)
	require.Len(t, teamLines, 1)
	assert.Equal(t, identity.ProviderNBAStats, teamLines[0].Source)
	assert.Equal(t, 34, teamLines[0].Points)

	// The created rookie has no roster entry: reported, not rejected.
	var rosterDefects int
	for _, d := range result.Defects {
		if d.Entity == identity.EntityTypePlayer {
			rosterDefects++
		}
	}
	assert.Equal(t, 1, rosterDefects)
}

func TestIngestBoxScore_ScoreConflictReported(t *testing.T) {
	t.Parallel()

	fx := newIngestFixture(t)
	ctx := context.Background()
	et := mustEastern(t)

	// Player points sum to 34 against an authoritative 112: conflict.
	result, err := fx.svc.IngestBoxScore(ctx, BoxScoreObservation{
		Provider:       identity.ProviderNBAStats,
		ProviderGameID: "0022600551",
		Season:         memory.SeedSeason,
		Game: GameCandidate{
			StartTime: time.Date(2026, time.January, 10, 19, 30, 0, 0, et),
			HomeAbbr:  "BOS",
			AwayAbbr:  "NYK",
		},
		Lines: []PlayerStatObservation{{
			ProviderPlayerID: "1628369",
			PlayerName:       "Jayson Tatum",
			TeamAbbr:         "BOS",
			ProviderTeamID:   "1610612738",
			Minutes:          "36:30",
			Points:           34,
		}},
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.Conflicts)
	assert.Contains(t, result.Conflicts[0].Detail, "disagrees")

	// The authoritative score must be untouched.
	g, _, err := fx.gameRepo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 112, *g.HomeScore)
}

func TestBackfillScores(t *testing.T) {
	t.Parallel()

	fx := newIngestFixture(t)
	ctx := context.Background()
	et := mustEastern(t)

	gameID, err := fx.gameRepo.Create(ctx, game.Game{
		Season:     memory.SeedSeason,
		StartTime:  time.Date(2026, time.January, 8, 19, 0, 0, 0, et),
		Status:     game.StatusFinal,
		HomeTeamID: 1,
		AwayTeamID: 2,
	})
	require.NoError(t, err)

	require.NoError(t, fx.boxscoreRepo.UpsertPlayerLines(ctx, []boxscore.PlayerLine{
		{GameID: gameID, PlayerID: 1, TeamID: 1, Source: identity.ProviderNBAStats, Points: 55},
		{GameID: gameID, PlayerID: 2, TeamID: 2, Source: identity.ProviderNBAStats, Points: 97},
	}))

	result, err := fx.svc.BackfillScores(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Filled)

	g, _, err := fx.gameRepo.GetByID(ctx, gameID)
	require.NoError(t, err)
	require.NotNil(t, g.HomeScore)
	assert.Equal(t, 55, *g.HomeScore)
	assert.Equal(t, 97, *g.AwayScore)
}

func TestBackfillScores_SkipsOneSidedSums(t *testing.T) {
	t.Parallel()

	fx := newIngestFixture(t)
	ctx := context.Background()
	et := mustEastern(t)

	gameID, err := fx.gameRepo.Create(ctx, game.Game{
		Season:     memory.SeedSeason,
		StartTime:  time.Date(2026, time.January, 8, 19, 0, 0, 0, et),
		Status:     game.StatusFinal,
		HomeTeamID: 1,
		AwayTeamID: 2,
	})
	require.NoError(t, err)

	require.NoError(t, fx.boxscoreRepo.UpsertPlayerLines(ctx, []boxscore.PlayerLine{
		{GameID: gameID, PlayerID: 1, TeamID: 1, Source: identity.ProviderNBAStats, Points: 55},
	}))

	result, err := fx.svc.BackfillScores(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Filled)
	assert.Equal(t, 1, result.Skipped)
}

func TestCrossRefSweep(t *testing.T) {
	t.Parallel()

	et := mustEastern(t)
	source := &stubGameSource{
		name: identity.ProviderBDL,
		games: map[string][]GameObservation{
			"2026-01-10": {{
				Provider:       identity.ProviderBDL,
				ProviderGameID: "7001",
				StartTime:      time.Date(2026, time.January, 10, 19, 30, 0, 0, et),
				HomeAbbr:       "BOS",
				AwayAbbr:       "NYK",
			}},
			"2026-01-11": {{
				Provider:       identity.ProviderBDL,
				ProviderGameID: "7002",
				StartTime:      time.Date(2026, time.January, 11, 19, 30, 0, 0, et),
				HomeAbbr:       "MIA",
				AwayAbbr:       "CHI",
			}},
		},
	}
	fx := newIngestFixture(t, source)
	ctx := context.Background()

	from := time.Date(2026, time.January, 10, 0, 0, 0, 0, et)
	to := time.Date(2026, time.January, 11, 0, 0, 0, 0, et)

	result, err := fx.svc.CrossRefSweep(ctx, from, to)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Observed)
	assert.Equal(t, 1, result.Mapped)
	assert.Equal(t, 1, result.Unmatched)

	internalID, err := fx.svc.resolver.Resolve(ctx, identity.EntityTypeGame, identity.ProviderBDL, "7001")
	require.NoError(t, err)
	assert.Equal(t, int64(1), internalID)
}

func TestCrossRefSweep_InvertedRange(t *testing.T) {
	t.Parallel()

	fx := newIngestFixture(t)
	now := time.Now()

	_, err := fx.svc.CrossRefSweep(context.Background(), now, now.AddDate(0, 0, -1))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func intPtr(v int) *int { return &v }

type stubFullSource struct {
	stubGameSource
	boxScores map[string]BoxScoreObservation
}

func (s *stubFullSource) BoxScoreByGame(_ context.Context, providerGameID string) (BoxScoreObservation, error) {
	obs, ok := s.boxScores[providerGameID]
	if !ok {
		return BoxScoreObservation{}, assert.AnError
	}
	return obs, nil
}

func TestIngestDay_PullsGamesAndFinalBoxScores(t *testing.T) {
	t.Parallel()

	et := mustEastern(t)
	gameObs := GameObservation{
		Provider:       identity.ProviderNBAStats,
		ProviderGameID: "0022600551",
		Season:         memory.SeedSeason,
		StartTime:      time.Date(2026, time.January, 10, 19, 30, 0, 0, et),
		HomeAbbr:       "BOS",
		AwayAbbr:       "NYK",
		HomeScore:      intPtr(112),
		AwayScore:      intPtr(104),
		RawStatus:      "Final",
	}
	source := &stubFullSource{
		stubGameSource: stubGameSource{
			name: identity.ProviderNBAStats,
			games: map[string][]GameObservation{
				"2026-01-10": {gameObs},
			},
		},
		boxScores: map[string]BoxScoreObservation{
			"0022600551": {
				Provider:       identity.ProviderNBAStats,
				ProviderGameID: "0022600551",
				Season:         memory.SeedSeason,
				Game: GameCandidate{
					StartTime: gameObs.StartTime,
					HomeAbbr:  "BOS",
					AwayAbbr:  "NYK",
				},
				Lines: []PlayerStatObservation{{
					ProviderPlayerID: "1628369",
					PlayerName:       "Jayson Tatum",
					TeamAbbr:         "BOS",
					ProviderTeamID:   "1610612738",
					Minutes:          "36:30",
					StartPosition:    "F",
					Points:           34,
				}},
			},
		},
	}
	fx := newIngestFixture(t, source)
	ctx := context.Background()

	result, err := fx.svc.IngestDay(ctx, time.Date(2026, time.January, 10, 0, 0, 0, 0, et))
	require.NoError(t, err)
	assert.Equal(t, 1, result.GamesApplied)
	assert.Equal(t, 0, result.GamesCreated)
	assert.Equal(t, 1, result.LinesApplied)
	assert.Equal(t, 1, result.TeamLinesDerived)

	lines, err := fx.boxscoreRepo.ListPlayerLinesByGame(ctx, 1)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, identity.ProviderNBAStats, lines[0].Source)
}

func TestIngestDay_FlagsRosterGapsUsingSlateSeason(t *testing.T) {
	t.Parallel()

	et := mustEastern(t)
	gameObs := GameObservation{
		Provider:       identity.ProviderNBAStats,
		ProviderGameID: "0022600551",
		Season:         memory.SeedSeason,
		StartTime:      time.Date(2026, time.January, 10, 19, 30, 0, 0, et),
		HomeAbbr:       "BOS",
		AwayAbbr:       "NYK",
		HomeScore:      intPtr(112),
		AwayScore:      intPtr(104),
		RawStatus:      "Final",
	}
	source := &stubFullSource{
		stubGameSource: stubGameSource{
			name: identity.ProviderNBAStats,
			games: map[string][]GameObservation{
				"2026-01-10": {gameObs},
			},
		},
		// The box score payload carries no season of its own; the slate's
		// season has to reach the roster check.
		boxScores: map[string]BoxScoreObservation{
			"0022600551": {
				Provider:       identity.ProviderNBAStats,
				ProviderGameID: "0022600551",
				Lines: []PlayerStatObservation{{
					ProviderPlayerID: "1641999",
					PlayerName:       "Baylor Scheierman",
					TeamAbbr:         "BOS",
					Minutes:          "12:00",
					Points:           7,
				}},
			},
		},
	}
	fx := newIngestFixture(t, source)

	result, err := fx.svc.IngestDay(context.Background(), time.Date(2026, time.January, 10, 0, 0, 0, 0, et))
	require.NoError(t, err)
	assert.Equal(t, 1, result.LinesApplied)
	assert.Equal(t, 1, result.PlayersCreated)
	require.Len(t, result.Defects, 1)
	assert.Contains(t, result.Defects[0].Detail, "without an active roster entry")
}

func TestIngestDay_SkipsBoxScoresForNonFinalGames(t *testing.T) {
	t.Parallel()

	et := mustEastern(t)
	source := &stubFullSource{
		stubGameSource: stubGameSource{
			name: identity.ProviderNBAStats,
			games: map[string][]GameObservation{
				"2026-06-14": {{
					Provider:       identity.ProviderNBAStats,
					ProviderGameID: "0022600777",
					Season:         memory.SeedSeason,
					StartTime:      time.Date(2026, time.June, 14, 20, 0, 0, 0, et),
					HomeAbbr:       "BOS",
					AwayAbbr:       "DEN",
					RawStatus:      "Scheduled",
				}},
			},
		},
		// An empty map would make any box score fetch fail the sweep, so a
		// pass proves no fetch happened.
		boxScores: map[string]BoxScoreObservation{},
	}
	fx := newIngestFixture(t, source)

	result, err := fx.svc.IngestDay(context.Background(), time.Date(2026, time.June, 14, 0, 0, 0, 0, et))
	require.NoError(t, err)
	assert.Equal(t, 1, result.GamesApplied)
	assert.Equal(t, 0, result.LinesApplied)
}
