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
)

func coverageTestGame(id int64, home, away int64, homeScore, awayScore int, start time.Time) game.Game {
	hs, as := homeScore, awayScore
	return game.Game{
		ID:         id,
		Season:     memory.SeedSeason,
		StartTime:  start,
		Status:     game.StatusFinal,
		HomeTeamID: home,
		AwayTeamID: away,
		HomeScore:  &hs,
		AwayScore:  &as,
	}
}

func newCoverageFixture(t *testing.T, games []game.Game) (*CoverageService, *memory.BoxScoreRepository) {
	t.Helper()

	et := mustEastern(t)
	gameRepo := memory.NewGameRepository(et, memory.SeedTeamAbbreviations(), games)
	teamRepo := memory.NewTeamRepository(memory.SeedTeams())
	boxRepo := memory.NewBoxScoreRepository()

	svc := NewCoverageService(gameRepo, teamRepo, boxRepo, identity.ProviderNBAStats, 4, nil)
	return svc, boxRepo
}

func TestCoverageService_TeamReport(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, time.January, 5, 19, 0, 0, 0, time.UTC)
	games := []game.Game{
		coverageTestGame(1, 1, 2, 110, 100, start),
		coverageTestGame(2, 1, 3, 95, 99, start.AddDate(0, 0, 2)),
		coverageTestGame(3, 2, 3, 101, 97, start.AddDate(0, 0, 4)),
	}
	svc, boxRepo := newCoverageFixture(t, games)
	ctx := context.Background()

	// Game 1 has authoritative team stats, game 2 has only another source's.
	require.NoError(t, boxRepo.UpsertTeamLine(ctx, boxscore.TeamLine{GameID: 1, TeamID: 1, Source: identity.ProviderNBAStats, Points: 110}))
	require.NoError(t, boxRepo.UpsertTeamLine(ctx, boxscore.TeamLine{GameID: 2, TeamID: 1, Source: identity.ProviderBRef, Points: 95}))
	require.NoError(t, boxRepo.UpsertPlayerLines(ctx, []boxscore.PlayerLine{
		{GameID: 1, PlayerID: 1, TeamID: 1, Source: identity.ProviderNBAStats, Points: 30},
	}))

	report, err := svc.TeamReport(ctx, 1, time.Time{})
	require.NoError(t, err)
	require.Len(t, report.Teams, 1)

	row := report.Teams[0]
	assert.Equal(t, "BOS", row.Abbreviation)
	assert.Equal(t, 2, row.FinalGames)
	assert.Equal(t, 1, row.WithTeamStats)
	assert.Equal(t, 1, row.WithPlayerStats)
	assert.Equal(t, 1, row.Missing)
	assert.Equal(t, 50, row.CoveragePct)
}

func TestCoverageService_TeamReport_NoFinals(t *testing.T) {
	t.Parallel()

	svc, _ := newCoverageFixture(t, nil)

	report, err := svc.TeamReport(context.Background(), 1, time.Time{})
	require.NoError(t, err)
	require.Len(t, report.Teams, 1)
	assert.Equal(t, 0, report.Teams[0].FinalGames)
	assert.Equal(t, 0, report.Teams[0].CoveragePct, "zero finals must yield zero pct, not a division error")
}

func TestCoverageService_TeamReport_UnknownTeam(t *testing.T) {
	t.Parallel()

	svc, _ := newCoverageFixture(t, nil)

	_, err := svc.TeamReport(context.Background(), 404, time.Time{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCoverageService_LeagueReport_HalvesSums(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, time.January, 5, 19, 0, 0, 0, time.UTC)
	games := []game.Game{
		coverageTestGame(1, 1, 2, 110, 100, start),
		coverageTestGame(2, 3, 4, 95, 99, start.AddDate(0, 0, 1)),
	}
	svc, boxRepo := newCoverageFixture(t, games)
	ctx := context.Background()

	require.NoError(t, boxRepo.UpsertTeamLine(ctx, boxscore.TeamLine{GameID: 1, TeamID: 1, Source: identity.ProviderNBAStats, Points: 110}))

	report, err := svc.LeagueReport(ctx, time.Time{})
	require.NoError(t, err)
	require.NotNil(t, report.League)
	assert.Equal(t, 2, report.League.FinalGames, "4 per-team finals halved")
	assert.Equal(t, 1, report.League.WithTeamStats)
	assert.Equal(t, 50, report.League.CoveragePct)
	assert.Len(t, report.Teams, len(memory.SeedTeams()))
}

func TestCoverageService_Standings(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, time.January, 5, 19, 0, 0, 0, time.UTC)
	games := []game.Game{
		coverageTestGame(1, 1, 2, 120, 100, start),                  // BOS beats NYK
		coverageTestGame(2, 2, 1, 90, 110, start.AddDate(0, 0, 1)),  // BOS beats NYK away
		coverageTestGame(3, 3, 4, 100, 100, start.AddDate(0, 0, 2)), // tie: neither credited
	}
	svc, _ := newCoverageFixture(t, games)

	standings, err := svc.Standings(context.Background(), time.Time{})
	require.NoError(t, err)
	require.Len(t, standings, len(memory.SeedTeams()))

	byAbbr := make(map[string]TeamStanding, len(standings))
	for _, row := range standings {
		byAbbr[row.Abbreviation] = row
	}

	assert.Equal(t, 2, byAbbr["BOS"].Wins)
	assert.Equal(t, 0, byAbbr["BOS"].Losses)
	assert.Equal(t, 0, byAbbr["NYK"].Wins)
	assert.Equal(t, 2, byAbbr["NYK"].Losses)
	assert.Equal(t, 0, byAbbr["MIL"].Wins, "equal scores credit neither side")
	assert.Equal(t, 0, byAbbr["MIL"].Losses)

	// BOS averages 115 for, the best offense; ranks are dense.
	assert.Equal(t, 1, byAbbr["BOS"].OffensiveRank)
	assert.InDelta(t, 115.0, byAbbr["BOS"].AvgPointsFor, 0.01)

	// MIL and DEN both average 100 for: same dense rank.
	assert.Equal(t, byAbbr["MIL"].OffensiveRank, byAbbr["DEN"].OffensiveRank)

	// Standings order: best win pct first.
	assert.Equal(t, "BOS", standings[0].Abbreviation)
}

func TestAssignDenseRank_TieBreakAlphabetical(t *testing.T) {
	t.Parallel()

	rows := []TeamStanding{
		{Abbreviation: "NYK", AvgPointsFor: 100},
		{Abbreviation: "BOS", AvgPointsFor: 100},
		{Abbreviation: "DEN", AvgPointsFor: 110},
		{Abbreviation: "LAL", AvgPointsFor: 90},
	}

	assignDenseRank(rows,
		func(a, b TeamStanding) bool { return a.AvgPointsFor > b.AvgPointsFor },
		func(row *TeamStanding, rank int) { row.OffensiveRank = rank },
		func(a, b TeamStanding) bool { return a.AvgPointsFor == b.AvgPointsFor },
	)

	byAbbr := make(map[string]int, len(rows))
	for _, row := range rows {
		byAbbr[row.Abbreviation] = row.OffensiveRank
	}

	assert.Equal(t, 1, byAbbr["DEN"])
	assert.Equal(t, 2, byAbbr["BOS"])
	assert.Equal(t, 2, byAbbr["NYK"], "tied values share a dense rank")
	assert.Equal(t, 3, byAbbr["LAL"], "dense rank does not skip after a tie")
}
