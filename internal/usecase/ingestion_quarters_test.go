package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtline/courtline/internal/domain/boxscore"
	"github.com/courtline/courtline/internal/domain/identity"
)

type stubQuarterSource struct {
	stubGameSource
	quarters map[string][]QuarterObservation
}

func (s *stubQuarterSource) QuarterScoresByGame(_ context.Context, providerGameID string) ([]QuarterObservation, error) {
	obs, ok := s.quarters[providerGameID]
	if !ok {
		return nil, assert.AnError
	}
	return obs, nil
}

func TestBackfillQuarters_FillsFinalTeamLines(t *testing.T) {
	t.Parallel()

	source := &stubQuarterSource{
		stubGameSource: stubGameSource{name: identity.ProviderNBAStats},
		quarters: map[string][]QuarterObservation{
			"0022600551": {
				{ProviderTeamID: "1610612738", Q1: intPtr(30), Q2: intPtr(28), Q3: intPtr(26), Q4: intPtr(28)},
				{ProviderTeamID: "1610612752", Q1: intPtr(25), Q2: intPtr(30), Q3: intPtr(24), Q4: intPtr(25)},
			},
		},
	}
	fx := newIngestFixture(t, source)
	ctx := context.Background()

	require.NoError(t, fx.svc.resolver.RecordMapping(ctx, identity.Mapping{
		EntityType: identity.EntityTypeGame,
		Provider:   identity.ProviderNBAStats,
		ProviderID: "0022600551",
		InternalID: 1,
	}))
	require.NoError(t, fx.svc.resolver.RecordMapping(ctx, identity.Mapping{
		EntityType: identity.EntityTypeTeam,
		Provider:   identity.ProviderNBAStats,
		ProviderID: "1610612738",
		InternalID: 1,
	}))
	require.NoError(t, fx.svc.resolver.RecordMapping(ctx, identity.Mapping{
		EntityType: identity.EntityTypeTeam,
		Provider:   identity.ProviderNBAStats,
		ProviderID: "1610612752",
		InternalID: 2,
	}))

	require.NoError(t, fx.boxscoreRepo.UpsertTeamLine(ctx, boxscore.TeamLine{
		GameID: 1, TeamID: 1, Source: identity.ProviderNBAStats, Points: 112,
	}))
	require.NoError(t, fx.boxscoreRepo.UpsertTeamLine(ctx, boxscore.TeamLine{
		GameID: 1, TeamID: 2, Source: identity.ProviderNBAStats, Points: 104,
	}))

	result, err := fx.svc.BackfillQuarters(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Examined)
	assert.Equal(t, 1, result.Updated)
	assert.Empty(t, result.Defects)

	lines, err := fx.boxscoreRepo.ListTeamLinesByGame(ctx, 1)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	require.NotNil(t, lines[0].Quarters.Q1)
	assert.Equal(t, 30, *lines[0].Quarters.Q1)
	require.NotNil(t, lines[1].Quarters.Q4)
	assert.Equal(t, 25, *lines[1].Quarters.Q4)
	assert.Nil(t, lines[0].Quarters.OT)

	// Re-deriving the team line must not clear the backfilled totals, and a
	// second run finds nothing left to fill.
	require.NoError(t, fx.boxscoreRepo.UpsertTeamLine(ctx, boxscore.TeamLine{
		GameID: 1, TeamID: 1, Source: identity.ProviderNBAStats, Points: 112,
	}))
	lines, err = fx.boxscoreRepo.ListTeamLinesByGame(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, lines[0].Quarters.Q1)

	again, err := fx.svc.BackfillQuarters(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Examined)
}

func TestBackfillQuarters_SkipsGamesWithoutProviderMapping(t *testing.T) {
	t.Parallel()

	source := &stubQuarterSource{
		stubGameSource: stubGameSource{name: identity.ProviderNBAStats},
		quarters:       map[string][]QuarterObservation{},
	}
	fx := newIngestFixture(t, source)
	ctx := context.Background()

	require.NoError(t, fx.boxscoreRepo.UpsertTeamLine(ctx, boxscore.TeamLine{
		GameID: 2, TeamID: 4, Source: identity.ProviderNBAStats, Points: 98,
	}))

	result, err := fx.svc.BackfillQuarters(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Examined)
	assert.Equal(t, 0, result.Updated)
	assert.Equal(t, 1, result.Skipped)
}
