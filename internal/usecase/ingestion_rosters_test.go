package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtline/courtline/internal/domain/identity"
)

type stubRosterSource struct {
	stubGameSource
	rosters map[string][]RosterObservation
}

func (s *stubRosterSource) RosterByTeam(_ context.Context, providerTeamID string, _ int) ([]RosterObservation, error) {
	obs, ok := s.rosters[providerTeamID]
	if !ok {
		return nil, assert.AnError
	}
	return obs, nil
}

func TestSyncRosters_UpsertsEntriesAndCreatesPlayers(t *testing.T) {
	t.Parallel()

	source := &stubRosterSource{
		stubGameSource: stubGameSource{name: identity.ProviderNBAStats},
		rosters: map[string][]RosterObservation{
			"1610612738": {
				{ProviderPlayerID: "1628369", PlayerName: "Jayson Tatum", FirstName: "Jayson", LastName: "Tatum", Active: true},
				{ProviderPlayerID: "1630573", PlayerName: "Sam Hauser", FirstName: "Sam", LastName: "Hauser", Active: true},
			},
		},
	}
	fx := newIngestFixture(t, source)
	ctx := context.Background()

	require.NoError(t, fx.svc.resolver.RecordMapping(ctx, identity.Mapping{
		EntityType: identity.EntityTypeTeam,
		Provider:   identity.ProviderNBAStats,
		ProviderID: "1610612738",
		InternalID: 1,
	}))

	result, err := fx.svc.SyncRosters(ctx, 2027)
	require.NoError(t, err)
	assert.Equal(t, 6, result.Teams)
	assert.Equal(t, 2, result.EntriesApplied)
	assert.Equal(t, 1, result.PlayersCreated)
	// Teams without a provider mapping are reported, never guessed around.
	assert.Len(t, result.Defects, 5)

	active, err := fx.rosterRepo.HasActiveEntry(ctx, 1, 1, 2027)
	require.NoError(t, err)
	assert.True(t, active)

	hauserID, err := fx.svc.resolver.Resolve(ctx, identity.EntityTypePlayer, identity.ProviderNBAStats, "1630573")
	require.NoError(t, err)
	active, err = fx.rosterRepo.HasActiveEntry(ctx, hauserID, 1, 2027)
	require.NoError(t, err)
	assert.True(t, active)
}

func TestSyncRosters_IsIdempotent(t *testing.T) {
	t.Parallel()

	source := &stubRosterSource{
		stubGameSource: stubGameSource{name: identity.ProviderNBAStats},
		rosters: map[string][]RosterObservation{
			"1610612752": {
				{ProviderPlayerID: "1628973", PlayerName: "Jalen Brunson", FirstName: "Jalen", LastName: "Brunson", Active: true},
			},
		},
	}
	fx := newIngestFixture(t, source)
	ctx := context.Background()

	require.NoError(t, fx.svc.resolver.RecordMapping(ctx, identity.Mapping{
		EntityType: identity.EntityTypeTeam,
		Provider:   identity.ProviderNBAStats,
		ProviderID: "1610612752",
		InternalID: 2,
	}))

	first, err := fx.svc.SyncRosters(ctx, 2027)
	require.NoError(t, err)
	assert.Equal(t, 1, first.EntriesApplied)
	assert.Equal(t, 0, first.PlayersCreated)

	second, err := fx.svc.SyncRosters(ctx, 2027)
	require.NoError(t, err)
	assert.Equal(t, 1, second.EntriesApplied)
	assert.Equal(t, 0, second.PlayersCreated)

	entries, err := fx.rosterRepo.ListByTeam(ctx, 2, 2027)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSyncRosters_RequiresSeason(t *testing.T) {
	t.Parallel()

	fx := newIngestFixture(t)

	_, err := fx.svc.SyncRosters(context.Background(), 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
