package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtline/courtline/internal/domain/game"
	"github.com/courtline/courtline/internal/domain/identity"
	"github.com/courtline/courtline/internal/domain/player"
	"github.com/courtline/courtline/internal/infrastructure/repository/memory"
)

func mustEastern(t *testing.T) *time.Location {
	t.Helper()

	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	return loc
}

func newResolverFixture(t *testing.T) (*ResolverService, *memory.IdentityRepository, *memory.GameRepository) {
	t.Helper()

	et := mustEastern(t)
	identityRepo := memory.NewIdentityRepository()
	gameRepo := memory.NewGameRepository(et, memory.SeedTeamAbbreviations(), memory.SeedGames())
	playerRepo := memory.NewPlayerRepository(memory.SeedPlayers())
	teamRepo := memory.NewTeamRepository(memory.SeedTeams())

	svc := NewResolverService(identityRepo, gameRepo, playerRepo, teamRepo, et)
	return svc, identityRepo, gameRepo
}

func TestResolverService_Resolve_UsesMapping(t *testing.T) {
	t.Parallel()

	svc, identityRepo, _ := newResolverFixture(t)
	ctx := context.Background()

	require.NoError(t, identityRepo.Upsert(ctx, identity.Mapping{
		EntityType: identity.EntityTypeGame,
		Provider:   identity.ProviderBDL,
		ProviderID: "5001",
		InternalID: 1,
	}))

	got, err := svc.Resolve(ctx, identity.EntityTypeGame, identity.ProviderBDL, "5001")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got)
}

func TestResolverService_Resolve_NotFound(t *testing.T) {
	t.Parallel()

	svc, _, _ := newResolverFixture(t)

	_, err := svc.Resolve(context.Background(), identity.EntityTypeGame, identity.ProviderBDL, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolverService_ResolveGame_InfersByDatePair(t *testing.T) {
	t.Parallel()

	svc, _, _ := newResolverFixture(t)
	ctx := context.Background()
	et := mustEastern(t)

	got, err := svc.ResolveGame(ctx, identity.ProviderBDL, "5001", GameCandidate{
		StartTime: time.Date(2026, time.January, 10, 19, 30, 0, 0, et),
		HomeAbbr:  "BOS",
		AwayAbbr:  "NYK",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), got)

	// The inference is recorded; the second lookup must not depend on the
	// candidate at all.
	again, err := svc.ResolveGame(ctx, identity.ProviderBDL, "5001", GameCandidate{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), again)
}

func TestResolverService_ResolveGame_SwappedOrientation(t *testing.T) {
	t.Parallel()

	svc, _, _ := newResolverFixture(t)
	et := mustEastern(t)

	got, err := svc.ResolveGame(context.Background(), identity.ProviderBRef, "202601100NYK", GameCandidate{
		StartTime: time.Date(2026, time.January, 10, 19, 30, 0, 0, et),
		HomeAbbr:  "NYK",
		AwayAbbr:  "BOS",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), got)
}

func TestResolverService_ResolveGame_Ambiguous(t *testing.T) {
	t.Parallel()

	svc, _, gameRepo := newResolverFixture(t)
	ctx := context.Background()
	et := mustEastern(t)

	// A second BOS/NYK game on the same local date makes the pair ambiguous.
	_, err := gameRepo.Create(ctx, game.Game{
		Season:     memory.SeedSeason,
		StartTime:  time.Date(2026, time.January, 10, 13, 0, 0, 0, et),
		Status:     game.StatusScheduled,
		HomeTeamID: 1,
		AwayTeamID: 2,
	})
	require.NoError(t, err)

	_, err = svc.ResolveGame(ctx, identity.ProviderBDL, "5002", GameCandidate{
		StartTime: time.Date(2026, time.January, 10, 19, 30, 0, 0, et),
		HomeAbbr:  "BOS",
		AwayAbbr:  "NYK",
	})
	assert.ErrorIs(t, err, ErrAmbiguousMatch)
}

func TestResolverService_ResolvePlayer_FoldedNameRetry(t *testing.T) {
	t.Parallel()

	svc, _, _ := newResolverFixture(t)

	got, err := svc.ResolvePlayer(context.Background(), identity.ProviderBRef, "jokicni01", "Nikola Jokic")
	require.NoError(t, err)
	assert.Equal(t, int64(4), got)
}

func TestResolverService_ResolvePlayer_NeverCreates(t *testing.T) {
	t.Parallel()

	svc, _, _ := newResolverFixture(t)

	_, err := svc.ResolvePlayer(context.Background(), identity.ProviderBRef, "nobody01", "Nobody Whatsoever")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolverService_ResolveTeam_ByAbbreviation(t *testing.T) {
	t.Parallel()

	svc, _, _ := newResolverFixture(t)

	got, err := svc.ResolveTeam(context.Background(), identity.ProviderBDL, "14", "lal")
	require.NoError(t, err)
	assert.Equal(t, int64(5), got)
}

func TestResolverService_RecordMapping_Idempotent(t *testing.T) {
	t.Parallel()

	svc, identityRepo, _ := newResolverFixture(t)
	ctx := context.Background()

	m := identity.Mapping{
		EntityType: identity.EntityTypePlayer,
		Provider:   identity.ProviderNBAStats,
		ProviderID: "203999",
		InternalID: 4,
		Metadata:   map[string]any{"team": "DEN"},
	}
	require.NoError(t, svc.RecordMapping(ctx, m))

	m.Metadata = map[string]any{"team": "DEN", "jersey": "15"}
	require.NoError(t, svc.RecordMapping(ctx, m))

	stored, found, err := identityRepo.Lookup(ctx, identity.EntityTypePlayer, identity.ProviderNBAStats, "203999")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, int64(4), stored.InternalID)
	assert.Equal(t, "15", stored.Metadata["jersey"])
}

func TestResolverService_RecordMapping_Invalid(t *testing.T) {
	t.Parallel()

	svc, _, _ := newResolverFixture(t)

	err := svc.RecordMapping(context.Background(), identity.Mapping{
		EntityType: "franchise",
		Provider:   identity.ProviderBDL,
		ProviderID: "1",
		InternalID: 1,
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestResolverService_ListUnmapped_ClampsLimit(t *testing.T) {
	t.Parallel()

	svc, identityRepo, _ := newResolverFixture(t)

	ids := make([]int64, 0, 600)
	for i := int64(1); i <= 600; i++ {
		ids = append(ids, i)
	}
	identityRepo.RegisterInternal(identity.EntityTypePlayer, ids...)

	got, err := svc.ListUnmapped(context.Background(), identity.EntityTypePlayer, identity.ProviderNBAStats, 600)
	require.NoError(t, err)
	assert.Len(t, got, 500)

	got, err = svc.ListUnmapped(context.Background(), identity.EntityTypePlayer, identity.ProviderNBAStats, 0)
	require.NoError(t, err)
	assert.Len(t, got, 100)
}

func TestPlayerNameLadderUsesNormalization(t *testing.T) {
	t.Parallel()

	// Sanity check that the ladder's two rungs differ: exact match is
	// case-insensitive only, the fold also strips marks.
	assert.Equal(t, player.NormalizeName("NIKOLA Jokić"), "nikola jokić")
	assert.Equal(t, player.FoldName("NIKOLA Jokić"), "nikola jokic")
}
