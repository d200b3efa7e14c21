package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtline/courtline/internal/domain/game"
	"github.com/courtline/courtline/internal/infrastructure/repository/memory"
	"github.com/courtline/courtline/internal/platform/id"
)

func newStatusFixture(t *testing.T, games []game.Game, now time.Time) (*StatusService, *memory.GameRepository) {
	t.Helper()

	et := mustEastern(t)
	repo := memory.NewGameRepository(et, memory.SeedTeamAbbreviations(), games)
	svc := NewStatusService(repo, id.NewRandomGenerator(), nil, 3*time.Hour, et, 2)
	svc.now = func() time.Time { return now }

	return svc, repo
}

func statusTestGame(id int64, status string, start time.Time, home, away *int) game.Game {
	return game.Game{
		ID:         id,
		Season:     memory.SeedSeason,
		StartTime:  start,
		Status:     status,
		HomeTeamID: 1,
		AwayTeamID: 2,
		HomeScore:  home,
		AwayScore:  away,
	}
}

func TestStatusSweep_ScoresPresentBecomesFinal(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.January, 12, 9, 0, 0, 0, time.UTC)
	home, away := 112, 104
	svc, repo := newStatusFixture(t, []game.Game{
		statusTestGame(1, game.StatusInProgress, now.Add(-12*time.Hour), &home, &away),
	}, now)

	result, err := svc.Sweep(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, result.Transitions, 1)
	assert.Equal(t, game.StatusFinal, result.Transitions[0].ToStatus)
	assert.Equal(t, transitionReasonScoresPresent, result.Transitions[0].Reason)

	g, _, err := repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, game.StatusFinal, g.Status)
}

func TestStatusSweep_PostponedWithScoresIsConflict(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.January, 12, 9, 0, 0, 0, time.UTC)
	home, away := 98, 95
	svc, repo := newStatusFixture(t, []game.Game{
		statusTestGame(1, game.StatusPostponed, now.Add(-24*time.Hour), &home, &away),
	}, now)

	result, err := svc.Sweep(context.Background(), false)
	require.NoError(t, err)
	assert.Empty(t, result.Transitions)
	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, int64(1), result.Conflicts[0].GameID)

	g, _, err := repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, game.StatusPostponed, g.Status)
}

func TestStatusSweep_GraceElapsedFlagsBackfill(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.January, 12, 9, 0, 0, 0, time.UTC)
	svc, _ := newStatusFixture(t, []game.Game{
		statusTestGame(1, game.StatusScheduled, now.Add(-4*time.Hour), nil, nil),
	}, now)

	result, err := svc.Sweep(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, result.Transitions, 1)
	assert.Equal(t, transitionReasonGraceElapsed, result.Transitions[0].Reason)
	assert.Equal(t, []int64{1}, result.BackfillFlagged)
}

func TestStatusSweep_WithinGraceLeavesScheduled(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.January, 12, 20, 0, 0, 0, time.UTC)
	svc, repo := newStatusFixture(t, []game.Game{
		statusTestGame(1, game.StatusScheduled, now.Add(-2*time.Hour), nil, nil),
	}, now)

	result, err := svc.Sweep(context.Background(), false)
	require.NoError(t, err)
	assert.Empty(t, result.Transitions)

	g, _, err := repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, game.StatusScheduled, g.Status)
}

func TestStatusSweep_FutureFinalRepairedToScheduled(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.January, 12, 9, 0, 0, 0, time.UTC)
	svc, repo := newStatusFixture(t, []game.Game{
		statusTestGame(1, game.StatusFinal, now.Add(72*time.Hour), nil, nil),
	}, now)

	result, err := svc.Sweep(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, result.Transitions, 1)
	assert.Equal(t, game.StatusScheduled, result.Transitions[0].ToStatus)
	assert.Equal(t, transitionReasonFutureRepair, result.Transitions[0].Reason)

	g, _, err := repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, game.StatusScheduled, g.Status)
}

func TestStatusSweep_UnknownStatusWithScoresBecomesFinal(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.January, 12, 9, 0, 0, 0, time.UTC)
	home, away := 120, 117
	svc, _ := newStatusFixture(t, []game.Game{
		statusTestGame(1, "WEIRD", now.Add(-12*time.Hour), &home, &away),
	}, now)

	result, err := svc.Sweep(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, result.Transitions, 1)
	assert.Equal(t, game.StatusFinal, result.Transitions[0].ToStatus)
}

func TestStatusSweep_Idempotent(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.January, 12, 9, 0, 0, 0, time.UTC)
	home, away := 112, 104
	svc, _ := newStatusFixture(t, []game.Game{
		statusTestGame(1, game.StatusInProgress, now.Add(-12*time.Hour), &home, &away),
		statusTestGame(2, game.StatusScheduled, now.Add(-6*time.Hour), nil, nil),
	}, now)

	first, err := svc.Sweep(context.Background(), false)
	require.NoError(t, err)
	assert.Len(t, first.Transitions, 2)

	second, err := svc.Sweep(context.Background(), false)
	require.NoError(t, err)
	assert.Empty(t, second.Transitions, "second pass must change nothing")
}

func TestStatusSweep_DryRunWritesNothing(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.January, 12, 9, 0, 0, 0, time.UTC)
	home, away := 112, 104
	svc, repo := newStatusFixture(t, []game.Game{
		statusTestGame(1, game.StatusInProgress, now.Add(-12*time.Hour), &home, &away),
	}, now)

	result, err := svc.Sweep(context.Background(), true)
	require.NoError(t, err)
	assert.Len(t, result.Transitions, 1)
	assert.True(t, result.DryRun)

	g, _, err := repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, game.StatusInProgress, g.Status)
}
