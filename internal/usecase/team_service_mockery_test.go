package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/courtline/courtline/internal/domain/roster"
	"github.com/courtline/courtline/internal/domain/team"
	rostermock "github.com/courtline/courtline/internal/mocks/domain/roster"
	teammock "github.com/courtline/courtline/internal/mocks/domain/team"
)

func TestTeamService_Roster_SuccessUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	teamRepo := teammock.NewRepository(t)
	rosterRepo := rostermock.NewRepository(t)

	service := NewTeamService(teamRepo, rosterRepo, nil)
	expected := []roster.Entry{
		{PlayerID: 1, TeamID: 1, Season: 2026, Active: true},
		{PlayerID: 9, TeamID: 1, Season: 2026, Active: false},
	}

	teamRepo.
		On("GetByID", mock.MatchedBy(func(v context.Context) bool { return v == ctx }), int64(1)).
		Return(team.Team{ID: 1, Abbreviation: "BOS", Name: "Boston Celtics"}, true, nil).
		Once()
	rosterRepo.
		On("ListByTeam", mock.MatchedBy(func(v context.Context) bool { return v == ctx }), int64(1), 2026).
		Return(expected, nil).
		Once()

	got, err := service.Roster(ctx, 1, 2026)
	if err != nil {
		t.Fatalf("list roster: %v", err)
	}
	if len(got) != len(expected) {
		t.Fatalf("unexpected entry count: got=%d want=%d", len(got), len(expected))
	}
	if got[0].PlayerID != expected[0].PlayerID {
		t.Fatalf("unexpected player id: got=%d want=%d", got[0].PlayerID, expected[0].PlayerID)
	}
}

func TestTeamService_Roster_TeamNotFoundUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	teamRepo := teammock.NewRepository(t)
	rosterRepo := rostermock.NewRepository(t)

	service := NewTeamService(teamRepo, rosterRepo, nil)

	teamRepo.
		On("GetByID", mock.MatchedBy(func(v context.Context) bool { return v == ctx }), int64(404)).
		Return(team.Team{}, false, nil).
		Once()

	_, err := service.Roster(ctx, 404, 2026)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
