package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/courtline/courtline/internal/domain/game"
	"github.com/courtline/courtline/internal/domain/roster"
	"github.com/courtline/courtline/internal/domain/team"
)

// TeamRecord is a team's win/loss tally over Final games with scores.
type TeamRecord struct {
	TeamID int64 `json:"teamId"`
	Wins   int   `json:"wins"`
	Losses int   `json:"losses"`
}

type TeamService struct {
	teamRepo   team.Repository
	rosterRepo roster.Repository
	gameRepo   game.Repository
}

func NewTeamService(teamRepo team.Repository, rosterRepo roster.Repository, gameRepo game.Repository) *TeamService {
	return &TeamService{
		teamRepo:   teamRepo,
		rosterRepo: rosterRepo,
		gameRepo:   gameRepo,
	}
}

func (s *TeamService) List(ctx context.Context) ([]team.Team, error) {
	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}

	return teams, nil
}

func (s *TeamService) Get(ctx context.Context, teamID int64) (team.Team, error) {
	if teamID <= 0 {
		return team.Team{}, fmt.Errorf("%w: team id is required", ErrInvalidInput)
	}

	t, found, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return team.Team{}, fmt.Errorf("get team: %w", err)
	}
	if !found {
		return team.Team{}, fmt.Errorf("%w: team=%d", ErrNotFound, teamID)
	}

	return t, nil
}

func (s *TeamService) Roster(ctx context.Context, teamID int64, season int) ([]roster.Entry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamService.Roster")
	defer span.End()

	if _, err := s.Get(ctx, teamID); err != nil {
		return nil, err
	}
	if season <= 0 {
		return nil, fmt.Errorf("%w: season is required", ErrInvalidInput)
	}

	entries, err := s.rosterRepo.ListByTeam(ctx, teamID, season)
	if err != nil {
		return nil, fmt.Errorf("list roster: %w", err)
	}

	return entries, nil
}

// Record tallies wins and losses through the cutoff. Equal scores credit
// neither column.
func (s *TeamService) Record(ctx context.Context, teamID int64, cutoff time.Time) (TeamRecord, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamService.Record")
	defer span.End()

	if _, err := s.Get(ctx, teamID); err != nil {
		return TeamRecord{}, err
	}

	finals, err := s.gameRepo.ListFinals(ctx, cutoff)
	if err != nil {
		return TeamRecord{}, fmt.Errorf("list finals: %w", err)
	}

	record := TeamRecord{TeamID: teamID}
	for _, g := range finals {
		if g.HomeTeamID != teamID && g.AwayTeamID != teamID {
			continue
		}
		switch winner := g.Winner(); {
		case winner == teamID:
			record.Wins++
		case winner != 0:
			record.Losses++
		}
	}

	return record, nil
}
