package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/courtline/courtline/internal/domain/boxscore"
	"github.com/courtline/courtline/internal/domain/game"
)

// GameDetail decorates a game with box-score availability per source.
type GameDetail struct {
	Game            game.Game
	BoxScoreSources []string
	HasPlayerStats  bool
}

// GamePage is one page of a game listing.
type GamePage struct {
	Games   []game.Game
	Total   int
	HasMore bool
}

// GameBoxScore is the full stat payload for one game.
type GameBoxScore struct {
	Game        game.Game
	PlayerLines []boxscore.PlayerLine
	TeamLines   []boxscore.TeamLine
}

type GameService struct {
	gameRepo     game.Repository
	boxscoreRepo boxscore.Repository
}

func NewGameService(gameRepo game.Repository, boxscoreRepo boxscore.Repository) *GameService {
	return &GameService{
		gameRepo:     gameRepo,
		boxscoreRepo: boxscoreRepo,
	}
}

func (s *GameService) List(ctx context.Context, filter game.Filter) (GamePage, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.List")
	defer span.End()

	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 25
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	if filter.Status != "" && !game.IsKnownStatus(filter.Status) {
		return GamePage{}, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, filter.Status)
	}
	if filter.Date != "" {
		if _, err := time.Parse("2006-01-02", filter.Date); err != nil {
			return GamePage{}, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidInput)
		}
	}

	games, total, err := s.gameRepo.List(ctx, filter)
	if err != nil {
		return GamePage{}, fmt.Errorf("list games: %w", err)
	}

	return GamePage{
		Games:   games,
		Total:   total,
		HasMore: filter.Offset+filter.Limit < total,
	}, nil
}

func (s *GameService) Get(ctx context.Context, gameID int64) (GameDetail, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.Get")
	defer span.End()

	if gameID <= 0 {
		return GameDetail{}, fmt.Errorf("%w: game id is required", ErrInvalidInput)
	}

	g, found, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return GameDetail{}, fmt.Errorf("get game: %w", err)
	}
	if !found {
		return GameDetail{}, fmt.Errorf("%w: game=%d", ErrNotFound, gameID)
	}

	teamLines, err := s.boxscoreRepo.ListTeamLinesByGame(ctx, gameID)
	if err != nil {
		return GameDetail{}, fmt.Errorf("list team lines: %w", err)
	}
	playerLines, err := s.boxscoreRepo.ListPlayerLinesByGame(ctx, gameID)
	if err != nil {
		return GameDetail{}, fmt.Errorf("list player lines: %w", err)
	}

	sources := make([]string, 0, len(teamLines))
	seen := make(map[string]bool, len(teamLines))
	for _, line := range teamLines {
		if !seen[line.Source] {
			seen[line.Source] = true
			sources = append(sources, line.Source)
		}
	}

	return GameDetail{
		Game:            g,
		BoxScoreSources: sources,
		HasPlayerStats:  len(playerLines) > 0,
	}, nil
}

func (s *GameService) BoxScore(ctx context.Context, gameID int64) (GameBoxScore, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.BoxScore")
	defer span.End()

	if gameID <= 0 {
		return GameBoxScore{}, fmt.Errorf("%w: game id is required", ErrInvalidInput)
	}

	g, found, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return GameBoxScore{}, fmt.Errorf("get game: %w", err)
	}
	if !found {
		return GameBoxScore{}, fmt.Errorf("%w: game=%d", ErrNotFound, gameID)
	}

	playerLines, err := s.boxscoreRepo.ListPlayerLinesByGame(ctx, gameID)
	if err != nil {
		return GameBoxScore{}, fmt.Errorf("list player lines: %w", err)
	}
	teamLines, err := s.boxscoreRepo.ListTeamLinesByGame(ctx, gameID)
	if err != nil {
		return GameBoxScore{}, fmt.Errorf("list team lines: %w", err)
	}

	return GameBoxScore{
		Game:        g,
		PlayerLines: playerLines,
		TeamLines:   teamLines,
	}, nil
}
