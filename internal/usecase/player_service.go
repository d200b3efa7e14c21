package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/courtline/courtline/internal/domain/boxscore"
	"github.com/courtline/courtline/internal/domain/player"
)

// PlayerPage is one page of a player search.
type PlayerPage struct {
	Players []player.Player
	Total   int
	HasMore bool
}

// PlayerGameLog is one page of a player's stat lines.
type PlayerGameLog struct {
	Lines   []boxscore.PlayerLine
	Total   int
	HasMore bool
}

type PlayerService struct {
	playerRepo   player.Repository
	boxscoreRepo boxscore.Repository
}

func NewPlayerService(playerRepo player.Repository, boxscoreRepo boxscore.Repository) *PlayerService {
	return &PlayerService{
		playerRepo:   playerRepo,
		boxscoreRepo: boxscoreRepo,
	}
}

func (s *PlayerService) Search(ctx context.Context, query string, limit, offset int) (PlayerPage, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.Search")
	defer span.End()

	query = strings.TrimSpace(query)
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	if offset < 0 {
		offset = 0
	}

	players, total, err := s.playerRepo.Search(ctx, query, limit, offset)
	if err != nil {
		return PlayerPage{}, fmt.Errorf("search players: %w", err)
	}

	return PlayerPage{
		Players: players,
		Total:   total,
		HasMore: offset+limit < total,
	}, nil
}

func (s *PlayerService) Get(ctx context.Context, playerID int64) (player.Player, error) {
	if playerID <= 0 {
		return player.Player{}, fmt.Errorf("%w: player id is required", ErrInvalidInput)
	}

	p, found, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return player.Player{}, fmt.Errorf("get player: %w", err)
	}
	if !found {
		return player.Player{}, fmt.Errorf("%w: player=%d", ErrNotFound, playerID)
	}

	return p, nil
}

func (s *PlayerService) GameLog(ctx context.Context, playerID int64, limit, offset int) (PlayerGameLog, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.GameLog")
	defer span.End()

	if _, err := s.Get(ctx, playerID); err != nil {
		return PlayerGameLog{}, err
	}
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	if offset < 0 {
		offset = 0
	}

	lines, total, err := s.boxscoreRepo.ListPlayerLinesByPlayer(ctx, playerID, limit, offset)
	if err != nil {
		return PlayerGameLog{}, fmt.Errorf("list player lines: %w", err)
	}

	return PlayerGameLog{
		Lines:   lines,
		Total:   total,
		HasMore: offset+limit < total,
	}, nil
}
