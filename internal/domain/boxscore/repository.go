package boxscore

import "context"

// TeamPoints is one team's player-point sum for a game and source.
type TeamPoints struct {
	TeamID int64
	Points int
}

// Repository describes box score persistence needs from use cases.
type Repository interface {
	UpsertPlayerLines(ctx context.Context, lines []PlayerLine) error
	UpsertTeamLine(ctx context.Context, line TeamLine) error
	ListPlayerLinesByGame(ctx context.Context, gameID int64) ([]PlayerLine, error)
	ListTeamLinesByGame(ctx context.Context, gameID int64) ([]TeamLine, error)
	ListPlayerLinesByPlayer(ctx context.Context, playerID int64, limit, offset int) ([]PlayerLine, int, error)
	// SumPlayerPoints returns per-team player-point sums for a game from one
	// source.
	SumPlayerPoints(ctx context.Context, gameID int64, source string) ([]TeamPoints, error)
	// GameIDsWithTeamStats filters the given game ids down to those having at
	// least one team line from the source.
	GameIDsWithTeamStats(ctx context.Context, gameIDs []int64, source string) (map[int64]bool, error)
	// GameIDsWithPlayerStats filters the given game ids down to those having
	// at least one player line from any source.
	GameIDsWithPlayerStats(ctx context.Context, gameIDs []int64) (map[int64]bool, error)
	// SetQuarterScores stores per-period totals on every source's team line
	// for the game and team pair; reports whether any row changed.
	SetQuarterScores(ctx context.Context, gameID, teamID int64, q QuarterScores) (bool, error)
	// GameIDsMissingQuarterScores filters the given game ids down to those
	// having team lines whose quarter totals are all still null.
	GameIDsMissingQuarterScores(ctx context.Context, gameIDs []int64) (map[int64]bool, error)
}
