package roster

import "context"

// Repository describes roster persistence needs from use cases.
type Repository interface {
	ListByTeam(ctx context.Context, teamID int64, season int) ([]Entry, error)
	Upsert(ctx context.Context, e Entry) error
	// HasActiveEntry reports whether the player holds an active entry for the
	// team in the season.
	HasActiveEntry(ctx context.Context, playerID, teamID int64, season int) (bool, error)
}
