package player

import "context"

// Repository describes player persistence needs from use cases.
type Repository interface {
	GetByID(ctx context.Context, playerID int64) (Player, bool, error)
	// Search matches a case-insensitive substring of the full name.
	Search(ctx context.Context, query string, limit, offset int) ([]Player, int, error)
	// FindByName matches the normalized full name exactly.
	FindByName(ctx context.Context, normalized string) ([]Player, error)
	// FindByFoldedName matches the diacritic-folded full name exactly.
	FindByFoldedName(ctx context.Context, folded string) ([]Player, error)
	Create(ctx context.Context, p Player) (int64, error)
}
