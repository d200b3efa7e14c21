package identity

import (
	"fmt"
	"time"
)

const (
	EntityTypeGame   = "game"
	EntityTypePlayer = "player"
	EntityTypeTeam   = "team"
)

const (
	ProviderNBAStats = "nbastats"
	ProviderBDL      = "bdl"
	ProviderBRef     = "bref"
)

// Mapping links one provider's id for an entity to the internal id. The
// (entity_type, provider, provider_id) triple is unique; re-recording the
// same triple refreshes metadata and fetched_at.
type Mapping struct {
	EntityType string
	Provider   string
	ProviderID string
	InternalID int64
	Metadata   map[string]any
	FetchedAt  time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (m Mapping) Validate() error {
	if !IsKnownEntityType(m.EntityType) {
		return fmt.Errorf("unknown entity type %q", m.EntityType)
	}
	if m.Provider == "" {
		return fmt.Errorf("mapping provider is required")
	}
	if m.ProviderID == "" {
		return fmt.Errorf("mapping provider id is required")
	}
	if m.InternalID <= 0 {
		return fmt.Errorf("mapping internal id is required")
	}

	return nil
}

func IsKnownEntityType(entityType string) bool {
	switch entityType {
	case EntityTypeGame, EntityTypePlayer, EntityTypeTeam:
		return true
	default:
		return false
	}
}
