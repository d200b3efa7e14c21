package identity

import "context"

// Repository describes provider id map persistence needs from use cases.
type Repository interface {
	Lookup(ctx context.Context, entityType, provider, providerID string) (Mapping, bool, error)
	// Upsert is keyed by (entity_type, provider, provider_id) and refreshes
	// internal_id, metadata and fetched_at on conflict.
	Upsert(ctx context.Context, m Mapping) error
	ListByInternal(ctx context.Context, entityType string, internalID int64) ([]Mapping, error)
	// ListUnmapped returns internal ids of entities that have no mapping for
	// the given provider.
	ListUnmapped(ctx context.Context, entityType, provider string, limit int) ([]int64, error)
}
