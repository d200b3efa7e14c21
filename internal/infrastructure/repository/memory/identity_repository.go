package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/courtline/courtline/internal/domain/identity"
)

type identityKey struct {
	entityType string
	provider   string
	providerID string
}

type IdentityRepository struct {
	mu       sync.RWMutex
	mappings map[identityKey]identity.Mapping
	// known holds internal ids per entity type so ListUnmapped can report
	// the gap without reaching into the entity stores.
	known map[string][]int64
}

func NewIdentityRepository() *IdentityRepository {
	return &IdentityRepository{
		mappings: make(map[identityKey]identity.Mapping),
		known:    make(map[string][]int64),
	}
}

// RegisterInternal teaches the repository which internal ids exist, for the
// unmapped listing.
func (r *IdentityRepository) RegisterInternal(entityType string, ids ...int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.known[entityType] = append(r.known[entityType], ids...)
}

func (r *IdentityRepository) Lookup(_ context.Context, entityType, provider, providerID string) (identity.Mapping, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.mappings[identityKey{entityType, provider, providerID}]
	return m, ok, nil
}

func (r *IdentityRepository) Upsert(_ context.Context, m identity.Mapping) error {
	key := identityKey{m.EntityType, m.Provider, m.ProviderID}
	now := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.mappings[key]; ok {
		existing.InternalID = m.InternalID
		existing.Metadata = m.Metadata
		existing.FetchedAt = m.FetchedAt
		existing.UpdatedAt = now
		r.mappings[key] = existing
		return nil
	}

	m.CreatedAt = now
	m.UpdatedAt = now
	r.mappings[key] = m

	return nil
}

func (r *IdentityRepository) ListByInternal(_ context.Context, entityType string, internalID int64) ([]identity.Mapping, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []identity.Mapping
	for _, m := range r.mappings {
		if m.EntityType == entityType && m.InternalID == internalID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Provider < out[j].Provider })

	return out, nil
}

func (r *IdentityRepository) ListUnmapped(_ context.Context, entityType, provider string, limit int) ([]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	mapped := make(map[int64]bool)
	for _, m := range r.mappings {
		if m.EntityType == entityType && m.Provider == provider {
			mapped[m.InternalID] = true
		}
	}

	var out []int64
	for _, id := range r.known[entityType] {
		if !mapped[id] {
			out = append(out, id)
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return out, nil
}
