package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/courtline/courtline/internal/domain/roster"
)

type rosterKey struct {
	playerID int64
	teamID   int64
	season   int
}

type RosterRepository struct {
	mu      sync.RWMutex
	entries map[rosterKey]roster.Entry
}

func NewRosterRepository(entries []roster.Entry) *RosterRepository {
	byKey := make(map[rosterKey]roster.Entry, len(entries))
	for _, e := range entries {
		byKey[rosterKey{e.PlayerID, e.TeamID, e.Season}] = e
	}

	return &RosterRepository{entries: byKey}
}

func (r *RosterRepository) ListByTeam(_ context.Context, teamID int64, season int) ([]roster.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []roster.Entry
	for _, e := range r.entries {
		if e.TeamID == teamID && e.Season == season {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlayerID < out[j].PlayerID })

	return out, nil
}

func (r *RosterRepository) Upsert(_ context.Context, e roster.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[rosterKey{e.PlayerID, e.TeamID, e.Season}] = e

	return nil
}

func (r *RosterRepository) HasActiveEntry(_ context.Context, playerID, teamID int64, season int) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[rosterKey{playerID, teamID, season}]
	return ok && e.Active, nil
}
