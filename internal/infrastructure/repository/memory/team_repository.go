package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/courtline/courtline/internal/domain/team"
)

type TeamRepository struct {
	mu    sync.RWMutex
	teams map[int64]team.Team
}

func NewTeamRepository(teams []team.Team) *TeamRepository {
	byID := make(map[int64]team.Team, len(teams))
	for _, item := range teams {
		byID[item.ID] = item
	}

	return &TeamRepository{teams: byID}
}

func (r *TeamRepository) List(_ context.Context) ([]team.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]team.Team, 0, len(r.teams))
	for _, item := range r.teams {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Abbreviation < out[j].Abbreviation })

	return out, nil
}

func (r *TeamRepository) GetByID(_ context.Context, teamID int64) (team.Team, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.teams[teamID]
	return item, ok, nil
}

func (r *TeamRepository) GetByAbbreviation(_ context.Context, abbreviation string) (team.Team, bool, error) {
	abbreviation = strings.ToUpper(strings.TrimSpace(abbreviation))

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.teams {
		if item.Abbreviation == abbreviation {
			return item, true, nil
		}
	}

	return team.Team{}, false, nil
}
