package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/courtline/courtline/internal/domain/game"
)

type GameRepository struct {
	mu     sync.RWMutex
	games  map[int64]game.Game
	abbrs  map[int64]string
	refLoc *time.Location
	nextID int64
}

func NewGameRepository(refLoc *time.Location, teamAbbrs map[int64]string, games []game.Game) *GameRepository {
	if refLoc == nil {
		refLoc = time.UTC
	}

	byID := make(map[int64]game.Game, len(games))
	var maxID int64
	for _, item := range games {
		byID[item.ID] = item
		if item.ID > maxID {
			maxID = item.ID
		}
	}

	return &GameRepository{
		games:  byID,
		abbrs:  teamAbbrs,
		refLoc: refLoc,
		nextID: maxID,
	}
}

func (r *GameRepository) GetByID(_ context.Context, gameID int64) (game.Game, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.games[gameID]
	return item, ok, nil
}

func (r *GameRepository) List(_ context.Context, filter game.Filter) ([]game.Game, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]game.Game, 0, len(r.games))
	for _, item := range r.games {
		if filter.Season != 0 && item.Season != filter.Season {
			continue
		}
		if filter.Status != "" && item.Status != filter.Status {
			continue
		}
		if filter.TeamID != 0 && item.HomeTeamID != filter.TeamID && item.AwayTeamID != filter.TeamID {
			continue
		}
		if filter.Date != "" && item.StartTime.In(r.refLoc).Format("2006-01-02") != filter.Date {
			continue
		}
		matched = append(matched, item)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].StartTime.Equal(matched[j].StartTime) {
			return matched[i].StartTime.Before(matched[j].StartTime)
		}
		return matched[i].ID < matched[j].ID
	})

	total := len(matched)
	if filter.Offset >= total {
		return nil, total, nil
	}
	end := total
	if filter.Limit > 0 && filter.Offset+filter.Limit < total {
		end = filter.Offset + filter.Limit
	}

	return matched[filter.Offset:end], total, nil
}

func (r *GameRepository) FindByDatePair(_ context.Context, date, homeAbbr, awayAbbr string) ([]game.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []game.Game
	for _, item := range r.games {
		if item.StartTime.In(r.refLoc).Format("2006-01-02") != date {
			continue
		}
		if r.abbrs[item.HomeTeamID] == homeAbbr && r.abbrs[item.AwayTeamID] == awayAbbr {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (r *GameRepository) Create(_ context.Context, g game.Game) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	g.ID = r.nextID
	now := time.Now()
	g.CreatedAt = now
	g.UpdatedAt = now
	r.games[g.ID] = g

	return g.ID, nil
}

// ApplyObservation mirrors the guarded SQL upsert: only Scheduled or
// InProgress rows advance to Final, and scores are never cleared.
func (r *GameRepository) ApplyObservation(_ context.Context, obs game.Observation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.games[obs.GameID]
	if !ok {
		return nil
	}

	if obs.Status == game.StatusFinal {
		if item.Status == game.StatusScheduled || item.Status == game.StatusInProgress {
			item.Status = game.StatusFinal
		}
	} else if !game.IsTerminalStatus(item.Status) {
		item.Status = obs.Status
	}

	if obs.HomeScore != nil {
		item.HomeScore = obs.HomeScore
	}
	if obs.AwayScore != nil {
		item.AwayScore = obs.AwayScore
	}
	item.UpdatedAt = time.Now()
	r.games[obs.GameID] = item

	return nil
}

func (r *GameRepository) ListSweepCandidates(_ context.Context, before time.Time) ([]game.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []game.Game
	for _, item := range r.games {
		nonTerminal := !game.IsKnownStatus(item.Status) || !game.IsTerminalStatus(item.Status)
		finalMissingScores := item.Status == game.StatusFinal && (item.HomeScore == nil || item.AwayScore == nil)
		if (nonTerminal && item.StartTime.Before(before)) || finalMissingScores {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (r *GameRepository) TransitionStatus(_ context.Context, gameID int64, fromStatus, toStatus string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.games[gameID]
	if !ok || item.Status != fromStatus {
		return false, nil
	}

	item.Status = toStatus
	item.UpdatedAt = time.Now()
	r.games[gameID] = item

	return true, nil
}

func (r *GameRepository) SetScoresIfNull(_ context.Context, gameID int64, homeScore, awayScore int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.games[gameID]
	if !ok || item.HomeScore != nil || item.AwayScore != nil {
		return false, nil
	}

	item.HomeScore = &homeScore
	item.AwayScore = &awayScore
	item.UpdatedAt = time.Now()
	r.games[gameID] = item

	return true, nil
}

func (r *GameRepository) ListFinalsMissingScores(_ context.Context) ([]game.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []game.Game
	for _, item := range r.games {
		if item.Status == game.StatusFinal && (item.HomeScore == nil || item.AwayScore == nil) {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (r *GameRepository) ListFinals(_ context.Context, cutoff time.Time) ([]game.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []game.Game
	for _, item := range r.games {
		if item.Status != game.StatusFinal || !item.HasScores() {
			continue
		}
		if !cutoff.IsZero() && item.StartTime.After(cutoff) {
			continue
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}
