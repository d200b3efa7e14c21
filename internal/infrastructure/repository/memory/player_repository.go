package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/courtline/courtline/internal/domain/player"
)

type PlayerRepository struct {
	mu      sync.RWMutex
	players map[int64]player.Player
	nextID  int64
}

func NewPlayerRepository(players []player.Player) *PlayerRepository {
	byID := make(map[int64]player.Player, len(players))
	var maxID int64
	for _, item := range players {
		byID[item.ID] = item
		if item.ID > maxID {
			maxID = item.ID
		}
	}

	return &PlayerRepository{players: byID, nextID: maxID}
}

func (r *PlayerRepository) GetByID(_ context.Context, playerID int64) (player.Player, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.players[playerID]
	return item, ok, nil
}

func (r *PlayerRepository) Search(_ context.Context, query string, limit, offset int) ([]player.Player, int, error) {
	needle := strings.ToLower(strings.TrimSpace(query))

	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]player.Player, 0, len(r.players))
	for _, item := range r.players {
		if needle == "" || strings.Contains(strings.ToLower(item.FullName), needle) {
			matched = append(matched, item)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].FullName < matched[j].FullName })

	total := len(matched)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}

	return matched[offset:end], total, nil
}

func (r *PlayerRepository) FindByName(_ context.Context, normalized string) ([]player.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []player.Player
	for _, item := range r.players {
		if player.NormalizeName(item.FullName) == normalized {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (r *PlayerRepository) FindByFoldedName(_ context.Context, folded string) ([]player.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []player.Player
	for _, item := range r.players {
		if player.FoldName(item.FullName) == folded {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (r *PlayerRepository) Create(_ context.Context, p player.Player) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	p.ID = r.nextID
	r.players[p.ID] = p

	return p.ID, nil
}
