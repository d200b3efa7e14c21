package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/courtline/courtline/internal/domain/boxscore"
)

type playerLineKey struct {
	gameID   int64
	playerID int64
	source   string
}

type teamLineKey struct {
	gameID int64
	teamID int64
	source string
}

type BoxScoreRepository struct {
	mu          sync.RWMutex
	playerLines map[playerLineKey]boxscore.PlayerLine
	teamLines   map[teamLineKey]boxscore.TeamLine
}

func NewBoxScoreRepository() *BoxScoreRepository {
	return &BoxScoreRepository{
		playerLines: make(map[playerLineKey]boxscore.PlayerLine),
		teamLines:   make(map[teamLineKey]boxscore.TeamLine),
	}
}

func (r *BoxScoreRepository) UpsertPlayerLines(_ context.Context, lines []boxscore.PlayerLine) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, line := range lines {
		r.playerLines[playerLineKey{line.GameID, line.PlayerID, line.Source}] = line
	}

	return nil
}

func (r *BoxScoreRepository) UpsertTeamLine(_ context.Context, line boxscore.TeamLine) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := teamLineKey{line.GameID, line.TeamID, line.Source}
	// Re-deriving a team line never clears backfilled quarter totals.
	if existing, ok := r.teamLines[key]; ok && !line.Quarters.Reported() {
		line.Quarters = existing.Quarters
	}
	r.teamLines[key] = line

	return nil
}

func (r *BoxScoreRepository) SetQuarterScores(_ context.Context, gameID, teamID int64, q boxscore.QuarterScores) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	changed := false
	for key, line := range r.teamLines {
		if key.gameID != gameID || key.teamID != teamID {
			continue
		}
		line.Quarters = q
		r.teamLines[key] = line
		changed = true
	}

	return changed, nil
}

func (r *BoxScoreRepository) GameIDsMissingQuarterScores(_ context.Context, gameIDs []int64) (map[int64]bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wanted := make(map[int64]bool, len(gameIDs))
	for _, id := range gameIDs {
		wanted[id] = true
	}

	out := make(map[int64]bool)
	for key, line := range r.teamLines {
		if wanted[key.gameID] && !line.Quarters.Reported() {
			out[key.gameID] = true
		}
	}

	return out, nil
}

func (r *BoxScoreRepository) ListPlayerLinesByGame(_ context.Context, gameID int64) ([]boxscore.PlayerLine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []boxscore.PlayerLine
	for _, line := range r.playerLines {
		if line.GameID == gameID {
			out = append(out, line)
		}
	}
	sortPlayerLines(out)

	return out, nil
}

func (r *BoxScoreRepository) ListTeamLinesByGame(_ context.Context, gameID int64) ([]boxscore.TeamLine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []boxscore.TeamLine
	for _, line := range r.teamLines {
		if line.GameID == gameID {
			out = append(out, line)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TeamID != out[j].TeamID {
			return out[i].TeamID < out[j].TeamID
		}
		return out[i].Source < out[j].Source
	})

	return out, nil
}

func (r *BoxScoreRepository) ListPlayerLinesByPlayer(_ context.Context, playerID int64, limit, offset int) ([]boxscore.PlayerLine, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []boxscore.PlayerLine
	for _, line := range r.playerLines {
		if line.PlayerID == playerID {
			matched = append(matched, line)
		}
	}
	sortPlayerLines(matched)

	total := len(matched)
	if offset >= total {
		return nil, total, nil
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}

	return matched[offset:end], total, nil
}

func (r *BoxScoreRepository) SumPlayerPoints(_ context.Context, gameID int64, source string) ([]boxscore.TeamPoints, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sums := make(map[int64]int)
	for _, line := range r.playerLines {
		if line.GameID == gameID && line.Source == source {
			sums[line.TeamID] += line.Points
		}
	}

	out := make([]boxscore.TeamPoints, 0, len(sums))
	for teamID, points := range sums {
		out = append(out, boxscore.TeamPoints{TeamID: teamID, Points: points})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TeamID < out[j].TeamID })

	return out, nil
}

func (r *BoxScoreRepository) GameIDsWithTeamStats(_ context.Context, gameIDs []int64, source string) (map[int64]bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wanted := make(map[int64]bool, len(gameIDs))
	for _, id := range gameIDs {
		wanted[id] = true
	}

	out := make(map[int64]bool)
	for key := range r.teamLines {
		if wanted[key.gameID] && key.source == source {
			out[key.gameID] = true
		}
	}

	return out, nil
}

func (r *BoxScoreRepository) GameIDsWithPlayerStats(_ context.Context, gameIDs []int64) (map[int64]bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wanted := make(map[int64]bool, len(gameIDs))
	for _, id := range gameIDs {
		wanted[id] = true
	}

	out := make(map[int64]bool)
	for key := range r.playerLines {
		if wanted[key.gameID] {
			out[key.gameID] = true
		}
	}

	return out, nil
}

func sortPlayerLines(lines []boxscore.PlayerLine) {
	sort.Slice(lines, func(i, j int) bool {
		if lines[i].GameID != lines[j].GameID {
			return lines[i].GameID < lines[j].GameID
		}
		if lines[i].PlayerID != lines[j].PlayerID {
			return lines[i].PlayerID < lines[j].PlayerID
		}
		return lines[i].Source < lines[j].Source
	})
}
