package game

import (
	"fmt"
	"strings"
	"time"
)

const (
	StatusScheduled  = "Scheduled"
	StatusInProgress = "InProgress"
	StatusFinal      = "Final"
	StatusPostponed  = "Postponed"
	StatusCancelled  = "Cancelled"
)

// Game is one scheduled or played NBA game.
type Game struct {
	ID         int64
	Season     int
	StartTime  time.Time
	Status     string
	HomeTeamID int64
	AwayTeamID int64
	HomeScore  *int
	AwayScore  *int
	Venue      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (g Game) Validate() error {
	if g.StartTime.IsZero() {
		return fmt.Errorf("game start time is required")
	}
	if g.HomeTeamID <= 0 || g.AwayTeamID <= 0 {
		return fmt.Errorf("game team ids are required")
	}
	if g.HomeTeamID == g.AwayTeamID {
		return fmt.Errorf("game teams must differ")
	}
	if !IsKnownStatus(g.Status) {
		return fmt.Errorf("unknown game status %q", g.Status)
	}

	return nil
}

func (g Game) HasScores() bool {
	return g.HomeScore != nil && g.AwayScore != nil
}

// Winner returns the winning team id for a Final game, or 0 when scores are
// missing or equal.
func (g Game) Winner() int64 {
	if g.Status != StatusFinal || !g.HasScores() {
		return 0
	}
	switch {
	case *g.HomeScore > *g.AwayScore:
		return g.HomeTeamID
	case *g.AwayScore > *g.HomeScore:
		return g.AwayTeamID
	default:
		return 0
	}
}

// ParseStatus maps provider status text onto the five-state enum. Returns
// false for anything it cannot classify; callers treat that as corrupt.
func ParseStatus(value string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "scheduled", "sched", "pregame", "pre-game", "1", "upcoming":
		return StatusScheduled, true
	case "inprogress", "in progress", "in_progress", "live", "halftime", "2":
		return StatusInProgress, true
	case "final", "final/ot", "f", "f/ot", "3", "closed":
		return StatusFinal, true
	case "postponed", "ppd":
		return StatusPostponed, true
	case "cancelled", "canceled":
		return StatusCancelled, true
	default:
		return "", false
	}
}

func IsKnownStatus(status string) bool {
	switch status {
	case StatusScheduled, StatusInProgress, StatusFinal, StatusPostponed, StatusCancelled:
		return true
	default:
		return false
	}
}

func IsTerminalStatus(status string) bool {
	switch status {
	case StatusFinal, StatusPostponed, StatusCancelled:
		return true
	default:
		return false
	}
}
