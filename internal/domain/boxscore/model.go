package boxscore

import (
	"fmt"
	"strconv"
	"strings"
)

// PlayerLine is one player's statistical line for one game, tagged with the
// provider that reported it. Keyed by (game_id, player_id, source).
type PlayerLine struct {
	GameID              int64
	PlayerID            int64
	TeamID              int64
	Source              string
	Minutes             *float64
	Points              int
	Rebounds            int
	Assists             int
	Steals              int
	Blocks              int
	Turnovers           int
	FieldGoalsMade      int
	FieldGoalsAttempted int
	ThreesMade          int
	ThreesAttempted     int
	FreeThrowsMade      int
	FreeThrowsAttempted int
	PlusMinus           *int
	Started             bool
	DNPReason           string
}

func (l PlayerLine) Validate() error {
	if l.GameID <= 0 {
		return fmt.Errorf("player line game id is required")
	}
	if l.PlayerID <= 0 {
		return fmt.Errorf("player line player id is required")
	}
	if l.TeamID <= 0 {
		return fmt.Errorf("player line team id is required")
	}
	if l.Source == "" {
		return fmt.Errorf("player line source is required")
	}

	return nil
}

// Played reports whether the player logged any time.
func (l PlayerLine) Played() bool {
	return l.Minutes != nil && *l.Minutes > 0
}

// QuarterScores is one team's per-period point totals for a game. Overtime
// periods collapse into one total. Nil means the period was never reported,
// not zero points.
type QuarterScores struct {
	Q1 *int
	Q2 *int
	Q3 *int
	Q4 *int
	OT *int
}

// Reported reports whether any regulation period carries a total.
func (q QuarterScores) Reported() bool {
	return q.Q1 != nil || q.Q2 != nil || q.Q3 != nil || q.Q4 != nil
}

// TeamLine is one team's aggregate line for one game. Rows are derived by
// summing player lines from the same source; the source tag is never mixed.
// Quarter totals come from provider summaries, not from the player rows, so
// they stay nil until a quarter backfill fills them.
type TeamLine struct {
	GameID              int64
	TeamID              int64
	Source              string
	Quarters            QuarterScores
	Points              int
	Rebounds            int
	Assists             int
	Steals              int
	Blocks              int
	Turnovers           int
	FieldGoalsMade      int
	FieldGoalsAttempted int
	ThreesMade          int
	ThreesAttempted     int
	FreeThrowsMade      int
	FreeThrowsAttempted int
}

func (l TeamLine) Validate() error {
	if l.GameID <= 0 {
		return fmt.Errorf("team line game id is required")
	}
	if l.TeamID <= 0 {
		return fmt.Errorf("team line team id is required")
	}
	if l.Source == "" {
		return fmt.Errorf("team line source is required")
	}

	return nil
}

// ParseMinutes converts provider "MM:SS" playing time to decimal minutes.
// Empty input means the player did not play and yields nil.
func ParseMinutes(value string) (*float64, error) {
	value = strings.TrimSpace(value)
	if value == "" || value == "0" || value == "0:00" {
		return nil, nil
	}

	parts := strings.SplitN(value, ":", 2)
	mins, err := strconv.Atoi(parts[0])
	if err != nil {
		return nil, fmt.Errorf("parse minutes %q: %w", value, err)
	}

	seconds := 0
	if len(parts) == 2 {
		seconds, err = strconv.Atoi(parts[1])
		if err != nil || seconds < 0 || seconds > 59 {
			return nil, fmt.Errorf("parse minutes %q: invalid seconds", value)
		}
	}
	if mins < 0 {
		return nil, fmt.Errorf("parse minutes %q: negative", value)
	}

	out := float64(mins) + float64(seconds)/60
	return &out, nil
}

// SumPlayerLines aggregates player rows into one team line. All rows must
// share the same game, team and source.
func SumPlayerLines(lines []PlayerLine) (TeamLine, error) {
	if len(lines) == 0 {
		return TeamLine{}, fmt.Errorf("no player lines to aggregate")
	}

	out := TeamLine{
		GameID: lines[0].GameID,
		TeamID: lines[0].TeamID,
		Source: lines[0].Source,
	}
	for _, l := range lines {
		if l.GameID != out.GameID || l.TeamID != out.TeamID || l.Source != out.Source {
			return TeamLine{}, fmt.Errorf("mixed game/team/source in aggregation")
		}
		out.Points += l.Points
		out.Rebounds += l.Rebounds
		out.Assists += l.Assists
		out.Steals += l.Steals
		out.Blocks += l.Blocks
		out.Turnovers += l.Turnovers
		out.FieldGoalsMade += l.FieldGoalsMade
		out.FieldGoalsAttempted += l.FieldGoalsAttempted
		out.ThreesMade += l.ThreesMade
		out.ThreesAttempted += l.ThreesAttempted
		out.FreeThrowsMade += l.FreeThrowsMade
		out.FreeThrowsAttempted += l.FreeThrowsAttempted
	}

	return out, nil
}
