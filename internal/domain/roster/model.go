package roster

import "fmt"

// Entry places a player on a team for a season. A stat row for a player with
// no active entry is reported as a defect, not rejected.
type Entry struct {
	PlayerID int64
	TeamID   int64
	Season   int
	Active   bool
}

func (e Entry) Validate() error {
	if e.PlayerID <= 0 {
		return fmt.Errorf("roster player id is required")
	}
	if e.TeamID <= 0 {
		return fmt.Errorf("roster team id is required")
	}
	if e.Season <= 0 {
		return fmt.Errorf("roster season is required")
	}

	return nil
}
