package team

import "fmt"

// Team is one NBA franchise.
type Team struct {
	ID           int64
	Abbreviation string
	Name         string
	Conference   string
	Division     string
}

func (t Team) Validate() error {
	if t.Abbreviation == "" {
		return fmt.Errorf("team abbreviation is required")
	}
	if t.Name == "" {
		return fmt.Errorf("team name is required")
	}

	return nil
}
