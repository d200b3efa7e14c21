package player

import (
	"fmt"
	"time"
)

// Player is one NBA player across seasons.
type Player struct {
	ID           int64
	FullName     string
	FirstName    string
	LastName     string
	BirthDate    *time.Time
	HeightInches *int
	WeightLbs    *int
}

func (p Player) Validate() error {
	if p.FullName == "" {
		return fmt.Errorf("player full name is required")
	}

	return nil
}
