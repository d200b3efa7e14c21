package bref

import (
	"fmt"
	"strings"
	"time"

	"github.com/courtline/courtline/internal/domain/identity"
	"github.com/courtline/courtline/internal/usecase"
)

// BoxScoreRow is one scraped player row. The site publishes no stable player
// ids, so rows identify players by name and team abbreviation only.
type BoxScoreRow struct {
	PlayerName          string
	TeamAbbr            string
	Minutes             string
	Started             bool
	Reason              string
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
}

// BuildObservation assembles rows into the ingestion payload. The composite
// id carries the date and home abbreviation; the away abbreviation has to
// come from the rows, so exactly two team abbreviations must be present.
func BuildObservation(compositeID string, season int, rows []BoxScoreRow) (usecase.BoxScoreObservation, error) {
	date, homeAbbr, err := Parse(compositeID)
	if err != nil {
		return usecase.BoxScoreObservation{}, err
	}
	if len(rows) == 0 {
		return usecase.BoxScoreObservation{}, fmt.Errorf("composite id %s has no box score rows", compositeID)
	}

	awayAbbr := ""
	for _, row := range rows {
		abbr := strings.ToUpper(strings.TrimSpace(row.TeamAbbr))
		if abbr == "" {
			return usecase.BoxScoreObservation{}, fmt.Errorf("composite id %s has a row without a team abbreviation", compositeID)
		}
		if abbr == homeAbbr {
			continue
		}
		if awayAbbr != "" && awayAbbr != abbr {
			return usecase.BoxScoreObservation{}, fmt.Errorf("composite id %s mixes rows from %s and %s", compositeID, awayAbbr, abbr)
		}
		awayAbbr = abbr
	}
	if awayAbbr == "" {
		return usecase.BoxScoreObservation{}, fmt.Errorf("composite id %s has rows for the home side only", compositeID)
	}

	lines := make([]usecase.PlayerStatObservation, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, mapRow(row))
	}

	return usecase.BoxScoreObservation{
		Provider:       identity.ProviderBRef,
		ProviderGameID: compositeID,
		Season:         season,
		Game: usecase.GameCandidate{
			StartTime: time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, easternLocation()),
			HomeAbbr:  homeAbbr,
			AwayAbbr:  awayAbbr,
		},
		Lines: lines,
	}, nil
}

func mapRow(row BoxScoreRow) usecase.PlayerStatObservation {
	startPosition := ""
	if row.Started {
		startPosition = "S"
	}

	return usecase.PlayerStatObservation{
		PlayerName:          strings.TrimSpace(row.PlayerName),
		TeamAbbr:            strings.ToUpper(strings.TrimSpace(row.TeamAbbr)),
		Minutes:             strings.TrimSpace(row.Minutes),
		StartPosition:       startPosition,
		Comment:             strings.TrimSpace(row.Reason),
		Points:              row.Points,
		Rebounds:            row.Rebounds,
		Assists:             row.Assists,
		Steals:              row.Steals,
		Blocks:              row.Blocks,
		Turnovers:           row.Turnovers,
		FieldGoalsMade:      row.FieldGoalsMade,
		FieldGoalsAttempted: row.FieldGoalsAttempted,
		ThreesMade:          row.ThreesMade,
		ThreesAttempted:     row.ThreesAttempted,
		FreeThrowsMade:      row.FreeThrowsMade,
		FreeThrowsAttempted: row.FreeThrowsAttempted,
		PlusMinus:           row.PlusMinus,
	}
}

func easternLocation() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return time.UTC
	}
	return loc
}
