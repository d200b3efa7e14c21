package memory

import (
	"time"

	"github.com/courtline/courtline/internal/domain/game"
	"github.com/courtline/courtline/internal/domain/player"
	"github.com/courtline/courtline/internal/domain/roster"
	"github.com/courtline/courtline/internal/domain/team"
)

const SeedSeason = 2026

func SeedTeams() []team.Team {
	return []team.Team{
		{ID: 1, Abbreviation: "BOS", Name: "Boston Celtics", Conference: "East", Division: "Atlantic"},
		{ID: 2, Abbreviation: "NYK", Name: "New York Knicks", Conference: "East", Division: "Atlantic"},
		{ID: 3, Abbreviation: "MIL", Name: "Milwaukee Bucks", Conference: "East", Division: "Central"},
		{ID: 4, Abbreviation: "DEN", Name: "Denver Nuggets", Conference: "West", Division: "Northwest"},
		{ID: 5, Abbreviation: "LAL", Name: "Los Angeles Lakers", Conference: "West", Division: "Pacific"},
		{ID: 6, Abbreviation: "GSW", Name: "Golden State Warriors", Conference: "West", Division: "Pacific"},
	}
}

func SeedTeamAbbreviations() map[int64]string {
	out := make(map[int64]string)
	for _, t := range SeedTeams() {
		out[t.ID] = t.Abbreviation
	}
	return out
}

func SeedPlayers() []player.Player {
	return []player.Player{
		{ID: 1, FullName: "Jayson Tatum", FirstName: "Jayson", LastName: "Tatum"},
		{ID: 2, FullName: "Jalen Brunson", FirstName: "Jalen", LastName: "Brunson"},
		{ID: 3, FullName: "Giannis Antetokounmpo", FirstName: "Giannis", LastName: "Antetokounmpo"},
		{ID: 4, FullName: "Nikola Jokić", FirstName: "Nikola", LastName: "Jokić"},
		{ID: 5, FullName: "LeBron James", FirstName: "LeBron", LastName: "James"},
		{ID: 6, FullName: "Stephen Curry", FirstName: "Stephen", LastName: "Curry"},
	}
}

func SeedGames() []game.Game {
	et, err := time.LoadLocation("America/New_York")
	if err != nil {
		et = time.UTC
	}

	home1, away1 := 112, 104
	home2, away2 := 98, 101

	return []game.Game{
		{
			ID: 1, Season: SeedSeason,
			StartTime:  time.Date(2026, time.January, 10, 19, 30, 0, 0, et),
			Status:     game.StatusFinal,
			HomeTeamID: 1, AwayTeamID: 2,
			HomeScore: &home1, AwayScore: &away1,
			Venue: "TD Garden",
		},
		{
			ID: 2, Season: SeedSeason,
			StartTime:  time.Date(2026, time.January, 11, 21, 0, 0, 0, et),
			Status:     game.StatusFinal,
			HomeTeamID: 4, AwayTeamID: 5,
			HomeScore: &home2, AwayScore: &away2,
			Venue: "Ball Arena",
		},
		{
			ID: 3, Season: SeedSeason,
			StartTime:  time.Date(2026, time.April, 2, 19, 0, 0, 0, et),
			Status:     game.StatusScheduled,
			HomeTeamID: 3, AwayTeamID: 6,
			Venue: "Fiserv Forum",
		},
	}
}

func SeedRosters() []roster.Entry {
	return []roster.Entry{
		{PlayerID: 1, TeamID: 1, Season: SeedSeason, Active: true},
		{PlayerID: 2, TeamID: 2, Season: SeedSeason, Active: true},
		{PlayerID: 3, TeamID: 3, Season: SeedSeason, Active: true},
		{PlayerID: 4, TeamID: 4, Season: SeedSeason, Active: true},
		{PlayerID: 5, TeamID: 5, Season: SeedSeason, Active: true},
		{PlayerID: 6, TeamID: 6, Season: SeedSeason, Active: true},
	}
}
