package postgres

import "time"

type gameTableModel struct {
	ID         int64     `db:"id"`
	Season     int       `db:"season"`
	StartTime  time.Time `db:"start_time"`
	Status     string    `db:"status"`
	HomeTeamID int64     `db:"home_team_id"`
	AwayTeamID int64     `db:"away_team_id"`
	HomeScore  *int      `db:"home_score"`
	AwayScore  *int      `db:"away_score"`
	Venue      string    `db:"venue"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

type gameInsertModel struct {
	Season     int       `db:"season"`
	StartTime  time.Time `db:"start_time"`
	Status     string    `db:"status"`
	HomeTeamID int64     `db:"home_team_id"`
	AwayTeamID int64     `db:"away_team_id"`
	HomeScore  *int      `db:"home_score"`
	AwayScore  *int      `db:"away_score"`
	Venue      string    `db:"venue"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}
