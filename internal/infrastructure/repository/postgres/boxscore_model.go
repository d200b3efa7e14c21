package postgres

import "time"

type playerLineTableModel struct {
	GameID              int64     `db:"game_id"`
	PlayerID            int64     `db:"player_id"`
	TeamID              int64     `db:"team_id"`
	Source              string    `db:"source"`
	Minutes             *float64  `db:"minutes"`
	Points              int       `db:"points"`
	Rebounds            int       `db:"rebounds"`
	Assists             int       `db:"assists"`
	Steals              int       `db:"steals"`
	Blocks              int       `db:"blocks"`
	Turnovers           int       `db:"turnovers"`
	FieldGoalsMade      int       `db:"fgm"`
	FieldGoalsAttempted int       `db:"fga"`
	ThreesMade          int       `db:"tpm"`
	ThreesAttempted     int       `db:"tpa"`
	FreeThrowsMade      int       `db:"ftm"`
	FreeThrowsAttempted int       `db:"fta"`
	PlusMinus           *int      `db:"plus_minus"`
	Started             bool      `db:"started"`
	DNPReason           string    `db:"dnp_reason"`
	CreatedAt           time.Time `db:"created_at"`
	UpdatedAt           time.Time `db:"updated_at"`
}

type teamLineTableModel struct {
	GameID              int64     `db:"game_id"`
	TeamID              int64     `db:"team_id"`
	Source              string    `db:"source"`
	PointsQ1            *int      `db:"points_q1"`
	PointsQ2            *int      `db:"points_q2"`
	PointsQ3            *int      `db:"points_q3"`
	PointsQ4            *int      `db:"points_q4"`
	PointsOT            *int      `db:"points_ot"`
	Points              int       `db:"points"`
	Rebounds            int       `db:"rebounds"`
	Assists             int       `db:"assists"`
	Steals              int       `db:"steals"`
	Blocks              int       `db:"blocks"`
	Turnovers           int       `db:"turnovers"`
	FieldGoalsMade      int       `db:"fgm"`
	FieldGoalsAttempted int       `db:"fga"`
	ThreesMade          int       `db:"tpm"`
	ThreesAttempted     int       `db:"tpa"`
	FreeThrowsMade      int       `db:"ftm"`
	FreeThrowsAttempted int       `db:"fta"`
	CreatedAt           time.Time `db:"created_at"`
	UpdatedAt           time.Time `db:"updated_at"`
}

type teamPointsRowModel struct {
	TeamID int64 `db:"team_id"`
	Points int   `db:"points"`
}
