package postgres

import "time"

type rosterEntryTableModel struct {
	PlayerID  int64     `db:"player_id"`
	TeamID    int64     `db:"team_id"`
	Season    int       `db:"season"`
	Active    bool      `db:"active"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
