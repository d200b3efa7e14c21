package postgres

import "time"

type teamTableModel struct {
	ID           int64     `db:"id"`
	Abbreviation string    `db:"abbreviation"`
	Name         string    `db:"name"`
	Conference   string    `db:"conference"`
	Division     string    `db:"division"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}
