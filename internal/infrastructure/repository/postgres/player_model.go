package postgres

import "time"

type playerTableModel struct {
	ID                 int64      `db:"id"`
	FullName           string     `db:"full_name"`
	FullNameNormalized string     `db:"full_name_normalized"`
	FullNameFolded     string     `db:"full_name_folded"`
	FirstName          string     `db:"first_name"`
	LastName           string     `db:"last_name"`
	BirthDate          *time.Time `db:"birth_date"`
	HeightInches       *int       `db:"height_inches"`
	WeightLbs          *int       `db:"weight_lbs"`
	CreatedAt          time.Time  `db:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at"`
}

type playerInsertModel struct {
	FullName           string     `db:"full_name"`
	FullNameNormalized string     `db:"full_name_normalized"`
	FullNameFolded     string     `db:"full_name_folded"`
	FirstName          string     `db:"first_name"`
	LastName           string     `db:"last_name"`
	BirthDate          *time.Time `db:"birth_date"`
	HeightInches       *int       `db:"height_inches"`
	WeightLbs          *int       `db:"weight_lbs"`
	CreatedAt          time.Time  `db:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at"`
}
