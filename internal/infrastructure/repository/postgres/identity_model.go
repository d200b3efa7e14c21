package postgres

import "time"

type mappingTableModel struct {
	ID         int64     `db:"id"`
	EntityType string    `db:"entity_type"`
	Provider   string    `db:"provider"`
	ProviderID string    `db:"provider_id"`
	InternalID int64     `db:"internal_id"`
	Metadata   string    `db:"metadata"`
	FetchedAt  time.Time `db:"fetched_at"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

type mappingInsertModel struct {
	EntityType string    `db:"entity_type"`
	Provider   string    `db:"provider"`
	ProviderID string    `db:"provider_id"`
	InternalID int64     `db:"internal_id"`
	Metadata   string    `db:"metadata"`
	FetchedAt  time.Time `db:"fetched_at"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}
