package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"

	"github.com/courtline/courtline/internal/domain/identity"
	qb "github.com/courtline/courtline/internal/platform/querybuilder"
)

type IdentityRepository struct {
	db *sqlx.DB
}

func NewIdentityRepository(db *sqlx.DB) *IdentityRepository {
	return &IdentityRepository{db: db}
}

func (r *IdentityRepository) Lookup(ctx context.Context, entityType, provider, providerID string) (identity.Mapping, bool, error) {
	query, args, err := qb.Select("*").From("provider_id_map").
		Where(
			qb.Eq("entity_type", entityType),
			qb.Eq("provider", provider),
			qb.Eq("provider_id", providerID),
		).
		ToSQL()
	if err != nil {
		return identity.Mapping{}, false, fmt.Errorf("build select mapping query: %w", err)
	}

	var row mappingTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return identity.Mapping{}, false, nil
		}
		return identity.Mapping{}, false, fmt.Errorf("select mapping: %w", err)
	}

	mapped, err := mappingFromRow(row)
	if err != nil {
		return identity.Mapping{}, false, err
	}

	return mapped, true, nil
}

func (r *IdentityRepository) Upsert(ctx context.Context, m identity.Mapping) error {
	metadata, err := marshalMetadata(m.Metadata)
	if err != nil {
		return err
	}

	fetchedAt := m.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now().UTC()
	}

	now := time.Now().UTC()
	insertModel := mappingInsertModel{
		EntityType: m.EntityType,
		Provider:   m.Provider,
		ProviderID: m.ProviderID,
		InternalID: m.InternalID,
		Metadata:   metadata,
		FetchedAt:  fetchedAt,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	query, args, err := qb.InsertModel("provider_id_map", insertModel, `ON CONFLICT (entity_type, provider, provider_id)
DO UPDATE SET internal_id = EXCLUDED.internal_id, metadata = EXCLUDED.metadata, fetched_at = EXCLUDED.fetched_at, updated_at = NOW()`)
	if err != nil {
		return fmt.Errorf("build upsert mapping query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert mapping: %w", err)
	}

	return nil
}

func (r *IdentityRepository) ListByInternal(ctx context.Context, entityType string, internalID int64) ([]identity.Mapping, error) {
	query, args, err := qb.Select("*").From("provider_id_map").
		Where(
			qb.Eq("entity_type", entityType),
			qb.Eq("internal_id", internalID),
		).
		OrderBy("provider", "provider_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select mappings by internal id query: %w", err)
	}

	var rows []mappingTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select mappings by internal id: %w", err)
	}

	out := make([]identity.Mapping, 0, len(rows))
	for _, row := range rows {
		mapped, err := mappingFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, mapped)
	}

	return out, nil
}

func (r *IdentityRepository) ListUnmapped(ctx context.Context, entityType, provider string, limit int) ([]int64, error) {
	table, err := entityTable(entityType)
	if err != nil {
		return nil, err
	}

	query, args, err := qb.Select("t.id").From(table + " t").
		Where(qb.Expr(
			"NOT EXISTS (SELECT 1 FROM provider_id_map m WHERE m.entity_type = ? AND m.provider = ? AND m.internal_id = t.id)",
			entityType, provider,
		)).
		OrderBy("t.id").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select unmapped ids query: %w", err)
	}

	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, fmt.Errorf("select unmapped ids: %w", err)
	}

	return ids, nil
}

func entityTable(entityType string) (string, error) {
	switch entityType {
	case identity.EntityTypeGame:
		return "games", nil
	case identity.EntityTypePlayer:
		return "players", nil
	case identity.EntityTypeTeam:
		return "teams", nil
	default:
		return "", fmt.Errorf("unknown entity type %q", entityType)
	}
}

func marshalMetadata(metadata map[string]any) (string, error) {
	if len(metadata) == 0 {
		return "{}", nil
	}
	encoded, err := sonic.Marshal(metadata)
	if err != nil {
		return "", fmt.Errorf("marshal mapping metadata: %w", err)
	}
	return string(encoded), nil
}

func mappingFromRow(row mappingTableModel) (identity.Mapping, error) {
	var metadata map[string]any
	if row.Metadata != "" && row.Metadata != "{}" {
		if err := sonic.Unmarshal([]byte(row.Metadata), &metadata); err != nil {
			return identity.Mapping{}, fmt.Errorf("unmarshal mapping metadata: %w", err)
		}
	}

	return identity.Mapping{
		EntityType: row.EntityType,
		Provider:   row.Provider,
		ProviderID: row.ProviderID,
		InternalID: row.InternalID,
		Metadata:   metadata,
		FetchedAt:  row.FetchedAt,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}, nil
}
