package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/courtline/courtline/internal/domain/player"
	qb "github.com/courtline/courtline/internal/platform/querybuilder"
)

type PlayerRepository struct {
	db *sqlx.DB
}

func NewPlayerRepository(db *sqlx.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

func (r *PlayerRepository) GetByID(ctx context.Context, playerID int64) (player.Player, bool, error) {
	query, args, err := qb.Select("*").From("players").
		Where(qb.Eq("id", playerID)).
		ToSQL()
	if err != nil {
		return player.Player{}, false, fmt.Errorf("build select player query: %w", err)
	}

	var row playerTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return player.Player{}, false, nil
		}
		return player.Player{}, false, fmt.Errorf("select player: %w", err)
	}

	return playerFromRow(row), true, nil
}

func (r *PlayerRepository) Search(ctx context.Context, query string, limit, offset int) ([]player.Player, int, error) {
	conditions := []qb.Condition{}
	if needle := strings.TrimSpace(query); needle != "" {
		conditions = append(conditions, qb.ILike("full_name", "%"+needle+"%"))
	}

	countQuery, countArgs, err := qb.Select("COUNT(*)").From("players").
		Where(conditions...).
		ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("build count players query: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count players: %w", err)
	}

	pageQuery, pageArgs, err := qb.Select("*").From("players").
		Where(conditions...).
		OrderBy("full_name", "id").
		Limit(limit).
		Offset(offset).
		ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("build select players query: %w", err)
	}

	var rows []playerTableModel
	if err := r.db.SelectContext(ctx, &rows, pageQuery, pageArgs...); err != nil {
		return nil, 0, fmt.Errorf("select players: %w", err)
	}

	out := make([]player.Player, 0, len(rows))
	for _, row := range rows {
		out = append(out, playerFromRow(row))
	}

	return out, total, nil
}

func (r *PlayerRepository) FindByName(ctx context.Context, normalized string) ([]player.Player, error) {
	return r.findByColumn(ctx, "full_name_normalized", normalized)
}

func (r *PlayerRepository) FindByFoldedName(ctx context.Context, folded string) ([]player.Player, error) {
	return r.findByColumn(ctx, "full_name_folded", folded)
}

func (r *PlayerRepository) findByColumn(ctx context.Context, column, value string) ([]player.Player, error) {
	query, args, err := qb.Select("*").From("players").
		Where(qb.Eq(column, value)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select players by %s query: %w", column, err)
	}

	var rows []playerTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select players by %s: %w", column, err)
	}

	out := make([]player.Player, 0, len(rows))
	for _, row := range rows {
		out = append(out, playerFromRow(row))
	}

	return out, nil
}

func (r *PlayerRepository) Create(ctx context.Context, p player.Player) (int64, error) {
	now := time.Now().UTC()
	insertModel := playerInsertModel{
		FullName:           p.FullName,
		FullNameNormalized: player.NormalizeName(p.FullName),
		FullNameFolded:     player.FoldName(p.FullName),
		FirstName:          p.FirstName,
		LastName:           p.LastName,
		BirthDate:          p.BirthDate,
		HeightInches:       p.HeightInches,
		WeightLbs:          p.WeightLbs,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	query, args, err := qb.InsertModel("players", insertModel, "RETURNING id")
	if err != nil {
		return 0, fmt.Errorf("build insert player query: %w", err)
	}

	var id int64
	if err := r.db.GetContext(ctx, &id, query, args...); err != nil {
		return 0, fmt.Errorf("insert player: %w", err)
	}

	return id, nil
}

func playerFromRow(row playerTableModel) player.Player {
	return player.Player{
		ID:           row.ID,
		FullName:     row.FullName,
		FirstName:    row.FirstName,
		LastName:     row.LastName,
		BirthDate:    row.BirthDate,
		HeightInches: row.HeightInches,
		WeightLbs:    row.WeightLbs,
	}
}
