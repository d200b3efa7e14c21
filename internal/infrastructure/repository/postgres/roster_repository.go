package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/courtline/courtline/internal/domain/roster"
	qb "github.com/courtline/courtline/internal/platform/querybuilder"
)

type RosterRepository struct {
	db *sqlx.DB
}

func NewRosterRepository(db *sqlx.DB) *RosterRepository {
	return &RosterRepository{db: db}
}

func (r *RosterRepository) ListByTeam(ctx context.Context, teamID int64, season int) ([]roster.Entry, error) {
	query, args, err := qb.Select("*").From("rosters").
		Where(
			qb.Eq("team_id", teamID),
			qb.Eq("season", season),
		).
		OrderBy("player_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select roster query: %w", err)
	}

	var rows []rosterEntryTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select roster: %w", err)
	}

	out := make([]roster.Entry, 0, len(rows))
	for _, row := range rows {
		out = append(out, roster.Entry{
			PlayerID: row.PlayerID,
			TeamID:   row.TeamID,
			Season:   row.Season,
			Active:   row.Active,
		})
	}

	return out, nil
}

func (r *RosterRepository) Upsert(ctx context.Context, e roster.Entry) error {
	now := time.Now().UTC()
	insertModel := rosterEntryTableModel{
		PlayerID:  e.PlayerID,
		TeamID:    e.TeamID,
		Season:    e.Season,
		Active:    e.Active,
		CreatedAt: now,
		UpdatedAt: now,
	}

	query, args, err := qb.InsertModel("rosters", insertModel, `ON CONFLICT (player_id, team_id, season)
DO UPDATE SET active = EXCLUDED.active, updated_at = NOW()`)
	if err != nil {
		return fmt.Errorf("build upsert roster entry query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert roster entry: %w", err)
	}

	return nil
}

func (r *RosterRepository) HasActiveEntry(ctx context.Context, playerID, teamID int64, season int) (bool, error) {
	query, args, err := qb.Select("COUNT(*)").From("rosters").
		Where(
			qb.Eq("player_id", playerID),
			qb.Eq("team_id", teamID),
			qb.Eq("season", season),
			qb.Eq("active", true),
		).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build count roster entry query: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return false, fmt.Errorf("count roster entry: %w", err)
	}

	return count > 0, nil
}
