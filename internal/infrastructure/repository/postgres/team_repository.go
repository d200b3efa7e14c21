package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/courtline/courtline/internal/domain/team"
	qb "github.com/courtline/courtline/internal/platform/querybuilder"
)

type TeamRepository struct {
	db *sqlx.DB
}

func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) List(ctx context.Context) ([]team.Team, error) {
	query, args, err := qb.Select("*").From("teams").
		OrderBy("abbreviation").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select teams query: %w", err)
	}

	var rows []teamTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select teams: %w", err)
	}

	out := make([]team.Team, 0, len(rows))
	for _, row := range rows {
		out = append(out, teamFromRow(row))
	}

	return out, nil
}

func (r *TeamRepository) GetByID(ctx context.Context, teamID int64) (team.Team, bool, error) {
	query, args, err := qb.Select("*").From("teams").
		Where(qb.Eq("id", teamID)).
		ToSQL()
	if err != nil {
		return team.Team{}, false, fmt.Errorf("build select team query: %w", err)
	}

	var row teamTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return team.Team{}, false, nil
		}
		return team.Team{}, false, fmt.Errorf("select team: %w", err)
	}

	return teamFromRow(row), true, nil
}

func (r *TeamRepository) GetByAbbreviation(ctx context.Context, abbreviation string) (team.Team, bool, error) {
	query, args, err := qb.Select("*").From("teams").
		Where(qb.Eq("abbreviation", abbreviation)).
		ToSQL()
	if err != nil {
		return team.Team{}, false, fmt.Errorf("build select team by abbreviation query: %w", err)
	}

	var row teamTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return team.Team{}, false, nil
		}
		return team.Team{}, false, fmt.Errorf("select team by abbreviation: %w", err)
	}

	return teamFromRow(row), true, nil
}

func teamFromRow(row teamTableModel) team.Team {
	return team.Team{
		ID:           row.ID,
		Abbreviation: row.Abbreviation,
		Name:         row.Name,
		Conference:   row.Conference,
		Division:     row.Division,
	}
}
