package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/courtline/courtline/internal/domain/game"
	qb "github.com/courtline/courtline/internal/platform/querybuilder"
)

type GameRepository struct {
	db    *sqlx.DB
	refTZ string
}

// NewGameRepository needs the reference timezone name because calendar-date
// filters compare against local dates, not UTC.
func NewGameRepository(db *sqlx.DB, refTZ string) *GameRepository {
	if refTZ == "" {
		refTZ = "UTC"
	}
	return &GameRepository{db: db, refTZ: refTZ}
}

func (r *GameRepository) GetByID(ctx context.Context, gameID int64) (game.Game, bool, error) {
	query, args, err := qb.Select("*").From("games").
		Where(qb.Eq("id", gameID)).
		ToSQL()
	if err != nil {
		return game.Game{}, false, fmt.Errorf("build select game query: %w", err)
	}

	var row gameTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return game.Game{}, false, nil
		}
		return game.Game{}, false, fmt.Errorf("select game: %w", err)
	}

	return gameFromRow(row), true, nil
}

func (r *GameRepository) List(ctx context.Context, filter game.Filter) ([]game.Game, int, error) {
	conditions := []qb.Condition{}
	if filter.Season != 0 {
		conditions = append(conditions, qb.Eq("season", filter.Season))
	}
	if filter.Status != "" {
		conditions = append(conditions, qb.Eq("status", filter.Status))
	}
	if filter.TeamID != 0 {
		conditions = append(conditions, qb.Or(
			qb.Eq("home_team_id", filter.TeamID),
			qb.Eq("away_team_id", filter.TeamID),
		))
	}
	if filter.Date != "" {
		conditions = append(conditions, r.localDateIs("start_time", filter.Date))
	}

	countQuery, countArgs, err := qb.Select("COUNT(*)").From("games").
		Where(conditions...).
		ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("build count games query: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count games: %w", err)
	}

	pageQuery, pageArgs, err := qb.Select("*").From("games").
		Where(conditions...).
		OrderBy("start_time", "id").
		Limit(filter.Limit).
		Offset(filter.Offset).
		ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("build select games query: %w", err)
	}

	var rows []gameTableModel
	if err := r.db.SelectContext(ctx, &rows, pageQuery, pageArgs...); err != nil {
		return nil, 0, fmt.Errorf("select games: %w", err)
	}

	out := make([]game.Game, 0, len(rows))
	for _, row := range rows {
		out = append(out, gameFromRow(row))
	}

	return out, total, nil
}

func (r *GameRepository) FindByDatePair(ctx context.Context, date, homeAbbr, awayAbbr string) ([]game.Game, error) {
	query, args, err := qb.Select("g.*").From("games g").
		Join("JOIN teams home ON home.id = g.home_team_id").
		Join("JOIN teams away ON away.id = g.away_team_id").
		Where(
			r.localDateIs("g.start_time", date),
			qb.Eq("home.abbreviation", homeAbbr),
			qb.Eq("away.abbreviation", awayAbbr),
		).
		OrderBy("g.id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select games by date pair query: %w", err)
	}

	var rows []gameTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select games by date pair: %w", err)
	}

	out := make([]game.Game, 0, len(rows))
	for _, row := range rows {
		out = append(out, gameFromRow(row))
	}

	return out, nil
}

func (r *GameRepository) Create(ctx context.Context, g game.Game) (int64, error) {
	now := time.Now().UTC()
	insertModel := gameInsertModel{
		Season:     g.Season,
		StartTime:  g.StartTime,
		Status:     g.Status,
		HomeTeamID: g.HomeTeamID,
		AwayTeamID: g.AwayTeamID,
		HomeScore:  g.HomeScore,
		AwayScore:  g.AwayScore,
		Venue:      g.Venue,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	query, args, err := qb.InsertModel("games", insertModel, "RETURNING id")
	if err != nil {
		return 0, fmt.Errorf("build insert game query: %w", err)
	}

	var id int64
	if err := r.db.GetContext(ctx, &id, query, args...); err != nil {
		return 0, fmt.Errorf("insert game: %w", err)
	}

	return id, nil
}

// ApplyObservation is the guarded upsert: Final only overwrites Scheduled or
// InProgress, terminal rows keep their status against non-Final reports, and
// null scores never clobber existing ones.
func (r *GameRepository) ApplyObservation(ctx context.Context, obs game.Observation) error {
	query, args, err := qb.Update("games").
		SetExpr("status", `CASE
			WHEN ?::text = 'Final' AND status IN ('Scheduled', 'InProgress') THEN 'Final'
			WHEN ?::text <> 'Final' AND status NOT IN ('Final', 'Postponed', 'Cancelled') THEN ?::text
			ELSE status
		END`, obs.Status, obs.Status, obs.Status).
		SetExpr("home_score", "COALESCE(?::int, home_score)", obs.HomeScore).
		SetExpr("away_score", "COALESCE(?::int, away_score)", obs.AwayScore).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", obs.GameID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build apply game observation query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("apply game observation: %w", err)
	}

	return nil
}

func (r *GameRepository) ListSweepCandidates(ctx context.Context, before time.Time) ([]game.Game, error) {
	query, args, err := qb.Select("*").From("games").
		Where(qb.Or(
			qb.Expr(
				"(status NOT IN ('Final', 'Postponed', 'Cancelled') AND start_time < ?)",
				before,
			),
			qb.Expr("(status = 'Final' AND (home_score IS NULL OR away_score IS NULL))"),
		)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select sweep candidates query: %w", err)
	}

	var rows []gameTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select sweep candidates: %w", err)
	}

	out := make([]game.Game, 0, len(rows))
	for _, row := range rows {
		out = append(out, gameFromRow(row))
	}

	return out, nil
}

func (r *GameRepository) TransitionStatus(ctx context.Context, gameID int64, fromStatus, toStatus string) (bool, error) {
	query, args, err := qb.Update("games").
		Set("status", toStatus).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("id", gameID),
			qb.Eq("status", fromStatus),
		).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build transition game status query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("transition game status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("transition game status rows affected: %w", err)
	}

	return affected > 0, nil
}

func (r *GameRepository) SetScoresIfNull(ctx context.Context, gameID int64, homeScore, awayScore int) (bool, error) {
	query, args, err := qb.Update("games").
		Set("home_score", homeScore).
		Set("away_score", awayScore).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("id", gameID),
			qb.IsNull("home_score"),
			qb.IsNull("away_score"),
		).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build set game scores query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("set game scores: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("set game scores rows affected: %w", err)
	}

	return affected > 0, nil
}

func (r *GameRepository) ListFinalsMissingScores(ctx context.Context) ([]game.Game, error) {
	query, args, err := qb.Select("*").From("games").
		Where(
			qb.Eq("status", game.StatusFinal),
			qb.Or(qb.IsNull("home_score"), qb.IsNull("away_score")),
		).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select finals missing scores query: %w", err)
	}

	var rows []gameTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select finals missing scores: %w", err)
	}

	out := make([]game.Game, 0, len(rows))
	for _, row := range rows {
		out = append(out, gameFromRow(row))
	}

	return out, nil
}

func (r *GameRepository) ListFinals(ctx context.Context, cutoff time.Time) ([]game.Game, error) {
	conditions := []qb.Condition{
		qb.Eq("status", game.StatusFinal),
		qb.IsNotNull("home_score"),
		qb.IsNotNull("away_score"),
	}
	if !cutoff.IsZero() {
		conditions = append(conditions, qb.Lte("start_time", cutoff))
	}

	query, args, err := qb.Select("*").From("games").
		Where(conditions...).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select finals query: %w", err)
	}

	var rows []gameTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select finals: %w", err)
	}

	out := make([]game.Game, 0, len(rows))
	for _, row := range rows {
		out = append(out, gameFromRow(row))
	}

	return out, nil
}

func (r *GameRepository) localDateIs(column, date string) qb.Condition {
	return qb.Expr("("+column+" AT TIME ZONE ?)::date = ?::date", r.refTZ, date)
}

func gameFromRow(row gameTableModel) game.Game {
	return game.Game{
		ID:         row.ID,
		Season:     row.Season,
		StartTime:  row.StartTime,
		Status:     row.Status,
		HomeTeamID: row.HomeTeamID,
		AwayTeamID: row.AwayTeamID,
		HomeScore:  row.HomeScore,
		AwayScore:  row.AwayScore,
		Venue:      row.Venue,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
}
