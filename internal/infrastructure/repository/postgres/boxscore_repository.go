package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/courtline/courtline/internal/domain/boxscore"
	qb "github.com/courtline/courtline/internal/platform/querybuilder"
)

type BoxScoreRepository struct {
	db *sqlx.DB
}

func NewBoxScoreRepository(db *sqlx.DB) *BoxScoreRepository {
	return &BoxScoreRepository{db: db}
}

func (r *BoxScoreRepository) UpsertPlayerLines(ctx context.Context, lines []boxscore.PlayerLine) error {
	now := time.Now().UTC()
	for _, line := range lines {
		insertModel := playerLineTableModel{
			GameID:              line.GameID,
			PlayerID:            line.PlayerID,
			TeamID:              line.TeamID,
			Source:              line.Source,
			Minutes:             line.Minutes,
			Points:              line.Points,
			Rebounds:            line.Rebounds,
			Assists:             line.Assists,
			Steals:              line.Steals,
			Blocks:              line.Blocks,
			Turnovers:           line.Turnovers,
			FieldGoalsMade:      line.FieldGoalsMade,
			FieldGoalsAttempted: line.FieldGoalsAttempted,
			ThreesMade:          line.ThreesMade,
			ThreesAttempted:     line.ThreesAttempted,
			FreeThrowsMade:      line.FreeThrowsMade,
			FreeThrowsAttempted: line.FreeThrowsAttempted,
			PlusMinus:           line.PlusMinus,
			Started:             line.Started,
			DNPReason:           line.DNPReason,
			CreatedAt:           now,
			UpdatedAt:           now,
		}

		query, args, err := qb.InsertModel("player_game_stats", insertModel, `ON CONFLICT (game_id, player_id, source)
DO UPDATE SET team_id = EXCLUDED.team_id, minutes = EXCLUDED.minutes, points = EXCLUDED.points,
rebounds = EXCLUDED.rebounds, assists = EXCLUDED.assists, steals = EXCLUDED.steals,
blocks = EXCLUDED.blocks, turnovers = EXCLUDED.turnovers,
fgm = EXCLUDED.fgm, fga = EXCLUDED.fga, tpm = EXCLUDED.tpm, tpa = EXCLUDED.tpa,
ftm = EXCLUDED.ftm, fta = EXCLUDED.fta, plus_minus = EXCLUDED.plus_minus,
started = EXCLUDED.started, dnp_reason = EXCLUDED.dnp_reason, updated_at = NOW()`)
		if err != nil {
			return fmt.Errorf("build upsert player line query: %w", err)
		}

		if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert player line: %w", err)
		}
	}

	return nil
}

func (r *BoxScoreRepository) UpsertTeamLine(ctx context.Context, line boxscore.TeamLine) error {
	now := time.Now().UTC()
	insertModel := teamLineTableModel{
		GameID:              line.GameID,
		TeamID:              line.TeamID,
		Source:              line.Source,
		PointsQ1:            line.Quarters.Q1,
		PointsQ2:            line.Quarters.Q2,
		PointsQ3:            line.Quarters.Q3,
		PointsQ4:            line.Quarters.Q4,
		PointsOT:            line.Quarters.OT,
		Points:              line.Points,
		Rebounds:            line.Rebounds,
		Assists:             line.Assists,
		Steals:              line.Steals,
		Blocks:              line.Blocks,
		Turnovers:           line.Turnovers,
		FieldGoalsMade:      line.FieldGoalsMade,
		FieldGoalsAttempted: line.FieldGoalsAttempted,
		ThreesMade:          line.ThreesMade,
		ThreesAttempted:     line.ThreesAttempted,
		FreeThrowsMade:      line.FreeThrowsMade,
		FreeThrowsAttempted: line.FreeThrowsAttempted,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	// Quarter columns stay out of the update clause so re-deriving a team
	// line never clears a backfilled period total.
	query, args, err := qb.InsertModel("team_game_stats", insertModel, `ON CONFLICT (game_id, team_id, source)
DO UPDATE SET points = EXCLUDED.points, rebounds = EXCLUDED.rebounds, assists = EXCLUDED.assists,
steals = EXCLUDED.steals, blocks = EXCLUDED.blocks, turnovers = EXCLUDED.turnovers,
fgm = EXCLUDED.fgm, fga = EXCLUDED.fga, tpm = EXCLUDED.tpm, tpa = EXCLUDED.tpa,
ftm = EXCLUDED.ftm, fta = EXCLUDED.fta, updated_at = NOW()`)
	if err != nil {
		return fmt.Errorf("build upsert team line query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert team line: %w", err)
	}

	return nil
}

func (r *BoxScoreRepository) ListPlayerLinesByGame(ctx context.Context, gameID int64) ([]boxscore.PlayerLine, error) {
	query, args, err := qb.Select("*").From("player_game_stats").
		Where(qb.Eq("game_id", gameID)).
		OrderBy("team_id", "player_id", "source").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select player lines by game query: %w", err)
	}

	var rows []playerLineTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select player lines by game: %w", err)
	}

	out := make([]boxscore.PlayerLine, 0, len(rows))
	for _, row := range rows {
		out = append(out, playerLineFromRow(row))
	}

	return out, nil
}

func (r *BoxScoreRepository) ListTeamLinesByGame(ctx context.Context, gameID int64) ([]boxscore.TeamLine, error) {
	query, args, err := qb.Select("*").From("team_game_stats").
		Where(qb.Eq("game_id", gameID)).
		OrderBy("team_id", "source").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select team lines by game query: %w", err)
	}

	var rows []teamLineTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select team lines by game: %w", err)
	}

	out := make([]boxscore.TeamLine, 0, len(rows))
	for _, row := range rows {
		out = append(out, teamLineFromRow(row))
	}

	return out, nil
}

func (r *BoxScoreRepository) ListPlayerLinesByPlayer(ctx context.Context, playerID int64, limit, offset int) ([]boxscore.PlayerLine, int, error) {
	countQuery, countArgs, err := qb.Select("COUNT(*)").From("player_game_stats").
		Where(qb.Eq("player_id", playerID)).
		ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("build count player lines query: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count player lines: %w", err)
	}

	pageQuery, pageArgs, err := qb.Select("s.*").From("player_game_stats s").
		Join("JOIN games g ON g.id = s.game_id").
		Where(qb.Eq("s.player_id", playerID)).
		OrderBy("g.start_time DESC", "s.game_id DESC", "s.source").
		Limit(limit).
		Offset(offset).
		ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("build select player lines by player query: %w", err)
	}

	var rows []playerLineTableModel
	if err := r.db.SelectContext(ctx, &rows, pageQuery, pageArgs...); err != nil {
		return nil, 0, fmt.Errorf("select player lines by player: %w", err)
	}

	out := make([]boxscore.PlayerLine, 0, len(rows))
	for _, row := range rows {
		out = append(out, playerLineFromRow(row))
	}

	return out, total, nil
}

func (r *BoxScoreRepository) SumPlayerPoints(ctx context.Context, gameID int64, source string) ([]boxscore.TeamPoints, error) {
	query, args, err := qb.Select("team_id", "COALESCE(SUM(points), 0) AS points").
		From("player_game_stats").
		Where(
			qb.Eq("game_id", gameID),
			qb.Eq("source", source),
		).
		GroupBy("team_id").
		OrderBy("team_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build sum player points query: %w", err)
	}

	var rows []teamPointsRowModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("sum player points: %w", err)
	}

	out := make([]boxscore.TeamPoints, 0, len(rows))
	for _, row := range rows {
		out = append(out, boxscore.TeamPoints{TeamID: row.TeamID, Points: row.Points})
	}

	return out, nil
}

func (r *BoxScoreRepository) GameIDsWithTeamStats(ctx context.Context, gameIDs []int64, source string) (map[int64]bool, error) {
	if len(gameIDs) == 0 {
		return map[int64]bool{}, nil
	}

	query, args, err := qb.Select("DISTINCT game_id").From("team_game_stats").
		Where(
			qb.In("game_id", int64sToAny(gameIDs)),
			qb.Eq("source", source),
		).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select games with team stats query: %w", err)
	}

	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, fmt.Errorf("select games with team stats: %w", err)
	}

	out := make(map[int64]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}

	return out, nil
}

func (r *BoxScoreRepository) GameIDsWithPlayerStats(ctx context.Context, gameIDs []int64) (map[int64]bool, error) {
	if len(gameIDs) == 0 {
		return map[int64]bool{}, nil
	}

	query, args, err := qb.Select("DISTINCT game_id").From("player_game_stats").
		Where(qb.In("game_id", int64sToAny(gameIDs))).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select games with player stats query: %w", err)
	}

	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, fmt.Errorf("select games with player stats: %w", err)
	}

	out := make(map[int64]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}

	return out, nil
}

func (r *BoxScoreRepository) SetQuarterScores(ctx context.Context, gameID, teamID int64, q boxscore.QuarterScores) (bool, error) {
	query, args, err := qb.Update("team_game_stats").
		Set("points_q1", q.Q1).
		Set("points_q2", q.Q2).
		Set("points_q3", q.Q3).
		Set("points_q4", q.Q4).
		Set("points_ot", q.OT).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("game_id", gameID),
			qb.Eq("team_id", teamID),
		).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build set quarter scores query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("set quarter scores: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("set quarter scores rows affected: %w", err)
	}

	return affected > 0, nil
}

func (r *BoxScoreRepository) GameIDsMissingQuarterScores(ctx context.Context, gameIDs []int64) (map[int64]bool, error) {
	if len(gameIDs) == 0 {
		return map[int64]bool{}, nil
	}

	query, args, err := qb.Select("DISTINCT game_id").From("team_game_stats").
		Where(
			qb.In("game_id", int64sToAny(gameIDs)),
			qb.IsNull("points_q1"),
			qb.IsNull("points_q2"),
			qb.IsNull("points_q3"),
			qb.IsNull("points_q4"),
		).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select games missing quarter scores query: %w", err)
	}

	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, fmt.Errorf("select games missing quarter scores: %w", err)
	}

	out := make(map[int64]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}

	return out, nil
}

func playerLineFromRow(row playerLineTableModel) boxscore.PlayerLine {
	return boxscore.PlayerLine{
		GameID:              row.GameID,
		PlayerID:            row.PlayerID,
		TeamID:              row.TeamID,
		Source:              row.Source,
		Minutes:             row.Minutes,
		Points:              row.Points,
		Rebounds:            row.Rebounds,
		Assists:             row.Assists,
		Steals:              row.Steals,
		Blocks:              row.Blocks,
		Turnovers:           row.Turnovers,
		FieldGoalsMade:      row.FieldGoalsMade,
		FieldGoalsAttempted: row.FieldGoalsAttempted,
		ThreesMade:          row.ThreesMade,
		ThreesAttempted:     row.ThreesAttempted,
		FreeThrowsMade:      row.FreeThrowsMade,
		FreeThrowsAttempted: row.FreeThrowsAttempted,
		PlusMinus:           row.PlusMinus,
		Started:             row.Started,
		DNPReason:           row.DNPReason,
	}
}

func teamLineFromRow(row teamLineTableModel) boxscore.TeamLine {
	return boxscore.TeamLine{
		GameID: row.GameID,
		TeamID: row.TeamID,
		Source: row.Source,
		Quarters: boxscore.QuarterScores{
			Q1: row.PointsQ1,
			Q2: row.PointsQ2,
			Q3: row.PointsQ3,
			Q4: row.PointsQ4,
			OT: row.PointsOT,
		},
		Points:              row.Points,
		Rebounds:            row.Rebounds,
		Assists:             row.Assists,
		Steals:              row.Steals,
		Blocks:              row.Blocks,
		Turnovers:           row.Turnovers,
		FieldGoalsMade:      row.FieldGoalsMade,
		FieldGoalsAttempted: row.FieldGoalsAttempted,
		ThreesMade:          row.ThreesMade,
		ThreesAttempted:     row.ThreesAttempted,
		FreeThrowsMade:      row.FreeThrowsMade,
		FreeThrowsAttempted: row.FreeThrowsAttempted,
	}
}
