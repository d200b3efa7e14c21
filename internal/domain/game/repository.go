package game

import (
	"context"
	"time"
)

// Filter narrows game listings. Date is a calendar day in the reference
// timezone, formatted YYYY-MM-DD.
type Filter struct {
	Season int
	Date   string
	Status string
	TeamID int64
	Limit  int
	Offset int
}

// Observation is one provider's view of a game, applied through the guarded
// upsert: only Scheduled or InProgress rows may advance to Final, and
// existing scores are never overwritten with null.
type Observation struct {
	GameID    int64
	Status    string
	HomeScore *int
	AwayScore *int
}

// Repository describes game persistence needs from use cases.
type Repository interface {
	GetByID(ctx context.Context, gameID int64) (Game, bool, error)
	List(ctx context.Context, filter Filter) ([]Game, int, error)
	// FindByDatePair returns games on a local calendar date whose home and
	// away teams carry exactly the given abbreviations, in that orientation.
	FindByDatePair(ctx context.Context, date, homeAbbr, awayAbbr string) ([]Game, error)
	Create(ctx context.Context, g Game) (int64, error)
	ApplyObservation(ctx context.Context, obs Observation) error

	// ListSweepCandidates returns non-terminal games starting before the
	// cutoff plus Final games with missing scores.
	ListSweepCandidates(ctx context.Context, before time.Time) ([]Game, error)
	// TransitionStatus updates status only when the row still holds
	// fromStatus; reports whether a row changed.
	TransitionStatus(ctx context.Context, gameID int64, fromStatus, toStatus string) (bool, error)
	// SetScoresIfNull fills both scores only when both are currently null;
	// reports whether a row changed.
	SetScoresIfNull(ctx context.Context, gameID int64, homeScore, awayScore int) (bool, error)
	ListFinalsMissingScores(ctx context.Context) ([]Game, error)
	// ListFinals returns Final games with non-null scores, bounded by the
	// cutoff when non-zero.
	ListFinals(ctx context.Context, cutoff time.Time) ([]Game, error)
}
