package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/courtline/courtline/internal/domain/game"
	"github.com/courtline/courtline/internal/platform/logging"
)

const (
	transitionReasonScoresPresent = "scores_present"
	transitionReasonGraceElapsed  = "grace_elapsed"
	transitionReasonFutureRepair  = "future_start_repair"
)

// StatusTransition is one applied (or would-be, under dry run) change.
type StatusTransition struct {
	GameID     int64  `json:"gameId"`
	FromStatus string `json:"fromStatus"`
	ToStatus   string `json:"toStatus"`
	Reason     string `json:"reason"`
}

// StatusConflict is a row whose facts disagree in a way the normalizer
// refuses to repair on its own.
type StatusConflict struct {
	GameID int64  `json:"gameId"`
	Status string `json:"status"`
	Detail string `json:"detail"`
}

// StatusSweepResult summarizes one pass over the candidate rows.
type StatusSweepResult struct {
	RunID           string             `json:"runId"`
	Examined        int                `json:"examined"`
	Transitions     []StatusTransition `json:"transitions"`
	Conflicts       []StatusConflict   `json:"conflicts"`
	BackfillFlagged []int64            `json:"backfillFlagged"`
	Skipped         int                `json:"skipped"`
	Failed          int                `json:"failed"`
	DryRun          bool               `json:"dryRun"`
}

// StatusService normalizes game statuses against the five-state model. The
// sweep is idempotent: a second pass over the same rows changes nothing.
type StatusService struct {
	gameRepo game.Repository
	runIDs   IDSource
	logger   *logging.Logger
	grace    time.Duration
	refLoc   *time.Location
	workers  int
	now      func() time.Time
}

// IDSource names opaque run ids for sweep reports.
type IDSource interface {
	NewID() (string, error)
}

func NewStatusService(gameRepo game.Repository, runIDs IDSource, logger *logging.Logger, grace time.Duration, refLoc *time.Location, workers int) *StatusService {
	if grace <= 0 {
		grace = 3 * time.Hour
	}
	if refLoc == nil {
		refLoc = time.UTC
	}
	if workers < 1 {
		workers = 4
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	return &StatusService{
		gameRepo: gameRepo,
		runIDs:   runIDs,
		logger:   logger,
		grace:    grace,
		refLoc:   refLoc,
		workers:  workers,
		now:      time.Now,
	}
}

// decision is what one candidate row needs: a guarded transition, a conflict
// report, a backfill flag, or nothing.
type decision struct {
	toStatus     string
	reason       string
	conflict     string
	flagBackfill bool
}

// decide applies the precedence rules to one row. Unknown statuses are
// treated as corrupt: the rules run as if the prior state were unknown, so
// the postponed/cancelled conflict exception does not fire for them.
func (s *StatusService) decide(g game.Game, now time.Time) decision {
	known := game.IsKnownStatus(g.Status)

	if g.HasScores() {
		if known && (g.Status == game.StatusPostponed || g.Status == game.StatusCancelled) {
			return decision{conflict: fmt.Sprintf("scores present on %s game", g.Status)}
		}
		if !known || g.Status != game.StatusFinal {
			return decision{toStatus: game.StatusFinal, reason: transitionReasonScoresPresent}
		}
		return decision{}
	}

	pastGrace := now.Sub(g.StartTime) > s.grace
	if pastGrace && (!known || g.Status == game.StatusScheduled) {
		return decision{toStatus: game.StatusFinal, reason: transitionReasonGraceElapsed, flagBackfill: true}
	}

	if known && g.Status == game.StatusFinal && g.StartTime.After(now) {
		return decision{toStatus: game.StatusScheduled, reason: transitionReasonFutureRepair}
	}

	if !known {
		return decision{conflict: fmt.Sprintf("unrecognized status %q", g.Status)}
	}

	return decision{}
}

// Sweep examines candidate rows and applies guarded transitions through a
// worker pool. Each row is its own conditional update; concurrent sweeps
// converge because a transition only fires when the row still holds the
// status the decision was made against.
func (s *StatusService) Sweep(ctx context.Context, dryRun bool) (StatusSweepResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatusService.Sweep")
	defer span.End()

	runID, err := s.runIDs.NewID()
	if err != nil {
		return StatusSweepResult{}, fmt.Errorf("new run id: %w", err)
	}
	result := StatusSweepResult{RunID: runID, DryRun: dryRun}

	now := s.now()
	// Candidate selection scans by calendar day in the reference timezone;
	// the grace rule itself still compares full timestamps.
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.refLoc)
	cutoff := midnight.AddDate(0, 0, 1)

	candidates, err := s.gameRepo.ListSweepCandidates(ctx, cutoff)
	if err != nil {
		return result, fmt.Errorf("list sweep candidates: %w", err)
	}
	result.Examined = len(candidates)
	if len(candidates) == 0 {
		return result, nil
	}

	pool, err := ants.NewPool(s.workers)
	if err != nil {
		return result, fmt.Errorf("%w: create worker pool: %v", ErrDependencyUnavailable, err)
	}
	defer pool.Release()

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, candidate := range candidates {
		g := candidate
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			s.sweepOne(ctx, g, now, dryRun, &mu, &result)
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			result.Failed++
			mu.Unlock()
		}
	}
	wg.Wait()

	s.logger.InfoContext(ctx, "status sweep finished",
		"run_id", runID,
		"examined", result.Examined,
		"transitions", len(result.Transitions),
		"conflicts", len(result.Conflicts),
		"backfill_flagged", len(result.BackfillFlagged),
		"failed", result.Failed,
		"dry_run", dryRun,
	)

	return result, nil
}

func (s *StatusService) sweepOne(ctx context.Context, g game.Game, now time.Time, dryRun bool, mu *sync.Mutex, result *StatusSweepResult) {
	d := s.decide(g, now)

	if d.conflict != "" {
		mu.Lock()
		result.Conflicts = append(result.Conflicts, StatusConflict{GameID: g.ID, Status: g.Status, Detail: d.conflict})
		mu.Unlock()
		return
	}
	if d.toStatus == "" {
		mu.Lock()
		result.Skipped++
		mu.Unlock()
		return
	}

	if !dryRun {
		changed, err := s.gameRepo.TransitionStatus(ctx, g.ID, g.Status, d.toStatus)
		if err != nil {
			s.logger.WarnContext(ctx, "status transition failed", "game_id", g.ID, "to", d.toStatus, "error", err)
			mu.Lock()
			result.Failed++
			mu.Unlock()
			return
		}
		if !changed {
			// Another sweep got there first.
			mu.Lock()
			result.Skipped++
			mu.Unlock()
			return
		}
	}

	mu.Lock()
	result.Transitions = append(result.Transitions, StatusTransition{
		GameID:     g.ID,
		FromStatus: g.Status,
		ToStatus:   d.toStatus,
		Reason:     d.reason,
	})
	if d.flagBackfill {
		result.BackfillFlagged = append(result.BackfillFlagged, g.ID)
	}
	mu.Unlock()
}
