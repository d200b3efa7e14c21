package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/courtline/courtline/internal/usecase"
)

func (h *Handler) RunStatusSweepJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunStatusSweepJob")
	defer span.End()

	var req statusSweepRequest
	if err := decodeOptionalJobRequest(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.statusService.Sweep(ctx, req.DryRun)
	if err != nil {
		h.logger.WarnContext(ctx, "status sweep failed", "dry_run", req.DryRun, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) RunCrossRefSweepJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunCrossRefSweepJob")
	defer span.End()

	var req crossRefSweepRequest
	if err := decodeOptionalJobRequest(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	from, to, err := req.dateRange()
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.ingestionService.CrossRefSweep(ctx, from, to)
	if err != nil {
		h.logger.WarnContext(ctx, "cross-reference sweep failed",
			"from", from.Format(time.DateOnly),
			"to", to.Format(time.DateOnly),
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) RunScoreBackfillJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunScoreBackfillJob")
	defer span.End()

	result, err := h.ingestionService.BackfillScores(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "score backfill failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

type statusSweepRequest struct {
	DryRun bool `json:"dryRun"`
}

type crossRefSweepRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// dateRange parses the requested window. An empty request means yesterday
// through today, the usual overnight reconciliation window.
func (req crossRefSweepRequest) dateRange() (time.Time, time.Time, error) {
	now := time.Now().UTC().Truncate(24 * time.Hour)
	from := now.AddDate(0, 0, -1)
	to := now

	if raw := strings.TrimSpace(req.From); raw != "" {
		parsed, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: from must be YYYY-MM-DD", usecase.ErrInvalidInput)
		}
		from = parsed
	}
	if raw := strings.TrimSpace(req.To); raw != "" {
		parsed, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: to must be YYYY-MM-DD", usecase.ErrInvalidInput)
		}
		to = parsed
	}

	return from, to, nil
}

// decodeOptionalJobRequest decodes a job payload, tolerating an empty body
// so jobs can be triggered with a bare POST.
func decodeOptionalJobRequest(r *http.Request, dst any) error {
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}
