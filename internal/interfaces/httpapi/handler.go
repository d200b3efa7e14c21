package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/courtline/courtline/internal/platform/logging"
	"github.com/courtline/courtline/internal/usecase"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 200
)

// Pinger reports readiness of the backing store.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Handler struct {
	gameService      *usecase.GameService
	teamService      *usecase.TeamService
	playerService    *usecase.PlayerService
	coverageService  *usecase.CoverageService
	statusService    *usecase.StatusService
	ingestionService *usecase.IngestionService
	resolverService  *usecase.ResolverService
	db               Pinger
	logger           *logging.Logger
	validator        *validator.Validate
}

func NewHandler(
	gameService *usecase.GameService,
	teamService *usecase.TeamService,
	playerService *usecase.PlayerService,
	coverageService *usecase.CoverageService,
	statusService *usecase.StatusService,
	ingestionService *usecase.IngestionService,
	resolverService *usecase.ResolverService,
	db Pinger,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		gameService:      gameService,
		teamService:      teamService,
		playerService:    playerService,
		coverageService:  coverageService,
		statusService:    statusService,
		ingestionService: ingestionService,
		resolverService:  resolverService,
		db:               db,
		logger:           logger,
		validator:        validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Readyz")
	defer span.End()

	if h.db != nil {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(pingCtx); err != nil {
			h.logger.WarnContext(ctx, "readiness ping failed", "error", err)
			writeError(ctx, w, fmt.Errorf("%w: database ping failed", usecase.ErrDependencyUnavailable))
			return
		}
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ready"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	raw := strings.TrimSpace(r.PathValue(name))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", usecase.ErrInvalidInput, name)
	}
	return id, nil
}

func queryInt(r *http.Request, name string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", usecase.ErrInvalidInput, name)
	}
	return v, nil
}

func queryInt64(r *http.Request, name string) (int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", usecase.ErrInvalidInput, name)
	}
	return v, nil
}

func queryPage(r *http.Request) (limit, offset int, err error) {
	limit, err = queryInt(r, "limit")
	if err != nil {
		return 0, 0, err
	}
	offset, err = queryInt(r, "offset")
	if err != nil {
		return 0, 0, err
	}
	if limit < 0 || offset < 0 {
		return 0, 0, fmt.Errorf("%w: limit and offset must not be negative", usecase.ErrInvalidInput)
	}
	if limit == 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return limit, offset, nil
}

// queryCutoff parses the cutoff query parameter, accepting RFC 3339 or a
// bare calendar date. An absent parameter means now.
func queryCutoff(r *http.Request) (time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("cutoff"))
	if raw == "" {
		return time.Now().UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t.Add(24*time.Hour - time.Nanosecond), nil
	}
	return time.Time{}, fmt.Errorf("%w: cutoff must be RFC 3339 or YYYY-MM-DD", usecase.ErrInvalidInput)
}
