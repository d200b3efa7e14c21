package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"

	"github.com/courtline/courtline/external/bref"
	"github.com/courtline/courtline/internal/app"
	"github.com/courtline/courtline/internal/config"
	"github.com/courtline/courtline/internal/platform/logging"
	"github.com/courtline/courtline/internal/usecase"
)

// One-shot job runner. Runs a single maintenance job against the configured
// store and exits, which is how the cron entries invoke it.
func main() {
	var (
		jobName   = flag.String("job", "", "job to run: status, crossref, backfill, quarters, rosters, coverage, ingest, or ingest-bref")
		dateArg   = flag.String("date", "", "ingest slate date, YYYY-MM-DD (default: yesterday)")
		dryRun    = flag.Bool("dry-run", false, "report planned status transitions without writing them")
		fromArg   = flag.String("from", "", "crossref window start, YYYY-MM-DD (default: yesterday)")
		toArg     = flag.String("to", "", "crossref window end, YYYY-MM-DD (default: today)")
		fileArg   = flag.String("file", "", "box score export for ingest-bref, JSON")
		seasonArg = flag.Int("season", 0, "roster season start year (default: the season in progress)")
		timeout   = flag.Duration("timeout", 10*time.Minute, "job deadline")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.NewJSON(cfg.LogLevel)

	services, closeServices, err := app.NewServices(cfg, logger)
	if err != nil {
		logger.Error("build services", "error", err)
		os.Exit(1)
	}
	defer closeServices()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	var result any
	switch *jobName {
	case "status":
		result, err = services.Status.Sweep(ctx, *dryRun)
	case "crossref":
		var from, to time.Time
		from, to, err = crossRefWindow(*fromArg, *toArg)
		if err == nil {
			result, err = services.Ingestion.CrossRefSweep(ctx, from, to)
		}
	case "backfill":
		result, err = services.Ingestion.BackfillScores(ctx)
	case "quarters":
		result, err = services.Ingestion.BackfillQuarters(ctx)
	case "rosters":
		result, err = services.Ingestion.SyncRosters(ctx, rosterSeason(*seasonArg))
	case "coverage":
		result, err = services.Coverage.LeagueReport(ctx, time.Now().UTC())
	case "ingest":
		var date time.Time
		date, err = slateDate(*dateArg)
		if err == nil {
			result, err = services.Ingestion.IngestDay(ctx, date)
		}
	case "ingest-bref":
		result, err = ingestReferenceBoxScore(ctx, services, *fileArg)
	default:
		fmt.Fprintln(os.Stderr, "usage: sweep -job <status|crossref|backfill|quarters|rosters|coverage|ingest|ingest-bref> [-dry-run] [-date YYYY-MM-DD] [-from YYYY-MM-DD] [-to YYYY-MM-DD] [-season YYYY] [-file export.json]")
		os.Exit(2)
	}
	if err != nil {
		logger.Error("job failed", "job", *jobName, "error", err)
		os.Exit(1)
	}

	out, err := sonic.MarshalIndent(result, "", "  ")
	if err != nil {
		logger.Error("encode job result", "job", *jobName, "error", err)
		os.Exit(1)
	}

	logger.Info("job finished", "job", *jobName)
	fmt.Println(string(out))
}

// rosterSeason defaults to the season in progress: seasons tip off in the
// fall, so before September the prior start year is still current.
func rosterSeason(arg int) int {
	if arg > 0 {
		return arg
	}
	now := time.Now().UTC()
	if now.Month() >= time.September {
		return now.Year()
	}
	return now.Year() - 1
}

func crossRefWindow(fromArg, toArg string) (time.Time, time.Time, error) {
	now := time.Now().UTC().Truncate(24 * time.Hour)
	from := now.AddDate(0, 0, -1)
	to := now

	if fromArg != "" {
		parsed, err := time.Parse(time.DateOnly, fromArg)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid -from date %q: %w", fromArg, err)
		}
		from = parsed
	}
	if toArg != "" {
		parsed, err := time.Parse(time.DateOnly, toArg)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid -to date %q: %w", toArg, err)
		}
		to = parsed
	}

	return from, to, nil
}

func slateDate(arg string) (time.Time, error) {
	if arg == "" {
		return time.Now().UTC().Truncate(24*time.Hour).AddDate(0, 0, -1), nil
	}

	parsed, err := time.Parse(time.DateOnly, arg)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid -date %q: %w", arg, err)
	}
	return parsed, nil
}

// referenceExport is the hand-collected box score shape for games neither
// enabled provider covers: one composite id plus its player rows.
type referenceExport struct {
	CompositeID string             `json:"compositeId"`
	Season      int                `json:"season"`
	Rows        []bref.BoxScoreRow `json:"rows"`
}

func ingestReferenceBoxScore(ctx context.Context, services *app.Services, path string) (usecase.IngestResult, error) {
	if path == "" {
		return usecase.IngestResult{}, fmt.Errorf("-file is required for ingest-bref")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return usecase.IngestResult{}, fmt.Errorf("read export %s: %w", path, err)
	}

	var export referenceExport
	if err := sonic.Unmarshal(raw, &export); err != nil {
		return usecase.IngestResult{}, fmt.Errorf("decode export %s: %w", path, err)
	}

	obs, err := bref.BuildObservation(export.CompositeID, export.Season, export.Rows)
	if err != nil {
		return usecase.IngestResult{}, err
	}

	return services.Ingestion.IngestBoxScore(ctx, obs)
}
