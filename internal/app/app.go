package app

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	semconv "go.opentelemetry.io/otel/semconv/v1.12.0"

	"github.com/courtline/courtline/external/bdl"
	"github.com/courtline/courtline/external/nbastats"
	"github.com/courtline/courtline/internal/config"
	"github.com/courtline/courtline/internal/domain/boxscore"
	"github.com/courtline/courtline/internal/domain/game"
	"github.com/courtline/courtline/internal/domain/identity"
	"github.com/courtline/courtline/internal/domain/player"
	"github.com/courtline/courtline/internal/domain/roster"
	"github.com/courtline/courtline/internal/domain/team"
	"github.com/courtline/courtline/internal/infrastructure/repository/memory"
	"github.com/courtline/courtline/internal/infrastructure/repository/postgres"
	"github.com/courtline/courtline/internal/interfaces/httpapi"
	"github.com/courtline/courtline/internal/platform/cache"
	idgen "github.com/courtline/courtline/internal/platform/id"
	"github.com/courtline/courtline/internal/platform/logging"
	"github.com/courtline/courtline/internal/platform/resilience"
	"github.com/courtline/courtline/internal/usecase"
)

// Services bundles the wired use cases so the HTTP server and the one-shot
// job runner share one construction path.
type Services struct {
	Games     *usecase.GameService
	Teams     *usecase.TeamService
	Players   *usecase.PlayerService
	Coverage  *usecase.CoverageService
	Status    *usecase.StatusService
	Ingestion *usecase.IngestionService
	Resolver  *usecase.ResolverService

	// DB is nil when the process runs on seeded in-memory repositories.
	DB *sqlx.DB
}

// NewServices wires repositories, provider clients, and use cases from the
// loaded configuration. An empty DB_URL switches to the seeded in-memory
// repositories, which is how local development without postgres works. The
// returned closer releases the database pool and is safe to call when no
// database was opened.
func NewServices(cfg config.Config, logger *logging.Logger) (*Services, func(), error) {
	if logger == nil {
		logger = logging.Default()
	}

	refLoc, err := time.LoadLocation(cfg.ReferenceTZ)
	if err != nil {
		return nil, nil, fmt.Errorf("load reference timezone %q: %w", cfg.ReferenceTZ, err)
	}

	var (
		db           *sqlx.DB
		gameRepo     game.Repository
		teamRepo     team.Repository
		playerRepo   player.Repository
		boxscoreRepo boxscore.Repository
		rosterRepo   roster.Repository
		identityRepo identity.Repository
	)

	closer := func() {}

	if strings.TrimSpace(cfg.DBURL) != "" {
		db, err = openDB(cfg)
		if err != nil {
			return nil, nil, err
		}
		closer = func() {
			if closeErr := db.Close(); closeErr != nil {
				logger.Warn("close database pool", "error", closeErr)
			}
		}

		gameRepo = postgres.NewGameRepository(db, cfg.ReferenceTZ)
		teamRepo = postgres.NewTeamRepository(db)
		playerRepo = postgres.NewPlayerRepository(db)
		boxscoreRepo = postgres.NewBoxScoreRepository(db)
		rosterRepo = postgres.NewRosterRepository(db)
		identityRepo = postgres.NewIdentityRepository(db)
	} else {
		logger.Warn("DB_URL is empty, using seeded in-memory repositories")

		gameRepo = memory.NewGameRepository(refLoc, memory.SeedTeamAbbreviations(), memory.SeedGames())
		teamRepo = memory.NewTeamRepository(memory.SeedTeams())
		playerRepo = memory.NewPlayerRepository(memory.SeedPlayers())
		boxscoreRepo = memory.NewBoxScoreRepository()
		rosterRepo = memory.NewRosterRepository(memory.SeedRosters())
		identityRepo = memory.NewIdentityRepository()
	}

	var coverageCache *cache.Store
	if cfg.CacheEnabled {
		coverageCache = cache.NewStore(cfg.CacheTTL)
	}

	runIDs := idgen.NewRandomGenerator()

	resolverSvc := usecase.NewResolverService(identityRepo, gameRepo, playerRepo, teamRepo, refLoc)
	gameSvc := usecase.NewGameService(gameRepo, boxscoreRepo)
	teamSvc := usecase.NewTeamService(teamRepo, rosterRepo, gameRepo)
	playerSvc := usecase.NewPlayerService(playerRepo, boxscoreRepo)
	coverageSvc := usecase.NewCoverageService(gameRepo, teamRepo, boxscoreRepo, cfg.AuthoritativeSource, cfg.SweepWorkers, coverageCache)
	statusSvc := usecase.NewStatusService(gameRepo, runIDs, logger, cfg.GameFinalGrace, refLoc, cfg.SweepWorkers)
	ingestionSvc := usecase.NewIngestionService(
		resolverSvc,
		gameRepo,
		teamRepo,
		playerRepo,
		boxscoreRepo,
		rosterRepo,
		providerSources(cfg, logger),
		runIDs,
		logger,
		refLoc,
		cfg.AuthoritativeSource,
	)

	return &Services{
		Games:     gameSvc,
		Teams:     teamSvc,
		Players:   playerSvc,
		Coverage:  coverageSvc,
		Status:    statusSvc,
		Ingestion: ingestionSvc,
		Resolver:  resolverSvc,
		DB:        db,
	}, closer, nil
}

// NewHTTPServer builds the wired services and wraps them in the HTTP router.
func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, func(), error) {
	services, closer, err := NewServices(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	var pinger httpapi.Pinger
	if services.DB != nil {
		pinger = services.DB
	}

	handler := httpapi.NewHandler(
		services.Games,
		services.Teams,
		services.Players,
		services.Coverage,
		services.Status,
		services.Ingestion,
		services.Resolver,
		pinger,
		logger,
	)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		closer()
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, closer, nil
}

func openDB(cfg config.Config) (*sqlx.DB, error) {
	dbURL := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)

	db, err := otelsqlx.Connect("postgres", dbURL,
		otelsql.WithAttributes(semconv.DBSystemPostgreSQL),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}

func providerSources(cfg config.Config, logger *logging.Logger) []usecase.ProviderGameSource {
	var sources []usecase.ProviderGameSource

	if cfg.NBAStats.Enabled {
		sources = append(sources, nbastats.NewClient(nbastats.ClientConfig{
			BaseURL:        cfg.NBAStats.BaseURL,
			Timeout:        cfg.NBAStats.Timeout,
			Retry:          providerRetryConfig(cfg.NBAStats),
			Logger:         logger,
			CircuitBreaker: providerCircuitConfig(cfg.NBAStats),
		}))
	}

	if cfg.BDL.Enabled {
		sources = append(sources, bdl.NewClient(bdl.ClientConfig{
			BaseURL:        cfg.BDL.BaseURL,
			Token:          cfg.BDL.Token,
			Timeout:        cfg.BDL.Timeout,
			Retry:          providerRetryConfig(cfg.BDL),
			Logger:         logger,
			CircuitBreaker: providerCircuitConfig(cfg.BDL),
		}))
	}

	return sources
}

func providerRetryConfig(p config.ProviderConfig) resilience.RetryConfig {
	retry := resilience.DefaultRetryConfig()
	if p.MaxRetries >= 0 {
		retry.MaxAttempts = p.MaxRetries + 1
	}
	return retry
}

func providerCircuitConfig(p config.ProviderConfig) resilience.CircuitBreakerConfig {
	return resilience.CircuitBreakerConfig{
		Enabled:          p.CircuitEnabled,
		FailureThreshold: p.CircuitFailureCount,
		OpenTimeout:      p.CircuitOpenTimeout,
		HalfOpenMaxReq:   p.CircuitHalfOpenMaxReq,
	}
}
