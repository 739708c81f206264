package commands

import (
	"context"
	"fmt"

	"github.com/adityavk/nsescreener/internal/contracts"
	"github.com/adityavk/nsescreener/internal/external/nse"
	"github.com/adityavk/nsescreener/internal/external/yahoo"
	"github.com/adityavk/nsescreener/internal/prices"
	"github.com/adityavk/nsescreener/internal/symbolstore"
	"github.com/adityavk/nsescreener/internal/universe"
	"github.com/adityavk/nsescreener/pkg/config"
	"github.com/adityavk/nsescreener/pkg/database"
	"github.com/adityavk/nsescreener/pkg/httputil"
	"github.com/adityavk/nsescreener/pkg/logger"
	"github.com/adityavk/nsescreener/pkg/redis"
)

// app holds the wired application components shared by the commands
type app struct {
	cfg    *config.Config
	logger *logger.Logger
	db     *database.DB
	redis  *redis.Client

	symbolStore  *symbolstore.Store
	nseClient    *nse.Client
	yahooClient  *yahoo.Client
	orchestrator *universe.Orchestrator
	snapshots    *universe.Repository
	priceRepo    *prices.Repository
	priceFetcher *prices.Fetcher
}

// buildApp wires the full component graph. Every command goes through
// here so construction order stays in one place.
func buildApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if verbose {
		cfg.LogLevel = "debug"
	}
	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	rdb, err := redis.New(cfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	// One rate-limited client per external host
	nseHTTP := httputil.New(log).WithLocalRateLimit(5, 5)
	yahooHTTP := httputil.New(log).WithLocalRateLimit(10, 10)
	if rdb.Enabled() {
		limiter := redis.NewRateLimiter(rdb, "screener")
		nseHTTP = nseHTTP.WithRateLimiter(limiter, redis.NSERateLimit)
		yahooHTTP = yahooHTTP.WithRateLimiter(limiter, redis.YahooRateLimit)
	}

	symStore := symbolstore.NewStore(db.Pool, log)
	nseClient := nse.NewClient(nseHTTP, cfg, log)
	yahooClient := yahoo.NewClient(yahooHTTP, cfg, log)

	seriesFilter := universe.NewSeriesFilter(symStore, log)
	sampler := universe.NewSampler(yahooClient, log,
		universe.WithDelays(cfg.Filter.CallDelay, cfg.Filter.BatchDelay))
	evaluator := universe.NewEvaluator(log)

	// The file cache is the default; Redis takes over when enabled so
	// several processes on one host share the resolved universe
	var cacheStore contracts.CacheStore = universe.NewFileCacheStore(cfg.Filter.CachePath, log)
	if rdb.Enabled() {
		cacheStore = universe.NewRedisCacheStore(redis.NewCache(rdb, "screener"), log)
	}

	orch := universe.NewOrchestrator(seriesFilter, sampler, evaluator, cacheStore, universe.Config{
		Criteria: contracts.FilterCriteria{
			ExcludedSeries:    cfg.Filter.ExcludedSeries,
			MinMarketCapCr:    cfg.Filter.MinMarketCapCr,
			MinDailyValueLakh: cfg.Filter.MinDailyValueLakh,
		},
		SampleSize:   cfg.Filter.SampleSize,
		TrailingDays: cfg.Filter.TrailingDays,
	}, log)

	priceRepo := prices.NewRepository(db.Pool, log)
	priceCache := redis.NewCache(rdb, "screener")
	priceFetcher := prices.NewFetcher(yahooClient, priceRepo, priceCache, log,
		prices.WithBatching(25, cfg.Filter.BatchDelay))

	a := &app{
		cfg:          cfg,
		logger:       log,
		db:           db,
		redis:        rdb,
		symbolStore:  symStore,
		nseClient:    nseClient,
		yahooClient:  yahooClient,
		orchestrator: orch,
		snapshots:    universe.NewRepository(db.Pool),
		priceRepo:    priceRepo,
		priceFetcher: priceFetcher,
	}

	if err := a.ensureSchemas(ctx); err != nil {
		a.close()
		return nil, err
	}

	return a, nil
}

// ensureSchemas creates the application tables when missing
func (a *app) ensureSchemas(ctx context.Context) error {
	if err := a.symbolStore.EnsureSchema(ctx); err != nil {
		return err
	}
	if err := a.priceRepo.EnsureSchema(ctx); err != nil {
		return err
	}
	query := `
		CREATE TABLE IF NOT EXISTS universe_snapshots (
			snapshot_date    DATE PRIMARY KEY,
			symbols          TEXT[] NOT NULL,
			symbol_count     INT NOT NULL,
			criteria         JSONB,
			duration_seconds DOUBLE PRECISION NOT NULL DEFAULT 0,
			created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	if _, err := a.db.Pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("create universe_snapshots table: %w", err)
	}
	return nil
}

// close releases database and redis connections
func (a *app) close() {
	if a.redis != nil {
		a.redis.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}
