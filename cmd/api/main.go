package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/yatra-labs/pilgrimage-planner-api/internal/adapters/httpapi"
	memcatalog "github.com/yatra-labs/pilgrimage-planner-api/internal/adapters/memory/catalog"
	memidempotency "github.com/yatra-labs/pilgrimage-planner-api/internal/adapters/memory/idempotency"
	memplanstore "github.com/yatra-labs/pilgrimage-planner-api/internal/adapters/memory/planstore"
	mongoadapter "github.com/yatra-labs/pilgrimage-planner-api/internal/adapters/mongo"
	mongoplanstore "github.com/yatra-labs/pilgrimage-planner-api/internal/adapters/mongo/planstore"
	postgres "github.com/yatra-labs/pilgrimage-planner-api/internal/adapters/postgres"
	pgcatalog "github.com/yatra-labs/pilgrimage-planner-api/internal/adapters/postgres/catalog"
	pgidempotency "github.com/yatra-labs/pilgrimage-planner-api/internal/adapters/postgres/idempotency"
	pgplanstore "github.com/yatra-labs/pilgrimage-planner-api/internal/adapters/postgres/planstore"
	redisadapter "github.com/yatra-labs/pilgrimage-planner-api/internal/adapters/redis"
	"github.com/yatra-labs/pilgrimage-planner-api/internal/adapters/redis/catalogcache"
	"github.com/yatra-labs/pilgrimage-planner-api/internal/app/plans"
	"github.com/yatra-labs/pilgrimage-planner-api/internal/platform/auth/jwtverifier"
	"github.com/yatra-labs/pilgrimage-planner-api/internal/platform/config"
	"github.com/yatra-labs/pilgrimage-planner-api/internal/platform/logging"
	catalogport "github.com/yatra-labs/pilgrimage-planner-api/internal/ports/out/catalog"
	"github.com/yatra-labs/pilgrimage-planner-api/internal/ports/out/clock"
	idempotencyport "github.com/yatra-labs/pilgrimage-planner-api/internal/ports/out/idempotency"
	planstoreport "github.com/yatra-labs/pilgrimage-planner-api/internal/ports/out/planstore"
	"github.com/yatra-labs/pilgrimage-planner-api/migrations"
)

func main() {
	configPath := flag.String("config", getenv("CONFIG_FILE", "config.yaml"), "path to an optional YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("API server failed", zap.Error(err))
	}
}

type storage struct {
	catalog catalogport.Catalog
	plans   planstoreport.Store
	idem    idempotencyport.Store
	closers []func()
}

func (s *storage) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Auth configuration:
	// - Production: require JWT_* env vars and enforce bearer auth
	// - Local dev: set AUTH_MODE=dev to bypass JWT verification and use X-Debug-Subject
	var authMW func(http.Handler) http.Handler
	switch cfg.AuthMode {
	case "dev":
		if !cfg.IsLocal() {
			logger.Warn("Dev auth enabled outside a local environment", zap.String("environment", cfg.Environment))
		}
		authMW = httpapi.NewDevAuthMiddleware(cfg.DevSubject)
	default:
		verifier := jwtverifier.New(cfg.JWT)
		defer verifier.Close()
		authMW = httpapi.NewAuthMiddleware(verifier, logger)
	}

	st, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.close()

	clk := clock.System
	api := httpapi.NewServer(httpapi.ServerOptions{
		Catalog:         st.catalog,
		Plans:           plans.NewService(st.plans, st.catalog, clk, logger, cfg.DefaultLanguage),
		Idem:            st.idem,
		Clock:           clk,
		Logger:          logger,
		DefaultLanguage: cfg.DefaultLanguage,
	})

	handler := httpapi.NewRouterWithOptions(api, httpapi.RouterOptions{
		AuthMiddleware: authMW,
		RateLimiter:    httpapi.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
		Logger:         logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("API listening",
			zap.String("addr", srv.Addr),
			zap.String("storage", cfg.Storage.Backend),
			zap.String("auth_mode", cfg.AuthMode))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openStorage wires the catalog, plan store and idempotency store for the
// configured backend, and wraps the catalog in the Redis cache when configured.
func openStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*storage, error) {
	st := &storage{}

	switch cfg.Storage.Backend {
	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.Storage.DatabaseURL, postgres.PoolOptions{})
		if err != nil {
			return nil, fmt.Errorf("invalid postgres config: %w", err)
		}
		st.closers = append(st.closers, pool.Close)

		if cfg.Storage.RunMigrations {
			if err := postgres.RunMigrations(pool, migrations.FS, logger); err != nil {
				st.close()
				return nil, err
			}
		}

		pc := pgcatalog.New(pool)
		if cfg.Catalog.SeedFile != "" {
			seed, err := memcatalog.LoadSeedFile(cfg.Catalog.SeedFile)
			if err != nil {
				st.close()
				return nil, err
			}
			cities, places, routes, events, err := seed.Entities()
			if err != nil {
				st.close()
				return nil, fmt.Errorf("invalid catalog seed: %w", err)
			}
			if err := pc.Replace(ctx, cities, places, routes, events); err != nil {
				st.close()
				return nil, fmt.Errorf("seed catalog: %w", err)
			}
			logger.Info("Catalog seeded", zap.String("file", cfg.Catalog.SeedFile))
		}
		st.catalog = pc
		st.plans = pgplanstore.NewStore(pool)
		idem := pgidempotency.NewStore(pool)
		if n, err := idem.Purge(ctx); err != nil {
			logger.Warn("Failed to purge expired idempotency records", zap.Error(err))
		} else if n > 0 {
			logger.Info("Purged expired idempotency records", zap.Int64("count", n))
		}
		st.idem = idem

	case "mongo":
		client, err := mongoadapter.Connect(ctx, cfg.Storage.MongoURI)
		if err != nil {
			return nil, err
		}
		st.closers = append(st.closers, func() { _ = client.Disconnect(context.Background()) })

		ms := mongoplanstore.NewStore(client.Database(cfg.Storage.MongoDatabase).Collection(mongoplanstore.CollectionName))
		if err := ms.EnsureIndexes(ctx); err != nil {
			st.close()
			return nil, err
		}
		cat, err := seededMemoryCatalog(cfg, logger)
		if err != nil {
			st.close()
			return nil, err
		}
		st.catalog = cat
		st.plans = ms
		st.idem = memidempotency.NewStoreWithTTL(idempotencyport.DefaultTTL, clock.System.Now)

	default:
		cat, err := seededMemoryCatalog(cfg, logger)
		if err != nil {
			return nil, err
		}
		st.catalog = cat
		st.plans = memplanstore.NewStore()
		st.idem = memidempotency.NewStoreWithTTL(idempotencyport.DefaultTTL, clock.System.Now)
	}

	rdb, err := redisadapter.NewClient(ctx, redisadapter.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		st.close()
		return nil, err
	}
	if rdb != nil {
		st.closers = append(st.closers, func() { _ = rdb.Close() })
		cache := catalogcache.New(st.catalog, rdb, cfg.Catalog.CacheTTL, logger)
		// Seeding may have changed the catalog since the last run.
		if err := cache.Invalidate(ctx); err != nil {
			logger.Warn("Failed to invalidate catalog cache", zap.Error(err))
		}
		st.catalog = cache
	}

	return st, nil
}

func seededMemoryCatalog(cfg *config.Config, logger *zap.Logger) (*memcatalog.Catalog, error) {
	if cfg.Catalog.SeedFile == "" {
		logger.Warn("No CATALOG_SEED_FILE configured; the catalog is empty")
		return memcatalog.New(), nil
	}
	seed, err := memcatalog.LoadSeedFile(cfg.Catalog.SeedFile)
	if err != nil {
		return nil, err
	}
	cat, err := memcatalog.NewFromSeed(seed)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog seed: %w", err)
	}
	return cat, nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
