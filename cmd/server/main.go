package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"shipment-dispatch-service/internal/adapters/cache"
	"shipment-dispatch-service/internal/adapters/geocode"
	"shipment-dispatch-service/internal/adapters/oracle"
	"shipment-dispatch-service/internal/adapters/repositories"
	"shipment-dispatch-service/internal/api"
	"shipment-dispatch-service/internal/config"
	"shipment-dispatch-service/internal/platform/db"
	"shipment-dispatch-service/internal/platform/obs"
	"shipment-dispatch-service/internal/ports"
	"shipment-dispatch-service/internal/prompts"
	"shipment-dispatch-service/internal/services"
)

// main is the application composition root.
// It wires concrete adapters (SQL, Gemini, OpenCage, redis) behind ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := obs.NewLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()
	// Fallback for obs.Logger when a context carries no request logger.
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	conn, err := db.Open(cfg.Database.Driver, cfg.Database.DSN())
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := initAndSeed(ctx, conn, cfg, logger); err != nil {
		return err
	}

	repo := repositories.NewSQLRepository(conn, cfg.Database.Driver)

	roles, err := prompts.Load(cfg.Oracle.RolesPath)
	if err != nil {
		return err
	}

	transport, err := oracle.NewGeminiTransport(ctx, cfg.Oracle.APIKey, cfg.Oracle.Model, cfg.Oracle.Temperature)
	if err != nil {
		return err
	}

	oracleClient, err := services.NewOracleClient(transport, roles)
	if err != nil {
		return err
	}

	committer := services.NewCommitter(repo, logger)
	negotiator := services.NewNegotiator(oracleClient, committer, logger)
	optimizer := services.NewRouteOptimizer(repo, negotiator)

	deps := api.Deps{
		Trucks:    repo,
		Shipments: repo,
		Optimizer: optimizer,
		Sequencer: services.NewRouteSequencer(repo),
		Logger:    logger,
	}

	filler, closeGeocode, err := newGeocodeFiller(ctx, cfg, conn, repo, logger)
	if err != nil {
		return err
	}
	defer closeGeocode()
	if filler != nil {
		deps.Filler = filler
	}

	// WriteTimeout bounds a whole negotiation run, which has no deadline of its own.
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           api.NewRouter(deps),
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

// Apply migrations and, when SEED_PATH points at a file, load demo fleet data.
func initAndSeed(ctx context.Context, conn *sql.DB, cfg *config.Config, logger *zap.Logger) error {
	if err := repositories.Migrate(ctx, conn, cfg.Database.Driver); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	if cfg.SeedPath == "" {
		return nil
	}
	if _, err := os.Stat(cfg.SeedPath); err != nil {
		logger.Warn("seed file not found, skipping", zap.String("path", cfg.SeedPath))
		return nil
	}

	repo := repositories.NewSQLRepository(conn, cfg.Database.Driver)
	trucks, shipments, err := repo.SeedFromFile(ctx, cfg.SeedPath)
	if err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}
	logger.Info("seeded fleet", zap.Int("trucks", trucks), zap.Int("shipments", shipments))
	return nil
}

// newGeocodeFiller builds the OpenCage geocoder behind memory -> redis|SQL caches.
// A nil filler means geocoding is disabled because no API key is set.
func newGeocodeFiller(
	ctx context.Context,
	cfg *config.Config,
	conn *sql.DB,
	repo ports.ShipmentRepository,
	logger *zap.Logger,
) (*services.GeocodeFiller, func(), error) {
	noop := func() {}
	if cfg.Geocode.APIKey == "" {
		logger.Warn("OPENCAGE_API_KEY not set, geocoding disabled")
		return nil, noop, nil
	}

	mem, err := cache.NewMemoryGeocodeCache(cfg.Geocode.MemoryCacheBytes, cfg.Geocode.CacheTTL)
	if err != nil {
		return nil, noop, err
	}
	closers := []func(){mem.Close}
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}

	var shared ports.GeocodeCache = cache.NewSQLGeocodeCache(conn, cfg.Database.Driver)
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unavailable, using SQL geocode cache", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
			_ = client.Close()
		} else {
			shared = cache.NewRedisGeocodeCache(client, cfg.Geocode.CacheTTL)
			closers = append(closers, func() { _ = client.Close() })
		}
	}

	tiered := cache.NewTieredGeocodeCache(logger, mem, shared)
	geocoder, err := geocode.NewOpenCageGeocoder(cfg.Geocode.APIKey, cfg.Geocode.BaseURL, tiered)
	if err != nil {
		closeAll()
		return nil, noop, err
	}

	return services.NewGeocodeFiller(repo, geocoder, cfg.Geocode.Concurrency, logger), closeAll, nil
}
