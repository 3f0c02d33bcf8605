package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"missing-maps-service/internal/adapters/events"
	"missing-maps-service/internal/adapters/online"
	"missing-maps-service/internal/adapters/regions"
	"missing-maps-service/internal/adapters/repositories"
	"missing-maps-service/internal/adapters/settings"
	"missing-maps-service/internal/api"
	"missing-maps-service/internal/config"
	"missing-maps-service/internal/platform/db"
	"missing-maps-service/internal/platform/worker"
	"missing-maps-service/internal/ports"
	"missing-maps-service/internal/services"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"
)

const shutdownTimeout = 15 * time.Second

type catalogStore interface {
	ports.RegionRepository
	ports.RegionStatusWriter
}

type settingsStore interface {
	ports.RoutingSettings
	ports.RoutingPreferenceWriter
}

type closer interface {
	Close() error
}

// main is the application composition root.
// It wires concrete adapters (SQL stores, online router, Redis, AMQP) behind
// ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	dsn := cfg.DBPath
	if cfg.DBDriver == "postgres" {
		dsn = cfg.DatabaseURL
	}
	database, err := db.OpenDriver(cfg.DBDriver, dsn)
	if err != nil {
		log.Fatal(err)
	}
	defer database.Close()

	dialect, err := repositories.ParseDialect(cfg.DBDriver)
	if err != nil {
		log.Fatal(err)
	}

	// Initialize schema and seed the region catalog on startup for local runs.
	if err := initAndSeed(database, dialect, cfg.SeedPath); err != nil {
		log.Fatal(err)
	}

	catalog, prefs := openStores(database, dialect, cfg)

	client, closeClient, err := newOnlineClient(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer closeClient()

	pool := worker.NewPool(cfg.Workers, worker.WithMaxPending(cfg.MaxPending))

	mapper, err := services.NewMissingMapsMapper(
		client,
		regions.NewBBoxCalculator(catalog),
		prefs,
		pool,
		cfg.OnlineRoutingURL,
	)
	if err != nil {
		log.Fatal(err)
	}

	publisher := newPublisher(cfg)
	if c, ok := publisher.(closer); ok {
		defer func() {
			if err := c.Close(); err != nil {
				log.Printf("close publisher: %v", err)
			}
		}()
	}

	router := api.NewRouter(api.Deps{
		Routes:      repositories.NewMemoryRouteRepository(),
		Resolver:    mapper,
		Publisher:   publisher,
		Regions:     catalog,
		RegionState: catalog,
		Settings:    prefs,
		Preferences: prefs,
		DB:          database,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second, // ?wait=true holds the request for the online round trip.
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("Server listening addr=:%s workers=%d db=%s", cfg.Port, cfg.Workers, cfg.DBDriver)
		serveErr <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Printf("server failed: %v", err)
		}
	case sig := <-stop:
		log.Printf("shutting down signal=%s", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("http shutdown: %v", err)
	}
	// Let in-flight resolutions finish so their outcomes are recorded and published.
	if err := pool.Close(ctx); err != nil {
		log.Printf("worker pool shutdown: %v", err)
	}
}

func initAndSeed(database *sql.DB, dialect repositories.Dialect, seedPath string) error {
	if err := repositories.InitSchema(database); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	if err := repositories.SeedFromJSON(database, dialect, seedPath); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	return nil
}

func openStores(database *sql.DB, dialect repositories.Dialect, cfg *config.Config) (catalogStore, settingsStore) {
	if dialect == repositories.DialectPostgres {
		return regions.NewSQLRegionRepository(database), settings.NewSQLSettingsStore(database, cfg.RoutingType)
	}
	return regions.NewSqliteRegionRepository(database), settings.NewSqliteSettingsStore(database, cfg.RoutingType)
}

// newOnlineClient builds the online routing client, fronted by a Redis cache
// when REDIS_URL is set. The returned func releases the Redis connection.
func newOnlineClient(cfg *config.Config) (ports.OnlineRoutingClient, func(), error) {
	client := online.NewClient(cfg.OnlineRoutingTimeout)
	if cfg.RedisURL == "" {
		return client, func() {}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rdb, err := online.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("online client: %w", err)
	}
	log.Printf("online routing cache enabled ttl=%s", cfg.CacheTTL)

	cached := online.NewCachedClient(client, rdb,
		online.WithTTL(cfg.CacheTTL),
		online.WithLogger(log.Printf),
	)
	return cached, func() { _ = rdb.Close() }, nil
}

func newPublisher(cfg *config.Config) ports.ResolutionPublisher {
	if cfg.AMQPURL == "" {
		return events.LogPublisher{}
	}
	log.Printf("publishing resolutions exchange=%s", events.DefaultExchange)
	return events.NewAMQPPublisher(cfg.AMQPURL)
}
