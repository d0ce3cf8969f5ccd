package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/velioglu/pazar/internal"
	"github.com/velioglu/pazar/internal/events"
	"github.com/velioglu/pazar/internal/middleware"
	"github.com/velioglu/pazar/internal/repository"
	"github.com/velioglu/pazar/internal/router"
	"github.com/velioglu/pazar/internal/service"
	"github.com/velioglu/pazar/internal/telemetry"
)

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize database/sql connection for migrations
	logger.Info("Connecting to database...")
	sqlDB, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	logger.Info("Database connection established")

	// Run migrations
	logger.Info("Running database migrations...")
	if err := internal.RunMigrations(sqlDB); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database migrations completed successfully")

	// Initialize pgx connection pool for application
	pool, err := pgxpool.New(ctx, cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	// Initialize the aggregate store
	store := repository.NewStore(pool)

	// Initialize business metrics
	metrics := telemetry.NewBusinessMetrics("pazar")

	// Initialize the event publisher
	var publisher events.Publisher = events.NopPublisher{}
	if cfg.Kafka.Enabled {
		logger.Info("Initializing Kafka publisher", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
		kafkaPublisher := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	}

	// Initialize services
	cartService := service.NewCartService(store, logger, metrics, publisher)
	couponService := service.NewCouponService(store, logger, metrics, publisher)
	addressService := service.NewAddressService(store, logger, metrics, publisher)
	logger.Info("Commerce services initialized")

	// Operational endpoints: health and metrics
	httpMetrics := middleware.NewMetrics("pazar")
	r := router.New(
		router.Recovery(logger),
		httpMetrics.Middleware,
		router.Logger(logger),
	)

	// Deep health check: run a cheap read through each service with a probe
	// user so the whole path down to storage is exercised.
	probe := pgtype.UUID{Valid: true} // zero UUID, owns no data
	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		ctx := req.Context()
		if _, err := cartService.GetCart(ctx, probe); err != nil {
			http.Error(w, "cart storage unavailable", http.StatusServiceUnavailable)
			return
		}
		if _, err := addressService.List(ctx, probe); err != nil {
			http.Error(w, "address storage unavailable", http.StatusServiceUnavailable)
			return
		}
		if _, err := couponService.Validate(ctx, probe, "HEALTHZ", 0); err != nil {
			http.Error(w, "coupon storage unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Handle(http.MethodGet, "/metrics", promhttp.Handler())

	addr := fmt.Sprintf(":%d", cfg.Port)
	logger.Info("Starting server", "address", addr, "env", cfg.Env)

	if err := http.ListenAndServe(addr, r); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
