// Command api serves the HTTP browse and ingest surface: it accepts
// uploads, enqueues them onto the in-process ingest pipeline, and
// answers dimensional browse queries against the Postgres catalog
// (spec §6).
package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/lumenvault/photovault/internal/browse"
	"github.com/lumenvault/photovault/internal/catalog"
	"github.com/lumenvault/photovault/internal/config"
	"github.com/lumenvault/photovault/internal/httpapi"
	"github.com/lumenvault/photovault/internal/pipeline"
)

func main() {
	cfg := config.LoadEnv()

	logger, err := cfg.NewLogger()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbURL := cfg.GetWithFallback([]string{"DATABASE_URL", "PHOTOVAULT_DATABASE_URL"}, "postgres://localhost:5432/photovault")
	migrationsDir := cfg.GetWithFallback([]string{"MIGRATIONS_DIR"}, "db/migrations")

	if err := catalog.AutoMigrate(ctx, catalog.MigrationConfig{
		DatabaseURL:   dbURL,
		MigrationsDir: migrationsDir,
		Logger:        logger,
	}); err != nil {
		logger.Fatal("failed to apply catalog migrations", zap.Error(err))
	}

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	photoStore := catalog.NewPhotoStore(pool)
	locationStore := catalog.NewStorageLocationStore(pool)
	bindingStore := catalog.NewClientBindingStore(pool)
	browseEngine := browse.NewEngine(pool)

	parallelism := 4
	runner := pipeline.NewRunner(parallelism, logger)
	runner.Start(ctx)
	defer runner.Stop()

	ingestPipeline := pipeline.NewIngestPipeline(photoStore)

	authSecret := cfg.GetWithFallback([]string{"JWT_SECRET"}, "development-secret-change-in-production")

	deps := &httpapi.Deps{
		Logger:     logger,
		Locations:  locationStore,
		Bindings:   bindingStore,
		Photos:     photoStore,
		Browse:     browseEngine,
		Runner:     runner,
		Pipeline:   ingestPipeline,
		AuthSecret: []byte(authSecret),
	}
	router := httpapi.NewRouter(deps)

	addr := cfg.GetWithFallback([]string{"API_ADDR", "PORT"}, ":8080")
	if addr[0] != ':' {
		addr = ":" + addr
	}

	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		logger.Info("api server listening", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("api server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received, draining connections")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

