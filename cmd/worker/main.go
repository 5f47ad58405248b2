// Command worker runs the durable, Redis-backed ingest queue: the
// asynq alternative to the in-process Runner that cmd/api also
// drives, for a deployment where ingestion must survive a process
// restart (spec §4.1).
package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/lumenvault/photovault/internal/catalog"
	"github.com/lumenvault/photovault/internal/config"
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
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	photoStore := catalog.NewPhotoStore(pool)
	ingestPipeline := pipeline.NewIngestPipeline(photoStore)

	redisAddr := cfg.GetWithFallback([]string{"REDIS_ADDR"}, "localhost:6379")
	redisOpt := asynq.RedisClientOpt{Addr: redisAddr}

	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 10,
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(pipeline.TypeIngestPhoto, pipeline.IngestTaskHandler(ingestPipeline))

	go func() {
		<-ctx.Done()
		logger.Info("shutdown signal received, stopping asynq server")
		srv.Shutdown()
	}()

	logger.Info("ingest worker listening", zap.String("redisAddr", redisAddr))
	if err := srv.Run(mux); err != nil {
		logger.Fatal("asynq server stopped with error", zap.Error(err))
	}
}
