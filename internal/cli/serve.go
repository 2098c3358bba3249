// internal/cli/serve.go
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"talent-matching/internal/common/config"
	"talent-matching/internal/common/database"
	"talent-matching/internal/common/logger"
	"talent-matching/internal/common/observability"
	"talent-matching/internal/matching/cache"
	"talent-matching/internal/matching/engine"
	"talent-matching/internal/server"
	"talent-matching/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the matching HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// retryWithBackoff attempts an operation with exponential backoff.
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func runServe() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("starting matching server",
		zap.String("version", Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		return err
	}
	defer pg.Close()
	zapLog.Info("postgresql connected")

	checks := map[string]func(ctx context.Context) error{
		"postgres": pg.Ping,
	}

	var redisClient *redislib.Client
	if cfg.Database.Redis.Enabled {
		var rc *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			rc, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return rc.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			return err
		}
		defer rc.Close()
		redisClient = rc.GetClient()
		checks["redis"] = rc.Ping
		zapLog.Info("redis connected")
	}

	var poolStore store.PoolStore = store.NewPostgresStore(pg.GetDB(), log)
	if cfg.Database.Elasticsearch.Enabled {
		var es *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			es, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return es.Ping()
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			return err
		}
		poolStore = store.NewElasticsearchStore(
			es.Client,
			cfg.Database.Elasticsearch.IndexCands,
			cfg.Database.Elasticsearch.IndexJobs,
			log,
		)
		checks["elasticsearch"] = func(context.Context) error { return es.Ping() }
		zapLog.Info("elasticsearch connected, serving pools from search indexes")
	}

	resultCache := cache.New(
		cfg.Matching.Cache.Capacity,
		cfg.Matching.Cache.GetTTL(),
		redisClient,
		log,
	)

	eng := engine.New(poolStore, resultCache, cfg.Matching, log)
	srv := server.New(cfg.Server, eng, log, obs, checks)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		zapLog.Info("shutdown signal received", zap.String("signal", sig.String()))
	}

	if err := srv.Shutdown(context.Background()); err != nil {
		zapLog.Error("server shutdown failed", zap.Error(err))
		return err
	}

	zapLog.Info("server stopped")
	return nil
}
