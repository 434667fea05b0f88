package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"

	"github.com/emotewire/emotewire/internal/config"
	"github.com/emotewire/emotewire/internal/database"
	"github.com/emotewire/emotewire/internal/domain"
	"github.com/emotewire/emotewire/internal/emotion"
	"github.com/emotewire/emotewire/internal/logging"
	"github.com/emotewire/emotewire/internal/relay"
	"github.com/emotewire/emotewire/internal/server"
)

func setupConfig() *config.Config {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupRedis(ctx context.Context, redisURL string) *goredis.Client {
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		slog.Error("Failed to parse redis URL", "error", err)
		os.Exit(1)
	}

	client := goredis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		slog.Error("Failed to connect to redis", "error", err)
		os.Exit(1)
	}
	return client
}

func setupDB(ctx context.Context, databaseURL string) *pgxpool.Pool {
	pool, err := database.Connect(ctx, databaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := database.Bootstrap(ctx, pool); err != nil {
		slog.Error("Failed to bootstrap database schema", "error", err)
		os.Exit(1)
	}
	return pool
}

// setupClassifier composes the classification port: HTTP client inside a
// circuit breaker, wrapped by the redis cache when redis is configured.
func setupClassifier(cfg *config.Config, redisClient *goredis.Client) domain.Classifier {
	var classifier domain.Classifier = emotion.NewHTTPClassifier(cfg.ClassifierURL, cfg.ClassifierToken, cfg.ClassifierTimeout)
	classifier = emotion.NewBreakerClassifier(classifier)
	if redisClient != nil {
		classifier = emotion.NewCachedClassifier(redisClient, classifier)
	}
	return classifier
}

func runGracefulShutdown(srv *server.Server, registry *relay.Registry) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		registry.Stop()
		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var redisClient *goredis.Client
	if cfg.RedisURL != "" {
		redisClient = setupRedis(ctx, cfg.RedisURL)
		defer func() { _ = redisClient.Close() }()
	}

	var pool *pgxpool.Pool
	var stats *database.StatsRepository
	var recorder domain.StatsRecorder = domain.NopStatsRecorder{}
	if cfg.DatabaseURL != "" {
		pool = setupDB(ctx, cfg.DatabaseURL)
		defer pool.Close()
		stats = database.NewStatsRepository(pool)
		recorder = stats
	}

	classifier := setupClassifier(cfg, redisClient)

	registry := relay.NewRegistry(clock)
	pipeline := relay.NewPipeline(registry, classifier, recorder)

	var redisHealth goredis.UniversalClient
	if redisClient != nil {
		redisHealth = redisClient
	}
	srv := server.NewServer(cfg, registry, pipeline, classifier, stats, redisHealth, pool)

	done := runGracefulShutdown(srv, registry)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
	slog.Info("Shutdown complete")
}
