// Package main is the entry point for the casino minigames service.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"vegas-casino-service/internal/config"
	"vegas-casino-service/internal/flag"
	"vegas-casino-service/internal/game"
	"vegas-casino-service/internal/game/blackjack"
	"vegas-casino-service/internal/game/dice"
	"vegas-casino-service/internal/game/roulette"
	"vegas-casino-service/internal/game/slots"
	"vegas-casino-service/internal/metrics"
	"vegas-casino-service/internal/pkg/db"
	"vegas-casino-service/internal/repository"
	"vegas-casino-service/internal/scoring"
	"vegas-casino-service/internal/server"
	"vegas-casino-service/internal/session"
)

func main() {
	// Configure zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load configuration
	cfg, err := config.Load("config")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log.Info().Msg("Configuration loaded successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	dbPool, err := db.NewPool(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbPool.Close()

	// Run database migrations
	if err := runMigrations(ctx, dbPool); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Initialize Redis client for session state and feature flags
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Str("addr", cfg.Redis.Addr()).Msg("Failed to connect to Redis")
	}
	log.Info().Str("addr", cfg.Redis.Addr()).Msg("Connected to Redis")

	// Initialize repositories and the scoring sink
	userRepo := repository.NewUserRepository(dbPool.Pool)
	resultRepo := repository.NewResultRepository(dbPool.Pool)
	sink := scoring.NewPostgresSink(userRepo, resultRepo)

	// Initialize the blackjack table
	table := blackjack.New(blackjack.Config{
		Store:       session.NewRedisStore(redisClient, cfg.Redis.SessionTTL),
		Sink:        sink,
		Flags:       flag.NewRedisProvider(redisClient),
		DeleteDelay: cfg.Games.Blackjack.DeleteDelay,
	})

	// Initialize game registry and register the stateless games
	gameRegistry := game.NewRegistry()

	diceGame := dice.New(&dice.Config{MaxBet: cfg.Games.Dice.MaxBet})
	if err := gameRegistry.Register(diceGame); err != nil {
		log.Fatal().Err(err).Msg("Failed to register dice game")
	}

	slotsGame := slots.New(&slots.Config{MaxBet: cfg.Games.Slots.MaxBet})
	if err := gameRegistry.Register(slotsGame); err != nil {
		log.Fatal().Err(err).Msg("Failed to register slots game")
	}

	rouletteGame := roulette.New(&roulette.Config{MaxBet: cfg.Games.Roulette.MaxBet})
	if err := gameRegistry.Register(rouletteGame); err != nil {
		log.Fatal().Err(err).Msg("Failed to register roulette game")
	}

	log.Info().
		Int("game_count", gameRegistry.Count()).
		Strs("games", gameRegistry.Commands()).
		Msg("Games registered")

	// Initialize metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	gameMetrics := metrics.New("casino", registry)

	// Initialize the HTTP server
	srv := server.New(server.Config{
		Addr:     cfg.Server.Addr,
		Table:    table,
		Games:    gameRegistry,
		Sink:     sink,
		Metrics:  gameMetrics,
		Gatherer: registry,
		Checkers: map[string]server.HealthChecker{
			"postgres": dbPool.HealthCheck,
			"redis": func(ctx context.Context) error {
				return redisClient.Ping(ctx).Err()
			},
		},
	})

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Run()
	}()

	select {
	case sig := <-sigChan:
		log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	case err := <-errChan:
		if err != nil {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
		return
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Shutdown did not complete cleanly")
	}
	log.Info().Msg("Server stopped gracefully")
}

// runMigrations executes database migrations.
func runMigrations(ctx context.Context, pool *db.Pool) error {
	log.Info().Msg("Running database migrations...")

	// Migration 1: Create users table
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			username VARCHAR(255) PRIMARY KEY,
			balance BIGINT NOT NULL DEFAULT 1000,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_users_balance ON users(balance DESC);
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 1: users table created")

	// Migration 2: Create game_results table
	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS game_results (
			id UUID PRIMARY KEY,
			username VARCHAR(255) NOT NULL REFERENCES users(username) ON DELETE CASCADE,
			game VARCHAR(50) NOT NULL,
			action VARCHAR(50) NOT NULL,
			bet_amount BIGINT NOT NULL,
			payout BIGINT NOT NULL,
			win BOOLEAN NOT NULL,
			result VARCHAR(50) NOT NULL,
			game_data JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_game_results_user_time ON game_results(username, created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_game_results_game_time ON game_results(game, created_at DESC);
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 2: game_results table created")

	log.Info().Msg("All migrations completed successfully")
	return nil
}
