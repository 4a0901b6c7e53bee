package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"trade-parser-bot/config"
	"trade-parser-bot/internal/api"
	"trade-parser-bot/internal/auth"
	"trade-parser-bot/internal/bot"
	"trade-parser-bot/internal/cache"
	"trade-parser-bot/internal/database"
	"trade-parser-bot/internal/engine"
	"trade-parser-bot/internal/logging"
	"trade-parser-bot/internal/vault"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.New(logging.Config{
		Level:      cfg.LoggingConfig.Level,
		Output:     cfg.LoggingConfig.Output,
		JSONFormat: cfg.LoggingConfig.JSONFormat,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Secrets come from Vault when enabled, the environment otherwise
	vaultClient, err := vault.NewClient(cfg.VaultConfig)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create vault client")
	}
	secrets, err := vaultClient.LoadSecrets(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load secrets")
	}
	if secrets.TelegramBotToken != "" {
		cfg.TelegramConfig.BotToken = secrets.TelegramBotToken
	}
	if secrets.SupabaseServiceRoleKey != "" {
		cfg.SupabaseConfig.ServiceRoleKey = secrets.SupabaseServiceRoleKey
	}
	if secrets.DatabasePassword != "" {
		cfg.DatabaseConfig.Password = secrets.DatabasePassword
	}
	if secrets.JWTSecret != "" {
		cfg.AuthConfig.JWTSecret = secrets.JWTSecret
	}

	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	eng := engine.New(engine.Config{
		ExpiryPolicy:        engine.ExpiryPolicy(cfg.EngineConfig.ExpiryPolicy),
		RequireOptionFields: cfg.EngineConfig.RequireOptionFields,
		DefaultTimeframe:    cfg.EngineConfig.DefaultTimeframe,
	}, logger)
	logger.Info().
		Str("expiry_policy", cfg.EngineConfig.ExpiryPolicy).
		Bool("require_option_fields", cfg.EngineConfig.RequireOptionFields).
		Msg("engine initialized")

	var store database.TradeStore = database.NopStore{}
	var counter api.SymbolCounter
	switch cfg.StorageConfig.Backend {
	case "postgres":
		db, err := database.NewDB(cfg.DatabaseConfig)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer db.Close()
		if err := db.RunMigrations(ctx, cfg.StorageConfig.Table); err != nil {
			logger.Fatal().Err(err).Msg("failed to run migrations")
		}
		repo := database.NewRepository(db, cfg.StorageConfig.Table, logger)
		store = repo
		counter = repo
	case "supabase":
		store = database.NewSupabaseStore(
			cfg.SupabaseConfig.URL,
			cfg.SupabaseConfig.ServiceRoleKey,
			cfg.StorageConfig.Table,
			logger,
		)
	}
	logger.Info().Str("backend", store.Name()).Str("table", cfg.StorageConfig.Table).Msg("trade storage ready")

	// A tracker without a Redis client accepts every update
	var tracker *cache.UpdateTracker
	if cfg.RedisConfig.Enabled {
		redisClient, err := cache.NewClient(cfg.RedisConfig)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
		tracker = cache.NewUpdateTracker(redisClient)
		logger.Info().Str("addr", cfg.RedisConfig.Address).Msg("update deduplication enabled")
	} else {
		tracker = cache.NewUpdateTracker(nil)
	}

	hub := api.NewWSHub()
	go hub.Run()

	var jwtManager *auth.JWTManager
	if cfg.AuthConfig.Enabled {
		jwtManager = auth.NewJWTManager(cfg.AuthConfig.JWTSecret)
	}

	errCh := make(chan error, 2)

	if cfg.ServerConfig.Enabled {
		server := api.NewServer(cfg.ServerConfig, eng, store, counter, hub, jwtManager, logger)
		go func() {
			errCh <- server.Start(ctx)
		}()
	}

	if cfg.TelegramConfig.Enabled {
		tgBot, err := bot.New(cfg.TelegramConfig, cfg.EngineConfig, eng, store, tracker, hub, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to start telegram bot")
		}
		go func() {
			errCh <- tgBot.Run(ctx)
		}()
	}

	if !cfg.ServerConfig.Enabled && !cfg.TelegramConfig.Enabled {
		logger.Fatal().Msg("nothing to run: both server and telegram are disabled")
	}

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logger.Error().Err(err).Msg("component exited with error")
		}
	}
}
