package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"taskhub/internal/auth"
	"taskhub/internal/config"
	"taskhub/internal/handler"
	"taskhub/internal/observability"
	"taskhub/internal/repository/postgres"
	"taskhub/internal/server"
	"taskhub/internal/service/identity"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load(config.ServiceAuth)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger, closeLog, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer closeLog()

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	issuer, err := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTokenTTL, logger)
	if err != nil {
		log.Fatalf("Failed to create token issuer: %v", err)
	}

	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	userRepo := postgres.NewUserRepository(repoConfig)
	tokenRepo := postgres.NewRefreshTokenRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool, logger)

	identityService := identity.NewIdentityService(
		userRepo,
		tokenRepo,
		txManager,
		issuer,
		auth.NewArgon2Hasher(auth.DefaultArgon2Params),
		cfg.RefreshTokenTTL,
		logger,
	)

	janitor := identity.NewTokenJanitor(tokenRepo, logger)
	if _, err := janitor.Start(ctx, cfg.TokenPurgeSchedule); err != nil {
		log.Fatalf("Failed to schedule token purge: %v", err)
	}

	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)

	authHandler := handler.NewAuthHandler(identityService, logger)
	userHandler := handler.NewUserHandler(identityService, logger)

	mux := http.NewServeMux()
	server.RegisterOps(mux, registry, observability.NewHealthChecker(pool, cfg.Service))
	rt := handler.Router{Mux: mux, Metrics: metrics}
	authHandler.Routes(rt)
	userHandler.Routes(rt)

	h := server.NewHandler(mux, cfg, issuer, logger, authHandler.PublicPaths()...)
	if err := server.Run(ctx, cfg, h, logger); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
