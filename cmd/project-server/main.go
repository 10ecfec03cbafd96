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

	"taskhub/internal/config"
	"taskhub/internal/handler"
	"taskhub/internal/observability"
	"taskhub/internal/policy"
	"taskhub/internal/relay"
	"taskhub/internal/repository/postgres"
	"taskhub/internal/server"
	serviceProject "taskhub/internal/service/project"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load(config.ServiceProject)
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
		"auth_api", cfg.AuthAPIURL,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	verifier, err := server.NewVerifier(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to create token verifier: %v", err)
	}
	defer verifier.Close()

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
	projectRepo := postgres.NewProjectRepository(repoConfig)
	memberRepo := postgres.NewMemberRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool, logger)

	accessPolicy, err := policy.Open(ctx, cfg.PolicyFile, logger)
	if err != nil {
		log.Fatalf("Failed to load access policy: %v", err)
	}

	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)

	users := relay.NewUserClient(cfg.AuthAPIURL, cfg.RelayTimeout, metrics, logger).
		WithUsernameCache(cfg.UsernameCacheSize, cfg.UsernameCacheTTL)
	authz := serviceProject.NewMembershipAuthorizer(projectRepo, memberRepo, logger)

	projectService := serviceProject.NewProjectService(projectRepo, memberRepo, txManager, authz, accessPolicy, users, logger)
	memberService := serviceProject.NewMembershipService(memberRepo, authz, accessPolicy, users, logger)

	mux := http.NewServeMux()
	server.RegisterOps(mux, registry, observability.NewHealthChecker(pool, cfg.Service))
	rt := handler.Router{Mux: mux, Metrics: metrics}
	handler.NewProjectHandler(projectService, logger).Routes(rt)
	handler.NewMemberHandler(memberService, logger).Routes(rt)
	handler.NewCheckHandler(projectService, authz, logger).Routes(rt)

	h := server.NewHandler(mux, cfg, verifier, logger)
	if err := server.Run(ctx, cfg, h, logger); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
