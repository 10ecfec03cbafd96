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
	serviceTask "taskhub/internal/service/task"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load(config.ServiceTask)
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
		"project_api", cfg.ProjectAPIURL,
		"relay_timeout", cfg.RelayTimeout,
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

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: postgres.NewTableNames(cfg.TablePrefix),
		Logger: logger,
	}
	taskRepo := postgres.NewTaskRepository(repoConfig)

	accessPolicy, err := policy.Open(ctx, cfg.PolicyFile, logger)
	if err != nil {
		log.Fatalf("Failed to load access policy: %v", err)
	}

	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)

	// Every project-scoped decision is relayed to the project service
	projects := relay.NewProjectClient(cfg.ProjectAPIURL, cfg.RelayTimeout, metrics, logger)
	users := relay.NewUserClient(cfg.AuthAPIURL, cfg.RelayTimeout, metrics, logger).
		WithUsernameCache(cfg.UsernameCacheSize, cfg.UsernameCacheTTL)

	taskService := serviceTask.NewTaskService(taskRepo, projects, accessPolicy, users, logger)

	mux := http.NewServeMux()
	server.RegisterOps(mux, registry, observability.NewHealthChecker(pool, cfg.Service))
	handler.NewTaskHandler(taskService, logger).Routes(handler.Router{Mux: mux, Metrics: metrics})

	h := server.NewHandler(mux, cfg, verifier, logger)
	if err := server.Run(ctx, cfg, h, logger); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
