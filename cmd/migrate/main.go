package main

import (
	"context"
	"flag"
	"log"

	"github.com/joho/godotenv"

	"taskhub/internal/config"
	"taskhub/internal/repository/postgres"
)

func main() {
	service := flag.String("service", "", "Service whose tables to manage: auth, project or task")
	drop := flag.Bool("drop", false, "Drop the service's tables instead of creating them")
	flag.Parse()

	_ = godotenv.Load()

	cfg := config.Load(*service)
	if cfg.DatabaseURL == "" {
		log.Fatalf("DATABASE_URL is required")
	}

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && *drop {
		log.Fatalf("BLOCKED: Cannot drop tables in production environment")
	}

	logger, closeLog, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer closeLog()

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)

	if *drop {
		if err := postgres.Drop(ctx, pool, tables, *service); err != nil {
			log.Fatalf("Drop failed: %v", err)
		}
		logger.Info("tables dropped", "table_prefix", cfg.TablePrefix)
		return
	}

	if err := postgres.Migrate(ctx, pool, tables, *service); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	logger.Info("schema applied", "table_prefix", cfg.TablePrefix)
}
