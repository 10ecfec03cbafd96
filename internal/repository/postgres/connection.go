package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"taskhub/internal/domain/repositories"
)

// RepositoryConfig holds configuration for repository implementations
type RepositoryConfig struct {
	Pool   *pgxpool.Pool
	Tables *TableNames
	Logger *slog.Logger
}

// TableNames holds dynamically prefixed table names
type TableNames struct {
	Users          string
	RefreshTokens  string
	Projects       string
	ProjectMembers string
	Tasks          string
}

// NewTableNames prefixes every table, e.g. "dev_" gives dev_tasks.
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Users:          prefix + "users",
		RefreshTokens:  prefix + "refresh_tokens",
		Projects:       prefix + "projects",
		ProjectMembers: prefix + "project_members",
		Tasks:          prefix + "tasks",
	}
}

const (
	maxPoolConns  = 25
	minPoolConns  = 5
	pgBouncerPort = 6543
	pingTimeout   = 5 * time.Second
)

// CreateConnectionPool opens the service's pool and pings it once.
// Behind PgBouncer in transaction mode (port 6543) prepared statements do not
// survive between transactions, so the pool caches statement descriptions
// instead unless the URL chose an exec mode itself.
func CreateConnectionPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}
	cfg.MaxConns = maxPoolConns
	cfg.MinConns = minPoolConns

	conn := cfg.ConnConfig
	if conn.Port == pgBouncerPort && conn.DefaultQueryExecMode == pgx.QueryExecModeCacheStatement {
		conn.DefaultQueryExecMode = pgx.QueryExecModeCacheDescribe
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping %s:%d: %w", conn.Host, conn.Port, err)
	}

	return pool, nil
}

// GetExecutor returns the transaction carried by ctx, or the pool.
func GetExecutor(ctx context.Context, pool *pgxpool.Pool) repositories.DBTX {
	if tx := repositories.GetTx(ctx); tx != nil {
		return tx
	}
	return pool
}
