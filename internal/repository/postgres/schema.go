package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Each service owns its own tables; tasks reference projects by id only.
func schemaStatements(service string, t *TableNames) ([]string, error) {
	switch service {
	case "auth":
		return []string{
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				id            UUID PRIMARY KEY,
				username      VARCHAR(64) NOT NULL,
				email         VARCHAR(256) NOT NULL,
				first_name    VARCHAR(100) NOT NULL DEFAULT '',
				last_name     VARCHAR(100) NOT NULL DEFAULT '',
				password_hash TEXT NOT NULL,
				roles         TEXT[] NOT NULL DEFAULT '{}',
				created_at    TIMESTAMPTZ NOT NULL,
				updated_at    TIMESTAMPTZ NOT NULL,
				CONSTRAINT %[1]s_username_key UNIQUE (username),
				CONSTRAINT %[1]s_email_key UNIQUE (email)
			)`, t.Users),
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				id          UUID PRIMARY KEY,
				user_id     UUID NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
				token_hash  CHAR(64) NOT NULL UNIQUE,
				family_id   UUID NOT NULL,
				issued_at   TIMESTAMPTZ NOT NULL,
				expires_at  TIMESTAMPTZ NOT NULL,
				revoked_at  TIMESTAMPTZ,
				replaced_by UUID
			)`, t.RefreshTokens, t.Users),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %[1]s_family_idx ON %[1]s (family_id)`, t.RefreshTokens),
		}, nil
	case "project":
		return []string{
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				id          BIGSERIAL PRIMARY KEY,
				name        VARCHAR(100) NOT NULL,
				description VARCHAR(500),
				created_by  TEXT NOT NULL,
				created_at  TIMESTAMPTZ NOT NULL,
				updated_at  TIMESTAMPTZ NOT NULL
			)`, t.Projects),
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				project_id BIGINT NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
				user_id    TEXT NOT NULL,
				role_id    INT NOT NULL CHECK (role_id IN (1, 2, 3)),
				PRIMARY KEY (project_id, user_id)
			)`, t.ProjectMembers, t.Projects),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %[1]s_user_idx ON %[1]s (user_id)`, t.ProjectMembers),
		}, nil
	case "task":
		return []string{
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				id          BIGSERIAL PRIMARY KEY,
				project_id  BIGINT NOT NULL,
				title       VARCHAR(100) NOT NULL,
				description VARCHAR(500),
				status      VARCHAR(16) NOT NULL CHECK (status IN ('ToDo', 'InProgress', 'Done')),
				assigned_to TEXT,
				created_by  TEXT NOT NULL,
				created_at  TIMESTAMPTZ NOT NULL,
				due_date    TIMESTAMPTZ,
				updated_at  TIMESTAMPTZ NOT NULL
			)`, t.Tasks),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %[1]s_project_idx ON %[1]s (project_id)`, t.Tasks),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %[1]s_assigned_idx ON %[1]s (assigned_to)`, t.Tasks),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %[1]s_created_by_idx ON %[1]s (created_by)`, t.Tasks),
		}, nil
	default:
		return nil, fmt.Errorf("unknown service %q", service)
	}
}

func dropStatements(service string, t *TableNames) ([]string, error) {
	switch service {
	case "auth":
		return []string{
			fmt.Sprintf(`DROP TABLE IF EXISTS %s CASCADE`, t.RefreshTokens),
			fmt.Sprintf(`DROP TABLE IF EXISTS %s CASCADE`, t.Users),
		}, nil
	case "project":
		return []string{
			fmt.Sprintf(`DROP TABLE IF EXISTS %s CASCADE`, t.ProjectMembers),
			fmt.Sprintf(`DROP TABLE IF EXISTS %s CASCADE`, t.Projects),
		}, nil
	case "task":
		return []string{
			fmt.Sprintf(`DROP TABLE IF EXISTS %s CASCADE`, t.Tasks),
		}, nil
	default:
		return nil, fmt.Errorf("unknown service %q", service)
	}
}

// Migrate creates the tables of service if they do not exist
func Migrate(ctx context.Context, pool *pgxpool.Pool, tables *TableNames, service string) error {
	stmts, err := schemaStatements(service, tables)
	if err != nil {
		return err
	}
	return execAll(ctx, pool, stmts)
}

// Drop removes the tables of service
func Drop(ctx context.Context, pool *pgxpool.Pool, tables *TableNames, service string) error {
	stmts, err := dropStatements(service, tables)
	if err != nil {
		return err
	}
	return execAll(ctx, pool, stmts)
}

func execAll(ctx context.Context, pool *pgxpool.Pool, stmts []string) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, stmt := range stmts {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("exec %q: %w", firstLine(stmt), err)
		}
	}

	return tx.Commit(ctx)
}

func firstLine(s string) string {
	for i, c := range s {
		if c == '\n' {
			return s[:i]
		}
	}
	return s
}
