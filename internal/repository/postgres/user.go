package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"taskhub/internal/domain"
	"taskhub/internal/domain/models"
	"taskhub/internal/domain/repositories"
)

// PostgresUserRepository implements the UserRepository interface
type PostgresUserRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewUserRepository creates a new user repository
func NewUserRepository(config *RepositoryConfig) repositories.UserRepository {
	return &PostgresUserRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const userColumns = `id, username, email, first_name, last_name, password_hash, roles, created_at, updated_at`

// Create inserts a user with a caller-generated UUID
func (r *PostgresUserRepository) Create(ctx context.Context, user *models.User) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, r.tables.Users, userColumns)

	executor := GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.FirstName,
		user.LastName,
		user.PasswordHash,
		user.Roles,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("%s is already taken", duplicateField(err)),
				ResourceType: "user",
			}
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, userColumns, r.tables.Users)

	return r.get(ctx, query, id)
}

func (r *PostgresUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE username = $1`, userColumns, r.tables.Users)

	return r.get(ctx, query, username)
}

func (r *PostgresUserRepository) get(ctx context.Context, query, arg string) (*models.User, error) {
	var user models.User
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.PasswordHash,
		&user.Roles,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("user %s: %w", arg, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &user, nil
}

// duplicateField names the column behind a unique violation
func duplicateField(err error) string {
	if constraintMentions(err, "email") {
		return "email"
	}
	return "username"
}

// PostgresRefreshTokenRepository implements the RefreshTokenRepository interface
type PostgresRefreshTokenRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewRefreshTokenRepository creates a new refresh token repository
func NewRefreshTokenRepository(config *RepositoryConfig) repositories.RefreshTokenRepository {
	return &PostgresRefreshTokenRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

func (r *PostgresRefreshTokenRepository) Create(ctx context.Context, token *models.RefreshToken) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, user_id, token_hash, family_id, issued_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, r.tables.RefreshTokens)

	executor := GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		token.ID,
		token.UserID,
		token.TokenHash,
		token.FamilyID,
		token.IssuedAt,
		token.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("create refresh token: %w", err)
	}

	return nil
}

func (r *PostgresRefreshTokenRepository) GetByHash(ctx context.Context, hash string) (*models.RefreshToken, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, token_hash, family_id, issued_at, expires_at, revoked_at, replaced_by
		FROM %s
		WHERE token_hash = $1
	`, r.tables.RefreshTokens)

	var token models.RefreshToken
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, hash).Scan(
		&token.ID,
		&token.UserID,
		&token.TokenHash,
		&token.FamilyID,
		&token.IssuedAt,
		&token.ExpiresAt,
		&token.RevokedAt,
		&token.ReplacedBy,
	)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("refresh token: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get refresh token: %w", err)
	}

	return &token, nil
}

// Rotate only succeeds once per token: the UPDATE matches while
// replaced_by is still NULL, so a concurrent second rotation sees no rows.
func (r *PostgresRefreshTokenRepository) Rotate(ctx context.Context, oldID string, next *models.RefreshToken) error {
	if err := r.Create(ctx, next); err != nil {
		return err
	}

	query := fmt.Sprintf(`
		UPDATE %s SET replaced_by = $1
		WHERE id = $2 AND replaced_by IS NULL AND revoked_at IS NULL
	`, r.tables.RefreshTokens)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, next.ID, oldID)
	if err != nil {
		return fmt.Errorf("rotate refresh token: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("refresh token %s already used: %w", oldID, domain.ErrUnauthorized)
	}

	return nil
}

func (r *PostgresRefreshTokenRepository) RevokeFamily(ctx context.Context, familyID string) error {
	query := fmt.Sprintf(`
		UPDATE %s SET revoked_at = NOW()
		WHERE family_id = $1 AND revoked_at IS NULL
	`, r.tables.RefreshTokens)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, familyID); err != nil {
		return fmt.Errorf("revoke token family: %w", err)
	}

	return nil
}

func (r *PostgresRefreshTokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE expires_at < $1`, r.tables.RefreshTokens)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, before)
	if err != nil {
		return 0, fmt.Errorf("delete expired refresh tokens: %w", err)
	}

	return result.RowsAffected(), nil
}
