package repositories

import (
	"context"
	"time"

	"taskhub/internal/domain/models"
)

// UserRepository stores accounts owned by the identity service
type UserRepository interface {
	// Create inserts a user. Duplicate username or email yields a ConflictError.
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// RefreshTokenRepository stores hashed refresh tokens
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByHash(ctx context.Context, hash string) (*models.RefreshToken, error)

	// Rotate marks oldID as replaced by next and inserts next
	Rotate(ctx context.Context, oldID string, next *models.RefreshToken) error

	// RevokeFamily revokes every token issued from the same login
	RevokeFamily(ctx context.Context, familyID string) error

	// DeleteExpired removes tokens that expired before the cutoff
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
