package services

import (
	"context"

	"taskhub/internal/domain/models"
)

// RegisterRequest creates an account
type RegisterRequest struct {
	Username  string   `json:"username"`
	Email     string   `json:"email"`
	Password  string   `json:"password"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Roles     []string `json:"roles"`
}

// LoginRequest exchanges credentials for a token pair
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RefreshRequest rotates a token pair. The access token may be expired but
// must carry a valid signature and belong to the refresh token's owner.
type RefreshRequest struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// IdentityService is the Token Issuer and user directory
type IdentityService interface {
	Register(ctx context.Context, req *RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req *LoginRequest) (*models.TokenPair, error)
	Refresh(ctx context.Context, req *RefreshRequest) (*models.TokenPair, error)

	// GetUser returns ErrNotFound for unknown ids
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}
