package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"taskhub/internal/domain"
	"taskhub/internal/domain/models"
)

// TokenIssuer signs and verifies HS256 access tokens with a shared secret.
// The auth service issues with it; the other services use it as their
// TokenVerifier unless a JWKS URL is configured.
type TokenIssuer struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// NewTokenIssuer creates an issuer. ttl is only used when signing.
func NewTokenIssuer(secret, issuer, audience string, ttl time.Duration, logger *slog.Logger) (*TokenIssuer, error) {
	if secret == "" {
		return nil, errors.New("JWT secret cannot be empty")
	}
	return &TokenIssuer{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// TTL returns the lifetime of issued access tokens.
func (t *TokenIssuer) TTL() time.Duration {
	return t.ttl
}

// Issue signs an access token for user.
func (t *TokenIssuer) Issue(user *models.User) (string, error) {
	now := t.now()
	claims := models.AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID,
			Issuer:    t.issuer,
			Audience:  jwt.ClaimStrings{t.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
		Username: user.Username,
		Roles:    user.Roles,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

// VerifyToken implements TokenVerifier.
func (t *TokenIssuer) VerifyToken(tokenString string) (*models.AccessClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.AccessClaims{}, t.keyfunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithAudience(t.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		t.logger.Debug("token parse failed", "error", err)
		return nil, domain.ErrUnauthorized
	}

	return claimsFrom(token)
}

// ParseExpired checks signature, issuer and audience but not expiry.
// Used by the refresh flow, which receives the access token that just expired.
func (t *TokenIssuer) ParseExpired(tokenString string) (*models.AccessClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.AccessClaims{}, t.keyfunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		t.logger.Debug("expired token parse failed", "error", err)
		return nil, domain.ErrUnauthorized
	}

	claims, err := claimsFrom(token)
	if err != nil {
		return nil, err
	}
	if claims.Issuer != t.issuer || !slices.Contains(claims.Audience, t.audience) {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}

// Close implements TokenVerifier.
func (t *TokenIssuer) Close() error {
	return nil
}

func (t *TokenIssuer) keyfunc(*jwt.Token) (interface{}, error) {
	return t.secret, nil
}

var _ TokenVerifier = (*TokenIssuer)(nil)
var _ TokenVerifier = (*JWKSVerifier)(nil)
