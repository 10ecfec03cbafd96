package identity

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"

	"taskhub/internal/auth"
	"taskhub/internal/config"
	"taskhub/internal/domain"
	"taskhub/internal/domain/models"
	"taskhub/internal/domain/repositories"
	"taskhub/internal/domain/services"
	"taskhub/internal/service"
)

const refreshTokenBytes = 32

var errInvalidCredentials = &domain.UnauthorizedError{Message: "invalid username or password"}

// identityService implements IdentityService. Access tokens are signed by
// the TokenIssuer; refresh tokens are opaque and only their SHA-256 is stored.
type identityService struct {
	userRepo   repositories.UserRepository
	tokenRepo  repositories.RefreshTokenRepository
	txManager  repositories.TransactionManager
	issuer     *auth.TokenIssuer
	hasher     auth.PasswordHasher
	refreshTTL time.Duration
	logger     *slog.Logger
	now        func() time.Time
}

// NewIdentityService creates a new identity service
func NewIdentityService(
	userRepo repositories.UserRepository,
	tokenRepo repositories.RefreshTokenRepository,
	txManager repositories.TransactionManager,
	issuer *auth.TokenIssuer,
	hasher auth.PasswordHasher,
	refreshTTL time.Duration,
	logger *slog.Logger,
) services.IdentityService {
	return &identityService{
		userRepo:   userRepo,
		tokenRepo:  tokenRepo,
		txManager:  txManager,
		issuer:     issuer,
		hasher:     hasher,
		refreshTTL: refreshTTL,
		logger:     logger,
		now:        time.Now,
	}
}

// Register creates an account. Duplicate usernames or emails yield a ConflictError.
func (s *identityService) Register(ctx context.Context, req *services.RegisterRequest) (*models.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	if err := s.validateRegisterRequest(req); err != nil {
		return nil, service.ValidationError(err)
	}

	hash, err := s.hasher.HashPassword(ctx, req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	roles := req.Roles
	if roles == nil {
		roles = []string{}
	}

	now := s.now().UTC()
	user := &models.User{
		ID:           uuid.NewString(),
		Username:     req.Username,
		Email:        req.Email,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		PasswordHash: hash,
		Roles:        roles,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", "id", user.ID, "username", user.Username)
	return user, nil
}

// Login exchanges credentials for a new token pair starting a new refresh family
func (s *identityService) Login(ctx context.Context, req *services.LoginRequest) (*models.TokenPair, error) {
	if req.Username == "" || req.Password == "" {
		return nil, errInvalidCredentials
	}

	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, err
	}

	ok, err := s.hasher.VerifyPassword(ctx, req.Password, user.PasswordHash)
	if err != nil {
		s.logger.Error("stored password hash unreadable", "user_id", user.ID, "error", err)
		return nil, errInvalidCredentials
	}
	if !ok {
		s.logger.Debug("login rejected", "username", req.Username)
		return nil, errInvalidCredentials
	}

	raw, record, err := s.newRefreshToken(user.ID, uuid.NewString())
	if err != nil {
		return nil, err
	}
	if err := s.tokenRepo.Create(ctx, record); err != nil {
		return nil, err
	}

	s.logger.Info("user logged in", "user_id", user.ID)
	return s.pair(user, raw)
}

// Refresh rotates the refresh token. Presenting a token that was already
// rotated or revoked revokes its whole family.
func (s *identityService) Refresh(ctx context.Context, req *services.RefreshRequest) (*models.TokenPair, error) {
	if req.AccessToken == "" || req.RefreshToken == "" {
		return nil, &domain.UnauthorizedError{Message: "access and refresh tokens are required"}
	}

	claims, err := s.issuer.ParseExpired(req.AccessToken)
	if err != nil {
		return nil, &domain.UnauthorizedError{Message: "invalid access token"}
	}

	current, err := s.tokenRepo.GetByHash(ctx, hashToken(req.RefreshToken))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, &domain.UnauthorizedError{Message: "invalid refresh token"}
		}
		return nil, err
	}

	if current.UserID != claims.Subject {
		return nil, &domain.UnauthorizedError{Message: "invalid refresh token"}
	}

	if current.RevokedAt != nil || current.ReplacedBy != nil {
		s.logger.Warn("refresh token reuse detected",
			"user_id", current.UserID,
			"family_id", current.FamilyID,
		)
		if err := s.tokenRepo.RevokeFamily(ctx, current.FamilyID); err != nil {
			s.logger.Error("failed to revoke token family", "family_id", current.FamilyID, "error", err)
		}
		return nil, &domain.UnauthorizedError{Message: "refresh token already used"}
	}

	if !current.Active(s.now()) {
		return nil, &domain.UnauthorizedError{Message: "refresh token expired"}
	}

	user, err := s.userRepo.GetByID(ctx, current.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, &domain.UnauthorizedError{Message: "invalid refresh token"}
		}
		return nil, err
	}

	raw, next, err := s.newRefreshToken(user.ID, current.FamilyID)
	if err != nil {
		return nil, err
	}

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		return s.tokenRepo.Rotate(txCtx, current.ID, next)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("token refreshed", "user_id", user.ID)
	return s.pair(user, raw)
}

func (s *identityService) GetUser(ctx context.Context, id string) (*models.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	return s.userRepo.GetByID(ctx, id)
}

func (s *identityService) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.userRepo.GetByUsername(ctx, username)
}

func (s *identityService) pair(user *models.User, refresh string) (*models.TokenPair, error) {
	access, err := s.issuer.Issue(user)
	if err != nil {
		return nil, err
	}
	return &models.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.issuer.TTL().Seconds()),
	}, nil
}

// newRefreshToken returns the opaque token handed to the client and the
// record that stores its hash.
func (s *identityService) newRefreshToken(userID, familyID string) (string, *models.RefreshToken, error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", nil, fmt.Errorf("generate refresh token: %w", err)
	}
	raw := base64.RawURLEncoding.EncodeToString(buf)

	now := s.now().UTC()
	return raw, &models.RefreshToken{
		ID:        uuid.NewString(),
		UserID:    userID,
		TokenHash: hashToken(raw),
		FamilyID:  familyID,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.refreshTTL),
	}, nil
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func (s *identityService) validateRegisterRequest(req *services.RegisterRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Username, validation.Required, validation.Length(3, config.MaxUsernameLength)),
		validation.Field(&req.Email, validation.Required, is.EmailFormat),
		validation.Field(&req.Password, validation.Required, validation.Length(config.MinPasswordLength, 128)),
		validation.Field(&req.FirstName, validation.Length(0, 100)),
		validation.Field(&req.LastName, validation.Length(0, 100)),
		validation.Field(&req.Roles, validation.Each(validation.By(canonicalRole))),
	)
}

// canonicalRole accepts only exact role names
func canonicalRole(value interface{}) error {
	name, _ := value.(string)
	if models.ParseRole(name) == models.RoleInvalid {
		return fmt.Errorf("unknown role %q", name)
	}
	return nil
}
