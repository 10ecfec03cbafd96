package project

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"taskhub/internal/domain"
	"taskhub/internal/domain/models"
	"taskhub/internal/domain/repositories"
	"taskhub/internal/domain/services"
	"taskhub/internal/service"
)

// membershipService implements the MembershipService interface
type membershipService struct {
	memberRepo repositories.MemberRepository
	authz      services.ProjectAuthorizer
	policy     services.AccessPolicy
	users      services.UserDirectory
	logger     *slog.Logger
}

// NewMembershipService creates a new membership service
func NewMembershipService(
	memberRepo repositories.MemberRepository,
	authz services.ProjectAuthorizer,
	policy services.AccessPolicy,
	users services.UserDirectory,
	logger *slog.Logger,
) services.MembershipService {
	return &membershipService{
		memberRepo: memberRepo,
		authz:      authz,
		policy:     policy,
		users:      users,
		logger:     logger,
	}
}

// ListMembers requires any membership in the project
func (s *membershipService) ListMembers(ctx context.Context, projectID int64, userID string) ([]models.MemberView, error) {
	if err := services.Guard(s.authz.UserHasAccess(ctx, userID, projectID), "view members of this project"); err != nil {
		return nil, err
	}

	members, err := s.memberRepo.List(ctx, projectID)
	if err != nil {
		return nil, err
	}

	return toMemberViews(ctx, s.users, members), nil
}

// AddMember inserts the target user or, when already a member, changes
// their role. The target must exist in the identity service.
func (s *membershipService) AddMember(ctx context.Context, projectID int64, userID string, req *services.AddMemberRequest) error {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.UserID, validation.Required.When(strings.TrimSpace(req.Username) == "").Error("userId or username is required")),
		validation.Field(&req.RoleID, validation.By(validRole)),
	); err != nil {
		return service.ValidationError(err)
	}

	allowed := s.policy.Allowed(services.OpMemberAdd)
	if err := services.Guard(s.authz.UserHasRole(ctx, userID, projectID, allowed), "manage members of this project"); err != nil {
		return err
	}

	targetID, err := s.resolveTarget(ctx, req)
	if err != nil {
		return err
	}

	inserted, err := s.memberRepo.Upsert(ctx, &models.ProjectMember{
		ProjectID: projectID,
		UserID:    targetID,
		Role:      req.RoleID,
	})
	if err != nil {
		return err
	}

	s.logger.Info("project member saved",
		"project_id", projectID,
		"member_id", targetID,
		"role", req.RoleID.Name(),
		"inserted", inserted,
		"user_id", userID,
	)

	return nil
}

// resolveTarget returns the id of the user being added, checking existence
// through the identity service. Anything but a granted verdict is a
// validation failure and nothing is written.
func (s *membershipService) resolveTarget(ctx context.Context, req *services.AddMemberRequest) (string, error) {
	if req.UserID != "" {
		if !s.users.UserExists(ctx, req.UserID).Allowed() {
			return "", domain.NewValidationError("failed to add project member, verify that the user exists")
		}
		return req.UserID, nil
	}

	id, v := s.users.UserIDByUsername(ctx, strings.TrimSpace(req.Username))
	if !v.Allowed() {
		return "", domain.NewValidationError("failed to add project member, verify that the user exists")
	}
	return id, nil
}

// UpdateMemberRole changes the role of an existing member
func (s *membershipService) UpdateMemberRole(ctx context.Context, projectID int64, userID, memberID string, req *services.UpdateMemberRoleRequest) error {
	if err := validation.ValidateStruct(req, validation.Field(&req.RoleID, validation.By(validRole))); err != nil {
		return service.ValidationError(err)
	}

	allowed := s.policy.Allowed(services.OpMemberUpdate)
	if err := services.Guard(s.authz.UserHasRole(ctx, userID, projectID, allowed), "manage members of this project"); err != nil {
		return err
	}

	if err := s.memberRepo.UpdateRole(ctx, projectID, memberID, req.RoleID); err != nil {
		return err
	}

	s.logger.Info("project member role updated",
		"project_id", projectID,
		"member_id", memberID,
		"role", req.RoleID.Name(),
		"user_id", userID,
	)

	return nil
}

// RemoveMember deletes a membership row
func (s *membershipService) RemoveMember(ctx context.Context, projectID int64, userID, memberID string) error {
	allowed := s.policy.Allowed(services.OpMemberRemove)
	if err := services.Guard(s.authz.UserHasRole(ctx, userID, projectID, allowed), "manage members of this project"); err != nil {
		return err
	}

	if err := s.memberRepo.Remove(ctx, projectID, memberID); err != nil {
		return err
	}

	s.logger.Info("project member removed",
		"project_id", projectID,
		"member_id", memberID,
		"user_id", userID,
	)

	return nil
}

func validRole(value interface{}) error {
	role, _ := value.(models.Role)
	if !role.Valid() {
		return errors.New("must be 1 (ProjectManager), 2 (TeamMember) or 3 (Viewer)")
	}
	return nil
}
