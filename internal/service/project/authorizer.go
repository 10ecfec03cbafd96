package project

import (
	"context"
	"errors"
	"log/slog"

	"taskhub/internal/domain"
	"taskhub/internal/domain/models"
	"taskhub/internal/domain/repositories"
	"taskhub/internal/domain/services"
)

// MembershipAuthorizer answers project checks straight from the Membership
// Store. Store errors other than not-found yield VerdictUnavailable.
type MembershipAuthorizer struct {
	projectRepo repositories.ProjectRepository
	memberRepo  repositories.MemberRepository
	logger      *slog.Logger
}

// NewMembershipAuthorizer creates the local authorizer used by the project service
func NewMembershipAuthorizer(
	projectRepo repositories.ProjectRepository,
	memberRepo repositories.MemberRepository,
	logger *slog.Logger,
) *MembershipAuthorizer {
	return &MembershipAuthorizer{
		projectRepo: projectRepo,
		memberRepo:  memberRepo,
		logger:      logger,
	}
}

func (a *MembershipAuthorizer) ProjectExists(ctx context.Context, projectID int64) services.Verdict {
	_, err := a.projectRepo.GetByID(ctx, projectID)
	return a.verdict(err, "project exists", projectID)
}

func (a *MembershipAuthorizer) UserHasAccess(ctx context.Context, userID string, projectID int64) services.Verdict {
	_, err := a.memberRepo.Get(ctx, projectID, userID)
	return a.verdict(err, "user access", projectID)
}

func (a *MembershipAuthorizer) UserHasRole(ctx context.Context, userID string, projectID int64, allowed models.RoleSet) services.Verdict {
	member, err := a.memberRepo.Get(ctx, projectID, userID)
	if v := a.verdict(err, "user role", projectID); !v.Allowed() {
		return v
	}
	if models.IsAuthorized(member.Role, allowed) {
		return services.VerdictGranted
	}
	return services.VerdictDenied
}

func (a *MembershipAuthorizer) IsProjectMember(ctx context.Context, userID string, projectID int64) services.Verdict {
	return a.UserHasAccess(ctx, userID, projectID)
}

func (a *MembershipAuthorizer) verdict(err error, check string, projectID int64) services.Verdict {
	switch {
	case err == nil:
		return services.VerdictGranted
	case errors.Is(err, domain.ErrNotFound):
		return services.VerdictDenied
	default:
		a.logger.Error("membership check failed", "check", check, "project_id", projectID, "error", err)
		return services.VerdictUnavailable
	}
}

var _ services.ProjectAuthorizer = (*MembershipAuthorizer)(nil)
