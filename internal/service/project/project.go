package project

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"taskhub/internal/config"
	"taskhub/internal/domain"
	"taskhub/internal/domain/models"
	"taskhub/internal/domain/repositories"
	"taskhub/internal/domain/services"
	"taskhub/internal/service"
)

// projectService implements the ProjectService interface
type projectService struct {
	projectRepo repositories.ProjectRepository
	memberRepo  repositories.MemberRepository
	txManager   repositories.TransactionManager
	authz       services.ProjectAuthorizer
	policy      services.AccessPolicy
	users       services.UserDirectory
	logger      *slog.Logger
}

// NewProjectService creates a new project service
func NewProjectService(
	projectRepo repositories.ProjectRepository,
	memberRepo repositories.MemberRepository,
	txManager repositories.TransactionManager,
	authz services.ProjectAuthorizer,
	policy services.AccessPolicy,
	users services.UserDirectory,
	logger *slog.Logger,
) services.ProjectService {
	return &projectService{
		projectRepo: projectRepo,
		memberRepo:  memberRepo,
		txManager:   txManager,
		authz:       authz,
		policy:      policy,
		users:       users,
		logger:      logger,
	}
}

// CreateProject writes the project and the creator's ProjectManager row in
// one transaction, so a project never exists without a manager.
func (s *projectService) CreateProject(ctx context.Context, req *services.CreateProjectRequest) (*models.ProjectDetail, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, service.ValidationError(err)
	}

	now := time.Now().UTC()
	project := &models.Project{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		CreatedBy:   req.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.projectRepo.Create(txCtx, project); err != nil {
			return err
		}
		_, err := s.memberRepo.Upsert(txCtx, &models.ProjectMember{
			ProjectID: project.ID,
			UserID:    req.UserID,
			Role:      models.RoleProjectManager,
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	s.logger.Info("project created",
		"id", project.ID,
		"name", project.Name,
		"user_id", req.UserID,
	)

	members, err := s.memberViews(ctx, project.ID)
	if err != nil {
		return nil, err
	}

	return &models.ProjectDetail{Project: *project, Members: members}, nil
}

// GetProject returns the project with its members. Any membership grants read access.
func (s *projectService) GetProject(ctx context.Context, id int64, userID string) (*models.ProjectDetail, error) {
	if err := services.Guard(s.authz.UserHasAccess(ctx, userID, id), "view this project"); err != nil {
		return nil, err
	}

	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	members, err := s.memberViews(ctx, id)
	if err != nil {
		return nil, err
	}

	return &models.ProjectDetail{Project: *project, Members: members}, nil
}

// ListProjects returns the projects the user is a member of
func (s *projectService) ListProjects(ctx context.Context, userID string) ([]models.Project, error) {
	return s.projectRepo.ListForUser(ctx, userID)
}

// UpdateProject replaces name and, when present, description
func (s *projectService) UpdateProject(ctx context.Context, id int64, userID string, req *services.UpdateProjectRequest) error {
	if req.ProjectID != id {
		return domain.NewValidationError("project ID in URL does not match project ID in body")
	}
	if err := s.validateUpdateRequest(req); err != nil {
		return service.ValidationError(err)
	}

	allowed := s.policy.Allowed(services.OpProjectUpdate)
	if err := services.Guard(s.authz.UserHasRole(ctx, userID, id, allowed), "update this project"); err != nil {
		return err
	}

	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	project.Name = strings.TrimSpace(req.Name)
	project.Description = req.Description.Apply(project.Description)
	project.UpdatedAt = time.Now().UTC()

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return err
	}

	s.logger.Info("project updated",
		"id", project.ID,
		"name", project.Name,
		"user_id", userID,
	)

	return nil
}

// DeleteProject removes the project and all its memberships
func (s *projectService) DeleteProject(ctx context.Context, id int64, userID string) error {
	allowed := s.policy.Allowed(services.OpProjectDelete)
	if err := services.Guard(s.authz.UserHasRole(ctx, userID, id, allowed), "delete this project"); err != nil {
		return err
	}

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.memberRepo.RemoveAll(txCtx, id); err != nil {
			return err
		}
		return s.projectRepo.Delete(txCtx, id)
	})
	if err != nil {
		return err
	}

	s.logger.Info("project deleted",
		"id", id,
		"user_id", userID,
	)

	return nil
}

// ProjectExists is true when the project exists and the user can see it
func (s *projectService) ProjectExists(ctx context.Context, id int64, userID string) (bool, error) {
	if v := s.authz.ProjectExists(ctx, id); v != services.VerdictGranted {
		return false, unavailable(v)
	}
	if v := s.authz.UserHasAccess(ctx, userID, id); v != services.VerdictGranted {
		return false, unavailable(v)
	}
	return true, nil
}

// memberViews loads members and resolves their usernames
func (s *projectService) memberViews(ctx context.Context, projectID int64) ([]models.MemberView, error) {
	members, err := s.memberRepo.List(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return toMemberViews(ctx, s.users, members), nil
}

func (s *projectService) validateCreateRequest(req *services.CreateProjectRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.UserID, validation.Required),
		validation.Field(&req.Name,
			validation.Required,
			validation.Length(1, config.MaxProjectNameLength),
			validation.By(service.NotBlank),
		),
		validation.Field(&req.Description, validation.Length(0, config.MaxDescriptionLength)),
	)
}

func (s *projectService) validateUpdateRequest(req *services.UpdateProjectRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name,
			validation.Required,
			validation.Length(1, config.MaxProjectNameLength),
			validation.By(service.NotBlank),
		),
		validation.Field(&req.Description, validation.By(service.OptionalMaxLength(config.MaxDescriptionLength))),
	)
}

func toMemberViews(ctx context.Context, users services.UserDirectory, members []models.ProjectMember) []models.MemberView {
	ids := make([]string, len(members))
	for i, m := range members {
		ids[i] = m.UserID
	}
	names := service.ResolveUsernames(ctx, users, ids)

	views := make([]models.MemberView, len(members))
	for i, m := range members {
		name, ok := names[m.UserID]
		if !ok {
			name = models.UnknownUsername
		}
		views[i] = models.MemberView{
			UserID:   m.UserID,
			Username: name,
			RoleID:   m.Role,
			RoleName: m.Role.Name(),
		}
	}
	return views
}

// unavailable turns a non-granted verdict into the error reported by check
// endpoints: nil for a plain denial, an error when the store failed.
func unavailable(v services.Verdict) error {
	if v == services.VerdictUnavailable {
		return fmt.Errorf("membership store unavailable")
	}
	return nil
}
