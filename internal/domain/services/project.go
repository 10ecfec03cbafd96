package services

import (
	"context"

	"taskhub/internal/domain/models"
)

// CreateProjectRequest represents a request to create a project
type CreateProjectRequest struct {
	UserID      string  `json:"-"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

// UpdateProjectRequest represents a request to update a project.
// ProjectID must match the id in the URL.
type UpdateProjectRequest struct {
	ProjectID   int64                 `json:"projectId"`
	Name        string                `json:"name"`
	Description models.OptionalString `json:"description"`
}

// AddMemberRequest adds a member or changes the role of an existing one.
// Exactly one of UserID and Username is used: the by-username endpoint
// fills Username, the plain endpoint UserID.
type AddMemberRequest struct {
	UserID   string      `json:"userId"`
	Username string      `json:"username"`
	RoleID   models.Role `json:"roleId"`
}

// UpdateMemberRoleRequest changes the role of an existing member
type UpdateMemberRoleRequest struct {
	RoleID models.Role `json:"roleId"`
}

// ProjectService defines business logic operations for projects. Every
// method takes the acting user's id and performs its own guard.
type ProjectService interface {
	CreateProject(ctx context.Context, req *CreateProjectRequest) (*models.ProjectDetail, error)
	GetProject(ctx context.Context, id int64, userID string) (*models.ProjectDetail, error)
	ListProjects(ctx context.Context, userID string) ([]models.Project, error)
	UpdateProject(ctx context.Context, id int64, userID string, req *UpdateProjectRequest) error
	DeleteProject(ctx context.Context, id int64, userID string) error

	// ProjectExists is granted when the project exists and the user can see it
	ProjectExists(ctx context.Context, id int64, userID string) (bool, error)
}

// MembershipService manages the Membership Store
type MembershipService interface {
	ListMembers(ctx context.Context, projectID int64, userID string) ([]models.MemberView, error)
	AddMember(ctx context.Context, projectID int64, userID string, req *AddMemberRequest) error
	UpdateMemberRole(ctx context.Context, projectID int64, userID, memberID string, req *UpdateMemberRoleRequest) error
	RemoveMember(ctx context.Context, projectID int64, userID, memberID string) error
}
