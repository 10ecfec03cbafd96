package repositories

import (
	"context"

	"taskhub/internal/domain/models"
)

// MemberRepository is the Membership Store: per-project user -> role rows.
type MemberRepository interface {
	// Upsert inserts the row or, if (project, user) already exists,
	// replaces its role. Returns true when a new row was created.
	Upsert(ctx context.Context, member *models.ProjectMember) (bool, error)

	// Get returns the membership row or ErrNotFound.
	Get(ctx context.Context, projectID int64, userID string) (*models.ProjectMember, error)

	// List returns all rows of a project.
	List(ctx context.Context, projectID int64) ([]models.ProjectMember, error)

	// UpdateRole changes the role of an existing row; ErrNotFound if absent.
	UpdateRole(ctx context.Context, projectID int64, userID string, role models.Role) error

	// Remove deletes a row; ErrNotFound if absent.
	Remove(ctx context.Context, projectID int64, userID string) error

	// RemoveAll deletes every row of a project.
	RemoveAll(ctx context.Context, projectID int64) error
}
