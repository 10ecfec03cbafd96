package repositories

import (
	"context"

	"taskhub/internal/domain/models"
)

// ProjectRepository defines data access operations for projects
type ProjectRepository interface {
	// Create inserts a project and fills in its generated ID and timestamps
	Create(ctx context.Context, project *models.Project) error

	// GetByID retrieves a project by ID
	GetByID(ctx context.Context, id int64) (*models.Project, error)

	// ListForUser retrieves the projects the user is a member of, newest first
	ListForUser(ctx context.Context, userID string) ([]models.Project, error)

	// Update updates name, description and updated_at
	Update(ctx context.Context, project *models.Project) error

	// Delete removes the project. Returns ErrNotFound if it does not exist.
	Delete(ctx context.Context, id int64) error
}
