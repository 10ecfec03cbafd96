package repositories

import (
	"context"

	"taskhub/internal/domain/models"
)

// TaskRepository defines data access operations for tasks
type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, id int64) (*models.Task, error)

	// ListForUser returns tasks created by or assigned to the user
	ListForUser(ctx context.Context, userID string) ([]models.Task, error)
	ListByProject(ctx context.Context, projectID int64) ([]models.Task, error)

	// Update writes title, description, due date and updated_at
	Update(ctx context.Context, task *models.Task) error
	UpdateStatus(ctx context.Context, id int64, status models.TaskStatus) error
	Assign(ctx context.Context, id int64, userID string) error
	Delete(ctx context.Context, id int64) error
}
