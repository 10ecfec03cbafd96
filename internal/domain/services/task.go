package services

import (
	"context"
	"time"

	"taskhub/internal/domain/models"
)

// CreateTaskRequest represents a request to create a task. An absent
// status defaults to ToDo; an explicit empty, null or unknown one fails
// JSON decoding.
type CreateTaskRequest struct {
	ProjectID   int64             `json:"projectId"`
	Title       string            `json:"title"`
	Description *string           `json:"description"`
	Status      models.TaskStatus `json:"status"`
	AssignedTo  *string           `json:"assignedTo"`
	DueDate     *time.Time        `json:"dueDate"`
}

// UpdateTaskRequest replaces title and due date. Description follows
// merge-patch rules: absent keeps it, null clears it.
type UpdateTaskRequest struct {
	TaskID      int64                 `json:"taskId"`
	Title       string                `json:"title"`
	Description models.OptionalString `json:"description"`
	DueDate     *time.Time            `json:"dueDate"`
}

// UpdateTaskStatusRequest moves a task to another status
type UpdateTaskStatusRequest struct {
	Status models.TaskStatus `json:"status"`
}

// AssignTaskRequest assigns a task to a project member
type AssignTaskRequest struct {
	AssignedToUserID string `json:"assignedToUserId"`
}

// TaskService defines business logic operations for tasks. userID is the
// acting user; every call is guarded through the ProjectAuthorizer.
type TaskService interface {
	ListTasks(ctx context.Context, userID string) ([]models.TaskView, error)
	ListProjectTasks(ctx context.Context, projectID int64, userID string) ([]models.TaskView, error)
	GetTask(ctx context.Context, id int64, userID string) (*models.TaskView, error)
	CreateTask(ctx context.Context, userID string, req *CreateTaskRequest) (*models.TaskView, error)
	UpdateTask(ctx context.Context, id int64, userID string, req *UpdateTaskRequest) error
	UpdateStatus(ctx context.Context, id int64, userID string, req *UpdateTaskStatusRequest) error
	AssignTask(ctx context.Context, id int64, userID string, req *AssignTaskRequest) error
	DeleteTask(ctx context.Context, id int64, userID string) error
}
