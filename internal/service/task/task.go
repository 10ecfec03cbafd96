package task

import (
	"context"
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

// taskService implements the TaskService interface. Every project-scoped
// decision is delegated to the ProjectAuthorizer, which in production is
// the relay to the project service.
type taskService struct {
	taskRepo repositories.TaskRepository
	authz    services.ProjectAuthorizer
	policy   services.AccessPolicy
	users    services.UserDirectory
	logger   *slog.Logger
}

// NewTaskService creates a new task service
func NewTaskService(
	taskRepo repositories.TaskRepository,
	authz services.ProjectAuthorizer,
	policy services.AccessPolicy,
	users services.UserDirectory,
	logger *slog.Logger,
) services.TaskService {
	return &taskService{
		taskRepo: taskRepo,
		authz:    authz,
		policy:   policy,
		users:    users,
		logger:   logger,
	}
}

// ListTasks returns tasks the user created or is assigned to
func (s *taskService) ListTasks(ctx context.Context, userID string) ([]models.TaskView, error) {
	tasks, err := s.taskRepo.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, tasks), nil
}

// ListProjectTasks requires access to the project
func (s *taskService) ListProjectTasks(ctx context.Context, projectID int64, userID string) ([]models.TaskView, error) {
	if err := services.Guard(s.authz.UserHasAccess(ctx, userID, projectID), "view tasks of this project"); err != nil {
		return nil, err
	}

	tasks, err := s.taskRepo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, tasks), nil
}

// GetTask requires access to the task's project
func (s *taskService) GetTask(ctx context.Context, id int64, userID string) (*models.TaskView, error) {
	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := services.Guard(s.authz.UserHasAccess(ctx, userID, task.ProjectID), "view this task"); err != nil {
		return nil, err
	}

	return &s.views(ctx, []models.Task{*task})[0], nil
}

// CreateTask requires a task.create role in the target project. An
// assignee, when given, must be a member of that project.
func (s *taskService) CreateTask(ctx context.Context, userID string, req *services.CreateTaskRequest) (*models.TaskView, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, service.ValidationError(err)
	}

	allowed := s.policy.Allowed(services.OpTaskCreate)
	if err := services.Guard(s.authz.UserHasRole(ctx, userID, req.ProjectID, allowed), "create tasks in this project"); err != nil {
		return nil, err
	}

	if req.AssignedTo != nil && *req.AssignedTo != "" {
		if err := s.checkAssignee(ctx, *req.AssignedTo, req.ProjectID); err != nil {
			return nil, err
		}
	}

	status := models.TaskStatusToDo
	if req.Status != "" {
		parsed, err := models.ParseTaskStatus(string(req.Status))
		if err != nil {
			return nil, &domain.ValidationError{Message: "invalid status", Fields: map[string]string{"status": err.Error()}}
		}
		status = parsed
	}

	now := time.Now().UTC()
	task := &models.Task{
		ProjectID:   req.ProjectID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Status:      status,
		AssignedTo:  req.AssignedTo,
		CreatedBy:   userID,
		CreatedAt:   now,
		DueDate:     req.DueDate,
		UpdatedAt:   now,
	}
	if task.AssignedTo != nil && *task.AssignedTo == "" {
		task.AssignedTo = nil
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, err
	}

	s.logger.Info("task created",
		"id", task.ID,
		"project_id", task.ProjectID,
		"user_id", userID,
	)

	return &s.views(ctx, []models.Task{*task})[0], nil
}

// UpdateTask replaces title and due date, and description when present
func (s *taskService) UpdateTask(ctx context.Context, id int64, userID string, req *services.UpdateTaskRequest) error {
	if req.TaskID != id {
		return domain.NewValidationError("task ID in URL does not match task ID in body")
	}
	if err := s.validateUpdateRequest(req); err != nil {
		return service.ValidationError(err)
	}

	task, err := s.guardTask(ctx, id, userID, services.OpTaskUpdate, "update this task")
	if err != nil {
		return err
	}

	task.Title = strings.TrimSpace(req.Title)
	task.Description = req.Description.Apply(task.Description)
	task.DueDate = req.DueDate
	task.UpdatedAt = time.Now().UTC()

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return err
	}

	s.logger.Info("task updated", "id", id, "user_id", userID)
	return nil
}

// UpdateStatus moves the task to any status; transitions are unrestricted
func (s *taskService) UpdateStatus(ctx context.Context, id int64, userID string, req *services.UpdateTaskStatusRequest) error {
	if _, err := models.ParseTaskStatus(string(req.Status)); err != nil {
		return &domain.ValidationError{Message: "invalid status", Fields: map[string]string{"status": err.Error()}}
	}

	if _, err := s.guardTask(ctx, id, userID, services.OpTaskStatus, "change the status of this task"); err != nil {
		return err
	}

	if err := s.taskRepo.UpdateStatus(ctx, id, req.Status); err != nil {
		return err
	}

	s.logger.Info("task status changed", "id", id, "status", req.Status, "user_id", userID)
	return nil
}

// AssignTask sets the assignee, who must be a member of the task's project
func (s *taskService) AssignTask(ctx context.Context, id int64, userID string, req *services.AssignTaskRequest) error {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.AssignedToUserID, validation.Required),
	); err != nil {
		return service.ValidationError(err)
	}

	task, err := s.guardTask(ctx, id, userID, services.OpTaskAssign, "assign this task")
	if err != nil {
		return err
	}

	if err := s.checkAssignee(ctx, req.AssignedToUserID, task.ProjectID); err != nil {
		return err
	}

	if err := s.taskRepo.Assign(ctx, id, req.AssignedToUserID); err != nil {
		return err
	}

	s.logger.Info("task assigned", "id", id, "assignee", req.AssignedToUserID, "user_id", userID)
	return nil
}

// DeleteTask removes the task
func (s *taskService) DeleteTask(ctx context.Context, id int64, userID string) error {
	if _, err := s.guardTask(ctx, id, userID, services.OpTaskDelete, "delete this task"); err != nil {
		return err
	}

	if err := s.taskRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("task deleted", "id", id, "user_id", userID)
	return nil
}

// guardTask loads the task and checks the caller's role in its project for op
func (s *taskService) guardTask(ctx context.Context, id int64, userID, op, action string) (*models.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	allowed := s.policy.Allowed(op)
	if err := services.Guard(s.authz.UserHasRole(ctx, userID, task.ProjectID, allowed), action); err != nil {
		return nil, err
	}

	return task, nil
}

func (s *taskService) checkAssignee(ctx context.Context, assignee string, projectID int64) error {
	if !s.authz.IsProjectMember(ctx, assignee, projectID).Allowed() {
		return &domain.ValidationError{
			Message: "assignee must be a member of the project",
			Fields:  map[string]string{"assignedTo": "not a project member"},
		}
	}
	return nil
}

func (s *taskService) views(ctx context.Context, tasks []models.Task) []models.TaskView {
	ids := make([]string, 0, 2*len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.CreatedBy)
		if t.AssignedTo != nil {
			ids = append(ids, *t.AssignedTo)
		}
	}
	names := service.ResolveUsernames(ctx, s.users, ids)

	views := make([]models.TaskView, len(tasks))
	for i, t := range tasks {
		views[i] = models.TaskView{Task: t, CreatedByName: names[t.CreatedBy]}
		if t.AssignedTo != nil {
			views[i].AssignedToName = names[*t.AssignedTo]
		}
	}
	return views
}

func (s *taskService) validateCreateRequest(req *services.CreateTaskRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.ProjectID, validation.Required, validation.Min(int64(1))),
		validation.Field(&req.Title,
			validation.Required,
			validation.Length(1, config.MaxTaskTitleLength),
			validation.By(service.NotBlank),
		),
		validation.Field(&req.Description, validation.Length(0, config.MaxDescriptionLength)),
	)
}

func (s *taskService) validateUpdateRequest(req *services.UpdateTaskRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Title,
			validation.Required,
			validation.Length(1, config.MaxTaskTitleLength),
			validation.By(service.NotBlank),
		),
		validation.Field(&req.Description, validation.By(service.OptionalMaxLength(config.MaxDescriptionLength))),
	)
}
