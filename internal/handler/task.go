package handler

import (
	"log/slog"
	"net/http"

	"taskhub/internal/domain/services"
	"taskhub/internal/httputil"
)

// TaskHandler handles task HTTP requests
type TaskHandler struct {
	taskService services.TaskService
	logger      *slog.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskService services.TaskService, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		logger:      logger,
	}
}

func (h *TaskHandler) Routes(rt Router) {
	rt.HandleFunc("GET /api/tasks", h.ListTasks)
	rt.HandleFunc("POST /api/tasks", h.CreateTask)
	rt.HandleFunc("GET /api/tasks/project/{projectId}", h.ListProjectTasks)
	rt.HandleFunc("GET /api/tasks/{id}", h.GetTask)
	rt.HandleFunc("PUT /api/tasks/{id}", h.UpdateTask)
	rt.HandleFunc("DELETE /api/tasks/{id}", h.DeleteTask)
	rt.HandleFunc("PUT /api/tasks/{id}/status", h.UpdateStatus)
	rt.HandleFunc("PUT /api/tasks/{id}/assign", h.AssignTask)
}

// ListTasks returns tasks the caller created or is assigned to
// GET /api/tasks
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.taskService.ListTasks(r.Context(), httputil.GetUserID(r))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, tasks)
}

// GET /api/tasks/project/{projectId}
func (h *TaskHandler) ListProjectTasks(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "projectId")
	if !ok {
		return
	}

	tasks, err := h.taskService.ListProjectTasks(r.Context(), projectID, httputil.GetUserID(r))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, tasks)
}

// GET /api/tasks/{id}
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(r.Context(), id, httputil.GetUserID(r))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, task)
}

// CreateTask creates a task in the project named by the body
// POST /api/tasks
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req services.CreateTaskRequest
	if !parseBody(w, r, &req) {
		return
	}

	task, err := h.taskService.CreateTask(r.Context(), httputil.GetUserID(r), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, task)
}

// PUT /api/tasks/{id}
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req services.UpdateTaskRequest
	if !parseBody(w, r, &req) {
		return
	}

	if err := h.taskService.UpdateTask(r.Context(), id, httputil.GetUserID(r), &req); err != nil {
		handleError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UpdateStatus moves a task to another status. Unknown statuses fail decoding.
// PUT /api/tasks/{id}/status
func (h *TaskHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req services.UpdateTaskStatusRequest
	if !parseBody(w, r, &req) {
		return
	}

	if err := h.taskService.UpdateStatus(r.Context(), id, httputil.GetUserID(r), &req); err != nil {
		handleError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// PUT /api/tasks/{id}/assign
func (h *TaskHandler) AssignTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req services.AssignTaskRequest
	if !parseBody(w, r, &req) {
		return
	}

	if err := h.taskService.AssignTask(r.Context(), id, httputil.GetUserID(r), &req); err != nil {
		handleError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DELETE /api/tasks/{id}
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(r.Context(), id, httputil.GetUserID(r)); err != nil {
		handleError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
