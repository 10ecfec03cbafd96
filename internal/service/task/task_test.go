package task

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskhub/internal/domain"
	"taskhub/internal/domain/models"
	"taskhub/internal/domain/services"
	"taskhub/internal/policy"
)

type fakeTaskRepo struct {
	mu     sync.Mutex
	nextID int64
	tasks  map[int64]models.Task
	writes int
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: map[int64]models.Task{}}
}

func (r *fakeTaskRepo) Create(_ context.Context, t *models.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	t.ID = r.nextID
	r.tasks[t.ID] = *t
	r.writes++
	return nil
}

func (r *fakeTaskRepo) GetByID(_ context.Context, id int64) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return nil, fmt.Errorf("task %d: %w", id, domain.ErrNotFound)
	}
	return &t, nil
}

func (r *fakeTaskRepo) ListForUser(_ context.Context, userID string) ([]models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Task{}
	for id := int64(1); id <= r.nextID; id++ {
		t, ok := r.tasks[id]
		if ok && (t.CreatedBy == userID || (t.AssignedTo != nil && *t.AssignedTo == userID)) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeTaskRepo) ListByProject(_ context.Context, projectID int64) ([]models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Task{}
	for id := int64(1); id <= r.nextID; id++ {
		if t, ok := r.tasks[id]; ok && t.ProjectID == projectID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeTaskRepo) Update(_ context.Context, t *models.Task) error {
	return r.mutate(t.ID, func(cur *models.Task) { *cur = *t })
}

func (r *fakeTaskRepo) UpdateStatus(_ context.Context, id int64, status models.TaskStatus) error {
	return r.mutate(id, func(cur *models.Task) { cur.Status = status })
}

func (r *fakeTaskRepo) Assign(_ context.Context, id int64, userID string) error {
	return r.mutate(id, func(cur *models.Task) { cur.AssignedTo = &userID })
}

func (r *fakeTaskRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.tasks, id)
	r.writes++
	return nil
}

func (r *fakeTaskRepo) mutate(id int64, fn func(*models.Task)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return domain.ErrNotFound
	}
	fn(&t)
	r.tasks[id] = t
	r.writes++
	return nil
}

// fakeAuthz stands in for the relay: roles per (project, user), or a
// blanket unavailable answer.
type fakeAuthz struct {
	roles       map[int64]map[string]models.Role
	unavailable bool
}

func (a *fakeAuthz) role(userID string, projectID int64) (models.Role, services.Verdict) {
	if a.unavailable {
		return models.RoleInvalid, services.VerdictUnavailable
	}
	r, ok := a.roles[projectID][userID]
	if !ok {
		return models.RoleInvalid, services.VerdictDenied
	}
	return r, services.VerdictGranted
}

func (a *fakeAuthz) ProjectExists(_ context.Context, projectID int64) services.Verdict {
	if _, ok := a.roles[projectID]; ok {
		return services.VerdictGranted
	}
	return services.VerdictDenied
}

func (a *fakeAuthz) UserHasAccess(_ context.Context, userID string, projectID int64) services.Verdict {
	_, v := a.role(userID, projectID)
	return v
}

func (a *fakeAuthz) UserHasRole(_ context.Context, userID string, projectID int64, allowed models.RoleSet) services.Verdict {
	r, v := a.role(userID, projectID)
	if v != services.VerdictGranted {
		return v
	}
	if models.IsAuthorized(r, allowed) {
		return services.VerdictGranted
	}
	return services.VerdictDenied
}

func (a *fakeAuthz) IsProjectMember(ctx context.Context, userID string, projectID int64) services.Verdict {
	return a.UserHasAccess(ctx, userID, projectID)
}

type fakeUsers map[string]string

func (u fakeUsers) UserExists(_ context.Context, id string) services.Verdict {
	if _, ok := u[id]; ok {
		return services.VerdictGranted
	}
	return services.VerdictDenied
}

func (u fakeUsers) Username(_ context.Context, id string) (string, bool) {
	name, ok := u[id]
	return name, ok
}

func (u fakeUsers) UserIDByUsername(context.Context, string) (string, services.Verdict) {
	return "", services.VerdictDenied
}

const projectP = int64(10)

func newTestService(t *testing.T) (*fakeTaskRepo, *fakeAuthz, services.TaskService) {
	t.Helper()
	reg, err := policy.NewRegistry()
	require.NoError(t, err)

	repo := newFakeTaskRepo()
	authz := &fakeAuthz{roles: map[int64]map[string]models.Role{
		projectP: {
			"pm":     models.RoleProjectManager,
			"member": models.RoleTeamMember,
			"viewer": models.RoleViewer,
		},
	}}
	users := fakeUsers{"pm": "Pat", "member": "Max", "viewer": "Vic"}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return repo, authz, NewTaskService(repo, authz, reg, users, logger)
}

func seedTask(t *testing.T, svc services.TaskService) int64 {
	t.Helper()
	view, err := svc.CreateTask(context.Background(), "pm", &services.CreateTaskRequest{
		ProjectID: projectP,
		Title:     "Write launch checklist",
	})
	require.NoError(t, err)
	return view.ID
}

func TestCreateTask(t *testing.T) {
	ctx := context.Background()
	repo, _, svc := newTestService(t)

	due := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	view, err := svc.CreateTask(ctx, "member", &services.CreateTaskRequest{
		ProjectID:  projectP,
		Title:      "  Fuel check ",
		AssignedTo: strPtr("pm"),
		DueDate:    &due,
	})
	require.NoError(t, err)

	assert.Equal(t, "Fuel check", view.Title)
	assert.Equal(t, models.TaskStatusToDo, view.Status)
	assert.Equal(t, "Max", view.CreatedByName)
	assert.Equal(t, "Pat", view.AssignedToName)
	assert.Len(t, repo.tasks, 1)
}

func TestCreateTaskDenied(t *testing.T) {
	tests := []struct {
		name    string
		actor   string
		req     services.CreateTaskRequest
		wantErr error
	}{
		{"viewer", "viewer", services.CreateTaskRequest{ProjectID: projectP, Title: "x"}, domain.ErrForbidden},
		{"outsider", "stranger", services.CreateTaskRequest{ProjectID: projectP, Title: "x"}, domain.ErrForbidden},
		{"other project", "pm", services.CreateTaskRequest{ProjectID: 99, Title: "x"}, domain.ErrForbidden},
		{"assignee not member", "pm", services.CreateTaskRequest{ProjectID: projectP, Title: "x", AssignedTo: strPtr("stranger")}, domain.ErrValidation},
		{"missing title", "pm", services.CreateTaskRequest{ProjectID: projectP}, domain.ErrValidation},
		{"bad status", "pm", services.CreateTaskRequest{ProjectID: projectP, Title: "x", Status: "Blocked"}, domain.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, _, svc := newTestService(t)
			_, err := svc.CreateTask(context.Background(), tt.actor, &tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, repo.writes)
		})
	}
}

func TestStatusChangeScenario(t *testing.T) {
	ctx := context.Background()
	repo, _, svc := newTestService(t)
	id := seedTask(t, svc)

	require.NoError(t, svc.UpdateStatus(ctx, id, "member", &services.UpdateTaskStatusRequest{Status: models.TaskStatusInProgress}))
	view, err := svc.GetTask(ctx, id, "member")
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusInProgress, view.Status)

	err = svc.UpdateStatus(ctx, id, "stranger", &services.UpdateTaskStatusRequest{Status: models.TaskStatusDone})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Equal(t, models.TaskStatusInProgress, repo.tasks[id].Status)

	err = svc.UpdateStatus(ctx, id, "member", &services.UpdateTaskStatusRequest{Status: "bogus"})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, models.TaskStatusInProgress, repo.tasks[id].Status)

	// Any state is reachable from any other.
	require.NoError(t, svc.UpdateStatus(ctx, id, "pm", &services.UpdateTaskStatusRequest{Status: models.TaskStatusDone}))
	require.NoError(t, svc.UpdateStatus(ctx, id, "pm", &services.UpdateTaskStatusRequest{Status: models.TaskStatusToDo}))
}

func TestRelayUnavailableDenies(t *testing.T) {
	ctx := context.Background()
	repo, authz, svc := newTestService(t)
	id := seedTask(t, svc)
	writes := repo.writes

	authz.unavailable = true

	assert.ErrorIs(t, svc.UpdateStatus(ctx, id, "pm", &services.UpdateTaskStatusRequest{Status: models.TaskStatusDone}), domain.ErrForbidden)
	assert.ErrorIs(t, svc.DeleteTask(ctx, id, "pm"), domain.ErrForbidden)
	_, err := svc.GetTask(ctx, id, "pm")
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Equal(t, writes, repo.writes)
}

func TestAssignTask(t *testing.T) {
	ctx := context.Background()
	repo, _, svc := newTestService(t)
	id := seedTask(t, svc)

	assert.ErrorIs(t, svc.AssignTask(ctx, id, "member", &services.AssignTaskRequest{AssignedToUserID: "viewer"}), domain.ErrForbidden)
	assert.ErrorIs(t, svc.AssignTask(ctx, id, "pm", &services.AssignTaskRequest{AssignedToUserID: "stranger"}), domain.ErrValidation)
	assert.ErrorIs(t, svc.AssignTask(ctx, id, "pm", &services.AssignTaskRequest{}), domain.ErrValidation)
	assert.Nil(t, repo.tasks[id].AssignedTo)

	require.NoError(t, svc.AssignTask(ctx, id, "pm", &services.AssignTaskRequest{AssignedToUserID: "viewer"}))
	assert.Equal(t, "viewer", *repo.tasks[id].AssignedTo)

	mine, err := svc.ListTasks(ctx, "viewer")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Vic", mine[0].AssignedToName)
}

func TestUpdateTask(t *testing.T) {
	ctx := context.Background()
	repo, _, svc := newTestService(t)
	id := seedTask(t, svc)

	err := svc.UpdateTask(ctx, id, "member", &services.UpdateTaskRequest{TaskID: id + 1, Title: "x"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	err = svc.UpdateTask(ctx, id, "viewer", &services.UpdateTaskRequest{TaskID: id, Title: "x"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	err = svc.UpdateTask(ctx, id, "member", &services.UpdateTaskRequest{
		TaskID:      id,
		Title:       "Final checklist",
		Description: models.OptionalString{Present: true, Value: strPtr("v2")},
	})
	require.NoError(t, err)
	assert.Equal(t, "Final checklist", repo.tasks[id].Title)
	assert.Equal(t, "v2", *repo.tasks[id].Description)
}

func TestDeleteTask(t *testing.T) {
	ctx := context.Background()
	repo, _, svc := newTestService(t)
	id := seedTask(t, svc)

	assert.ErrorIs(t, svc.DeleteTask(ctx, id, "member"), domain.ErrForbidden)
	require.NoError(t, svc.DeleteTask(ctx, id, "pm"))
	assert.Empty(t, repo.tasks)
	assert.ErrorIs(t, svc.DeleteTask(ctx, id, "pm"), domain.ErrNotFound)
}

func TestListProjectTasks(t *testing.T) {
	ctx := context.Background()
	_, _, svc := newTestService(t)
	seedTask(t, svc)

	tasks, err := svc.ListProjectTasks(ctx, projectP, "viewer")
	require.NoError(t, err)
	assert.Len(t, tasks, 1)

	_, err = svc.ListProjectTasks(ctx, projectP, "stranger")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func strPtr(s string) *string { return &s }
