package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"taskhub/internal/domain"
	"taskhub/internal/domain/models"
	"taskhub/internal/domain/repositories"
)

// PostgresTaskRepository implements the TaskRepository interface
type PostgresTaskRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(config *RepositoryConfig) repositories.TaskRepository {
	return &PostgresTaskRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const taskColumns = `id, project_id, title, description, status, assigned_to, created_by, created_at, due_date, updated_at`

func (r *PostgresTaskRepository) Create(ctx context.Context, task *models.Task) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (project_id, title, description, status, assigned_to, created_by, created_at, due_date, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`, r.tables.Tasks)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		task.ProjectID,
		task.Title,
		task.Description,
		string(task.Status),
		task.AssignedTo,
		task.CreatedBy,
		task.CreatedAt,
		task.DueDate,
		task.UpdatedAt,
	).Scan(&task.ID)
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}

	return nil
}

func (r *PostgresTaskRepository) GetByID(ctx context.Context, id int64) (*models.Task, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, taskColumns, r.tables.Tasks)

	executor := GetExecutor(ctx, r.pool)
	task, err := scanTask(executor.QueryRow(ctx, query, id))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("task %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get task: %w", err)
	}

	return task, nil
}

func (r *PostgresTaskRepository) ListForUser(ctx context.Context, userID string) ([]models.Task, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE created_by = $1 OR assigned_to = $1
		ORDER BY updated_at DESC, id DESC
	`, taskColumns, r.tables.Tasks)

	return r.list(ctx, query, userID)
}

func (r *PostgresTaskRepository) ListByProject(ctx context.Context, projectID int64) ([]models.Task, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE project_id = $1
		ORDER BY created_at, id
	`, taskColumns, r.tables.Tasks)

	return r.list(ctx, query, projectID)
}

func (r *PostgresTaskRepository) list(ctx context.Context, query string, arg any) ([]models.Task, error) {
	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}

	return tasks, nil
}

func (r *PostgresTaskRepository) Update(ctx context.Context, task *models.Task) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET title = $1, description = $2, due_date = $3, updated_at = $4
		WHERE id = $5
	`, r.tables.Tasks)

	return r.exec(ctx, task.ID, query, task.Title, task.Description, task.DueDate, task.UpdatedAt, task.ID)
}

func (r *PostgresTaskRepository) UpdateStatus(ctx context.Context, id int64, status models.TaskStatus) error {
	query := fmt.Sprintf(`UPDATE %s SET status = $1, updated_at = $2 WHERE id = $3`, r.tables.Tasks)

	return r.exec(ctx, id, query, string(status), time.Now().UTC(), id)
}

func (r *PostgresTaskRepository) Assign(ctx context.Context, id int64, userID string) error {
	query := fmt.Sprintf(`UPDATE %s SET assigned_to = $1, updated_at = $2 WHERE id = $3`, r.tables.Tasks)

	return r.exec(ctx, id, query, userID, time.Now().UTC(), id)
}

func (r *PostgresTaskRepository) Delete(ctx context.Context, id int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Tasks)

	return r.exec(ctx, id, query, id)
}

// exec runs a single-row mutation, mapping zero affected rows to ErrNotFound
func (r *PostgresTaskRepository) exec(ctx context.Context, id int64, query string, args ...any) error {
	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("write task %d: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("task %d: %w", id, domain.ErrNotFound)
	}

	return nil
}

func scanTask(row pgx.Row) (*models.Task, error) {
	var task models.Task
	var status string
	err := row.Scan(
		&task.ID,
		&task.ProjectID,
		&task.Title,
		&task.Description,
		&status,
		&task.AssignedTo,
		&task.CreatedBy,
		&task.CreatedAt,
		&task.DueDate,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	task.Status = models.TaskStatus(status)
	return &task, nil
}
