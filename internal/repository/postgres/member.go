package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"taskhub/internal/domain"
	"taskhub/internal/domain/models"
	"taskhub/internal/domain/repositories"
)

// PostgresMemberRepository implements the MemberRepository interface
type PostgresMemberRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewMemberRepository creates a new membership repository
func NewMemberRepository(config *RepositoryConfig) repositories.MemberRepository {
	return &PostgresMemberRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Upsert is a single statement so two concurrent adds of the same user
// cannot both insert. xmax is 0 only for a freshly inserted tuple.
func (r *PostgresMemberRepository) Upsert(ctx context.Context, member *models.ProjectMember) (bool, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (project_id, user_id, role_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (project_id, user_id) DO UPDATE SET role_id = EXCLUDED.role_id
		RETURNING (xmax = 0) AS inserted
	`, r.tables.ProjectMembers)

	var inserted bool
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, member.ProjectID, member.UserID, int(member.Role)).Scan(&inserted)
	if err != nil {
		if IsPgForeignKeyError(err) {
			return false, fmt.Errorf("project %d: %w", member.ProjectID, domain.ErrNotFound)
		}
		if IsPgCheckError(err) {
			return false, &domain.ValidationError{
				Message: "invalid role",
				Fields:  map[string]string{"roleId": fmt.Sprintf("unknown role id %d", int(member.Role))},
			}
		}
		return false, fmt.Errorf("upsert member: %w", err)
	}

	return inserted, nil
}

// Get retrieves a single membership row
func (r *PostgresMemberRepository) Get(ctx context.Context, projectID int64, userID string) (*models.ProjectMember, error) {
	query := fmt.Sprintf(`
		SELECT project_id, user_id, role_id
		FROM %s
		WHERE project_id = $1 AND user_id = $2
	`, r.tables.ProjectMembers)

	var member models.ProjectMember
	var role int
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, projectID, userID).Scan(&member.ProjectID, &member.UserID, &role)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("member %s of project %d: %w", userID, projectID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get member: %w", err)
	}
	member.Role = models.Role(role)

	return &member, nil
}

// List retrieves all members of a project in role order
func (r *PostgresMemberRepository) List(ctx context.Context, projectID int64) ([]models.ProjectMember, error) {
	query := fmt.Sprintf(`
		SELECT project_id, user_id, role_id
		FROM %s
		WHERE project_id = $1
		ORDER BY role_id, user_id
	`, r.tables.ProjectMembers)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	members := []models.ProjectMember{}
	for rows.Next() {
		var member models.ProjectMember
		var role int
		if err := rows.Scan(&member.ProjectID, &member.UserID, &role); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		member.Role = models.Role(role)
		members = append(members, member)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate members: %w", err)
	}

	return members, nil
}

// UpdateRole changes the role of an existing member
func (r *PostgresMemberRepository) UpdateRole(ctx context.Context, projectID int64, userID string, role models.Role) error {
	query := fmt.Sprintf(`
		UPDATE %s SET role_id = $1
		WHERE project_id = $2 AND user_id = $3
	`, r.tables.ProjectMembers)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, int(role), projectID, userID)
	if err != nil {
		return fmt.Errorf("update member role: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("member %s of project %d: %w", userID, projectID, domain.ErrNotFound)
	}

	return nil
}

// Remove deletes a membership row
func (r *PostgresMemberRepository) Remove(ctx context.Context, projectID int64, userID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE project_id = $1 AND user_id = $2`, r.tables.ProjectMembers)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, projectID, userID)
	if err != nil {
		return fmt.Errorf("remove member: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("member %s of project %d: %w", userID, projectID, domain.ErrNotFound)
	}

	return nil
}

// RemoveAll deletes every membership of a project
func (r *PostgresMemberRepository) RemoveAll(ctx context.Context, projectID int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE project_id = $1`, r.tables.ProjectMembers)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, projectID); err != nil {
		return fmt.Errorf("remove members: %w", err)
	}

	return nil
}
