package services

import (
	"context"
	"fmt"

	"taskhub/internal/domain"
	"taskhub/internal/domain/models"
)

// Verdict is the outcome of an authorization check. The zero value is
// VerdictDenied so an unset verdict never grants anything.
type Verdict int

const (
	VerdictDenied Verdict = iota
	VerdictGranted
	// VerdictUnavailable means the check could not be evaluated (transport
	// error, timeout, unexpected status). Callers treat it as a denial.
	VerdictUnavailable
)

func (v Verdict) String() string {
	switch v {
	case VerdictGranted:
		return "granted"
	case VerdictUnavailable:
		return "unavailable"
	default:
		return "denied"
	}
}

// Allowed reports whether the verdict permits the operation.
func (v Verdict) Allowed() bool {
	return v == VerdictGranted
}

// ProjectAuthorizer answers project-scoped authorization questions. The
// task service uses a remote implementation that relays the caller's token
// to the project service; the project service answers from its own store.
type ProjectAuthorizer interface {
	ProjectExists(ctx context.Context, projectID int64) Verdict

	// UserHasAccess is granted when any membership row exists.
	UserHasAccess(ctx context.Context, userID string, projectID int64) Verdict

	// UserHasRole is granted when the user's role is an element of allowed.
	UserHasRole(ctx context.Context, userID string, projectID int64, allowed models.RoleSet) Verdict

	// IsProjectMember validates assignment targets.
	IsProjectMember(ctx context.Context, userID string, projectID int64) Verdict
}

// UserDirectory resolves users owned by the identity service.
type UserDirectory interface {
	UserExists(ctx context.Context, userID string) Verdict

	// Username returns the display name, or "" and false when it cannot be resolved.
	Username(ctx context.Context, userID string) (string, bool)

	// UserIDByUsername returns the id for a username with VerdictGranted,
	// or "" with VerdictDenied/VerdictUnavailable.
	UserIDByUsername(ctx context.Context, username string) (string, Verdict)
}

// Guard converts a verdict into the error returned by a mutation guard.
// Denied and Unavailable both yield ErrForbidden.
func Guard(v Verdict, action string) error {
	if v.Allowed() {
		return nil
	}
	return &domain.ForbiddenError{Message: fmt.Sprintf("not permitted to %s", action)}
}

// Guarded mutations. Each names an entry in the access policy; reads
// only require a membership row.
const (
	OpProjectUpdate = "project.update"
	OpProjectDelete = "project.delete"
	OpMemberAdd     = "member.add"
	OpMemberUpdate  = "member.update"
	OpMemberRemove  = "member.remove"
	OpTaskCreate    = "task.create"
	OpTaskUpdate    = "task.update"
	OpTaskStatus    = "task.status"
	OpTaskAssign    = "task.assign"
	OpTaskDelete    = "task.delete"
)

// GuardedOperations lists every operation the access policy must define.
var GuardedOperations = []string{
	OpProjectUpdate, OpProjectDelete,
	OpMemberAdd, OpMemberUpdate, OpMemberRemove,
	OpTaskCreate, OpTaskUpdate, OpTaskStatus, OpTaskAssign, OpTaskDelete,
}

// AccessPolicy returns the explicit allowed-role set for an operation.
type AccessPolicy interface {
	Allowed(operation string) models.RoleSet
}
