package models

import "time"

type Project struct {
	ID          int64     `json:"projectId"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	CreatedBy   string    `json:"createdBy"`
	CreatedAt   time.Time `json:"creationDate"`
	UpdatedAt   time.Time `json:"lastModifiedDate"`
}

// ProjectMember is a membership row: the sole source of authorization
// truth for project-scoped operations. (ProjectID, UserID) is unique.
type ProjectMember struct {
	ProjectID int64  `json:"projectId"`
	UserID    string `json:"userId"`
	Role      Role   `json:"roleId"`
}

// MemberView is a membership row as returned to clients.
type MemberView struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	RoleID   Role   `json:"roleId"`
	RoleName string `json:"roleName"`
}

// UnknownUsername is shown when the identity service cannot resolve a user.
const UnknownUsername = "Unknown User"

// ProjectDetail is a project together with its members.
type ProjectDetail struct {
	Project
	Members []MemberView `json:"members"`
}
