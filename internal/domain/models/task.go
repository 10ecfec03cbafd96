package models

import "time"

type Task struct {
	ID          int64      `json:"taskId"`
	ProjectID   int64      `json:"projectId"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	Status      TaskStatus `json:"status"`
	AssignedTo  *string    `json:"assignedTo,omitempty"`
	CreatedBy   string     `json:"createdBy"`
	CreatedAt   time.Time  `json:"creationDate"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	UpdatedAt   time.Time  `json:"lastModifiedDate"`
}

// TaskView is a task decorated with display names resolved from the
// identity service. Names are empty when the lookup fails.
type TaskView struct {
	Task
	AssignedToName string `json:"assignedToName,omitempty"`
	CreatedByName  string `json:"createdByName,omitempty"`
}
