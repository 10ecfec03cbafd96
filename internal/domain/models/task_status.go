package models

import (
	"encoding/json"
	"fmt"
)

// TaskStatus is the workflow state of a task. Any state may move to any
// other; only the set of states is closed.
type TaskStatus string

const (
	TaskStatusToDo       TaskStatus = "ToDo"
	TaskStatusInProgress TaskStatus = "InProgress"
	TaskStatusDone       TaskStatus = "Done"
)

// ParseTaskStatus returns the status named by s or an error for anything
// outside the enumeration. Matching is exact.
func ParseTaskStatus(s string) (TaskStatus, error) {
	switch TaskStatus(s) {
	case TaskStatusToDo, TaskStatusInProgress, TaskStatusDone:
		return TaskStatus(s), nil
	default:
		return "", fmt.Errorf("invalid task status %q", s)
	}
}

// UnmarshalJSON rejects unknown statuses while decoding so that invalid
// input never reaches the service layer.
func (s *TaskStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("task status must be a string: %w", err)
	}
	parsed, err := ParseTaskStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
