package types

import "time"

// Task status values. A task is "open" while it is pending or in progress.
const (
	TaskStatusPending    = "PENDING"
	TaskStatusInProgress = "IN_PROGRESS"
	TaskStatusCompleted  = "COMPLETED"
)

// ValidTaskStatus reports whether status is one of the known task statuses.
func ValidTaskStatus(status string) bool {
	switch status {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted:
		return true
	}
	return false
}

// Task represents a personal to-do item owned by a single user.
type Task struct {
	// ID is the unique identifier of the task.
	ID int `json:"id" db:"id"`

	// Title is the short summary of the task. At most one open task
	// per (owner, title) pair may exist at a time.
	Title string `json:"title" db:"title"`

	// Description is an optional longer explanation of the task.
	Description string `json:"description,omitempty" db:"description"`

	// Status is the lifecycle state of the task. New tasks default
	// to "PENDING".
	Status string `json:"status" db:"status"`

	// DueDate is an optional deadline for the task.
	DueDate *time.Time `json:"due_date,omitempty" db:"due_date"`

	// CreatedBy is the id of the owning user. It never changes after
	// creation.
	CreatedBy int `json:"created_by" db:"created_by"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Open reports whether the task is still pending or in progress.
func (t Task) Open() bool {
	return t.Status == TaskStatusPending || t.Status == TaskStatusInProgress
}
