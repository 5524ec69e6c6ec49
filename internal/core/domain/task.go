package domain

import "time"

// TaskStatus is the completion state of a task.
type TaskStatus string

const (
	StatusPending  TaskStatus = "pending"
	StatusComplete TaskStatus = "complete"
)

// Valid reports whether s is an accepted status.
func (s TaskStatus) Valid() bool {
	return s == StatusPending || s == StatusComplete
}

// Priority ranks a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is an accepted priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task is the persisted unit of work. AssignedTo and CreatedBy hold user IDs.
// AssignedTo never references an admin account.
type Task struct {
	ID         string
	Title      string
	AssignedTo string
	CreatedBy  string
	Priority   Priority
	Status     TaskStatus
	DueDate    *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TaskDetail is a task with its assignee and creator populated.
type TaskDetail struct {
	ID         string       `json:"_id"`
	Title      string       `json:"title"`
	AssignedTo *UserSummary `json:"assignedTo"`
	CreatedBy  *UserSummary `json:"createdBy"`
	Priority   Priority     `json:"priority"`
	Status     TaskStatus   `json:"status"`
	DueDate    *time.Time   `json:"dueDate"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
}
