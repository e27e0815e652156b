package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Task validation errors
var (
	ErrEmptyTaskID       = errors.New("task ID cannot be empty")
	ErrEmptyTaskTitle    = errors.New("task title cannot be empty")
	ErrTaskTitleTooLong  = errors.New("task title must be at most 200 characters long")
	ErrInvalidTaskStatus = errors.New("invalid task status")
	ErrEmptyAssignee     = errors.New("task assignee cannot be empty")
	ErrEmptyCreator      = errors.New("task creator cannot be empty")
	ErrTaskWithoutCompany = errors.New("task must belong to a company")
)

// TaskStatus represents the workflow state of a task.
type TaskStatus string

// Valid task statuses.
const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

// IsValid reports whether s is one of the defined task statuses.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone, TaskStatusCancelled:
		return true
	}
	return false
}

// Display returns the human-readable label for the status, used in
// notification messages.
func (s TaskStatus) Display() string {
	switch s {
	case TaskStatusTodo:
		return "To Do"
	case TaskStatusInProgress:
		return "In Progress"
	case TaskStatusDone:
		return "Done"
	case TaskStatusCancelled:
		return "Cancelled"
	}
	return string(s)
}

// Task represents a unit of work tracked by a company. Tasks are always
// scoped to the company of their assignee: cross-company assignment is
// rejected at the service layer, and queries are always filtered by company.
type Task struct {
	ID           uuid.UUID  `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Status       TaskStatus `json:"status"`
	AssignedToID uuid.UUID  `json:"assigned_to"`
	CreatedByID  uuid.UUID  `json:"created_by"`
	CompanyID    uuid.UUID  `json:"company"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// NewTask creates a new Task with the given attributes. An empty status
// defaults to "todo". Returns an error if validation fails.
func NewTask(title, description string, status TaskStatus, assignedTo, createdBy, companyID uuid.UUID) (*Task, error) {
	if status == "" {
		status = TaskStatusTodo
	}

	task := &Task{
		ID:           uuid.New(),
		Title:        title,
		Description:  description,
		Status:       status,
		AssignedToID: assignedTo,
		CreatedByID:  createdBy,
		CompanyID:    companyID,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTaskID
	}

	if t.Title == "" {
		return ErrEmptyTaskTitle
	}

	if len(t.Title) > 200 {
		return ErrTaskTitleTooLong
	}

	if !t.Status.IsValid() {
		return ErrInvalidTaskStatus
	}

	if t.AssignedToID == uuid.Nil {
		return ErrEmptyAssignee
	}

	if t.CreatedByID == uuid.Nil {
		return ErrEmptyCreator
	}

	if t.CompanyID == uuid.Nil {
		return ErrTaskWithoutCompany
	}

	return nil
}
