package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/taskhive/internal/domain"
)

// TaskStore defines the interface for task data persistence.
// All read paths used by the API are company-scoped: a task is only ever
// visible through the company it belongs to.
type TaskStore interface {
	// Create saves a new task to the store.
	// Returns validation errors from the domain Task if data is invalid.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by ID without company scoping. Used by
	// trusted internal paths (background jobs); the API always goes
	// through GetForCompany.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// GetForCompany retrieves a task by ID, constrained to the given
	// company. Returns ErrTaskNotFound if the task does not exist or
	// belongs to a different company.
	GetForCompany(ctx context.Context, id, companyID uuid.UUID) (*domain.Task, error)

	// ListByCompany returns all tasks for the given company, newest first.
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]*domain.Task, error)

	// ListByAssignee returns tasks for the given company assigned to the
	// given user, newest first.
	ListByAssignee(ctx context.Context, companyID, userID uuid.UUID) ([]*domain.Task, error)

	// List returns all tasks in the store, newest first. Used by the
	// analytics CLI, never by the tenant-scoped API.
	List(ctx context.Context) ([]*domain.Task, error)

	// Update modifies an existing task.
	// Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes a task by ID, constrained to the given company.
	// Returns ErrTaskNotFound if the task does not exist or belongs to a
	// different company.
	Delete(ctx context.Context, id, companyID uuid.UUID) error

	// WithTx returns a new TaskStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller.
	WithTx(tx *sql.Tx) TaskStore
}
