package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Company validation errors
var (
	ErrEmptyCompanyID   = errors.New("company ID cannot be empty")
	ErrEmptyCompanyName = errors.New("company name cannot be empty")
	ErrCompanyNameTooLong = errors.New("company name must be at most 100 characters long")
)

// Company represents a tenant of the task tracker. Every user belongs to at
// most one company, and tasks are always scoped to exactly one company.
// The company is the unit of isolation for task visibility and for
// real-time update broadcasts.
type Company struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewCompany creates a new Company with the given name and description.
// It generates a new UUID for the company ID and sets the creation/update
// timestamps. Returns an error if validation fails.
func NewCompany(name, description string) (*Company, error) {
	company := &Company{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}

	if err := company.Validate(); err != nil {
		return nil, err
	}

	return company, nil
}

// Validate checks if the Company has valid data.
// Returns an error if any field fails validation.
func (c *Company) Validate() error {
	if c.ID == uuid.Nil {
		return ErrEmptyCompanyID
	}

	if c.Name == "" {
		return ErrEmptyCompanyName
	}

	if len(c.Name) > 100 {
		return ErrCompanyNameTooLong
	}

	return nil
}
