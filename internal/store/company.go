package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/taskhive/internal/domain"
)

// CompanyStore defines the interface for company (tenant) data persistence.
type CompanyStore interface {
	// Create saves a new company to the store.
	// Returns ErrCompanyExists if the name is already taken.
	Create(ctx context.Context, company *domain.Company) error

	// GetByID retrieves a company by its unique ID.
	// Returns ErrCompanyNotFound if the company does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Company, error)

	// GetByName retrieves a company by its unique name.
	// Returns ErrCompanyNotFound if the company does not exist.
	GetByName(ctx context.Context, name string) (*domain.Company, error)

	// GetOrCreate returns the company with the given name, creating it if
	// it does not exist. Used by registration when a new user names a
	// company that may or may not already be present.
	GetOrCreate(ctx context.Context, name string) (*domain.Company, error)

	// List returns all companies in the store. Used by the analytics CLI.
	List(ctx context.Context) ([]*domain.Company, error)

	// WithTx returns a new CompanyStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller.
	WithTx(tx *sql.Tx) CompanyStore
}
