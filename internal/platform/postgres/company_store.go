package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/phrazzld/taskhive/internal/domain"
	"github.com/phrazzld/taskhive/internal/store"
)

// PostgresCompanyStore implements the store.CompanyStore interface
// using a PostgreSQL database as the storage backend.
type PostgresCompanyStore struct {
	db store.DBTX
}

// Ensure PostgresCompanyStore implements store.CompanyStore interface
var _ store.CompanyStore = (*PostgresCompanyStore)(nil)

// NewPostgresCompanyStore creates a new PostgreSQL implementation of the
// CompanyStore interface.
func NewPostgresCompanyStore(db store.DBTX) *PostgresCompanyStore {
	return &PostgresCompanyStore{db: db}
}

// WithTx returns a new CompanyStore instance that uses the provided transaction.
func (s *PostgresCompanyStore) WithTx(tx *sql.Tx) store.CompanyStore {
	return &PostgresCompanyStore{db: tx}
}

const companyColumns = `id, name, description, created_at, updated_at`

// Create implements store.CompanyStore.Create
func (s *PostgresCompanyStore) Create(ctx context.Context, company *domain.Company) error {
	if err := company.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO companies (` + companyColumns + `)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := s.db.ExecContext(ctx, query,
		company.ID,
		company.Name,
		company.Description,
		company.CreatedAt,
		company.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err, "companies_name_key") {
			return store.ErrCompanyExists
		}
		return MapError(err)
	}

	return nil
}

// GetByID implements store.CompanyStore.GetByID
func (s *PostgresCompanyStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE id = $1`
	return s.scanCompany(s.db.QueryRowContext(ctx, query, id))
}

// GetByName implements store.CompanyStore.GetByName
func (s *PostgresCompanyStore) GetByName(ctx context.Context, name string) (*domain.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE name = $1`
	return s.scanCompany(s.db.QueryRowContext(ctx, query, name))
}

// GetOrCreate implements store.CompanyStore.GetOrCreate.
// The insert races with concurrent registrations for the same name, so a
// unique violation falls back to reading the winner's row.
func (s *PostgresCompanyStore) GetOrCreate(ctx context.Context, name string) (*domain.Company, error) {
	existing, err := s.GetByName(ctx, name)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, store.ErrCompanyNotFound) {
		return nil, err
	}

	company, err := domain.NewCompany(name, "")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	if err := s.Create(ctx, company); err != nil {
		if errors.Is(err, store.ErrCompanyExists) {
			return s.GetByName(ctx, name)
		}
		return nil, err
	}

	return company, nil
}

// List implements store.CompanyStore.List
func (s *PostgresCompanyStore) List(ctx context.Context) ([]*domain.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies ORDER BY name ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var companies []*domain.Company
	for rows.Next() {
		var company domain.Company
		if err := rows.Scan(
			&company.ID,
			&company.Name,
			&company.Description,
			&company.CreatedAt,
			&company.UpdatedAt,
		); err != nil {
			return nil, MapError(err)
		}
		companies = append(companies, &company)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return companies, nil
}

func (s *PostgresCompanyStore) scanCompany(row *sql.Row) (*domain.Company, error) {
	var company domain.Company
	err := row.Scan(
		&company.ID,
		&company.Name,
		&company.Description,
		&company.CreatedAt,
		&company.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrCompanyNotFound
		}
		return nil, MapError(err)
	}
	return &company, nil
}
