// Package postgres provides PostgreSQL implementations of the persistence
// interfaces defined in internal/store and internal/jobs, using database/sql
// with the pgx stdlib driver. Database errors are mapped to store sentinels
// via MapError so callers never depend on driver-specific error types.
package postgres
