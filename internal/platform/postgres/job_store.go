package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskhive/internal/jobs"
	"github.com/phrazzld/taskhive/internal/platform/logger"
	"github.com/phrazzld/taskhive/internal/store"
)

// PostgresJobStore implements the jobs.JobStore interface using PostgreSQL.
// Recovered rows are turned back into executable jobs through the
// reconstructor supplied at construction time.
type PostgresJobStore struct {
	db            store.DBTX
	reconstructor jobs.Reconstructor
}

// Ensure PostgresJobStore implements jobs.JobStore interface
var _ jobs.JobStore = (*PostgresJobStore)(nil)

// NewPostgresJobStore creates a new PostgresJobStore.
func NewPostgresJobStore(db store.DBTX, reconstructor jobs.Reconstructor) *PostgresJobStore {
	return &PostgresJobStore{
		db:            db,
		reconstructor: reconstructor,
	}
}

// WithTx returns a new JobStore instance that uses the provided transaction.
func (s *PostgresJobStore) WithTx(tx *sql.Tx) jobs.JobStore {
	return &PostgresJobStore{
		db:            tx,
		reconstructor: s.reconstructor,
	}
}

// SaveJob persists a job to the database
func (s *PostgresJobStore) SaveJob(ctx context.Context, job jobs.Job) error {
	log := logger.FromContext(ctx)

	query := `
		INSERT INTO jobs (id, type, payload, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx, query,
		job.ID(),
		job.Type(),
		job.Payload(),
		job.Status(),
		now,
		now,
	)
	if err != nil {
		log.Error("failed to save job",
			"job_id", job.ID(),
			"job_type", job.Type(),
			"error", err)
		return fmt.Errorf("failed to save job to database: %w", MapError(err))
	}

	return nil
}

// UpdateJobStatus updates the status of a job in the database
func (s *PostgresJobStore) UpdateJobStatus(
	ctx context.Context,
	jobID uuid.UUID,
	status jobs.JobStatus,
	errorMsg string,
) error {
	log := logger.FromContext(ctx)

	query := `
		UPDATE jobs
		SET status = $1, error_message = $2, updated_at = $3
		WHERE id = $4
	`

	result, err := s.db.ExecContext(ctx, query, status, errorMsg, time.Now().UTC(), jobID)
	if err != nil {
		log.Error("failed to update job status",
			"job_id", jobID,
			"status", status,
			"error", err)
		return fmt.Errorf("failed to update job status: %w", MapError(err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		// Job not found, treat as no-op
		log.Warn("no job found with ID to update status", "job_id", jobID)
	}

	return nil
}

// GetPendingJobs retrieves all jobs with "pending" status
func (s *PostgresJobStore) GetPendingJobs(ctx context.Context) ([]jobs.Job, error) {
	return s.getJobsByStatus(ctx, jobs.JobStatusPending, 0)
}

// GetProcessingJobs retrieves jobs with "processing" status
func (s *PostgresJobStore) GetProcessingJobs(ctx context.Context, olderThan time.Duration) ([]jobs.Job, error) {
	return s.getJobsByStatus(ctx, jobs.JobStatusProcessing, olderThan)
}

func (s *PostgresJobStore) getJobsByStatus(
	ctx context.Context,
	status jobs.JobStatus,
	olderThan time.Duration,
) ([]jobs.Job, error) {
	log := logger.FromContext(ctx)

	var query string
	var args []any

	if olderThan > 0 {
		query = `
			SELECT id, type, payload, status
			FROM jobs
			WHERE status = $1 AND updated_at < $2
			ORDER BY created_at ASC
		`
		args = []any{status, time.Now().UTC().Add(-olderThan)}
	} else {
		query = `
			SELECT id, type, payload, status
			FROM jobs
			WHERE status = $1
			ORDER BY created_at ASC
		`
		args = []any{status}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query jobs by status: %w", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var recovered []jobs.Job
	for rows.Next() {
		var (
			id        uuid.UUID
			jobType   string
			payload   []byte
			jobStatus jobs.JobStatus
		)
		if err := rows.Scan(&id, &jobType, &payload, &jobStatus); err != nil {
			return nil, fmt.Errorf("failed to scan job row: %w", err)
		}

		job, err := s.reconstructor.Reconstruct(id, jobType, payload, jobStatus)
		if err != nil {
			// A job we cannot rebuild is unrunnable; mark it failed so it
			// doesn't come back on every recovery pass.
			log.Error("failed to reconstruct job, marking failed",
				"job_id", id,
				"job_type", jobType,
				"error", err)
			if updateErr := s.UpdateJobStatus(ctx, id, jobs.JobStatusFailed, err.Error()); updateErr != nil {
				log.Error("failed to mark unreconstructable job failed",
					"job_id", id,
					"error", updateErr)
			}
			continue
		}

		recovered = append(recovered, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating job rows: %w", err)
	}

	return recovered, nil
}
