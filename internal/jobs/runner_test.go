package jobs

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memoryJobStore is an in-memory JobStore for exercising the runner.
type memoryJobStore struct {
	mu       sync.Mutex
	saved    []Job
	statuses map[uuid.UUID][]JobStatus
	pending  []Job
	saveErr  error
}

func newMemoryJobStore() *memoryJobStore {
	return &memoryJobStore{statuses: make(map[uuid.UUID][]JobStatus)}
}

func (m *memoryJobStore) SaveJob(ctx context.Context, job Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, job)
	return nil
}

func (m *memoryJobStore) UpdateJobStatus(ctx context.Context, jobID uuid.UUID, status JobStatus, errorMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses[jobID] = append(m.statuses[jobID], status)
	return nil
}

func (m *memoryJobStore) GetPendingJobs(ctx context.Context) ([]Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Job(nil), m.pending...), nil
}

func (m *memoryJobStore) GetProcessingJobs(ctx context.Context, olderThan time.Duration) ([]Job, error) {
	return nil, nil
}

func (m *memoryJobStore) WithTx(tx *sql.Tx) JobStore { return m }

func (m *memoryJobStore) statusHistory(jobID uuid.UUID) []JobStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]JobStatus(nil), m.statuses[jobID]...)
}

// funcJob is a trivial Job whose Execute runs a closure.
type funcJob struct {
	id  uuid.UUID
	fn  func(ctx context.Context) error
	ran chan struct{}
}

func newFuncJob(fn func(ctx context.Context) error) *funcJob {
	return &funcJob{id: uuid.New(), fn: fn, ran: make(chan struct{})}
}

func (j *funcJob) ID() uuid.UUID    { return j.id }
func (j *funcJob) Type() string     { return "test_job" }
func (j *funcJob) Payload() []byte  { return []byte(`{}`) }
func (j *funcJob) Status() JobStatus { return JobStatusPending }

func (j *funcJob) Execute(ctx context.Context) error {
	defer close(j.ran)
	if j.fn != nil {
		return j.fn(ctx)
	}
	return nil
}

func newTestRunner(store JobStore) *Runner {
	return NewRunner(store, RunnerConfig{
		WorkerCount:           1,
		QueueSize:             8,
		StuckJobAge:           time.Minute,
		StuckJobCheckInterval: time.Hour,
	}, testLogger())
}

func TestRunnerExecutesSubmittedJob(t *testing.T) {
	store := newMemoryJobStore()
	runner := newTestRunner(store)
	require.NoError(t, runner.Start())
	defer runner.Stop()

	job := newFuncJob(nil)
	require.NoError(t, runner.Submit(context.Background(), job))

	select {
	case <-job.ran:
	case <-time.After(2 * time.Second):
		t.Fatal("job never executed")
	}

	require.Eventually(t, func() bool {
		history := store.statusHistory(job.id)
		return len(history) == 2 && history[1] == JobStatusCompleted
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, JobStatusProcessing, store.statusHistory(job.id)[0])
}

func TestRunnerMarksFailedJob(t *testing.T) {
	store := newMemoryJobStore()
	runner := newTestRunner(store)

	var handlerErr error
	var handlerMu sync.Mutex
	runner.SetErrorHandler(func(job Job, err error) {
		handlerMu.Lock()
		handlerErr = err
		handlerMu.Unlock()
	})

	require.NoError(t, runner.Start())
	defer runner.Stop()

	job := newFuncJob(func(ctx context.Context) error {
		return errors.New("smtp unreachable")
	})
	require.NoError(t, runner.Submit(context.Background(), job))

	require.Eventually(t, func() bool {
		history := store.statusHistory(job.id)
		return len(history) == 2 && history[1] == JobStatusFailed
	}, 2*time.Second, 10*time.Millisecond)

	handlerMu.Lock()
	defer handlerMu.Unlock()
	assert.EqualError(t, handlerErr, "smtp unreachable")
}

func TestSubmitFailsWhenSaveFails(t *testing.T) {
	store := newMemoryJobStore()
	store.saveErr = errors.New("database down")
	runner := newTestRunner(store)

	err := runner.Submit(context.Background(), newFuncJob(nil))
	assert.ErrorContains(t, err, "failed to save job")
}

func TestSubmitFailsWhenQueueFull(t *testing.T) {
	store := newMemoryJobStore()
	// Runner not started: nothing drains the queue.
	runner := NewRunner(store, RunnerConfig{
		WorkerCount: 1,
		QueueSize:   1,
		StuckJobAge: time.Minute,
	}, testLogger())

	require.NoError(t, runner.Submit(context.Background(), newFuncJob(nil)))
	err := runner.Submit(context.Background(), newFuncJob(nil))
	assert.ErrorContains(t, err, "queue is full")
}

func TestRunnerRecoversPendingJobs(t *testing.T) {
	store := newMemoryJobStore()
	job := newFuncJob(nil)
	store.pending = []Job{job}

	runner := newTestRunner(store)
	require.NoError(t, runner.Start())
	defer runner.Stop()

	select {
	case <-job.ran:
	case <-time.After(2 * time.Second):
		t.Fatal("recovered job never executed")
	}
}
