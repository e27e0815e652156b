package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskhive/internal/domain"
	"github.com/phrazzld/taskhive/internal/events"
	"github.com/phrazzld/taskhive/internal/realtime"
	"github.com/phrazzld/taskhive/internal/store"
)

// fakeTaskStore is an in-memory TaskStore for service tests.
type fakeTaskStore struct {
	store.TaskStore
	mu    sync.Mutex
	tasks map[uuid.UUID]*domain.Task
}

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{tasks: make(map[uuid.UUID]*domain.Task)}
}

func (f *fakeTaskStore) Create(ctx context.Context, task *domain.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *task
	f.tasks[task.ID] = &copied
	return nil
}

func (f *fakeTaskStore) GetForCompany(ctx context.Context, id, companyID uuid.UUID) (*domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	task, ok := f.tasks[id]
	if !ok || task.CompanyID != companyID {
		return nil, store.ErrTaskNotFound
	}
	copied := *task
	return &copied, nil
}

func (f *fakeTaskStore) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]*domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Task
	for _, task := range f.tasks {
		if task.CompanyID == companyID {
			copied := *task
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeTaskStore) ListByAssignee(ctx context.Context, companyID, userID uuid.UUID) ([]*domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Task
	for _, task := range f.tasks {
		if task.CompanyID == companyID && task.AssignedToID == userID {
			copied := *task
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeTaskStore) Update(ctx context.Context, task *domain.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tasks[task.ID]; !ok {
		return store.ErrTaskNotFound
	}
	copied := *task
	f.tasks[task.ID] = &copied
	return nil
}

func (f *fakeTaskStore) Delete(ctx context.Context, id, companyID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	task, ok := f.tasks[id]
	if !ok || task.CompanyID != companyID {
		return store.ErrTaskNotFound
	}
	delete(f.tasks, id)
	return nil
}

type fakeUserStore struct {
	store.UserStore
	users map[uuid.UUID]*domain.User
}

func (f *fakeUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if user, ok := f.users[id]; ok {
		return user, nil
	}
	return nil, store.ErrUserNotFound
}

func (f *fakeUserStore) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]*domain.User, error) {
	var out []*domain.User
	for _, user := range f.users {
		if user.CompanyID != nil && *user.CompanyID == companyID {
			out = append(out, user)
		}
	}
	return out, nil
}

// recordingPublisher captures post-commit broadcast calls.
type recordingPublisher struct {
	mu    sync.Mutex
	calls []publishedEvent
}

type publishedEvent struct {
	eventType realtime.EventType
	companyID uuid.UUID
	taskTitle string
	snapshot  interface{}
}

func (p *recordingPublisher) TaskCommitted(
	ctx context.Context,
	eventType realtime.EventType,
	companyID uuid.UUID,
	taskTitle string,
	snapshot interface{},
) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, publishedEvent{eventType, companyID, taskTitle, snapshot})
}

func (p *recordingPublisher) published() []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]publishedEvent(nil), p.calls...)
}

// recordingEmitter captures emitted domain events.
type recordingEmitter struct {
	mu     sync.Mutex
	events []*events.Event
}

func (e *recordingEmitter) EmitEvent(ctx context.Context, event *events.Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, event)
	return nil
}

func (e *recordingEmitter) emitted() []*events.Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*events.Event(nil), e.events...)
}

type serviceFixture struct {
	service   *TaskService
	taskStore *fakeTaskStore
	publisher *recordingPublisher
	emitter   *recordingEmitter
	companyID uuid.UUID
	actor     *domain.User
	assignee  *domain.User
	outsider  *domain.User
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	companyID := uuid.New()
	otherCompanyID := uuid.New()

	actor := &domain.User{ID: uuid.New(), Username: "alice", Email: "alice@acme.test", CompanyID: &companyID}
	assignee := &domain.User{ID: uuid.New(), Username: "bob", Email: "bob@acme.test", CompanyID: &companyID}
	outsider := &domain.User{ID: uuid.New(), Username: "mallory", Email: "m@globex.test", CompanyID: &otherCompanyID}

	taskStore := newFakeTaskStore()
	userStore := &fakeUserStore{users: map[uuid.UUID]*domain.User{
		actor.ID:    actor,
		assignee.ID: assignee,
		outsider.ID: outsider,
	}}
	publisher := &recordingPublisher{}
	emitter := &recordingEmitter{}

	return &serviceFixture{
		service:   NewTaskService(taskStore, userStore, publisher, emitter),
		taskStore: taskStore,
		publisher: publisher,
		emitter:   emitter,
		companyID: companyID,
		actor:     actor,
		assignee:  assignee,
		outsider:  outsider,
	}
}

func (f *serviceFixture) createTask(t *testing.T, title string) *TaskDetail {
	t.Helper()

	detail, err := f.service.Create(context.Background(), f.actor.ID, f.companyID, CreateTaskInput{
		Title:      title,
		Status:     domain.TaskStatusTodo,
		AssignedTo: f.assignee.ID,
	})
	require.NoError(t, err)
	return detail
}

func TestCreateTaskPersistsAndResolvesDetails(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	detail := f.createTask(t, "Fix bug")

	assert.Equal(t, "Fix bug", detail.Title)
	assert.Equal(t, domain.TaskStatusTodo, detail.Status)
	assert.Equal(t, f.companyID, detail.Company)
	require.NotNil(t, detail.AssignedToDetail)
	assert.Equal(t, "bob", detail.AssignedToDetail.Username)
	require.NotNil(t, detail.CreatedByDetail)
	assert.Equal(t, "alice", detail.CreatedByDetail.Username)
}

func TestCreateTaskFiresBothSideEffects(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	detail := f.createTask(t, "Fix bug")

	published := f.publisher.published()
	require.Len(t, published, 1)
	assert.Equal(t, realtime.EventTaskCreated, published[0].eventType)
	assert.Equal(t, f.companyID, published[0].companyID)
	assert.Equal(t, "Fix bug", published[0].taskTitle)
	assert.Equal(t, detail, published[0].snapshot)

	emitted := f.emitter.emitted()
	require.Len(t, emitted, 1)
	assert.Equal(t, events.EventTaskAssigned, emitted[0].Type)

	var payload events.TaskAssignedPayload
	require.NoError(t, emitted[0].UnmarshalPayload(&payload))
	assert.Equal(t, detail.ID, payload.TaskID)
	assert.Equal(t, f.assignee.ID, payload.RecipientID)
}

func TestCreateTaskRejectsCrossCompanyAssignee(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)

	_, err := f.service.Create(context.Background(), f.actor.ID, f.companyID, CreateTaskInput{
		Title:      "Sabotage",
		AssignedTo: f.outsider.ID,
	})
	assert.ErrorIs(t, err, ErrCrossCompanyAssignment)
	assert.Empty(t, f.publisher.published())
	assert.Empty(t, f.emitter.emitted())
}

func TestCreateTaskRejectsUnknownAssignee(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)

	_, err := f.service.Create(context.Background(), f.actor.ID, f.companyID, CreateTaskInput{
		Title:      "Orphan",
		AssignedTo: uuid.New(),
	})
	assert.ErrorIs(t, err, ErrAssigneeNotFound)
}

func TestCreateTaskRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)

	_, err := f.service.Create(context.Background(), f.actor.ID, f.companyID, CreateTaskInput{
		Title:      "",
		AssignedTo: f.assignee.ID,
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCreateTaskWithoutSideEffectDependencies(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	bare := NewTaskService(f.taskStore, &fakeUserStore{users: map[uuid.UUID]*domain.User{
		f.actor.ID:    f.actor,
		f.assignee.ID: f.assignee,
	}}, nil, nil)

	_, err := bare.Create(context.Background(), f.actor.ID, f.companyID, CreateTaskInput{
		Title:      "No listeners",
		AssignedTo: f.assignee.ID,
	})
	assert.NoError(t, err)
}

func TestUpdateTaskBroadcastsButDoesNotNotify(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	created := f.createTask(t, "Fix bug")

	status := domain.TaskStatusDone
	detail, err := f.service.Update(context.Background(), created.ID, f.companyID, UpdateTaskInput{
		Status: &status,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusDone, detail.Status)

	published := f.publisher.published()
	require.Len(t, published, 2)
	assert.Equal(t, realtime.EventTaskUpdated, published[1].eventType)
	assert.Equal(t, "Fix bug", published[1].taskTitle)

	// Only the create emitted a notification event.
	assert.Len(t, f.emitter.emitted(), 1)
}

func TestUpdateTaskNotFound(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)

	status := domain.TaskStatusDone
	_, err := f.service.Update(context.Background(), uuid.New(), f.companyID, UpdateTaskInput{
		Status: &status,
	})
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestUpdateTaskInvisibleAcrossCompanies(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	created := f.createTask(t, "Fix bug")

	title := "Stolen"
	_, err := f.service.Update(context.Background(), created.ID, uuid.New(), UpdateTaskInput{
		Title: &title,
	})
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestGetTaskScopedToCompany(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	created := f.createTask(t, "Fix bug")

	detail, err := f.service.Get(context.Background(), created.ID, f.companyID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, detail.ID)

	_, err = f.service.Get(context.Background(), created.ID, uuid.New())
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestMyTasksFiltersByAssignee(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	f.createTask(t, "For bob")

	// A task assigned to the actor instead of bob.
	_, err := f.service.Create(context.Background(), f.actor.ID, f.companyID, CreateTaskInput{
		Title:      "For alice",
		AssignedTo: f.actor.ID,
	})
	require.NoError(t, err)

	mine, err := f.service.MyTasks(context.Background(), f.assignee.ID, f.companyID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "For bob", mine[0].Title)
}

func TestDeleteTaskDoesNotBroadcast(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	created := f.createTask(t, "Fix bug")
	before := len(f.publisher.published())

	require.NoError(t, f.service.Delete(context.Background(), created.ID, f.companyID))
	assert.Len(t, f.publisher.published(), before)

	_, err := f.service.Get(context.Background(), created.ID, f.companyID)
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestDeleteTaskNotFound(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	err := f.service.Delete(context.Background(), uuid.New(), f.companyID)
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestStatisticsAggregatesByStatusAndUser(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	f.createTask(t, "One")
	f.createTask(t, "Two")

	_, err := f.service.Create(context.Background(), f.actor.ID, f.companyID, CreateTaskInput{
		Title:      "Three",
		Status:     domain.TaskStatusDone,
		AssignedTo: f.actor.ID,
	})
	require.NoError(t, err)

	stats, err := f.service.Statistics(context.Background(), f.companyID)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.TotalTasks)
	assert.Equal(t, map[string]int{"todo": 2, "done": 1}, stats.ByStatus)
	assert.Equal(t, map[string]int{"bob": 2, "alice": 1}, stats.ByUser)
}

func TestStatisticsEmptyCompany(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)

	stats, err := f.service.Statistics(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalTasks)
	assert.Empty(t, stats.ByStatus)
	assert.Empty(t, stats.ByUser)
}

func TestUpdateTaskReassignmentValidatedAgainstCompany(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	created := f.createTask(t, "Fix bug")

	_, err := f.service.Update(context.Background(), created.ID, f.companyID, UpdateTaskInput{
		AssignedTo: &f.outsider.ID,
	})
	assert.ErrorIs(t, err, ErrCrossCompanyAssignment)

	// Reassignment within the company sticks.
	detail, err := f.service.Update(context.Background(), created.ID, f.companyID, UpdateTaskInput{
		AssignedTo: &f.actor.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, f.actor.ID, detail.AssignedTo)
	assert.WithinDuration(t, time.Now().UTC(), detail.UpdatedAt, 5*time.Second)
}
