package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/phrazzld/taskhive/internal/domain"
	"github.com/phrazzld/taskhive/internal/events"
	"github.com/phrazzld/taskhive/internal/platform/logger"
	"github.com/phrazzld/taskhive/internal/realtime"
	"github.com/phrazzld/taskhive/internal/store"
)

// TaskPublisher is the fanout boundary the service calls after a task
// write commits. Implemented by realtime.Publisher.
type TaskPublisher interface {
	TaskCommitted(
		ctx context.Context,
		eventType realtime.EventType,
		companyID uuid.UUID,
		taskTitle string,
		snapshot interface{},
	)
}

// UserSummary is the embedded user representation on task responses.
type UserSummary struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
}

// TaskDetail is the full task representation returned by the service
// and broadcast to websocket clients. It carries resolved assignee and
// creator summaries alongside the raw IDs.
type TaskDetail struct {
	ID               uuid.UUID         `json:"id"`
	Title            string            `json:"title"`
	Description      string            `json:"description"`
	Status           domain.TaskStatus `json:"status"`
	AssignedTo       uuid.UUID         `json:"assigned_to"`
	AssignedToDetail *UserSummary      `json:"assigned_to_detail,omitempty"`
	CreatedBy        uuid.UUID         `json:"created_by"`
	CreatedByDetail  *UserSummary      `json:"created_by_detail,omitempty"`
	Company          uuid.UUID         `json:"company"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// TaskStatistics summarizes a company's tasks.
type TaskStatistics struct {
	TotalTasks int            `json:"total_tasks"`
	ByStatus   map[string]int `json:"by_status"`
	ByUser     map[string]int `json:"by_user"`
}

// CreateTaskInput carries the writable fields for task creation.
type CreateTaskInput struct {
	Title       string
	Description string
	Status      domain.TaskStatus
	AssignedTo  uuid.UUID
}

// UpdateTaskInput carries the writable fields for a task update. Nil
// pointers leave the corresponding field unchanged.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Status      *domain.TaskStatus
	AssignedTo  *uuid.UUID
}

// TaskService orchestrates task CRUD: every read and write is scoped to
// the actor's company, and successful writes trigger two best-effort
// post-commit side effects in order: the realtime broadcast and the
// notification event. Neither side effect can fail the write.
type TaskService struct {
	taskStore store.TaskStore
	userStore store.UserStore
	publisher TaskPublisher
	emitter   events.EventEmitter
}

// NewTaskService creates a TaskService. publisher and emitter may be
// nil in tests; side effects are skipped when absent.
func NewTaskService(
	taskStore store.TaskStore,
	userStore store.UserStore,
	publisher TaskPublisher,
	emitter events.EventEmitter,
) *TaskService {
	return &TaskService{
		taskStore: taskStore,
		userStore: userStore,
		publisher: publisher,
		emitter:   emitter,
	}
}

// Create validates the assignee against the actor's company, persists
// the task, and fires the post-commit side effects.
func (s *TaskService) Create(
	ctx context.Context,
	actorID, companyID uuid.UUID,
	input CreateTaskInput,
) (*TaskDetail, error) {
	log := logger.FromContext(ctx)

	assignee, err := s.resolveAssignee(ctx, input.AssignedTo, companyID)
	if err != nil {
		return nil, err
	}

	task, err := domain.NewTask(
		input.Title,
		input.Description,
		input.Status,
		assignee.ID,
		actorID,
		companyID,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if err := s.taskStore.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	detail, err := s.toDetail(ctx, task)
	if err != nil {
		// The write committed; return the bare detail rather than fail.
		log.Warn("failed to resolve task detail after create", "task_id", task.ID, "error", err)
		detail = bareDetail(task)
	}

	s.afterCommit(ctx, realtime.EventTaskCreated, task, detail)
	return detail, nil
}

// Update applies the changed fields to a task in the actor's company
// and fires the post-commit side effects.
func (s *TaskService) Update(
	ctx context.Context,
	taskID, companyID uuid.UUID,
	input UpdateTaskInput,
) (*TaskDetail, error) {
	log := logger.FromContext(ctx)

	task, err := s.taskStore.GetForCompany(ctx, taskID, companyID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to load task: %w", err)
	}

	if input.Title != nil {
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Status != nil {
		task.Status = *input.Status
	}
	if input.AssignedTo != nil {
		assignee, err := s.resolveAssignee(ctx, *input.AssignedTo, companyID)
		if err != nil {
			return nil, err
		}
		task.AssignedToID = assignee.ID
	}
	task.UpdatedAt = time.Now().UTC()

	if err := task.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if err := s.taskStore.Update(ctx, task); err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	detail, err := s.toDetail(ctx, task)
	if err != nil {
		log.Warn("failed to resolve task detail after update", "task_id", task.ID, "error", err)
		detail = bareDetail(task)
	}

	s.afterCommit(ctx, realtime.EventTaskUpdated, task, detail)
	return detail, nil
}

// Get returns one task from the actor's company.
func (s *TaskService) Get(ctx context.Context, taskID, companyID uuid.UUID) (*TaskDetail, error) {
	task, err := s.taskStore.GetForCompany(ctx, taskID, companyID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to load task: %w", err)
	}
	return s.detailOrBare(ctx, task), nil
}

// List returns all tasks in the actor's company, newest first.
func (s *TaskService) List(ctx context.Context, companyID uuid.UUID) ([]*TaskDetail, error) {
	tasks, err := s.taskStore.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return s.toDetails(ctx, tasks), nil
}

// MyTasks returns the tasks assigned to the actor within their company.
func (s *TaskService) MyTasks(ctx context.Context, actorID, companyID uuid.UUID) ([]*TaskDetail, error) {
	tasks, err := s.taskStore.ListByAssignee(ctx, companyID, actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assigned tasks: %w", err)
	}
	return s.toDetails(ctx, tasks), nil
}

// Delete removes a task from the actor's company. Deletion does not
// broadcast; only creates and updates are pushed to clients.
func (s *TaskService) Delete(ctx context.Context, taskID, companyID uuid.UUID) error {
	if err := s.taskStore.Delete(ctx, taskID, companyID); err != nil {
		if store.IsNotFoundError(err) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// Statistics aggregates the company's tasks by status and by assignee
// username.
func (s *TaskService) Statistics(ctx context.Context, companyID uuid.UUID) (*TaskStatistics, error) {
	tasks, err := s.taskStore.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	byStatus := lo.CountValuesBy(tasks, func(t *domain.Task) string {
		return string(t.Status)
	})

	users, err := s.userStore.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list company users: %w", err)
	}
	usernames := lo.SliceToMap(users, func(u *domain.User) (uuid.UUID, string) {
		return u.ID, u.Username
	})

	byUser := make(map[string]int)
	for _, t := range tasks {
		name, ok := usernames[t.AssignedToID]
		if !ok {
			name = t.AssignedToID.String()
		}
		byUser[name]++
	}

	return &TaskStatistics{
		TotalTasks: len(tasks),
		ByStatus:   byStatus,
		ByUser:     byUser,
	}, nil
}

// resolveAssignee loads the assignee and enforces that they belong to
// the actor's company.
func (s *TaskService) resolveAssignee(
	ctx context.Context,
	assigneeID, companyID uuid.UUID,
) (*domain.User, error) {
	assignee, err := s.userStore.GetByID(ctx, assigneeID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrAssigneeNotFound
		}
		return nil, fmt.Errorf("failed to load assignee: %w", err)
	}
	if assignee.CompanyID == nil || *assignee.CompanyID != companyID {
		return nil, ErrCrossCompanyAssignment
	}
	return assignee, nil
}

// afterCommit runs the post-commit side effects. Both are best-effort:
// broadcast and notification failures are logged by their owners and
// never surface here.
func (s *TaskService) afterCommit(
	ctx context.Context,
	eventType realtime.EventType,
	task *domain.Task,
	detail *TaskDetail,
) {
	log := logger.FromContext(ctx)

	if s.publisher != nil {
		s.publisher.TaskCommitted(ctx, eventType, task.CompanyID, task.Title, detail)
	}

	if s.emitter != nil && eventType == realtime.EventTaskCreated {
		event, err := events.NewEvent(events.EventTaskAssigned, events.TaskAssignedPayload{
			TaskID:      task.ID,
			RecipientID: task.AssignedToID,
		})
		if err != nil {
			log.Error("failed to build task assigned event", "task_id", task.ID, "error", err)
			return
		}
		if err := s.emitter.EmitEvent(ctx, event); err != nil {
			log.Error("failed to emit task assigned event", "task_id", task.ID, "error", err)
		}
	}
}

func (s *TaskService) toDetails(ctx context.Context, tasks []*domain.Task) []*TaskDetail {
	details := make([]*TaskDetail, 0, len(tasks))
	for _, task := range tasks {
		details = append(details, s.detailOrBare(ctx, task))
	}
	return details
}

func (s *TaskService) detailOrBare(ctx context.Context, task *domain.Task) *TaskDetail {
	detail, err := s.toDetail(ctx, task)
	if err != nil {
		logger.FromContext(ctx).Warn("failed to resolve task detail", "task_id", task.ID, "error", err)
		return bareDetail(task)
	}
	return detail
}

// toDetail resolves the assignee and creator summaries for a task.
func (s *TaskService) toDetail(ctx context.Context, task *domain.Task) (*TaskDetail, error) {
	detail := bareDetail(task)

	assignee, err := s.userStore.GetByID(ctx, task.AssignedToID)
	if err != nil {
		return nil, fmt.Errorf("failed to load assignee: %w", err)
	}
	detail.AssignedToDetail = summarize(assignee)

	if task.CreatedByID == task.AssignedToID {
		detail.CreatedByDetail = detail.AssignedToDetail
		return detail, nil
	}

	creator, err := s.userStore.GetByID(ctx, task.CreatedByID)
	if err != nil {
		if store.IsNotFoundError(err) {
			// Creator deleted since; the raw ID is still on the detail.
			return detail, nil
		}
		return nil, fmt.Errorf("failed to load creator: %w", err)
	}
	detail.CreatedByDetail = summarize(creator)
	return detail, nil
}

func bareDetail(task *domain.Task) *TaskDetail {
	return &TaskDetail{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		AssignedTo:  task.AssignedToID,
		CreatedBy:   task.CreatedByID,
		Company:     task.CompanyID,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

func summarize(user *domain.User) *UserSummary {
	return &UserSummary{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}
}
