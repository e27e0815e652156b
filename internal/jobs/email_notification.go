package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/taskhive/internal/domain"
	"github.com/phrazzld/taskhive/internal/store"
)

// emailNotificationPayload is the persisted form of an email notification job.
type emailNotificationPayload struct {
	TaskID      uuid.UUID `json:"task_id"`
	RecipientID uuid.UUID `json:"recipient_id"`
}

// EmailNotificationJob sends the "new task assigned" email for one task to
// one recipient. The mail transport is the structured log: the notification
// row records what was sent and to whom, and delivery to a real SMTP
// gateway is an operational concern outside this service.
type EmailNotificationJob struct {
	id      uuid.UUID
	payload emailNotificationPayload
	status  JobStatus

	tasks         store.TaskStore
	users         store.UserStore
	companies     store.CompanyStore
	notifications store.NotificationStore
	logger        *slog.Logger
}

// Ensure EmailNotificationJob implements the Job interface
var _ Job = (*EmailNotificationJob)(nil)

// ID returns the job's unique identifier
func (j *EmailNotificationJob) ID() uuid.UUID {
	return j.id
}

// Type returns the job type identifier
func (j *EmailNotificationJob) Type() string {
	return JobTypeEmailNotification
}

// Payload returns the job data as a byte slice
func (j *EmailNotificationJob) Payload() []byte {
	data, err := json.Marshal(j.payload)
	if err != nil {
		// Payload is two UUIDs; marshalling cannot realistically fail.
		j.logger.Error("failed to marshal job payload", "job_id", j.id, "error", err)
		return nil
	}
	return data
}

// Status returns the current job status
func (j *EmailNotificationJob) Status() JobStatus {
	return j.status
}

// Execute loads the task and recipient, composes the assignment email,
// records it as an EmailNotification, and marks it sent.
func (j *EmailNotificationJob) Execute(ctx context.Context) error {
	task, err := j.tasks.GetByID(ctx, j.payload.TaskID)
	if err != nil {
		// The task may have been deleted between assignment and delivery;
		// nothing to notify about in that case.
		if errors.Is(err, store.ErrTaskNotFound) {
			j.logger.Info("skipping notification for deleted task",
				"job_id", j.id, "task_id", j.payload.TaskID)
			return nil
		}
		return fmt.Errorf("failed to load task: %w", err)
	}

	recipient, err := j.users.GetByID(ctx, j.payload.RecipientID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			j.logger.Info("skipping notification for deleted recipient",
				"job_id", j.id, "recipient_id", j.payload.RecipientID)
			return nil
		}
		return fmt.Errorf("failed to load recipient: %w", err)
	}

	creator, err := j.users.GetByID(ctx, task.CreatedByID)
	if err != nil {
		return fmt.Errorf("failed to load task creator: %w", err)
	}

	company, err := j.companies.GetByID(ctx, task.CompanyID)
	if err != nil {
		return fmt.Errorf("failed to load company: %w", err)
	}

	subject := fmt.Sprintf("New Task Assigned: %s", task.Title)
	message := composeAssignmentEmail(task, recipient, creator, company)

	taskID := task.ID
	notification, err := domain.NewEmailNotification(recipient.ID, subject, message, &taskID)
	if err != nil {
		return fmt.Errorf("failed to build notification: %w", err)
	}

	if err := j.notifications.Create(ctx, notification); err != nil {
		return fmt.Errorf("failed to record notification: %w", err)
	}

	j.logger.Info("email notification sent",
		"notification_id", notification.ID,
		"to", recipient.Email,
		"subject", subject,
		"task_id", task.ID,
		"company", company.Name)

	if err := j.notifications.MarkSent(ctx, notification.ID); err != nil {
		return fmt.Errorf("failed to mark notification sent: %w", err)
	}

	return nil
}

// composeAssignmentEmail renders the plain-text body of the assignment email.
func composeAssignmentEmail(
	task *domain.Task,
	recipient *domain.User,
	creator *domain.User,
	company *domain.Company,
) string {
	greeting := recipient.FirstName
	if greeting == "" {
		greeting = recipient.Username
	}

	return fmt.Sprintf(`Hello %s,

You have been assigned a new task:

Title: %s
Description: %s
Status: %s
Created by: %s
Company: %s

Please log in to the task manager to view more details.

Best regards,
Task Manager Team
`, greeting, task.Title, task.Description, task.Status.Display(), creator.DisplayName(), company.Name)
}

// EmailNotificationJobFactory creates email notification jobs with their
// store dependencies wired in. It also serves as the Reconstructor used by
// the job store when recovering persisted jobs.
type EmailNotificationJobFactory struct {
	tasks         store.TaskStore
	users         store.UserStore
	companies     store.CompanyStore
	notifications store.NotificationStore
	logger        *slog.Logger
}

// Ensure the factory can rebuild persisted jobs
var _ Reconstructor = (*EmailNotificationJobFactory)(nil)

// NewEmailNotificationJobFactory creates a new factory.
func NewEmailNotificationJobFactory(
	tasks store.TaskStore,
	users store.UserStore,
	companies store.CompanyStore,
	notifications store.NotificationStore,
	logger *slog.Logger,
) *EmailNotificationJobFactory {
	return &EmailNotificationJobFactory{
		tasks:         tasks,
		users:         users,
		companies:     companies,
		notifications: notifications,
		logger:        logger.With("component", "email_notification_job"),
	}
}

// CreateJob builds a new pending email notification job for the given task
// and recipient.
func (f *EmailNotificationJobFactory) CreateJob(taskID, recipientID uuid.UUID) *EmailNotificationJob {
	return &EmailNotificationJob{
		id:            uuid.New(),
		payload:       emailNotificationPayload{TaskID: taskID, RecipientID: recipientID},
		status:        JobStatusPending,
		tasks:         f.tasks,
		users:         f.users,
		companies:     f.companies,
		notifications: f.notifications,
		logger:        f.logger,
	}
}

// Reconstruct implements the Reconstructor interface for persisted jobs.
func (f *EmailNotificationJobFactory) Reconstruct(
	id uuid.UUID,
	jobType string,
	payload []byte,
	status JobStatus,
) (Job, error) {
	if jobType != JobTypeEmailNotification {
		return nil, fmt.Errorf("unknown job type %q", jobType)
	}

	var p emailNotificationPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("invalid payload for job %s: %w", id, err)
	}

	return &EmailNotificationJob{
		id:            id,
		payload:       p,
		status:        status,
		tasks:         f.tasks,
		users:         f.users,
		companies:     f.companies,
		notifications: f.notifications,
		logger:        f.logger,
	}, nil
}
