package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/taskhive/internal/events"
)

// NotificationEventHandler implements the events.EventHandler interface.
// It turns task assignment events into email notification jobs and
// submits them to the runner for asynchronous execution.
type NotificationEventHandler struct {
	factory *EmailNotificationJobFactory
	runner  *Runner
	logger  *slog.Logger
}

// Ensure NotificationEventHandler implements events.EventHandler
var _ events.EventHandler = (*NotificationEventHandler)(nil)

// NewNotificationEventHandler creates an event handler that creates email
// notification jobs with the given factory and submits them to the runner.
func NewNotificationEventHandler(
	factory *EmailNotificationJobFactory,
	runner *Runner,
	logger *slog.Logger,
) *NotificationEventHandler {
	return &NotificationEventHandler{
		factory: factory,
		runner:  runner,
		logger:  logger.With("component", "notification_event_handler"),
	}
}

// HandleEvent processes task assignment events by creating and submitting
// an email notification job. Events of other types are ignored.
func (h *NotificationEventHandler) HandleEvent(ctx context.Context, event *events.Event) error {
	if event.Type != events.EventTaskAssigned {
		h.logger.Debug("ignoring event with unsupported type",
			"event_type", event.Type,
			"event_id", event.ID)
		return nil
	}

	var payload events.TaskAssignedPayload
	if err := event.UnmarshalPayload(&payload); err != nil {
		h.logger.Error("failed to unmarshal payload", "error", err, "event_id", event.ID)
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	job := h.factory.CreateJob(payload.TaskID, payload.RecipientID)

	if err := h.runner.Submit(ctx, job); err != nil {
		h.logger.Error("failed to submit job",
			"error", err,
			"job_id", job.ID(),
			"task_id", payload.TaskID,
			"event_id", event.ID)
		return fmt.Errorf("failed to submit job: %w", err)
	}

	h.logger.Info("notification job submitted",
		"job_id", job.ID(),
		"task_id", payload.TaskID,
		"recipient_id", payload.RecipientID,
		"event_id", event.ID)
	return nil
}
