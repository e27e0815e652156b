package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/taskhive/internal/platform/logger"
)

// Publisher is the boundary adapter between the task write path and the
// fanout layer. It is invoked synchronously after a task write commits;
// no database transaction may be held open across the call. Failures are
// logged and swallowed so real-time notification never gates the write.
type Publisher struct {
	broadcaster *Broadcaster
	logger      *slog.Logger
}

// NewPublisher creates a Publisher over the given broadcaster.
func NewPublisher(broadcaster *Broadcaster, logger *slog.Logger) *Publisher {
	return &Publisher{
		broadcaster: broadcaster,
		logger:      logger.With("component", "realtime_publisher"),
	}
}

// TaskCommitted builds the event envelope for a committed task mutation
// and hands it to the broadcaster. The snapshot is serialized here so
// every recipient sees the task exactly as it was at commit time.
func (p *Publisher) TaskCommitted(
	ctx context.Context,
	eventType EventType,
	companyID uuid.UUID,
	taskTitle string,
	snapshot interface{},
) {
	log := logger.FromContext(ctx)

	data, err := json.Marshal(snapshot)
	if err != nil {
		log.Error("failed to serialize task snapshot for broadcast",
			"event_type", eventType,
			"company_id", companyID,
			"error", err)
		return
	}

	p.broadcaster.Broadcast(companyID, Event{
		Type:      eventType,
		CompanyID: companyID,
		TaskTitle: taskTitle,
		Task:      data,
		EmittedAt: time.Now().UTC(),
	})
}
