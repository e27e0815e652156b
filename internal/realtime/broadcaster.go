package realtime

import (
	"log/slog"

	"github.com/google/uuid"
)

// Broadcaster fans an event out to every live connection of one company.
// Delivery is best-effort and at-most-once per connection per call; the
// caller never sees delivery errors.
type Broadcaster struct {
	registry *Registry
	logger   *slog.Logger
}

// NewBroadcaster creates a Broadcaster over the given registry.
func NewBroadcaster(registry *Registry, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		registry: registry,
		logger:   logger.With("component", "realtime_broadcaster"),
	}
}

// Broadcast encodes the event once and offers it to each of the
// company's connections without blocking. A connection whose outbound
// buffer is full is a slow consumer: the event is dropped for it and the
// connection is disconnected rather than stalling the fanout.
func (b *Broadcaster) Broadcast(companyID uuid.UUID, event Event) {
	frame, err := event.encode()
	if err != nil {
		b.logger.Error("failed to encode event",
			"event_type", event.Type,
			"company_id", companyID,
			"error", err)
		return
	}

	members := b.registry.MembersOf(companyID)
	if len(members) == 0 {
		return
	}

	var delivered int
	for _, conn := range members {
		if conn.Enqueue(frame) {
			delivered++
			continue
		}
		b.logger.Warn("disconnecting slow consumer",
			"company_id", companyID,
			"user_id", conn.Identity().UserID,
			"event_type", event.Type)
		conn.Close()
	}

	b.logger.Debug("event broadcast",
		"event_type", event.Type,
		"company_id", companyID,
		"delivered", delivered,
		"members", len(members))
}
