package realtime

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType identifies the kind of task mutation an Event describes.
type EventType string

// Supported event types. The values double as the outbound wire "type"
// field for broadcast frames.
const (
	EventTaskCreated EventType = MessageTypeTaskCreated
	EventTaskUpdated EventType = MessageTypeTaskUpdated
)

// Event is an immutable envelope describing one committed task mutation.
// It carries a fully serialized snapshot of the task, not a reference;
// consumers never reach back into the store.
type Event struct {
	Type      EventType
	CompanyID uuid.UUID
	TaskTitle string
	Task      json.RawMessage
	EmittedAt time.Time
}

// encode renders the event into its outbound wire frame.
func (e Event) encode() ([]byte, error) {
	var text string
	switch e.Type {
	case EventTaskCreated:
		text = "New task created: " + e.TaskTitle
	case EventTaskUpdated:
		text = "Task updated: " + e.TaskTitle
	default:
		text = "Task event: " + e.TaskTitle
	}

	return json.Marshal(serverMessage{
		Type:    string(e.Type),
		Task:    e.Task,
		Message: text,
	})
}
