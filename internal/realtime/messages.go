package realtime

import "encoding/json"

// Inbound and outbound message type discriminators. Every frame on the
// wire is a JSON object keyed by a "type" field.
const (
	MessageTypePing                  = "ping"
	MessageTypePong                  = "pong"
	MessageTypeConnectionEstablished = "connection_established"
	MessageTypeTaskCreated           = "task_created"
	MessageTypeTaskUpdated           = "task_updated"
)

// inboundMessage is the decoded shape of a client frame. Anything that
// does not decode into this shape is silently ignored.
type inboundMessage struct {
	Type string `json:"type"`
}

// serverMessage is the wire shape of every server-to-client frame.
type serverMessage struct {
	Type    string          `json:"type"`
	Task    json.RawMessage `json:"task,omitempty"`
	Message string          `json:"message"`
}

// pongPayload is sent in reply to every client ping. It never varies,
// so it is encoded once.
var pongPayload = mustEncode(serverMessage{
	Type:    MessageTypePong,
	Message: "Connection alive",
})

func mustEncode(msg serverMessage) []byte {
	data, err := json.Marshal(msg)
	if err != nil {
		panic(err)
	}
	return data
}

func connectionEstablishedPayload(companyName string) []byte {
	return mustEncode(serverMessage{
		Type:    MessageTypeConnectionEstablished,
		Message: "Connected to " + companyName + " task updates",
	})
}
