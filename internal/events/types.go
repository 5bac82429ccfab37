// Package events provides the pub/sub bus that carries store changes to
// every view binding (websocket feed, TUI, logs).
package events

import "time"

// EventType identifies the category of event. Values double as websocket
// topics.
type EventType string

const (
	EventStateChanged      EventType = "state.changed"
	EventOperationRejected EventType = "operation.rejected"
	EventSessionChanged    EventType = "session.changed"
	EventSystemReboot      EventType = "system.reboot"
)

// Event is the message passed through the hub.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
	Data      any       `json:"data"`
}

// StateChangedData is the payload for EventStateChanged.
type StateChangedData struct {
	Collection string `json:"collection"`
	Action     string `json:"action"` // e.g. "fetch.fulfilled", "created"
	Version    uint64 `json:"version"`
}

// OperationRejectedData is the payload for EventOperationRejected.
type OperationRejectedData struct {
	Collection string `json:"collection"`
	Op         string `json:"op"`
	Message    string `json:"message"`
}

// SessionData is the payload for EventSessionChanged.
type SessionData struct {
	Username      string `json:"username,omitempty"`
	Authenticated bool   `json:"authenticated"`
}

// StateChanged builds the event for an applied store action.
func StateChanged(collection, action string, version uint64) Event {
	return Event{
		Type:   EventStateChanged,
		Source: "store",
		Data:   StateChangedData{Collection: collection, Action: action, Version: version},
	}
}

// OperationRejected builds the event for a failed operation.
func OperationRejected(collection, op, message string) Event {
	return Event{
		Type:   EventOperationRejected,
		Source: "store",
		Data:   OperationRejectedData{Collection: collection, Op: op, Message: message},
	}
}

// SessionChanged builds the event for a login or logout.
func SessionChanged(username string, authenticated bool) Event {
	return Event{
		Type:   EventSessionChanged,
		Source: "store",
		Data:   SessionData{Username: username, Authenticated: authenticated},
	}
}
