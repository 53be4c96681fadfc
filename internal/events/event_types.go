package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered EventType = "user_registered"
	EventUserLoggedIn   EventType = "user_logged_in"
	EventTodoCreated    EventType = "todo_created"
	EventTodoToggled    EventType = "todo_toggled"
	EventTodoDeleted    EventType = "todo_deleted"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	UserID    int64       `json:"user_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TodoPayload describes the todo an event refers to.
type TodoPayload struct {
	TodoID int64  `json:"todo_id"`
	Title  string `json:"title,omitempty"`
	Done   bool   `json:"done"`
}
