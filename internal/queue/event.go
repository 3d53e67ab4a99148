// Package queue defines message payloads exchanged over the message broker.
package queue

// EventsQueue is the durable queue every domain event is published to.
const EventsQueue = "todo.events"

// Event types carried in TodoEvent.Type.
const (
    UserRegistered = "user.registered"
    TodoCreated    = "todo.created"
    TodoCompleted  = "todo.completed"
)

// TodoEvent is published after a signup or a todo change has been
// committed.  It carries identifiers only; consumers that need more
// detail query the API with their own credentials.
type TodoEvent struct {
    Type       string `json:"type"`
    UserID     uint64 `json:"user_id"`
    TodoID     uint64 `json:"todo_id,omitempty"`
    OccurredAt string `json:"occurred_at"`
}
