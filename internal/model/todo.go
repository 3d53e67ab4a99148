package model

import "time"

// Todo is a task owned by exactly one user.  This struct corresponds to
// a row in the `todos` table.  CreatedAt is set once on insert and is
// always UTC; the column stores it as Unix milliseconds.
type Todo struct {
    ID          uint64    `json:"id"`           // todos.id
    Title       string    `json:"title"`        // todos.title
    IsCompleted bool      `json:"is_completed"` // todos.is_completed
    CreatedAt   time.Time `json:"created_at"`   // todos.created_at
    OwnerID     uint64    `json:"owner_id"`     // todos.owner_id
}
