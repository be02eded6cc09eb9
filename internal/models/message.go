package models

import "time"

// Message captures one entry of a conversation log.

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message ids are 1-based positions in the per-session log; the log is
// append-only, so ids are strictly increasing for the life of the session.
type Message struct {
	ID        int64     `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
