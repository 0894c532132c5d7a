package chat

import "time"

// Role identifies who authored a turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Source is one citation attached to a grounded model turn.
type Source struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// Message is a single conversation turn.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Sources   []Source  `json:"sources"`
	Timestamp time.Time `json:"timestamp"`
}
