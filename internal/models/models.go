package models

import "time"

// Message is one chat exchange: what the user said, the intent it was
// routed to and the reply that was sent back.
type Message struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user_id"`
	Content   string    `json:"content"`
	Intent    string    `json:"intent"`
	Reply     string    `json:"reply"`
	CreatedAt time.Time `json:"created_at"`
}
