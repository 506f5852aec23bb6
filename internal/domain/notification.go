package domain

import "time"

// Notification is one row in the notifications table, rendered in the
// dashboard's notification tray and pushed over the event stream.
type Notification struct {
	ID        string    `json:"id,omitempty"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}
