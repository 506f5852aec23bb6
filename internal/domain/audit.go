package domain

import "time"

// EmailLog is an append-only audit row for every outbound email.
type EmailLog struct {
	ID        string    `json:"id,omitempty"`
	UserID    string    `json:"user_id"`
	EmailTo   string    `json:"email_to"`
	Subject   string    `json:"subject"`
	Content   string    `json:"content"`
	EmailType string    `json:"email_type"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// ReportRecord is an append-only audit row for every financial report sent.
type ReportRecord struct {
	ID          string    `json:"id,omitempty"`
	UserID      string    `json:"user_id"`
	Frequency   string    `json:"frequency"`
	ReportType  string    `json:"report_type"`
	EmailSentTo string    `json:"email_sent_to"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}
