package domain

import "time"

// Budget is one row in the budgets table. A user is expected to have at most
// one budget per category; this is a convention, not a database constraint.
type Budget struct {
	ID        string    `json:"id,omitempty"`
	UserID    string    `json:"user_id"`
	Category  string    `json:"category"`
	Total     float64   `json:"total"`
	Spent     float64   `json:"spent"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// PercentUsed returns spent as a percentage of total. A zero total yields 0
// rather than dividing by zero.
func (b *Budget) PercentUsed() float64 {
	if b.Total <= 0 {
		return 0
	}
	return b.Spent / b.Total * 100
}

// BudgetAlertLog is an append-only audit row recording every budget alert that
// was actually sent. The alert pipeline reads it to suppress repeats.
type BudgetAlertLog struct {
	ID             string    `json:"id,omitempty"`
	BudgetID       string    `json:"budget_id"`
	UserID         string    `json:"user_id"`
	Category       string    `json:"category"`
	PercentageUsed float64   `json:"percentage_used"`
	EmailSentTo    string    `json:"email_sent_to"`
	CreatedAt      time.Time `json:"created_at,omitempty"`
}
