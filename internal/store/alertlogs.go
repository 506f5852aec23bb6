package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/findash/findash/internal/domain"
)

// RecentAlertLogs returns alert-log rows for one budget and user created
// after since, newest first. The alert pipeline's suppression window reads
// only the first row.
func (s *Store) RecentAlertLogs(ctx context.Context, budgetID, userID string, since time.Time) ([]domain.BudgetAlertLog, error) {
	data, _, err := s.client.From("budget_alert_logs").
		Select("*", "", false).
		Eq("budget_id", budgetID).
		Eq("user_id", userID).
		Gt("created_at", since.Format(time.RFC3339)).
		Order("created_at.desc", nil).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("store: query recent alert logs: %w", err)
	}

	var logs []domain.BudgetAlertLog
	if err := json.Unmarshal(data, &logs); err != nil {
		return nil, fmt.Errorf("store: parse alert logs: %w", err)
	}
	return logs, nil
}

// InsertAlertLog appends one alert-log row.
func (s *Store) InsertAlertLog(ctx context.Context, log *domain.BudgetAlertLog) error {
	payload := struct {
		BudgetID       string  `json:"budget_id"`
		UserID         string  `json:"user_id"`
		Category       string  `json:"category"`
		PercentageUsed float64 `json:"percentage_used"`
		EmailSentTo    string  `json:"email_sent_to"`
	}{
		BudgetID:       log.BudgetID,
		UserID:         log.UserID,
		Category:       log.Category,
		PercentageUsed: log.PercentageUsed,
		EmailSentTo:    log.EmailSentTo,
	}

	_, _, err := s.client.From("budget_alert_logs").Insert(payload, false, "", "", "").Execute()
	if err != nil {
		return fmt.Errorf("store: insert alert log: %w", err)
	}
	return nil
}
