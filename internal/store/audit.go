package store

import (
	"context"
	"fmt"

	"github.com/findash/findash/internal/domain"
)

// InsertEmailLog appends one outbound-email audit row.
func (s *Store) InsertEmailLog(ctx context.Context, log *domain.EmailLog) error {
	payload := struct {
		UserID    string `json:"user_id"`
		EmailTo   string `json:"email_to"`
		Subject   string `json:"subject"`
		Content   string `json:"content"`
		EmailType string `json:"email_type"`
	}{
		UserID:    log.UserID,
		EmailTo:   log.EmailTo,
		Subject:   log.Subject,
		Content:   log.Content,
		EmailType: log.EmailType,
	}

	_, _, err := s.client.From("email_logs").Insert(payload, false, "", "", "").Execute()
	if err != nil {
		return fmt.Errorf("store: insert email log: %w", err)
	}
	return nil
}

// InsertReportRecord appends one report-history audit row.
func (s *Store) InsertReportRecord(ctx context.Context, record *domain.ReportRecord) error {
	payload := struct {
		UserID      string `json:"user_id"`
		Frequency   string `json:"frequency"`
		ReportType  string `json:"report_type"`
		EmailSentTo string `json:"email_sent_to"`
	}{
		UserID:      record.UserID,
		Frequency:   record.Frequency,
		ReportType:  record.ReportType,
		EmailSentTo: record.EmailSentTo,
	}

	_, _, err := s.client.From("report_history").Insert(payload, false, "", "", "").Execute()
	if err != nil {
		return fmt.Errorf("store: insert report record: %w", err)
	}
	return nil
}
