// Package reports generates periodic financial reports and fans scheduled
// runs out to every subscribed user.
package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/findash/findash/internal/charts"
	"github.com/findash/findash/internal/domain"
	"github.com/findash/findash/internal/jobs"
	"github.com/findash/findash/internal/mailer"
	"github.com/findash/findash/internal/store"
)

// Store is the subset of the data layer reports read and audit through.
type Store interface {
	ListTransactions(ctx context.Context, userID string, filter store.TransactionFilter) ([]domain.Transaction, error)
	AccountsByUser(ctx context.Context, userID string) ([]domain.Account, error)
	BudgetsByUser(ctx context.Context, userID string) ([]domain.Budget, error)
	ProfilesByFrequency(ctx context.Context, frequency domain.Frequency) ([]domain.Profile, error)
	InsertReportRecord(ctx context.Context, record *domain.ReportRecord) error
}

// Mailer delivers the finished report.
type Mailer interface {
	SendReport(ctx context.Context, to, userID string, frequency domain.Frequency, body string, charts []mailer.Attachment) error
}

// Directory resolves user ids to email addresses during fan-out.
type Directory interface {
	EmailByID(ctx context.Context, userID string) (string, error)
}

// Service generates and dispatches reports.
type Service struct {
	store     Store
	mailer    Mailer
	directory Directory
	queue     jobs.Publisher
	apiKey    string
	log       zerolog.Logger

	// now is swapped in tests.
	now func() time.Time
}

// New creates a report service. directory and queue are only needed for
// Dispatch and may be nil for one-shot generation.
func New(s Store, m Mailer, directory Directory, queue jobs.Publisher, geminiAPIKey string, log zerolog.Logger) *Service {
	return &Service{
		store:     s,
		mailer:    m,
		directory: directory,
		queue:     queue,
		apiKey:    geminiAPIKey,
		log:       log.With().Str("component", "reports").Logger(),
		now:       time.Now,
	}
}

// Generate builds one user's report for the period ending now and emails it.
// The model narrative degrades to a template on failure; the history insert
// is best effort.
func (s *Service) Generate(ctx context.Context, userID, email string, freq domain.Frequency, reportType string) error {
	if userID == "" || email == "" {
		return fmt.Errorf("reports: user id and email are required")
	}
	if reportType == "" {
		reportType = "scheduled"
	}

	end := s.now()
	start := PeriodStart(freq, end)

	transactions, err := s.store.ListTransactions(ctx, userID, store.TransactionFilter{
		StartDate: &start,
		EndDate:   &end,
	})
	if err != nil {
		return fmt.Errorf("reports: fetch transactions: %w", err)
	}
	accounts, err := s.store.AccountsByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("reports: fetch accounts: %w", err)
	}
	budgets, err := s.store.BudgetsByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("reports: fetch budgets: %w", err)
	}

	summary := Summarize(freq, start, end, transactions, accounts, budgets)

	body, err := narrative(ctx, s.apiKey, summary)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("Narrative generation failed, using template")
		body = templateBody(summary)
	}

	attachments := s.renderCharts(summary)

	if err := s.mailer.SendReport(ctx, email, userID, freq, body, attachments); err != nil {
		return fmt.Errorf("reports: send report: %w", err)
	}

	if err := s.store.InsertReportRecord(ctx, &domain.ReportRecord{
		UserID:      userID,
		Frequency:   string(freq),
		ReportType:  reportType,
		EmailSentTo: email,
	}); err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Msg("Failed to record report history")
	}

	s.log.Info().
		Str("user_id", userID).
		Str("frequency", string(freq)).
		Int("transactions", len(transactions)).
		Msg("Report sent")
	return nil
}

// renderCharts draws the email attachments. A failed render drops that chart
// rather than the report.
func (s *Service) renderCharts(summary Summary) []mailer.Attachment {
	var attachments []mailer.Attachment

	pie, err := charts.SpendingPie(summary.ByCategory)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to render spending chart")
	} else if pie != nil {
		attachments = append(attachments, mailer.Attachment{
			Filename:    "spending.png",
			ContentType: "image/png",
			ContentID:   "spending-chart",
			Data:        pie,
		})
	}

	bar, err := charts.CashFlowBar(summary.TotalIncome, summary.TotalExpenses)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to render cash flow chart")
	} else if bar != nil {
		attachments = append(attachments, mailer.Attachment{
			Filename:    "cashflow.png",
			ContentType: "image/png",
			ContentID:   "cashflow-chart",
			Data:        bar,
		})
	}

	return attachments
}

// Dispatch enqueues a report job for every profile subscribed to freq and
// returns how many were queued. Users whose email cannot be resolved are
// skipped.
func (s *Service) Dispatch(ctx context.Context, freq domain.Frequency) (int, error) {
	if s.directory == nil || s.queue == nil {
		return 0, fmt.Errorf("reports: dispatch requires a directory and a queue")
	}

	profiles, err := s.store.ProfilesByFrequency(ctx, freq)
	if err != nil {
		return 0, fmt.Errorf("reports: fetch profiles: %w", err)
	}

	queued := 0
	for _, profile := range profiles {
		email, err := s.directory.EmailByID(ctx, profile.ID)
		if err != nil {
			s.log.Error().Err(err).Str("user_id", profile.ID).Msg("Failed to resolve email, skipping report")
			continue
		}
		if err := s.queue.PublishReport(ctx, &jobs.ReportJob{
			UserID:     profile.ID,
			Email:      email,
			Frequency:  freq,
			ReportType: "scheduled",
		}); err != nil {
			s.log.Error().Err(err).Str("user_id", profile.ID).Msg("Failed to enqueue report job")
			continue
		}
		queued++
	}

	s.log.Info().
		Str("frequency", string(freq)).
		Int("profiles", len(profiles)).
		Int("queued", queued).
		Msg("Report dispatch complete")
	return queued, nil
}
