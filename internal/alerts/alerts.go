// Package alerts implements the budget threshold pipeline: suppression
// against the alert log, a notification row, and a tiered email. Steps are
// independently useful, so a failing later step never rolls back an earlier
// one.
package alerts

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/findash/findash/internal/domain"
	"github.com/findash/findash/internal/events"
	"github.com/findash/findash/internal/mailer"
)

const (
	// TriggerThreshold is the budget usage percentage at which the ledger
	// invokes this pipeline.
	TriggerThreshold = 75.0

	// SuppressionWindow is how far back the pipeline looks for a previous
	// alert on the same budget.
	SuppressionWindow = 6 * time.Hour

	// MinPercentStep is the usage increase (in percentage points) over the
	// last alert required to send another one inside the window.
	MinPercentStep = 10.0
)

// Store is the subset of the data layer the pipeline needs.
type Store interface {
	RecentAlertLogs(ctx context.Context, budgetID, userID string, since time.Time) ([]domain.BudgetAlertLog, error)
	InsertAlertLog(ctx context.Context, log *domain.BudgetAlertLog) error
	InsertNotification(ctx context.Context, n *domain.Notification) (*domain.Notification, error)
}

// Mailer sends the budget-alert email.
type Mailer interface {
	SendBudgetAlert(ctx context.Context, alert mailer.BudgetAlert) error
}

// Alert is one threshold crossing reported by the ledger.
type Alert struct {
	BudgetID    string  `json:"budget_id"`
	UserID      string  `json:"user_id"`
	Category    string  `json:"category"`
	PercentUsed float64 `json:"percentage_used"`
	Email       string  `json:"email"`
}

// Result reports what the pipeline did.
type Result struct {
	Suppressed     bool   `json:"suppressed"`
	Reason         string `json:"reason,omitempty"`
	NotificationID string `json:"notification_id,omitempty"`
	EmailSent      bool   `json:"email_sent"`
}

// Service runs the pipeline.
type Service struct {
	store  Store
	mailer Mailer
	bus    events.Publisher
	log    zerolog.Logger
}

// New creates the pipeline. bus may be nil.
func New(store Store, m Mailer, bus events.Publisher, log zerolog.Logger) *Service {
	return &Service{
		store:  store,
		mailer: m,
		bus:    bus,
		log:    log.With().Str("component", "alerts").Logger(),
	}
}

// Process handles one alert. An error is returned only for invalid input;
// downstream failures are logged and reflected in the Result.
func (s *Service) Process(ctx context.Context, alert Alert) (Result, error) {
	if alert.BudgetID == "" || alert.UserID == "" || alert.Category == "" || alert.Email == "" {
		return Result{}, fmt.Errorf("alerts: budget_id, user_id, category and email are required")
	}

	log := s.log.With().
		Str("budget_id", alert.BudgetID).
		Str("category", alert.Category).
		Float64("percentage_used", alert.PercentUsed).
		Logger()

	log.Info().Msg("Processing budget alert")

	// Suppression: inside the window, only a jump of at least MinPercentStep
	// over the last logged alert goes through. A failed lookup is treated as
	// "no recent alert" so a flaky read never silences a real alert.
	since := time.Now().Add(-SuppressionWindow)
	recent, err := s.store.RecentAlertLogs(ctx, alert.BudgetID, alert.UserID, since)
	if err != nil {
		log.Error().Err(err).Msg("Failed to check recent alerts")
	} else if len(recent) > 0 {
		last := recent[0]
		if alert.PercentUsed < last.PercentageUsed+MinPercentStep {
			log.Info().
				Float64("previous", last.PercentageUsed).
				Msg("Skipping alert: recent similar alert already sent")
			return Result{
				Suppressed: true,
				Reason:     fmt.Sprintf("previous alert at %.0f%%, current %.0f%% is below the %.0f-point step", last.PercentageUsed, alert.PercentUsed, MinPercentStep),
			}, nil
		}
		log.Info().
			Float64("previous", last.PercentageUsed).
			Msg("Significant increase since last alert, sending another")
	}

	result := Result{}

	if err := s.store.InsertAlertLog(ctx, &domain.BudgetAlertLog{
		BudgetID:       alert.BudgetID,
		UserID:         alert.UserID,
		Category:       alert.Category,
		PercentageUsed: alert.PercentUsed,
		EmailSentTo:    alert.Email,
	}); err != nil {
		log.Error().Err(err).Msg("Failed to log budget alert")
	}

	title := "Budget Alert"
	message := fmt.Sprintf("You've used %.0f%% of your %s budget.", alert.PercentUsed, alert.Category)
	if alert.PercentUsed >= 100 {
		title = "Budget Exceeded"
		message = fmt.Sprintf("You've exceeded your %s budget.", alert.Category)
	}

	notification, err := s.store.InsertNotification(ctx, &domain.Notification{
		UserID:  alert.UserID,
		Title:   title,
		Message: message,
		Type:    "budget",
		Read:    false,
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to create notification")
	} else {
		result.NotificationID = notification.ID
		if s.bus != nil {
			s.bus.Publish(events.Event{
				Kind:    events.KindNotification,
				UserID:  alert.UserID,
				Payload: notification,
			})
		}
	}

	if err := s.mailer.SendBudgetAlert(ctx, mailer.BudgetAlert{
		To:          alert.Email,
		UserID:      alert.UserID,
		Category:    alert.Category,
		PercentUsed: alert.PercentUsed,
	}); err != nil {
		log.Error().Err(err).Msg("Failed to send budget alert email")
	} else {
		result.EmailSent = true
	}

	return result, nil
}
