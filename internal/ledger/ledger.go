// Package ledger records transactions and keeps the derived account balance
// and budget spent columns in step with them.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/findash/findash/internal/alerts"
	"github.com/findash/findash/internal/domain"
	"github.com/findash/findash/internal/events"
)

// DuplicateWindow is how far back the double-submit guard looks for an
// identical transaction.
const DuplicateWindow = 5 * time.Second

// ErrDuplicate marks a transaction rejected by the double-submit guard.
var ErrDuplicate = errors.New("duplicate transaction")

// ErrInvalid marks a transaction rejected by field validation, as opposed to
// a store failure.
var ErrInvalid = errors.New("invalid transaction")

// Store is the subset of the data layer the ledger needs.
type Store interface {
	RecentDuplicates(ctx context.Context, userID, name string, amount float64, since time.Time) ([]domain.Transaction, error)
	InsertTransaction(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error)
	AccountsByUser(ctx context.Context, userID string) ([]domain.Account, error)
	UpdateAccountBalance(ctx context.Context, accountID string, balance float64) error
	BudgetByCategory(ctx context.Context, userID, category string) (*domain.Budget, error)
	SumMonthlyExpenses(ctx context.Context, userID, category string, monthStart time.Time) (float64, error)
	UpdateBudgetSpent(ctx context.Context, budgetID string, spent float64) error
}

// Alerter is the budget threshold pipeline.
type Alerter interface {
	Process(ctx context.Context, alert alerts.Alert) (alerts.Result, error)
}

// NewTransaction is the input for RecordTransaction. Email is where a
// threshold alert would be sent; when empty the alert step is skipped.
type NewTransaction struct {
	UserID   string
	Name     string
	Amount   float64
	Type     domain.TransactionType
	Category string
	Email    string
}

// Service is the transaction-recording flow.
type Service struct {
	store   Store
	alerter Alerter
	bus     events.Publisher
	log     zerolog.Logger

	// now is swapped in tests.
	now func() time.Time
}

// New creates a ledger service. alerter and bus may be nil.
func New(store Store, alerter Alerter, bus events.Publisher, log zerolog.Logger) *Service {
	return &Service{
		store:   store,
		alerter: alerter,
		bus:     bus,
		log:     log.With().Str("component", "ledger").Logger(),
		now:     time.Now,
	}
}

// RecordTransaction validates, guards against double submits, persists the
// transaction, then applies the balance delta and recomputes the budget.
// The two follow-up writes are best effort: the transaction row is the source
// of truth and stays in place when they fail.
func (s *Service) RecordTransaction(ctx context.Context, input NewTransaction) (*domain.Transaction, error) {
	now := s.now()

	tx := &domain.Transaction{
		UserID:   input.UserID,
		Name:     input.Name,
		Amount:   input.Amount,
		Type:     input.Type,
		Category: domain.NormalizeCategory(input.Category),
		Date:     now,
	}
	if err := tx.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	recent, err := s.store.RecentDuplicates(ctx, tx.UserID, tx.Name, tx.Amount, now.Add(-DuplicateWindow))
	if err != nil {
		return nil, err
	}
	if len(recent) > 0 {
		return nil, ErrDuplicate
	}

	created, err := s.store.InsertTransaction(ctx, tx)
	if err != nil {
		return nil, err
	}

	log := s.log.With().
		Str("transaction_id", created.ID).
		Str("user_id", created.UserID).
		Str("category", created.Category).
		Logger()
	log.Info().Float64("amount", created.Amount).Str("type", string(created.Type)).Msg("Transaction recorded")

	if s.bus != nil {
		s.bus.Publish(events.Event{Kind: events.KindTransaction, UserID: created.UserID, Payload: created})
	}

	if err := s.applyBalance(ctx, created); err != nil {
		log.Error().Err(err).Msg("Failed to update account balance")
	}

	if created.Type == domain.TypeExpense {
		if err := s.refreshBudget(ctx, created, input.Email, now); err != nil {
			log.Error().Err(err).Msg("Failed to update budget")
		}
	}

	return created, nil
}

// applyBalance adds or subtracts the amount on the user's oldest account.
// Transactions carry no account reference, so the oldest account serves as
// the single, deterministic balance target.
func (s *Service) applyBalance(ctx context.Context, tx *domain.Transaction) error {
	accounts, err := s.store.AccountsByUser(ctx, tx.UserID)
	if err != nil {
		return err
	}
	if len(accounts) == 0 {
		s.log.Debug().Str("user_id", tx.UserID).Msg("No account to apply balance to")
		return nil
	}

	account := accounts[0]
	balance := account.Balance
	if tx.Type == domain.TypeExpense {
		balance -= tx.Amount
	} else {
		balance += tx.Amount
	}

	if err := s.store.UpdateAccountBalance(ctx, account.ID, balance); err != nil {
		return err
	}
	if s.bus != nil {
		s.bus.Publish(events.Event{Kind: events.KindAccount, UserID: tx.UserID})
	}
	return nil
}

// refreshBudget recomputes spent from the month's expense aggregate. It is
// the only writer of the spent column, and it fires the alert pipeline at the
// trigger threshold.
func (s *Service) refreshBudget(ctx context.Context, tx *domain.Transaction, email string, now time.Time) error {
	budget, err := s.store.BudgetByCategory(ctx, tx.UserID, tx.Category)
	if err != nil {
		return err
	}
	if budget == nil {
		s.log.Debug().Str("category", tx.Category).Msg("No budget for category")
		return nil
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	spent, err := s.store.SumMonthlyExpenses(ctx, tx.UserID, tx.Category, monthStart)
	if err != nil {
		return err
	}

	if err := s.store.UpdateBudgetSpent(ctx, budget.ID, spent); err != nil {
		return err
	}
	if s.bus != nil {
		s.bus.Publish(events.Event{Kind: events.KindBudget, UserID: tx.UserID})
	}

	budget.Spent = spent
	percent := budget.PercentUsed()
	if percent < alerts.TriggerThreshold || s.alerter == nil {
		return nil
	}
	if email == "" {
		s.log.Warn().Str("budget_id", budget.ID).Msg("Threshold crossed but no email to alert")
		return nil
	}

	result, err := s.alerter.Process(ctx, alerts.Alert{
		BudgetID:    budget.ID,
		UserID:      tx.UserID,
		Category:    tx.Category,
		PercentUsed: percent,
		Email:       email,
	})
	if err != nil {
		return err
	}
	s.log.Info().
		Str("budget_id", budget.ID).
		Float64("percentage_used", percent).
		Bool("suppressed", result.Suppressed).
		Msg("Budget alert processed")
	return nil
}
