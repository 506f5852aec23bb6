package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/findash/findash/internal/alerts"
	"github.com/findash/findash/internal/domain"
)

type mockStore struct {
	duplicates []domain.Transaction
	accounts   []domain.Account
	budget     *domain.Budget
	monthSum   float64

	insertedTx      *domain.Transaction
	balanceWrites   map[string]float64
	spentWrites     map[string]float64
	sumQueriedSince time.Time
}

func newMockStore() *mockStore {
	return &mockStore{
		balanceWrites: make(map[string]float64),
		spentWrites:   make(map[string]float64),
	}
}

func (m *mockStore) RecentDuplicates(ctx context.Context, userID, name string, amount float64, since time.Time) ([]domain.Transaction, error) {
	return m.duplicates, nil
}

func (m *mockStore) InsertTransaction(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	created := *tx
	created.ID = "tx-1"
	created.CreatedAt = tx.Date
	m.insertedTx = &created
	return &created, nil
}

func (m *mockStore) AccountsByUser(ctx context.Context, userID string) ([]domain.Account, error) {
	return m.accounts, nil
}

func (m *mockStore) UpdateAccountBalance(ctx context.Context, accountID string, balance float64) error {
	m.balanceWrites[accountID] = balance
	return nil
}

func (m *mockStore) BudgetByCategory(ctx context.Context, userID, category string) (*domain.Budget, error) {
	return m.budget, nil
}

func (m *mockStore) SumMonthlyExpenses(ctx context.Context, userID, category string, monthStart time.Time) (float64, error) {
	m.sumQueriedSince = monthStart
	return m.monthSum, nil
}

func (m *mockStore) UpdateBudgetSpent(ctx context.Context, budgetID string, spent float64) error {
	m.spentWrites[budgetID] = spent
	return nil
}

type mockAlerter struct {
	calls []alerts.Alert
}

func (m *mockAlerter) Process(ctx context.Context, alert alerts.Alert) (alerts.Result, error) {
	m.calls = append(m.calls, alert)
	return alerts.Result{}, nil
}

func newService(store *mockStore, alerter *mockAlerter) *Service {
	svc := New(store, alerter, nil, zerolog.Nop())
	svc.now = func() time.Time {
		return time.Date(2026, time.September, 14, 12, 0, 0, 0, time.UTC)
	}
	return svc
}

func expenseInput(amount float64) NewTransaction {
	return NewTransaction{
		UserID:   "user-1",
		Name:     "Groceries",
		Amount:   amount,
		Type:     domain.TypeExpense,
		Category: "food",
		Email:    "user@example.com",
	}
}

func TestRecordTransaction_DuplicateRejected(t *testing.T) {
	store := newMockStore()
	store.duplicates = []domain.Transaction{{ID: "earlier"}}
	svc := newService(store, &mockAlerter{})

	_, err := svc.RecordTransaction(context.Background(), expenseInput(150))
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	if store.insertedTx != nil {
		t.Error("duplicate must not be inserted")
	}
}

func TestRecordTransaction_ValidationBeforeWrite(t *testing.T) {
	tests := []struct {
		name  string
		input NewTransaction
	}{
		{"missing name", NewTransaction{UserID: "u", Amount: 10, Type: domain.TypeExpense, Category: "food"}},
		{"zero amount", NewTransaction{UserID: "u", Name: "x", Amount: 0, Type: domain.TypeExpense, Category: "food"}},
		{"bad type", NewTransaction{UserID: "u", Name: "x", Amount: 10, Type: "transfer", Category: "food"}},
		{"bad category", NewTransaction{UserID: "u", Name: "x", Amount: 10, Type: domain.TypeExpense, Category: "crypto"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMockStore()
			svc := newService(store, &mockAlerter{})
			_, err := svc.RecordTransaction(context.Background(), tt.input)
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
			if store.insertedTx != nil {
				t.Error("invalid input must not reach the store")
			}
		})
	}
}

func TestRecordTransaction_BalanceAppliedToOldestAccount(t *testing.T) {
	store := newMockStore()
	store.accounts = []domain.Account{
		{ID: "acc-old", Balance: 1000},
		{ID: "acc-new", Balance: 500},
	}
	svc := newService(store, &mockAlerter{})

	if _, err := svc.RecordTransaction(context.Background(), expenseInput(150)); err != nil {
		t.Fatalf("RecordTransaction failed: %v", err)
	}
	if got := store.balanceWrites["acc-old"]; got != 850 {
		t.Errorf("oldest account balance = %v, want 850", got)
	}
	if _, touched := store.balanceWrites["acc-new"]; touched {
		t.Error("newer account must not be touched")
	}
}

func TestRecordTransaction_IncomeAddsToBalance(t *testing.T) {
	store := newMockStore()
	store.accounts = []domain.Account{{ID: "acc-1", Balance: 1000}}
	svc := newService(store, &mockAlerter{})

	input := NewTransaction{
		UserID: "user-1", Name: "Payday", Amount: 2500,
		Type: domain.TypeIncome, Category: "salary",
	}
	if _, err := svc.RecordTransaction(context.Background(), input); err != nil {
		t.Fatalf("RecordTransaction failed: %v", err)
	}
	if got := store.balanceWrites["acc-1"]; got != 3500 {
		t.Errorf("balance = %v, want 3500", got)
	}
	if len(store.spentWrites) != 0 {
		t.Error("income must not touch budgets")
	}
}

func TestRecordTransaction_SpentRecomputedFromAggregate(t *testing.T) {
	store := newMockStore()
	store.budget = &domain.Budget{ID: "budget-1", Total: 1000, Spent: 700}
	store.monthSum = 850
	svc := newService(store, &mockAlerter{})

	if _, err := svc.RecordTransaction(context.Background(), expenseInput(150)); err != nil {
		t.Fatalf("RecordTransaction failed: %v", err)
	}
	if got := store.spentWrites["budget-1"]; got != 850 {
		t.Errorf("spent = %v, want 850 (the month aggregate)", got)
	}
	wantMonthStart := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)
	if !store.sumQueriedSince.Equal(wantMonthStart) {
		t.Errorf("aggregate window start = %v, want %v", store.sumQueriedSince, wantMonthStart)
	}
}

func TestRecordTransaction_AlertFiresAtThreshold(t *testing.T) {
	// 850 of 1000 → 85%, above the 75% trigger.
	store := newMockStore()
	store.budget = &domain.Budget{ID: "budget-1", Total: 1000}
	store.monthSum = 850
	alerter := &mockAlerter{}
	svc := newService(store, alerter)

	if _, err := svc.RecordTransaction(context.Background(), expenseInput(150)); err != nil {
		t.Fatalf("RecordTransaction failed: %v", err)
	}
	if len(alerter.calls) != 1 {
		t.Fatalf("expected 1 alert call, got %d", len(alerter.calls))
	}
	alert := alerter.calls[0]
	if alert.PercentUsed != 85 {
		t.Errorf("percentage = %v, want 85", alert.PercentUsed)
	}
	if alert.BudgetID != "budget-1" || alert.Category != "food" || alert.Email != "user@example.com" {
		t.Errorf("unexpected alert payload: %+v", alert)
	}
}

func TestRecordTransaction_NoAlertBelowThreshold(t *testing.T) {
	store := newMockStore()
	store.budget = &domain.Budget{ID: "budget-1", Total: 1000}
	store.monthSum = 600
	alerter := &mockAlerter{}
	svc := newService(store, alerter)

	if _, err := svc.RecordTransaction(context.Background(), expenseInput(100)); err != nil {
		t.Fatalf("RecordTransaction failed: %v", err)
	}
	if len(alerter.calls) != 0 {
		t.Errorf("no alert expected at 60%%, got %d calls", len(alerter.calls))
	}
}

func TestRecordTransaction_NoEmailSkipsAlert(t *testing.T) {
	store := newMockStore()
	store.budget = &domain.Budget{ID: "budget-1", Total: 1000}
	store.monthSum = 900
	alerter := &mockAlerter{}
	svc := newService(store, alerter)

	input := expenseInput(100)
	input.Email = ""
	if _, err := svc.RecordTransaction(context.Background(), input); err != nil {
		t.Fatalf("RecordTransaction failed: %v", err)
	}
	if len(alerter.calls) != 0 {
		t.Error("alert requires an email address")
	}
	if got := store.spentWrites["budget-1"]; got != 900 {
		t.Errorf("spent should still be recomputed, got %v", got)
	}
}

func TestRecordTransaction_CategoryNormalized(t *testing.T) {
	store := newMockStore()
	svc := newService(store, &mockAlerter{})

	input := expenseInput(50)
	input.Category = "  Food "
	if _, err := svc.RecordTransaction(context.Background(), input); err != nil {
		t.Fatalf("RecordTransaction failed: %v", err)
	}
	if store.insertedTx.Category != "food" {
		t.Errorf("category = %q, want food", store.insertedTx.Category)
	}
}
