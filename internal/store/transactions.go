package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/findash/findash/internal/domain"
)

// TransactionFilter narrows ListTransactions.
type TransactionFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
}

// InsertTransaction persists a new transaction and returns the stored row
// with its generated id.
func (s *Store) InsertTransaction(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	payload := struct {
		UserID   string                 `json:"user_id"`
		Name     string                 `json:"name"`
		Amount   float64                `json:"amount"`
		Type     domain.TransactionType `json:"type"`
		Category string                 `json:"category"`
		Date     string                 `json:"date"`
	}{
		UserID:   tx.UserID,
		Name:     tx.Name,
		Amount:   tx.Amount,
		Type:     tx.Type,
		Category: tx.Category,
		Date:     tx.Date.Format(time.RFC3339),
	}

	data, _, err := s.client.From("transactions").Insert(payload, false, "", "representation", "").Execute()
	if err != nil {
		return nil, fmt.Errorf("store: insert transaction: %w", err)
	}

	var created []domain.Transaction
	if err := json.Unmarshal(data, &created); err != nil {
		return nil, fmt.Errorf("store: parse created transaction: %w", err)
	}
	if len(created) == 0 {
		return nil, fmt.Errorf("store: insert transaction returned no rows")
	}
	return &created[0], nil
}

// ListTransactions returns a user's transactions, newest first.
func (s *Store) ListTransactions(ctx context.Context, userID string, filter TransactionFilter) ([]domain.Transaction, error) {
	query := s.client.From("transactions").
		Select("*", "", false).
		Eq("user_id", userID)

	if filter.StartDate != nil {
		query = query.Gte("date", filter.StartDate.Format(time.RFC3339))
	}
	if filter.EndDate != nil {
		query = query.Lte("date", filter.EndDate.Format(time.RFC3339))
	}

	query = query.Order("date.desc", nil)
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit, "")
	}

	data, _, err := query.Execute()
	if err != nil {
		return nil, fmt.Errorf("store: list transactions: %w", err)
	}

	var transactions []domain.Transaction
	if err := json.Unmarshal(data, &transactions); err != nil {
		return nil, fmt.Errorf("store: parse transactions: %w", err)
	}
	return transactions, nil
}

// RecentDuplicates finds transactions with an identical user+name+amount
// dated at or after since. Backs the double-submit guard; there is no unique
// constraint behind it.
func (s *Store) RecentDuplicates(ctx context.Context, userID, name string, amount float64, since time.Time) ([]domain.Transaction, error) {
	data, _, err := s.client.From("transactions").
		Select("*", "", false).
		Eq("user_id", userID).
		Eq("name", name).
		Eq("amount", strconv.FormatFloat(amount, 'f', -1, 64)).
		Gte("date", since.Format(time.RFC3339)).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("store: query recent duplicates: %w", err)
	}

	var transactions []domain.Transaction
	if err := json.Unmarshal(data, &transactions); err != nil {
		return nil, fmt.Errorf("store: parse recent duplicates: %w", err)
	}
	return transactions, nil
}

// SumMonthlyExpenses totals a user's expense transactions in a category from
// monthStart onward. The budget's spent column is always recomputed from this
// aggregate, never incremented in place.
func (s *Store) SumMonthlyExpenses(ctx context.Context, userID, category string, monthStart time.Time) (float64, error) {
	data, _, err := s.client.From("transactions").
		Select("amount", "", false).
		Eq("user_id", userID).
		Eq("category", category).
		Eq("type", string(domain.TypeExpense)).
		Gte("date", monthStart.Format(time.RFC3339)).
		Execute()
	if err != nil {
		return 0, fmt.Errorf("store: sum monthly expenses: %w", err)
	}

	var rows []struct {
		Amount float64 `json:"amount"`
	}
	if err := json.Unmarshal(data, &rows); err != nil {
		return 0, fmt.Errorf("store: parse expense amounts: %w", err)
	}

	var total float64
	for _, row := range rows {
		total += row.Amount
	}
	return total, nil
}
