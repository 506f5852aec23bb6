package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/findash/findash/internal/domain"
)

// AccountsByUser returns a user's accounts ordered oldest first, so the
// ledger's balance attribution is deterministic.
func (s *Store) AccountsByUser(ctx context.Context, userID string) ([]domain.Account, error) {
	data, _, err := s.client.From("accounts").
		Select("*", "", false).
		Eq("user_id", userID).
		Order("created_at.asc", nil).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("store: list accounts: %w", err)
	}

	var accounts []domain.Account
	if err := json.Unmarshal(data, &accounts); err != nil {
		return nil, fmt.Errorf("store: parse accounts: %w", err)
	}
	return accounts, nil
}

// InsertAccount persists a new account and returns the stored row.
func (s *Store) InsertAccount(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	payload := struct {
		UserID     string             `json:"user_id"`
		Name       string             `json:"name"`
		Type       domain.AccountType `json:"type"`
		Balance    float64            `json:"balance"`
		CardNumber *string            `json:"card_number,omitempty"`
	}{
		UserID:     account.UserID,
		Name:       account.Name,
		Type:       account.Type,
		Balance:    account.Balance,
		CardNumber: account.CardNumber,
	}

	data, _, err := s.client.From("accounts").Insert(payload, false, "", "representation", "").Execute()
	if err != nil {
		return nil, fmt.Errorf("store: insert account: %w", err)
	}

	var created []domain.Account
	if err := json.Unmarshal(data, &created); err != nil {
		return nil, fmt.Errorf("store: parse created account: %w", err)
	}
	if len(created) == 0 {
		return nil, fmt.Errorf("store: insert account returned no rows")
	}
	return &created[0], nil
}

// UpdateAccountBalance writes an absolute balance to one account.
func (s *Store) UpdateAccountBalance(ctx context.Context, accountID string, balance float64) error {
	payload := struct {
		Balance float64 `json:"balance"`
	}{Balance: balance}

	_, _, err := s.client.From("accounts").
		Update(payload, "", "").
		Eq("id", accountID).
		Execute()
	if err != nil {
		return fmt.Errorf("store: update account balance: %w", err)
	}
	return nil
}
