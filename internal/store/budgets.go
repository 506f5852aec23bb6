package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/findash/findash/internal/domain"
)

// BudgetsByUser returns all budgets for a user.
func (s *Store) BudgetsByUser(ctx context.Context, userID string) ([]domain.Budget, error) {
	data, _, err := s.client.From("budgets").
		Select("*", "", false).
		Eq("user_id", userID).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("store: list budgets: %w", err)
	}

	var budgets []domain.Budget
	if err := json.Unmarshal(data, &budgets); err != nil {
		return nil, fmt.Errorf("store: parse budgets: %w", err)
	}
	return budgets, nil
}

// BudgetByCategory returns the newest budget for a user and category, or nil
// when none exists. Duplicated category rows are tolerated by taking the most
// recently created one.
func (s *Store) BudgetByCategory(ctx context.Context, userID, category string) (*domain.Budget, error) {
	data, _, err := s.client.From("budgets").
		Select("*", "", false).
		Eq("user_id", userID).
		Eq("category", category).
		Order("created_at.desc", nil).
		Limit(1, "").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("store: budget by category: %w", err)
	}

	var budgets []domain.Budget
	if err := json.Unmarshal(data, &budgets); err != nil {
		return nil, fmt.Errorf("store: parse budget: %w", err)
	}
	if len(budgets) == 0 {
		return nil, nil
	}
	return &budgets[0], nil
}

// InsertBudget persists a new budget and returns the stored row.
func (s *Store) InsertBudget(ctx context.Context, budget *domain.Budget) (*domain.Budget, error) {
	payload := struct {
		UserID   string  `json:"user_id"`
		Category string  `json:"category"`
		Total    float64 `json:"total"`
		Spent    float64 `json:"spent"`
	}{
		UserID:   budget.UserID,
		Category: budget.Category,
		Total:    budget.Total,
		Spent:    budget.Spent,
	}

	data, _, err := s.client.From("budgets").Insert(payload, false, "", "representation", "").Execute()
	if err != nil {
		return nil, fmt.Errorf("store: insert budget: %w", err)
	}

	var created []domain.Budget
	if err := json.Unmarshal(data, &created); err != nil {
		return nil, fmt.Errorf("store: parse created budget: %w", err)
	}
	if len(created) == 0 {
		return nil, fmt.Errorf("store: insert budget returned no rows")
	}
	return &created[0], nil
}

// UpdateBudgetSpent writes an absolute spent value to one budget.
func (s *Store) UpdateBudgetSpent(ctx context.Context, budgetID string, spent float64) error {
	payload := struct {
		Spent float64 `json:"spent"`
	}{Spent: spent}

	_, _, err := s.client.From("budgets").
		Update(payload, "", "").
		Eq("id", budgetID).
		Execute()
	if err != nil {
		return fmt.Errorf("store: update budget spent: %w", err)
	}
	return nil
}
