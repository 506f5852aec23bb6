package domain

import (
	"fmt"
	"strings"
	"time"
)

// TransactionType distinguishes money going out from money coming in.
type TransactionType string

const (
	TypeExpense TransactionType = "expense"
	TypeIncome  TransactionType = "income"
)

// ValidTransactionType reports whether t is one of the two supported types.
func ValidTransactionType(t TransactionType) bool {
	return t == TypeExpense || t == TypeIncome
}

// Categories is the fixed set of transaction categories. Budgets are keyed by
// the same values, so anything outside this list is rejected before a write.
var Categories = []string{
	"shopping", "food", "housing", "transport", "healthcare",
	"education", "entertainment", "personal", "emi", "other",
	"salary", "investments", "freelance",
}

// NormalizeCategory lowercases and trims a category name.
func NormalizeCategory(category string) string {
	return strings.ToLower(strings.TrimSpace(category))
}

// ValidCategory reports whether category (after normalization) is known.
func ValidCategory(category string) bool {
	c := NormalizeCategory(category)
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Transaction is one row in the hosted transactions table. Transactions carry
// no account reference; balance attribution is resolved by the ledger service.
type Transaction struct {
	ID        string          `json:"id,omitempty"`
	UserID    string          `json:"user_id"`
	Name      string          `json:"name"`
	Amount    float64         `json:"amount"`
	Type      TransactionType `json:"type"`
	Category  string          `json:"category"`
	Date      time.Time       `json:"date"`
	CreatedAt time.Time       `json:"created_at,omitempty"`
}

// Validate checks the fields a transaction must carry before insertion.
func (t *Transaction) Validate() error {
	if t.UserID == "" {
		return fmt.Errorf("transaction: user id is required")
	}
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("transaction: name is required")
	}
	if t.Amount <= 0 {
		return fmt.Errorf("transaction: amount must be positive, got %v", t.Amount)
	}
	if !ValidTransactionType(t.Type) {
		return fmt.Errorf("transaction: invalid type %q", t.Type)
	}
	if !ValidCategory(t.Category) {
		return fmt.Errorf("transaction: invalid category %q", t.Category)
	}
	return nil
}
