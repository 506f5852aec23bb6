package domain

import "time"

// AccountType is the kind of account a balance belongs to.
type AccountType string

const (
	AccountBank       AccountType = "bank"
	AccountCredit     AccountType = "credit"
	AccountInvestment AccountType = "investment"
	AccountLoan       AccountType = "loan"
)

// ValidAccountType reports whether t is a supported account type.
func ValidAccountType(t AccountType) bool {
	switch t {
	case AccountBank, AccountCredit, AccountInvestment, AccountLoan:
		return true
	}
	return false
}

// Account is one row in the accounts table. CardNumber holds only the
// trailing digits the user chose to store, if any.
type Account struct {
	ID         string      `json:"id,omitempty"`
	UserID     string      `json:"user_id"`
	Name       string      `json:"name"`
	Type       AccountType `json:"type"`
	Balance    float64     `json:"balance"`
	CardNumber *string     `json:"card_number,omitempty"`
	CreatedAt  time.Time   `json:"created_at,omitempty"`
}
