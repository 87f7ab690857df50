package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is an immutable ledger entry. Amount is signed: negative is a
// debit, positive a credit.
type Transaction struct {
	ID          string          `json:"id"`
	Timestamp   time.Time       `json:"timestamp"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

// Account is the balance plus its append-only transaction log, newest first.
// Invariant: Balance == sum of all transaction amounts. Enforced inside the
// ledger service's single mutation entry point, never recomputed elsewhere.
type Account struct {
	ID           string          `json:"id"`
	UserID       string          `json:"user_id"`
	Number       string          `json:"number"`
	Balance      decimal.Decimal `json:"balance"`
	Transactions []Transaction   `json:"transactions"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// MaskedNumber renders the account number for display, e.g. "****7890".
func (a *Account) MaskedNumber() string {
	if len(a.Number) < 4 {
		return "****"
	}
	return "****" + a.Number[len(a.Number)-4:]
}

// TransferRequest debits the caller in favor of an external recipient.
type TransferRequest struct {
	Recipient string          `json:"recipient" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Memo      string          `json:"memo"`
}

// BillPayRequest debits the caller for a bill payment.
type BillPayRequest struct {
	Payee         string          `json:"payee" binding:"required"`
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	AccountNumber string          `json:"account_number"`
}

// MutationResponse reports the post-state of a successful debit or credit.
type MutationResponse struct {
	NewBalance  decimal.Decimal `json:"new_balance"`
	Transaction Transaction     `json:"transaction"`
}

// DashboardResponse is the authenticated account overview.
type DashboardResponse struct {
	Balance       decimal.Decimal `json:"balance"`
	AccountNumber string          `json:"account_number"`
	Transactions  []Transaction   `json:"transactions"`
}
