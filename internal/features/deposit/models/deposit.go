package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type DepositStatus string

const (
	StatusPending  DepositStatus = "pending"
	StatusApproved DepositStatus = "approved"
	StatusRejected DepositStatus = "rejected"
)

type DepositMethod string

const (
	MethodMobileCheck DepositMethod = "mobile_check"
	MethodCrypto      DepositMethod = "crypto"
)

// Deposit is a funding request waiting for an admin decision. Status moves
// from pending to exactly one of approved or rejected, never back.
type Deposit struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Username  string          `json:"username"`
	Method    DepositMethod   `json:"method"`
	Amount    decimal.Decimal `json:"amount"`
	Status    DepositStatus   `json:"status"`
	DecidedBy string          `json:"decided_by,omitempty"`
	Reason    string          `json:"reason,omitempty"`

	// LinkCode captured at submit time, used to notify the outcome.
	LinkCode string `json:"link_code,omitempty"`

	// Mobile check fields.
	CheckFront string `json:"check_front,omitempty"`
	CheckBack  string `json:"check_back,omitempty"`

	// Crypto fields.
	Crypto  string `json:"crypto,omitempty"`
	Network string `json:"network,omitempty"`
	TxHash  string `json:"tx_hash,omitempty"`

	CreatedAt time.Time  `json:"created_at"`
	DecidedAt *time.Time `json:"decided_at,omitempty"`
}

// WalletConfig is an admin-managed receiving address, keyed by the
// (crypto, network) pair: the same network can carry several assets.
type WalletConfig struct {
	Crypto    string    `json:"crypto"`
	Network   string    `json:"network"`
	Address   string    `json:"address"`
	Label     string    `json:"label"`
	Active    bool      `json:"active"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SubmitDepositRequest is shared by both funding endpoints; the route fixes
// the method, the body carries the method-specific fields.
type SubmitDepositRequest struct {
	Method     DepositMethod   `json:"-"`
	Amount     decimal.Decimal `json:"amount" binding:"required"`
	CheckFront string          `json:"check_front"`
	CheckBack  string          `json:"check_back"`
	Crypto     string          `json:"crypto"`
	Network    string          `json:"network"`
	TxHash     string          `json:"tx_hash"`
}

type DecideDepositRequest struct {
	DepositID string `json:"deposit_id" binding:"required"`
	Approve   bool   `json:"approve"`
	Reason    string `json:"reason"`
}

// WalletLookupRequest asks for the active receiving address of one asset on
// one network.
type WalletLookupRequest struct {
	Crypto  string `json:"crypto" binding:"required"`
	Network string `json:"network" binding:"required"`
}

type SaveWalletRequest struct {
	Crypto  string `json:"crypto" binding:"required"`
	Network string `json:"network" binding:"required"`
	Address string `json:"address" binding:"required"`
	Label   string `json:"label"`
	Active  bool   `json:"active"`
}
