package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"nutristeck-bank-backend/internal/common/errors"
	"nutristeck-bank-backend/internal/common/logger"
	"nutristeck-bank-backend/internal/features/ledger/models"
	"nutristeck-bank-backend/internal/features/ledger/repository"
)

// Notifier pushes best-effort messages keyed by link code.
type Notifier interface {
	Notify(linkCode, text string)
}

type LedgerService interface {
	Open(ctx context.Context, userID string) error
	Apply(ctx context.Context, accountID string, delta decimal.Decimal, description string) (*models.Transaction, decimal.Decimal, error)
	History(ctx context.Context, accountID string, limit int) ([]models.Transaction, error)
	Dashboard(ctx context.Context, userID string) (*models.DashboardResponse, error)
	AccountByUserID(ctx context.Context, userID string) (*models.Account, error)
	Transfer(ctx context.Context, userID, linkCode string, req *models.TransferRequest) (*models.MutationResponse, error)
	PayBill(ctx context.Context, userID, linkCode string, req *models.BillPayRequest) (*models.MutationResponse, error)
}

type ledgerService struct {
	repo     repository.AccountRepository
	notifier Notifier

	// Per-account mutation locks. Cross-account operations never share a lock.
	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

func NewLedgerService(repo repository.AccountRepository, notifier Notifier) LedgerService {
	return &ledgerService{
		repo:     repo,
		notifier: notifier,
		locks:    make(map[string]*sync.Mutex),
	}
}

func (s *ledgerService) accountLock(accountID string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	lock, ok := s.locks[accountID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[accountID] = lock
	}
	return lock
}

// Open creates the zero-balance account backing a new user.
func (s *ledgerService) Open(ctx context.Context, userID string) error {
	number, err := generateAccountNumber()
	if err != nil {
		return err
	}

	now := time.Now()
	account := &models.Account{
		ID:           uuid.New().String(),
		UserID:       userID,
		Number:       number,
		Balance:      decimal.Zero,
		Transactions: []models.Transaction{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return s.repo.Create(ctx, account)
}

// Apply is the single mutation entry point: it updates the balance and
// appends the transaction as one logical operation, serialized per account.
// Debits that would take the balance below zero fail with InsufficientFunds.
func (s *ledgerService) Apply(ctx context.Context, accountID string, delta decimal.Decimal, description string) (*models.Transaction, decimal.Decimal, error) {
	lock := s.accountLock(accountID)
	lock.Lock()
	defer lock.Unlock()

	account, err := s.repo.GetByID(ctx, accountID)
	if err != nil {
		return nil, decimal.Zero, err
	}

	newBalance := account.Balance.Add(delta)
	if newBalance.IsNegative() {
		return nil, decimal.Zero, errors.New(errors.ErrCodeInsufficientFunds, "Insufficient funds")
	}

	tx := models.Transaction{
		ID:          uuid.New().String(),
		Timestamp:   time.Now(),
		Description: description,
		Amount:      delta,
	}

	account.Balance = newBalance
	// Newest first, append-only.
	account.Transactions = append([]models.Transaction{tx}, account.Transactions...)
	account.UpdatedAt = tx.Timestamp

	if err := s.repo.Save(ctx, account); err != nil {
		return nil, decimal.Zero, err
	}

	logger.Info().
		Str("account_id", accountID).
		Str("amount", delta.String()).
		Str("balance", newBalance.String()).
		Str("description", description).
		Msg("Ledger entry applied")
	return &tx, newBalance, nil
}

// History returns the transaction log newest-first. Pure read.
func (s *ledgerService) History(ctx context.Context, accountID string, limit int) ([]models.Transaction, error) {
	account, err := s.repo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	txs := account.Transactions
	if limit > 0 && limit < len(txs) {
		txs = txs[:limit]
	}
	return txs, nil
}

func (s *ledgerService) AccountByUserID(ctx context.Context, userID string) (*models.Account, error) {
	return s.repo.GetByUserID(ctx, userID)
}

func (s *ledgerService) Dashboard(ctx context.Context, userID string) (*models.DashboardResponse, error) {
	account, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &models.DashboardResponse{
		Balance:       account.Balance,
		AccountNumber: account.MaskedNumber(),
		Transactions:  account.Transactions,
	}, nil
}

// Transfer debits the caller for a peer payment and notifies best-effort.
func (s *ledgerService) Transfer(ctx context.Context, userID, linkCode string, req *models.TransferRequest) (*models.MutationResponse, error) {
	if !req.Amount.IsPositive() {
		return nil, errors.New(errors.ErrCodeValidation, "Amount must be positive")
	}

	account, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	description := fmt.Sprintf("Money sent to %s", req.Recipient)
	if req.Memo != "" {
		description += " - " + req.Memo
	}

	tx, newBalance, err := s.Apply(ctx, account.ID, req.Amount.Neg(), description)
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(linkCode, fmt.Sprintf(
		"💸 *Money Sent*\nAmount: $%s\nTo: %s\nNew Balance: $%s",
		req.Amount.StringFixed(2), req.Recipient, newBalance.StringFixed(2),
	))
	return &models.MutationResponse{NewBalance: newBalance, Transaction: *tx}, nil
}

// PayBill debits the caller for a bill payment and notifies best-effort.
func (s *ledgerService) PayBill(ctx context.Context, userID, linkCode string, req *models.BillPayRequest) (*models.MutationResponse, error) {
	if !req.Amount.IsPositive() {
		return nil, errors.New(errors.ErrCodeValidation, "Amount must be positive")
	}

	account, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	tx, newBalance, err := s.Apply(ctx, account.ID, req.Amount.Neg(), fmt.Sprintf("Bill payment to %s", req.Payee))
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(linkCode, fmt.Sprintf(
		"💳 *Bill Payment*\nPayee: %s\nAmount: $%s\nNew Balance: $%s",
		req.Payee, req.Amount.StringFixed(2), newBalance.StringFixed(2),
	))
	return &models.MutationResponse{NewBalance: newBalance, Transaction: *tx}, nil
}

// generateAccountNumber returns a 10-digit account number.
func generateAccountNumber() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9_000_000_000))
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeInternal, "generate account number")
	}
	return fmt.Sprintf("%d", n.Int64()+1_000_000_000), nil
}
