package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"nutristeck-bank-backend/internal/common/errors"
	"nutristeck-bank-backend/internal/common/logger"
	"nutristeck-bank-backend/internal/features/deposit/models"
	"nutristeck-bank-backend/internal/features/deposit/repository"
	ledgermodels "nutristeck-bank-backend/internal/features/ledger/models"
)

// Ledger is the slice of the ledger service deposits need to credit funds.
type Ledger interface {
	AccountByUserID(ctx context.Context, userID string) (*ledgermodels.Account, error)
	Apply(ctx context.Context, accountID string, delta decimal.Decimal, description string) (*ledgermodels.Transaction, decimal.Decimal, error)
}

type Notifier interface {
	Notify(linkCode, text string)
}

type DepositService interface {
	Submit(ctx context.Context, userID, username, linkCode string, req *models.SubmitDepositRequest) (*models.Deposit, error)
	Decide(ctx context.Context, depositID, adminID string, approve bool, reason string) (*models.Deposit, error)
	Get(ctx context.Context, depositID string) (*models.Deposit, error)
	ListPending(ctx context.Context) ([]*models.Deposit, error)
	ListAll(ctx context.Context) ([]*models.Deposit, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Deposit, error)
	SaveWallet(ctx context.Context, req *models.SaveWalletRequest) (*models.WalletConfig, error)
	ListWallets(ctx context.Context) ([]*models.WalletConfig, error)
	ActiveWallet(ctx context.Context, crypto, network string) (*models.WalletConfig, error)
	DeleteWallet(ctx context.Context, crypto, network string) error
}

type depositService struct {
	deposits repository.DepositRepository
	wallets  repository.WalletRepository
	ledger   Ledger
	notifier Notifier

	// Per-deposit locks so a deposit is settled exactly once without
	// serializing decisions on unrelated deposits.
	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

func NewDepositService(deposits repository.DepositRepository, wallets repository.WalletRepository, ledger Ledger, notifier Notifier) DepositService {
	return &depositService{
		deposits: deposits,
		wallets:  wallets,
		ledger:   ledger,
		notifier: notifier,
		locks:    make(map[string]*sync.Mutex),
	}
}

func (s *depositService) depositLock(depositID string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	lock, ok := s.locks[depositID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[depositID] = lock
	}
	return lock
}

func (s *depositService) Submit(ctx context.Context, userID, username, linkCode string, req *models.SubmitDepositRequest) (*models.Deposit, error) {
	if !req.Amount.IsPositive() {
		return nil, errors.New(errors.ErrCodeValidation, "Amount must be positive")
	}

	switch req.Method {
	case models.MethodMobileCheck:
		if req.CheckFront == "" || req.CheckBack == "" {
			return nil, errors.New(errors.ErrCodeValidation, "Both check images are required")
		}
	case models.MethodCrypto:
		if req.TxHash == "" {
			return nil, errors.New(errors.ErrCodeValidation, "Transaction hash is required")
		}
		wallet, err := s.wallets.Get(ctx, req.Crypto, req.Network)
		if err != nil {
			return nil, errors.New(errors.ErrCodeValidation, "Unsupported network")
		}
		if !wallet.Active {
			return nil, errors.New(errors.ErrCodeValidation, "Wallet is not accepting deposits")
		}
	default:
		return nil, errors.New(errors.ErrCodeValidation, "Unknown deposit method")
	}

	deposit := &models.Deposit{
		ID:         uuid.New().String(),
		UserID:     userID,
		Username:   username,
		Method:     req.Method,
		Amount:     req.Amount,
		Status:     models.StatusPending,
		LinkCode:   linkCode,
		CheckFront: req.CheckFront,
		CheckBack:  req.CheckBack,
		Crypto:     req.Crypto,
		Network:    req.Network,
		TxHash:     req.TxHash,
		CreatedAt:  time.Now(),
	}
	if err := s.deposits.Create(ctx, deposit); err != nil {
		return nil, err
	}

	logger.Info().
		Str("deposit_id", deposit.ID).
		Str("user_id", userID).
		Str("method", string(req.Method)).
		Str("amount", req.Amount.String()).
		Msg("Deposit submitted")

	s.notifier.Notify(linkCode, fmt.Sprintf(
		"🏦 *Deposit Submitted*\nAmount: $%s\nYour deposit is pending review.",
		req.Amount.StringFixed(2),
	))
	return deposit, nil
}

// Decide settles a pending deposit. A deposit is decided at most once;
// a second call fails with InvalidTransition regardless of direction.
func (s *depositService) Decide(ctx context.Context, depositID, adminID string, approve bool, reason string) (*models.Deposit, error) {
	lock := s.depositLock(depositID)
	lock.Lock()
	defer lock.Unlock()

	deposit, err := s.deposits.GetByID(ctx, depositID)
	if err != nil {
		return nil, err
	}
	if deposit.Status != models.StatusPending {
		return nil, errors.Newf(errors.ErrCodeInvalidTransition, "Deposit already %s", deposit.Status)
	}

	if approve {
		account, err := s.ledger.AccountByUserID(ctx, deposit.UserID)
		if err != nil {
			return nil, err
		}
		if _, _, err := s.ledger.Apply(ctx, account.ID, deposit.Amount, "Deposit approved"); err != nil {
			return nil, err
		}
		deposit.Status = models.StatusApproved
	} else {
		deposit.Status = models.StatusRejected
		deposit.Reason = reason
	}

	now := time.Now()
	deposit.DecidedBy = adminID
	deposit.DecidedAt = &now

	if err := s.deposits.Update(ctx, deposit); err != nil {
		// The credit has already landed; surface the inconsistency loudly.
		logger.Error().Err(err).
			Str("deposit_id", depositID).
			Str("status", string(deposit.Status)).
			Msg("Failed to persist deposit decision")
		return nil, err
	}

	logger.Info().
		Str("deposit_id", depositID).
		Str("admin_id", adminID).
		Str("status", string(deposit.Status)).
		Msg("Deposit decided")

	if deposit.LinkCode != "" {
		if approve {
			s.notifier.Notify(deposit.LinkCode, fmt.Sprintf(
				"✅ *Deposit Approved*\nAmount: $%s has been credited to your account.",
				deposit.Amount.StringFixed(2),
			))
		} else {
			text := fmt.Sprintf("❌ *Deposit Rejected*\nYour deposit of $%s was not approved.", deposit.Amount.StringFixed(2))
			if reason != "" {
				text += "\nReason: " + reason
			}
			s.notifier.Notify(deposit.LinkCode, text)
		}
	}
	return deposit, nil
}

func (s *depositService) Get(ctx context.Context, depositID string) (*models.Deposit, error) {
	return s.deposits.GetByID(ctx, depositID)
}

func (s *depositService) ListPending(ctx context.Context) ([]*models.Deposit, error) {
	return s.deposits.ListByStatus(ctx, models.StatusPending)
}

func (s *depositService) ListAll(ctx context.Context) ([]*models.Deposit, error) {
	return s.deposits.ListAll(ctx)
}

func (s *depositService) ListByUser(ctx context.Context, userID string) ([]*models.Deposit, error) {
	return s.deposits.ListByUser(ctx, userID)
}

func (s *depositService) SaveWallet(ctx context.Context, req *models.SaveWalletRequest) (*models.WalletConfig, error) {
	wallet := &models.WalletConfig{
		Crypto:    req.Crypto,
		Network:   req.Network,
		Address:   req.Address,
		Label:     req.Label,
		Active:    req.Active,
		UpdatedAt: time.Now(),
	}
	if err := s.wallets.Save(ctx, wallet); err != nil {
		return nil, err
	}
	return wallet, nil
}

func (s *depositService) ListWallets(ctx context.Context) ([]*models.WalletConfig, error) {
	return s.wallets.List(ctx)
}

// ActiveWallet is the user-facing lookup: a pair that is unconfigured or
// switched off looks identical, both are NotFound.
func (s *depositService) ActiveWallet(ctx context.Context, crypto, network string) (*models.WalletConfig, error) {
	wallet, err := s.wallets.Get(ctx, crypto, network)
	if err != nil {
		return nil, err
	}
	if !wallet.Active {
		return nil, errors.New(errors.ErrCodeNotFound, "Wallet not configured")
	}
	return wallet, nil
}

func (s *depositService) DeleteWallet(ctx context.Context, crypto, network string) error {
	return s.wallets.Delete(ctx, crypto, network)
}
