package memory

import (
	"context"
	"sync"

	"nutristeck-bank-backend/internal/common/errors"
	"nutristeck-bank-backend/internal/features/ledger/models"
	"nutristeck-bank-backend/internal/features/ledger/repository"
)

type accountRepository struct {
	mu       sync.RWMutex
	byID     map[string]*models.Account
	byUserID map[string]string
}

func NewAccountRepository() repository.AccountRepository {
	return &accountRepository{
		byID:     make(map[string]*models.Account),
		byUserID: make(map[string]string),
	}
}

func clone(account *models.Account) *models.Account {
	c := *account
	c.Transactions = make([]models.Transaction, len(account.Transactions))
	copy(c.Transactions, account.Transactions)
	return &c
}

func (r *accountRepository) Create(ctx context.Context, account *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byUserID[account.UserID]; exists {
		return errors.New(errors.ErrCodeConflict, "Account already exists for user")
	}
	r.byID[account.ID] = clone(account)
	r.byUserID[account.UserID] = account.ID
	return nil
}

func (r *accountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, ok := r.byID[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "Account not found")
	}
	return clone(account), nil
}

func (r *accountRepository) GetByUserID(ctx context.Context, userID string) (*models.Account, error) {
	r.mu.RLock()
	id, ok := r.byUserID[userID]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "Account not found")
	}
	return r.GetByID(ctx, id)
}

func (r *accountRepository) Save(ctx context.Context, account *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[account.ID]; !ok {
		return errors.New(errors.ErrCodeNotFound, "Account not found")
	}
	r.byID[account.ID] = clone(account)
	return nil
}
