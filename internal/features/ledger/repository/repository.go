package repository

import (
	"context"

	"nutristeck-bank-backend/internal/features/ledger/models"
)

// AccountRepository stores one account per user. Save persists the whole
// account including its transaction log; callers serialize access per account.
type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	GetByID(ctx context.Context, id string) (*models.Account, error)
	GetByUserID(ctx context.Context, userID string) (*models.Account, error)
	Save(ctx context.Context, account *models.Account) error
}
