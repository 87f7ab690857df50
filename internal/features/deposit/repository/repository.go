package repository

import (
	"context"

	"nutristeck-bank-backend/internal/features/deposit/models"
)

// DepositRepository stores funding requests. Listings return newest first.
type DepositRepository interface {
	Create(ctx context.Context, deposit *models.Deposit) error
	GetByID(ctx context.Context, id string) (*models.Deposit, error)
	Update(ctx context.Context, deposit *models.Deposit) error
	ListByStatus(ctx context.Context, status models.DepositStatus) ([]*models.Deposit, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Deposit, error)
	ListAll(ctx context.Context) ([]*models.Deposit, error)
}

// WalletRepository stores receiving addresses keyed by the (crypto, network)
// pair, so several assets can live on the same network.
type WalletRepository interface {
	Save(ctx context.Context, wallet *models.WalletConfig) error
	Get(ctx context.Context, crypto, network string) (*models.WalletConfig, error)
	List(ctx context.Context) ([]*models.WalletConfig, error)
	Delete(ctx context.Context, crypto, network string) error
}
