package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"

	apperrors "nutristeck-bank-backend/internal/common/errors"
	"nutristeck-bank-backend/internal/features/deposit/models"
	"nutristeck-bank-backend/internal/features/deposit/repository"
)

type depositRepository struct {
	client *redis.Client
}

func NewDepositRepository(client *redis.Client) repository.DepositRepository {
	return &depositRepository{
		client: client,
	}
}

func depositKey(id string) string {
	return fmt.Sprintf("deposit:%s", id)
}

func (r *depositRepository) set(ctx context.Context, deposit *models.Deposit) error {
	depositJSON, err := json.Marshal(deposit)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeStorage, "marshal deposit")
	}
	if err := r.client.Set(ctx, depositKey(deposit.ID), depositJSON, 0).Err(); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeStorage, "store deposit")
	}
	return nil
}

func (r *depositRepository) Create(ctx context.Context, deposit *models.Deposit) error {
	return r.set(ctx, deposit)
}

func (r *depositRepository) GetByID(ctx context.Context, id string) (*models.Deposit, error) {
	depositJSON, err := r.client.Get(ctx, depositKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, apperrors.New(apperrors.ErrCodeNotFound, "Deposit not found")
		}
		return nil, apperrors.Wrap(err, apperrors.ErrCodeStorage, "load deposit")
	}

	var deposit models.Deposit
	if err := json.Unmarshal(depositJSON, &deposit); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeStorage, "unmarshal deposit")
	}
	return &deposit, nil
}

func (r *depositRepository) Update(ctx context.Context, deposit *models.Deposit) error {
	exists, err := r.client.Exists(ctx, depositKey(deposit.ID)).Result()
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeStorage, "check deposit")
	}
	if exists == 0 {
		return apperrors.New(apperrors.ErrCodeNotFound, "Deposit not found")
	}
	return r.set(ctx, deposit)
}

func (r *depositRepository) scan(ctx context.Context, filter func(*models.Deposit) bool) ([]*models.Deposit, error) {
	deposits := make([]*models.Deposit, 0)

	iter := r.client.Scan(ctx, 0, "deposit:*", 100).Iterator()
	for iter.Next(ctx) {
		deposit, err := r.getByKey(ctx, iter.Val())
		if err != nil {
			if apperrors.Is(err, apperrors.ErrCodeNotFound) {
				continue
			}
			return nil, err
		}
		if filter(deposit) {
			deposits = append(deposits, deposit)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeStorage, "scan deposits")
	}

	sort.Slice(deposits, func(i, j int) bool {
		return deposits[i].CreatedAt.After(deposits[j].CreatedAt)
	})
	return deposits, nil
}

func (r *depositRepository) getByKey(ctx context.Context, key string) (*models.Deposit, error) {
	depositJSON, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, apperrors.New(apperrors.ErrCodeNotFound, "Deposit not found")
		}
		return nil, apperrors.Wrap(err, apperrors.ErrCodeStorage, "load deposit")
	}

	var deposit models.Deposit
	if err := json.Unmarshal(depositJSON, &deposit); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeStorage, "unmarshal deposit")
	}
	return &deposit, nil
}

func (r *depositRepository) ListByStatus(ctx context.Context, status models.DepositStatus) ([]*models.Deposit, error) {
	return r.scan(ctx, func(d *models.Deposit) bool { return d.Status == status })
}

func (r *depositRepository) ListByUser(ctx context.Context, userID string) ([]*models.Deposit, error) {
	return r.scan(ctx, func(d *models.Deposit) bool { return d.UserID == userID })
}

func (r *depositRepository) ListAll(ctx context.Context) ([]*models.Deposit, error) {
	return r.scan(ctx, func(*models.Deposit) bool { return true })
}

type walletRepository struct {
	client *redis.Client
}

func NewWalletRepository(client *redis.Client) repository.WalletRepository {
	return &walletRepository{
		client: client,
	}
}

func walletKey(crypto, network string) string {
	return fmt.Sprintf("wallet:%s_%s", strings.ToLower(crypto), strings.ToLower(network))
}

func (r *walletRepository) Save(ctx context.Context, wallet *models.WalletConfig) error {
	walletJSON, err := json.Marshal(wallet)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeStorage, "marshal wallet")
	}
	if err := r.client.Set(ctx, walletKey(wallet.Crypto, wallet.Network), walletJSON, 0).Err(); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeStorage, "store wallet")
	}
	return nil
}

func (r *walletRepository) Get(ctx context.Context, crypto, network string) (*models.WalletConfig, error) {
	walletJSON, err := r.client.Get(ctx, walletKey(crypto, network)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, apperrors.New(apperrors.ErrCodeNotFound, "Wallet not configured")
		}
		return nil, apperrors.Wrap(err, apperrors.ErrCodeStorage, "load wallet")
	}

	var wallet models.WalletConfig
	if err := json.Unmarshal(walletJSON, &wallet); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeStorage, "unmarshal wallet")
	}
	return &wallet, nil
}

func (r *walletRepository) List(ctx context.Context) ([]*models.WalletConfig, error) {
	wallets := make([]*models.WalletConfig, 0)

	iter := r.client.Scan(ctx, 0, "wallet:*", 100).Iterator()
	for iter.Next(ctx) {
		walletJSON, err := r.client.Get(ctx, iter.Val()).Bytes()
		if err != nil {
			if err == redis.Nil {
				continue
			}
			return nil, apperrors.Wrap(err, apperrors.ErrCodeStorage, "load wallet")
		}
		var wallet models.WalletConfig
		if err := json.Unmarshal(walletJSON, &wallet); err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeStorage, "unmarshal wallet")
		}
		wallets = append(wallets, &wallet)
	}
	if err := iter.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeStorage, "scan wallets")
	}

	sort.Slice(wallets, func(i, j int) bool {
		if wallets[i].Crypto != wallets[j].Crypto {
			return wallets[i].Crypto < wallets[j].Crypto
		}
		return wallets[i].Network < wallets[j].Network
	})
	return wallets, nil
}

func (r *walletRepository) Delete(ctx context.Context, crypto, network string) error {
	deleted, err := r.client.Del(ctx, walletKey(crypto, network)).Result()
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeStorage, "delete wallet")
	}
	if deleted == 0 {
		return apperrors.New(apperrors.ErrCodeNotFound, "Wallet not configured")
	}
	return nil
}
