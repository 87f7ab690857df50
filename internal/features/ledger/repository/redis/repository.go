package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "nutristeck-bank-backend/internal/common/errors"
	"nutristeck-bank-backend/internal/features/ledger/models"
	"nutristeck-bank-backend/internal/features/ledger/repository"
)

type accountRepository struct {
	client *redis.Client
}

func NewAccountRepository(client *redis.Client) repository.AccountRepository {
	return &accountRepository{
		client: client,
	}
}

func accountKey(id string) string {
	return fmt.Sprintf("account:%s", id)
}

func accountUserKey(userID string) string {
	return fmt.Sprintf("account:user:%s", userID)
}

func (r *accountRepository) Create(ctx context.Context, account *models.Account) error {
	ok, err := r.client.SetNX(ctx, accountUserKey(account.UserID), account.ID, 0).Result()
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeStorage, "claim account index")
	}
	if !ok {
		return apperrors.New(apperrors.ErrCodeConflict, "Account already exists for user")
	}

	if err := r.set(ctx, account); err != nil {
		r.client.Del(ctx, accountUserKey(account.UserID))
		return err
	}
	return nil
}

func (r *accountRepository) set(ctx context.Context, account *models.Account) error {
	accountJSON, err := json.Marshal(account)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeStorage, "marshal account")
	}
	if err := r.client.Set(ctx, accountKey(account.ID), accountJSON, 0).Err(); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeStorage, "store account")
	}
	return nil
}

func (r *accountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	accountJSON, err := r.client.Get(ctx, accountKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, apperrors.New(apperrors.ErrCodeNotFound, "Account not found")
		}
		return nil, apperrors.Wrap(err, apperrors.ErrCodeStorage, "load account")
	}

	var account models.Account
	if err := json.Unmarshal(accountJSON, &account); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeStorage, "unmarshal account")
	}
	return &account, nil
}

func (r *accountRepository) GetByUserID(ctx context.Context, userID string) (*models.Account, error) {
	id, err := r.client.Get(ctx, accountUserKey(userID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, apperrors.New(apperrors.ErrCodeNotFound, "Account not found")
		}
		return nil, apperrors.Wrap(err, apperrors.ErrCodeStorage, "resolve account")
	}
	return r.GetByID(ctx, id)
}

func (r *accountRepository) Save(ctx context.Context, account *models.Account) error {
	account.UpdatedAt = time.Now()
	return r.set(ctx, account)
}
