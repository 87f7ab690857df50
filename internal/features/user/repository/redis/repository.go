package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "nutristeck-bank-backend/internal/common/errors"
	"nutristeck-bank-backend/internal/features/user/models"
	"nutristeck-bank-backend/internal/features/user/repository"
)

type userRepository struct {
	client *redis.Client
}

func NewUserRepository(client *redis.Client) repository.UserRepository {
	return &userRepository{
		client: client,
	}
}

func userKey(id string) string {
	return fmt.Sprintf("user:%s", id)
}

func usernameKey(username string) string {
	return fmt.Sprintf("user:username:%s", strings.ToLower(username))
}

func emailKey(email string) string {
	return fmt.Sprintf("user:email:%s", strings.ToLower(email))
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	// Claim the unique indexes first; SetNX loses against an existing claim.
	ok, err := r.client.SetNX(ctx, usernameKey(user.Username), user.ID, 0).Result()
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeStorage, "claim username")
	}
	if !ok {
		return apperrors.New(apperrors.ErrCodeConflict, "Username already taken")
	}

	ok, err = r.client.SetNX(ctx, emailKey(user.Email), user.ID, 0).Result()
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeStorage, "claim email")
	}
	if !ok {
		r.client.Del(ctx, usernameKey(user.Username))
		return apperrors.New(apperrors.ErrCodeConflict, "Email already registered")
	}

	if err := r.set(ctx, user); err != nil {
		r.client.Del(ctx, usernameKey(user.Username), emailKey(user.Email))
		return err
	}
	return nil
}

func (r *userRepository) set(ctx context.Context, user *models.User) error {
	userJSON, err := json.Marshal(user)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeStorage, "marshal user")
	}
	if err := r.client.Set(ctx, userKey(user.ID), userJSON, 0).Err(); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeStorage, "store user")
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	userJSON, err := r.client.Get(ctx, userKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, apperrors.New(apperrors.ErrCodeNotFound, "User not found")
		}
		return nil, apperrors.Wrap(err, apperrors.ErrCodeStorage, "load user")
	}

	var user models.User
	if err := json.Unmarshal(userJSON, &user); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeStorage, "unmarshal user")
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	id, err := r.client.Get(ctx, usernameKey(username)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, apperrors.New(apperrors.ErrCodeNotFound, "User not found")
		}
		return nil, apperrors.Wrap(err, apperrors.ErrCodeStorage, "resolve username")
	}
	return r.GetByID(ctx, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	id, err := r.client.Get(ctx, emailKey(email)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, apperrors.New(apperrors.ErrCodeNotFound, "User not found")
		}
		return nil, apperrors.Wrap(err, apperrors.ErrCodeStorage, "resolve email")
	}
	return r.GetByID(ctx, id)
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now()
	return r.set(ctx, user)
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	user, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return r.client.Del(ctx,
		userKey(id),
		usernameKey(user.Username),
		emailKey(user.Email),
	).Err()
}

func (r *userRepository) List(ctx context.Context) ([]*models.User, error) {
	var users []*models.User
	iter := r.client.Scan(ctx, 0, "user:*", 0).Iterator()

	for iter.Next(ctx) {
		key := iter.Val()
		// Skip index keys.
		if strings.HasPrefix(key, "user:username:") || strings.HasPrefix(key, "user:email:") {
			continue
		}

		userJSON, err := r.client.Get(ctx, key).Bytes()
		if err != nil {
			continue
		}

		var user models.User
		if err := json.Unmarshal(userJSON, &user); err != nil {
			continue
		}
		users = append(users, &user)
	}

	return users, iter.Err()
}
