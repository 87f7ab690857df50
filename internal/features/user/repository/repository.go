package repository

import (
	"context"

	"nutristeck-bank-backend/internal/features/user/models"
)

// UserRepository stores user records keyed by id with unique username/email.
// Create must fail with a Conflict error when either is already taken.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*models.User, error)
}
