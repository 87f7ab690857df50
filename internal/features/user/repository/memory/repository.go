package memory

import (
	"context"
	"strings"
	"sync"

	"nutristeck-bank-backend/internal/common/errors"
	"nutristeck-bank-backend/internal/features/user/models"
	"nutristeck-bank-backend/internal/features/user/repository"
)

// userRepository is the in-memory store used in tests and single-node dev runs.
type userRepository struct {
	mu         sync.RWMutex
	byID       map[string]*models.User
	byUsername map[string]string
	byEmail    map[string]string
}

func NewUserRepository() repository.UserRepository {
	return &userRepository{
		byID:       make(map[string]*models.User),
		byUsername: make(map[string]string),
		byEmail:    make(map[string]string),
	}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byUsername[strings.ToLower(user.Username)]; taken {
		return errors.New(errors.ErrCodeConflict, "Username already taken")
	}
	if _, taken := r.byEmail[strings.ToLower(user.Email)]; taken {
		return errors.New(errors.ErrCodeConflict, "Email already registered")
	}

	clone := *user
	r.byID[user.ID] = &clone
	r.byUsername[strings.ToLower(user.Username)] = user.ID
	r.byEmail[strings.ToLower(user.Email)] = user.ID
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "User not found")
	}
	clone := *user
	return &clone, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	r.mu.RLock()
	id, ok := r.byUsername[strings.ToLower(username)]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "User not found")
	}
	return r.GetByID(ctx, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	id, ok := r.byEmail[strings.ToLower(email)]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "User not found")
	}
	return r.GetByID(ctx, id)
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[user.ID]; !ok {
		return errors.New(errors.ErrCodeNotFound, "User not found")
	}
	clone := *user
	r.byID[user.ID] = &clone
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[id]
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "User not found")
	}
	delete(r.byUsername, strings.ToLower(user.Username))
	delete(r.byEmail, strings.ToLower(user.Email))
	delete(r.byID, id)
	return nil
}

func (r *userRepository) List(ctx context.Context) ([]*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]*models.User, 0, len(r.byID))
	for _, user := range r.byID {
		clone := *user
		users = append(users, &clone)
	}
	return users, nil
}
