package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"nutristeck-bank-backend/internal/common/errors"
	"nutristeck-bank-backend/internal/features/deposit/models"
	"nutristeck-bank-backend/internal/features/deposit/repository"
)

type depositRepository struct {
	mu   sync.RWMutex
	byID map[string]*models.Deposit
}

func NewDepositRepository() repository.DepositRepository {
	return &depositRepository{
		byID: make(map[string]*models.Deposit),
	}
}

func cloneDeposit(d *models.Deposit) *models.Deposit {
	c := *d
	if d.DecidedAt != nil {
		t := *d.DecidedAt
		c.DecidedAt = &t
	}
	return &c
}

func (r *depositRepository) Create(ctx context.Context, deposit *models.Deposit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[deposit.ID]; exists {
		return errors.New(errors.ErrCodeConflict, "Deposit already exists")
	}
	r.byID[deposit.ID] = cloneDeposit(deposit)
	return nil
}

func (r *depositRepository) GetByID(ctx context.Context, id string) (*models.Deposit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	deposit, ok := r.byID[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "Deposit not found")
	}
	return cloneDeposit(deposit), nil
}

func (r *depositRepository) Update(ctx context.Context, deposit *models.Deposit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[deposit.ID]; !ok {
		return errors.New(errors.ErrCodeNotFound, "Deposit not found")
	}
	r.byID[deposit.ID] = cloneDeposit(deposit)
	return nil
}

func (r *depositRepository) list(filter func(*models.Deposit) bool) []*models.Deposit {
	r.mu.RLock()
	defer r.mu.RUnlock()

	deposits := make([]*models.Deposit, 0)
	for _, d := range r.byID {
		if filter(d) {
			deposits = append(deposits, cloneDeposit(d))
		}
	}
	sort.Slice(deposits, func(i, j int) bool {
		return deposits[i].CreatedAt.After(deposits[j].CreatedAt)
	})
	return deposits
}

func (r *depositRepository) ListByStatus(ctx context.Context, status models.DepositStatus) ([]*models.Deposit, error) {
	return r.list(func(d *models.Deposit) bool { return d.Status == status }), nil
}

func (r *depositRepository) ListByUser(ctx context.Context, userID string) ([]*models.Deposit, error) {
	return r.list(func(d *models.Deposit) bool { return d.UserID == userID }), nil
}

func (r *depositRepository) ListAll(ctx context.Context) ([]*models.Deposit, error) {
	return r.list(func(*models.Deposit) bool { return true }), nil
}

type walletRepository struct {
	mu     sync.RWMutex
	byPair map[string]*models.WalletConfig
}

func NewWalletRepository() repository.WalletRepository {
	return &walletRepository{
		byPair: make(map[string]*models.WalletConfig),
	}
}

func walletKey(crypto, network string) string {
	return strings.ToLower(crypto) + "_" + strings.ToLower(network)
}

func (r *walletRepository) Save(ctx context.Context, wallet *models.WalletConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := *wallet
	r.byPair[walletKey(wallet.Crypto, wallet.Network)] = &c
	return nil
}

func (r *walletRepository) Get(ctx context.Context, crypto, network string) (*models.WalletConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wallet, ok := r.byPair[walletKey(crypto, network)]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "Wallet not configured")
	}
	c := *wallet
	return &c, nil
}

func (r *walletRepository) List(ctx context.Context) ([]*models.WalletConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wallets := make([]*models.WalletConfig, 0, len(r.byPair))
	for _, w := range r.byPair {
		c := *w
		wallets = append(wallets, &c)
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
	r.mu.Lock()
	defer r.mu.Unlock()

	key := walletKey(crypto, network)
	if _, ok := r.byPair[key]; !ok {
		return errors.New(errors.ErrCodeNotFound, "Wallet not configured")
	}
	delete(r.byPair, key)
	return nil
}
