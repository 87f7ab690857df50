package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutristeck-bank-backend/internal/common/errors"
	"nutristeck-bank-backend/internal/features/deposit/models"
	"nutristeck-bank-backend/internal/features/deposit/repository/memory"
	"nutristeck-bank-backend/internal/features/deposit/service"
	ledgermodels "nutristeck-bank-backend/internal/features/ledger/models"
	ledgermemory "nutristeck-bank-backend/internal/features/ledger/repository/memory"
	ledgerservice "nutristeck-bank-backend/internal/features/ledger/service"
)

type noopNotifier struct{}

func (noopNotifier) Notify(linkCode, text string) {}

type fixture struct {
	deposits service.DepositService
	ledger   ledgerservice.LedgerService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ledger := ledgerservice.NewLedgerService(ledgermemory.NewAccountRepository(), noopNotifier{})
	require.NoError(t, ledger.Open(context.Background(), "user-1"))

	deposits := service.NewDepositService(
		memory.NewDepositRepository(),
		memory.NewWalletRepository(),
		ledger,
		noopNotifier{},
	)
	return &fixture{deposits: deposits, ledger: ledger}
}

func (f *fixture) submitCheck(t *testing.T, amount string) *models.Deposit {
	t.Helper()

	deposit, err := f.deposits.Submit(context.Background(), "user-1", "alice", "", &models.SubmitDepositRequest{
		Method:     models.MethodMobileCheck,
		Amount:     decimal.RequireFromString(amount),
		CheckFront: "front.jpg",
		CheckBack:  "back.jpg",
	})
	require.NoError(t, err)
	return deposit
}

func TestSubmitStartsPending(t *testing.T) {
	f := newFixture(t)

	deposit := f.submitCheck(t, "200.00")
	assert.Equal(t, models.StatusPending, deposit.Status)
	assert.Empty(t, deposit.DecidedBy)
	assert.Nil(t, deposit.DecidedAt)

	// Pending deposits never touch the balance.
	account, err := f.ledger.AccountByUserID(context.Background(), "user-1")
	require.NoError(t, err)
	assert.True(t, account.Balance.IsZero())
}

func TestSubmitValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name string
		req  models.SubmitDepositRequest
	}{
		{"zero amount", models.SubmitDepositRequest{
			Method: models.MethodMobileCheck, Amount: decimal.Zero,
			CheckFront: "f.jpg", CheckBack: "b.jpg",
		}},
		{"negative amount", models.SubmitDepositRequest{
			Method: models.MethodMobileCheck, Amount: decimal.RequireFromString("-10"),
			CheckFront: "f.jpg", CheckBack: "b.jpg",
		}},
		{"missing check image", models.SubmitDepositRequest{
			Method: models.MethodMobileCheck, Amount: decimal.RequireFromString("10"),
			CheckFront: "f.jpg",
		}},
		{"unknown method", models.SubmitDepositRequest{
			Method: "wire", Amount: decimal.RequireFromString("10"),
		}},
		{"crypto without wallet", models.SubmitDepositRequest{
			Method: models.MethodCrypto, Amount: decimal.RequireFromString("10"),
			Crypto: "btc", Network: "bitcoin", TxHash: "abc123",
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.deposits.Submit(ctx, "user-1", "alice", "", &tc.req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeValidation))
		})
	}
}

func TestCryptoDepositNeedsActiveWallet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.deposits.SaveWallet(ctx, &models.SaveWalletRequest{
		Crypto: "btc", Network: "bitcoin", Address: "bc1qtest", Active: false,
	})
	require.NoError(t, err)

	req := &models.SubmitDepositRequest{
		Method:  models.MethodCrypto,
		Amount:  decimal.RequireFromString("50.00"),
		Crypto:  "btc",
		Network: "bitcoin",
		TxHash:  "abc123",
	}
	_, err = f.deposits.Submit(ctx, "user-1", "alice", "", req)
	require.Error(t, err)

	_, err = f.deposits.SaveWallet(ctx, &models.SaveWalletRequest{
		Crypto: "btc", Network: "bitcoin", Address: "bc1qtest", Active: true,
	})
	require.NoError(t, err)

	deposit, err := f.deposits.Submit(ctx, "user-1", "alice", "", req)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, deposit.Status)
}

func TestApproveCreditsOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	deposit := f.submitCheck(t, "150.00")

	decided, err := f.deposits.Decide(ctx, deposit.ID, "admin-1", true, "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, decided.Status)
	assert.Equal(t, "admin-1", decided.DecidedBy)
	require.NotNil(t, decided.DecidedAt)

	account, err := f.ledger.AccountByUserID(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, account.Balance.Equal(decimal.RequireFromString("150.00")))
	require.Len(t, account.Transactions, 1)
	assert.Equal(t, "Deposit approved", account.Transactions[0].Description)

	// Second decision in either direction is rejected.
	_, err = f.deposits.Decide(ctx, deposit.ID, "admin-1", true, "")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidTransition))
	_, err = f.deposits.Decide(ctx, deposit.ID, "admin-1", false, "bad scan")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidTransition))

	account, err = f.ledger.AccountByUserID(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, account.Balance.Equal(decimal.RequireFromString("150.00")))
}

func TestRejectNeverCredits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	deposit := f.submitCheck(t, "99.00")

	decided, err := f.deposits.Decide(ctx, deposit.ID, "admin-1", false, "bad scan")
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, decided.Status)

	account, err := f.ledger.AccountByUserID(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, account.Balance.IsZero())
	assert.Empty(t, account.Transactions)
}

func TestConcurrentDecideSettlesOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	deposit := f.submitCheck(t, "500.00")

	// Race approvals against rejections: exactly one outcome may stick.
	var wg sync.WaitGroup
	results := make([]error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = f.deposits.Decide(ctx, deposit.ID, "admin-1", i%2 == 0, "")
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
		} else {
			assert.True(t, errors.Is(err, errors.ErrCodeInvalidTransition))
		}
	}
	require.Equal(t, 1, succeeded)

	// The recorded state and the ledger must agree: one credit if approved,
	// none if rejected, never both.
	settled, err := f.deposits.Get(ctx, deposit.ID)
	require.NoError(t, err)
	account, err := f.ledger.AccountByUserID(ctx, "user-1")
	require.NoError(t, err)

	switch settled.Status {
	case models.StatusApproved:
		assert.True(t, account.Balance.Equal(decimal.RequireFromString("500.00")))
		assert.Len(t, account.Transactions, 1)
	case models.StatusRejected:
		assert.True(t, account.Balance.IsZero())
		assert.Empty(t, account.Transactions)
	default:
		t.Fatalf("deposit left in non-terminal state %q", settled.Status)
	}
}

// Decisions on unrelated deposits do not contend; both settle and both
// credits land.
func TestConcurrentDecideDistinctDeposits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.submitCheck(t, "25.00")
	second := f.submitCheck(t, "75.00")

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i, id := range []string{first.ID, second.ID} {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			_, results[i] = f.deposits.Decide(ctx, id, "admin-1", true, "")
		}(i, id)
	}
	wg.Wait()

	require.NoError(t, results[0])
	require.NoError(t, results[1])

	account, err := f.ledger.AccountByUserID(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, account.Balance.Equal(decimal.RequireFromString("100.00")))
	assert.Len(t, account.Transactions, 2)
}

func TestDecideUnknownDeposit(t *testing.T) {
	f := newFixture(t)

	_, err := f.deposits.Decide(context.Background(), "missing", "admin-1", true, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound))
}

func TestListingsFilterAndOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.submitCheck(t, "10.00")
	second := f.submitCheck(t, "20.00")
	f.submitCheck(t, "30.00")

	_, err := f.deposits.Decide(ctx, second.ID, "admin-1", false, "")
	require.NoError(t, err)

	pending, err := f.deposits.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	for _, d := range pending {
		assert.Equal(t, models.StatusPending, d.Status)
	}

	all, err := f.deposits.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.False(t, all[0].CreatedAt.Before(all[1].CreatedAt))
	assert.False(t, all[1].CreatedAt.Before(all[2].CreatedAt))

	mine, err := f.deposits.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, mine, 3)
}

// Full funding-and-spending walkthrough: seed 100.00, race two 60.00
// transfers, then approve another 60.00 deposit.
func TestDepositTransferScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	seed := f.submitCheck(t, "100.00")
	_, err := f.deposits.Decide(ctx, seed.ID, "admin-1", true, "")
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = f.ledger.Transfer(ctx, "user-1", "", &ledgermodels.TransferRequest{
				Recipient: "bob",
				Amount:    decimal.RequireFromString("60.00"),
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
		} else {
			assert.True(t, errors.Is(err, errors.ErrCodeInsufficientFunds))
		}
	}
	require.Equal(t, 1, succeeded)

	topup := f.submitCheck(t, "60.00")
	_, err = f.deposits.Decide(ctx, topup.ID, "admin-1", true, "")
	require.NoError(t, err)

	account, err := f.ledger.AccountByUserID(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, account.Balance.Equal(decimal.RequireFromString("100.00")))

	// Newest first: the top-up leads, the seed deposit closes the log.
	require.Len(t, account.Transactions, 3)
	assert.Equal(t, "Deposit approved", account.Transactions[0].Description)
	assert.Equal(t, "Money sent to bob", account.Transactions[1].Description)
	assert.Equal(t, "Deposit approved", account.Transactions[2].Description)

	sum := decimal.Zero
	for _, tx := range account.Transactions {
		sum = sum.Add(tx.Amount)
	}
	assert.True(t, account.Balance.Equal(sum))
}

func TestActiveWalletLookup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.deposits.SaveWallet(ctx, &models.SaveWalletRequest{Crypto: "btc", Network: "bitcoin", Address: "bc1q", Label: "Bitcoin", Active: true})
	require.NoError(t, err)
	_, err = f.deposits.SaveWallet(ctx, &models.SaveWalletRequest{Crypto: "eth", Network: "ethereum", Address: "0xabc", Active: false})
	require.NoError(t, err)

	all, err := f.deposits.ListWallets(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	wallet, err := f.deposits.ActiveWallet(ctx, "btc", "bitcoin")
	require.NoError(t, err)
	assert.Equal(t, "bc1q", wallet.Address)
	assert.Equal(t, "Bitcoin", wallet.Label)

	// Inactive and unconfigured pairs are indistinguishable.
	_, err = f.deposits.ActiveWallet(ctx, "eth", "ethereum")
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound))
	_, err = f.deposits.ActiveWallet(ctx, "doge", "dogecoin")
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound))

	require.NoError(t, f.deposits.DeleteWallet(ctx, "btc", "bitcoin"))
	_, err = f.deposits.ActiveWallet(ctx, "btc", "bitcoin")
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound))

	err = f.deposits.DeleteWallet(ctx, "btc", "bitcoin")
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound))
}

// Two assets on the same network must keep separate configurations;
// saving one never clobbers the other.
func TestWalletsKeyedByCryptoAndNetwork(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.deposits.SaveWallet(ctx, &models.SaveWalletRequest{
		Crypto: "usdt", Network: "ethereum", Address: "0xusdt", Label: "USDT (ERC-20)", Active: true,
	})
	require.NoError(t, err)
	_, err = f.deposits.SaveWallet(ctx, &models.SaveWalletRequest{
		Crypto: "eth", Network: "ethereum", Address: "0xeth", Label: "Ether", Active: true,
	})
	require.NoError(t, err)

	all, err := f.deposits.ListWallets(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	usdt, err := f.deposits.ActiveWallet(ctx, "usdt", "ethereum")
	require.NoError(t, err)
	assert.Equal(t, "0xusdt", usdt.Address)
	assert.Equal(t, "USDT (ERC-20)", usdt.Label)

	eth, err := f.deposits.ActiveWallet(ctx, "eth", "ethereum")
	require.NoError(t, err)
	assert.Equal(t, "0xeth", eth.Address)
	assert.Equal(t, "Ether", eth.Label)

	// Deleting one asset leaves the other pair untouched.
	require.NoError(t, f.deposits.DeleteWallet(ctx, "usdt", "ethereum"))
	_, err = f.deposits.ActiveWallet(ctx, "usdt", "ethereum")
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound))
	_, err = f.deposits.ActiveWallet(ctx, "eth", "ethereum")
	require.NoError(t, err)
}
