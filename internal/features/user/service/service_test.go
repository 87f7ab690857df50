package service_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutristeck-bank-backend/internal/common/errors"
	ledgermemory "nutristeck-bank-backend/internal/features/ledger/repository/memory"
	ledgerservice "nutristeck-bank-backend/internal/features/ledger/service"
	"nutristeck-bank-backend/internal/features/user/models"
	"nutristeck-bank-backend/internal/features/user/repository"
	"nutristeck-bank-backend/internal/features/user/repository/memory"
	"nutristeck-bank-backend/internal/features/user/service"
)

var otpPattern = regexp.MustCompile(`\b([0-9]{6})\b`)

// captureSender records outgoing mail so tests can read the OTP.
type captureSender struct {
	to      string
	lastOTP string
	fail    bool
}

func (s *captureSender) Send(ctx context.Context, to, subject, body string) error {
	if s.fail {
		return errors.New(errors.ErrCodeMailDelivery, "SMTP connect failed")
	}
	s.to = to
	if m := otpPattern.FindStringSubmatch(body); m != nil {
		s.lastOTP = m[1]
	}
	return nil
}

type noopNotifier struct{}

func (noopNotifier) Notify(linkCode, text string) {}

type fixture struct {
	users service.UserService
	repo  repository.UserRepository
	mail  *captureSender
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	mail := &captureSender{}
	repo := memory.NewUserRepository()
	ledger := ledgerservice.NewLedgerService(ledgermemory.NewAccountRepository(), noopNotifier{})
	return &fixture{
		users: service.NewUserService(repo, mail, ledger),
		repo:  repo,
		mail:  mail,
	}
}

func registerRequest() *models.RegisterRequest {
	return &models.RegisterRequest{
		Name:     "Alice Example",
		Username: "alice",
		Email:    "alice@example.com",
		Password: "s3cretpass",
		PIN:      "1234",
	}
}

func TestRegisterSendsOTP(t *testing.T) {
	f := newFixture(t)

	resp, err := f.users.Register(context.Background(), registerRequest())
	require.NoError(t, err)

	assert.False(t, resp.IsVerified)
	assert.False(t, resp.IsActive)
	assert.Equal(t, models.RoleUser, resp.Role)
	assert.Equal(t, "alice@example.com", f.mail.to)
	assert.Len(t, f.mail.lastOTP, 6)
}

func TestRegisterNeverStoresPlaintextSecrets(t *testing.T) {
	f := newFixture(t)

	_, err := f.users.Register(context.Background(), registerRequest())
	require.NoError(t, err)

	user, err := f.repo.GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cretpass", user.PasswordHash)
	assert.NotEqual(t, "1234", user.PINHash)
	assert.NotEmpty(t, user.PasswordHash)
	assert.NotEmpty(t, user.PINHash)
}

func TestRegisterDuplicateConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.users.Register(ctx, registerRequest())
	require.NoError(t, err)

	_, err = f.users.Register(ctx, registerRequest())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeConflict))

	// Same email under a different username is still a conflict.
	req := registerRequest()
	req.Username = "alice2"
	_, err = f.users.Register(ctx, req)
	assert.True(t, errors.Is(err, errors.ErrCodeConflict))
}

func TestRegisterRollsBackWhenMailFails(t *testing.T) {
	f := newFixture(t)
	f.mail.fail = true
	ctx := context.Background()

	_, err := f.users.Register(ctx, registerRequest())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeMailDelivery))

	// The address must be free to register again.
	f.mail.fail = false
	_, err = f.users.Register(ctx, registerRequest())
	require.NoError(t, err)
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*models.RegisterRequest)
	}{
		{"missing name", func(r *models.RegisterRequest) { r.Name = "" }},
		{"short username", func(r *models.RegisterRequest) { r.Username = "ab" }},
		{"username starts with digit", func(r *models.RegisterRequest) { r.Username = "1alice" }},
		{"bad email", func(r *models.RegisterRequest) { r.Email = "not-an-email" }},
		{"short password", func(r *models.RegisterRequest) { r.Password = "abc" }},
		{"non-numeric pin", func(r *models.RegisterRequest) { r.PIN = "12ab" }},
		{"short pin", func(r *models.RegisterRequest) { r.PIN = "123" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := registerRequest()
			tc.mutate(req)
			_, err := f.users.Register(ctx, req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeValidation))
		})
	}
}

func TestVerifyOTPFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.users.Register(ctx, registerRequest())
	require.NoError(t, err)

	err = f.users.VerifyOTP(ctx, "alice@example.com", "000000")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidCode))

	require.NoError(t, f.users.VerifyOTP(ctx, "alice@example.com", f.mail.lastOTP))

	// The code is consumed; replaying it reports the account as verified.
	err = f.users.VerifyOTP(ctx, "alice@example.com", f.mail.lastOTP)
	assert.True(t, errors.Is(err, errors.ErrCodeAlreadyVerified))
}

func TestVerifyOTPExpired(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.users.Register(ctx, registerRequest())
	require.NoError(t, err)

	user, err := f.repo.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	expired := time.Now().Add(-time.Minute)
	user.OTPExpiresAt = &expired
	require.NoError(t, f.repo.Update(ctx, user))

	err = f.users.VerifyOTP(ctx, "alice@example.com", f.mail.lastOTP)
	assert.True(t, errors.Is(err, errors.ErrCodeExpired))
}

func TestLoginGates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.users.Register(ctx, registerRequest())
	require.NoError(t, err)

	// Wrong password beats every gate.
	_, err = f.users.VerifyCredentials(ctx, "alice", "wrongpass", "1234")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidCredentials))

	// Right credentials, unverified email.
	_, err = f.users.VerifyCredentials(ctx, "alice", "s3cretpass", "1234")
	assert.True(t, errors.Is(err, errors.ErrCodeUnverified))

	require.NoError(t, f.users.VerifyOTP(ctx, "alice@example.com", f.mail.lastOTP))

	// Verified but not yet approved.
	_, err = f.users.VerifyCredentials(ctx, "alice", "s3cretpass", "1234")
	assert.True(t, errors.Is(err, errors.ErrCodePendingApproval))

	user, err := f.repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	_, err = f.users.Approve(ctx, "admin-1", user.ID)
	require.NoError(t, err)

	verified, err := f.users.VerifyCredentials(ctx, "alice", "s3cretpass", "1234")
	require.NoError(t, err)
	assert.Equal(t, "alice", verified.Username)

	// Email works as the identifier too.
	_, err = f.users.VerifyCredentials(ctx, "alice@example.com", "s3cretpass", "1234")
	require.NoError(t, err)

	// Wrong PIN fails even with the right password.
	_, err = f.users.VerifyCredentials(ctx, "alice", "s3cretpass", "9999")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidCredentials))
}

func TestPendingApprovalListsOnlyVerifiedInactive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.users.Register(ctx, registerRequest())
	require.NoError(t, err)

	// Unverified users are not pending yet.
	pending, err := f.users.PendingApproval(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	require.NoError(t, f.users.VerifyOTP(ctx, "alice@example.com", f.mail.lastOTP))

	pending, err = f.users.PendingApproval(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "alice", pending[0].Username)

	_, err = f.users.Approve(ctx, "admin-1", pending[0].ID)
	require.NoError(t, err)

	pending, err = f.users.PendingApproval(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestApproveIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.users.Register(ctx, registerRequest())
	require.NoError(t, err)
	require.NoError(t, f.users.VerifyOTP(ctx, "alice@example.com", f.mail.lastOTP))

	user, err := f.repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)

	first, err := f.users.Approve(ctx, "admin-1", user.ID)
	require.NoError(t, err)
	assert.True(t, first.IsActive)

	second, err := f.users.Approve(ctx, "admin-1", user.ID)
	require.NoError(t, err)
	assert.True(t, second.IsActive)
}

func TestEnsureDefaultAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.users.EnsureDefaultAdmin(ctx, "Admin", "superadmin", "admin@example.com", "Admin@1413", "0000"))

	admin, err := f.users.VerifyCredentials(ctx, "superadmin", "Admin@1413", "0000")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.True(t, admin.IsVerified)
	assert.True(t, admin.IsActive)

	// Second call is a no-op while an admin exists.
	require.NoError(t, f.users.EnsureDefaultAdmin(ctx, "Admin", "superadmin", "admin@example.com", "Admin@1413", "0000"))

	users, err := f.repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}
