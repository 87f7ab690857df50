package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutristeck-bank-backend/internal/common/errors"
	authmodels "nutristeck-bank-backend/internal/features/auth/models"
	"nutristeck-bank-backend/internal/features/auth/service"
	ledgermemory "nutristeck-bank-backend/internal/features/ledger/repository/memory"
	ledgerservice "nutristeck-bank-backend/internal/features/ledger/service"
	usermodels "nutristeck-bank-backend/internal/features/user/models"
	usermemory "nutristeck-bank-backend/internal/features/user/repository/memory"
	userservice "nutristeck-bank-backend/internal/features/user/service"
)

type sinkSender struct{ otp string }

func (s *sinkSender) Send(ctx context.Context, to, subject, body string) error {
	// OTP is the only 6-digit run in the body.
	for i := 0; i+6 <= len(body); i++ {
		candidate := body[i : i+6]
		digits := true
		for _, c := range candidate {
			if c < '0' || c > '9' {
				digits = false
				break
			}
		}
		if digits {
			s.otp = candidate
			return nil
		}
	}
	return nil
}

// recordingNotifier captures code registrations and messages.
type recordingNotifier struct {
	codes    map[string]string
	messages []string
}

func (n *recordingNotifier) RegisterCode(linkCode, userID string) {
	if n.codes == nil {
		n.codes = make(map[string]string)
	}
	n.codes[linkCode] = userID
}

func (n *recordingNotifier) Notify(linkCode, text string) {
	n.messages = append(n.messages, text)
}

type ledgerNoopNotifier struct{}

func (ledgerNoopNotifier) Notify(linkCode, text string) {}

type fixture struct {
	auth     service.AuthService
	users    userservice.UserService
	tokens   *service.TokenManager
	mail     *sinkSender
	notifier *recordingNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	mail := &sinkSender{}
	notifier := &recordingNotifier{}
	ledger := ledgerservice.NewLedgerService(ledgermemory.NewAccountRepository(), ledgerNoopNotifier{})
	users := userservice.NewUserService(usermemory.NewUserRepository(), mail, ledger)
	tokens := service.NewTokenManager("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
	return &fixture{
		auth:     service.NewAuthService(users, tokens, notifier),
		users:    users,
		tokens:   tokens,
		mail:     mail,
		notifier: notifier,
	}
}

func (f *fixture) registerActiveUser(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	resp, err := f.users.Register(ctx, &usermodels.RegisterRequest{
		Name:     "Alice Example",
		Username: "alice",
		Email:    "alice@example.com",
		Password: "s3cretpass",
		PIN:      "1234",
	})
	require.NoError(t, err)
	require.NoError(t, f.users.VerifyOTP(ctx, "alice@example.com", f.mail.otp))
	_, err = f.users.Approve(ctx, "admin-1", resp.ID)
	require.NoError(t, err)
	return resp.ID
}

func TestLoginIssuesTokensAndLinkCode(t *testing.T) {
	f := newFixture(t)
	userID := f.registerActiveUser(t)

	resp, err := f.auth.Login(context.Background(), &authmodels.LoginRequest{
		Identifier: "alice",
		Password:   "s3cretpass",
		PIN:        "1234",
	})
	require.NoError(t, err)

	claims, err := f.tokens.VerifyAccess(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)

	_, err = f.tokens.VerifyRefresh(resp.RefreshToken)
	require.NoError(t, err)

	require.NotEmpty(t, resp.LinkCode)
	assert.Equal(t, userID, f.notifier.codes[resp.LinkCode])
	assert.Equal(t, "alice", resp.User.Username)
}

func TestLoginMintsFreshLinkCodeEachTime(t *testing.T) {
	f := newFixture(t)
	f.registerActiveUser(t)
	ctx := context.Background()

	req := &authmodels.LoginRequest{Identifier: "alice", Password: "s3cretpass", PIN: "1234"}
	first, err := f.auth.Login(ctx, req)
	require.NoError(t, err)
	second, err := f.auth.Login(ctx, req)
	require.NoError(t, err)

	assert.NotEqual(t, first.LinkCode, second.LinkCode)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	f := newFixture(t)
	f.registerActiveUser(t)

	_, err := f.auth.Login(context.Background(), &authmodels.LoginRequest{
		Identifier: "alice",
		Password:   "wrong",
		PIN:        "1234",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidCredentials))
	assert.Empty(t, f.notifier.codes)
}

func TestRefreshIssuesNewAccessOnly(t *testing.T) {
	f := newFixture(t)
	f.registerActiveUser(t)
	ctx := context.Background()

	login, err := f.auth.Login(ctx, &authmodels.LoginRequest{
		Identifier: "alice", Password: "s3cretpass", PIN: "1234",
	})
	require.NoError(t, err)

	refreshed, err := f.auth.Refresh(ctx, login.RefreshToken)
	require.NoError(t, err)

	claims, err := f.tokens.VerifyAccess(refreshed.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	f := newFixture(t)
	f.registerActiveUser(t)
	ctx := context.Background()

	login, err := f.auth.Login(ctx, &authmodels.LoginRequest{
		Identifier: "alice", Password: "s3cretpass", PIN: "1234",
	})
	require.NoError(t, err)

	_, err = f.auth.Refresh(ctx, login.AccessToken)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidToken))
}
