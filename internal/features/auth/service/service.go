package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"nutristeck-bank-backend/internal/common/logger"
	"nutristeck-bank-backend/internal/features/auth/models"
	usermodels "nutristeck-bank-backend/internal/features/user/models"
	userservice "nutristeck-bank-backend/internal/features/user/service"
)

// Notifier pushes best-effort messages keyed by link code. RegisterCode
// records which user a freshly minted code belongs to.
type Notifier interface {
	RegisterCode(linkCode, userID string)
	Notify(linkCode, text string)
}

type AuthService interface {
	Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*models.RefreshResponse, error)
}

type authService struct {
	users    userservice.UserService
	tokens   *TokenManager
	notifier Notifier
}

func NewAuthService(users userservice.UserService, tokens *TokenManager, notifier Notifier) AuthService {
	return &authService{
		users:    users,
		tokens:   tokens,
		notifier: notifier,
	}
}

// Login verifies credentials and gates, issues the token pair and allocates a
// fresh link code for the notification channel.
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	user, err := s.users.VerifyCredentials(ctx, req.Identifier, req.Password, req.PIN)
	if err != nil {
		return nil, err
	}

	accessToken, err := s.tokens.IssueAccess(user.ID, user.Username, user.Role)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.tokens.IssueRefresh(user.ID, user.Username, user.Role)
	if err != nil {
		return nil, err
	}

	linkCode := newLinkCode()
	s.notifier.RegisterCode(linkCode, user.ID)
	s.notifier.Notify(linkCode, fmt.Sprintf("🔐 *Login Alert*\nUser %s logged in successfully", user.Name))

	logger.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("Login successful")
	return &models.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		LinkCode:     linkCode,
		User:         usermodels.ToUserResponse(user),
	}, nil
}

// Refresh issues a new access token. The refresh token itself is not rotated.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*models.RefreshResponse, error) {
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, err
	}

	accessToken, err := s.tokens.IssueAccess(claims.UserID, claims.Username, claims.Role)
	if err != nil {
		return nil, err
	}
	return &models.RefreshResponse{AccessToken: accessToken}, nil
}

// newLinkCode mints the opaque per-login code a Telegram chat binds against.
func newLinkCode() string {
	return "user-" + strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
}
