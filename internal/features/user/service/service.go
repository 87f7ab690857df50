package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"nutristeck-bank-backend/internal/common/errors"
	"nutristeck-bank-backend/internal/common/logger"
	"nutristeck-bank-backend/internal/common/validation"
	"nutristeck-bank-backend/internal/features/user/models"
	"nutristeck-bank-backend/internal/features/user/repository"
	"nutristeck-bank-backend/internal/service/mailer"
)

const (
	bcryptCost = 10
	otpTTL     = 10 * time.Minute
)

// AccountOpener creates the ledger account that backs a new user.
// Implemented by the ledger service; an interface here avoids a package cycle.
type AccountOpener interface {
	Open(ctx context.Context, userID string) error
}

type UserService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.UserResponse, error)
	VerifyOTP(ctx context.Context, email, code string) error
	VerifyCredentials(ctx context.Context, identifier, password, pin string) (*models.User, error)
	GetUser(ctx context.Context, id string) (*models.UserResponse, error)
	PendingApproval(ctx context.Context) ([]*models.UserResponse, error)
	Approve(ctx context.Context, adminID, userID string) (*models.UserResponse, error)
	EnsureDefaultAdmin(ctx context.Context, name, username, email, password, pin string) error
}

type userService struct {
	repo     repository.UserRepository
	mail     mailer.Sender
	accounts AccountOpener
}

func NewUserService(repo repository.UserRepository, mail mailer.Sender, accounts AccountOpener) UserService {
	return &userService{
		repo:     repo,
		mail:     mail,
		accounts: accounts,
	}
}

// Register creates an unverified, inactive user and emails the OTP.
// Registration is atomic with respect to delivery: when the OTP mail cannot be
// sent, the created record is removed and the whole call fails.
func (s *userService) Register(ctx context.Context, req *models.RegisterRequest) (*models.UserResponse, error) {
	if err := validation.ValidateRegistration(req.Fields()); err != nil {
		return nil, err
	}

	passwordHash, err := hashSecret(req.Password)
	if err != nil {
		return nil, err
	}
	pinHash, err := hashSecret(req.PIN)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	otp, err := generateOTP()
	if err != nil {
		return nil, err
	}
	otpExpires := now.Add(otpTTL)

	user := &models.User{
		ID:           uuid.New().String(),
		Username:     req.Username,
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: passwordHash,
		PINHash:      pinHash,
		Role:         models.RoleUser,
		IsVerified:   false,
		IsActive:     false,
		OTPCode:      otp,
		OTPExpiresAt: &otpExpires,
		Profile: models.Profile{
			PhoneNumber:      req.PhoneNumber,
			DateOfBirth:      req.DateOfBirth,
			StreetAddress:    req.StreetAddress,
			City:             req.City,
			State:            req.State,
			ZipCode:          req.ZipCode,
			Country:          req.Country,
			EmploymentStatus: req.EmploymentStatus,
			SecurityQuestion: req.SecurityQuestion,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if req.SecurityAnswer != "" {
		answerHash, err := hashSecret(req.SecurityAnswer)
		if err != nil {
			return nil, err
		}
		user.Profile.SecurityAnswerHash = answerHash
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	if err := s.accounts.Open(ctx, user.ID); err != nil {
		_ = s.repo.Delete(ctx, user.ID)
		return nil, err
	}

	subject := "Welcome! Verify Your Email"
	body := fmt.Sprintf(
		"<h2>Welcome, %s!</h2><p>Your OTP to verify your email is: <b>%s</b></p><small>This OTP expires in 10 minutes.</small>",
		user.Name, otp,
	)
	if err := s.mail.Send(ctx, user.Email, subject, body); err != nil {
		// Roll back so the address can be registered again.
		_ = s.repo.Delete(ctx, user.ID)
		return nil, err
	}

	logger.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("User registered, OTP sent")
	return models.ToUserResponse(user), nil
}

// VerifyOTP confirms the emailed code and marks the user verified.
func (s *userService) VerifyOTP(ctx context.Context, email, code string) error {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	if user.IsVerified {
		return errors.New(errors.ErrCodeAlreadyVerified, "Account already verified")
	}
	if user.OTPCode == "" || user.OTPCode != code {
		return errors.New(errors.ErrCodeInvalidCode, "Invalid OTP")
	}
	if user.OTPExpiresAt == nil || time.Now().After(*user.OTPExpiresAt) {
		return errors.New(errors.ErrCodeExpired, "OTP expired")
	}

	user.IsVerified = true
	user.OTPCode = ""
	user.OTPExpiresAt = nil
	user.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, user); err != nil {
		return err
	}

	logger.Info().Str("user_id", user.ID).Msg("Email verified")
	return nil
}

// VerifyCredentials resolves the identifier (username or email) and checks the
// password and, when supplied, the PIN. Gate order: credentials, verification,
// approval.
func (s *userService) VerifyCredentials(ctx context.Context, identifier, password, pin string) (*models.User, error) {
	user, err := s.repo.GetByUsername(ctx, identifier)
	if err != nil {
		user, err = s.repo.GetByEmail(ctx, identifier)
	}
	if err != nil {
		return nil, errors.New(errors.ErrCodeInvalidCredentials, "Invalid credentials")
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, errors.New(errors.ErrCodeInvalidCredentials, "Invalid credentials")
	}
	if pin != "" {
		if bcrypt.CompareHashAndPassword([]byte(user.PINHash), []byte(pin)) != nil {
			return nil, errors.New(errors.ErrCodeInvalidCredentials, "Invalid credentials")
		}
	}

	if !user.IsVerified {
		return nil, errors.New(errors.ErrCodeUnverified, "Please verify your email first")
	}
	if !user.IsActive {
		return nil, errors.New(errors.ErrCodePendingApproval, "Account is awaiting admin approval")
	}

	return user, nil
}

func (s *userService) GetUser(ctx context.Context, id string) (*models.UserResponse, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return models.ToUserResponse(user), nil
}

// PendingApproval lists verified users still waiting on admin activation.
func (s *userService) PendingApproval(ctx context.Context) ([]*models.UserResponse, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	var pending []*models.UserResponse
	for _, user := range users {
		if user.IsVerified && !user.IsActive {
			pending = append(pending, models.ToUserResponse(user))
		}
	}
	return pending, nil
}

// Approve activates a user account. Idempotent: approving an active account
// is a no-op that returns the current state.
func (s *userService) Approve(ctx context.Context, adminID, userID string) (*models.UserResponse, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !user.IsActive {
		user.IsActive = true
		user.UpdatedAt = time.Now()
		if err := s.repo.Update(ctx, user); err != nil {
			return nil, err
		}
		logger.Info().Str("user_id", userID).Str("approved_by", adminID).Msg("Account approved")
	}

	return models.ToUserResponse(user), nil
}

// EnsureDefaultAdmin seeds an administrator account when none exists yet.
func (s *userService) EnsureDefaultAdmin(ctx context.Context, name, username, email, password, pin string) error {
	users, err := s.repo.List(ctx)
	if err != nil {
		return err
	}
	for _, user := range users {
		if user.Role == models.RoleAdmin {
			return nil
		}
	}

	passwordHash, err := hashSecret(password)
	if err != nil {
		return err
	}
	pinHash, err := hashSecret(pin)
	if err != nil {
		return err
	}

	now := time.Now()
	admin := &models.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		PINHash:      pinHash,
		Role:         models.RoleAdmin,
		IsVerified:   true,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, admin); err != nil {
		return err
	}
	if err := s.accounts.Open(ctx, admin.ID); err != nil {
		return err
	}

	logger.Warn().Str("username", username).Str("email", email).Msg("Default admin account created")
	return nil
}

func hashSecret(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcryptCost)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeInternal, "hash secret")
	}
	return string(hash), nil
}

// generateOTP returns a 6-digit numeric one-time code.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeInternal, "generate OTP")
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
