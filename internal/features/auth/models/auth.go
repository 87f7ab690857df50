package models

import (
	usermodels "nutristeck-bank-backend/internal/features/user/models"
)

// LoginRequest authenticates by username or email, password and optional PIN.
type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
	PIN        string `json:"pin"`
}

// LoginResponse carries the session tokens plus the link code used to bind a
// notification chat.
type LoginResponse struct {
	AccessToken  string                   `json:"access_token"`
	RefreshToken string                   `json:"refresh_token"`
	LinkCode     string                   `json:"link_code"`
	User         *usermodels.UserResponse `json:"user"`
}

// RefreshRequest exchanges a refresh token for a new access token.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type RefreshResponse struct {
	AccessToken string `json:"access_token"`
}
