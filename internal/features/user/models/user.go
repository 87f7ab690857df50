package models

import (
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User carries identity and auth material. Secret fields hold bcrypt hashes
// only; plaintext never survives registration.
type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	PasswordHash string `json:"password_hash"`
	PINHash      string `json:"pin_hash"`
	Role         string `json:"role"`

	// IsVerified flips true on OTP success; login is rejected while false.
	IsVerified bool `json:"is_verified"`
	// IsActive flips true on admin approval; login is rejected while false.
	IsActive bool `json:"is_active"`

	// OTP state, present only while verification is pending.
	OTPCode      string     `json:"otp_code,omitempty"`
	OTPExpiresAt *time.Time `json:"otp_expires_at,omitempty"`

	Profile Profile `json:"profile"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Profile holds the extended signup data. All optional; the security answer is
// hashed like the other secrets and lives outside this struct.
type Profile struct {
	PhoneNumber      string `json:"phone_number,omitempty"`
	DateOfBirth      string `json:"date_of_birth,omitempty"`
	StreetAddress    string `json:"street_address,omitempty"`
	City             string `json:"city,omitempty"`
	State            string `json:"state,omitempty"`
	ZipCode          string `json:"zip_code,omitempty"`
	Country          string `json:"country,omitempty"`
	EmploymentStatus string `json:"employment_status,omitempty"`
	SecurityQuestion string `json:"security_question,omitempty"`
	// Hash of the security answer, never the answer itself.
	SecurityAnswerHash string `json:"security_answer_hash,omitempty"`
}

// RegisterRequest is the single parameterized registration payload.
type RegisterRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	PIN      string `json:"pin"`

	PhoneNumber      string `json:"phone_number"`
	DateOfBirth      string `json:"date_of_birth"`
	StreetAddress    string `json:"street_address"`
	City             string `json:"city"`
	State            string `json:"state"`
	ZipCode          string `json:"zip_code"`
	Country          string `json:"country"`
	EmploymentStatus string `json:"employment_status"`
	SecurityQuestion string `json:"security_question"`
	SecurityAnswer   string `json:"security_answer"`
}

// Fields flattens the payload for schema validation.
func (r *RegisterRequest) Fields() map[string]string {
	return map[string]string{
		"name":              r.Name,
		"username":          r.Username,
		"email":             r.Email,
		"password":          r.Password,
		"pin":               r.PIN,
		"phone_number":      r.PhoneNumber,
		"date_of_birth":     r.DateOfBirth,
		"street_address":    r.StreetAddress,
		"city":              r.City,
		"state":             r.State,
		"zip_code":          r.ZipCode,
		"country":           r.Country,
		"employment_status": r.EmploymentStatus,
		"security_question": r.SecurityQuestion,
		"security_answer":   r.SecurityAnswer,
	}
}

// VerifyOTPRequest confirms an emailed one-time code.
type VerifyOTPRequest struct {
	Email string `json:"email" binding:"required"`
	Code  string `json:"otp_code" binding:"required"`
}

// UserResponse is the public view of a user; no secret or OTP fields.
type UserResponse struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Role       string    `json:"role"`
	IsVerified bool      `json:"is_verified"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}

func ToUserResponse(u *User) *UserResponse {
	return &UserResponse{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		Name:       u.Name,
		Role:       u.Role,
		IsVerified: u.IsVerified,
		IsActive:   u.IsActive,
		CreatedAt:  u.CreatedAt,
	}
}
