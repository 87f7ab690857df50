package validation

import (
	"regexp"
	"strings"

	"nutristeck-bank-backend/internal/common/errors"
)

const (
	MaxNameLength     = 64
	MaxUsernameLength = 32
	MinUsernameLength = 3
	MinPasswordLength = 6
)

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)
	emailRegex    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	pinRegex      = regexp.MustCompile(`^[0-9]{4}$`)
	otpRegex      = regexp.MustCompile(`^[0-9]{6}$`)
)

// FieldRule is one entry of a declarative form schema: which field, whether it
// is mandatory, and the shape it must have.
type FieldRule struct {
	Name     string
	Required bool
	Check    func(value string) bool
	Message  string
}

// RegistrationSchema is the single source of truth for signup validation.
// Every registration variant goes through this set instead of its own if-chain.
var RegistrationSchema = []FieldRule{
	{Name: "name", Required: true, Check: validName, Message: "name must be 1-64 characters"},
	{Name: "username", Required: true, Check: validUsername, Message: "username must start with a letter and contain only letters, numbers and underscores (3-32 characters)"},
	{Name: "email", Required: true, Check: validEmail, Message: "email address is not valid"},
	{Name: "password", Required: true, Check: validPassword, Message: "password must be at least 6 characters"},
	{Name: "pin", Required: true, Check: ValidPIN, Message: "PIN must be exactly 4 digits"},
	{Name: "phone_number", Required: false, Check: validFreeform, Message: "phone number is too long"},
	{Name: "date_of_birth", Required: false, Check: validFreeform, Message: "date of birth is too long"},
	{Name: "street_address", Required: false, Check: validFreeform, Message: "street address is too long"},
	{Name: "city", Required: false, Check: validFreeform, Message: "city is too long"},
	{Name: "state", Required: false, Check: validFreeform, Message: "state is too long"},
	{Name: "zip_code", Required: false, Check: validFreeform, Message: "zip code is too long"},
	{Name: "country", Required: false, Check: validFreeform, Message: "country is too long"},
	{Name: "employment_status", Required: false, Check: validEmployment, Message: "employment status is not recognized"},
	{Name: "security_question", Required: false, Check: validFreeform, Message: "security question is too long"},
	{Name: "security_answer", Required: false, Check: validFreeform, Message: "security answer is too long"},
}

// ValidateRegistration checks a flattened field map against RegistrationSchema.
func ValidateRegistration(fields map[string]string) error {
	for _, rule := range RegistrationSchema {
		value := strings.TrimSpace(fields[rule.Name])
		if value == "" {
			if rule.Required {
				return errors.Newf(errors.ErrCodeValidation, "%s is required", rule.Name)
			}
			continue
		}
		if rule.Check != nil && !rule.Check(value) {
			return errors.New(errors.ErrCodeValidation, rule.Message)
		}
	}
	return nil
}

// ValidPIN reports whether the value is a well-formed 4-digit PIN.
func ValidPIN(pin string) bool {
	return pinRegex.MatchString(pin)
}

// ValidOTP reports whether the value is a well-formed 6-digit one-time code.
func ValidOTP(code string) bool {
	return otpRegex.MatchString(code)
}

func validName(name string) bool {
	return len(name) >= 1 && len(name) <= MaxNameLength
}

func validUsername(username string) bool {
	if len(username) < MinUsernameLength || len(username) > MaxUsernameLength {
		return false
	}
	return usernameRegex.MatchString(username)
}

func validEmail(email string) bool {
	return len(email) <= 254 && emailRegex.MatchString(email)
}

func validPassword(password string) bool {
	return len(password) >= MinPasswordLength
}

func validEmployment(status string) bool {
	switch status {
	case "employed", "self-employed", "unemployed", "retired", "student":
		return true
	}
	return false
}

func validFreeform(value string) bool {
	return len(value) <= 255
}
