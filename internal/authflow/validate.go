package authflow

import (
	"strings"

	"hdnotes-cli/internal/model"
)

// ValidateEmail requires a single "@" with nonempty local and domain
// parts. Anything stricter belongs to the provider.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return model.ErrValidation("email", "Enter a valid email")
	}
	at := strings.Count(email, "@")
	if at != 1 {
		return model.ErrValidation("email", "Enter a valid email")
	}
	i := strings.Index(email, "@")
	if i == 0 || i == len(email)-1 {
		return model.ErrValidation("email", "Enter a valid email")
	}
	return nil
}

// ValidateOTP requires exactly 6 numeric digits.
func ValidateOTP(code string) error {
	if len(code) != 6 {
		return model.ErrValidation("otp", "OTP must be 6 digits")
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return model.ErrValidation("otp", "OTP must be numeric")
		}
	}
	return nil
}
