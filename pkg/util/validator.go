package util

import (
	"errors"
	"unicode"
)

var ErrWeakPassword = errors.New("password must be at least 8 characters and contain a lowercase letter, an uppercase letter and a digit")

// ValidatePasswordStrength enforces the password policy at the API boundary:
// minimum 8 characters with at least one lowercase letter, one uppercase
// letter and one digit.
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return ErrWeakPassword
	}

	var hasLower, hasUpper, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	if !hasLower || !hasUpper || !hasDigit {
		return ErrWeakPassword
	}
	return nil
}
