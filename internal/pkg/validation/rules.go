package validation

import (
	"regexp"
	"unicode"
)

// Validation rule constants
var (
	// PasswordMinLength is the minimum length of an account password
	PasswordMinLength = 8

	// ExplanationMinLength is the minimum length of a claim explanation
	ExplanationMinLength = 20

	// PhonePattern accepts digits, spaces, dashes, parentheses and a leading plus
	PhonePattern = regexp.MustCompile(`^\+?[0-9 ()\-]{6,20}$`)
)

// ValidPassword reports whether the password has the minimum length and
// contains at least one letter and one digit
func ValidPassword(password string) bool {
	if len(password) < PasswordMinLength {
		return false
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	return hasLetter && hasDigit
}
