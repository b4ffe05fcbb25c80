package utils

import (
	"regexp"
	"strings"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

const (
	// MaxPasswordBytes is the longest password bcrypt accepts.
	MaxPasswordBytes = 72
	// PasswordTooLongMessage is reported for passwords bcrypt cannot hash.
	PasswordTooLongMessage = "Password must be at most 72 bytes"
)

// ValidateEmail reports whether email has a plausible address shape.
func ValidateEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// ValidatePassword returns false and a user-facing message when password is
// unusable as a new account password.
func ValidatePassword(password string) (bool, string) {
	switch {
	case len(password) < 8:
		return false, "Password must be at least 8 characters"
	case len(password) > MaxPasswordBytes:
		return false, PasswordTooLongMessage
	case strings.TrimSpace(password) == "":
		return false, "Password must not be blank"
	}
	return true, ""
}

// SanitizeInput trims input and drops NUL bytes.
func SanitizeInput(input string) string {
	return strings.ReplaceAll(strings.TrimSpace(input), "\x00", "")
}
