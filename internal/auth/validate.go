package auth

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
)

// ValidationError marks a problem with user-supplied input. Handlers render
// it as a 400 with the message verbatim.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func validationErrorf(format string, args ...any) *ValidationError {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

const (
	maxEmailLength = 254 // RFC 5321
	minUsernameLen = 3
	maxUsernameLen = 32
	minPasswordLen = 8
	maxPasswordLen = 128
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// NormalizeEmail lowercases and trims an email address. Every email is
// normalized before it is stored or looked up.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks format and length. Expects a normalized address.
func ValidateEmail(email string) error {
	if email == "" {
		return validationErrorf("email address is required")
	}
	if len(email) > maxEmailLength {
		return validationErrorf("email address is too long (max %d characters)", maxEmailLength)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return validationErrorf("invalid email address format")
	}
	return nil
}

// ValidateUsername checks length and character set.
func ValidateUsername(username string) error {
	if len(username) < minUsernameLen {
		return validationErrorf("username must be at least %d characters long", minUsernameLen)
	}
	if len(username) > maxUsernameLen {
		return validationErrorf("username must be at most %d characters long", maxUsernameLen)
	}
	if !usernameRegex.MatchString(username) {
		return validationErrorf("username may only contain letters, digits, '.', '_' and '-'")
	}
	return nil
}

// ValidatePassword checks length bounds. Strength beyond length is left to
// the hash cost.
func ValidatePassword(password string) error {
	if len(password) < minPasswordLen {
		return validationErrorf("password must be at least %d characters long", minPasswordLen)
	}
	if len(password) > maxPasswordLen {
		return validationErrorf("password must be at most %d characters long", maxPasswordLen)
	}
	return nil
}
