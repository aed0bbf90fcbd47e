package utils

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

const (
	MinUsernameLength = 3
	MinNameLength     = 2
	MinPasswordLength = 8
)

// Validation failures, in the order they are checked
var (
	ErrInvalidEmail      = errors.New("please enter a valid email address")
	ErrUsernameTooShort  = errors.New("username must be at least 3 characters long")
	ErrFirstNameTooShort = errors.New("first name must be at least 2 characters long")
	ErrLastNameTooShort  = errors.New("last name must be at least 2 characters long")
	ErrPasswordTooShort  = errors.New("password must be at least 8 characters long")
	ErrPasswordNoLower   = errors.New("password must contain at least one lowercase letter")
	ErrPasswordNoUpper   = errors.New("password must contain at least one uppercase letter")
	ErrPasswordNoDigit   = errors.New("password must contain at least one number")
)

// ValidateEmail validates an already sanitized email address
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}

// ValidateUsername checks the trimmed username length
func ValidateUsername(username string) error {
	if utf8.RuneCountInString(NormalizeName(username)) < MinUsernameLength {
		return ErrUsernameTooShort
	}
	return nil
}

// ValidateFirstName checks the trimmed first name length
func ValidateFirstName(name string) error {
	if utf8.RuneCountInString(NormalizeName(name)) < MinNameLength {
		return ErrFirstNameTooShort
	}
	return nil
}

// ValidateLastName checks the trimmed last name length
func ValidateLastName(name string) error {
	if utf8.RuneCountInString(NormalizeName(name)) < MinNameLength {
		return ErrLastNameTooShort
	}
	return nil
}

// ValidatePassword validates a password
// Minimum 8 characters, at least one lowercase letter, one uppercase letter, one number
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}

	hasUpper := false
	hasLower := false
	hasNumber := false

	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsDigit(char):
			hasNumber = true
		}
	}

	switch {
	case !hasLower:
		return ErrPasswordNoLower
	case !hasUpper:
		return ErrPasswordNoUpper
	case !hasNumber:
		return ErrPasswordNoDigit
	}

	return nil
}

// SanitizeEmail sanitizes an email address
func SanitizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeName trims a username or personal name and puts it in NFC form,
// so visually identical names compare equal.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}
