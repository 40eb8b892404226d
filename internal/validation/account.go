package validation

import (
	"errors"
	"net/mail"
	"strings"
	"unicode/utf8"
)

var (
	ErrEmailRequired    = errors.New("email address is required")
	ErrEmailTooLong     = errors.New("email address is too long")
	ErrEmailFormat      = errors.New("invalid email address format")
	ErrPasswordShort    = errors.New("password must be at least 12 characters")
	ErrPasswordLong     = errors.New("password must not exceed 72 bytes")
	ErrPasswordWeak     = errors.New("password is too easy to guess")
	ErrPasswordMailPart = errors.New("password must not contain the account email")
)

// ValidateEmail accepts a bare addr-spec. Display-name forms such as
// "Ann <ann@example.com>" are rejected so stored logins stay comparable.
func ValidateEmail(email string) error {
	if email == "" {
		return ErrEmailRequired
	}
	if len(email) > 254 {
		return ErrEmailTooLong
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return ErrEmailFormat
	}
	return nil
}

// ValidatePassword checks an account password. The byte cap matches what
// bcrypt hashes; anything past it would be silently ignored.
func ValidatePassword(password, email string) error {
	if utf8.RuneCountInString(password) < 12 {
		return ErrPasswordShort
	}
	if len(password) > 72 {
		return ErrPasswordLong
	}

	first, _ := utf8.DecodeRuneInString(password)
	if strings.TrimLeft(password, string(first)) == "" {
		return ErrPasswordWeak
	}

	lower := strings.ToLower(password)
	for _, word := range []string{"password", "123456", "qwerty", "letmein", "document"} {
		if strings.Contains(lower, word) {
			return ErrPasswordWeak
		}
	}

	local, _, _ := strings.Cut(strings.ToLower(email), "@")
	if len(local) >= 4 && strings.Contains(lower, local) {
		return ErrPasswordMailPart
	}
	return nil
}
