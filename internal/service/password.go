package service

import (
	"strings"

	"github.com/alexedwards/argon2id"
	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes account and document passwords with bcrypt.
func HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// VerifyPassword accepts bcrypt hashes and argon2id hashes imported from
// older document stores.
func VerifyPassword(password, hash string) bool {
	if password == "" || hash == "" {
		return false
	}

	if strings.HasPrefix(hash, "$argon2id$") {
		match, err := argon2id.ComparePasswordAndHash(password, hash)
		return err == nil && match
	}

	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
