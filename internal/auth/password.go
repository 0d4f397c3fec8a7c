package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is the cost used by hash-password.
const DefaultBcryptCost = 12

// HashPassword returns a bcrypt hash of password.
func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches hash.
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
