package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// HashCode creates a bcrypt hash from a plaintext confirmation code so
// the code itself never sits in the cache.
func HashCode(code string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// VerifyCode checks a submitted confirmation code against the stored hash.
func VerifyCode(hashedCode, providedCode string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedCode), []byte(providedCode))
}
