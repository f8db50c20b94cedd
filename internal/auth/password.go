// Package auth implements the password hashing and bearer token services
// that sit outside the real-time messaging core.
package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword produces a self-describing hash string (bcrypt encodes its
// cost and salt in the output) suitable for storage in User.PasswordHash.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches hash. Any parse error
// (malformed hash) is treated as a mismatch, never as a caller error.
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
