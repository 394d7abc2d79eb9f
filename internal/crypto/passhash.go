// Package crypto implements server-side password hashing and verification.
package crypto

import "golang.org/x/crypto/bcrypt"

// bcryptCost balances hashing latency against brute-force resistance.
const bcryptCost = 12

// HashPassword returns the bcrypt hash of password.
func HashPassword(password []byte) ([]byte, error) {
	return bcrypt.GenerateFromPassword(password, bcryptCost)
}

// VerifyPassword reports whether password matches the stored bcrypt hash.
func VerifyPassword(password, hash []byte) bool {
	return bcrypt.CompareHashAndPassword(hash, password) == nil
}
