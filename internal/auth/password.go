package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
)

const saltBytes = 32

// NewSalt generates a per-user random salt: 32 random bytes rendered
// as a 64-character hex string.
func NewSalt() (string, error) {
	b := make([]byte, saltBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// HashPassword computes the stored credential digest:
// hex(SHA-256(userID + password + salt)). The digest is always keyed by
// the immutable user id so renaming an account never invalidates the
// stored hash.
func HashPassword(userID, password, salt string) string {
	sum := sha256.Sum256([]byte(userID + password + salt))
	return hex.EncodeToString(sum[:])
}

// VerifyPassword recomputes the digest from the supplied password and the
// stored salt and compares it against the stored digest in constant time.
func VerifyPassword(userID, password, salt, digest string) bool {
	candidate := HashPassword(userID, password, salt)
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(digest)) == 1
}
