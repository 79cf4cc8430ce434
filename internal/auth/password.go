package auth

import (
	"crypto/rand"
	"crypto/subtle"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters (tuned for server-side hashing).
const (
	argonTime    uint32 = 3
	argonMemory  uint32 = 64 * 1024
	argonThreads uint8  = 1
	argonKeyLen  uint32 = 32
)

// randBytes returns n cryptographically secure random bytes.
func randBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	return b, err
}

// hashPassword returns the Argon2id hash of password using salt.
func hashPassword(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, argonTime, argonMemory, argonThreads, argonKeyLen)
}

// verifyPassword compares password against the expected hash and salt.
func verifyPassword(password, salt, expected []byte) bool {
	if len(expected) == 0 {
		return false
	}
	got := hashPassword(password, salt)
	return subtle.ConstantTimeCompare(got, expected) == 1
}
