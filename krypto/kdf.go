package krypto

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// SaltLengthBytes is the salt length written into every envelope.
	SaltLengthBytes = 16
	// IVLengthBytes is the IV length written into every envelope.
	IVLengthBytes = 16
	// Iterations is the fixed PBKDF2 iteration count. It is not recorded in
	// the envelope, so saving and loading the same file must agree on it.
	Iterations = 100_000
	// KeyLengthBytes is the derived key length (AES-256).
	KeyLengthBytes = 32
)

// DeriveKey stretches the master secret into a 256-bit key using
// PBKDF2-HMAC-SHA256 with the fixed iteration count. Deterministic for
// identical inputs; the salt must come from NewRandomSalt at save time or
// from the envelope at load time.
func DeriveKey(secret, salt []byte) ([]byte, error) {
	if len(salt) == 0 {
		return nil, errors.New("salt is required")
	}

	key := pbkdf2.Key(secret, salt, Iterations, KeyLengthBytes, sha256.New)
	if len(key) != KeyLengthBytes {
		return nil, fmt.Errorf("derived key has unexpected length %d", len(key))
	}
	return key, nil
}

// NewRandomSalt returns a cryptographically secure random salt.
func NewRandomSalt() ([]byte, error) {
	salt := make([]byte, SaltLengthBytes)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	return salt, nil
}

// NewRandomIV returns a cryptographically secure random IV.
func NewRandomIV() ([]byte, error) {
	iv := make([]byte, IVLengthBytes)
	if _, err := rand.Read(iv); err != nil {
		return nil, fmt.Errorf("generate iv: %w", err)
	}
	return iv, nil
}
