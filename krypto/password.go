package krypto

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

const (
	charsetLower   = "abcdefghijklmnopqrstuvwxyz"
	charsetUpper   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	charsetDigits  = "0123456789"
	charsetSymbols = "!@#$%^&*()-_=+[]{}<>?"

	// DefaultPasswordLength is used when no length is requested.
	DefaultPasswordLength = 20
)

// GeneratePassword returns a random password of the requested length with at
// least one character from each enabled class (lowercase, uppercase, digits,
// and symbols unless disabled). All randomness comes from crypto/rand.
func GeneratePassword(length int, includeSymbols bool) (string, error) {
	classes := []string{charsetLower, charsetUpper, charsetDigits}
	if includeSymbols {
		classes = append(classes, charsetSymbols)
	}
	if length < len(classes) {
		return "", fmt.Errorf("password length must be at least %d", len(classes))
	}

	full := strings.Join(classes, "")
	password := make([]byte, 0, length)

	for _, class := range classes {
		ch, err := pickRandomChar(class)
		if err != nil {
			return "", err
		}
		password = append(password, ch)
	}
	for len(password) < length {
		ch, err := pickRandomChar(full)
		if err != nil {
			return "", err
		}
		password = append(password, ch)
	}

	if err := shuffleBytes(password); err != nil {
		return "", err
	}
	return string(password), nil
}

func pickRandomChar(set string) (byte, error) {
	if len(set) == 0 {
		return 0, errors.New("empty character set")
	}
	idx, err := cryptoRandInt(len(set))
	if err != nil {
		return 0, err
	}
	return set[idx], nil
}

func shuffleBytes(data []byte) error {
	for i := len(data) - 1; i > 0; i-- {
		j, err := cryptoRandInt(i + 1)
		if err != nil {
			return err
		}
		data[i], data[j] = data[j], data[i]
	}
	return nil
}

func cryptoRandInt(max int) (int, error) {
	if max <= 0 {
		return 0, errors.New("max must be > 0")
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		return 0, fmt.Errorf("generate random index: %w", err)
	}
	return int(n.Int64()), nil
}
