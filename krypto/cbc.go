package krypto

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"fmt"
)

// ErrDecrypt reports ciphertext that cannot be decrypted with the given key.
// The format carries no integrity tag, so a wrong key and corrupted data are
// indistinguishable: both surface as alignment or padding failures.
var ErrDecrypt = errors.New("wrong key or corrupted ciphertext")

// EncryptAESCBC encrypts plaintext using AES-256-CBC with PKCS#7 padding.
// The IV must be a full block and must never be reused with the same key.
func EncryptAESCBC(plaintext, key, iv []byte) ([]byte, error) {
	if len(key) != KeyLengthBytes {
		return nil, errors.New("aes-cbc requires a 32-byte key")
	}
	if len(iv) != aes.BlockSize {
		return nil, errors.New("aes-cbc requires a 16-byte iv")
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	// Encrypt in place so the padded plaintext does not outlive the call.
	padded := pkcs7Pad(plaintext, aes.BlockSize)
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(padded, padded)
	return padded, nil
}

// DecryptAESCBC decrypts AES-256-CBC ciphertext and strips PKCS#7 padding.
func DecryptAESCBC(ciphertext, key, iv []byte) ([]byte, error) {
	if len(key) != KeyLengthBytes {
		return nil, errors.New("aes-cbc requires a 32-byte key")
	}
	if len(iv) != aes.BlockSize {
		return nil, errors.New("aes-cbc requires a 16-byte iv")
	}
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("ciphertext not block aligned: %w", ErrDecrypt)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)
	return pkcs7Unpad(plaintext, aes.BlockSize)
}

// pkcs7Pad rounds data up to a whole number of blocks. A full padding block
// is added when data is already aligned, so padding is always present.
func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+n)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(n)
	}
	return padded
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, fmt.Errorf("padded data not block aligned: %w", ErrDecrypt)
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize {
		return nil, fmt.Errorf("padding length %d out of range: %w", n, ErrDecrypt)
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, fmt.Errorf("inconsistent padding bytes: %w", ErrDecrypt)
		}
	}
	return data[:len(data)-n], nil
}
