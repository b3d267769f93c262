// Package store reads and writes the encrypted credential store file.
//
// The on-disk envelope is a fixed marker followed by three length-prefixed
// blocks: salt, IV and ciphertext. Each length is a 4-byte big-endian
// integer. The salt and IV are public; only the ciphertext is protected.
package store

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	"github.com/awnumar/memguard"

	"github.com/1mdazam/OfflinePasswordManager/internal/vault"
	"github.com/1mdazam/OfflinePasswordManager/krypto"
)

// Marker identifies the store file format. Files that do not begin with it
// are rejected before any key derivation work is spent.
const Marker = "OPM1"

// DefaultFilename is the store file used when no path is given.
const DefaultFilename = "passwordstore.dat"

// ErrInvalidFormat indicates a file that is not a credential store: wrong
// marker, truncated envelope, or a negative length field.
var ErrInvalidFormat = errors.New("not a valid password store file")

// Write encrypts records under the master secret and fully replaces the file
// at path with a fresh envelope. A new salt and IV are drawn on every call,
// so two writes of identical content never produce identical bytes.
//
// The write is an in-place overwrite, not an atomic rename; a crash mid-write
// can leave a truncated file behind.
func Write(path string, records []vault.Record, secret []byte) error {
	salt, err := krypto.NewRandomSalt()
	if err != nil {
		return fmt.Errorf("generate salt: %w", err)
	}
	iv, err := krypto.NewRandomIV()
	if err != nil {
		return fmt.Errorf("generate iv: %w", err)
	}

	key, err := krypto.DeriveKey(secret, salt)
	if err != nil {
		return fmt.Errorf("derive key: %w", err)
	}
	defer memguard.WipeBytes(key)

	plaintext := vault.EncodeRecords(records)
	defer memguard.WipeBytes(plaintext)

	ciphertext, err := krypto.EncryptAESCBC(plaintext, key, iv)
	if err != nil {
		return fmt.Errorf("encrypt records: %w", err)
	}

	envelope := make([]byte, 0, len(Marker)+12+len(salt)+len(iv)+len(ciphertext))
	envelope = append(envelope, Marker...)
	envelope = appendBlock(envelope, salt)
	envelope = appendBlock(envelope, iv)
	envelope = appendBlock(envelope, ciphertext)

	if err := os.WriteFile(path, envelope, 0o600); err != nil {
		return fmt.Errorf("write store file: %w", err)
	}
	return nil
}

// Read parses the envelope at path and decrypts the records it holds with a
// key derived from the master secret and the stored salt. The marker and the
// envelope structure are checked before the key derivation happens.
func Read(path string, secret []byte) ([]vault.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read store file: %w", err)
	}

	if len(data) < len(Marker) {
		return nil, fmt.Errorf("file shorter than marker: %w", ErrInvalidFormat)
	}
	if !bytes.Equal(data[:len(Marker)], []byte(Marker)) {
		return nil, fmt.Errorf("unrecognized marker: %w", ErrInvalidFormat)
	}

	rest := data[len(Marker):]
	salt, rest, err := readBlock(rest)
	if err != nil {
		return nil, fmt.Errorf("read salt: %w", err)
	}
	iv, rest, err := readBlock(rest)
	if err != nil {
		return nil, fmt.Errorf("read iv: %w", err)
	}
	ciphertext, _, err := readBlock(rest)
	if err != nil {
		return nil, fmt.Errorf("read ciphertext: %w", err)
	}

	key, err := krypto.DeriveKey(secret, salt)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	defer memguard.WipeBytes(key)

	plaintext, err := krypto.DecryptAESCBC(ciphertext, key, iv)
	if err != nil {
		return nil, fmt.Errorf("decrypt store: %w", err)
	}
	defer memguard.WipeBytes(plaintext)

	records, err := vault.DecodeRecords(plaintext)
	if err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	return records, nil
}

func appendBlock(envelope, block []byte) []byte {
	envelope = binary.BigEndian.AppendUint32(envelope, uint32(len(block)))
	return append(envelope, block...)
}

// readBlock consumes one 4-byte big-endian length prefix and that many
// bytes. Trailing bytes past the last block are ignored.
func readBlock(rest []byte) ([]byte, []byte, error) {
	if len(rest) < 4 {
		return nil, nil, fmt.Errorf("truncated length field: %w", ErrInvalidFormat)
	}
	n := int32(binary.BigEndian.Uint32(rest))
	rest = rest[4:]
	if n < 0 {
		return nil, nil, fmt.Errorf("negative length field: %w", ErrInvalidFormat)
	}
	if int(n) > len(rest) {
		return nil, nil, fmt.Errorf("length field exceeds file size: %w", ErrInvalidFormat)
	}
	return rest[:n], rest[n:], nil
}
