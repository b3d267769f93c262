package vault

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// codecVersion tags the payload layout. Bump it when the field layout
// changes; decoding rejects any other value.
const codecVersion = 0x01

// Each record contributes at least four length prefixes to the payload.
const minRecordSize = 16

// ErrCorruptPayload indicates a record payload that does not match the
// expected layout. The ciphertext carries no integrity tag, so this check is
// the last line of defense against corrupted or foreign plaintext.
var ErrCorruptPayload = errors.New("corrupt record payload")

// EncodeRecords serializes records into a versioned length-prefixed payload:
// one version byte, a big-endian uint32 record count, then for each record
// the Site, Username, Secret and Notes fields, each as a big-endian uint32
// byte length followed by the UTF-8 bytes.
func EncodeRecords(records []Record) []byte {
	size := 5
	for _, r := range records {
		size += minRecordSize + len(r.Site) + len(r.Username) + len(r.Secret) + len(r.Notes)
	}

	payload := make([]byte, 0, size)
	payload = append(payload, codecVersion)
	payload = binary.BigEndian.AppendUint32(payload, uint32(len(records)))
	for _, r := range records {
		payload = appendField(payload, r.Site)
		payload = appendField(payload, r.Username)
		payload = appendField(payload, r.Secret)
		payload = appendField(payload, r.Notes)
	}
	return payload
}

// DecodeRecords parses a payload produced by EncodeRecords. Round-trips
// exactly, including empty collections and empty or non-ASCII fields.
func DecodeRecords(payload []byte) ([]Record, error) {
	if len(payload) < 5 {
		return nil, fmt.Errorf("payload of %d bytes too short: %w", len(payload), ErrCorruptPayload)
	}
	if payload[0] != codecVersion {
		return nil, fmt.Errorf("unknown payload version %#x: %w", payload[0], ErrCorruptPayload)
	}

	count := binary.BigEndian.Uint32(payload[1:5])
	rest := payload[5:]
	if uint64(count)*minRecordSize > uint64(len(rest)) {
		return nil, fmt.Errorf("record count %d exceeds payload size: %w", count, ErrCorruptPayload)
	}

	records := make([]Record, 0, count)
	for i := uint32(0); i < count; i++ {
		var r Record
		var err error
		if r.Site, rest, err = readField(rest); err != nil {
			return nil, err
		}
		if r.Username, rest, err = readField(rest); err != nil {
			return nil, err
		}
		if r.Secret, rest, err = readField(rest); err != nil {
			return nil, err
		}
		if r.Notes, rest, err = readField(rest); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("%d trailing bytes after %d records: %w", len(rest), count, ErrCorruptPayload)
	}
	return records, nil
}

func appendField(payload []byte, field string) []byte {
	payload = binary.BigEndian.AppendUint32(payload, uint32(len(field)))
	return append(payload, field...)
}

func readField(rest []byte) (string, []byte, error) {
	if len(rest) < 4 {
		return "", nil, fmt.Errorf("truncated field length: %w", ErrCorruptPayload)
	}
	n := binary.BigEndian.Uint32(rest)
	rest = rest[4:]
	if uint64(n) > uint64(len(rest)) {
		return "", nil, fmt.Errorf("field length %d exceeds payload: %w", n, ErrCorruptPayload)
	}
	return string(rest[:n]), rest[n:], nil
}
