// Package fingerprint derives a deterministic content hash for a structured
// record. The hash is an equality key for diffing sub-entities, not a
// security primitive.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Compute serializes the record to canonical JSON and returns the hex SHA-256
// of the bytes. encoding/json writes map keys in sorted order, so two
// logically identical records with different insertion order hash the same.
// Nested maps and slices are carried through the same canonical encoding.
func Compute(record map[string]interface{}) (string, error) {
	if record == nil {
		record = map[string]interface{}{}
	}
	canonical, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("canonicalizing record: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// ComputeStruct fingerprints any JSON-encodable value by first flattening it
// into a map, so struct field order and zero-valued omitempty fields do not
// leak into the digest.
func ComputeStruct(value interface{}) (string, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("encoding value: %w", err)
	}
	var record map[string]interface{}
	if err := json.Unmarshal(raw, &record); err != nil {
		return "", fmt.Errorf("value is not an object: %w", err)
	}
	return Compute(record)
}
