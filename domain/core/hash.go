package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// ConfigHash fingerprints a run's analytical configuration
type ConfigHash Hash

// MatrixHash fingerprints an engineered feature matrix
type MatrixHash Hash

func (h ConfigHash) String() string { return Hash(h).String() }
func (h MatrixHash) String() string { return Hash(h).String() }

// ComputeConfigHash builds a deterministic fingerprint over configuration fields.
// Keys are sorted so equal configurations always hash identically.
func ComputeConfigHash(fields map[string]interface{}) ConfigHash {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var data strings.Builder
	for _, key := range keys {
		data.WriteString(key)
		data.WriteString(fmt.Sprintf("%v", fields[key]))
	}
	return ConfigHash(NewHash([]byte(data.String())))
}

// ComputeMatrixHash fingerprints row keys plus column order.
func ComputeMatrixHash(rowKeys []string, columns []string) MatrixHash {
	sorted := make([]string, len(rowKeys))
	copy(sorted, rowKeys)
	sort.Strings(sorted)

	var data strings.Builder
	for _, k := range sorted {
		data.WriteString(k)
	}
	for _, c := range columns {
		data.WriteString(c)
	}
	return MatrixHash(NewHash([]byte(data.String())))
}
