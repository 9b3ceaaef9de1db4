// Package privacy provides one-way hashing of client IP addresses.
package privacy

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// hashTruncBytes is the number of digest bytes kept (16 hex chars).
const hashTruncBytes = 8

// ErrEmptySalt indicates a missing hashing salt.
var ErrEmptySalt = errors.New("ip hash salt must not be empty")

// IPHasher computes salted, truncated, one-way hashes of IP addresses.
// The salt acts as a keyed-hash key, so hashes from different deployments
// are not comparable and raw IPs cannot be recovered or enumerated.
type IPHasher struct {
	key []byte
}

// NewIPHasher creates an IPHasher for the given salt.
func NewIPHasher(salt string) (*IPHasher, error) {
	if salt == "" {
		return nil, ErrEmptySalt
	}
	key := []byte(salt)
	if len(key) > blake2b.Size {
		// BLAKE2b keys are capped at 64 bytes; compress longer salts.
		sum := sha256.Sum256(key)
		key = sum[:]
	}
	return &IPHasher{key: key}, nil
}

// Hash returns the truncated keyed hash of an IP address as hex.
func (h *IPHasher) Hash(ip string) string {
	mac, err := blake2b.New256(h.key)
	if err != nil {
		// Key length is validated at construction; unreachable.
		panic(fmt.Sprintf("blake2b init: %v", err))
	}
	mac.Write([]byte(ip))
	return hex.EncodeToString(mac.Sum(nil)[:hashTruncBytes])
}
