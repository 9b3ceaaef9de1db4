// Package code generates and verifies signed attribution codes.
//
// A code is a base64url random payload concatenated with a truncated
// HMAC-SHA256 signature over that payload. Codes are self-authenticating:
// a forged or corrupted code is rejected without any store lookup.
package code

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
)

const (
	// PayloadBytes is the size of the random payload before encoding.
	PayloadBytes = 16
	// SignatureLen is the length of the truncated base64url signature.
	SignatureLen = 10
	// MaxCodeLen is the hard platform limit on bot start parameters.
	MaxCodeLen = 64

	payloadLen = 22 // base64url length of PayloadBytes without padding
)

// ErrSecretTooShort indicates a misconfigured signing secret.
var ErrSecretTooShort = errors.New("code secret must be at least 32 bytes")

// codePattern matches the full URL-safe code alphabet.
var codePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Codec generates and verifies signed codes with an injected secret.
// It is safe for concurrent use.
type Codec struct {
	secret []byte
}

// NewCodec creates a Codec for the given signing secret.
// The code length invariant is checked here once: payload and signature
// lengths are compile-time constants, so a violation is a programming
// error, never a per-request condition.
func NewCodec(secret string) (*Codec, error) {
	if len(secret) < 32 {
		return nil, ErrSecretTooShort
	}
	if payloadLen+SignatureLen > MaxCodeLen {
		return nil, fmt.Errorf("code length %d exceeds platform limit %d", payloadLen+SignatureLen, MaxCodeLen)
	}
	return &Codec{secret: []byte(secret)}, nil
}

// Generate draws a random payload and returns payload+signature.
func (c *Codec) Generate() (string, error) {
	buf := make([]byte, PayloadBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate payload: %w", err)
	}
	payload := base64.RawURLEncoding.EncodeToString(buf)
	return payload + c.sign(payload), nil
}

// IsWellFormed is a cheap syntactic check used to reject obviously bad
// input before any cryptographic work: non-empty, within length bounds,
// URL-safe alphabet, long enough to contain a signature.
func (c *Codec) IsWellFormed(code string) bool {
	if code == "" || len(code) > MaxCodeLen || len(code) <= SignatureLen {
		return false
	}
	return codePattern.MatchString(code)
}

// Verify recomputes the signature over the payload portion and compares
// it to the trailing signature in constant time. Returns false on any
// length or format mismatch.
func (c *Codec) Verify(code string) bool {
	if !c.IsWellFormed(code) {
		return false
	}
	split := len(code) - SignatureLen
	payload, sig := code[:split], code[split:]
	expected := c.sign(payload)
	return hmac.Equal([]byte(expected), []byte(sig))
}

// sign computes the truncated base64url HMAC-SHA256 of the encoded payload.
func (c *Codec) sign(payload string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))[:SignatureLen]
}
