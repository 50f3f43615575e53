package domain

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"
)

// SecretLen is the required length of a derived signing secret.
const SecretLen = 32

// Sign computes HMAC-SHA256(secret, payload) and returns the first
// SignatureLen bytes of the digest. The 7-byte truncation is a deliberate
// tradeoff: the 18-byte identifier budget leaves exactly 7 bytes after the
// 11-byte prefix, and the resulting 2^56 forgery space assumes callers rate
// limit verification attempts externally.
func Sign(payload, secret []byte) ([]byte, error) {
	if len(payload) == 0 {
		return nil, fmt.Errorf("sign: empty payload: %w", ErrNilInput)
	}
	if len(secret) < SecretLen {
		return nil, fmt.Errorf("sign: secret is %d bytes, need at least %d", len(secret), SecretLen)
	}
	mac := hmac.New(sha256.New, secret)
	mac.Write(payload)
	return mac.Sum(nil)[:SignatureLen], nil
}

// VerifySignature recomputes the truncated HMAC and compares in constant
// time. It never fails loudly: any structural problem (wrong signature or
// secret length, empty payload) reports false, since this path receives
// attacker-controlled input.
func VerifySignature(payload, signature, secret []byte) bool {
	if len(signature) != SignatureLen {
		return false
	}
	want, err := Sign(payload, secret)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(want, signature) == 1
}
