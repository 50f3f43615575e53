// Package keyset manages the key-version to signing-secret mapping. Raw
// secrets are validated and immediately derived to fixed 32-byte keys via
// SHA-256; the raw strings are never retained. A KeySet is immutable after
// construction, so lookups need no locking; key rotation means building a new
// KeySet and reconstructing the service around it.
package keyset

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"sort"
)

// MinSecretLen is the minimum accepted raw secret length.
const MinSecretLen = 16

var (
	ErrNoKeys         = errors.New("key set must contain at least one key")
	ErrSecretTooShort = errors.New("raw secret shorter than 16 characters")
	ErrCurrentMissing = errors.New("current key version not present in key set")
)

// KeySet maps key versions to derived 32-byte secrets.
type KeySet struct {
	keys    map[uint8][]byte
	current uint8
}

// New derives a KeySet from raw secrets. Configuration problems (empty set,
// undersized secret, absent current version) fail fast here rather than at
// mint or verify time.
func New(secrets map[uint8]string, current uint8) (*KeySet, error) {
	if len(secrets) == 0 {
		return nil, ErrNoKeys
	}
	keys := make(map[uint8][]byte, len(secrets))
	for version, raw := range secrets {
		if len(raw) < MinSecretLen {
			return nil, fmt.Errorf("key version %d: %w", version, ErrSecretTooShort)
		}
		sum := sha256.Sum256([]byte(raw))
		keys[version] = sum[:]
	}
	if _, ok := keys[current]; !ok {
		return nil, fmt.Errorf("version %d: %w", current, ErrCurrentMissing)
	}
	return &KeySet{keys: keys, current: current}, nil
}

// Secret returns a copy of the derived secret for the given version.
func (k *KeySet) Secret(version uint8) ([]byte, bool) {
	s, ok := k.keys[version]
	if !ok {
		return nil, false
	}
	out := make([]byte, len(s))
	copy(out, s)
	return out, true
}

// Current returns the designated signing version and a copy of its secret.
func (k *KeySet) Current() (uint8, []byte) {
	s, _ := k.Secret(k.current)
	return k.current, s
}

// Versions lists the known key versions in ascending order.
func (k *KeySet) Versions() []uint8 {
	out := make([]uint8, 0, len(k.keys))
	for v := range k.keys {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
