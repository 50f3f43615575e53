package app

import (
	"github.com/haukened/vid/internal/domain"
	"github.com/haukened/vid/internal/keyset"
)

// Verifier authenticates identifiers against a key set. It is stateless and
// safe for any number of concurrent callers; the key set is immutable.
type Verifier struct {
	keys *keyset.KeySet
}

// NewVerifier returns a verifier over the given key set.
func NewVerifier(keys *keyset.KeySet) *Verifier { return &Verifier{keys: keys} }

// VerifyDetailed authenticates any accepted representation and reports the
// failure cause from the closed Reason enumeration. It never panics and
// never returns an error; this is the attacker-facing entry point.
func (v *Verifier) VerifyDetailed(input any) domain.Result {
	bin, reason := domain.NormalizeBinary(input)
	if reason != domain.ReasonNone {
		return domain.Result{Reason: reason}
	}
	secret, ok := v.keys.Secret(bin[0])
	if !ok {
		return domain.Result{Reason: domain.ReasonUnknownKeyVersion}
	}
	if !domain.VerifySignature(bin[:domain.PayloadLen], bin[domain.PayloadLen:], secret) {
		return domain.Result{Reason: domain.ReasonSignatureMismatch}
	}
	return domain.Result{Valid: true}
}

// Verify collapses VerifyDetailed to the boolean safe to hand untrusted
// callers.
func (v *Verifier) Verify(input any) bool {
	return v.VerifyDetailed(input).Valid
}
