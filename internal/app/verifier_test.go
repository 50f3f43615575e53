package app

import (
	"strings"
	"testing"
	"time"

	"github.com/haukened/vid/internal/domain"
	"github.com/haukened/vid/internal/keyset"
)

func mintUnder(t *testing.T, keys map[uint8]string, current uint8) (domain.VID, *keyset.KeySet) {
	t.Helper()
	ks, err := keyset.New(keys, current)
	if err != nil {
		t.Fatalf("keyset: %v", err)
	}
	version, secret := ks.Current()
	clock := &fakeClock{milli: 1700000000000}
	g, err := NewGenerator(clock, &tickingSleeper{clock: clock}, 7, version, secret)
	if err != nil {
		t.Fatalf("generator: %v", err)
	}
	v, err := g.Mint()
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	return v, ks
}

func TestVerifyAllRepresentations(t *testing.T) {
	v, ks := mintUnder(t, map[uint8]string{1: "0123456789abcdef0123456789abcdef"}, 1)
	ver := NewVerifier(ks)

	for name, input := range map[string]any{
		"vid":    v,
		"string": v.String(),
		"bytes":  v.Bytes(),
	} {
		if !ver.Verify(input) {
			t.Errorf("%s representation rejected", name)
		}
	}
}

func TestVerifyKeyRotation(t *testing.T) {
	// minted under version 1
	v, _ := mintUnder(t, map[uint8]string{1: "0123456789abcdef0123456789abcdef"}, 1)

	// verifies against a set holding versions 1 and 2
	both, err := keyset.New(map[uint8]string{
		1: "0123456789abcdef0123456789abcdef",
		2: "fedcba9876543210fedcba9876543210",
	}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if !NewVerifier(both).Verify(v) {
		t.Fatal("rotated set should still verify version 1")
	}

	// fails with UNKNOWN_KEY_VERSION against a set holding only version 2
	onlyNew, err := keyset.New(map[uint8]string{2: "fedcba9876543210fedcba9876543210"}, 2)
	if err != nil {
		t.Fatal(err)
	}
	res := NewVerifier(onlyNew).VerifyDetailed(v)
	if res.Valid || res.Reason != domain.ReasonUnknownKeyVersion {
		t.Fatalf("result %+v, want UNKNOWN_KEY_VERSION", res)
	}
}

func TestVerifyDetailedReasons(t *testing.T) {
	v, ks := mintUnder(t, map[uint8]string{1: "0123456789abcdef0123456789abcdef"}, 1)
	ver := NewVerifier(ks)

	tampered := v.Bytes()
	tampered[8] ^= 0x01 // flip a payload bit

	tests := []struct {
		name  string
		input any
		want  domain.Reason
	}{
		{"nil", nil, domain.ReasonNilInput},
		{"unsupported", 12.5, domain.ReasonUnsupportedType},
		{"bad_chars", "not-base32!!", domain.ReasonStringChars},
		{"bad_length_string", "AAAAAAAAAAAAAAAAAAAAAAAAAAAA", domain.ReasonStringLength},
		{"bad_length_binary", make([]byte, 17), domain.ReasonBinaryLength},
		{"tampered_payload", tampered, domain.ReasonSignatureMismatch},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := ver.VerifyDetailed(tc.input)
			if res.Valid || res.Reason != tc.want {
				t.Fatalf("result %+v, want reason %q", res, tc.want)
			}
		})
	}
}

func TestVerifyRejectsAlternateSpelling(t *testing.T) {
	// A spelling that differs from the canonical text form only in the
	// final character's pad bit must not authenticate, even though a naive
	// decode would yield the same 18 bytes.
	v, ks := mintUnder(t, map[uint8]string{1: "0123456789abcdef0123456789abcdef"}, 1)
	ver := NewVerifier(ks)

	s := v.String()
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ234567"
	alt := s[:len(s)-1] + string(alphabet[strings.IndexByte(alphabet, s[len(s)-1])+1])

	if !ver.Verify(s) {
		t.Fatal("canonical spelling rejected")
	}
	res := ver.VerifyDetailed(alt)
	if res.Valid || res.Reason != domain.ReasonStringChars {
		t.Fatalf("alternate spelling %q: result %+v, want INVALID_STRING_CHARS", alt, res)
	}
}

func TestVerifyZeroBinary(t *testing.T) {
	_, ks := mintUnder(t, map[uint8]string{1: "0123456789abcdef0123456789abcdef"}, 1)
	ver := NewVerifier(ks)
	res := ver.VerifyDetailed(make([]byte, 17))
	if res.Reason != domain.ReasonBinaryLength {
		t.Fatalf("17 zero bytes: %+v", res)
	}
	// 18 zero bytes name key version 0, which the set does not hold
	res = ver.VerifyDetailed(make([]byte, 18))
	if res.Reason != domain.ReasonUnknownKeyVersion {
		t.Fatalf("18 zero bytes: %+v", res)
	}
}

// compile-time interface checks for the port adapters
var (
	_ Clock   = ClockFunc(func() time.Time { return time.Time{} })
	_ Sleeper = SleeperFunc(func(time.Duration) {})
)
