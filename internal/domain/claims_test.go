package domain

import (
	"errors"
	"testing"
)

func TestParseClaims(t *testing.T) {
	v := mustVID(t, 1700000000000, 300, 12)
	c, err := ParseClaims(v.String())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.KeyVersion != 1 || c.NodeID != 300 || c.Sequence != 12 {
		t.Fatalf("unexpected claims: %+v", c)
	}
	if c.UnixMilli != 1700000000000 || c.IssuedAt.UnixMilli() != 1700000000000 {
		t.Fatalf("timestamp mismatch: %+v", c)
	}
	if c.ISO8601() != "2023-11-14T22:13:20.000Z" {
		t.Fatalf("iso text %q", c.ISO8601())
	}
}

func TestParseClaimsIgnoresSignature(t *testing.T) {
	v := mustVID(t, 1700000000000, 1, 0)
	b := v.Bytes()
	b[BinaryLen-1] ^= 0xFF // corrupt signature only
	c, err := ParseClaims(b)
	if err != nil {
		t.Fatalf("structural decode must not check authenticity: %v", err)
	}
	if c.NodeID != 1 {
		t.Fatalf("claims: %+v", c)
	}
}

func TestParseClaimsRejects(t *testing.T) {
	preEpoch := mustVID(t, MinSaneUnixMilli-1, 0, 0)

	tests := []struct {
		name  string
		input any
		want  error
	}{
		{"nil", nil, ErrNilInput},
		{"type", 3.14, ErrUnsupportedInput},
		{"short_binary", make([]byte, 17), ErrBinaryLength},
		{"short_string", "ABC", ErrTextLength},
		{"bad_char", "0AAAAAAAAAAAAAAAAAAAAAAAAAAAA", ErrTextChar},
		{"ancient_timestamp", preEpoch.Bytes(), ErrTimestampRange},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseClaims(tc.input); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}
