package domain

import (
	"encoding/base32"
	"fmt"
	"strings"
)

// textEncoding is RFC 4648 base32 (A-Z, 2-7) without padding. 18 bytes encode
// to exactly 29 characters; the final character carries 4 data bits and one
// zero pad bit.
var textEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// EncodeText renders an 18-byte identifier as its canonical upper-case
// 29-character text form. The array type makes the length precondition
// unrepresentable to violate.
func EncodeText(b [BinaryLen]byte) string {
	return textEncoding.EncodeToString(b[:])
}

// DecodeText parses the 29-character text form back to 18 bytes. Input is
// whitespace-trimmed and case-insensitive. Errors identify the first problem:
// the 0-based position of the first character outside the base32 alphabet,
// wrong post-trim length, or a non-canonical final character. The alphabet
// check runs first so garbage input is reported as garbage, not as a string
// of the wrong size.
func DecodeText(s string) ([BinaryLen]byte, error) {
	var out [BinaryLen]byte
	s = strings.ToUpper(strings.TrimSpace(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 'A' || c > 'Z') && (c < '2' || c > '7') {
			return out, fmt.Errorf("character %q at position %d: %w", c, i, ErrTextChar)
		}
	}
	if len(s) != EncodedLen {
		return out, fmt.Errorf("got %d characters, want %d: %w", len(s), EncodedLen, ErrTextLength)
	}
	decoded, err := textEncoding.DecodeString(s)
	if err != nil {
		return out, fmt.Errorf("%v: %w", err, ErrDecode)
	}
	if len(decoded) != BinaryLen {
		// unreachable for 29 alphabet characters; kept as a sanity bound
		return out, fmt.Errorf("decoded to %d bytes, want %d: %w", len(decoded), BinaryLen, ErrDecode)
	}
	// The final character carries 4 data bits plus one pad bit the stdlib
	// decoder discards rather than validates. Re-encoding catches a set pad
	// bit, keeping text and binary forms bijective: every identifier has
	// exactly one spelling.
	if textEncoding.EncodeToString(decoded) != s {
		return out, fmt.Errorf("character %q at position %d is not canonical: %w", s[EncodedLen-1], EncodedLen-1, ErrTextChar)
	}
	copy(out[:], decoded)
	return out, nil
}
