package domain

import (
	"bytes"
	"errors"
	"fmt"
	"time"
)

// VID is an immutable 18-byte signed identifier. The zero value is not a
// valid identifier; construct via FromBinary, FromText, or assemble. The
// internal buffer is never exposed: binary reads return fresh copies, and the
// text form is computed exactly once at construction.
type VID struct {
	b    [BinaryLen]byte
	text string
}

// FromBinary copies the given 18 bytes into a new VID. The input slice is
// not retained.
func FromBinary(b []byte) (VID, error) {
	if b == nil {
		return VID{}, ErrNilInput
	}
	if len(b) != BinaryLen {
		return VID{}, fmt.Errorf("got %d bytes, want %d: %w", len(b), BinaryLen, ErrBinaryLength)
	}
	var v VID
	copy(v.b[:], b)
	v.text = EncodeText(v.b)
	return v, nil
}

// FromText parses the 29-character base32 form into a VID.
func FromText(s string) (VID, error) {
	b, err := DecodeText(s)
	if err != nil {
		return VID{}, err
	}
	return VID{b: b, text: EncodeText(b)}, nil
}

// FromParts builds a VID from a signed payload and its signature. This is
// the generator's constructor; it trusts the contents but not the lengths.
func FromParts(payload, signature []byte) (VID, error) {
	if len(payload) != PayloadLen {
		return VID{}, fmt.Errorf("payload is %d bytes, want %d: %w", len(payload), PayloadLen, ErrBinaryLength)
	}
	if len(signature) != SignatureLen {
		return VID{}, fmt.Errorf("signature is %d bytes, want %d: %w", len(signature), SignatureLen, ErrBinaryLength)
	}
	var v VID
	copy(v.b[:PayloadLen], payload)
	copy(v.b[offSignature:], signature)
	v.text = EncodeText(v.b)
	return v, nil
}

// Bytes returns a fresh copy of the 18-byte binary form.
func (v VID) Bytes() []byte {
	out := make([]byte, BinaryLen)
	copy(out, v.b[:])
	return out
}

// Payload returns a copy of the signed 11-byte prefix.
func (v VID) Payload() []byte {
	out := make([]byte, PayloadLen)
	copy(out, v.b[:PayloadLen])
	return out
}

// Signature returns a copy of the 7-byte truncated HMAC.
func (v VID) Signature() []byte {
	out := make([]byte, SignatureLen)
	copy(out, v.b[offSignature:])
	return out
}

// String returns the cached canonical text form.
func (v VID) String() string { return v.text }

// KeyVersion reports which key version signed this identifier.
func (v VID) KeyVersion() uint8 { return v.b[offKeyVersion] }

// Time returns the embedded mint instant at millisecond precision, UTC.
func (v VID) Time() time.Time {
	f, _ := DecodePayload(v.b[:PayloadLen])
	return time.UnixMilli(f.UnixMilli).UTC()
}

// NodeID reports the minting node identity.
func (v VID) NodeID() uint16 {
	f, _ := DecodePayload(v.b[:PayloadLen])
	return f.NodeID
}

// Sequence reports the per-millisecond counter value.
func (v VID) Sequence() uint16 {
	f, _ := DecodePayload(v.b[:PayloadLen])
	return f.Sequence
}

// Compare orders two VIDs by their binary form; mint order for identifiers
// from one node.
func (v VID) Compare(o VID) int { return bytes.Compare(v.b[:], o.b[:]) }

// NormalizeBinary coerces any accepted representation (VID, string, []byte,
// [18]byte) to the fixed binary form, reporting a Reason instead of an error
// because inputs here may be attacker-controlled.
func NormalizeBinary(input any) ([BinaryLen]byte, Reason) {
	var out [BinaryLen]byte
	switch v := input.(type) {
	case nil:
		return out, ReasonNilInput
	case VID:
		return v.b, ReasonNone
	case [BinaryLen]byte:
		return v, ReasonNone
	case []byte:
		if v == nil {
			return out, ReasonNilInput
		}
		if len(v) != BinaryLen {
			return out, ReasonBinaryLength
		}
		copy(out[:], v)
		return out, ReasonNone
	case string:
		b, err := DecodeText(v)
		if err != nil {
			switch {
			case errors.Is(err, ErrTextChar):
				return out, ReasonStringChars
			case errors.Is(err, ErrTextLength):
				return out, ReasonStringLength
			default:
				return out, ReasonDecodeError
			}
		}
		return b, ReasonNone
	default:
		return out, ReasonUnsupportedType
	}
}
