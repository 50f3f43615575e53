package domain

import (
	"fmt"
	"time"
)

// MinSaneUnixMilli is the structural lower bound on decoded timestamps:
// 2020-01-01T00:00:00Z. No VID was ever minted before the scheme existed, so
// anything earlier is corrupt or adversarial data.
const MinSaneUnixMilli int64 = 1577836800000

// Claims is the structurally decoded content of a VID. A Claims value says
// nothing about authenticity; callers who care must verify the signature
// first.
type Claims struct {
	KeyVersion uint8     `json:"key_version"`
	IssuedAt   time.Time `json:"issued_at"`
	UnixMilli  int64     `json:"unix_milli"`
	NodeID     uint16    `json:"node_id"`
	Sequence   uint16    `json:"sequence"`
}

// ISO8601 renders the mint instant with millisecond precision in UTC.
func (c Claims) ISO8601() string {
	return c.IssuedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

// ParseClaims decodes any accepted representation into Claims. Unlike
// verification this path raises: the caller asked for structured data, so
// malformed input and timestamps outside [MinSaneUnixMilli, MaxTimestamp]
// are errors rather than silently clamped values.
func ParseClaims(input any) (Claims, error) {
	bin, reason := NormalizeBinary(input)
	if reason != ReasonNone {
		return Claims{}, reason.Err()
	}
	return claimsFromBinary(bin)
}

func claimsFromBinary(b [BinaryLen]byte) (Claims, error) {
	f, err := DecodePayload(b[:PayloadLen])
	if err != nil {
		return Claims{}, err
	}
	if f.UnixMilli < MinSaneUnixMilli || f.UnixMilli > MaxTimestamp {
		return Claims{}, fmt.Errorf("embedded timestamp %d outside sane window: %w", f.UnixMilli, ErrTimestampRange)
	}
	return Claims{
		KeyVersion: f.KeyVersion,
		IssuedAt:   time.UnixMilli(f.UnixMilli).UTC(),
		UnixMilli:  f.UnixMilli,
		NodeID:     f.NodeID,
		Sequence:   f.Sequence,
	}, nil
}
