// Package domain contains the pure core of the VID system: the fixed 18-byte
// binary layout, the unpadded base32 text codec, the truncated-HMAC signer,
// the immutable VID value type, and the structural claims decoder. Nothing in
// this package performs I/O, logging, or key management; those belong to the
// app and keyset layers.
package domain

import (
	"encoding/binary"
	"fmt"
)

// Binary layout of a VID, big-endian throughout:
//
//	offset 0,  1 byte  : key version
//	offset 1,  6 bytes : milliseconds since the Unix epoch
//	offset 7,  2 bytes : node id
//	offset 9,  2 bytes : sequence
//	offset 11, 7 bytes : HMAC-SHA256 over bytes 0-10, truncated
const (
	BinaryLen    = 18 // full identifier
	PayloadLen   = 11 // signed prefix
	SignatureLen = 7  // truncated HMAC
	EncodedLen   = 29 // unpadded base32 text form

	offKeyVersion = 0
	offTimestamp  = 1
	offNodeID     = 7
	offSequence   = 9
	offSignature  = 11
)

// MaxTimestamp is the largest millisecond value the 6-byte timestamp field
// can hold (roughly year 10895).
const MaxTimestamp int64 = 1<<48 - 1

// Fields holds the unpacked unsigned prefix of a VID.
type Fields struct {
	KeyVersion uint8
	UnixMilli  int64
	NodeID     uint16
	Sequence   uint16
}

// EncodePayload packs the signed prefix into its 11-byte wire form. The
// timestamp is the only field whose range the type system cannot enforce;
// values outside [0, MaxTimestamp] are a caller bug and return
// ErrTimestampRange.
func EncodePayload(keyVersion uint8, unixMilli int64, nodeID, sequence uint16) ([]byte, error) {
	if unixMilli < 0 || unixMilli > MaxTimestamp {
		return nil, fmt.Errorf("timestamp %d out of 48-bit range: %w", unixMilli, ErrTimestampRange)
	}
	b := make([]byte, PayloadLen)
	b[offKeyVersion] = keyVersion
	// 6-byte timestamp split as a 32-bit high part and 16-bit low part.
	binary.BigEndian.PutUint32(b[offTimestamp:], uint32(unixMilli>>16))
	binary.BigEndian.PutUint16(b[offTimestamp+4:], uint16(unixMilli))
	binary.BigEndian.PutUint16(b[offNodeID:], nodeID)
	binary.BigEndian.PutUint16(b[offSequence:], sequence)
	return b, nil
}

// DecodePayload unpacks the signed prefix. It accepts either a bare 11-byte
// payload or a full 18-byte identifier (the signature tail is ignored).
func DecodePayload(b []byte) (Fields, error) {
	if len(b) != PayloadLen && len(b) != BinaryLen {
		return Fields{}, fmt.Errorf("payload is %d bytes, want %d or %d: %w", len(b), PayloadLen, BinaryLen, ErrBinaryLength)
	}
	high := binary.BigEndian.Uint32(b[offTimestamp:])
	low := binary.BigEndian.Uint16(b[offTimestamp+4:])
	return Fields{
		KeyVersion: b[offKeyVersion],
		UnixMilli:  int64(high)<<16 | int64(low),
		NodeID:     binary.BigEndian.Uint16(b[offNodeID:]),
		Sequence:   binary.BigEndian.Uint16(b[offSequence:]),
	}, nil
}
