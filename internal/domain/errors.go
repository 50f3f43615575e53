package domain

import "errors"

// Sentinel errors for the trusted entry points (mint, decode, construction).
// Untrusted verification paths never surface these; they report a Reason
// instead.
var (
	ErrNilInput          = errors.New("nil input")
	ErrUnsupportedInput  = errors.New("unsupported input type")
	ErrTextLength        = errors.New("text form must be 29 characters")
	ErrTextChar          = errors.New("text form contains non-base32 character")
	ErrBinaryLength      = errors.New("binary form has wrong length")
	ErrDecode            = errors.New("text form is not decodable base32")
	ErrTimestampRange    = errors.New("timestamp outside representable range")
	ErrUnknownKeyVersion = errors.New("unknown key version")
	ErrSignatureMismatch = errors.New("signature mismatch")
	ErrClockFault        = errors.New("clock did not advance within wait deadline")
)
