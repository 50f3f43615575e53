package domain

// Reason is the closed enumeration of verification failure causes. Reasons
// are internal diagnostics: they feed logs and metrics, and must not be
// returned to untrusted callers (who only ever see a boolean).
type Reason string

const (
	ReasonNone              Reason = ""
	ReasonNilInput          Reason = "NULL_INPUT"
	ReasonUnsupportedType   Reason = "UNSUPPORTED_TYPE"
	ReasonStringLength      Reason = "INVALID_STRING_LENGTH"
	ReasonStringChars       Reason = "INVALID_STRING_CHARS"
	ReasonBinaryLength      Reason = "INVALID_BINARY_LENGTH"
	ReasonUnknownKeyVersion Reason = "UNKNOWN_KEY_VERSION"
	ReasonSignatureMismatch Reason = "SIGNATURE_MISMATCH"
	ReasonDecodeError       Reason = "DECODE_ERROR"
)

// Result is the detailed outcome of a verification. Valid implies Reason is
// ReasonNone and vice versa.
type Result struct {
	Valid  bool
	Reason Reason
}

// Err maps a Reason onto the matching sentinel error for trusted entry
// points that raise instead of reporting. ReasonNone maps to nil.
func (r Reason) Err() error {
	switch r {
	case ReasonNone:
		return nil
	case ReasonNilInput:
		return ErrNilInput
	case ReasonUnsupportedType:
		return ErrUnsupportedInput
	case ReasonStringLength:
		return ErrTextLength
	case ReasonStringChars:
		return ErrTextChar
	case ReasonBinaryLength:
		return ErrBinaryLength
	case ReasonUnknownKeyVersion:
		return ErrUnknownKeyVersion
	case ReasonSignatureMismatch:
		return ErrSignatureMismatch
	default:
		return ErrDecode
	}
}
