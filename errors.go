package lnk

import (
	"errors"
	"fmt"
)

// FormatError is returned when a byte stream does not have the structure
// a .lnk file is required to have: bad magic numbers, malformed records,
// offsets that point outside the buffer.
type FormatError struct {
	off int64
	msg string
	val any
}

func (e *FormatError) Error() string {
	msg := e.msg
	if e.val != nil {
		msg += fmt.Sprintf(" %v", e.val)
	}
	if e.off != 0 {
		msg += fmt.Sprintf(" (at byte %#x)", e.off)
	}
	return msg
}

func formatErrorf(off int64, val any, format string, args ...any) *FormatError {
	return &FormatError{off: off, msg: fmt.Sprintf(format, args...), val: val}
}

var (
	// ErrMissingInformation is returned when serializing an entry that
	// lacks a field required to produce valid bytes (no type, no full
	// name, no GUID, no drive type, no link location).
	ErrMissingInformation = errors.New("lnk: missing information")

	// ErrInvalidKey is returned when a hot-key string names a key or
	// modifier absent from the fixed virtual-key table.
	ErrInvalidKey = errors.New("lnk: invalid hot key")

	// ErrUnsupported is returned for constructs the codec recognizes but
	// deliberately does not decode (a Network Places root in an ID list).
	// A LinkInfo with an extended-unicode header is not an error: its
	// extra offset fields are logged and left unread.
	ErrUnsupported = errors.New("lnk: unsupported")

	// ErrStructure is returned when a Target ID List violates the
	// "MY_COMPUTER root requires a drive or known-folder as second
	// element" invariant.
	ErrStructure = errors.New("lnk: structural validation failed")
)
