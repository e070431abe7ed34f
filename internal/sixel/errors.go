// Package sixel implements a clean-room decoder for the DEC SIXEL terminal
// graphics format. It consumes a byte stream containing a SIXEL DCS
// sequence and produces a rectangular RGBA raster together with its
// dimensions. The decoder is synchronous, allocates only the growable
// canvas and a fixed-size palette table, and never partially returns on
// error.
package sixel

import "fmt"

// ErrorKind classifies a decode failure.
type ErrorKind int

const (
	// ErrMissingDCS means the input did not begin with a recognized DCS
	// introducer (ESC P or the C1 0x90) after skipping leading whitespace.
	ErrMissingDCS ErrorKind = iota
	// ErrBadDCSFinal means a DCS introducer was found but the byte before
	// the payload was not 'q'.
	ErrBadDCSFinal
	// ErrDimensionTooLarge means a raster attribute or cumulative write
	// would exceed MaxDimension pixels on either axis.
	ErrDimensionTooLarge
	// ErrAllocationFailed means canvas growth could not be satisfied.
	ErrAllocationFailed
	// ErrMalformedParameter means a numeric parse consumed zero bytes
	// where a digit was required.
	ErrMalformedParameter
)

func (k ErrorKind) String() string {
	switch k {
	case ErrMissingDCS:
		return "missing DCS introducer"
	case ErrBadDCSFinal:
		return "DCS final byte is not 'q'"
	case ErrDimensionTooLarge:
		return "image dimensions exceed the implementation maximum"
	case ErrAllocationFailed:
		return "canvas allocation failed"
	case ErrMalformedParameter:
		return "malformed numeric parameter"
	default:
		return "unknown sixel decode error"
	}
}

// Error is the typed failure returned by Decode and DecodeFromDCS. No
// partial image is returned alongside a non-nil Error.
type Error struct {
	Kind ErrorKind
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func newError(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}
