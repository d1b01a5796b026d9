package xr

import (
	"bytes"
	"errors"
	"unicode/utf8"
)

// Sizes of the fixed name buffers, including the terminating NUL.
const (
	MaxApplicationNameSize     = 128
	MaxEngineNameSize          = 128
	MaxRuntimeNameSize         = 128
	MaxAPILayerNameSize        = 256
	MaxActionSetNameSize       = 64
	MaxActionNameSize          = 64
	MaxLocalizedActionSetName  = 128
	MaxLocalizedActionNameSize = 128
	MaxPathLength              = 256
)

var (
	ErrMissingNul  = errors.New("string buffer is not NUL terminated")
	ErrInvalidUTF8 = errors.New("string buffer is not valid UTF-8")
	ErrTooLong     = errors.New("string does not fit the buffer")
)

// CString reads a NUL-terminated UTF-8 string out of a fixed buffer.
func CString(b []byte) (string, error) {
	n := bytes.IndexByte(b, 0)
	if n < 0 {
		return "", ErrMissingNul
	}
	if !utf8.Valid(b[:n]) {
		return "", ErrInvalidUTF8
	}
	return string(b[:n]), nil
}

// PutString copies s into dst followed by a NUL, clearing the remainder.
func PutString(dst []byte, s string) error {
	if len(s)+1 > len(dst) {
		return ErrTooLong
	}
	n := copy(dst, s)
	clear(dst[n:])
	return nil
}
