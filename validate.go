package mdv

import (
	"bytes"
	"errors"
	"unicode/utf8"
)

var (
	// ErrInvalidUTF8 reports a document that is not valid UTF-8.
	ErrInvalidUTF8 = errors.New("invalid utf-8 input")
	// ErrBinaryInput reports a document that appears to be binary.
	ErrBinaryInput = errors.New("binary input detected")
)

const (
	minBinarySample = 64
	maxControlPct   = 2
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ValidateDocument returns an error if src is not valid UTF-8 or looks binary.
func ValidateDocument(src []byte) error {
	if !utf8.Valid(src) {
		return ErrInvalidUTF8
	}
	var total, control int
	for _, b := range src {
		total++
		if b == 0x00 {
			return ErrBinaryInput
		}
		if isControlByte(b) {
			control++
		}
	}
	if total >= minBinarySample && control*100 >= total*maxControlPct {
		return ErrBinaryInput
	}
	return nil
}

// decodeDocument validates src and returns it as text without a leading BOM.
func decodeDocument(src []byte) (string, error) {
	if err := ValidateDocument(src); err != nil {
		return "", err
	}
	return string(bytes.TrimPrefix(src, utf8BOM)), nil
}

// isControlByte reports control bytes that count towards binary detection.
// Whitespace controls and ESC do not count.
func isControlByte(b byte) bool {
	if b < 0x09 {
		return true
	}
	if b > 0x0D && b < 0x20 && b != 0x1B {
		return true
	}
	if b == 0x7F {
		return true
	}
	return false
}
