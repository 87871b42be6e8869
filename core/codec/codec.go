// Package codec converts between text and the integer message space of the
// cipher.
package codec

import (
	"errors"
	"fmt"
	"math/big"
	"unicode/utf8"
)

var (
	// ErrInvalidUTF8 is returned when decoded bytes do not form valid UTF-8.
	ErrInvalidUTF8 = errors.New("codec: bytes are not valid UTF-8")

	// ErrNegative is returned when a negative integer is given to ToText.
	ErrNegative = errors.New("codec: negative integer has no text form")
)

// ToInt packs the UTF-8 bytes of s into a non-negative integer, treating
// the byte string as an unsigned big-endian magnitude. No sign byte is
// introduced.
func ToInt(s string) *big.Int {
	return new(big.Int).SetBytes([]byte(s))
}

// ToText inverts ToInt by decoding the integer's minimal big-endian
// magnitude as UTF-8.
//
// A text whose byte form begins with a NUL cannot round-trip, since the
// magnitude drops leading zero bytes.
func ToText(x *big.Int) (string, error) {
	if x == nil || x.Sign() < 0 {
		return "", ErrNegative
	}
	b := x.Bytes()
	if !utf8.Valid(b) {
		return "", fmt.Errorf("%w: %d bytes", ErrInvalidUTF8, len(b))
	}
	return string(b), nil
}
