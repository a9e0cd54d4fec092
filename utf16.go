package dsstore

import (
	"fmt"
	"unicode/utf16"
	"unicode/utf8"
)

// decodeUTF16BE decodes raw big-endian UTF-16 bytes (length must be even) into
// a Go string, replacing unpaired surrogates with the Unicode replacement
// character the way utf16.Decode does, but reporting odd-length input as an
// explicit error rather than silently truncating.
func decodeUTF16BE(b []byte) (string, error) {
	if len(b)%2 != 0 {
		return "", fmt.Errorf("%w: odd byte length %d", ErrInvalidUTF16String, len(b))
	}
	units := make([]uint16, len(b)/2)
	for i := range units {
		units[i] = uint16(b[2*i])<<8 | uint16(b[2*i+1])
	}
	runes := utf16.Decode(units)
	return string(runes), nil
}

// encodeUTF16BE encodes s to big-endian UTF-16 bytes and also returns the
// number of 16-bit code units, which is what the on-disk length prefix counts.
func encodeUTF16BE(s string) ([]byte, uint32, error) {
	if !utf8.ValidString(s) {
		return nil, 0, fmt.Errorf("%w: input is not valid UTF-8", ErrInvalidUTF16String)
	}
	units := utf16.Encode([]rune(s))
	if uint64(len(units)) > 0xffffffff {
		return nil, 0, fmt.Errorf("%w: string too long to encode", ErrInvalidUTF16String)
	}
	b := make([]byte, len(units)*2)
	for i, u := range units {
		b[2*i] = byte(u >> 8)
		b[2*i+1] = byte(u)
	}
	return b, uint32(len(units)), nil
}
