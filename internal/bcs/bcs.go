// Package bcs implements the subset of Binary Canonical Serialization used by
// Move constants: fixed-width little-endian integers, ULEB128 lengths and
// length-prefixed byte strings.
package bcs

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"math/big"
	"strings"
	"unicode/utf8"
)

// Errors.
var (
	ErrEncoding = errors.New("bcs: encoding error")
	ErrDecoding = errors.New("bcs: decoding error")
)

// maxULEB128Bytes is enough for any uint64.
const maxULEB128Bytes = 10

// EncodeU8 serializes v as a single byte.
func EncodeU8(v uint8) []byte {
	return []byte{v}
}

// EncodeU64 serializes v as 8 little-endian bytes.
func EncodeU64(v uint64) []byte {
	out := make([]byte, 8)
	binary.LittleEndian.PutUint64(out, v)
	return out
}

// EncodeU64String parses a base-10 integer string and serializes it as a u64.
// Values with a fractional part, a sign or more than 64 bits are rejected.
func EncodeU64String(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not an integer", ErrEncoding, s)
	}
	return EncodeU64Big(n)
}

// EncodeU64Big serializes n as a u64.
func EncodeU64Big(n *big.Int) ([]byte, error) {
	if n.Sign() < 0 {
		return nil, fmt.Errorf("%w: u64 cannot be negative (%s)", ErrEncoding, n)
	}
	if !n.IsUint64() {
		return nil, fmt.Errorf("%w: %s overflows u64", ErrEncoding, n)
	}
	return EncodeU64(n.Uint64()), nil
}

// EncodeString serializes s as ULEB128(len) followed by its UTF-8 bytes.
func EncodeString(s string) ([]byte, error) {
	if !utf8.ValidString(s) {
		return nil, fmt.Errorf("%w: string is not valid UTF-8", ErrEncoding)
	}
	return EncodeBytes([]byte(s)), nil
}

// EncodeBytes serializes b as ULEB128(len) followed by b.
func EncodeBytes(b []byte) []byte {
	out := EncodeULEB128(uint64(len(b)))
	return append(out, b...)
}

// EncodeULEB128 returns the unsigned LEB128 encoding of v.
func EncodeULEB128(v uint64) []byte {
	out := make([]byte, 0, 2)
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v == 0 {
			return append(out, b)
		}
		out = append(out, b|0x80)
	}
}

// DecodeULEB128 reads an unsigned LEB128 value from the start of b and
// returns it together with the number of bytes consumed. Non-canonical
// encodings (trailing zero groups) are rejected.
func DecodeULEB128(b []byte) (uint64, int, error) {
	var v uint64
	for i := 0; i < len(b) && i < maxULEB128Bytes; i++ {
		c := b[i]
		digit := uint64(c & 0x7f)
		shift := uint(7 * i)
		if i == maxULEB128Bytes-1 && digit > 1 {
			return 0, 0, fmt.Errorf("%w: uleb128 overflows u64", ErrDecoding)
		}
		v |= digit << shift
		if c&0x80 == 0 {
			if i > 0 && c == 0 {
				return 0, 0, fmt.Errorf("%w: non-canonical uleb128", ErrDecoding)
			}
			return v, i + 1, nil
		}
	}
	return 0, 0, fmt.Errorf("%w: truncated uleb128", ErrDecoding)
}

// DecodeU8 reads exactly one byte.
func DecodeU8(b []byte) (uint8, error) {
	if len(b) != 1 {
		return 0, fmt.Errorf("%w: u8 needs 1 byte, got %d", ErrDecoding, len(b))
	}
	return b[0], nil
}

// DecodeU64 reads exactly 8 little-endian bytes.
func DecodeU64(b []byte) (uint64, error) {
	if len(b) != 8 {
		return 0, fmt.Errorf("%w: u64 needs 8 bytes, got %d", ErrDecoding, len(b))
	}
	return binary.LittleEndian.Uint64(b), nil
}

// DecodeBytes reads a length-prefixed byte string that must span all of b.
func DecodeBytes(b []byte) ([]byte, error) {
	n, read, err := DecodeULEB128(b)
	if err != nil {
		return nil, err
	}
	if n > math.MaxInt32 || uint64(len(b)-read) != n {
		return nil, fmt.Errorf("%w: length prefix %d does not match %d payload bytes", ErrDecoding, n, len(b)-read)
	}
	return append([]byte(nil), b[read:]...), nil
}

// DecodeString reads a length-prefixed UTF-8 string that must span all of b.
func DecodeString(b []byte) (string, error) {
	raw, err := DecodeBytes(b)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("%w: string is not valid UTF-8", ErrDecoding)
	}
	return string(raw), nil
}
