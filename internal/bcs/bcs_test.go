package bcs_test

import (
	"math"
	"math/big"
	"testing"

	"github.com/Mohsinsiddi/suiforge/internal/bcs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// fixed-width integers
// ---------------------------------------------------------------------------

func TestEncodeU8(t *testing.T) {
	assert.Equal(t, []byte{0x2c}, bcs.EncodeU8(44))
}

func TestEncodeU64LittleEndian(t *testing.T) {
	assert.Equal(t, []byte{0x42, 0, 0, 0, 0, 0, 0, 0}, bcs.EncodeU64(66))
	assert.Equal(t, []byte{0x00, 0x10, 0xa5, 0xd4, 0xe8, 0, 0, 0}, bcs.EncodeU64(1_000_000_000_000))
}

func TestU8RoundTrip(t *testing.T) {
	for _, v := range []uint8{0, 9, math.MaxUint8} {
		got, err := bcs.DecodeU8(bcs.EncodeU8(v))
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestU64RoundTrip(t *testing.T) {
	for _, v := range []uint64{0, 1 << 53, 100_000_000_000, math.MaxUint64} {
		got, err := bcs.DecodeU64(bcs.EncodeU64(v))
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestDecodeU64WrongLength(t *testing.T) {
	_, err := bcs.DecodeU64([]byte{1, 2, 3})
	assert.ErrorIs(t, err, bcs.ErrDecoding)
}

func TestDecodeU8WrongLength(t *testing.T) {
	_, err := bcs.DecodeU8(nil)
	assert.ErrorIs(t, err, bcs.ErrDecoding)
}

// ---------------------------------------------------------------------------
// EncodeU64String / EncodeU64Big
// ---------------------------------------------------------------------------

func TestEncodeU64StringExact(t *testing.T) {
	got, err := bcs.EncodeU64String("1000000000000000000")
	require.NoError(t, err)
	v, err := bcs.DecodeU64(got)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000_000_000_000_000_000), v)
}

func TestEncodeU64StringMax(t *testing.T) {
	got, err := bcs.EncodeU64String("18446744073709551615")
	require.NoError(t, err)
	assert.Equal(t, bcs.EncodeU64(math.MaxUint64), got)
}

func TestEncodeU64StringOverflow(t *testing.T) {
	_, err := bcs.EncodeU64String("18446744073709551616")
	assert.ErrorIs(t, err, bcs.ErrEncoding)
}

func TestEncodeU64StringRejectsNonNumeric(t *testing.T) {
	for _, s := range []string{"", "abc", "1.5", "1e9", "0x10"} {
		_, err := bcs.EncodeU64String(s)
		assert.ErrorIs(t, err, bcs.ErrEncoding, "input %q", s)
	}
}

func TestEncodeU64BigNegative(t *testing.T) {
	_, err := bcs.EncodeU64Big(big.NewInt(-1))
	assert.ErrorIs(t, err, bcs.ErrEncoding)
}

// ---------------------------------------------------------------------------
// strings
// ---------------------------------------------------------------------------

func TestEncodeStringPrefixesLength(t *testing.T) {
	got, err := bcs.EncodeString("TMPL")
	require.NoError(t, err)
	assert.Equal(t, []byte{4, 'T', 'M', 'P', 'L'}, got)
}

func TestStringRoundTrip(t *testing.T) {
	cases := []string{"", "Template Coin Description", "Münze ✓ 硬币"}
	for _, s := range cases {
		enc, err := bcs.EncodeString(s)
		require.NoError(t, err)
		got, err := bcs.DecodeString(enc)
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
}

func TestEncodeStringEmpty(t *testing.T) {
	got, err := bcs.EncodeString("")
	require.NoError(t, err)
	assert.Equal(t, []byte{0}, got)
}

func TestEncodeStringInvalidUTF8(t *testing.T) {
	_, err := bcs.EncodeString(string([]byte{0xff, 0xfe}))
	assert.ErrorIs(t, err, bcs.ErrEncoding)
}

func TestEncodeLongStringUsesMultiByteLength(t *testing.T) {
	s := make([]byte, 200)
	for i := range s {
		s[i] = 'a'
	}
	enc, err := bcs.EncodeString(string(s))
	require.NoError(t, err)
	assert.Equal(t, []byte{0xc8, 0x01}, enc[:2])
	assert.Len(t, enc, 202)
}

func TestDecodeStringLengthMismatch(t *testing.T) {
	_, err := bcs.DecodeString([]byte{5, 'a', 'b'})
	assert.ErrorIs(t, err, bcs.ErrDecoding)
}

// ---------------------------------------------------------------------------
// ULEB128
// ---------------------------------------------------------------------------

func TestULEB128RoundTrip(t *testing.T) {
	for _, v := range []uint64{0, 1, 127, 128, 300, 16384, math.MaxUint32, math.MaxUint64} {
		enc := bcs.EncodeULEB128(v)
		got, n, err := bcs.DecodeULEB128(enc)
		require.NoError(t, err)
		assert.Equal(t, v, got)
		assert.Equal(t, len(enc), n)
	}
}

func TestULEB128KnownEncodings(t *testing.T) {
	assert.Equal(t, []byte{0x00}, bcs.EncodeULEB128(0))
	assert.Equal(t, []byte{0x7f}, bcs.EncodeULEB128(127))
	assert.Equal(t, []byte{0x80, 0x01}, bcs.EncodeULEB128(128))
	assert.Equal(t, []byte{0xac, 0x02}, bcs.EncodeULEB128(300))
}

func TestDecodeULEB128ReadsPrefixOnly(t *testing.T) {
	v, n, err := bcs.DecodeULEB128([]byte{0xac, 0x02, 0xff})
	require.NoError(t, err)
	assert.Equal(t, uint64(300), v)
	assert.Equal(t, 2, n)
}

func TestDecodeULEB128Truncated(t *testing.T) {
	_, _, err := bcs.DecodeULEB128([]byte{0x80, 0x80})
	assert.ErrorIs(t, err, bcs.ErrDecoding)
}

func TestDecodeULEB128NonCanonical(t *testing.T) {
	_, _, err := bcs.DecodeULEB128([]byte{0x80, 0x00})
	assert.ErrorIs(t, err, bcs.ErrDecoding)
}

func TestDecodeULEB128Overflow(t *testing.T) {
	_, _, err := bcs.DecodeULEB128([]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x02})
	assert.ErrorIs(t, err, bcs.ErrDecoding)
}
