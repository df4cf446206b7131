package bitio

import (
	"bytes"
	"math"
	"math/big"
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/require"
)

// === Concrete scenario: S7, unsigned varint ===

func TestReadVarint_S7(t *testing.T) {
	v, err := ReadVarint(bytes.NewReader([]byte{0xFF, 0x7F}))
	require.NoError(t, err)
	require.Equal(t, uint64(16383), v)

	v, err = ReadVarint(bytes.NewReader([]byte{0x80, 0x80, 0x01}))
	require.NoError(t, err)
	require.Equal(t, uint64(16384), v)
}

// === Property 7: round-trip, unsigned and signed varint ===

func TestVarint_RoundTrip_Property(t *testing.T) {
	f := func(v uint64) bool {
		buf := &bytes.Buffer{}
		if err := WriteVarint(buf, v); err != nil {
			return false
		}
		got, err := ReadVarint(buf)

		return err == nil && got == v
	}
	require.NoError(t, quick.Check(f, nil))
}

func TestVarintZigzagSigned_RoundTrip_Property(t *testing.T) {
	f := func(v int64) bool {
		buf := &bytes.Buffer{}
		if err := WriteVarintZigzagSigned(buf, v); err != nil {
			return false
		}
		got, err := ReadVarintZigzagSigned(buf)

		return err == nil && got == v
	}
	require.NoError(t, quick.Check(f, nil))

	require.Equal(t, int64(math.MinInt64), zigzagRoundTrip(t, math.MinInt64))
	require.Equal(t, int64(math.MaxInt64), zigzagRoundTrip(t, math.MaxInt64))
}

func zigzagRoundTrip(t *testing.T, v int64) int64 {
	t.Helper()
	buf := &bytes.Buffer{}
	require.NoError(t, WriteVarintZigzagSigned(buf, v))
	got, err := ReadVarintZigzagSigned(buf)
	require.NoError(t, err)

	return got
}

// === Property 7, i128: round-trip, unbounded-width varint ===

func TestVarintBig_RoundTrip_Property(t *testing.T) {
	f := func(raw []byte) bool {
		v := new(big.Int).SetBytes(raw)

		buf := &bytes.Buffer{}
		if err := WriteVarintBig(buf, v); err != nil {
			return false
		}
		got, err := ReadVarintBig(buf)

		return err == nil && got.Cmp(v) == 0
	}
	require.NoError(t, quick.Check(f, nil))
}

func TestVarintZigzagBig_RoundTrip_Property(t *testing.T) {
	f := func(raw []byte, negative bool) bool {
		v := new(big.Int).SetBytes(raw)
		if negative {
			v.Neg(v)
		}

		buf := &bytes.Buffer{}
		if err := WriteVarintZigzagBig(buf, v); err != nil {
			return false
		}
		got, err := ReadVarintZigzagBig(buf)

		return err == nil && got.Cmp(v) == 0
	}
	require.NoError(t, quick.Check(f, nil))
}

func TestReadVarint_OverflowRejected(t *testing.T) {
	// 10 continuation-marked bytes, the 10th carrying a value too large
	// for the remaining bit budget.
	raw := bytes.Repeat([]byte{0xFF}, 9)
	raw = append(raw, 0x02)
	_, err := ReadVarint(bytes.NewReader(raw))
	require.Error(t, err)
}

// === Property 5: round-trip, signed MSB ===

func TestSignedMSB_RoundTrip_Property(t *testing.T) {
	for _, width := range []int{1, 2, 3, 4, 5, 6, 7, 8} {
		width := width
		f := func(v int64) bool {
			bits := uint(width * 8)
			max := int64(1) << (bits - 1)
			v %= max
			encoded := SignedMSBEncode(v, width)

			return SignedMSBDecode(encoded, width) == v
		}
		require.NoError(t, quick.Check(f, nil))
	}
}

func TestMSBBytes_RoundTrip_Property(t *testing.T) {
	for _, width := range []int{1, 2, 3, 4, 5, 6, 7, 8} {
		width := width
		f := func(v uint64) bool {
			if width < 8 {
				v &= (uint64(1) << uint(width*8)) - 1
			}

			buf := &bytes.Buffer{}
			if err := WriteMSBBytes(buf, v, width); err != nil {
				return false
			}
			got, err := ReadMSBBytes(buf, width)

			return err == nil && got == v
		}
		require.NoError(t, quick.Check(f, nil))
	}
}
