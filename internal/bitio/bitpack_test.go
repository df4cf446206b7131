package bitio

import (
	"bytes"
	"math/rand"
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/require"
)

// === Property 6: round-trip, bitpack ===

func TestBitpack_RoundTrip_Property(t *testing.T) {
	for _, width := range []int{1, 2, 3, 5, 8, 13, 16, 24, 32, 47, 64} {
		width := width
		f := func(raw []uint64) bool {
			if len(raw) == 0 {
				return true
			}

			values := make([]uint64, len(raw))
			for i, v := range raw {
				if width == 64 {
					values[i] = v
				} else {
					values[i] = v & ((uint64(1) << uint(width)) - 1)
				}
			}

			buf := &bytes.Buffer{}
			if err := WritePackedInts(buf, values, width); err != nil {
				return false
			}

			out := make([]uint64, len(values))
			if err := ReadInts(out, len(values), width, buf); err != nil {
				return false
			}

			for i := range values {
				if out[i] != values[i] {
					return false
				}
			}

			return true
		}
		require.NoError(t, quick.Check(f, nil))
	}
}

func TestBitpack_RoundTrip_SyntheticRunLiteralMix(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, width := range []int{1, 4, 9, 17, 30} {
		var values []uint64
		max := uint64(1)<<uint(width) - 1
		for len(values) < 500 {
			if rng.Intn(2) == 0 {
				v := uint64(rng.Int63()) & max
				for i := 0; i < 1+rng.Intn(20); i++ {
					values = append(values, v)
				}
			} else {
				values = append(values, uint64(rng.Int63())&max)
			}
		}

		buf := &bytes.Buffer{}
		require.NoError(t, WritePackedInts(buf, values, width))

		out := make([]uint64, len(values))
		require.NoError(t, ReadInts(out, len(values), width, buf))
		require.Equal(t, values, out)
	}
}

func TestBitWidthCodec_RoundTrip(t *testing.T) {
	for n := 1; n <= 64; n++ {
		code := EncodeBitWidth(n)
		decoded := DecodeBitWidth(code)
		require.GreaterOrEqual(t, decoded, n)
	}
}

func TestGetClosestAlignedBitWidth(t *testing.T) {
	require.Equal(t, 1, GetClosestAlignedBitWidth(1))
	require.Equal(t, 8, GetClosestAlignedBitWidth(5))
	require.Equal(t, 24, GetClosestAlignedBitWidth(17))
	require.Equal(t, 64, GetClosestAlignedBitWidth(64))
}
