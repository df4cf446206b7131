package encoding

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBooleanRleEncoder_Decoder_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(2))

	for trial := 0; trial < 30; trial++ {
		n := rng.Intn(300) + 1
		values := make([]bool, n)
		for i := range values {
			values[i] = rng.Intn(2) == 0
		}

		e := NewBooleanRleEncoder()
		e.WriteSlice(values)
		e.Finish()

		d := NewBooleanRleDecoder(bytes.NewReader(e.Bytes()))
		for i, want := range values {
			got, err := d.Next()
			require.NoErrorf(t, err, "trial %d index %d", trial, i)
			require.Equalf(t, want, got, "trial %d index %d", trial, i)
		}
	}
}

func TestBooleanRleEncoder_Write_PacksMSBFirst(t *testing.T) {
	e := NewBooleanRleEncoder()
	e.WriteSlice([]bool{true, false, false, false, false, false, false, false})
	e.Finish()

	// one literal byte 0x80, preceded by byte-rle literal header 0xFF (-1).
	require.Equal(t, []byte{0xFF, 0x80}, e.Bytes())
}
