package encoding

import (
	"bytes"
	"io"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// === ByteRleDecoder Tests ===

func TestByteRleDecoder_RunOf100Zeros(t *testing.T) {
	// header 0x61 = 97 -> run length 100, value 0x00.
	r := bytes.NewReader([]byte{0x61, 0x00})
	d := NewByteRleDecoder(r)

	got := make([]byte, 0, 100)
	for {
		v, err := d.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		got = append(got, v)
		if len(got) == 100 {
			break
		}
	}

	require.Len(t, got, 100)
	for _, v := range got {
		require.Equal(t, byte(0), v)
	}
}

func TestByteRleDecoder_TwoLiterals(t *testing.T) {
	// header 0xFE = -2 -> 2 literal bytes.
	r := bytes.NewReader([]byte{0xFE, 0x44, 0x45})
	d := NewByteRleDecoder(r)

	v1, err := d.Next()
	require.NoError(t, err)
	require.Equal(t, byte(0x44), v1)

	v2, err := d.Next()
	require.NoError(t, err)
	require.Equal(t, byte(0x45), v2)
}

// === ByteRleEncoder Tests ===

func TestByteRleEncoder_Write_RunIsEncodedAsRun(t *testing.T) {
	e := NewByteRleEncoder()
	for i := 0; i < 100; i++ {
		e.Write(0)
	}
	e.Finish()

	require.Equal(t, []byte{0x61, 0x00}, e.Bytes())
}

func TestByteRleEncoder_Write_DisparateValuesAreLiterals(t *testing.T) {
	e := NewByteRleEncoder()
	e.WriteSlice([]byte{0x44, 0x45})
	e.Finish()

	require.Equal(t, []byte{0xFE, 0x44, 0x45}, e.Bytes())
}

func TestByteRleEncoder_Decoder_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for trial := 0; trial < 50; trial++ {
		n := rng.Intn(400) + 1
		values := make([]byte, n)
		for i := range values {
			if rng.Intn(3) == 0 {
				values[i] = byte(rng.Intn(256))
			} else if i > 0 {
				values[i] = values[i-1]
			} else {
				values[i] = byte(rng.Intn(256))
			}
		}

		e := NewByteRleEncoder()
		e.WriteSlice(values)
		e.Finish()

		d := NewByteRleDecoder(bytes.NewReader(e.Bytes()))
		for i, want := range values {
			got, err := d.Next()
			require.NoErrorf(t, err, "trial %d index %d", trial, i)
			require.Equalf(t, want, got, "trial %d index %d", trial, i)
		}
	}
}
