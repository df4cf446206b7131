package encoding

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// === IntRleV1Decoder Tests ===

func TestIntRleV1Decoder_Run(t *testing.T) {
	// header 0x05 -> run length 8, delta 3, base varint 10.
	r := bytes.NewReader([]byte{0x05, 0x03, 0x0a})
	d := NewIntRleV1Decoder(r, false)

	want := []int64{10, 13, 16, 19, 22, 25, 28, 31}
	for i, w := range want {
		v, err := d.Next()
		require.NoErrorf(t, err, "index %d", i)
		require.Equalf(t, w, v, "index %d", i)
	}
}

func TestIntRleV1Decoder_Literals(t *testing.T) {
	// header 0xFB = -5 -> 5 literal unsigned varints.
	buf := []byte{0xFB}
	want := []int64{1, 2, 300, 4, 10000}
	for _, v := range want {
		e := &bytes.Buffer{}
		_ = writeUvarintForTest(e, uint64(v))
		buf = append(buf, e.Bytes()...)
	}

	d := NewIntRleV1Decoder(bytes.NewReader(buf), false)
	for i, w := range want {
		v, err := d.Next()
		require.NoErrorf(t, err, "index %d", i)
		require.Equalf(t, w, v, "index %d", i)
	}
}

// === IntRleV1Encoder round trip ===

func TestIntRleV1Encoder_Decoder_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(3))

	for trial := 0; trial < 40; trial++ {
		n := rng.Intn(300) + 1
		values := make([]int64, n)
		cur := int64(rng.Intn(1000) - 500)
		for i := range values {
			if rng.Intn(4) == 0 {
				cur = int64(rng.Intn(2000) - 1000)
			} else {
				cur += int64(rng.Intn(7) - 3)
			}
			values[i] = cur
		}

		buf := &bytes.Buffer{}
		e := NewIntRleV1Encoder(buf, true)
		require.NoError(t, e.WriteSlice(values))
		require.NoError(t, e.Flush())

		d := NewIntRleV1Decoder(bytes.NewReader(buf.Bytes()), true)
		for i, want := range values {
			got, err := d.Next()
			require.NoErrorf(t, err, "trial %d index %d", trial, i)
			require.Equalf(t, want, got, "trial %d index %d", trial, i)
		}
	}
}

func writeUvarintForTest(w *bytes.Buffer, v uint64) error {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		w.WriteByte(b)
		if v == 0 {
			return nil
		}
	}
}
