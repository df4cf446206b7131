package compress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func payloadFor(t *testing.T) []byte {
	t.Helper()
	data := make([]byte, 4096)
	for i := range data {
		data[i] = byte(i % 251)
	}

	return data
}

func TestNoneCodec_RoundTrip(t *testing.T) {
	data := payloadFor(t)
	c := NewNoneCodec()

	compressed, err := c.Compress(data)
	require.NoError(t, err)
	require.Equal(t, data, compressed)

	original, err := c.Decompress(compressed)
	require.NoError(t, err)
	require.Equal(t, data, original)
}

func TestZlibCodec_RoundTrip(t *testing.T) {
	data := payloadFor(t)
	c := NewZlibCodec()

	compressed, err := c.Compress(data)
	require.NoError(t, err)
	require.NotEmpty(t, compressed)

	original, err := c.Decompress(compressed)
	require.NoError(t, err)
	require.Equal(t, data, original)
}

func TestSnappyCodec_RoundTrip(t *testing.T) {
	data := payloadFor(t)
	c := NewSnappyCodec()

	compressed, err := c.Compress(data)
	require.NoError(t, err)

	original, err := c.Decompress(compressed)
	require.NoError(t, err)
	require.Equal(t, data, original)
}

func TestLz4Codec_RoundTrip(t *testing.T) {
	data := payloadFor(t)
	c := NewLz4Codec()

	compressed, err := c.Compress(data)
	require.NoError(t, err)

	original, err := c.Decompress(compressed)
	require.NoError(t, err)
	require.Equal(t, data, original)
}

func TestZstdCodec_RoundTrip(t *testing.T) {
	data := payloadFor(t)
	c := NewZstdCodec()

	compressed, err := c.Compress(data)
	require.NoError(t, err)

	original, err := c.Decompress(compressed)
	require.NoError(t, err)
	require.Equal(t, data, original)
}

func TestLzoCodec_Compress_Unsupported(t *testing.T) {
	c := NewLzoCodec(0)
	_, err := c.Compress([]byte("hello"))
	require.Error(t, err)
}

func TestCreateCodec_AllKinds(t *testing.T) {
	kinds := []CompressionKind{
		CompressionNone, CompressionZlib, CompressionSnappy,
		CompressionLzo, CompressionLz4, CompressionZstd,
	}
	for _, k := range kinds {
		c, err := CreateCodec(k, 0)
		require.NoErrorf(t, err, "kind %s", k)
		require.NotNilf(t, c, "kind %s", k)
	}
}

func TestCreateCodec_UnknownKind(t *testing.T) {
	_, err := CreateCodec(CompressionKind(99), 0)
	require.Error(t, err)
}

// === block framing Tests ===

func TestBlockWriter_Reader_RoundTrip(t *testing.T) {
	data := payloadFor(t)

	var buf bytes.Buffer
	codec := NewZlibCodec()
	w := NewBlockWriter(&buf, codec, 256)
	_, err := w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Flush())

	r := NewBlockReader(&buf, codec)
	got := make([]byte, 0, len(data))
	tmp := make([]byte, 128)
	for {
		n, err := r.Read(tmp)
		got = append(got, tmp[:n]...)
		if err != nil {
			break
		}
	}

	require.Equal(t, data, got)
}

func TestBlockWriter_IncompressibleFallsBackToOriginal(t *testing.T) {
	// random-looking, post-encoded data often doesn't compress; the
	// writer must still round-trip it via the isOriginal bit.
	data := make([]byte, 64)
	for i := range data {
		data[i] = byte((i * 97) % 256)
	}

	var buf bytes.Buffer
	codec := NewNoneCodec()
	w := NewBlockWriter(&buf, codec, 1024)
	_, err := w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Flush())

	r := NewBlockReader(&buf, codec)
	got := make([]byte, len(data))
	n, err := r.Read(got)
	require.NoError(t, err)
	require.Equal(t, len(data), n)
	require.Equal(t, data, got)
}
