package compress

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/flate"
)

// ZlibCodec implements CompressionZlib. ORC's ZLIB kind is raw DEFLATE
// (no zlib wrapper, no checksum), so this wraps klauspost/compress's
// flate implementation rather than the stdlib-equivalent zlib package.
type ZlibCodec struct{}

var _ Codec = (*ZlibCodec)(nil)

// NewZlibCodec creates a new ZLIB codec.
func NewZlibCodec() ZlibCodec {
	return ZlibCodec{}
}

var flateWriterPool = sync.Pool{
	New: func() any {
		w, _ := flate.NewWriter(io.Discard, flate.DefaultCompression)

		return w
	},
}

// Compress raw-deflates data.
func (c ZlibCodec) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer

	w := flateWriterPool.Get().(*flate.Writer)
	defer flateWriterPool.Put(w)

	w.Reset(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("compress: zlib write: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("compress: zlib close: %w", err)
	}

	return buf.Bytes(), nil
}

// Decompress inflates raw-deflate data.
func (c ZlibCodec) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	r := flate.NewReader(bytes.NewReader(data))
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("compress: zlib decompress: %w", err)
	}

	return out, nil
}
