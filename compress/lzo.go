package compress

import (
	"fmt"

	"github.com/woozymasta/lzo"

	"github.com/orcstripe/orcstripe/errs"
)

// defaultLzoBufferSize is used when a stripe's compression buffer size
// is not known up front.
const defaultLzoBufferSize = 256 * 1024

// LzoCodec implements CompressionLzo's decode side via
// github.com/woozymasta/lzo, a LZO1X decompressor. bufferSize bounds
// the decompressed output of a single block: LZO1X's wire format does
// not carry the decompressed length, so the decoder needs an upper
// bound, which ORC provides via the stripe's compression buffer size.
type LzoCodec struct {
	bufferSize int
}

var _ Codec = (*LzoCodec)(nil)

// NewLzoCodec creates a new LZO codec bounded to bufferSize bytes of
// decompressed output per block (falls back to a 256KiB default when
// bufferSize <= 0).
func NewLzoCodec(bufferSize int) LzoCodec {
	if bufferSize <= 0 {
		bufferSize = defaultLzoBufferSize
	}

	return LzoCodec{bufferSize: bufferSize}
}

// Compress is unimplemented: the only LZO dependency available in this
// module's ecosystem is decode-only. ORC readers never need to produce
// LZO-compressed output themselves, only consume it.
func (c LzoCodec) Compress(data []byte) ([]byte, error) {
	return nil, fmt.Errorf("compress: lzo compression is not supported: %w", errs.ErrUnsupportedTypeVariant)
}

// Decompress decompresses a single LZO1X block.
func (c LzoCodec) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	out, err := lzo.Decompress(data, &lzo.DecompressOptions{OutLen: c.bufferSize})
	if err != nil {
		return nil, fmt.Errorf("compress: lzo decompress: %w", err)
	}

	return out, nil
}
