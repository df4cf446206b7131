package compress

import (
	"fmt"

	"github.com/golang/snappy"
)

// SnappyCodec implements CompressionSnappy via golang/snappy's block
// format, matching ORC's per-block (not framed) Snappy encoding.
type SnappyCodec struct{}

var _ Codec = (*SnappyCodec)(nil)

// NewSnappyCodec creates a new Snappy codec.
func NewSnappyCodec() SnappyCodec {
	return SnappyCodec{}
}

// Compress compresses data using Snappy's block format.
func (c SnappyCodec) Compress(data []byte) ([]byte, error) {
	return snappy.Encode(nil, data), nil
}

// Decompress decompresses Snappy-compressed data.
func (c SnappyCodec) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	out, err := snappy.Decode(nil, data)
	if err != nil {
		return nil, fmt.Errorf("compress: snappy decompress: %w", err)
	}

	return out, nil
}
