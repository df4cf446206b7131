package compress

import "fmt"

// CompressionKind identifies one of ORC's stripe-level compression
// algorithms, as carried in the file postscript.
type CompressionKind uint8

const (
	CompressionNone CompressionKind = iota
	CompressionZlib
	CompressionSnappy
	CompressionLzo
	CompressionLz4
	CompressionZstd
)

// String returns the ORC postscript name of the compression kind.
func (k CompressionKind) String() string {
	switch k {
	case CompressionNone:
		return "NONE"
	case CompressionZlib:
		return "ZLIB"
	case CompressionSnappy:
		return "SNAPPY"
	case CompressionLzo:
		return "LZO"
	case CompressionLz4:
		return "LZ4"
	case CompressionZstd:
		return "ZSTD"
	default:
		return fmt.Sprintf("CompressionKind(%d)", uint8(k))
	}
}

// Compressor compresses a single block of stripe data.
//
// A single ORC compression block never exceeds the stripe's configured
// compression buffer size, so implementations are not expected to
// stream; they operate on whole blocks in memory.
type Compressor interface {
	// Compress compresses the input data and returns the compressed
	// result. The returned slice is newly allocated; the input is not
	// modified.
	Compress(data []byte) ([]byte, error)
}

// Decompressor decompresses a single ORC compression block.
type Decompressor interface {
	// Decompress decompresses the input data and returns the original
	// result. The returned slice is newly allocated; the input is not
	// modified.
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both compression and decompression capabilities for a
// single CompressionKind.
type Codec interface {
	Compressor
	Decompressor
}

// CreateCodec is a factory function that creates a Codec for the given
// compression kind. bufferSize bounds the maximum decompressed size of
// a single block, as carried by the stripe's compression buffer size;
// it is only consulted by codecs (LZO) that need an upper bound on
// output length up front.
func CreateCodec(kind CompressionKind, bufferSize int) (Codec, error) {
	switch kind {
	case CompressionNone:
		return NewNoneCodec(), nil
	case CompressionZlib:
		return NewZlibCodec(), nil
	case CompressionSnappy:
		return NewSnappyCodec(), nil
	case CompressionLzo:
		return NewLzoCodec(bufferSize), nil
	case CompressionLz4:
		return NewLz4Codec(), nil
	case CompressionZstd:
		return NewZstdCodec(), nil
	default:
		return nil, fmt.Errorf("compress: unsupported compression kind %s", kind)
	}
}
