package compress

// NoneCodec implements CompressionNone: ORC stripe streams stored
// without any block compression at all (the stream is not even split
// into the 3-byte-header block framing used by the other kinds).
type NoneCodec struct{}

var _ Codec = (*NoneCodec)(nil)

// NewNoneCodec creates the no-op codec.
func NewNoneCodec() NoneCodec {
	return NoneCodec{}
}

// Compress returns data unmodified.
func (c NoneCodec) Compress(data []byte) ([]byte, error) {
	return data, nil
}

// Decompress returns data unmodified.
func (c NoneCodec) Decompress(data []byte) ([]byte, error) {
	return data, nil
}
