package stripe

import (
	"bytes"
	"fmt"
	"io"

	"github.com/orcstripe/orcstripe/compress"
)

// CompressStripeData compresses data, the concatenated decompressed
// stream region StripeWriter.Flush produces, into ORC's block-framed
// on-disk representation for kind. bufferSize is the stripe's declared
// compression buffer size (the chunk size compress.BlockWriter splits
// data into); pass 0 for the codec's default. CompressionNone returns
// data unchanged, matching ORC's own convention of skipping block
// framing entirely when a stripe declares no compression.
func CompressStripeData(data []byte, kind compress.CompressionKind, bufferSize int) ([]byte, error) {
	if kind == compress.CompressionNone {
		return data, nil
	}

	codec, err := compress.CreateCodec(kind, bufferSize)
	if err != nil {
		return nil, fmt.Errorf("stripe: compressing stripe data: %w", err)
	}

	var buf bytes.Buffer
	w := compress.NewBlockWriter(&buf, codec, bufferSize)
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("stripe: compressing stripe data: %w", err)
	}
	if err := w.Flush(); err != nil {
		return nil, fmt.Errorf("stripe: compressing stripe data: %w", err)
	}

	return buf.Bytes(), nil
}

// DecompressStripeData inflates raw, a stripe's on-disk index+data
// region, back into the decompressed byte slice NewStreamMap expects.
// kind and bufferSize must match the values CompressStripeData (or the
// original ORC writer) used. CompressionNone returns raw unchanged.
func DecompressStripeData(raw []byte, kind compress.CompressionKind, bufferSize int) ([]byte, error) {
	if kind == compress.CompressionNone {
		return raw, nil
	}

	codec, err := compress.CreateCodec(kind, bufferSize)
	if err != nil {
		return nil, fmt.Errorf("stripe: decompressing stripe data: %w", err)
	}

	out, err := io.ReadAll(compress.NewBlockReader(bytes.NewReader(raw), codec))
	if err != nil {
		return nil, fmt.Errorf("stripe: decompressing stripe data: %w", err)
	}

	return out, nil
}
