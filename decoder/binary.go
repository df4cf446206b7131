package decoder

import (
	"fmt"
	"io"

	"github.com/orcstripe/orcstripe/schema"
)

// BinaryColumnDecoder decodes an ORC Binary column: wire-identical to
// Direct-encoded String (unsigned-RLE Length stream + raw-bytes Data
// stream), but with no UTF-8 validation and []byte output.
type BinaryColumnDecoder struct {
	column  int
	present *PresentReader
	lengths int64Source
	data    io.Reader
}

// NewBinaryColumnDecoder validates col's ORC kind and wraps the length
// and data streams.
func NewBinaryColumnDecoder(col schema.Column, present *PresentReader, lengths int64Source, data io.Reader) (*BinaryColumnDecoder, error) {
	if err := checkMismatch(col, schema.KindBinary); err != nil {
		return nil, err
	}

	return &BinaryColumnDecoder{column: col.Index, present: present, lengths: lengths, data: data}, nil
}

// NextBatch implements ColumnDecoder.
func (d *BinaryColumnDecoder) NextBatch(n int, parentPresent []bool) (Array, error) {
	present, err := derivePresent(d.present, n, parentPresent)
	if err != nil {
		return nil, err
	}

	length := batchLength(parentPresent, n)
	want := countValid(present, length)

	raw, err := readLengthPrefixedBytes(d.column, d.lengths, d.data, want)
	if err != nil {
		return nil, fmt.Errorf("decoder: column %d binary: %w", d.column, err)
	}

	values := make([][]byte, length)
	idx := 0
	for i := 0; i < length; i++ {
		if present != nil && !present[i] {
			continue
		}
		// copy out of the batch's shared read buffer so each value
		// owns its own backing array instead of a sub-slice of
		// readLengthPrefixedBytes' single allocation.
		v := make([]byte, len(raw[idx]))
		copy(v, raw[idx])
		values[i] = v
		idx++
	}

	return BytesArray{presentArray: presentArray{Present: present}, Values: values}, nil
}
