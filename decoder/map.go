package decoder

import (
	"github.com/orcstripe/orcstripe/schema"
)

// MapColumnDecoder decodes an ORC Map column: structured identically
// to ListColumnDecoder (a Present stream, an unsigned-RLE Length
// stream, elements fetched in one batched call per side) but with two
// child decoders, keys and values. The key child is never given its
// own null mask: a map's keys are never individually nullable,
// matching the Arrow map-key invariant.
type MapColumnDecoder struct {
	column  int
	present *PresentReader
	lengths int64Source
	keys    ColumnDecoder
	values  ColumnDecoder
}

// NewMapColumnDecoder validates col's ORC kind and wraps the length
// stream and the key/value child decoders.
func NewMapColumnDecoder(col schema.Column, present *PresentReader, lengths int64Source, keys, values ColumnDecoder) (*MapColumnDecoder, error) {
	if err := checkMismatch(col, schema.KindMap); err != nil {
		return nil, err
	}

	return &MapColumnDecoder{column: col.Index, present: present, lengths: lengths, keys: keys, values: values}, nil
}

// NextBatch implements ColumnDecoder.
func (d *MapColumnDecoder) NextBatch(n int, parentPresent []bool) (Array, error) {
	present, err := derivePresent(d.present, n, parentPresent)
	if err != nil {
		return nil, err
	}

	length := batchLength(parentPresent, n)
	numValid := countValid(present, length)

	rowLengths := make([]int64, numValid)
	var total int64
	for i := 0; i < numValid; i++ {
		v, err := d.lengths.Next()
		if err != nil {
			return nil, wrapShortRead(d.column, "LENGTH", numValid, i, err)
		}
		rowLengths[i] = v
		total += v
	}

	keys, err := d.keys.NextBatch(int(total), nil)
	if err != nil {
		return nil, err
	}
	values, err := d.values.NextBatch(int(total), nil)
	if err != nil {
		return nil, err
	}

	offsets := make([]int32, length+1)
	validIdx := 0
	for i := 0; i < length; i++ {
		if present != nil && !present[i] {
			offsets[i+1] = offsets[i]

			continue
		}
		offsets[i+1] = offsets[i] + int32(rowLengths[validIdx])
		validIdx++
	}

	return MapArray{presentArray: presentArray{Present: present}, Offsets: offsets, Keys: keys, Values: values}, nil
}
