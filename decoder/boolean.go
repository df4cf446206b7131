package decoder

import (
	"github.com/orcstripe/orcstripe/encoding"
	"github.com/orcstripe/orcstripe/schema"
)

// BooleanColumnDecoder decodes an ORC Boolean column: a Present
// stream plus a boolean-RLE Data stream.
type BooleanColumnDecoder struct {
	column  int
	present *PresentReader
	data    *encoding.BooleanRleDecoder
}

// NewBooleanColumnDecoder validates col's ORC kind and builds a
// decoder reading from dataReader.
func NewBooleanColumnDecoder(col schema.Column, present *PresentReader, dataReader byteReader) (*BooleanColumnDecoder, error) {
	if err := checkMismatch(col, schema.KindBoolean); err != nil {
		return nil, err
	}

	return &BooleanColumnDecoder{
		column:  col.Index,
		present: present,
		data:    encoding.NewBooleanRleDecoder(dataReader),
	}, nil
}

// NextBatch implements ColumnDecoder.
func (d *BooleanColumnDecoder) NextBatch(n int, parentPresent []bool) (Array, error) {
	present, err := derivePresent(d.present, n, parentPresent)
	if err != nil {
		return nil, err
	}

	length := batchLength(parentPresent, n)
	values := make([]bool, length)
	want := countValid(present, length)

	read := 0
	for i := 0; i < length; i++ {
		if present != nil && !present[i] {
			continue
		}

		v, err := d.data.Next()
		if err != nil {
			return nil, wrapShortRead(d.column, "DATA", want, read, err)
		}
		values[i] = v
		read++
	}

	return BoolArray{presentArray: presentArray{Present: present}, Values: values}, nil
}
