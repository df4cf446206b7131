package decoder

import (
	"github.com/orcstripe/orcstripe/schema"
)

// ListColumnDecoder decodes an ORC List column: a Present stream plus
// an unsigned-RLE Length stream giving each non-null row's element
// count. Element values are fetched from the child decoder in a
// single call sized to the total element count across the batch,
// since nulls are expressed at the list level, never at the element's
// own position.
type ListColumnDecoder struct {
	column  int
	present *PresentReader
	lengths int64Source
	element ColumnDecoder
}

// NewListColumnDecoder validates col's ORC kind and wraps the length
// stream and single-element child decoder.
func NewListColumnDecoder(col schema.Column, present *PresentReader, lengths int64Source, element ColumnDecoder) (*ListColumnDecoder, error) {
	if err := checkMismatch(col, schema.KindList); err != nil {
		return nil, err
	}

	return &ListColumnDecoder{column: col.Index, present: present, lengths: lengths, element: element}, nil
}

// NextBatch implements ColumnDecoder.
func (d *ListColumnDecoder) NextBatch(n int, parentPresent []bool) (Array, error) {
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

	elements, err := d.element.NextBatch(int(total), nil)
	if err != nil {
		return nil, err
	}

	// Expand the numValid lengths back out to `length` rows, inserting
	// a zero-width entry at every null slot, per the list null-encoding
	// rule: nulls carry no length and no elements.
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

	return ListArray{presentArray: presentArray{Present: present}, Offsets: offsets, Values: elements}, nil
}
