package decoder

import (
	"github.com/orcstripe/orcstripe/encoding"
	"github.com/orcstripe/orcstripe/schema"
)

// readInt64Batch consumes countValid(present, n) values from src in
// present-order, returning a value slice of batchLength(parentPresent, n)
// entries (zero-valued at invalid slots). Shared by every integer-like
// primitive decoder (Byte/Short/Int/Long/Date).
func readInt64Batch(src int64Source, present *PresentReader, column int, streamName string, n int, parentPresent []bool) ([]bool, []int64, error) {
	effPresent, err := derivePresent(present, n, parentPresent)
	if err != nil {
		return nil, nil, err
	}

	length := batchLength(parentPresent, n)
	values := make([]int64, length)
	want := countValid(effPresent, length)

	read := 0
	for i := 0; i < length; i++ {
		if effPresent != nil && !effPresent[i] {
			continue
		}

		v, err := src.Next()
		if err != nil {
			return nil, nil, wrapShortRead(column, streamName, want, read, err)
		}
		values[i] = v
		read++
	}

	return effPresent, values, nil
}

// ByteColumnDecoder decodes an ORC Byte column: a Present stream plus
// a Byte-RLE Data stream of signed 8-bit values.
type ByteColumnDecoder struct {
	column  int
	present *PresentReader
	data    *encoding.ByteRleDecoder
}

// NewByteColumnDecoder validates col's ORC kind and builds a decoder
// reading from dataReader (present may be nil).
func NewByteColumnDecoder(col schema.Column, present *PresentReader, dataReader byteReader) (*ByteColumnDecoder, error) {
	if err := checkMismatch(col, schema.KindByte); err != nil {
		return nil, err
	}

	return &ByteColumnDecoder{
		column:  col.Index,
		present: present,
		data:    encoding.NewByteRleDecoder(dataReader),
	}, nil
}

// byteReader is the io.ByteReader subset ByteRleDecoder needs.
type byteReader interface {
	ReadByte() (byte, error)
}

// NextBatch implements ColumnDecoder.
func (d *ByteColumnDecoder) NextBatch(n int, parentPresent []bool) (Array, error) {
	present, err := derivePresent(d.present, n, parentPresent)
	if err != nil {
		return nil, err
	}

	length := batchLength(parentPresent, n)
	values := make([]int8, length)
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
		values[i] = int8(v)
		read++
	}

	return Int8Array{presentArray: presentArray{Present: present}, Values: values}, nil
}

// ShortColumnDecoder decodes an ORC Short column: signed RLE (v1 or
// v2, selected by the column's encoding at construction time).
type ShortColumnDecoder struct {
	column  int
	present *PresentReader
	data    int64Source
}

// NewShortColumnDecoder validates col's ORC kind and wraps data (an
// already-constructed signed RLE v1 or v2 decoder).
func NewShortColumnDecoder(col schema.Column, present *PresentReader, data int64Source) (*ShortColumnDecoder, error) {
	if err := checkMismatch(col, schema.KindShort); err != nil {
		return nil, err
	}

	return &ShortColumnDecoder{column: col.Index, present: present, data: data}, nil
}

// NextBatch implements ColumnDecoder.
func (d *ShortColumnDecoder) NextBatch(n int, parentPresent []bool) (Array, error) {
	present, raw, err := readInt64Batch(d.data, d.present, d.column, "DATA", n, parentPresent)
	if err != nil {
		return nil, err
	}

	values := make([]int16, len(raw))
	for i, v := range raw {
		values[i] = int16(v)
	}

	return Int16Array{presentArray: presentArray{Present: present}, Values: values}, nil
}

// IntColumnDecoder decodes an ORC Int column.
type IntColumnDecoder struct {
	column  int
	present *PresentReader
	data    int64Source
}

// NewIntColumnDecoder validates col's ORC kind and wraps data.
func NewIntColumnDecoder(col schema.Column, present *PresentReader, data int64Source) (*IntColumnDecoder, error) {
	if err := checkMismatch(col, schema.KindInt); err != nil {
		return nil, err
	}

	return &IntColumnDecoder{column: col.Index, present: present, data: data}, nil
}

// NextBatch implements ColumnDecoder.
func (d *IntColumnDecoder) NextBatch(n int, parentPresent []bool) (Array, error) {
	present, raw, err := readInt64Batch(d.data, d.present, d.column, "DATA", n, parentPresent)
	if err != nil {
		return nil, err
	}

	values := make([]int32, len(raw))
	for i, v := range raw {
		values[i] = int32(v)
	}

	return Int32Array{presentArray: presentArray{Present: present}, Values: values}, nil
}

// LongColumnDecoder decodes an ORC Long column.
type LongColumnDecoder struct {
	column  int
	present *PresentReader
	data    int64Source
}

// NewLongColumnDecoder validates col's ORC kind and wraps data.
func NewLongColumnDecoder(col schema.Column, present *PresentReader, data int64Source) (*LongColumnDecoder, error) {
	if err := checkMismatch(col, schema.KindLong); err != nil {
		return nil, err
	}

	return &LongColumnDecoder{column: col.Index, present: present, data: data}, nil
}

// NextBatch implements ColumnDecoder.
func (d *LongColumnDecoder) NextBatch(n int, parentPresent []bool) (Array, error) {
	present, values, err := readInt64Batch(d.data, d.present, d.column, "DATA", n, parentPresent)
	if err != nil {
		return nil, err
	}

	return Int64Array{presentArray: presentArray{Present: present}, Values: values}, nil
}

// DateColumnDecoder decodes an ORC Date column: signed RLE of day
// offsets since the Unix epoch (1970-01-01), identical wire format to
// Int but kept as its own decoder type for schema validation.
type DateColumnDecoder struct {
	column  int
	present *PresentReader
	data    int64Source
}

// NewDateColumnDecoder validates col's ORC kind and wraps data.
func NewDateColumnDecoder(col schema.Column, present *PresentReader, data int64Source) (*DateColumnDecoder, error) {
	if err := checkMismatch(col, schema.KindDate); err != nil {
		return nil, err
	}

	return &DateColumnDecoder{column: col.Index, present: present, data: data}, nil
}

// NextBatch implements ColumnDecoder.
func (d *DateColumnDecoder) NextBatch(n int, parentPresent []bool) (Array, error) {
	present, raw, err := readInt64Batch(d.data, d.present, d.column, "DATA", n, parentPresent)
	if err != nil {
		return nil, err
	}

	values := make([]int32, len(raw))
	for i, v := range raw {
		values[i] = int32(v)
	}

	return Int32Array{presentArray: presentArray{Present: present}, Values: values}, nil
}
