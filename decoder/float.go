package decoder

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/orcstripe/orcstripe/schema"
)

// FloatColumnDecoder decodes an ORC Float column: a Present stream
// plus a Data stream of concatenated IEEE-754 float32 values (no RLE),
// read in order (little-endian for every ORC file ever written; big-
// endian accepted only for symmetry with the writer side's matching
// option).
type FloatColumnDecoder struct {
	column  int
	present *PresentReader
	data    io.Reader
	order   binary.ByteOrder
}

// NewFloatColumnDecoder validates col's ORC kind and wraps dataReader.
// order selects the byte order of the raw float32 values; pass
// binary.LittleEndian to match every ORC file in the wild.
func NewFloatColumnDecoder(col schema.Column, present *PresentReader, dataReader io.Reader, order binary.ByteOrder) (*FloatColumnDecoder, error) {
	if err := checkMismatch(col, schema.KindFloat); err != nil {
		return nil, err
	}

	return &FloatColumnDecoder{column: col.Index, present: present, data: dataReader, order: order}, nil
}

// NextBatch implements ColumnDecoder.
func (d *FloatColumnDecoder) NextBatch(n int, parentPresent []bool) (Array, error) {
	present, err := derivePresent(d.present, n, parentPresent)
	if err != nil {
		return nil, err
	}

	length := batchLength(parentPresent, n)
	values := make([]float32, length)
	want := countValid(present, length)

	var buf [4]byte
	read := 0
	for i := 0; i < length; i++ {
		if present != nil && !present[i] {
			continue
		}
		if _, err := io.ReadFull(d.data, buf[:]); err != nil {
			return nil, wrapShortRead(d.column, "DATA", want, read, err)
		}
		values[i] = math.Float32frombits(d.order.Uint32(buf[:]))
		read++
	}

	return Float32Array{presentArray: presentArray{Present: present}, Values: values}, nil
}

// DoubleColumnDecoder decodes an ORC Double column: a Present stream
// plus a Data stream of concatenated IEEE-754 float64 values.
type DoubleColumnDecoder struct {
	column  int
	present *PresentReader
	data    io.Reader
	order   binary.ByteOrder
}

// NewDoubleColumnDecoder validates col's ORC kind and wraps dataReader.
// order selects the byte order of the raw float64 values; pass
// binary.LittleEndian to match every ORC file in the wild.
func NewDoubleColumnDecoder(col schema.Column, present *PresentReader, dataReader io.Reader, order binary.ByteOrder) (*DoubleColumnDecoder, error) {
	if err := checkMismatch(col, schema.KindDouble); err != nil {
		return nil, err
	}

	return &DoubleColumnDecoder{column: col.Index, present: present, data: dataReader, order: order}, nil
}

// NextBatch implements ColumnDecoder.
func (d *DoubleColumnDecoder) NextBatch(n int, parentPresent []bool) (Array, error) {
	present, err := derivePresent(d.present, n, parentPresent)
	if err != nil {
		return nil, err
	}

	length := batchLength(parentPresent, n)
	values := make([]float64, length)
	want := countValid(present, length)

	var buf [8]byte
	read := 0
	for i := 0; i < length; i++ {
		if present != nil && !present[i] {
			continue
		}
		if _, err := io.ReadFull(d.data, buf[:]); err != nil {
			return nil, wrapShortRead(d.column, "DATA", want, read, err)
		}
		values[i] = math.Float64frombits(d.order.Uint64(buf[:]))
		read++
	}

	return Float64Array{presentArray: presentArray{Present: present}, Values: values}, nil
}
