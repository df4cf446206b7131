package decoder

import (
	"io"
	"math/big"

	"github.com/orcstripe/orcstripe/internal/bitio"
	"github.com/orcstripe/orcstripe/schema"
)

// DecimalColumnDecoder decodes an ORC Decimal column: a Data stream of
// unbounded zigzag varint unscaled magnitudes, and a Secondary stream
// of signed-RLE per-value encoded scales. Every value is rescaled to
// the column's declared scale by truncating integer division (not
// rounding), matching datafusion-orc's checked-integer-division
// decimal decoder.
type DecimalColumnDecoder struct {
	column  int
	present *PresentReader
	data    io.ByteReader
	scales  int64Source
	scale   int
}

// NewDecimalColumnDecoder validates col's ORC kind and wraps the data
// and secondary (scale) streams.
func NewDecimalColumnDecoder(col schema.Column, present *PresentReader, data io.ByteReader, scales int64Source) (*DecimalColumnDecoder, error) {
	if err := checkMismatch(col, schema.KindDecimal); err != nil {
		return nil, err
	}

	return &DecimalColumnDecoder{
		column:  col.Index,
		present: present,
		data:    data,
		scales:  scales,
		scale:   col.Type.Scale,
	}, nil
}

// rescale truncates unscaled from encodedScale to d.scale digits.
func (d *DecimalColumnDecoder) rescale(unscaled *big.Int, encodedScale int) *big.Int {
	diff := encodedScale - d.scale
	if diff == 0 {
		return unscaled
	}

	factor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(abs(diff))), nil)
	out := new(big.Int)
	if diff > 0 {
		out.Quo(unscaled, factor) // truncates toward zero, matching big.Int.Quo
	} else {
		out.Mul(unscaled, factor)
	}

	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}

	return v
}

// NextBatch implements ColumnDecoder.
func (d *DecimalColumnDecoder) NextBatch(n int, parentPresent []bool) (Array, error) {
	present, err := derivePresent(d.present, n, parentPresent)
	if err != nil {
		return nil, err
	}

	length := batchLength(parentPresent, n)
	values := make([]*big.Int, length)
	want := countValid(present, length)

	read := 0
	for i := 0; i < length; i++ {
		if present != nil && !present[i] {
			continue
		}

		unscaled, err := bitio.ReadVarintZigzagBig(d.data)
		if err != nil {
			return nil, wrapShortRead(d.column, "DATA", want, read, err)
		}

		encodedScale, err := d.scales.Next()
		if err != nil {
			return nil, wrapShortRead(d.column, "SECONDARY", want, read, err)
		}

		values[i] = d.rescale(unscaled, int(encodedScale))
		read++
	}

	return Decimal128Array{presentArray: presentArray{Present: present}, Values: values, Scale: d.scale}, nil
}
