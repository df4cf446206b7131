// Package decoder implements one ColumnDecoder per ORC logical type,
// composing the encoding package's RLE/varint codecs with the
// present-stream nullability rules from spec section 4.8 to
// reconstruct typed, nested columnar arrays.
package decoder

import "math/big"

// Array is the output of a single ColumnDecoder.NextBatch call: a
// fixed-length, possibly-nested typed vector with an optional
// validity bitmap. A nil Present means every slot is valid, matching
// the "parent absent, own absent -> None (fully valid)" rule in
// spec section 4.8.
type Array interface {
	// Len returns the number of logical slots in this array,
	// including null slots (every decoder always materializes a slot
	// for a null position; it just contributes no value).
	Len() int

	// IsValid reports whether slot i holds a value. Always true when
	// the array carries no Present vector.
	IsValid(i int) bool
}

// presentArray is embedded by every concrete Array type to provide
// the shared Present/IsValid behavior.
type presentArray struct {
	Present []bool
}

func (a presentArray) IsValid(i int) bool {
	if a.Present == nil {
		return true
	}

	return a.Present[i]
}

// BoolArray holds decoded Boolean column values.
type BoolArray struct {
	presentArray
	Values []bool
}

func (a BoolArray) Len() int { return len(a.Values) }

// Int8Array holds decoded Byte column values.
type Int8Array struct {
	presentArray
	Values []int8
}

func (a Int8Array) Len() int { return len(a.Values) }

// Int16Array holds decoded Short column values.
type Int16Array struct {
	presentArray
	Values []int16
}

func (a Int16Array) Len() int { return len(a.Values) }

// Int32Array holds decoded Int or Date column values (Date's values
// are days since the Unix epoch).
type Int32Array struct {
	presentArray
	Values []int32
}

func (a Int32Array) Len() int { return len(a.Values) }

// Int64Array holds decoded Long column values.
type Int64Array struct {
	presentArray
	Values []int64
}

func (a Int64Array) Len() int { return len(a.Values) }

// Float32Array holds decoded Float column values.
type Float32Array struct {
	presentArray
	Values []float32
}

func (a Float32Array) Len() int { return len(a.Values) }

// Float64Array holds decoded Double column values.
type Float64Array struct {
	presentArray
	Values []float64
}

func (a Float64Array) Len() int { return len(a.Values) }

// StringArray holds decoded String/Varchar/Char column values,
// including dictionary-encoded columns materialized to plain UTF-8.
type StringArray struct {
	presentArray
	Values []string
}

func (a StringArray) Len() int { return len(a.Values) }

// BytesArray holds decoded Binary column values.
type BytesArray struct {
	presentArray
	Values [][]byte
}

func (a BytesArray) Len() int { return len(a.Values) }

// Decimal128Array holds decoded Decimal column values as unscaled
// big.Int magnitudes alongside the column's declared scale (ORC
// decimal precision can reach 38 digits, beyond int64's range, so a
// big.Int is used rather than a fixed-width integer; math/big is the
// standard library's arbitrary-precision integer type and no
// third-party decimal library appears anywhere in the example pack).
type Decimal128Array struct {
	presentArray
	Values []*big.Int
	Scale  int
}

func (a Decimal128Array) Len() int { return len(a.Values) }

// TimestampArray holds decoded Timestamp/TimestampWithLocalTimezone
// column values as nanoseconds since the Unix epoch, already adjusted
// to UTC.
type TimestampArray struct {
	presentArray
	Values []int64
}

func (a TimestampArray) Len() int { return len(a.Values) }

// StructArray holds a struct column's per-field child arrays, keyed
// in declaration order; Names holds the parallel field names.
type StructArray struct {
	presentArray
	Names    []string
	Children []Array
}

func (a StructArray) Len() int {
	if len(a.Children) == 0 {
		return 0
	}

	return a.Children[0].Len()
}

// ListArray holds a list column's element array plus n+1 offsets
// (Arrow-style): element i's values are Values[Offsets[i]:Offsets[i+1]].
type ListArray struct {
	presentArray
	Offsets []int32
	Values  Array
}

func (a ListArray) Len() int {
	if len(a.Offsets) == 0 {
		return 0
	}

	return len(a.Offsets) - 1
}

// MapArray holds a map column's key/value arrays plus n+1 offsets,
// structured identically to ListArray but with two child arrays.
type MapArray struct {
	presentArray
	Offsets []int32
	Keys    Array
	Values  Array
}

func (a MapArray) Len() int {
	if len(a.Offsets) == 0 {
		return 0
	}

	return len(a.Offsets) - 1
}

// UnionArray holds a sparse union column: one tag per row selecting
// which Variants entry is live, with every variant materialized at
// full length (invalid everywhere its tag doesn't match).
type UnionArray struct {
	presentArray
	Tags     []byte
	Variants []Array
}

func (a UnionArray) Len() int { return len(a.Tags) }
