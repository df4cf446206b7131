package stripe

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"math/big"

	"github.com/orcstripe/orcstripe/decoder"
	"github.com/orcstripe/orcstripe/encoding"
	"github.com/orcstripe/orcstripe/errs"
	"github.com/orcstripe/orcstripe/internal/bitio"
	"github.com/orcstripe/orcstripe/internal/options"
	"github.com/orcstripe/orcstripe/schema"
)

// WriterConfig holds a StripeWriter's tunables.
type WriterConfig struct {
	useRleV2  bool
	byteOrder binary.ByteOrder
}

// WriterOption represents a functional option for configuring a
// StripeWriter (or a standalone ColumnStripeEncoder) at construction
// time.
type WriterOption = options.Option[*WriterConfig]

// WithIntegerRleV2 selects Integer RLE v2 (DirectV2/DictionaryV2) for
// every integer-backed column encoder; it is the default.
func WithIntegerRleV2() WriterOption {
	return options.NoError(func(c *WriterConfig) { c.useRleV2 = true })
}

// WithIntegerRleV1 selects Integer RLE v1 (Direct/Dictionary),
// matching older ORC writers.
func WithIntegerRleV1() WriterOption {
	return options.NoError(func(c *WriterConfig) { c.useRleV2 = false })
}

// WithLittleEndian selects little-endian Float/Double raw streams; it
// is the default and matches every ORC file in the wild.
func WithLittleEndian() WriterOption {
	return options.NoError(func(c *WriterConfig) { c.byteOrder = binary.LittleEndian })
}

// WithBigEndian selects big-endian Float/Double raw streams. ORC never
// defines a big-endian stripe; this exists only for symmetry with
// WithLittleEndian and a matching reader-side option.
func WithBigEndian() WriterOption {
	return options.NoError(func(c *WriterConfig) { c.byteOrder = binary.BigEndian })
}

// EncodedStream is one ColumnStripeEncoder.Finish result: the footer
// metadata entry (kind, column, decompressed length) paired with its
// encoded bytes.
type EncodedStream struct {
	Stream
	Data []byte
}

// ColumnStripeEncoder is the write-side counterpart of
// decoder.ColumnDecoder: accumulate one or more record batches' worth
// of a single column's values, then flush them to the stripe's
// concatenated stream data region.
type ColumnStripeEncoder interface {
	// EncodeArray appends arr's values (and validity) to this column's
	// buffered streams. Called once per batch, in row order.
	EncodeArray(arr decoder.Array) error

	// ColumnEncoding reports the encoding this column will declare in
	// the stripe footer. It depends only on the column kind and the
	// RLE version, never on the encoded values; the writer emits no
	// dictionary encodings.
	ColumnEncoding() ColumnEncoding

	// EstimateMemorySize reports the encoder's current buffered size in
	// bytes, for flush-threshold bookkeeping by the caller.
	EstimateMemorySize() int

	// Finish flushes any buffered run and returns this column's
	// streams in footer declaration order (Present first, if present).
	Finish() ([]EncodedStream, error)

	// Column reports this encoder's column index, for the stripe
	// footer's statistics walk.
	Column() int

	// Statistics reports this column's own row/null counts, current as
	// of the last EncodeArray call.
	Statistics() ColumnStatistics
}

// presentEncoder buffers a column's validity bits and reports whether
// any null was actually seen, so Finish can omit a Present stream
// entirely for an all-valid column, matching the optional-stream
// convention ORC readers expect.
type presentEncoder struct {
	enc       *encoding.BooleanRleEncoder
	sawNull   bool
	numValues int64
	nullCount int64
}

func newPresentEncoder() *presentEncoder {
	return &presentEncoder{enc: encoding.NewBooleanRleEncoder()}
}

func (p *presentEncoder) encode(arr decoder.Array) {
	n := arr.Len()
	for i := 0; i < n; i++ {
		v := arr.IsValid(i)
		if !v {
			p.sawNull = true
			p.nullCount++
		} else {
			p.numValues++
		}
		p.enc.Write(v)
	}
}

// stream returns the encoded Present stream, or (nil, false) if no
// null was ever seen.
func (p *presentEncoder) stream(column int) (EncodedStream, bool) {
	if !p.sawNull {
		return EncodedStream{}, false
	}

	p.enc.Finish()
	data := p.enc.Bytes()

	return EncodedStream{Stream: Stream{Kind: StreamPresent, Column: column, Length: len(data)}, Data: data}, true
}

// baseColumnEncoder holds the per-column state every concrete
// ColumnStripeEncoder embeds: its column index and buffered present
// bits.
type baseColumnEncoder struct {
	column  int
	present *presentEncoder
}

func newBaseColumnEncoder(column int) baseColumnEncoder {
	return baseColumnEncoder{column: column, present: newPresentEncoder()}
}

func (b *baseColumnEncoder) presentStream() []EncodedStream {
	if s, ok := b.present.stream(b.column); ok {
		return []EncodedStream{s}
	}

	return nil
}

// Column reports this encoder's column index.
func (b *baseColumnEncoder) Column() int { return b.column }

// Statistics reports this column's own row/null counts, accumulated by
// every EncodeArray call's shared e.present.encode(arr) pass.
func (b *baseColumnEncoder) Statistics() ColumnStatistics {
	return ColumnStatistics{NumValues: b.present.numValues, NullCount: b.present.nullCount}
}

// intEncoder writes an int64 Data (or Secondary) stream, sharing the
// RLE v1/v2 choice across every integer-backed column encoder.
type intEncoder struct {
	buf    bytes.Buffer
	v2     *encoding.IntRleV2Encoder
	v1     *encoding.IntRleV1Encoder
	useV2  bool
	signed bool
}

func newIntEncoder(useV2, signed bool) *intEncoder {
	e := &intEncoder{useV2: useV2, signed: signed}
	if useV2 {
		e.v2 = encoding.NewIntRleV2Encoder(&e.buf, signed)
	} else {
		e.v1 = encoding.NewIntRleV1Encoder(&e.buf, signed)
	}

	return e
}

func (e *intEncoder) write(v int64) error {
	if e.useV2 {
		return e.v2.Write(v)
	}

	return e.v1.Write(v)
}

func (e *intEncoder) finish() ([]byte, error) {
	if e.useV2 {
		if err := e.v2.Flush(); err != nil {
			return nil, err
		}
	} else if err := e.v1.Flush(); err != nil {
		return nil, err
	}

	return e.buf.Bytes(), nil
}

func (e *intEncoder) encodingKind(dictionary bool) EncodingKind {
	switch {
	case dictionary && e.useV2:
		return EncodingDictionaryV2
	case dictionary:
		return EncodingDictionary
	case e.useV2:
		return EncodingDirectV2
	default:
		return EncodingDirect
	}
}

// BooleanColumnEncoder encodes an ORC Boolean column.
type BooleanColumnEncoder struct {
	baseColumnEncoder
	data *encoding.BooleanRleEncoder
}

// NewBooleanColumnEncoder builds a Boolean column encoder for column.
func NewBooleanColumnEncoder(column int) *BooleanColumnEncoder {
	return &BooleanColumnEncoder{baseColumnEncoder: newBaseColumnEncoder(column), data: encoding.NewBooleanRleEncoder()}
}

func (e *BooleanColumnEncoder) EncodeArray(arr decoder.Array) error {
	a, ok := arr.(decoder.BoolArray)
	if !ok {
		return fmt.Errorf("stripe: column %d expects BoolArray, got %T: %w", e.column, arr, errs.ErrMismatchedSchema)
	}
	e.present.encode(arr)
	for i, v := range a.Values {
		if a.IsValid(i) {
			e.data.Write(v)
		}
	}

	return nil
}

func (e *BooleanColumnEncoder) ColumnEncoding() ColumnEncoding { return ColumnEncoding{Kind: EncodingDirect} }
func (e *BooleanColumnEncoder) EstimateMemorySize() int        { return e.data.Size() }

func (e *BooleanColumnEncoder) Finish() ([]EncodedStream, error) {
	e.data.Finish()
	data := e.data.Bytes()
	out := e.presentStream()

	return append(out, EncodedStream{Stream: Stream{Kind: StreamData, Column: e.column, Length: len(data)}, Data: data}), nil
}

// ByteColumnEncoder encodes an ORC Byte column.
type ByteColumnEncoder struct {
	baseColumnEncoder
	data *encoding.ByteRleEncoder
}

// NewByteColumnEncoder builds a Byte column encoder for column.
func NewByteColumnEncoder(column int) *ByteColumnEncoder {
	return &ByteColumnEncoder{baseColumnEncoder: newBaseColumnEncoder(column), data: encoding.NewByteRleEncoder()}
}

func (e *ByteColumnEncoder) EncodeArray(arr decoder.Array) error {
	a, ok := arr.(decoder.Int8Array)
	if !ok {
		return fmt.Errorf("stripe: column %d expects Int8Array, got %T: %w", e.column, arr, errs.ErrMismatchedSchema)
	}
	e.present.encode(arr)
	for i, v := range a.Values {
		if a.IsValid(i) {
			e.data.Write(byte(v))
		}
	}

	return nil
}

func (e *ByteColumnEncoder) ColumnEncoding() ColumnEncoding { return ColumnEncoding{Kind: EncodingDirect} }
func (e *ByteColumnEncoder) EstimateMemorySize() int        { return e.data.Size() }

func (e *ByteColumnEncoder) Finish() ([]EncodedStream, error) {
	e.data.Finish()
	data := e.data.Bytes()
	out := e.presentStream()

	return append(out, EncodedStream{Stream: Stream{Kind: StreamData, Column: e.column, Length: len(data)}, Data: data}), nil
}

// integerColumnEncoder encodes Short/Int/Long/Date columns: all four
// share the signed Integer RLE wire format and differ only in which
// Array type and narrow-to-int64 conversion they accept.
type integerColumnEncoder struct {
	baseColumnEncoder
	kind schema.Kind
	data *intEncoder
}

func newIntegerColumnEncoder(column int, kind schema.Kind, useV2 bool) *integerColumnEncoder {
	return &integerColumnEncoder{baseColumnEncoder: newBaseColumnEncoder(column), kind: kind, data: newIntEncoder(useV2, true)}
}

func (e *integerColumnEncoder) encodeValues(present []bool, values []int64) error {
	for i, v := range values {
		if present == nil || present[i] {
			if err := e.data.write(v); err != nil {
				return err
			}
		}
	}

	return nil
}

func (e *integerColumnEncoder) EncodeArray(arr decoder.Array) error {
	e.present.encode(arr)

	n := arr.Len()
	present := make([]bool, n)
	for i := 0; i < n; i++ {
		present[i] = arr.IsValid(i)
	}

	var values []int64
	switch a := arr.(type) {
	case decoder.Int16Array:
		values = widenInt16(a.Values)
	case decoder.Int32Array:
		values = widenInt32(a.Values)
	case decoder.Int64Array:
		values = a.Values
	default:
		return fmt.Errorf("stripe: column %d (%s) expects an integer array, got %T: %w", e.column, e.kind, arr, errs.ErrMismatchedSchema)
	}

	return e.encodeValues(present, values)
}

func widenInt16(values []int16) []int64 {
	out := make([]int64, len(values))
	for i, v := range values {
		out[i] = int64(v)
	}

	return out
}

func widenInt32(values []int32) []int64 {
	out := make([]int64, len(values))
	for i, v := range values {
		out[i] = int64(v)
	}

	return out
}

func (e *integerColumnEncoder) ColumnEncoding() ColumnEncoding {
	return ColumnEncoding{Kind: e.data.encodingKind(false)}
}
func (e *integerColumnEncoder) EstimateMemorySize() int { return e.data.buf.Len() }

func (e *integerColumnEncoder) Finish() ([]EncodedStream, error) {
	data, err := e.data.finish()
	if err != nil {
		return nil, err
	}
	out := e.presentStream()

	return append(out, EncodedStream{Stream: Stream{Kind: StreamData, Column: e.column, Length: len(data)}, Data: data}), nil
}

// NewShortColumnEncoder builds a Short column encoder for column.
func NewShortColumnEncoder(column int, useV2 bool) *integerColumnEncoder {
	return newIntegerColumnEncoder(column, schema.KindShort, useV2)
}

// NewIntColumnEncoder builds an Int column encoder for column.
func NewIntColumnEncoder(column int, useV2 bool) *integerColumnEncoder {
	return newIntegerColumnEncoder(column, schema.KindInt, useV2)
}

// NewLongColumnEncoder builds a Long column encoder for column.
func NewLongColumnEncoder(column int, useV2 bool) *integerColumnEncoder {
	return newIntegerColumnEncoder(column, schema.KindLong, useV2)
}

// NewDateColumnEncoder builds a Date column encoder for column.
func NewDateColumnEncoder(column int, useV2 bool) *integerColumnEncoder {
	return newIntegerColumnEncoder(column, schema.KindDate, useV2)
}

// FloatColumnEncoder encodes an ORC Float column: IEEE-754 float32
// values, no RLE.
type FloatColumnEncoder struct {
	baseColumnEncoder
	buf   bytes.Buffer
	order binary.ByteOrder
}

// NewFloatColumnEncoder builds a Float column encoder for column.
// order selects the byte order of the Data stream; pass
// binary.LittleEndian to match every ORC file in the wild.
func NewFloatColumnEncoder(column int, order binary.ByteOrder) *FloatColumnEncoder {
	return &FloatColumnEncoder{baseColumnEncoder: newBaseColumnEncoder(column), order: order}
}

func (e *FloatColumnEncoder) EncodeArray(arr decoder.Array) error {
	a, ok := arr.(decoder.Float32Array)
	if !ok {
		return fmt.Errorf("stripe: column %d expects Float32Array, got %T: %w", e.column, arr, errs.ErrMismatchedSchema)
	}
	e.present.encode(arr)
	for i, v := range a.Values {
		if a.IsValid(i) {
			writeFloat32(&e.buf, v, e.order)
		}
	}

	return nil
}

func (e *FloatColumnEncoder) ColumnEncoding() ColumnEncoding { return ColumnEncoding{Kind: EncodingDirect} }
func (e *FloatColumnEncoder) EstimateMemorySize() int        { return e.buf.Len() }

func (e *FloatColumnEncoder) Finish() ([]EncodedStream, error) {
	data := e.buf.Bytes()
	out := e.presentStream()

	return append(out, EncodedStream{Stream: Stream{Kind: StreamData, Column: e.column, Length: len(data)}, Data: data}), nil
}

// DoubleColumnEncoder encodes an ORC Double column: IEEE-754 float64
// values, no RLE.
type DoubleColumnEncoder struct {
	baseColumnEncoder
	buf   bytes.Buffer
	order binary.ByteOrder
}

// NewDoubleColumnEncoder builds a Double column encoder for column.
// order selects the byte order of the Data stream; pass
// binary.LittleEndian to match every ORC file in the wild.
func NewDoubleColumnEncoder(column int, order binary.ByteOrder) *DoubleColumnEncoder {
	return &DoubleColumnEncoder{baseColumnEncoder: newBaseColumnEncoder(column), order: order}
}

func (e *DoubleColumnEncoder) EncodeArray(arr decoder.Array) error {
	a, ok := arr.(decoder.Float64Array)
	if !ok {
		return fmt.Errorf("stripe: column %d expects Float64Array, got %T: %w", e.column, arr, errs.ErrMismatchedSchema)
	}
	e.present.encode(arr)
	for i, v := range a.Values {
		if a.IsValid(i) {
			writeFloat64(&e.buf, v, e.order)
		}
	}

	return nil
}

func (e *DoubleColumnEncoder) ColumnEncoding() ColumnEncoding { return ColumnEncoding{Kind: EncodingDirect} }
func (e *DoubleColumnEncoder) EstimateMemorySize() int        { return e.buf.Len() }

func (e *DoubleColumnEncoder) Finish() ([]EncodedStream, error) {
	data := e.buf.Bytes()
	out := e.presentStream()

	return append(out, EncodedStream{Stream: Stream{Kind: StreamData, Column: e.column, Length: len(data)}, Data: data}), nil
}

// StringDirectColumnEncoder encodes a String/Varchar/Char column as
// Direct: an unsigned-RLE Length stream plus a raw-bytes Data stream.
// Dictionary encoding is a read-side concern here; the writer always
// emits Direct, matching the dictionary-materialization decision
// already recorded for the decoder side.
type StringDirectColumnEncoder struct {
	baseColumnEncoder
	lengths *intEncoder
	data    bytes.Buffer
}

// NewStringDirectColumnEncoder builds a String/Varchar/Char Direct
// column encoder for column.
func NewStringDirectColumnEncoder(column int, useV2 bool) *StringDirectColumnEncoder {
	return &StringDirectColumnEncoder{baseColumnEncoder: newBaseColumnEncoder(column), lengths: newIntEncoder(useV2, false)}
}

func (e *StringDirectColumnEncoder) EncodeArray(arr decoder.Array) error {
	a, ok := arr.(decoder.StringArray)
	if !ok {
		return fmt.Errorf("stripe: column %d expects StringArray, got %T: %w", e.column, arr, errs.ErrMismatchedSchema)
	}
	e.present.encode(arr)
	for i, v := range a.Values {
		if !a.IsValid(i) {
			continue
		}
		if err := e.lengths.write(int64(len(v))); err != nil {
			return err
		}
		e.data.WriteString(v)
	}

	return nil
}

func (e *StringDirectColumnEncoder) ColumnEncoding() ColumnEncoding {
	return ColumnEncoding{Kind: e.lengths.encodingKind(false)}
}
func (e *StringDirectColumnEncoder) EstimateMemorySize() int { return e.lengths.buf.Len() + e.data.Len() }

func (e *StringDirectColumnEncoder) Finish() ([]EncodedStream, error) {
	lengths, err := e.lengths.finish()
	if err != nil {
		return nil, err
	}
	data := e.data.Bytes()
	out := e.presentStream()
	out = append(out, EncodedStream{Stream: Stream{Kind: StreamLength, Column: e.column, Length: len(lengths)}, Data: lengths})
	out = append(out, EncodedStream{Stream: Stream{Kind: StreamData, Column: e.column, Length: len(data)}, Data: data})

	return out, nil
}

// BinaryColumnEncoder encodes an ORC Binary column: wire-identical to
// StringDirectColumnEncoder.
type BinaryColumnEncoder struct {
	baseColumnEncoder
	lengths *intEncoder
	data    bytes.Buffer
}

// NewBinaryColumnEncoder builds a Binary column encoder for column.
func NewBinaryColumnEncoder(column int, useV2 bool) *BinaryColumnEncoder {
	return &BinaryColumnEncoder{baseColumnEncoder: newBaseColumnEncoder(column), lengths: newIntEncoder(useV2, false)}
}

func (e *BinaryColumnEncoder) EncodeArray(arr decoder.Array) error {
	a, ok := arr.(decoder.BytesArray)
	if !ok {
		return fmt.Errorf("stripe: column %d expects BytesArray, got %T: %w", e.column, arr, errs.ErrMismatchedSchema)
	}
	e.present.encode(arr)
	for i, v := range a.Values {
		if !a.IsValid(i) {
			continue
		}
		if err := e.lengths.write(int64(len(v))); err != nil {
			return err
		}
		e.data.Write(v)
	}

	return nil
}

func (e *BinaryColumnEncoder) ColumnEncoding() ColumnEncoding {
	return ColumnEncoding{Kind: e.lengths.encodingKind(false)}
}
func (e *BinaryColumnEncoder) EstimateMemorySize() int { return e.lengths.buf.Len() + e.data.Len() }

func (e *BinaryColumnEncoder) Finish() ([]EncodedStream, error) {
	lengths, err := e.lengths.finish()
	if err != nil {
		return nil, err
	}
	data := e.data.Bytes()
	out := e.presentStream()
	out = append(out, EncodedStream{Stream: Stream{Kind: StreamLength, Column: e.column, Length: len(lengths)}, Data: lengths})
	out = append(out, EncodedStream{Stream: Stream{Kind: StreamData, Column: e.column, Length: len(data)}, Data: data})

	return out, nil
}

// DecimalColumnEncoder encodes an ORC Decimal column: an unbounded
// zigzag varint Data stream of unscaled magnitudes plus a signed-RLE
// Secondary stream of per-value encoded scales (always the column's
// declared scale, since Decimal128Array is already rescaled).
type DecimalColumnEncoder struct {
	baseColumnEncoder
	data   bytes.Buffer
	scales *intEncoder
	scale  int
}

// NewDecimalColumnEncoder builds a Decimal column encoder for column
// at the given declared scale.
func NewDecimalColumnEncoder(column, scale int, useV2 bool) *DecimalColumnEncoder {
	return &DecimalColumnEncoder{baseColumnEncoder: newBaseColumnEncoder(column), scales: newIntEncoder(useV2, true), scale: scale}
}

func (e *DecimalColumnEncoder) EncodeArray(arr decoder.Array) error {
	a, ok := arr.(decoder.Decimal128Array)
	if !ok {
		return fmt.Errorf("stripe: column %d expects Decimal128Array, got %T: %w", e.column, arr, errs.ErrMismatchedSchema)
	}
	e.present.encode(arr)
	for i, v := range a.Values {
		if !a.IsValid(i) {
			continue
		}
		unscaled := v
		if unscaled == nil {
			unscaled = big.NewInt(0)
		}
		if err := bitio.WriteVarintZigzagBig(&e.data, unscaled); err != nil {
			return err
		}
		if err := e.scales.write(int64(e.scale)); err != nil {
			return err
		}
	}

	return nil
}

func (e *DecimalColumnEncoder) ColumnEncoding() ColumnEncoding {
	return ColumnEncoding{Kind: e.scales.encodingKind(false)}
}
func (e *DecimalColumnEncoder) EstimateMemorySize() int { return e.data.Len() + e.scales.buf.Len() }

func (e *DecimalColumnEncoder) Finish() ([]EncodedStream, error) {
	scales, err := e.scales.finish()
	if err != nil {
		return nil, err
	}
	data := e.data.Bytes()
	out := e.presentStream()
	out = append(out, EncodedStream{Stream: Stream{Kind: StreamData, Column: e.column, Length: len(data)}, Data: data})
	out = append(out, EncodedStream{Stream: Stream{Kind: StreamSecondary, Column: e.column, Length: len(scales)}, Data: scales})

	return out, nil
}

// StructColumnEncoder encodes an ORC Struct column: a Present stream
// plus one child ColumnStripeEncoder per field.
type StructColumnEncoder struct {
	baseColumnEncoder
	fields []ColumnStripeEncoder
}

// NewStructColumnEncoder builds a Struct column encoder for column,
// wrapping one child encoder per field in declaration order.
func NewStructColumnEncoder(column int, fields []ColumnStripeEncoder) *StructColumnEncoder {
	return &StructColumnEncoder{baseColumnEncoder: newBaseColumnEncoder(column), fields: fields}
}

func (e *StructColumnEncoder) EncodeArray(arr decoder.Array) error {
	a, ok := arr.(decoder.StructArray)
	if !ok {
		return fmt.Errorf("stripe: column %d expects StructArray, got %T: %w", e.column, arr, errs.ErrMismatchedSchema)
	}
	if len(a.Children) != len(e.fields) {
		return fmt.Errorf("stripe: column %d struct has %d children, expected %d: %w", e.column, len(a.Children), len(e.fields), errs.ErrMismatchedSchema)
	}
	e.present.encode(arr)
	for i, field := range e.fields {
		if err := field.EncodeArray(a.Children[i]); err != nil {
			return err
		}
	}

	return nil
}

func (e *StructColumnEncoder) ColumnEncoding() ColumnEncoding { return ColumnEncoding{Kind: EncodingDirect} }

func (e *StructColumnEncoder) EstimateMemorySize() int {
	total := 0
	for _, f := range e.fields {
		total += f.EstimateMemorySize()
	}

	return total
}

// childEncoders exposes this column's field encoders to the stripe
// footer's statistics walk (collectStatistics).
func (e *StructColumnEncoder) childEncoders() []ColumnStripeEncoder { return e.fields }

func (e *StructColumnEncoder) Finish() ([]EncodedStream, error) {
	out := e.presentStream()
	for _, f := range e.fields {
		streams, err := f.Finish()
		if err != nil {
			return nil, err
		}
		out = append(out, streams...)
	}

	return out, nil
}

// TimestampColumnEncoder encodes an ORC Timestamp or
// TimestampWithLocalTimezone column. It always writes seconds as if no
// writer timezone were declared (the value is already UTC nanoseconds
// since the Unix epoch); a stripe whose writer timezone is non-UTC is
// a read-side reinterpretation concern handled by
// decoder.TimestampColumnDecoder, not reproduced symmetrically here.
// Nanoseconds are always written with the trivial k=0 sub-encoding
// (n is the full remainder), a valid but non-maximally-compressed
// encoding that any ORC reader, including this module's, decodes
// identically to a trailing-zero-optimized one.
type TimestampColumnEncoder struct {
	baseColumnEncoder
	seconds *intEncoder
	nanos   *intEncoder
}

// NewTimestampColumnEncoder builds a Timestamp/TimestampWithLocalTimezone
// column encoder for column.
func NewTimestampColumnEncoder(column int, useV2 bool) *TimestampColumnEncoder {
	return &TimestampColumnEncoder{
		baseColumnEncoder: newBaseColumnEncoder(column),
		seconds:           newIntEncoder(useV2, true),
		nanos:             newIntEncoder(useV2, false),
	}
}

func (e *TimestampColumnEncoder) EncodeArray(arr decoder.Array) error {
	a, ok := arr.(decoder.TimestampArray)
	if !ok {
		return fmt.Errorf("stripe: column %d expects TimestampArray, got %T: %w", e.column, arr, errs.ErrMismatchedSchema)
	}
	e.present.encode(arr)
	for i, v := range a.Values {
		if !a.IsValid(i) {
			continue
		}

		unixSeconds := v / int64(1_000_000_000)
		nanoRemainder := v % int64(1_000_000_000)
		if nanoRemainder < 0 {
			unixSeconds--
			nanoRemainder += 1_000_000_000
		}

		if err := e.seconds.write(unixSeconds - orcEpochUTCSecondsSinceUnixEpoch); err != nil {
			return err
		}
		if err := e.nanos.write(nanoRemainder << 3); err != nil {
			return err
		}
	}

	return nil
}

func (e *TimestampColumnEncoder) ColumnEncoding() ColumnEncoding {
	return ColumnEncoding{Kind: e.seconds.encodingKind(false)}
}
func (e *TimestampColumnEncoder) EstimateMemorySize() int {
	return e.seconds.buf.Len() + e.nanos.buf.Len()
}

func (e *TimestampColumnEncoder) Finish() ([]EncodedStream, error) {
	seconds, err := e.seconds.finish()
	if err != nil {
		return nil, err
	}
	nanos, err := e.nanos.finish()
	if err != nil {
		return nil, err
	}
	out := e.presentStream()
	out = append(out, EncodedStream{Stream: Stream{Kind: StreamData, Column: e.column, Length: len(seconds)}, Data: seconds})
	out = append(out, EncodedStream{Stream: Stream{Kind: StreamSecondary, Column: e.column, Length: len(nanos)}, Data: nanos})

	return out, nil
}

// ListColumnEncoder encodes an ORC List column: a Present stream, an
// unsigned-RLE Length stream of each valid row's element count, and a
// single child element encoder fed every row's elements back to back.
type ListColumnEncoder struct {
	baseColumnEncoder
	lengths *intEncoder
	element ColumnStripeEncoder
}

// NewListColumnEncoder builds a List column encoder for column,
// wrapping the single element child encoder.
func NewListColumnEncoder(column int, useV2 bool, element ColumnStripeEncoder) *ListColumnEncoder {
	return &ListColumnEncoder{baseColumnEncoder: newBaseColumnEncoder(column), lengths: newIntEncoder(useV2, false), element: element}
}

func (e *ListColumnEncoder) EncodeArray(arr decoder.Array) error {
	a, ok := arr.(decoder.ListArray)
	if !ok {
		return fmt.Errorf("stripe: column %d expects ListArray, got %T: %w", e.column, arr, errs.ErrMismatchedSchema)
	}
	e.present.encode(arr)
	for i := 0; i < a.Len(); i++ {
		if !a.IsValid(i) {
			continue
		}
		n := a.Offsets[i+1] - a.Offsets[i]
		if err := e.lengths.write(int64(n)); err != nil {
			return err
		}
	}

	return e.element.EncodeArray(a.Values)
}

func (e *ListColumnEncoder) ColumnEncoding() ColumnEncoding {
	return ColumnEncoding{Kind: e.lengths.encodingKind(false)}
}
func (e *ListColumnEncoder) EstimateMemorySize() int {
	return e.lengths.buf.Len() + e.element.EstimateMemorySize()
}

// childEncoders exposes this column's element encoder to the stripe
// footer's statistics walk (collectStatistics).
func (e *ListColumnEncoder) childEncoders() []ColumnStripeEncoder { return []ColumnStripeEncoder{e.element} }

func (e *ListColumnEncoder) Finish() ([]EncodedStream, error) {
	lengths, err := e.lengths.finish()
	if err != nil {
		return nil, err
	}
	out := e.presentStream()
	out = append(out, EncodedStream{Stream: Stream{Kind: StreamLength, Column: e.column, Length: len(lengths)}, Data: lengths})

	elementStreams, err := e.element.Finish()
	if err != nil {
		return nil, err
	}

	return append(out, elementStreams...), nil
}

// MapColumnEncoder encodes an ORC Map column: structured identically
// to ListColumnEncoder but with two child encoders, keys and values.
type MapColumnEncoder struct {
	baseColumnEncoder
	lengths *intEncoder
	keys    ColumnStripeEncoder
	values  ColumnStripeEncoder
}

// NewMapColumnEncoder builds a Map column encoder for column, wrapping
// the key and value child encoders.
func NewMapColumnEncoder(column int, useV2 bool, keys, values ColumnStripeEncoder) *MapColumnEncoder {
	return &MapColumnEncoder{baseColumnEncoder: newBaseColumnEncoder(column), lengths: newIntEncoder(useV2, false), keys: keys, values: values}
}

func (e *MapColumnEncoder) EncodeArray(arr decoder.Array) error {
	a, ok := arr.(decoder.MapArray)
	if !ok {
		return fmt.Errorf("stripe: column %d expects MapArray, got %T: %w", e.column, arr, errs.ErrMismatchedSchema)
	}
	e.present.encode(arr)
	for i := 0; i < a.Len(); i++ {
		if !a.IsValid(i) {
			continue
		}
		n := a.Offsets[i+1] - a.Offsets[i]
		if err := e.lengths.write(int64(n)); err != nil {
			return err
		}
	}

	if err := e.keys.EncodeArray(a.Keys); err != nil {
		return err
	}

	return e.values.EncodeArray(a.Values)
}

func (e *MapColumnEncoder) ColumnEncoding() ColumnEncoding {
	return ColumnEncoding{Kind: e.lengths.encodingKind(false)}
}
func (e *MapColumnEncoder) EstimateMemorySize() int {
	return e.lengths.buf.Len() + e.keys.EstimateMemorySize() + e.values.EstimateMemorySize()
}

// childEncoders exposes this column's key/value encoders to the
// stripe footer's statistics walk (collectStatistics).
func (e *MapColumnEncoder) childEncoders() []ColumnStripeEncoder {
	return []ColumnStripeEncoder{e.keys, e.values}
}

func (e *MapColumnEncoder) Finish() ([]EncodedStream, error) {
	lengths, err := e.lengths.finish()
	if err != nil {
		return nil, err
	}
	out := e.presentStream()
	out = append(out, EncodedStream{Stream: Stream{Kind: StreamLength, Column: e.column, Length: len(lengths)}, Data: lengths})

	keyStreams, err := e.keys.Finish()
	if err != nil {
		return nil, err
	}
	out = append(out, keyStreams...)

	valueStreams, err := e.values.Finish()
	if err != nil {
		return nil, err
	}

	return append(out, valueStreams...), nil
}

// UnionColumnEncoder encodes an ORC Union column: a Present stream,
// a Byte-RLE Data stream of per-row variant tags, and one child
// encoder per variant, each fed only the rows whose tag selects it.
type UnionColumnEncoder struct {
	baseColumnEncoder
	tags     *encoding.ByteRleEncoder
	variants []ColumnStripeEncoder
}

// NewUnionColumnEncoder builds a Union column encoder for column,
// wrapping one child encoder per declared variant.
func NewUnionColumnEncoder(column int, variants []ColumnStripeEncoder) *UnionColumnEncoder {
	return &UnionColumnEncoder{baseColumnEncoder: newBaseColumnEncoder(column), tags: encoding.NewByteRleEncoder(), variants: variants}
}

func (e *UnionColumnEncoder) EncodeArray(arr decoder.Array) error {
	a, ok := arr.(decoder.UnionArray)
	if !ok {
		return fmt.Errorf("stripe: column %d expects UnionArray, got %T: %w", e.column, arr, errs.ErrMismatchedSchema)
	}
	e.present.encode(arr)
	for i, tag := range a.Tags {
		if a.IsValid(i) {
			e.tags.Write(tag)
		}
	}
	for k, variant := range e.variants {
		if err := variant.EncodeArray(a.Variants[k]); err != nil {
			return err
		}
	}

	return nil
}

func (e *UnionColumnEncoder) ColumnEncoding() ColumnEncoding { return ColumnEncoding{Kind: EncodingDirect} }

func (e *UnionColumnEncoder) EstimateMemorySize() int {
	total := e.tags.Size()
	for _, v := range e.variants {
		total += v.EstimateMemorySize()
	}

	return total
}

// childEncoders exposes this column's variant encoders to the stripe
// footer's statistics walk (collectStatistics).
func (e *UnionColumnEncoder) childEncoders() []ColumnStripeEncoder { return e.variants }

func (e *UnionColumnEncoder) Finish() ([]EncodedStream, error) {
	e.tags.Finish()
	data := e.tags.Bytes()
	out := e.presentStream()
	out = append(out, EncodedStream{Stream: Stream{Kind: StreamData, Column: e.column, Length: len(data)}, Data: data})

	for _, variant := range e.variants {
		streams, err := variant.Finish()
		if err != nil {
			return nil, err
		}
		out = append(out, streams...)
	}

	return out, nil
}

// statisticsNode is implemented by the container encoders (Struct,
// List, Map, Union) to expose their child encoders to collectStatistics.
type statisticsNode interface {
	childEncoders() []ColumnStripeEncoder
}

// collectStatistics walks enc's encoder tree, recording every column's
// own ColumnStatistics into out. Mirrors collectColumnEncodings' shape
// but walks the already-built encoder tree rather than the schema,
// since per-column counts only exist once EncodeArray has run.
func collectStatistics(enc ColumnStripeEncoder, out map[int]ColumnStatistics) {
	out[enc.Column()] = enc.Statistics()

	if node, ok := enc.(statisticsNode); ok {
		for _, child := range node.childEncoders() {
			collectStatistics(child, out)
		}
	}
}

// writeFloat32 appends v's IEEE-754 bytes to buf in order.
func writeFloat32(buf *bytes.Buffer, v float32, order binary.ByteOrder) {
	var b [4]byte
	order.PutUint32(b[:], math.Float32bits(v))
	buf.Write(b[:])
}

// writeFloat64 appends v's IEEE-754 bytes to buf in order.
func writeFloat64(buf *bytes.Buffer, v float64, order binary.ByteOrder) {
	var b [8]byte
	order.PutUint64(b[:], math.Float64bits(v))
	buf.Write(b[:])
}
