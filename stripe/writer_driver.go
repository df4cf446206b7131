package stripe

import (
	"encoding/binary"
	"fmt"

	"github.com/orcstripe/orcstripe/decoder"
	"github.com/orcstripe/orcstripe/errs"
	"github.com/orcstripe/orcstripe/internal/options"
	"github.com/orcstripe/orcstripe/schema"
)

// StripeFooter is the flushed result of a StripeWriter: the ordered
// stream list and per-column encodings a reader's StreamMap/
// BuildColumnDecoder pair needs to read the stripe back, alongside the
// concatenated decompressed byte region those streams index into.
type StripeFooter struct {
	Streams    []Stream
	Encodings  map[int]ColumnEncoding
	Statistics map[int]ColumnStatistics
	NumRows    int
	Data       []byte
}

// StripeWriter accumulates record batches for every selected top-level
// field of a schema, one ColumnStripeEncoder per field, and on Flush
// concatenates their streams into a single stripe footer plus byte
// region. It performs no compression or file I/O of its own; a caller
// frames StripeFooter.Data through the compress package per the
// stripe's declared compression kind before appending it to a file.
type StripeWriter struct {
	schema     *schema.Schema
	fieldNames []string
	encoders   []ColumnStripeEncoder
	numRows    int
	useV2      bool
}

// NewStripeWriter builds a StripeWriter over sch's selected top-level
// fields, constructing one ColumnStripeEncoder per field via
// BuildColumnEncoder.
func NewStripeWriter(sch *schema.Schema, opts ...WriterOption) (*StripeWriter, error) {
	cfg := &WriterConfig{useRleV2: true, byteOrder: binary.LittleEndian}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	root := sch.RootType()
	var (
		fieldNames []string
		encoders   []ColumnStripeEncoder
	)
	for i, child := range root.Children {
		if !sch.Contains(child.Index) {
			continue
		}

		col, err := sch.ByIndex(child.Index)
		if err != nil {
			return nil, err
		}

		enc, err := BuildColumnEncoder(sch, col, cfg.useRleV2, cfg.byteOrder)
		if err != nil {
			return nil, err
		}

		fieldNames = append(fieldNames, root.FieldNames[i])
		encoders = append(encoders, enc)
	}

	return &StripeWriter{schema: sch, fieldNames: fieldNames, encoders: encoders, useV2: cfg.useRleV2}, nil
}

// Write encodes one record batch's worth of column values. batch must
// carry exactly one Array per field this StripeWriter was constructed
// with, in the same order.
func (w *StripeWriter) Write(batch decoder.Batch) error {
	if len(batch.Arrays) != len(w.encoders) {
		return fmt.Errorf("stripe: batch has %d columns, writer expects %d: %w", len(batch.Arrays), len(w.encoders), errs.ErrMismatchedSchema)
	}

	for i, enc := range w.encoders {
		if err := enc.EncodeArray(batch.Arrays[i]); err != nil {
			return fmt.Errorf("stripe: field %q: %w", w.fieldNames[i], err)
		}
	}
	w.numRows += batch.Rows

	return nil
}

// EstimateMemorySize sums every column encoder's current buffered
// size, for a caller deciding when a stripe has grown large enough to
// flush.
func (w *StripeWriter) EstimateMemorySize() int {
	total := 0
	for _, enc := range w.encoders {
		total += enc.EstimateMemorySize()
	}

	return total
}

// Flush finalizes every column encoder and concatenates their streams
// into a single stripe footer and byte region, in field declaration
// order. Flush resets the row count only: the column encoders keep
// their buffered streams, so Write calls after a Flush add to those
// same buffers and a second Flush emits the earlier stripe's data
// again.
func (w *StripeWriter) Flush() (StripeFooter, error) {
	footer := StripeFooter{
		Encodings:  make(map[int]ColumnEncoding, len(w.encoders)),
		Statistics: make(map[int]ColumnStatistics, len(w.encoders)),
		NumRows:    w.numRows,
	}

	for _, enc := range w.encoders {
		collectStatistics(enc, footer.Statistics)

		streams, err := enc.Finish()
		if err != nil {
			return StripeFooter{}, err
		}

		for _, s := range streams {
			footer.Streams = append(footer.Streams, s.Stream)
			footer.Data = append(footer.Data, s.Data...)
		}
	}

	root := w.schema.RootType()
	for _, child := range root.Children {
		if !w.schema.Contains(child.Index) {
			continue
		}
		col, err := w.schema.ByIndex(child.Index)
		if err != nil {
			return StripeFooter{}, err
		}
		if err := collectColumnEncodings(w.schema, col, w.useV2, footer.Encodings); err != nil {
			return StripeFooter{}, err
		}
	}

	w.numRows = 0

	return footer, nil
}
