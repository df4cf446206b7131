package stripe

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"github.com/orcstripe/orcstripe/decoder"
	"github.com/orcstripe/orcstripe/internal/options"
	"github.com/orcstripe/orcstripe/schema"
)

// defaultBatchSize is the row count StripeReader caps each emitted
// batch at unless overridden via WithBatchSize.
const defaultBatchSize = 8192

// ReaderConfig holds a StripeReader's tunables. Exported only so
// ReaderOption implementations (in this package) can mutate it;
// callers configure it via WithBatchSize and friends, never directly.
type ReaderConfig struct {
	batchSize int
	writerLoc *time.Location
	byteOrder binary.ByteOrder
}

// ReaderOption represents a functional option for configuring a
// StripeReader at construction time.
type ReaderOption = options.Option[*ReaderConfig]

// WithBatchSize caps the row count of every batch StripeReader.Next
// emits. n must be positive.
func WithBatchSize(n int) ReaderOption {
	return options.New(func(c *ReaderConfig) error {
		if n <= 0 {
			return fmt.Errorf("stripe: batch size must be positive, got %d", n)
		}
		c.batchSize = n

		return nil
	})
}

// WithWriterTimezone sets the timezone plain Timestamp columns (no
// local-timezone variant) were written in. Defaults to UTC.
func WithWriterTimezone(loc *time.Location) ReaderOption {
	return options.NoError(func(c *ReaderConfig) {
		c.writerLoc = loc
	})
}

// WithLittleEndian selects little-endian Float/Double raw streams; it
// is the default and matches every ORC file in the wild.
func WithLittleEndian() ReaderOption {
	return options.NoError(func(c *ReaderConfig) { c.byteOrder = binary.LittleEndian })
}

// WithBigEndian selects big-endian Float/Double raw streams. ORC never
// defines a big-endian stripe; this exists only for symmetry with
// WithLittleEndian and the writer side's matching option.
func WithBigEndian() ReaderOption {
	return options.NoError(func(c *ReaderConfig) { c.byteOrder = binary.BigEndian })
}

// StripeReader pulls fixed-size record batches out of a single
// stripe's decompressed stream data, one ColumnDecoder per selected
// top-level field, advancing a shared row cursor across calls.
type StripeReader struct {
	schema     *schema.Schema
	fieldNames []string
	decoders   []decoder.ColumnDecoder
	numRows    int
	rowsRead   int
	batchSize  int
}

// NewStripeReader builds a StripeReader over sch's selected columns,
// resolving each selected root field's ColumnDecoder tree against
// encodings and streams. numRows is the stripe's total row count (from
// the stripe footer).
func NewStripeReader(sch *schema.Schema, encodings map[int]ColumnEncoding, streams *StreamMap, numRows int, opts ...ReaderOption) (*StripeReader, error) {
	cfg := &ReaderConfig{batchSize: defaultBatchSize, byteOrder: binary.LittleEndian}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	root := sch.RootType()
	var (
		fieldNames []string
		decoders   []decoder.ColumnDecoder
	)
	for i, child := range root.Children {
		if !sch.Contains(child.Index) {
			continue
		}

		col, err := sch.ByIndex(child.Index)
		if err != nil {
			return nil, err
		}

		dec, err := BuildColumnDecoder(sch, col, encodings, streams, cfg.writerLoc, cfg.byteOrder)
		if err != nil {
			return nil, err
		}

		fieldNames = append(fieldNames, root.FieldNames[i])
		decoders = append(decoders, dec)
	}

	return &StripeReader{
		schema:     sch,
		fieldNames: fieldNames,
		decoders:   decoders,
		numRows:    numRows,
		batchSize:  cfg.batchSize,
	}, nil
}

// Next decodes and returns the next batch of up to the configured
// batch size rows, or io.EOF once every row in the stripe has been
// emitted. ctx is checked once per call so a caller blocked on a slow
// upstream byte source (fronting this stripe's streams) can cancel
// between batches; the core itself performs no I/O of its own.
func (r *StripeReader) Next(ctx context.Context) (decoder.Batch, error) {
	if err := ctx.Err(); err != nil {
		return decoder.Batch{}, err
	}

	remaining := r.numRows - r.rowsRead
	if remaining <= 0 {
		return decoder.Batch{}, io.EOF
	}

	chunk := r.batchSize
	if chunk > remaining {
		chunk = remaining
	}

	arrays := make([]decoder.Array, len(r.decoders))
	for i, dec := range r.decoders {
		arr, err := dec.NextBatch(chunk, nil)
		if err != nil {
			return decoder.Batch{}, fmt.Errorf("stripe: field %q: %w", r.fieldNames[i], err)
		}
		arrays[i] = arr
	}

	r.rowsRead += chunk

	return decoder.NewBatch(r.schema, arrays), nil
}
