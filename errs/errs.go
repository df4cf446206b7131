// Package errs defines the sentinel errors returned by the orcstripe
// decoding and encoding paths. Callers should compare against these
// values with errors.Is; the concrete error returned from a call site
// typically wraps one of these with additional context via fmt.Errorf's
// %w verb.
package errs

import "errors"

var (
	// ErrIo indicates the underlying reader failed or returned fewer
	// bytes than requested.
	ErrIo = errors.New("orcstripe: io error")

	// ErrOutOfSpec indicates the byte stream violates the ORC format:
	// a bad header, a truncated run, over/underflow while reconstructing
	// delta or patched-base values, a run length exceeding 512, or a
	// patch width plus gap width exceeding 64 bits.
	ErrOutOfSpec = errors.New("orcstripe: value out of spec")

	// ErrVarintTooLarge indicates a varint would shift past the width
	// of the target integer type.
	ErrVarintTooLarge = errors.New("orcstripe: varint too large for target type")

	// ErrInvalidColumn indicates the stripe footer lacks a stream
	// required by a column's type and encoding.
	ErrInvalidColumn = errors.New("orcstripe: invalid column")

	// ErrInvalidColumnEncoding indicates a column's declared encoding
	// is incompatible with its logical type.
	ErrInvalidColumnEncoding = errors.New("orcstripe: invalid column encoding")

	// ErrMismatchedSchema indicates the requested output type disagrees
	// with the ORC logical type of a column.
	ErrMismatchedSchema = errors.New("orcstripe: mismatched schema")

	// ErrUnsupportedTypeVariant indicates a type variant the core does
	// not support, e.g. a sorted map.
	ErrUnsupportedTypeVariant = errors.New("orcstripe: unsupported type variant")

	// ErrDecodeTimestamp indicates a (seconds, nanoseconds) pair could
	// not be represented in the requested time unit without loss.
	ErrDecodeTimestamp = errors.New("orcstripe: cannot decode timestamp")

	// ErrDecodeFloat indicates a raw stream could not be interpreted as
	// an IEEE-754 float or double.
	ErrDecodeFloat = errors.New("orcstripe: cannot decode float")

	// ErrInvalidUtf8 indicates a string column's data stream contained
	// invalid UTF-8.
	ErrInvalidUtf8 = errors.New("orcstripe: invalid utf8")

	// ErrAddDays indicates a Date column's day offset overflowed when
	// added to the epoch.
	ErrAddDays = errors.New("orcstripe: day offset overflow")

	// ErrConvertRecordBatch indicates the assembled per-column arrays
	// could not be combined into a record batch (e.g. length mismatch).
	ErrConvertRecordBatch = errors.New("orcstripe: cannot convert record batch")

	// ErrDecodeProto indicates the file footer or postscript could not
	// be parsed. The core never parses protobuf itself; this sentinel
	// exists for callers that plug a footer parser in front of it.
	ErrDecodeProto = errors.New("orcstripe: cannot decode protobuf metadata")
)
