package decoder

import (
	"fmt"

	"github.com/orcstripe/orcstripe/errs"
	"github.com/orcstripe/orcstripe/schema"
)

// ColumnDecoder is the uniform interface every ORC logical type's
// decoder implements: pull up to n logical values, honoring the
// parent's nullability mask per spec section 4.8.
//
// parentPresent is nil when there is no parent or the parent imposes
// no null mask (it has no Present stream of its own and received none);
// otherwise its length equals n and a false
// slot means this decoder must still materialize a slot but consumes
// nothing from its own streams for that position.
type ColumnDecoder interface {
	NextBatch(n int, parentPresent []bool) (Array, error)
}

// int64Source is satisfied by every signed-integer RLE decoder
// (*encoding.IntRleV1Decoder, *encoding.IntRleV2Decoder); it lets the
// primitive integer decoders stay agnostic to which RLE version a
// column's encoding selected.
type int64Source interface {
	Next() (int64, error)
}

// checkMismatch reports ErrMismatchedSchema if col's declared ORC kind
// isn't one of want, formatted with the column's field path for
// diagnostics. Every decoder constructor calls this before building
// its stream readers, per spec section 4.8's "validate declared type
// against requested output type" rule.
func checkMismatch(col schema.Column, want ...schema.Kind) error {
	for _, k := range want {
		if col.Type.Kind == k {
			return nil
		}
	}

	return fmt.Errorf("decoder: column %q has ORC kind %s, decoder expects %v: %w",
		col.Path, col.Type.Kind, want, errs.ErrMismatchedSchema)
}

// wrapShortRead reports ErrOutOfSpec when an inner stream produced
// fewer values than the batch required, matching spec section 4.8's
// "array less than expected length" corruption case. err is the
// underlying read error (often io.EOF), wrapped for context.
func wrapShortRead(column int, kind string, want, got int, err error) error {
	if err != nil {
		return fmt.Errorf("decoder: column %d %s stream exhausted after %d/%d values: %w", column, kind, got, want, err)
	}

	return fmt.Errorf("decoder: column %d %s stream produced %d values, wanted %d: %w", column, kind, got, want, errs.ErrOutOfSpec)
}

// batchLength returns the array length a decoder must materialize for
// this call: len(parentPresent) if the parent supplied a mask,
// otherwise n.
func batchLength(parentPresent []bool, n int) int {
	if parentPresent != nil {
		return len(parentPresent)
	}

	return n
}
