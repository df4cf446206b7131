package decoder

import (
	"io"

	"github.com/orcstripe/orcstripe/encoding"
)

// PresentReader wraps the optional boolean-RLE Present stream a
// column decoder owns across its whole lifetime (constructed once at
// stripe start, consumed batch by batch). A nil PresentReader means
// the column declares no Present stream of its own.
type PresentReader struct {
	dec *encoding.BooleanRleDecoder
}

// NewPresentReader wraps r, or returns nil if r is nil (column has no
// Present stream).
func NewPresentReader(r io.ByteReader) *PresentReader {
	if r == nil {
		return nil
	}

	return &PresentReader{dec: encoding.NewBooleanRleDecoder(r)}
}

// derivePresent computes the effective present vector for a batch of
// up to n logical values, per spec section 4.8's null-derivation
// table:
//
//   - parent absent, own absent -> nil (fully valid)
//   - parent absent, own present -> n bits read fresh from own
//   - parent present, own absent -> parentPresent, unchanged
//   - both present                -> walk parentPresent; for every
//     true slot consume one bit from own; every false slot stays false
//
// own may be nil. When parentPresent is non-nil the returned vector
// has the same length as parentPresent; otherwise it has length n (or
// is nil).
func derivePresent(own *PresentReader, n int, parentPresent []bool) ([]bool, error) {
	if own == nil {
		return parentPresent, nil
	}

	if parentPresent == nil {
		out := make([]bool, n)
		for i := 0; i < n; i++ {
			v, err := own.dec.Next()
			if err != nil {
				return nil, err
			}
			out[i] = v
		}

		return out, nil
	}

	out := make([]bool, len(parentPresent))
	for i, p := range parentPresent {
		if !p {
			continue
		}

		v, err := own.dec.Next()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}

	return out, nil
}

// countValid returns the number of true slots in present, or n if
// present is nil (fully valid), i.e. the number of values a decoder
// must actually consume from its Data stream(s) for this batch.
func countValid(present []bool, n int) int {
	if present == nil {
		return n
	}

	count := 0
	for _, v := range present {
		if v {
			count++
		}
	}

	return count
}
