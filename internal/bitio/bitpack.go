package bitio

import (
	"fmt"
	"io"

	"github.com/orcstripe/orcstripe/errs"
)

// alignedWidths is ORC's quantised set of bitpacking widths.
var alignedWidths = [...]int{1, 2, 4, 8, 16, 24, 32, 40, 48, 56, 64}

// GetClosestAlignedBitWidth quantises an arbitrary bit count up to the
// nearest member of ORC's aligned-width table
// {1,2,4,8,16,24,32,40,48,56,64}.
func GetClosestAlignedBitWidth(n int) int {
	for _, w := range alignedWidths {
		if n <= w {
			return w
		}
	}

	return 64
}

// GetClosestFixedBits quantises n up to the width used by RLE v2's 5-bit
// header field, prior to encoding via EncodeBitWidth. It differs from
// GetClosestAlignedBitWidth up to 32 bits: every width up to 24 is its
// own bucket, and 25..30 round to 26, 28 or 30 rather than 32.
func GetClosestFixedBits(n int) int {
	switch {
	case n == 0:
		return 1
	case n >= 1 && n <= 24:
		return n
	case n <= 26:
		return 26
	case n <= 28:
		return 28
	case n <= 30:
		return 30
	case n <= 32:
		return 32
	case n <= 40:
		return 40
	case n <= 48:
		return 48
	case n <= 56:
		return 56
	default:
		return 64
	}
}

// EncodeBitWidth maps a bit width (quantised via GetClosestFixedBits) to
// RLE v2's 5-bit header code.
func EncodeBitWidth(n int) int {
	n = GetClosestFixedBits(n)
	switch {
	case n >= 1 && n <= 24:
		return n - 1
	case n <= 26:
		return 24
	case n <= 28:
		return 25
	case n <= 30:
		return 26
	case n <= 32:
		return 27
	case n <= 40:
		return 28
	case n <= 48:
		return 29
	case n <= 56:
		return 30
	default:
		return 31
	}
}

// DecodeBitWidth maps RLE v2's 5-bit header code back to a bit width.
func DecodeBitWidth(n int) int {
	switch {
	case n >= 0 && n <= 23:
		return n + 1
	case n == 24:
		return 26
	case n == 25:
		return 28
	case n == 26:
		return 30
	case n == 27:
		return 32
	case n == 28:
		return 40
	case n == 29:
		return 48
	case n == 30:
		return 56
	default:
		return 64
	}
}

// BitReader reads big-endian, MSB-first bitpacked fields of arbitrary
// width from an underlying byte reader. The accumulator idiom (buf
// holds up to 64 pending bits, count tracks how many are valid) mirrors
// the bit-cursor pattern used by the teacher's Gorilla bit reader, with
// the direction flipped to match ORC's MSB-first convention.
type BitReader struct {
	r     io.ByteReader
	buf   uint64
	count uint // number of valid bits currently sitting at the top of buf's used range
}

// NewBitReader creates a BitReader over r.
func NewBitReader(r io.ByteReader) *BitReader {
	return &BitReader{r: r}
}

// ReadBits reads width (1..=64) bits and returns them right-aligned in
// the returned uint64.
func (br *BitReader) ReadBits(width int) (uint64, error) {
	if width == 0 {
		return 0, nil
	}

	for br.count < uint(width) {
		b, err := br.r.ReadByte()
		if err != nil {
			return 0, fmt.Errorf("bitio: read bitpacked byte: %w", errs.ErrIo)
		}
		br.buf = (br.buf << 8) | uint64(b)
		br.count += 8
	}

	shift := br.count - uint(width)
	var mask uint64
	if width == 64 {
		mask = ^uint64(0)
	} else {
		mask = (uint64(1) << uint(width)) - 1
	}
	result := (br.buf >> shift) & mask
	br.count -= uint(width)
	// Drop consumed bits from the tracked window; buf retains garbage
	// above the remaining count but that is masked off on next read.
	if br.count > 0 {
		br.buf &= (uint64(1) << br.count) - 1
	} else {
		br.buf = 0
	}

	return result, nil
}

// Align discards any partially consumed byte, resuming reads at the
// next byte boundary.
func (br *BitReader) Align() {
	br.count = 0
	br.buf = 0
}

// BitWriter is the symmetric encoder for BitReader.
type BitWriter struct {
	w     io.Writer
	buf   uint64
	count uint
}

// NewBitWriter creates a BitWriter over w.
func NewBitWriter(w io.Writer) *BitWriter {
	return &BitWriter{w: w}
}

// WriteBits writes the low width bits of v, MSB-first.
func (bw *BitWriter) WriteBits(v uint64, width int) error {
	if width == 0 {
		return nil
	}

	if width < 64 {
		v &= (uint64(1) << uint(width)) - 1
	}
	bw.buf = (bw.buf << uint(width)) | v
	bw.count += uint(width)

	for bw.count >= 8 {
		shift := bw.count - 8
		b := byte(bw.buf >> shift)
		if _, err := bw.w.Write([]byte{b}); err != nil {
			return fmt.Errorf("bitio: write bitpacked byte: %w", errs.ErrIo)
		}
		bw.count -= 8
	}
	if bw.count > 0 {
		bw.buf &= (uint64(1) << bw.count) - 1
	} else {
		bw.buf = 0
	}

	return nil
}

// Flush pads any partially written byte with zero bits and emits it.
func (bw *BitWriter) Flush() error {
	if bw.count == 0 {
		return nil
	}
	pad := 8 - bw.count
	return bw.WriteBits(0, int(pad))
}

// ReadInts reads count values bitpacked at the given width (1..=64),
// MSB-first, into out.
func ReadInts(out []uint64, count int, width int, r io.ByteReader) error {
	br := NewBitReader(r)
	for i := 0; i < count; i++ {
		v, err := br.ReadBits(width)
		if err != nil {
			return err
		}
		out[i] = v
	}

	return nil
}

// WritePackedInts writes values bitpacked at the given width, MSB-first.
func WritePackedInts(w io.Writer, values []uint64, width int) error {
	bw := NewBitWriter(w)
	for _, v := range values {
		if err := bw.WriteBits(v, width); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// WriteAlignedPackedInts quantises width to the nearest aligned width
// before delegating to WritePackedInts; used by callers that must keep
// output byte-aligned (e.g. Patched Base's base-reduced value stream).
func WriteAlignedPackedInts(w io.Writer, values []uint64, width int) error {
	return WritePackedInts(w, values, GetClosestAlignedBitWidth(width))
}
