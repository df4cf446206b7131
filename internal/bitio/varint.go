// Package bitio implements ORC's bit-level primitives: base-128 varint
// encoding, the zigzag and signed-MSB integer transforms, and
// arbitrary-width (1..=64) bitpacking with ORC's aligned-width table.
//
// Every decoder in this package reads from an io.ByteReader and every
// encoder writes to an io.ByteWriter (actually a plain io.Writer plus a
// one-byte scratch, since io.ByteWriter is rarely implemented by the
// buffers callers pass in). WriteMSBBytes and the big.Int varint
// functions allocate on every call.
package bitio

import (
	"fmt"
	"io"
	"math/big"

	"github.com/orcstripe/orcstripe/errs"
)

// maxVarintBytes is the largest number of base-128 groups a 64-bit
// varint can occupy (ceil(64/7) = 10).
const maxVarintBytes = 10

// ReadVarint reads a base-128 unsigned varint (7 data bits per byte,
// high bit = continuation) from r.
func ReadVarint(r io.ByteReader) (uint64, error) {
	var result uint64
	var shift uint
	for i := 0; i < maxVarintBytes; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return 0, fmt.Errorf("bitio: read varint byte: %w", errs.ErrIo)
		}

		if shift == 63 && b > 1 {
			return 0, fmt.Errorf("bitio: varint overflow: %w", errs.ErrVarintTooLarge)
		}

		result |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, nil
		}
		shift += 7
	}

	return 0, fmt.Errorf("bitio: varint too long: %w", errs.ErrVarintTooLarge)
}

// WriteVarint writes v as a base-128 unsigned varint to w.
func WriteVarint(w io.Writer, v uint64) error {
	var buf [maxVarintBytes]byte
	n := 0
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		buf[n] = b
		n++
		if v == 0 {
			break
		}
	}

	_, err := w.Write(buf[:n])
	if err != nil {
		return fmt.Errorf("bitio: write varint: %w", errs.ErrIo)
	}

	return nil
}

// ZigzagEncode maps a signed 64-bit integer to an unsigned one by
// interleaving the sign bit with the magnitude, so that small-magnitude
// values (positive or negative) stay small.
func ZigzagEncode(v int64) uint64 {
	return uint64(v<<1) ^ uint64(v>>63)
}

// ZigzagDecode is the inverse of ZigzagEncode.
func ZigzagDecode(v uint64) int64 {
	return int64(v>>1) ^ -int64(v&1)
}

// ReadVarintZigzagSigned reads a zigzag-encoded signed varint.
func ReadVarintZigzagSigned(r io.ByteReader) (int64, error) {
	u, err := ReadVarint(r)
	if err != nil {
		return 0, err
	}

	return ZigzagDecode(u), nil
}

// WriteVarintZigzagSigned writes v as a zigzag-encoded signed varint.
func WriteVarintZigzagSigned(w io.Writer, v int64) error {
	return WriteVarint(w, ZigzagEncode(v))
}

// maxBigVarintBytes bounds a single ORC decimal value (up to 38
// decimal digits, i.e. well under 128 bits) against a corrupt stream
// that never terminates its continuation bit.
const maxBigVarintBytes = 32

// ReadVarintBig reads a base-128 unsigned varint of unbounded width
// (ORC's decimal Data stream stores i128 magnitudes this way) into a
// big.Int.
func ReadVarintBig(r io.ByteReader) (*big.Int, error) {
	result := new(big.Int)
	shift := 0
	for i := 0; i < maxBigVarintBytes; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("bitio: read big varint byte: %w", errs.ErrIo)
		}

		chunk := new(big.Int).Lsh(big.NewInt(int64(b&0x7f)), uint(shift))
		result.Or(result, chunk)

		if b&0x80 == 0 {
			return result, nil
		}
		shift += 7
	}

	return nil, fmt.Errorf("bitio: big varint too long: %w", errs.ErrVarintTooLarge)
}

// WriteVarintBig writes v as a base-128 unsigned varint of unbounded
// width.
func WriteVarintBig(w io.Writer, v *big.Int) error {
	n := new(big.Int).Set(v)
	mask := big.NewInt(0x7f)
	var buf []byte
	for {
		chunk := new(big.Int).And(n, mask)
		n.Rsh(n, 7)
		b := byte(chunk.Uint64())
		if n.Sign() != 0 {
			b |= 0x80
		}
		buf = append(buf, b)
		if n.Sign() == 0 {
			break
		}
	}

	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("bitio: write big varint: %w", errs.ErrIo)
	}

	return nil
}

// ZigzagEncodeBig is ZigzagEncode generalized to big.Int.
func ZigzagEncodeBig(v *big.Int) *big.Int {
	shifted := new(big.Int).Lsh(v, 1)
	if v.Sign() < 0 {
		// (v << 1) for a negative v in two's-complement infinite
		// precision equals -(2*|v|); XOR with all-ones (-1) flips it
		// to 2*|v|-1, matching the fixed-width zigzag identity
		// (v << 1) ^ (v >> 63) with the sign-extended all-ones mask.
		shifted.Not(shifted)
	}

	return shifted
}

// ZigzagDecodeBig is ZigzagDecode generalized to big.Int.
func ZigzagDecodeBig(v *big.Int) *big.Int {
	half := new(big.Int).Rsh(v, 1)
	if v.Bit(0) == 1 {
		half.Add(half, big.NewInt(1))
		half.Neg(half)
	}

	return half
}

// ReadVarintZigzagBig reads a zigzag-encoded signed varint of
// unbounded width.
func ReadVarintZigzagBig(r io.ByteReader) (*big.Int, error) {
	u, err := ReadVarintBig(r)
	if err != nil {
		return nil, err
	}

	return ZigzagDecodeBig(u), nil
}

// WriteVarintZigzagBig writes v as a zigzag-encoded signed varint of
// unbounded width.
func WriteVarintZigzagBig(w io.Writer, v *big.Int) error {
	return WriteVarintBig(w, ZigzagEncodeBig(v))
}

// SignedMSBDecode interprets the low byteWidth*8 bits of v (big-endian,
// as produced by ReadMSBBytes) as a signed magnitude with the sign
// carried in the most-significant bit of the first byte: used by RLE v2
// Patched Base's base value.
func SignedMSBDecode(v uint64, byteWidth int) int64 {
	bits := uint(byteWidth * 8)
	signMask := uint64(1) << (bits - 1)
	magnitude := int64(v &^ signMask)
	if v&signMask != 0 {
		return -magnitude
	}

	return magnitude
}

// SignedMSBEncode produces the byteWidth-byte big-endian magnitude
// representation of v with the sign bit set in the top bit of the first
// byte, the inverse of SignedMSBDecode.
func SignedMSBEncode(v int64, byteWidth int) uint64 {
	bits := uint(byteWidth * 8)
	signMask := uint64(1) << (bits - 1)
	if v < 0 {
		return uint64(-v) | signMask
	}

	return uint64(v)
}

// ReadMSBBytes reads byteWidth big-endian bytes from r and returns them
// as a right-aligned uint64.
func ReadMSBBytes(r io.ByteReader, byteWidth int) (uint64, error) {
	var v uint64
	for i := 0; i < byteWidth; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return 0, fmt.Errorf("bitio: read msb byte: %w", errs.ErrIo)
		}
		v = (v << 8) | uint64(b)
	}

	return v, nil
}

// WriteMSBBytes writes the low byteWidth bytes of v to w, big-endian.
func WriteMSBBytes(w io.Writer, v uint64, byteWidth int) error {
	buf := make([]byte, byteWidth)
	for i := byteWidth - 1; i >= 0; i-- {
		buf[i] = byte(v)
		v >>= 8
	}

	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("bitio: write msb bytes: %w", errs.ErrIo)
	}

	return nil
}

// CalculatePercentileBits returns the smallest decoded bit width that
// can hold at least the given percentile (0..1] fraction of values when
// each value is bucketed by its RLE v2 fixed-bits width (EncodeBitWidth
// of its minimal bit count). Used by
// the RLE v2 encoder to choose between Patched Base and Direct.
func CalculatePercentileBits(values []uint64, percentile float64) int {
	if len(values) == 0 {
		return 0
	}

	var histogram [32]int
	for _, v := range values {
		idx := EncodeBitWidth(bitsNeeded(v))
		histogram[idx]++
	}

	threshold := int(float64(len(values)) * (1.0 - percentile))
	var count int
	for i := 31; i >= 0; i-- {
		count += histogram[i]
		if count > threshold {
			return DecodeBitWidth(i)
		}
	}

	return 64
}

// bitsNeeded returns the minimal number of bits needed to represent v,
// with 0 requiring 1 bit (matching ORC's "zero still needs one bit").
func bitsNeeded(v uint64) int {
	n := 0
	for v != 0 {
		n++
		v >>= 1
	}
	if n == 0 {
		n = 1
	}

	return n
}
