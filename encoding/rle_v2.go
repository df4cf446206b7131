package encoding

import (
	"fmt"
	"io"

	"github.com/orcstripe/orcstripe/errs"
	"github.com/orcstripe/orcstripe/internal/bitio"
)

// rleV2SubEncoding identifies one of ORC RLE v2's four sub-encodings,
// selected by the top two bits of the header byte.
type rleV2SubEncoding uint8

const (
	rleV2ShortRepeat rleV2SubEncoding = 0
	rleV2Direct      rleV2SubEncoding = 1
	rleV2PatchedBase rleV2SubEncoding = 2
	rleV2Delta       rleV2SubEncoding = 3

	rleV2MaxRunLength = 512
)

// IntRleV2Decoder decodes an ORC RLE v2 integer stream. When signed is
// true, Short Repeat/Direct/Delta values are zigzag-decoded (Patched
// Base always carries its own sign via a signed-MSB base value).
type IntRleV2Decoder struct {
	r      io.ByteReader
	signed bool

	values    [rleV2MaxRunLength]int64
	numValues int
	used      int
}

// NewIntRleV2Decoder creates a decoder over r.
func NewIntRleV2Decoder(r io.ByteReader, signed bool) *IntRleV2Decoder {
	return &IntRleV2Decoder{r: r, signed: signed}
}

// Next returns the next decoded value, or io.EOF when the stream is
// exhausted at a run boundary.
func (d *IntRleV2Decoder) Next() (int64, error) {
	if d.used == d.numValues {
		if err := d.readBatch(); err != nil {
			return 0, err
		}
	}

	v := d.values[d.used]
	d.used++

	return v, nil
}

func (d *IntRleV2Decoder) readBatch() error {
	header, err := d.r.ReadByte()
	if err != nil {
		if err == io.EOF {
			return io.EOF
		}

		return fmt.Errorf("encoding: read rle v2 header: %w", errs.ErrIo)
	}

	sub := rleV2SubEncoding(header >> 6)
	d.used = 0

	switch sub {
	case rleV2ShortRepeat:
		return d.readShortRepeat(header)
	case rleV2Direct:
		return d.readDirect(header)
	case rleV2PatchedBase:
		return d.readPatchedBase(header)
	default:
		return d.readDelta(header)
	}
}

func (d *IntRleV2Decoder) readShortRepeat(header byte) error {
	width := int((header>>3)&0x07) + 1
	count := int(header&0x07) + 3

	raw, err := bitio.ReadMSBBytes(d.r, width)
	if err != nil {
		return err
	}

	value := d.signedValue(raw)
	for i := 0; i < count; i++ {
		d.values[i] = value
	}
	d.numValues = count

	return nil
}

func (d *IntRleV2Decoder) readDirect(header byte) error {
	b1, err := d.r.ReadByte()
	if err != nil {
		return fmt.Errorf("encoding: read rle v2 direct length byte: %w", errs.ErrIo)
	}

	encodedWidth := int((header >> 1) & 0x1f)
	width := bitio.DecodeBitWidth(encodedWidth)
	length := (int(header&0x01)<<8 | int(b1)) + 1
	if length > rleV2MaxRunLength {
		return fmt.Errorf("encoding: rle v2 direct run length %d exceeds 512: %w", length, errs.ErrOutOfSpec)
	}

	br := bitio.NewBitReader(d.r)
	for i := 0; i < length; i++ {
		raw, err := br.ReadBits(width)
		if err != nil {
			return err
		}
		d.values[i] = d.signedValue(raw)
	}
	d.numValues = length

	return nil
}

func (d *IntRleV2Decoder) readPatchedBase(header byte) error {
	b1, err := d.r.ReadByte()
	if err != nil {
		return fmt.Errorf("encoding: read rle v2 patched base length byte: %w", errs.ErrIo)
	}
	b2, err := d.r.ReadByte()
	if err != nil {
		return fmt.Errorf("encoding: read rle v2 patched base width byte: %w", errs.ErrIo)
	}
	b3, err := d.r.ReadByte()
	if err != nil {
		return fmt.Errorf("encoding: read rle v2 patched base gap byte: %w", errs.ErrIo)
	}

	encodedWidth := int((header >> 1) & 0x1f)
	width := bitio.DecodeBitWidth(encodedWidth)
	length := (int(header&0x01)<<8 | int(b1)) + 1
	if length > rleV2MaxRunLength {
		return fmt.Errorf("encoding: rle v2 patched base run length %d exceeds 512: %w", length, errs.ErrOutOfSpec)
	}

	baseWidth := int((b2>>5)&0x07) + 1
	patchWidth := bitio.DecodeBitWidth(int(b2 & 0x1f))
	patchGapWidth := int((b3>>5)&0x07) + 1
	patchListLength := int(b3 & 0x1f)

	if patchWidth+patchGapWidth > 64 {
		return fmt.Errorf("encoding: rle v2 patch width + gap width exceeds 64: %w", errs.ErrOutOfSpec)
	}

	rawBase, err := bitio.ReadMSBBytes(d.r, baseWidth)
	if err != nil {
		return err
	}
	base := bitio.SignedMSBDecode(rawBase, baseWidth)

	br := bitio.NewBitReader(d.r)
	data := make([]uint64, length)
	for i := 0; i < length; i++ {
		v, err := br.ReadBits(width)
		if err != nil {
			return err
		}
		data[i] = v
	}
	br.Align()

	patchMask := uint64(1)<<uint(patchWidth) - 1
	idx := 0
	for i := 0; i < patchListLength; i++ {
		entry, err := br.ReadBits(patchWidth + patchGapWidth)
		if err != nil {
			return err
		}
		gap := entry >> uint(patchWidth)
		patch := entry & patchMask

		idx += int(gap)
		for gap == 255 && patch == 0 {
			i++
			if i >= patchListLength {
				break
			}
			entry, err = br.ReadBits(patchWidth + patchGapWidth)
			if err != nil {
				return err
			}
			gap = entry >> uint(patchWidth)
			patch = entry & patchMask
			idx += int(gap)
		}

		if idx >= length {
			return fmt.Errorf("encoding: rle v2 patch index %d out of range: %w", idx, errs.ErrOutOfSpec)
		}
		data[idx] |= patch << uint(width)
		idx++
	}

	for i := 0; i < length; i++ {
		d.values[i] = base + int64(data[i])
	}
	d.numValues = length

	return nil
}

func (d *IntRleV2Decoder) readDelta(header byte) error {
	b1, err := d.r.ReadByte()
	if err != nil {
		return fmt.Errorf("encoding: read rle v2 delta length byte: %w", errs.ErrIo)
	}

	encodedWidth := int((header >> 1) & 0x1f)
	var width int
	if encodedWidth != 0 {
		width = bitio.DecodeBitWidth(encodedWidth)
	}
	length := (int(header&0x01)<<8 | int(b1)) + 1
	if length > rleV2MaxRunLength {
		return fmt.Errorf("encoding: rle v2 delta run length %d exceeds 512: %w", length, errs.ErrOutOfSpec)
	}

	base, err := d.readBaseValue()
	if err != nil {
		return err
	}
	deltaBase, err := bitio.ReadVarintZigzagSigned(d.r)
	if err != nil {
		return err
	}

	d.values[0] = base
	if length == 1 {
		d.numValues = 1

		return nil
	}

	d.values[1] = base + deltaBase
	sign := int64(1)
	if deltaBase < 0 {
		sign = -1
	}

	if width == 0 {
		cur := d.values[1]
		for i := 2; i < length; i++ {
			cur += sign * abs64(deltaBase)
			d.values[i] = cur
		}
		d.numValues = length

		return nil
	}

	br := bitio.NewBitReader(d.r)
	cur := d.values[1]
	for i := 2; i < length; i++ {
		delta, err := br.ReadBits(width)
		if err != nil {
			return err
		}
		cur += sign * int64(delta)
		d.values[i] = cur
	}
	d.numValues = length

	return nil
}

func (d *IntRleV2Decoder) readBaseValue() (int64, error) {
	if d.signed {
		return bitio.ReadVarintZigzagSigned(d.r)
	}
	u, err := bitio.ReadVarint(d.r)
	if err != nil {
		return 0, err
	}

	return int64(u), nil
}

func (d *IntRleV2Decoder) signedValue(raw uint64) int64 {
	if d.signed {
		return bitio.ZigzagDecode(raw)
	}

	return int64(raw)
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}

	return v
}
