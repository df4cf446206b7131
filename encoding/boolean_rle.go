package encoding

import "io"

// BooleanRleEncoder encodes a sequence of booleans by packing them
// MSB-first into bytes and byte-RLE-encoding the resulting bytes.
type BooleanRleEncoder struct {
	be     *ByteRleEncoder
	cur    byte
	bitPos int
}

// NewBooleanRleEncoder creates a new boolean RLE encoder.
func NewBooleanRleEncoder() *BooleanRleEncoder {
	return &BooleanRleEncoder{be: NewByteRleEncoder()}
}

// Bytes returns the encoded byte slice produced so far.
func (e *BooleanRleEncoder) Bytes() []byte { return e.be.Bytes() }

// Size returns the number of bytes written to the internal buffer.
func (e *BooleanRleEncoder) Size() int { return e.be.Size() }

// Reset clears encoder state but keeps the accumulated output buffer.
func (e *BooleanRleEncoder) Reset() {
	e.cur = 0
	e.bitPos = 0
	e.be.Reset()
}

// Finish flushes any buffered bits and clears the bit state; the
// encoded output stays available through Bytes.
func (e *BooleanRleEncoder) Finish() {
	e.Flush()
	e.cur = 0
	e.bitPos = 0
	e.be.Finish()
}

// Write encodes a single boolean.
func (e *BooleanRleEncoder) Write(v bool) {
	if v {
		e.cur |= 0x80 >> uint(e.bitPos)
	}
	e.bitPos++
	if e.bitPos == 8 {
		e.be.Write(e.cur)
		e.cur = 0
		e.bitPos = 0
	}
}

// WriteSlice encodes a slice of booleans.
func (e *BooleanRleEncoder) WriteSlice(values []bool) {
	for _, v := range values {
		e.Write(v)
	}
}

// Flush pads any partial byte with zero bits and flushes the
// underlying byte RLE encoder.
func (e *BooleanRleEncoder) Flush() {
	if e.bitPos > 0 {
		e.be.Write(e.cur)
		e.cur = 0
		e.bitPos = 0
	}
	e.be.Flush()
}

// BooleanRleDecoder decodes a boolean RLE stream one value at a time.
type BooleanRleDecoder struct {
	br       *ByteRleDecoder
	cur      byte
	bitPos   int
	haveByte bool
}

// NewBooleanRleDecoder creates a decoder over r.
func NewBooleanRleDecoder(r io.ByteReader) *BooleanRleDecoder {
	return &BooleanRleDecoder{br: NewByteRleDecoder(r)}
}

// Next returns the next decoded boolean, or io.EOF when the underlying
// byte RLE stream is exhausted.
func (d *BooleanRleDecoder) Next() (bool, error) {
	if !d.haveByte || d.bitPos == 8 {
		b, err := d.br.Next()
		if err != nil {
			return false, err
		}
		d.cur = b
		d.bitPos = 0
		d.haveByte = true
	}

	bit := d.cur&(0x80>>uint(d.bitPos)) != 0
	d.bitPos++

	return bit, nil
}
