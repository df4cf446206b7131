package encoding

import (
	"fmt"
	"io"

	"github.com/orcstripe/orcstripe/errs"
	"github.com/orcstripe/orcstripe/internal/pool"
)

const (
	byteRleMaxLiteralLength = 128
	byteRleMinRepeatLength  = 3
	byteRleMaxRepeatLength  = 130
)

// ByteRleEncoder encodes a sequence of bytes using ORC's byte
// run-length encoding: runs of a single repeated byte (length 3..=130)
// or literal sequences of disparate bytes (length 1..=128).
//
// The state machine mirrors Apache ORC's RunLengthByteWriter: values
// are buffered assuming a literal sequence until three-in-a-row appear
// at the tail, at which point the run is split off.
type ByteRleEncoder struct {
	buf *pool.ByteBuffer

	literals      [byteRleMaxLiteralLength]byte
	numLiterals   int
	tailRunLength int
	runValue      int // -1 when not in run mode
}

// NewByteRleEncoder creates a new byte RLE encoder with a pooled output
// buffer.
func NewByteRleEncoder() *ByteRleEncoder {
	return &ByteRleEncoder{
		buf:      pool.GetBlobBuffer(),
		runValue: -1,
	}
}

// Bytes returns the encoded byte slice produced so far.
func (e *ByteRleEncoder) Bytes() []byte { return e.buf.Bytes() }

// Size returns the number of bytes written to the internal buffer.
func (e *ByteRleEncoder) Size() int { return e.buf.Len() }

// Reset clears encoder state but keeps the accumulated output buffer.
func (e *ByteRleEncoder) Reset() {
	e.clearState()
}

// Finish flushes any buffered values and clears the run state; the
// encoded output stays available through Bytes.
func (e *ByteRleEncoder) Finish() {
	e.Flush()
	e.clearState()
}

// Write encodes a single byte.
func (e *ByteRleEncoder) Write(value byte) {
	e.processValue(value)
}

// WriteSlice encodes a slice of bytes.
func (e *ByteRleEncoder) WriteSlice(values []byte) {
	for _, v := range values {
		e.processValue(v)
	}
}

// Flush writes any buffered values to the output buffer. It does not
// reset the output buffer itself, only the encoder's pending state.
func (e *ByteRleEncoder) Flush() {
	if e.numLiterals == 0 {
		return
	}
	if e.runValue >= 0 {
		e.writeRun(byte(e.runValue), e.numLiterals)
	} else {
		e.writeLiterals(e.literals[:e.numLiterals])
	}
	e.clearState()
}

func (e *ByteRleEncoder) processValue(value byte) {
	switch {
	case e.numLiterals == 0:
		e.runValue = -1
		e.literals[0] = value
		e.numLiterals = 1
		e.tailRunLength = 1

	case e.runValue >= 0:
		if int(value) == e.runValue {
			e.numLiterals++
			if e.numLiterals == byteRleMaxRepeatLength {
				e.writeRun(byte(e.runValue), byteRleMaxRepeatLength)
				e.clearState()
			}
		} else {
			e.writeRun(byte(e.runValue), e.numLiterals)
			e.runValue = -1
			e.literals[0] = value
			e.numLiterals = 1
			e.tailRunLength = 1
		}

	default:
		if value == e.literals[e.numLiterals-1] {
			e.tailRunLength++
		} else {
			e.tailRunLength = 1
		}

		if e.tailRunLength == byteRleMinRepeatLength {
			if e.numLiterals+1 == byteRleMinRepeatLength {
				e.runValue = int(value)
				e.numLiterals++
			} else {
				n := e.numLiterals - (byteRleMinRepeatLength - 1)
				e.writeLiterals(e.literals[:n])
				e.runValue = int(value)
				e.numLiterals = byteRleMinRepeatLength
			}
		} else {
			e.literals[e.numLiterals] = value
			e.numLiterals++
			if e.numLiterals == byteRleMaxLiteralLength {
				e.writeLiterals(e.literals[:byteRleMaxLiteralLength])
				e.clearState()
			}
		}
	}
}

func (e *ByteRleEncoder) clearState() {
	e.runValue = -1
	e.tailRunLength = 0
	e.numLiterals = 0
}

func (e *ByteRleEncoder) writeRun(value byte, runLength int) {
	header := byte(runLength - byteRleMinRepeatLength)
	e.buf.MustWrite([]byte{header, value})
}

func (e *ByteRleEncoder) writeLiterals(literals []byte) {
	header := byte(-int8(len(literals)))
	e.buf.MustWrite([]byte{header})
	e.buf.MustWrite(literals)
}

// ByteRleDecoder decodes a byte RLE stream one value at a time.
type ByteRleDecoder struct {
	r           io.ByteReader
	literals    [byteRleMaxLiteralLength]byte
	numLiterals int
	used        int
	repeat      bool
}

// NewByteRleDecoder creates a decoder over r.
func NewByteRleDecoder(r io.ByteReader) *ByteRleDecoder {
	return &ByteRleDecoder{r: r}
}

// Next returns the next decoded byte, or io.EOF when the underlying
// reader is exhausted at a run boundary.
func (d *ByteRleDecoder) Next() (byte, error) {
	if d.used == d.numLiterals {
		if err := d.readValues(); err != nil {
			return 0, err
		}
	}

	var result byte
	if d.repeat {
		result = d.literals[0]
	} else {
		result = d.literals[d.used]
	}
	d.used++

	return result, nil
}

func (d *ByteRleDecoder) readValues() error {
	control, err := d.r.ReadByte()
	if err != nil {
		if err == io.EOF {
			return io.EOF
		}

		return fmt.Errorf("encoding: read byte rle header: %w", errs.ErrIo)
	}

	d.used = 0
	if control < 0x80 {
		d.repeat = true
		d.numLiterals = int(control) + byteRleMinRepeatLength
		val, err := d.r.ReadByte()
		if err != nil {
			return fmt.Errorf("encoding: read byte rle run value: %w", errs.ErrIo)
		}
		d.literals[0] = val

		return nil
	}

	d.repeat = false
	d.numLiterals = 0x100 - int(control)
	for i := 0; i < d.numLiterals; i++ {
		v, err := d.r.ReadByte()
		if err != nil {
			return fmt.Errorf("encoding: read byte rle literal: %w", errs.ErrIo)
		}
		d.literals[i] = v
	}

	return nil
}
