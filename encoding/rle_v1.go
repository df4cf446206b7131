package encoding

import (
	"fmt"
	"io"

	"github.com/orcstripe/orcstripe/errs"
	"github.com/orcstripe/orcstripe/internal/bitio"
)

const (
	rleV1MaxLiteralLength = 128
	rleV1MinRepeatLength  = 3
	rleV1MaxRepeatLength  = 127 + rleV1MinRepeatLength
	rleV1MaxDelta         = 127
)

// IntRleV1Decoder decodes an ORC RLE v1 integer stream. When signed is
// true, literal and run base values are zigzag-decoded; when false,
// they are read as plain unsigned varints reinterpreted as int64.
type IntRleV1Decoder struct {
	r      io.ByteReader
	signed bool

	// Literal-mode scratch: values already decoded from the current
	// literal sequence but not yet consumed.
	literals    [rleV1MaxLiteralLength]int64
	numLiterals int
	used        int

	// Run-mode state.
	inRun        bool
	runValue     int64
	runDelta     int64
	runRemaining int
}

// NewIntRleV1Decoder creates a decoder over r.
func NewIntRleV1Decoder(r io.ByteReader, signed bool) *IntRleV1Decoder {
	return &IntRleV1Decoder{r: r, signed: signed}
}

// Next returns the next decoded value, or io.EOF when the stream is
// exhausted at a run boundary.
func (d *IntRleV1Decoder) Next() (int64, error) {
	if d.inRun {
		v := d.runValue
		d.runRemaining--
		if d.runRemaining == 0 {
			d.inRun = false
		} else {
			d.runValue += d.runDelta
		}

		return v, nil
	}

	if d.used == d.numLiterals {
		if err := d.readValues(); err != nil {
			return 0, err
		}
		if d.inRun {
			return d.Next()
		}
	}

	v := d.literals[d.used]
	d.used++

	return v, nil
}

func (d *IntRleV1Decoder) readValues() error {
	headerByte, err := d.r.ReadByte()
	if err != nil {
		if err == io.EOF {
			return io.EOF
		}

		return fmt.Errorf("encoding: read rle v1 header: %w", errs.ErrIo)
	}
	header := int8(headerByte)

	if header < 0 {
		count := int(-header)
		d.numLiterals = count
		d.used = 0
		for i := 0; i < count; i++ {
			v, err := d.readValue()
			if err != nil {
				return err
			}
			d.literals[i] = v
		}

		return nil
	}

	runLength := int(header) + rleV1MinRepeatLength
	deltaByte, err := d.r.ReadByte()
	if err != nil {
		return fmt.Errorf("encoding: read rle v1 delta: %w", errs.ErrIo)
	}
	delta := int64(int8(deltaByte))

	base, err := d.readValue()
	if err != nil {
		return err
	}

	d.inRun = true
	d.runValue = base
	d.runDelta = delta
	d.runRemaining = runLength

	return nil
}

func (d *IntRleV1Decoder) readValue() (int64, error) {
	if d.signed {
		return bitio.ReadVarintZigzagSigned(d.r)
	}
	u, err := bitio.ReadVarint(d.r)
	if err != nil {
		return 0, err
	}

	return int64(u), nil
}

// IntRleV1Encoder is the symmetric encoder for IntRleV1Decoder. It
// implements the simple greedy policy from the ORC v1 writer: buffer a
// run while consecutive deltas stay constant and within an int8, else
// fall back to a literal sequence.
type IntRleV1Encoder struct {
	w      io.Writer
	signed bool

	literals    [rleV1MaxLiteralLength]int64
	numLiterals int
}

// NewIntRleV1Encoder creates an encoder writing to w.
func NewIntRleV1Encoder(w io.Writer, signed bool) *IntRleV1Encoder {
	return &IntRleV1Encoder{w: w, signed: signed}
}

// Write buffers a single value, flushing once 128 values are buffered;
// the run-or-literal choice is made in Flush.
func (e *IntRleV1Encoder) Write(v int64) error {
	e.literals[e.numLiterals] = v
	e.numLiterals++
	if e.numLiterals == rleV1MaxLiteralLength {
		return e.Flush()
	}

	return nil
}

// WriteSlice writes a slice of values.
func (e *IntRleV1Encoder) WriteSlice(values []int64) error {
	for _, v := range values {
		if err := e.Write(v); err != nil {
			return err
		}
	}

	return nil
}

// Flush encodes and emits all buffered values, preferring a run
// encoding when the entire buffered sequence is a fixed-delta
// arithmetic progression within int8 step bounds, otherwise a literal
// sequence.
func (e *IntRleV1Encoder) Flush() error {
	if e.numLiterals == 0 {
		return nil
	}

	if run, delta, ok := e.detectRun(); ok && e.numLiterals >= rleV1MinRepeatLength {
		header := byte(e.numLiterals - rleV1MinRepeatLength)
		if _, err := e.w.Write([]byte{header, byte(int8(delta))}); err != nil {
			return fmt.Errorf("encoding: write rle v1 run header: %w", errs.ErrIo)
		}
		if err := e.writeValue(run); err != nil {
			return err
		}
		e.numLiterals = 0

		return nil
	}

	header := byte(-int8(e.numLiterals))
	if _, err := e.w.Write([]byte{header}); err != nil {
		return fmt.Errorf("encoding: write rle v1 literal header: %w", errs.ErrIo)
	}
	for i := 0; i < e.numLiterals; i++ {
		if err := e.writeValue(e.literals[i]); err != nil {
			return err
		}
	}
	e.numLiterals = 0

	return nil
}

func (e *IntRleV1Encoder) detectRun() (base int64, delta int64, ok bool) {
	if e.numLiterals < 2 {
		return 0, 0, false
	}
	d := e.literals[1] - e.literals[0]
	if d > rleV1MaxDelta || d < -rleV1MaxDelta-1 {
		return 0, 0, false
	}
	for i := 2; i < e.numLiterals; i++ {
		if e.literals[i]-e.literals[i-1] != d {
			return 0, 0, false
		}
	}

	return e.literals[0], d, true
}

func (e *IntRleV1Encoder) writeValue(v int64) error {
	if e.signed {
		return bitio.WriteVarintZigzagSigned(e.w, v)
	}

	return bitio.WriteVarint(e.w, uint64(v))
}
