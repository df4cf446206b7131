package encoding

import (
	"fmt"
	"io"

	"github.com/orcstripe/orcstripe/errs"
	"github.com/orcstripe/orcstripe/internal/bitio"
)

// rleV2EncoderState tracks the encoder's progress through the ORC RLE
// v2 writer state machine.
type rleV2EncoderState int

const (
	rleV2StateEmpty rleV2EncoderState = iota
	rleV2StateOne
	rleV2StateFixedRun
	rleV2StateVariableRun
)

// IntRleV2Encoder implements ORC RLE v2's encoder state machine: it
// buffers incoming values and, on each transition, decides whether the
// buffered run is better expressed as Short Repeat, Direct, Patched
// Base, or Delta.
type IntRleV2Encoder struct {
	w      io.Writer
	signed bool

	state rleV2EncoderState

	// One/FixedRun state.
	oneValue int64
	runCount int

	// VariableRun buffer.
	varBuf []int64

	err error
}

// NewIntRleV2Encoder creates an encoder writing to w.
func NewIntRleV2Encoder(w io.Writer, signed bool) *IntRleV2Encoder {
	return &IntRleV2Encoder{
		w:      w,
		signed: signed,
		varBuf: make([]int64, 0, rleV2MaxRunLength),
	}
}

// Write buffers a single value, possibly flushing a previously buffered
// run when the value breaks it.
func (e *IntRleV2Encoder) Write(v int64) error {
	if e.err != nil {
		return e.err
	}
	e.err = e.processValue(v)

	return e.err
}

// WriteSlice writes a slice of values.
func (e *IntRleV2Encoder) WriteSlice(values []int64) error {
	for _, v := range values {
		if err := e.Write(v); err != nil {
			return err
		}
	}

	return nil
}

func (e *IntRleV2Encoder) processValue(v int64) error {
	switch e.state {
	case rleV2StateEmpty:
		e.oneValue = v
		e.state = rleV2StateOne

	case rleV2StateOne:
		if v == e.oneValue {
			e.runCount = 2
			e.state = rleV2StateFixedRun
		} else {
			e.varBuf = append(e.varBuf[:0], e.oneValue, v)
			e.state = rleV2StateVariableRun
		}

	case rleV2StateFixedRun:
		if v == e.oneValue {
			e.runCount++
			if e.runCount == rleV2MaxRunLength {
				if err := e.flushFixedDelta(e.oneValue, e.runCount); err != nil {
					return err
				}
				e.resetEmpty()
			}
		} else {
			if err := e.flushBrokenFixedRun(); err != nil {
				return err
			}
			e.varBuf = append(e.varBuf[:0], e.oneValue, v)
			e.state = rleV2StateVariableRun
		}

	default: // rleV2StateVariableRun
		n := len(e.varBuf)
		if n >= 2 && e.varBuf[n-1] == v && e.varBuf[n-2] == v {
			tail := e.varBuf[:n-2]
			if err := e.flushVariableRun(tail); err != nil {
				return err
			}
			e.oneValue = v
			e.runCount = 3
			e.state = rleV2StateFixedRun
		} else {
			e.varBuf = append(e.varBuf, v)
			if len(e.varBuf) == rleV2MaxRunLength {
				if err := e.flushVariableRun(e.varBuf); err != nil {
					return err
				}
				e.resetEmpty()
			}
		}
	}

	return nil
}

// Flush emits any buffered values; call once at the end of the column's
// values for this stripe.
func (e *IntRleV2Encoder) Flush() error {
	if e.err != nil {
		return e.err
	}

	switch e.state {
	case rleV2StateEmpty:
		return nil
	case rleV2StateOne:
		e.err = e.flushDirect([]int64{e.oneValue})
	case rleV2StateFixedRun:
		e.err = e.flushBrokenFixedRun()
	case rleV2StateVariableRun:
		e.err = e.flushVariableRun(e.varBuf)
	}
	e.resetEmpty()

	return e.err
}

func (e *IntRleV2Encoder) resetEmpty() {
	e.state = rleV2StateEmpty
	e.runCount = 0
	e.varBuf = e.varBuf[:0]
}

func (e *IntRleV2Encoder) flushBrokenFixedRun() error {
	switch {
	case e.runCount >= 3 && e.runCount <= 10:
		return e.flushShortRepeat(e.oneValue, e.runCount)
	case e.runCount == 2:
		return e.flushDirect([]int64{e.oneValue, e.oneValue})
	default:
		return e.flushFixedDelta(e.oneValue, e.runCount)
	}
}

func (e *IntRleV2Encoder) flushVariableRun(values []int64) error {
	if len(values) == 0 {
		return nil
	}

	switch classifyVariableRun(values) {
	case rleV2Direct:
		return e.flushDirect(values)
	case rleV2Delta:
		return e.flushVaryingOrFixedDelta(values)
	case rleV2PatchedBase:
		return e.flushPatchedBase(values)
	default:
		return e.flushDirect(values)
	}
}

func (e *IntRleV2Encoder) toRaw(v int64) uint64 {
	if e.signed {
		return bitio.ZigzagEncode(v)
	}

	return uint64(v)
}

func (e *IntRleV2Encoder) writeBaseValue(v int64) error {
	if e.signed {
		return bitio.WriteVarintZigzagSigned(e.w, v)
	}

	return bitio.WriteVarint(e.w, uint64(v))
}

func (e *IntRleV2Encoder) flushShortRepeat(value int64, count int) error {
	raw := e.toRaw(value)
	width := bytesNeeded(raw)
	header := byte(rleV2ShortRepeat)<<6 | byte(width-1)<<3 | byte(count-3)
	if err := writeBytes(e.w, header); err != nil {
		return err
	}

	return bitio.WriteMSBBytes(e.w, raw, width)
}

func (e *IntRleV2Encoder) flushDirect(values []int64) error {
	raws := make([]uint64, len(values))
	var maxBits int
	for i, v := range values {
		raws[i] = e.toRaw(v)
		if b := bitsNeededExported(raws[i]); b > maxBits {
			maxBits = b
		}
	}

	encodedWidth := bitio.EncodeBitWidth(maxBits)
	width := bitio.DecodeBitWidth(encodedWidth)
	length := len(values)
	if length > rleV2MaxRunLength {
		return fmt.Errorf("encoding: rle v2 direct run length %d exceeds 512: %w", length, errs.ErrOutOfSpec)
	}

	lengthField := length - 1
	b0 := byte(rleV2Direct)<<6 | byte(encodedWidth)<<1 | byte((lengthField>>8)&0x01)
	b1 := byte(lengthField & 0xff)
	if err := writeBytes(e.w, b0, b1); err != nil {
		return err
	}

	return bitio.WritePackedInts(e.w, raws, width)
}

func (e *IntRleV2Encoder) flushFixedDelta(value int64, count int) error {
	return e.writeDeltaHeaderAndBase(0, count, value, 0, nil)
}

func (e *IntRleV2Encoder) flushVaryingOrFixedDelta(values []int64) error {
	deltas := make([]int64, len(values)-1)
	for i := 1; i < len(values); i++ {
		deltas[i-1] = values[i] - values[i-1]
	}

	allEqual := true
	for _, d := range deltas {
		if d != deltas[0] {
			allEqual = false

			break
		}
	}
	if allEqual {
		return e.writeDeltaHeaderAndBase(0, len(values), values[0], deltas[0], nil)
	}

	deltaBase := deltas[0]
	sign := int64(1)
	if deltaBase < 0 {
		sign = -1
	}

	magnitudes := make([]uint64, len(deltas)-1)
	var maxBits int
	for i := 1; i < len(deltas); i++ {
		mag := sign * deltas[i]
		if mag < 0 {
			mag = -mag
		}
		magnitudes[i-1] = uint64(mag)
		if b := bitsNeededExported(magnitudes[i-1]); b > maxBits {
			maxBits = b
		}
	}

	width := bitio.GetClosestAlignedBitWidth(maxBits)

	return e.writeDeltaHeaderAndBase(width, len(values), values[0], deltaBase, magnitudes)
}

func (e *IntRleV2Encoder) writeDeltaHeaderAndBase(width int, length int, base int64, deltaBase int64, magnitudes []uint64) error {
	if length > rleV2MaxRunLength {
		return fmt.Errorf("encoding: rle v2 delta run length %d exceeds 512: %w", length, errs.ErrOutOfSpec)
	}

	var encodedWidth int
	if width != 0 {
		encodedWidth = bitio.EncodeBitWidth(width)
	}

	lengthField := length - 1
	b0 := byte(rleV2Delta)<<6 | byte(encodedWidth)<<1 | byte((lengthField>>8)&0x01)
	b1 := byte(lengthField & 0xff)
	if err := writeBytes(e.w, b0, b1); err != nil {
		return err
	}
	if err := e.writeBaseValue(base); err != nil {
		return err
	}
	if err := bitio.WriteVarintZigzagSigned(e.w, deltaBase); err != nil {
		return err
	}
	if width == 0 || len(magnitudes) == 0 {
		return nil
	}

	return bitio.WritePackedInts(e.w, magnitudes, width)
}

func (e *IntRleV2Encoder) flushPatchedBase(values []int64) error {
	minV := values[0]
	for _, v := range values {
		if v < minV {
			minV = v
		}
	}

	baseReduced := make([]uint64, len(values))
	for i, v := range values {
		baseReduced[i] = uint64(v - minV)
	}

	mainWidthBits := bitio.CalculatePercentileBits(baseReduced, 0.9)
	mainWidth := bitio.GetClosestAlignedBitWidth(mainWidthBits)

	type patchEntry struct {
		idx   int
		patch uint64
	}

	mask := uint64(1)<<uint(mainWidth) - 1
	var patches []patchEntry
	data := make([]uint64, len(baseReduced))
	var maxPatch uint64
	for i, v := range baseReduced {
		data[i] = v & mask
		high := v >> uint(mainWidth)
		if high != 0 {
			patches = append(patches, patchEntry{idx: i, patch: high})
			if high > maxPatch {
				maxPatch = high
			}
		}
	}

	if len(patches) == 0 || len(patches) > 31 {
		return e.flushDirect(values)
	}

	patchWidthBits := bitsNeededExported(maxPatch)
	patchWidth := bitio.GetClosestAlignedBitWidth(patchWidthBits)

	var maxGap int
	prevIdx := -1
	for _, p := range patches {
		gap := p.idx - prevIdx - 1
		if gap > maxGap {
			maxGap = gap
		}
		prevIdx = p.idx
	}
	if maxGap > 254 {
		// A gap this wide would need a chained sentinel patch entry
		// (gap==255, patch==0) to skip ahead; simpler to fall back to
		// Direct than encode one.
		return e.flushDirect(values)
	}
	gapWidthBits := bitsNeededExported(uint64(maxGap))
	if gapWidthBits == 0 {
		gapWidthBits = 1
	}

	if patchWidth+gapWidthBits > 64 {
		return e.flushDirect(values)
	}

	baseMagnitude := minV
	absMagnitude := baseMagnitude
	if absMagnitude < 0 {
		absMagnitude = -absMagnitude
	}
	magnitudeBits := bitsNeededExported(uint64(absMagnitude))
	byteWidth := (magnitudeBits + 1 + 7) / 8 // +1 for the sign bit occupying the top bit
	if byteWidth < 1 {
		byteWidth = 1
	}
	if byteWidth > 8 {
		byteWidth = 8
	}

	encodedWidth := bitio.EncodeBitWidth(mainWidth)
	length := len(values)
	lengthField := length - 1
	b0 := byte(rleV2PatchedBase)<<6 | byte(encodedWidth)<<1 | byte((lengthField>>8)&0x01)
	b1 := byte(lengthField & 0xff)
	b2 := byte(byteWidth-1)<<5 | byte(bitio.EncodeBitWidth(patchWidth))
	b3 := byte(gapWidthBits-1)<<5 | byte(len(patches))
	if err := writeBytes(e.w, b0, b1, b2, b3); err != nil {
		return err
	}

	if err := bitio.WriteMSBBytes(e.w, bitio.SignedMSBEncode(baseMagnitude, byteWidth), byteWidth); err != nil {
		return err
	}

	if err := bitio.WritePackedInts(e.w, data, mainWidth); err != nil {
		return err
	}

	entries := make([]uint64, len(patches))
	prevIdx = -1
	for i, p := range patches {
		gap := uint64(p.idx - prevIdx - 1)
		prevIdx = p.idx
		entries[i] = gap<<uint(patchWidth) | p.patch
	}

	return bitio.WritePackedInts(e.w, entries, patchWidth+gapWidthBits)
}

// classifyVariableRun picks a sub-encoding for a buffered variable-run
// sequence, following ORC's written classifier (spec: short sequences
// prefer Direct; fixed or monotonic sequences prefer Delta; otherwise
// compare percentile bit widths to decide between Patched Base and
// Direct).
func classifyVariableRun(values []int64) rleV2SubEncoding {
	if len(values) <= 3 {
		return rleV2Direct
	}

	min := values[0]
	for _, v := range values {
		if v < min {
			min = v
		}
	}

	firstDelta := values[1] - values[0]
	fixedDelta := true
	monotonicIncreasing := firstDelta >= 0
	monotonicDecreasing := firstDelta <= 0
	for i := 1; i < len(values); i++ {
		d := values[i] - values[i-1]
		if d != firstDelta {
			fixedDelta = false
		}
		if d < 0 {
			monotonicIncreasing = false
		}
		if d > 0 {
			monotonicDecreasing = false
		}
	}
	monotonic := monotonicIncreasing || monotonicDecreasing

	if fixedDelta {
		return rleV2Delta
	}
	if firstDelta != 0 && monotonic {
		return rleV2Delta
	}

	if min >= (1<<56) || (min <= -(1<<56) && min != minInt64) {
		return rleV2Direct
	}

	raws := make([]uint64, len(values))
	for i, v := range values {
		raws[i] = zigzagU(v)
	}
	p90 := bitio.CalculatePercentileBits(raws, 0.9)
	p100 := bitio.CalculatePercentileBits(raws, 1.0)
	if p100-p90 <= 1 {
		return rleV2Direct
	}

	baseReduced := make([]uint64, len(values))
	for i, v := range values {
		baseReduced[i] = uint64(v - min)
	}
	p95 := bitio.CalculatePercentileBits(baseReduced, 0.95)
	p100br := bitio.CalculatePercentileBits(baseReduced, 1.0)
	if p95 != p100br {
		return rleV2PatchedBase
	}

	return rleV2Direct
}

const minInt64 = -1 << 63

func zigzagU(v int64) uint64 {
	return bitio.ZigzagEncode(v)
}

func bytesNeeded(v uint64) int {
	n := 1
	for v>>(uint(n)*8) != 0 {
		n++
	}

	return n
}

func bitsNeededExported(v uint64) int {
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

func writeBytes(w io.Writer, bs ...byte) error {
	if _, err := w.Write(bs); err != nil {
		return fmt.Errorf("encoding: write rle v2 header: %w", errs.ErrIo)
	}

	return nil
}
