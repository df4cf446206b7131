package decoder

import (
	"fmt"
	"math"
	"time"

	"github.com/orcstripe/orcstripe/errs"
	"github.com/orcstripe/orcstripe/schema"
)

// orcEpochUTCSecondsSinceUnixEpoch is ORC's Timestamp epoch,
// 2015-01-01T00:00:00 UTC, expressed as seconds since the Unix epoch.
const orcEpochUTCSecondsSinceUnixEpoch = 1_420_070_400

// nanoScale10 maps an encoded k (0..7) to the power of ten a non-zero
// k multiplies the decoded digit count by: 10^(k+1).
var nanoScale10 = [8]int64{
	1, 100, 1_000, 10_000, 100_000, 1_000_000, 10_000_000, 100_000_000,
}

// decodeNanos unpacks an unsigned-RLE-encoded nanosecond value: the
// low 3 bits hold k (a trailing-zero-digit count), the remaining bits
// hold n; actual ns = n * 10^(k+1) when k > 0, else n itself.
func decodeNanos(raw int64) int64 {
	k := raw & 0x7
	n := raw >> 3
	if k == 0 {
		return n
	}

	return n * nanoScale10[k]
}

// maxSecondsForNanos/minSecondsForNanos bound the Unix seconds value
// that can be scaled to nanoseconds without overflowing int64.
const (
	maxSecondsForNanos = math.MaxInt64 / int64(time.Second)
	minSecondsForNanos = math.MinInt64 / int64(time.Second)
)

// TimestampColumnDecoder decodes an ORC Timestamp or
// TimestampWithLocalTimezone column: signed-RLE seconds since the ORC
// epoch in the Data stream, unsigned-RLE encoded nanoseconds in the
// Secondary stream.
//
// withLocalTZ selects TimestampWithLocalTimezone semantics (always
// UTC); otherwise writerLoc, if non-nil, is the stripe's declared
// writer timezone and the decoded wall-clock fields are reinterpreted
// in that zone before converting to UTC. A nil writerLoc for a
// plain Timestamp column means UTC is assumed.
type TimestampColumnDecoder struct {
	column      int
	present     *PresentReader
	seconds     int64Source
	nanos       int64Source
	withLocalTZ bool
	writerLoc   *time.Location
}

// NewTimestampColumnDecoder validates col's ORC kind (Timestamp or
// TimestampWithLocalTimezone) and wraps the data and secondary streams.
func NewTimestampColumnDecoder(col schema.Column, present *PresentReader, seconds, nanos int64Source, writerLoc *time.Location) (*TimestampColumnDecoder, error) {
	if err := checkMismatch(col, schema.KindTimestamp, schema.KindTimestampWithLocalTZ); err != nil {
		return nil, err
	}

	return &TimestampColumnDecoder{
		column:      col.Index,
		present:     present,
		seconds:     seconds,
		nanos:       nanos,
		withLocalTZ: col.Type.Kind == schema.KindTimestampWithLocalTZ,
		writerLoc:   writerLoc,
	}, nil
}

// NextBatch implements ColumnDecoder.
func (d *TimestampColumnDecoder) NextBatch(n int, parentPresent []bool) (Array, error) {
	present, err := derivePresent(d.present, n, parentPresent)
	if err != nil {
		return nil, err
	}

	length := batchLength(parentPresent, n)
	values := make([]int64, length)
	want := countValid(present, length)

	read := 0
	for i := 0; i < length; i++ {
		if present != nil && !present[i] {
			continue
		}

		secs, err := d.seconds.Next()
		if err != nil {
			return nil, wrapShortRead(d.column, "DATA", want, read, err)
		}
		rawNanos, err := d.nanos.Next()
		if err != nil {
			return nil, wrapShortRead(d.column, "SECONDARY", want, read, err)
		}

		ns := decodeNanos(rawNanos)

		unixSeconds := secs + orcEpochUTCSecondsSinceUnixEpoch

		// ORC-763: pre-Unix-epoch seconds whose nanosecond component
		// spills past a full second (n was encoded with a trailing-zero
		// count that implied a > 999_999 remainder) need the second
		// rolled back by one before combining, matching the historical
		// writer bug this format quirk corrects for.
		if unixSeconds < 0 && ns > 999_999 {
			unixSeconds--
		}

		nanos, err := d.toUTCNanos(unixSeconds, ns)
		if err != nil {
			return nil, err
		}

		values[i] = nanos
		read++
	}

	return TimestampArray{presentArray: presentArray{Present: present}, Values: values}, nil
}

// toUTCNanos converts (unixSeconds, ns) to nanoseconds since the Unix
// epoch in UTC, applying the writer-timezone reinterpretation rule for
// plain Timestamp columns.
func (d *TimestampColumnDecoder) toUTCNanos(unixSeconds, ns int64) (int64, error) {
	secs := unixSeconds

	if !d.withLocalTZ && d.writerLoc != nil {
		// unixSeconds currently names a wall-clock instant as if it
		// were UTC; reinterpret those same calendar fields in the
		// writer's timezone to find the real UTC instant.
		wall := time.Unix(unixSeconds, 0).UTC()
		corrected := time.Date(wall.Year(), wall.Month(), wall.Day(),
			wall.Hour(), wall.Minute(), wall.Second(), 0, d.writerLoc)
		secs = corrected.UTC().Unix()
	}

	if secs > maxSecondsForNanos || secs < minSecondsForNanos {
		return 0, fmt.Errorf("decoder: column %d timestamp %d overflows nanosecond range: %w", d.column, secs, errs.ErrDecodeTimestamp)
	}

	return secs*int64(time.Second) + ns, nil
}
