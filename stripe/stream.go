// Package stripe wires the codec and decoder layers to a stripe's
// compressed byte region: the stream map (this file), the pull-style
// StripeReader (reader.go), and the symmetric StripeWriter (writer.go).
package stripe

import (
	"bytes"
	"fmt"
	"io"

	"github.com/orcstripe/orcstripe/errs"
)

// StreamKind identifies the role a column stream plays. RowIndex and
// BloomFilter streams are recognized but never consumed by the core
// (row-group pruning and bloom filters are out of scope).
type StreamKind uint8

const (
	StreamPresent StreamKind = iota
	StreamData
	StreamLength
	StreamSecondary
	StreamDictionaryData
	StreamRowIndex
	StreamBloomFilter
)

// String returns the stream kind's footer name.
func (k StreamKind) String() string {
	switch k {
	case StreamPresent:
		return "PRESENT"
	case StreamData:
		return "DATA"
	case StreamLength:
		return "LENGTH"
	case StreamSecondary:
		return "SECONDARY"
	case StreamDictionaryData:
		return "DICTIONARY_DATA"
	case StreamRowIndex:
		return "ROW_INDEX"
	case StreamBloomFilter:
		return "BLOOM_FILTER"
	default:
		return fmt.Sprintf("StreamKind(%d)", uint8(k))
	}
}

// Stream describes one entry in a stripe footer's stream list: which
// column it belongs to, what role it plays, and how many decompressed
// bytes it occupies. Streams for a given column appear in declaration
// order within the footer; StreamMap relies on that order to carve up
// the stripe's decompressed byte region.
type Stream struct {
	Kind   StreamKind
	Column int
	Length int
}

// EncodingKind identifies the RLE/dictionary strategy a stripe uses
// for one column.
type EncodingKind uint8

const (
	EncodingDirect EncodingKind = iota
	EncodingDictionary
	EncodingDirectV2
	EncodingDictionaryV2
)

// String returns the encoding kind's footer name.
func (k EncodingKind) String() string {
	switch k {
	case EncodingDirect:
		return "DIRECT"
	case EncodingDictionary:
		return "DICTIONARY"
	case EncodingDirectV2:
		return "DIRECT_V2"
	case EncodingDictionaryV2:
		return "DICTIONARY_V2"
	default:
		return fmt.Sprintf("EncodingKind(%d)", uint8(k))
	}
}

// ColumnEncoding is the per-column encoding entry in a stripe footer.
type ColumnEncoding struct {
	Kind           EncodingKind
	DictionarySize int
}

// UsesRleV2 reports whether this encoding implies Integer RLE v2
// (DirectV2 and DictionaryV2) rather than v1 (Direct and Dictionary).
func (e ColumnEncoding) UsesRleV2() bool {
	return e.Kind == EncodingDirectV2 || e.Kind == EncodingDictionaryV2
}

// IsDictionary reports whether this encoding is one of the two
// dictionary-backed kinds.
func (e ColumnEncoding) IsDictionary() bool {
	return e.Kind == EncodingDictionary || e.Kind == EncodingDictionaryV2
}

// ColumnStatistics is the structural summary a stripe footer's column
// statistics entry requires: row and null counts for a single column,
// at that column's own nesting level (a List/Map/Union's element/key/
// value/variant columns carry their own independent counts). Richer
// predicate statistics (min/max/sum) are out of scope; NumValues and
// NullCount are always exact.
type ColumnStatistics struct {
	// NumValues is the count of non-null rows this column encoded.
	NumValues int64
	// NullCount is the count of null rows this column encoded.
	NullCount int64
}

// StreamMap exposes random access, by (column, kind), to the byte
// ranges of a single stripe's already-decompressed data region. It is
// built once per stripe from the footer's ordered Stream list plus the
// matching decompressed byte slice, and carves out each stream's range
// by accumulating lengths in footer order.
type StreamMap struct {
	data    []byte
	offsets map[streamKey]streamRange
}

type streamKey struct {
	column int
	kind   StreamKind
}

type streamRange struct {
	offset int
	length int
}

// NewStreamMap builds a StreamMap over data (the stripe's decompressed
// index+data region, index region first) from the footer's ordered
// stream list. streams must list every stream in the same order their
// bytes appear in data.
func NewStreamMap(streams []Stream, data []byte) (*StreamMap, error) {
	offsets := make(map[streamKey]streamRange, len(streams))

	cursor := 0
	for _, s := range streams {
		if cursor+s.Length > len(data) {
			return nil, fmt.Errorf("stripe: stream %s for column %d overruns stripe data (need %d bytes at offset %d, have %d): %w",
				s.Kind, s.Column, s.Length, cursor, len(data), errs.ErrInvalidColumn)
		}

		key := streamKey{column: s.Column, kind: s.Kind}
		offsets[key] = streamRange{offset: cursor, length: s.Length}
		cursor += s.Length
	}

	return &StreamMap{data: data, offsets: offsets}, nil
}

// Has reports whether a stream of the given kind exists for column.
func (m *StreamMap) Has(column int, kind StreamKind) bool {
	_, ok := m.offsets[streamKey{column: column, kind: kind}]

	return ok
}

// Get returns a reader over the named stream's decompressed bytes.
// RowIndex and BloomFilter streams are never required reads by the
// core but may still be looked up (e.g. by a future caller); everything
// else returns ErrInvalidColumn when absent.
func (m *StreamMap) Get(column int, kind StreamKind) (io.Reader, error) {
	r, ok := m.offsets[streamKey{column: column, kind: kind}]
	if !ok {
		return nil, fmt.Errorf("stripe: column %d has no %s stream: %w", column, kind, errs.ErrInvalidColumn)
	}

	return bytes.NewReader(m.data[r.offset : r.offset+r.length]), nil
}

// GetByteReader is a convenience wrapper around Get for decoders that
// need io.ByteReader (every RLE/varint reader in the encoding package
// does).
func (m *StreamMap) GetByteReader(column int, kind StreamKind) (io.ByteReader, error) {
	r, err := m.Get(column, kind)
	if err != nil {
		return nil, err
	}

	br, ok := r.(io.ByteReader)
	if !ok {
		return bufByteReader{r}, nil
	}

	return br, nil
}

// bufByteReader adapts an io.Reader without ReadByte (none of our
// Get results lack it today, since bytes.Reader implements it, but
// this keeps GetByteReader correct if that ever changes).
type bufByteReader struct {
	io.Reader
}

func (b bufByteReader) ReadByte() (byte, error) {
	var buf [1]byte
	if _, err := io.ReadFull(b.Reader, buf[:]); err != nil {
		return 0, err
	}

	return buf[0], nil
}
