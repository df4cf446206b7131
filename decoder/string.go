package decoder

import (
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"

	"github.com/orcstripe/orcstripe/errs"
	"github.com/orcstripe/orcstripe/schema"
)

// stringKinds is the set of ORC logical types a string decoder may be
// bound to: String, Varchar, and Char all share the same wire format.
var stringKinds = []schema.Kind{schema.KindString, schema.KindVarchar, schema.KindChar}

// readLengthPrefixedBytes reads count values from lengths, then that
// many total bytes from data, returning one []byte slice per value.
func readLengthPrefixedBytes(column int, lengths int64Source, data io.Reader, count int) ([][]byte, error) {
	sizes := make([]int, count)
	total := 0
	for i := 0; i < count; i++ {
		v, err := lengths.Next()
		if err != nil {
			return nil, wrapShortRead(column, "LENGTH", count, i, err)
		}
		if v < 0 {
			return nil, fmt.Errorf("decoder: negative length %d: %w", v, errs.ErrOutOfSpec)
		}
		sizes[i] = int(v)
		total += int(v)
	}

	buf := make([]byte, total)
	if _, err := io.ReadFull(data, buf); err != nil {
		return nil, fmt.Errorf("decoder: reading %d bytes of string data: %w", total, err)
	}

	out := make([][]byte, count)
	offset := 0
	for i, size := range sizes {
		out[i] = buf[offset : offset+size]
		offset += size
	}

	return out, nil
}

// StringDirectColumnDecoder decodes a Direct-encoded String/Varchar/
// Char column: an unsigned-RLE Length stream plus a raw-bytes Data
// stream, one entry per logical value.
type StringDirectColumnDecoder struct {
	column  int
	present *PresentReader
	lengths int64Source
	data    io.Reader
}

// NewStringDirectColumnDecoder validates col's ORC kind and wraps the
// length and data streams.
func NewStringDirectColumnDecoder(col schema.Column, present *PresentReader, lengths int64Source, data io.Reader) (*StringDirectColumnDecoder, error) {
	if err := checkMismatch(col, stringKinds...); err != nil {
		return nil, err
	}

	return &StringDirectColumnDecoder{column: col.Index, present: present, lengths: lengths, data: data}, nil
}

// NextBatch implements ColumnDecoder.
func (d *StringDirectColumnDecoder) NextBatch(n int, parentPresent []bool) (Array, error) {
	present, err := derivePresent(d.present, n, parentPresent)
	if err != nil {
		return nil, err
	}

	length := batchLength(parentPresent, n)
	want := countValid(present, length)

	raw, err := readLengthPrefixedBytes(d.column, d.lengths, d.data, want)
	if err != nil {
		return nil, fmt.Errorf("decoder: column %d string direct: %w", d.column, err)
	}

	values := make([]string, length)
	idx := 0
	for i := 0; i < length; i++ {
		if present != nil && !present[i] {
			continue
		}
		values[i] = string(raw[idx])
		idx++
	}

	return StringArray{presentArray: presentArray{Present: present}, Values: values}, nil
}

// StringDictionaryColumnDecoder decodes a Dictionary-encoded String/
// Varchar/Char column: a materialized dictionary (Length +
// DictionaryData streams, read once at construction) and an unsigned-
// RLE Data stream of per-value dictionary indices.
type StringDictionaryColumnDecoder struct {
	column     int
	present    *PresentReader
	indices    int64Source
	dictionary []string
}

// NewStringDictionaryColumnDecoder validates col's ORC kind, reads and
// materializes the dictionary_size-entry dictionary from lengths/
// dictionaryData, and wraps indices (unsigned RLE).
func NewStringDictionaryColumnDecoder(col schema.Column, present *PresentReader, dictionarySize int, lengths int64Source, dictionaryData io.Reader, indices int64Source) (*StringDictionaryColumnDecoder, error) {
	if err := checkMismatch(col, stringKinds...); err != nil {
		return nil, err
	}

	raw, err := readLengthPrefixedBytes(col.Index, lengths, dictionaryData, dictionarySize)
	if err != nil {
		return nil, fmt.Errorf("decoder: column %d dictionary: %w", col.Index, err)
	}

	dictionary := internDictionary(raw)

	return &StringDictionaryColumnDecoder{
		column:     col.Index,
		present:    present,
		indices:    indices,
		dictionary: dictionary,
	}, nil
}

// internDictionary converts raw dictionary entries to strings,
// content-hashing each entry with xxhash so identical entries (a
// dictionary is not required to be duplicate-free) share one backing
// string rather than allocating a copy per occurrence.
func internDictionary(raw [][]byte) []string {
	seen := make(map[uint64]string, len(raw))
	out := make([]string, len(raw))

	for i, entry := range raw {
		h := xxhash.Sum64(entry)
		if s, ok := seen[h]; ok && s == string(entry) {
			out[i] = s

			continue
		}

		s := string(entry)
		seen[h] = s
		out[i] = s
	}

	return out
}

// NextBatch implements ColumnDecoder.
func (d *StringDictionaryColumnDecoder) NextBatch(n int, parentPresent []bool) (Array, error) {
	present, err := derivePresent(d.present, n, parentPresent)
	if err != nil {
		return nil, err
	}

	length := batchLength(parentPresent, n)
	want := countValid(present, length)

	values := make([]string, length)
	read := 0
	for i := 0; i < length; i++ {
		if present != nil && !present[i] {
			continue
		}

		idx, err := d.indices.Next()
		if err != nil {
			return nil, wrapShortRead(d.column, "DATA", want, read, err)
		}
		if idx < 0 || int(idx) >= len(d.dictionary) {
			return nil, fmt.Errorf("decoder: column %d dictionary index %d out of range [0,%d): %w",
				d.column, idx, len(d.dictionary), errs.ErrOutOfSpec)
		}
		values[i] = d.dictionary[idx]
		read++
	}

	return StringArray{presentArray: presentArray{Present: present}, Values: values}, nil
}
