package decoder

import (
	"fmt"

	"github.com/orcstripe/orcstripe/encoding"
	"github.com/orcstripe/orcstripe/schema"
)

// UnionColumnDecoder decodes an ORC Union column: a Present stream
// plus a Byte-RLE Data stream of per-row variant tags. Every variant
// child is materialized at the batch's full length, with a per-variant
// present mask marking a row valid only where its tag matches and the
// union's own slot is valid; null rows read no tag, default to tag 0,
// and are invalid in every variant.
type UnionColumnDecoder struct {
	column   int
	present  *PresentReader
	tags     *encoding.ByteRleDecoder
	variants []ColumnDecoder
}

// NewUnionColumnDecoder validates col's ORC kind and builds a decoder
// reading tags from tagReader, with one child decoder per declared
// variant (col.Type.Children order).
func NewUnionColumnDecoder(col schema.Column, present *PresentReader, tagReader byteReader, variants []ColumnDecoder) (*UnionColumnDecoder, error) {
	if err := checkMismatch(col, schema.KindUnion); err != nil {
		return nil, err
	}
	if len(variants) != len(col.Type.Children) {
		return nil, fmt.Errorf("decoder: column %q has %d union variants, got %d child decoders", col.Path, len(col.Type.Children), len(variants))
	}

	return &UnionColumnDecoder{
		column:   col.Index,
		present:  present,
		tags:     encoding.NewByteRleDecoder(tagReader),
		variants: variants,
	}, nil
}

// NextBatch implements ColumnDecoder.
func (d *UnionColumnDecoder) NextBatch(n int, parentPresent []bool) (Array, error) {
	present, err := derivePresent(d.present, n, parentPresent)
	if err != nil {
		return nil, err
	}

	length := batchLength(parentPresent, n)
	want := countValid(present, length)

	tags := make([]byte, length)
	read := 0
	for i := 0; i < length; i++ {
		if present != nil && !present[i] {
			continue
		}

		t, err := d.tags.Next()
		if err != nil {
			return nil, wrapShortRead(d.column, "DATA", want, read, err)
		}
		tags[i] = t
		read++
	}

	variantArrays := make([]Array, len(d.variants))
	for k, variant := range d.variants {
		mask := make([]bool, length)
		for i := 0; i < length; i++ {
			rowValid := present == nil || present[i]
			mask[i] = rowValid && int(tags[i]) == k
		}

		arr, err := variant.NextBatch(length, mask)
		if err != nil {
			return nil, fmt.Errorf("decoder: column %d variant %d: %w", d.column, k, err)
		}
		variantArrays[k] = arr
	}

	return UnionArray{presentArray: presentArray{Present: present}, Tags: tags, Variants: variantArrays}, nil
}
