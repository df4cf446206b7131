package decoder

import (
	"fmt"

	"github.com/orcstripe/orcstripe/schema"
)

// StructColumnDecoder decodes an ORC Struct column: a Present stream
// plus one child ColumnDecoder per field, recursing with the struct's
// own derived present vector as the children's parent mask.
type StructColumnDecoder struct {
	column  int
	present *PresentReader
	names   []string
	fields  []ColumnDecoder
}

// NewStructColumnDecoder validates col's ORC kind and wraps one child
// decoder per field, in declaration order matching col.Type.FieldNames.
func NewStructColumnDecoder(col schema.Column, present *PresentReader, fields []ColumnDecoder) (*StructColumnDecoder, error) {
	if err := checkMismatch(col, schema.KindStruct); err != nil {
		return nil, err
	}
	if len(fields) != len(col.Type.FieldNames) {
		return nil, fmt.Errorf("decoder: column %q has %d fields, got %d child decoders", col.Path, len(col.Type.FieldNames), len(fields))
	}

	return &StructColumnDecoder{
		column:  col.Index,
		present: present,
		names:   col.Type.FieldNames,
		fields:  fields,
	}, nil
}

// NextBatch implements ColumnDecoder.
func (d *StructColumnDecoder) NextBatch(n int, parentPresent []bool) (Array, error) {
	present, err := derivePresent(d.present, n, parentPresent)
	if err != nil {
		return nil, err
	}

	children := make([]Array, len(d.fields))
	for i, field := range d.fields {
		arr, err := field.NextBatch(n, present)
		if err != nil {
			return nil, fmt.Errorf("decoder: column %d field %q: %w", d.column, d.names[i], err)
		}
		children[i] = arr
	}

	return StructArray{presentArray: presentArray{Present: present}, Names: d.names, Children: children}, nil
}
