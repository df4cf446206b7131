package decoder

import (
	"github.com/orcstripe/orcstripe/schema"
)

// Batch is a fixed-size, column-oriented slice of decoded rows: one
// Array per selected top-level field of the schema that produced it,
// named in root declaration order.
type Batch struct {
	Schema *schema.Schema
	Fields []string
	Arrays []Array
	Rows   int
}

// NewBatch assembles a Batch from a resolved schema and the decoded
// root-level Arrays, one per schema.Schema.RootFieldNames() entry, in
// the same order.
func NewBatch(sch *schema.Schema, arrays []Array) Batch {
	names := sch.RootFieldNames()
	rows := 0
	if len(arrays) > 0 {
		rows = arrays[0].Len()
	}

	return Batch{Schema: sch, Fields: names, Arrays: arrays, Rows: rows}
}

// Column returns the Array bound to the named top-level field, or
// (nil, false) if name wasn't selected by the schema's projection.
func (b Batch) Column(name string) (Array, bool) {
	for i, f := range b.Fields {
		if f == name {
			return b.Arrays[i], true
		}
	}

	return nil, false
}
