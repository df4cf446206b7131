package schema

import (
	"fmt"
	"strings"

	"github.com/orcstripe/orcstripe/errs"
)

// GoType identifies the fixed Go representation a decoded column's
// values are materialized as, per the type-mapping table: Boolean->bool,
// Byte->int8, Short->int16, Int->int32, Long->int64, Float->float32,
// Double->float64, String/Varchar/Char->string, Binary->[]byte,
// Decimal->Decimal128, Date->int32 (days), Timestamp/
// TimestampWithLocalTimezone->int64 (nanoseconds), Struct/List/Map/
// Union->the nested analogue (handled structurally, not via GoType).
type GoType uint8

const (
	GoBool GoType = iota
	GoInt8
	GoInt16
	GoInt32
	GoInt64
	GoFloat32
	GoFloat64
	GoString
	GoBytes
	GoDecimal128
	GoDate32
	GoTimestampNanos
	GoNested // Struct/List/Map/Union: no scalar representation
)

// goTypeOf maps a Kind to its fixed Go output representation.
func goTypeOf(k Kind) GoType {
	switch k {
	case KindBoolean:
		return GoBool
	case KindByte:
		return GoInt8
	case KindShort:
		return GoInt16
	case KindInt:
		return GoInt32
	case KindLong:
		return GoInt64
	case KindFloat:
		return GoFloat32
	case KindDouble:
		return GoFloat64
	case KindString, KindVarchar, KindChar:
		return GoString
	case KindBinary:
		return GoBytes
	case KindDecimal:
		return GoDecimal128
	case KindDate:
		return GoDate32
	case KindTimestamp, KindTimestampWithLocalTZ:
		return GoTimestampNanos
	default:
		return GoNested
	}
}

// Column describes one selected column of a resolved Schema: its ORC
// Type, fixed Go output type, pre-order index, parent index (-1 for
// root), and dot-joined field path for diagnostics.
type Column struct {
	Index       int
	ParentIndex int
	Type        *Type
	GoType      GoType
	Path        string
}

// Schema is the result of resolving a Projection against a root Type:
// the set of selected columns in pre-order, plus the full (unfiltered)
// root type they were resolved from.
type Schema struct {
	Root     *Type
	Columns  []Column
	selected map[int]bool
}

// RootType returns the full logical type tree this schema was resolved
// from (not filtered by projection).
func (s *Schema) RootType() *Type {
	return s.Root
}

// Contains reports whether column index idx is part of this schema's
// projection.
func (s *Schema) Contains(idx int) bool {
	return s.selected[idx]
}

// ByIndex returns the selected Column with the given pre-order index,
// or ErrInvalidColumn if idx is not part of the schema.
func (s *Schema) ByIndex(idx int) (Column, error) {
	for _, c := range s.Columns {
		if c.Index == idx {
			return c, nil
		}
	}

	return Column{}, fmt.Errorf("schema: no column with index %d: %w", idx, errs.ErrInvalidColumn)
}

// ByPath returns the selected Column at the given dot-joined field
// path (root-relative, e.g. "orders.item.sku"), or ErrInvalidColumn.
func (s *Schema) ByPath(path string) (Column, error) {
	for _, c := range s.Columns {
		if c.Path == path {
			return c, nil
		}
	}

	return Column{}, fmt.Errorf("schema: no column at path %q: %w", path, errs.ErrInvalidColumn)
}

// RootFieldNames returns the field names of the schema's root struct
// that survived projection, in declaration order; used by the stripe
// driver to name the top-level fields of an assembled record batch.
func (s *Schema) RootFieldNames() []string {
	names := make([]string, 0, len(s.Root.FieldNames))
	for i, child := range s.Root.Children {
		if s.selected[child.Index] {
			names = append(names, s.Root.FieldNames[i])
		}
	}

	return names
}

// String renders the schema's selected column paths, mainly for
// error messages and test diffs.
func (s *Schema) String() string {
	paths := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		paths[i] = fieldPath(ColumnDescriptor{Path: c.Path})
	}

	return strings.Join(paths, ", ")
}
