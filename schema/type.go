// Package schema models the ORC logical type tree: the pre-order column
// index assignment, struct/list/map/union composition, and decimal
// precision/scale. It also exposes projection resolution (schema.go,
// projection.go) that narrows a tree down to the columns a caller
// actually wants to read.
package schema

import (
	"fmt"

	"github.com/orcstripe/orcstripe/errs"
)

// Kind identifies one of ORC's logical type variants.
type Kind uint8

const (
	KindBoolean Kind = iota
	KindByte
	KindShort
	KindInt
	KindLong
	KindFloat
	KindDouble
	KindString
	KindVarchar
	KindChar
	KindBinary
	KindDecimal
	KindDate
	KindTimestamp
	KindTimestampWithLocalTZ
	KindStruct
	KindList
	KindMap
	KindUnion
)

// String returns the ORC type-kind name.
func (k Kind) String() string {
	switch k {
	case KindBoolean:
		return "boolean"
	case KindByte:
		return "byte"
	case KindShort:
		return "short"
	case KindInt:
		return "int"
	case KindLong:
		return "long"
	case KindFloat:
		return "float"
	case KindDouble:
		return "double"
	case KindString:
		return "string"
	case KindVarchar:
		return "varchar"
	case KindChar:
		return "char"
	case KindBinary:
		return "binary"
	case KindDecimal:
		return "decimal"
	case KindDate:
		return "date"
	case KindTimestamp:
		return "timestamp"
	case KindTimestampWithLocalTZ:
		return "timestamp_instant"
	case KindStruct:
		return "struct"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	case KindUnion:
		return "union"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// maxUnionVariants bounds a Union's variant count; ORC stores the tag
// in a single byte.
const maxUnionVariants = 256

// Type is a node in the ORC logical type tree. Every node gets a
// stable, pre-order-assigned column index once the tree is attached
// to a Schema via Resolve; a freshly constructed Type has Index == -1.
type Type struct {
	Kind Kind

	// Index is this node's pre-order column index. -1 until assigned.
	Index int

	// Children holds, in declaration order:
	//   Struct -> one entry per field (paired with FieldNames)
	//   List   -> exactly one entry, the element type
	//   Map    -> exactly two entries: key type, value type
	//   Union  -> one entry per variant (at most 256)
	// Empty for every scalar kind.
	Children []*Type

	// FieldNames holds Struct field names, parallel to Children.
	FieldNames []string

	// Precision and Scale are only meaningful for KindDecimal.
	Precision int
	Scale     int

	// MaxLength is only meaningful for KindVarchar/KindChar.
	MaxLength int
}

// Scalar constructs a leaf Type of the given kind. It panics if kind
// requires children or precision/scale (use the dedicated constructors
// for those).
func Scalar(kind Kind) *Type {
	switch kind {
	case KindStruct, KindList, KindMap, KindUnion, KindDecimal, KindVarchar, KindChar:
		panic(fmt.Sprintf("schema: Kind %s is not a bare scalar", kind))
	}

	return &Type{Kind: kind, Index: -1}
}

// NewDecimal constructs a Decimal(precision, scale) type.
func NewDecimal(precision, scale int) *Type {
	return &Type{Kind: KindDecimal, Index: -1, Precision: precision, Scale: scale}
}

// NewVarchar constructs a Varchar(maxLength) type.
func NewVarchar(maxLength int) *Type {
	return &Type{Kind: KindVarchar, Index: -1, MaxLength: maxLength}
}

// NewChar constructs a Char(maxLength) type.
func NewChar(maxLength int) *Type {
	return &Type{Kind: KindChar, Index: -1, MaxLength: maxLength}
}

// NewStruct constructs a Struct type from parallel name/type slices.
// Panics if the slice lengths disagree, matching the invariant that a
// Struct node's subtype count equals its field-name count.
func NewStruct(names []string, fields []*Type) *Type {
	if len(names) != len(fields) {
		panic("schema: struct field names and types must have equal length")
	}

	return &Type{Kind: KindStruct, Index: -1, Children: fields, FieldNames: names}
}

// NewList constructs a List(element) type.
func NewList(element *Type) *Type {
	return &Type{Kind: KindList, Index: -1, Children: []*Type{element}}
}

// NewMap constructs a Map(key, value) type.
func NewMap(key, value *Type) *Type {
	return &Type{Kind: KindMap, Index: -1, Children: []*Type{key, value}}
}

// NewUnion constructs a Union of the given variants. Returns
// ErrUnsupportedTypeVariant if there are more than 256 variants, since
// ORC's union tag is a single byte.
func NewUnion(variants []*Type) (*Type, error) {
	if len(variants) > maxUnionVariants {
		return nil, fmt.Errorf("schema: union has %d variants, max %d: %w", len(variants), maxUnionVariants, errs.ErrUnsupportedTypeVariant)
	}

	return &Type{Kind: KindUnion, Index: -1, Children: variants}, nil
}

// ColumnDescriptor is one entry in a schema's flat, pre-order column
// list: the column's index, its parent's index (-1 for the root), its
// Type, and its dot-joined field path from the root (used in
// diagnostic error messages).
type ColumnDescriptor struct {
	Index       int
	ParentIndex int
	Type        *Type
	Path        string
}

// assignColumnIndices walks root in pre-order, assigning a contiguous
// column index to every node and appending a ColumnDescriptor for each
// to out. next is the next index to assign (0 for the root call).
func assignColumnIndices(node *Type, parentIndex int, path string, next *int, out *[]ColumnDescriptor) error {
	idx := *next
	*next++
	node.Index = idx

	*out = append(*out, ColumnDescriptor{
		Index:       idx,
		ParentIndex: parentIndex,
		Type:        node,
		Path:        path,
	})

	switch node.Kind {
	case KindStruct:
		for i, child := range node.Children {
			childPath := node.FieldNames[i]
			if path != "" {
				childPath = path + "." + childPath
			}
			if err := assignColumnIndices(child, idx, childPath, next, out); err != nil {
				return err
			}
		}
	case KindList:
		if len(node.Children) != 1 {
			return fmt.Errorf("schema: list type must have exactly one child, got %d: %w", len(node.Children), errs.ErrOutOfSpec)
		}

		return assignColumnIndices(node.Children[0], idx, path+".item", next, out)
	case KindMap:
		if len(node.Children) != 2 {
			return fmt.Errorf("schema: map type must have exactly two children, got %d: %w", len(node.Children), errs.ErrOutOfSpec)
		}
		if err := assignColumnIndices(node.Children[0], idx, path+".key", next, out); err != nil {
			return err
		}

		return assignColumnIndices(node.Children[1], idx, path+".value", next, out)
	case KindUnion:
		for i, variant := range node.Children {
			childPath := fmt.Sprintf("%s.variant%d", path, i)
			if err := assignColumnIndices(variant, idx, childPath, next, out); err != nil {
				return err
			}
		}
	}

	return nil
}

// flatten assigns pre-order column indices to root and every
// descendant, returning the flat descriptor list. root itself always
// receives column index 0, matching the invariant that the root
// column is always present in a projection mask.
func flatten(root *Type) ([]ColumnDescriptor, error) {
	if root.Kind != KindStruct {
		return nil, fmt.Errorf("schema: root type must be a struct: %w", errs.ErrMismatchedSchema)
	}

	var (
		next int
		out  []ColumnDescriptor
	)
	if err := assignColumnIndices(root, -1, "", &next, &out); err != nil {
		return nil, err
	}

	return out, nil
}

// fieldPath renders a descriptor's Path for error messages, falling
// back to the root marker when the path is empty.
func fieldPath(d ColumnDescriptor) string {
	if d.Path == "" {
		return "<root>"
	}

	return d.Path
}
