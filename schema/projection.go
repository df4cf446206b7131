package schema

import (
	"fmt"

	"github.com/orcstripe/orcstripe/errs"
)

// projectionMode selects how a Projection narrows the root type.
type projectionMode uint8

const (
	projectAll projectionMode = iota
	projectByIndex
	projectByName
)

// Projection narrows a resolved Schema down to a subset of root-level
// columns. The zero value is not valid; construct one with ProjectAll,
// ProjectColumns, or ProjectFields.
type Projection struct {
	mode    projectionMode
	indices []int
	names   []string
}

// ProjectAll selects every column in the tree.
func ProjectAll() Projection {
	return Projection{mode: projectAll}
}

// ProjectColumns selects the root struct's children at the given
// 0-based positions (and, transitively, all of their descendants).
// The root column itself is always included regardless.
func ProjectColumns(indices ...int) Projection {
	return Projection{mode: projectByIndex, indices: indices}
}

// ProjectFields selects the root struct's children by field name (and,
// transitively, all of their descendants). The root column itself is
// always included regardless.
func ProjectFields(names ...string) Projection {
	return Projection{mode: projectByName, names: names}
}

// Resolve narrows root (which must be a KindStruct) according to p,
// returning a Schema whose Columns list holds every selected node in
// pre-order, including the root and the full subtree under each
// selected top-level field. Column indices are (re-)assigned here,
// over the full unfiltered tree, so that a projected Schema's indices
// still match the stripe footer's absolute column numbering.
func (p Projection) Resolve(root *Type) (*Schema, error) {
	all, err := flatten(root)
	if err != nil {
		return nil, err
	}

	keep, err := p.selectedSet(root, all)
	if err != nil {
		return nil, err
	}

	columns := make([]Column, 0, len(keep))
	for _, d := range all {
		if !keep[d.Index] {
			continue
		}
		columns = append(columns, Column{
			Index:       d.Index,
			ParentIndex: d.ParentIndex,
			Type:        d.Type,
			GoType:      goTypeOf(d.Type.Kind),
			Path:        d.Path,
		})
	}

	return &Schema{Root: root, Columns: columns, selected: keep}, nil
}

// selectedSet computes the set of column indices kept by p, starting
// from the full pre-order descriptor list all (index 0 is always the
// root and is always kept).
func (p Projection) selectedSet(root *Type, all []ColumnDescriptor) (map[int]bool, error) {
	keep := make(map[int]bool, len(all))

	switch p.mode {
	case projectAll:
		for _, d := range all {
			keep[d.Index] = true
		}

		return keep, nil

	case projectByIndex:
		keep[root.Index] = true
		for _, want := range p.indices {
			if want < 0 || want >= len(root.Children) {
				return nil, fmt.Errorf("schema: projection index %d out of range [0,%d): %w", want, len(root.Children), errs.ErrInvalidColumn)
			}
			markSubtree(root.Children[want], keep)
		}

		return keep, nil

	case projectByName:
		keep[root.Index] = true
		for _, want := range p.names {
			child, ok := findField(root, want)
			if !ok {
				return nil, fmt.Errorf("schema: projection field %q not found: %w", want, errs.ErrInvalidColumn)
			}
			markSubtree(child, keep)
		}

		return keep, nil

	default:
		return nil, fmt.Errorf("schema: unknown projection mode %d: %w", p.mode, errs.ErrOutOfSpec)
	}
}

// findField looks up root's direct field named name.
func findField(root *Type, name string) (*Type, bool) {
	for i, fieldName := range root.FieldNames {
		if fieldName == name {
			return root.Children[i], true
		}
	}

	return nil, false
}

// markSubtree marks node and every descendant (recursively, across
// struct/list/map/union composition) as kept.
func markSubtree(node *Type, keep map[int]bool) {
	keep[node.Index] = true
	for _, child := range node.Children {
		markSubtree(child, keep)
	}
}
