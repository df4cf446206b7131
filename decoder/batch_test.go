package decoder

import (
	"testing"

	"github.com/orcstripe/orcstripe/schema"
	"github.com/stretchr/testify/require"
)

func batchSchema(t *testing.T) *schema.Schema {
	t.Helper()
	root := schema.NewStruct(
		[]string{"id", "name"},
		[]*schema.Type{schema.Scalar(schema.KindLong), schema.Scalar(schema.KindString)},
	)
	s, err := schema.ProjectAll().Resolve(root)
	require.NoError(t, err)

	return s
}

func TestNewBatch_AssemblesFieldsAndRowCount(t *testing.T) {
	sch := batchSchema(t)
	arrays := []Array{
		Int64Array{Values: []int64{1, 2, 3}},
		StringArray{Values: []string{"a", "b", "c"}},
	}

	b := NewBatch(sch, arrays)
	require.Equal(t, 3, b.Rows)
	require.Equal(t, []string{"id", "name"}, b.Fields)

	col, ok := b.Column("name")
	require.True(t, ok)
	require.Equal(t, StringArray{Values: []string{"a", "b", "c"}}, col)

	_, ok = b.Column("nonexistent")
	require.False(t, ok)
}

func TestNewBatch_EmptyArraysHasZeroRows(t *testing.T) {
	sch := batchSchema(t)
	b := NewBatch(sch, nil)
	require.Equal(t, 0, b.Rows)
}
