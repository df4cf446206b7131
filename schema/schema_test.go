package schema

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleRoot() *Type {
	addr := NewStruct(
		[]string{"city", "zip"},
		[]*Type{Scalar(KindString), Scalar(KindString)},
	)
	tags := NewList(Scalar(KindString))
	balance := NewDecimal(18, 2)

	return NewStruct(
		[]string{"id", "name", "address", "tags", "balance"},
		[]*Type{Scalar(KindLong), Scalar(KindString), addr, tags, balance},
	)
}

func TestProjectAll_AssignsContiguousPreOrderIndices(t *testing.T) {
	root := sampleRoot()
	s, err := ProjectAll().Resolve(root)
	require.NoError(t, err)

	// root, id, name, address, address.city, address.zip, tags, tags.item, balance
	require.Len(t, s.Columns, 9)
	for i, c := range s.Columns {
		require.Equal(t, i, c.Index, "column %d should have contiguous index", i)
	}
	require.Equal(t, -1, s.Columns[0].ParentIndex)
}

func TestProjectColumns_IncludesRootAndSubtree(t *testing.T) {
	root := sampleRoot()
	// select "address" (index 2 among root children: id=0,name=1,address=2)
	s, err := ProjectColumns(2).Resolve(root)
	require.NoError(t, err)

	require.True(t, s.Contains(root.Index))
	addrCol, err := s.ByPath("address")
	require.NoError(t, err)
	require.True(t, s.Contains(addrCol.Index))

	_, err = s.ByPath("address.city")
	require.NoError(t, err)
	_, err = s.ByPath("id")
	require.Error(t, err)
}

func TestProjectFields_ResolvesByName(t *testing.T) {
	root := sampleRoot()
	s, err := ProjectFields("tags", "balance").Resolve(root)
	require.NoError(t, err)

	require.ElementsMatch(t, []string{"tags", "balance"}, s.RootFieldNames())

	_, err = s.ByPath("tags.item")
	require.NoError(t, err)
}

func TestProjectFields_UnknownFieldErrors(t *testing.T) {
	root := sampleRoot()
	_, err := ProjectFields("nonexistent").Resolve(root)
	require.Error(t, err)
}

func TestProjectColumns_OutOfRangeErrors(t *testing.T) {
	root := sampleRoot()
	_, err := ProjectColumns(99).Resolve(root)
	require.Error(t, err)
}

func TestResolve_NonStructRootErrors(t *testing.T) {
	_, err := ProjectAll().Resolve(Scalar(KindInt))
	require.Error(t, err)
}

func TestGoTypeMapping(t *testing.T) {
	root := sampleRoot()
	s, err := ProjectAll().Resolve(root)
	require.NoError(t, err)

	idCol, err := s.ByPath("id")
	require.NoError(t, err)
	require.Equal(t, GoInt64, idCol.GoType)

	balCol, err := s.ByPath("balance")
	require.NoError(t, err)
	require.Equal(t, GoDecimal128, balCol.GoType)

	addrCol, err := s.ByPath("address")
	require.NoError(t, err)
	require.Equal(t, GoNested, addrCol.GoType)
}

func TestNewUnion_TooManyVariantsErrors(t *testing.T) {
	variants := make([]*Type, 257)
	for i := range variants {
		variants[i] = Scalar(KindInt)
	}
	_, err := NewUnion(variants)
	require.Error(t, err)
}

func TestUnionStructListMap_ColumnIndexing(t *testing.T) {
	union, err := NewUnion([]*Type{Scalar(KindInt), Scalar(KindString)})
	require.NoError(t, err)

	m := NewMap(Scalar(KindString), Scalar(KindDouble))

	root := NewStruct([]string{"u", "m"}, []*Type{union, m})
	s, err := ProjectAll().Resolve(root)
	require.NoError(t, err)

	// root, u, u.variant0, u.variant1, m, m.key, m.value
	require.Len(t, s.Columns, 7)

	mCol, err := s.ByPath("m")
	require.NoError(t, err)
	keyCol, err := s.ByPath("m.key")
	require.NoError(t, err)
	require.Equal(t, mCol.Index, keyCol.ParentIndex)
}
