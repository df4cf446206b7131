package decoder

import (
	"bytes"
	"testing"

	"github.com/orcstripe/orcstripe/encoding"
	"github.com/orcstripe/orcstripe/schema"
	"github.com/stretchr/testify/require"
)

// presentReaderFor boolean-RLE-encodes bits and wraps the result in a
// PresentReader, matching how a real Present stream would be built.
func presentReaderFor(t *testing.T, bits []bool) *PresentReader {
	t.Helper()
	enc := encoding.NewBooleanRleEncoder()
	enc.WriteSlice(bits)
	enc.Finish()

	return NewPresentReader(bytes.NewReader(enc.Bytes()))
}

// byteRleReaderFor byte-RLE-encodes values for use as a Union tag
// stream.
func byteRleReaderFor(t *testing.T, values []byte) byteReader {
	t.Helper()
	enc := encoding.NewByteRleEncoder()
	enc.WriteSlice(values)
	enc.Finish()

	return bytes.NewReader(enc.Bytes())
}

// fakeColumnDecoder returns a pre-built Array for NextBatch, recording
// the (n, parentPresent) it was called with for assertions.
type fakeColumnDecoder struct {
	result    Array
	gotN      int
	gotParent []bool
	wasCalled bool
}

func (f *fakeColumnDecoder) NextBatch(n int, parentPresent []bool) (Array, error) {
	f.wasCalled = true
	f.gotN = n
	f.gotParent = parentPresent

	return f.result, nil
}

func structColumn() schema.Column {
	return schema.Column{Index: 0, Path: "s", Type: &schema.Type{
		Kind:       schema.KindStruct,
		FieldNames: []string{"a", "b"},
		Children:   []*schema.Type{{Kind: schema.KindInt}, {Kind: schema.KindString}},
	}}
}

func TestStructColumnDecoder_NoNulls(t *testing.T) {
	a := &fakeColumnDecoder{result: Int32Array{Values: []int32{1, 2, 3}}}
	b := &fakeColumnDecoder{result: StringArray{Values: []string{"x", "y", "z"}}}

	dec, err := NewStructColumnDecoder(structColumn(), nil, []ColumnDecoder{a, b})
	require.NoError(t, err)

	arr, err := dec.NextBatch(3, nil)
	require.NoError(t, err)
	s := arr.(StructArray)

	require.Equal(t, 3, s.Len())
	require.True(t, s.IsValid(0))
	require.Equal(t, 3, a.gotN)
	require.Nil(t, a.gotParent)
	require.Equal(t, []string{"a", "b"}, s.Names)
}

func TestStructColumnDecoder_FieldCountMismatchErrors(t *testing.T) {
	a := &fakeColumnDecoder{}
	_, err := NewStructColumnDecoder(structColumn(), nil, []ColumnDecoder{a})
	require.Error(t, err)
}

func TestStructColumnDecoder_PropagatesOwnPresentAsChildParent(t *testing.T) {
	present := presentReaderFor(t, []bool{true, false, true})
	a := &fakeColumnDecoder{result: Int32Array{Values: []int32{1, 0, 3}}}

	dec, err := NewStructColumnDecoder(structColumn(), present, []ColumnDecoder{a, a})
	require.NoError(t, err)

	_, err = dec.NextBatch(3, nil)
	require.NoError(t, err)
	require.Equal(t, []bool{true, false, true}, a.gotParent)
}

func listColumn() schema.Column {
	return schema.Column{Index: 0, Path: "l", Type: &schema.Type{
		Kind:     schema.KindList,
		Children: []*schema.Type{{Kind: schema.KindInt}},
	}}
}

func TestListColumnDecoder_ExpandsLengthsWithNullGaps(t *testing.T) {
	// rows: [valid len=2, null, valid len=1] -> 3 total elements
	present := presentReaderFor(t, []bool{true, false, true})
	lengths := &queueInt64Source{t: t, values: []int64{2, 1}}
	element := &fakeColumnDecoder{result: Int32Array{Values: []int32{10, 20, 30}}}

	dec, err := NewListColumnDecoder(listColumn(), present, lengths, element)
	require.NoError(t, err)

	arr, err := dec.NextBatch(3, nil)
	require.NoError(t, err)
	l := arr.(ListArray)

	require.Equal(t, 3, l.Len())
	require.Equal(t, []int32{0, 2, 2, 3}, l.Offsets)
	require.Equal(t, 3, element.gotN)
	require.False(t, l.IsValid(1))
}

func mapColumn() schema.Column {
	return schema.Column{Index: 0, Path: "m", Type: &schema.Type{
		Kind:     schema.KindMap,
		Children: []*schema.Type{{Kind: schema.KindString}, {Kind: schema.KindInt}},
	}}
}

func TestMapColumnDecoder_FetchesKeysAndValuesInOneCall(t *testing.T) {
	present := presentReaderFor(t, []bool{true, true})
	lengths := &queueInt64Source{t: t, values: []int64{1, 2}}
	keys := &fakeColumnDecoder{result: StringArray{Values: []string{"a", "b", "c"}}}
	values := &fakeColumnDecoder{result: Int32Array{Values: []int32{1, 2, 3}}}

	dec, err := NewMapColumnDecoder(mapColumn(), present, lengths, keys, values)
	require.NoError(t, err)

	arr, err := dec.NextBatch(2, nil)
	require.NoError(t, err)
	m := arr.(MapArray)

	require.Equal(t, []int32{0, 1, 3}, m.Offsets)
	require.Equal(t, 3, keys.gotN)
	require.Equal(t, 3, values.gotN)
}

func unionColumn() schema.Column {
	return schema.Column{Index: 0, Path: "u", Type: &schema.Type{
		Kind:     schema.KindUnion,
		Children: []*schema.Type{{Kind: schema.KindInt}, {Kind: schema.KindString}},
	}}
}

func TestUnionColumnDecoder_RoutesByTag(t *testing.T) {
	// 3 rows: tag 0, tag 1, tag 0
	tags := byteRleReaderFor(t, []byte{0, 1, 0})
	present := NewPresentReader(nil)
	variant0 := &fakeColumnDecoder{result: Int32Array{Values: []int32{1, 0, 3}}}
	variant1 := &fakeColumnDecoder{result: StringArray{Values: []string{"", "hi", ""}}}

	dec, err := NewUnionColumnDecoder(unionColumn(), present, tags, []ColumnDecoder{variant0, variant1})
	require.NoError(t, err)

	arr, err := dec.NextBatch(3, nil)
	require.NoError(t, err)
	u := arr.(UnionArray)

	require.Equal(t, []byte{0, 1, 0}, u.Tags)
	require.Equal(t, 3, variant0.gotN)
	require.Equal(t, []bool{true, false, true}, variant0.gotParent)
	require.Equal(t, []bool{false, true, false}, variant1.gotParent)
}
