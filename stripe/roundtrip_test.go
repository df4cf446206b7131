package stripe_test

import (
	"context"
	"io"
	"testing"

	"github.com/orcstripe/orcstripe/compress"
	"github.com/orcstripe/orcstripe/decoder"
	"github.com/orcstripe/orcstripe/schema"
	"github.com/orcstripe/orcstripe/stripe"
	"github.com/stretchr/testify/require"
)

func buildSchema(t *testing.T) *schema.Schema {
	t.Helper()
	root := schema.NewStruct(
		[]string{"id", "name", "active", "tags"},
		[]*schema.Type{
			schema.Scalar(schema.KindLong),
			schema.Scalar(schema.KindString),
			schema.Scalar(schema.KindBoolean),
			schema.NewList(schema.Scalar(schema.KindInt)),
		},
	)
	sch, err := schema.ProjectAll().Resolve(root)
	require.NoError(t, err)

	return sch
}

// TestStripeWriteThenRead exercises the full write/read round trip
// across scalar, nullable, and nested (List) columns: BuildColumnEncoder,
// StripeWriter.Flush, StreamMap, BuildColumnDecoder, and StripeReader.Next
// all have to agree on stream layout and encoding for this to pass.
func TestStripeWriteThenRead(t *testing.T) {
	sch := buildSchema(t)

	w, err := stripe.NewStripeWriter(sch)
	require.NoError(t, err)

	idArr := decoder.Int64Array{Values: []int64{1, 2, 3}}

	nameArr := decoder.StringArray{Values: []string{"alice", "", "carol"}}
	nameArr.Present = []bool{true, false, true}

	activeArr := decoder.BoolArray{Values: []bool{true, false, true}}

	tagsArr := decoder.ListArray{
		Offsets: []int32{0, 2, 2, 3},
		Values:  decoder.Int32Array{Values: []int32{10, 20, 30}},
	}
	tagsArr.Present = []bool{true, false, true}

	batch := decoder.NewBatch(sch, []decoder.Array{idArr, nameArr, activeArr, tagsArr})
	require.NoError(t, w.Write(batch))

	footer, err := w.Flush()
	require.NoError(t, err)
	require.Equal(t, 3, footer.NumRows)

	// column 1 is "id" (no nulls), 2 is "name" (one null), 4 is "tags"
	// (one null), 5 is tags' element column (its own 3 slots, no nulls).
	require.Equal(t, stripe.ColumnStatistics{NumValues: 3, NullCount: 0}, footer.Statistics[1])
	require.Equal(t, stripe.ColumnStatistics{NumValues: 2, NullCount: 1}, footer.Statistics[2])
	require.Equal(t, stripe.ColumnStatistics{NumValues: 2, NullCount: 1}, footer.Statistics[4])
	require.Equal(t, stripe.ColumnStatistics{NumValues: 3, NullCount: 0}, footer.Statistics[5])

	streams, err := stripe.NewStreamMap(footer.Streams, footer.Data)
	require.NoError(t, err)

	r, err := stripe.NewStripeReader(sch, footer.Encodings, streams, footer.NumRows)
	require.NoError(t, err)

	out, err := r.Next(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, out.Rows)

	idCol, ok := out.Column("id")
	require.True(t, ok)
	require.Equal(t, []int64{1, 2, 3}, idCol.(decoder.Int64Array).Values)

	nameCol, ok := out.Column("name")
	require.True(t, ok)
	nameOut := nameCol.(decoder.StringArray)
	require.True(t, nameOut.IsValid(0))
	require.False(t, nameOut.IsValid(1))
	require.True(t, nameOut.IsValid(2))
	require.Equal(t, "alice", nameOut.Values[0])
	require.Equal(t, "carol", nameOut.Values[2])

	activeCol, ok := out.Column("active")
	require.True(t, ok)
	require.Equal(t, []bool{true, false, true}, activeCol.(decoder.BoolArray).Values)

	tagsCol, ok := out.Column("tags")
	require.True(t, ok)
	tagsOut := tagsCol.(decoder.ListArray)
	require.Equal(t, []int32{0, 2, 2, 3}, tagsOut.Offsets)
	require.False(t, tagsOut.IsValid(1))
	require.Equal(t, []int32{10, 20, 30}, tagsOut.Values.(decoder.Int32Array).Values)

	_, err = r.Next(context.Background())
	require.ErrorIs(t, err, io.EOF)
}

func TestStripeWriteThenRead_IntegerRleV1(t *testing.T) {
	sch := buildSchema(t)

	w, err := stripe.NewStripeWriter(sch, stripe.WithIntegerRleV1())
	require.NoError(t, err)

	batch := decoder.NewBatch(sch, []decoder.Array{
		decoder.Int64Array{Values: []int64{100, 200}},
		decoder.StringArray{Values: []string{"x", "y"}},
		decoder.BoolArray{Values: []bool{false, true}},
		decoder.ListArray{
			Offsets: []int32{0, 1, 1},
			Values:  decoder.Int32Array{Values: []int32{7}},
		},
	})
	require.NoError(t, w.Write(batch))

	footer, err := w.Flush()
	require.NoError(t, err)

	streams, err := stripe.NewStreamMap(footer.Streams, footer.Data)
	require.NoError(t, err)

	r, err := stripe.NewStripeReader(sch, footer.Encodings, streams, footer.NumRows)
	require.NoError(t, err)

	out, err := r.Next(context.Background())
	require.NoError(t, err)

	idCol, _ := out.Column("id")
	require.Equal(t, []int64{100, 200}, idCol.(decoder.Int64Array).Values)
}

// TestStripeWriteThenRead_Compressed exercises the compression
// boundary around StripeWriter.Flush/NewStreamMap: footer.Data is run
// through CompressStripeData before being treated as "on disk", then
// DecompressStripeData before NewStreamMap, same as a real file writer/
// reader pair would do around the stripe's index+data region.
func TestStripeWriteThenRead_Compressed(t *testing.T) {
	sch := buildSchema(t)

	w, err := stripe.NewStripeWriter(sch)
	require.NoError(t, err)

	batch := decoder.NewBatch(sch, []decoder.Array{
		decoder.Int64Array{Values: []int64{42, 43}},
		decoder.StringArray{Values: []string{"hello world, compress me", "short"}},
		decoder.BoolArray{Values: []bool{true, false}},
		decoder.ListArray{
			Offsets: []int32{0, 2, 2},
			Values:  decoder.Int32Array{Values: []int32{1, 2}},
		},
	})
	require.NoError(t, w.Write(batch))

	footer, err := w.Flush()
	require.NoError(t, err)

	onDisk, err := stripe.CompressStripeData(footer.Data, compress.CompressionSnappy, 0)
	require.NoError(t, err)
	require.NotEqual(t, footer.Data, onDisk)

	decompressed, err := stripe.DecompressStripeData(onDisk, compress.CompressionSnappy, 0)
	require.NoError(t, err)
	require.Equal(t, footer.Data, decompressed)

	streams, err := stripe.NewStreamMap(footer.Streams, decompressed)
	require.NoError(t, err)

	r, err := stripe.NewStripeReader(sch, footer.Encodings, streams, footer.NumRows)
	require.NoError(t, err)

	out, err := r.Next(context.Background())
	require.NoError(t, err)

	idCol, _ := out.Column("id")
	require.Equal(t, []int64{42, 43}, idCol.(decoder.Int64Array).Values)

	nameCol, _ := out.Column("name")
	require.Equal(t, []string{"hello world, compress me", "short"}, nameCol.(decoder.StringArray).Values)
}
