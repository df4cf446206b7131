package decoder

import (
	"bytes"
	"testing"

	"github.com/orcstripe/orcstripe/schema"
	"github.com/stretchr/testify/require"
)

func TestStringDirectColumnDecoder_NextBatch(t *testing.T) {
	present := presentReaderFor(t, []bool{true, false, true})
	lengths := &queueInt64Source{t: t, values: []int64{5, 3}}
	data := bytes.NewReader([]byte("helloabc"))

	dec, err := NewStringDirectColumnDecoder(primCol(schema.KindString), present, lengths, data)
	require.NoError(t, err)

	arr, err := dec.NextBatch(3, nil)
	require.NoError(t, err)
	s := arr.(StringArray)
	require.Equal(t, []string{"hello", "", "abc"}, s.Values)
	require.False(t, s.IsValid(1))
}

func TestStringDirectColumnDecoder_WrongKindErrors(t *testing.T) {
	_, err := NewStringDirectColumnDecoder(primCol(schema.KindInt), nil, nil, nil)
	require.Error(t, err)
}

func TestStringDirectColumnDecoder_NegativeLengthErrors(t *testing.T) {
	lengths := &queueInt64Source{t: t, values: []int64{-1}}
	dec, err := NewStringDirectColumnDecoder(primCol(schema.KindString), nil, lengths, bytes.NewReader(nil))
	require.NoError(t, err)

	_, err = dec.NextBatch(1, nil)
	require.Error(t, err)
}

func TestStringDictionaryColumnDecoder_NextBatch(t *testing.T) {
	lengths := &queueInt64Source{t: t, values: []int64{3, 3, 5}}
	dictData := bytes.NewReader([]byte("catdogmouse"))
	indices := &queueInt64Source{t: t, values: []int64{2, 0, 1}}

	dec, err := NewStringDictionaryColumnDecoder(primCol(schema.KindString), nil, 3, lengths, dictData, indices)
	require.NoError(t, err)

	arr, err := dec.NextBatch(3, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"mouse", "cat", "dog"}, arr.(StringArray).Values)
}

func TestStringDictionaryColumnDecoder_IndexOutOfRangeErrors(t *testing.T) {
	lengths := &queueInt64Source{t: t, values: []int64{3}}
	dictData := bytes.NewReader([]byte("cat"))
	indices := &queueInt64Source{t: t, values: []int64{5}}

	dec, err := NewStringDictionaryColumnDecoder(primCol(schema.KindString), nil, 1, lengths, dictData, indices)
	require.NoError(t, err)

	_, err = dec.NextBatch(1, nil)
	require.Error(t, err)
}
