package decoder

import (
	"bytes"
	"testing"

	"github.com/orcstripe/orcstripe/encoding"
	"github.com/orcstripe/orcstripe/schema"
	"github.com/stretchr/testify/require"
)

func TestBooleanColumnDecoder_NextBatch(t *testing.T) {
	present := presentReaderFor(t, []bool{true, false, true})

	enc := encoding.NewBooleanRleEncoder()
	enc.WriteSlice([]bool{true, false})
	enc.Finish()
	data := bytes.NewReader(enc.Bytes())

	dec, err := NewBooleanColumnDecoder(primCol(schema.KindBoolean), present, data)
	require.NoError(t, err)

	arr, err := dec.NextBatch(3, nil)
	require.NoError(t, err)
	b := arr.(BoolArray)
	require.Equal(t, []bool{true, false, false}, b.Values)
	require.False(t, b.IsValid(1))
}

func TestBooleanColumnDecoder_WrongKindErrors(t *testing.T) {
	_, err := NewBooleanColumnDecoder(primCol(schema.KindByte), nil, nil)
	require.Error(t, err)
}
