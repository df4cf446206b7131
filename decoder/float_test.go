package decoder

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/orcstripe/orcstripe/schema"
	"github.com/stretchr/testify/require"
)

func le32(v float32) []byte {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], math.Float32bits(v))
	return buf[:]
}

func le64(v float64) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
	return buf[:]
}

func TestFloatColumnDecoder_NextBatch(t *testing.T) {
	present := presentReaderFor(t, []bool{true, false, true})
	var data bytes.Buffer
	data.Write(le32(1.5))
	data.Write(le32(-2.25))

	dec, err := NewFloatColumnDecoder(primCol(schema.KindFloat), present, &data, binary.LittleEndian)
	require.NoError(t, err)

	arr, err := dec.NextBatch(3, nil)
	require.NoError(t, err)
	f := arr.(Float32Array)
	require.Equal(t, []float32{1.5, 0, -2.25}, f.Values)
	require.False(t, f.IsValid(1))
}

func TestFloatColumnDecoder_WrongKindErrors(t *testing.T) {
	_, err := NewFloatColumnDecoder(primCol(schema.KindDouble), nil, nil, binary.LittleEndian)
	require.Error(t, err)
}

func TestDoubleColumnDecoder_NextBatch(t *testing.T) {
	var data bytes.Buffer
	data.Write(le64(3.14159))

	dec, err := NewDoubleColumnDecoder(primCol(schema.KindDouble), nil, &data, binary.LittleEndian)
	require.NoError(t, err)

	arr, err := dec.NextBatch(1, nil)
	require.NoError(t, err)
	require.Equal(t, []float64{3.14159}, arr.(Float64Array).Values)
}

func TestDoubleColumnDecoder_ShortReadErrors(t *testing.T) {
	dec, err := NewDoubleColumnDecoder(primCol(schema.KindDouble), nil, bytes.NewReader(nil), binary.LittleEndian)
	require.NoError(t, err)

	_, err = dec.NextBatch(1, nil)
	require.Error(t, err)
}
