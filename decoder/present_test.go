package decoder

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDerivePresent_BothAbsent(t *testing.T) {
	out, err := derivePresent(nil, 3, nil)
	require.NoError(t, err)
	require.Nil(t, out)
}

func TestDerivePresent_OwnPresentParentAbsent(t *testing.T) {
	own := presentReaderFor(t, []bool{true, false, true})
	out, err := derivePresent(own, 3, nil)
	require.NoError(t, err)
	require.Equal(t, []bool{true, false, true}, out)
}

func TestDerivePresent_OwnAbsentParentPresent(t *testing.T) {
	parent := []bool{true, false, true}
	out, err := derivePresent(nil, 3, parent)
	require.NoError(t, err)
	require.Equal(t, parent, out)
}

func TestDerivePresent_BothPresent(t *testing.T) {
	// parent: valid, invalid, valid, valid -> own supplies 3 bits for
	// the 3 parent-true slots: true, false, true.
	own := presentReaderFor(t, []bool{true, false, true})
	parent := []bool{true, false, true, true}

	out, err := derivePresent(own, 4, parent)
	require.NoError(t, err)
	require.Equal(t, []bool{true, false, false, true}, out)
}

func TestCountValid_NilMeansFullyValid(t *testing.T) {
	require.Equal(t, 5, countValid(nil, 5))
}

func TestCountValid_CountsTrueSlots(t *testing.T) {
	require.Equal(t, 2, countValid([]bool{true, false, true, false}, 4))
}
