package stripe_test

import (
	"io"
	"testing"

	"github.com/orcstripe/orcstripe/stripe"
	"github.com/stretchr/testify/require"
)

func TestNewStreamMap_CarvesRangesInDeclarationOrder(t *testing.T) {
	data := []byte("HELLOWORLD")
	streams := []stripe.Stream{
		{Kind: stripe.StreamData, Column: 1, Length: 5},
		{Kind: stripe.StreamData, Column: 2, Length: 5},
	}

	m, err := stripe.NewStreamMap(streams, data)
	require.NoError(t, err)

	require.True(t, m.Has(1, stripe.StreamData))
	require.False(t, m.Has(1, stripe.StreamPresent))

	r1, err := m.Get(1, stripe.StreamData)
	require.NoError(t, err)
	b1, err := io.ReadAll(r1)
	require.NoError(t, err)
	require.Equal(t, "HELLO", string(b1))

	r2, err := m.Get(2, stripe.StreamData)
	require.NoError(t, err)
	b2, err := io.ReadAll(r2)
	require.NoError(t, err)
	require.Equal(t, "WORLD", string(b2))
}

func TestNewStreamMap_OverrunErrors(t *testing.T) {
	streams := []stripe.Stream{{Kind: stripe.StreamData, Column: 1, Length: 20}}
	_, err := stripe.NewStreamMap(streams, []byte("short"))
	require.Error(t, err)
}

func TestStreamMap_GetMissingStreamErrors(t *testing.T) {
	m, err := stripe.NewStreamMap(nil, nil)
	require.NoError(t, err)

	_, err = m.Get(0, stripe.StreamPresent)
	require.Error(t, err)
}

func TestColumnEncoding_UsesRleV2AndIsDictionary(t *testing.T) {
	direct := stripe.ColumnEncoding{Kind: stripe.EncodingDirect}
	require.False(t, direct.UsesRleV2())
	require.False(t, direct.IsDictionary())

	directV2 := stripe.ColumnEncoding{Kind: stripe.EncodingDirectV2}
	require.True(t, directV2.UsesRleV2())
	require.False(t, directV2.IsDictionary())

	dict := stripe.ColumnEncoding{Kind: stripe.EncodingDictionary, DictionarySize: 4}
	require.False(t, dict.UsesRleV2())
	require.True(t, dict.IsDictionary())

	dictV2 := stripe.ColumnEncoding{Kind: stripe.EncodingDictionaryV2}
	require.True(t, dictV2.UsesRleV2())
	require.True(t, dictV2.IsDictionary())
}
