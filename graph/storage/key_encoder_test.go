package storage

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wbrown/janus-paths/graph"
)

func TestKeyEncoderRoundTrip(t *testing.T) {
	var enc KeyEncoder
	e := Edge{ID: 40, Type: 7, From: 1, To: 300}

	for _, idx := range []IndexType{TypeFromTo, ToTypeFrom} {
		t.Run(idx.String(), func(t *testing.T) {
			key := enc.EncodeKey(idx, e)
			assert.Len(t, key, 1+4*idSize)
			assert.Equal(t, byte(idx), key[0])

			got, err := enc.DecodeKey(idx, key)
			require.NoError(t, err)
			assert.Equal(t, e, got)
		})
	}

	got, err := enc.DecodeKey(EdgeTable, enc.EncodeKey(EdgeTable, e))
	require.NoError(t, err)
	assert.Equal(t, Edge{ID: 40}, got)

	got, err = enc.DecodeKey(NodeIndex, enc.EncodePrefix(NodeIndex, 9))
	require.NoError(t, err)
	assert.Equal(t, Edge{From: 9, To: 9}, got)
}

func TestKeyColumnOrder(t *testing.T) {
	var enc KeyEncoder
	// Forward keys sort by type, then source
	a := enc.EncodeKey(TypeFromTo, Edge{ID: 1, Type: 1, From: 9, To: 1})
	b := enc.EncodeKey(TypeFromTo, Edge{ID: 1, Type: 2, From: 1, To: 1})
	assert.Equal(t, -1, bytes.Compare(a, b))

	// Backward keys sort by target first
	c := enc.EncodeKey(ToTypeFrom, Edge{ID: 1, Type: 9, From: 9, To: 1})
	d := enc.EncodeKey(ToTypeFrom, Edge{ID: 1, Type: 1, From: 1, To: 2})
	assert.Equal(t, -1, bytes.Compare(c, d))
}

func TestDecodeKeyErrors(t *testing.T) {
	var enc KeyEncoder
	_, err := enc.DecodeKey(TypeFromTo, []byte{byte(TypeFromTo), 1, 2})
	assert.ErrorContains(t, err, "expected 33 bytes")

	key := enc.EncodeKey(ToTypeFrom, Edge{ID: 1, Type: 1, From: 1, To: 1})
	_, err = enc.DecodeKey(TypeFromTo, key)
	assert.ErrorContains(t, err, "tag belongs to to_type_from")

	_, err = enc.DecodeKey(NameIndex, []byte{byte(NameIndex)})
	assert.ErrorContains(t, err, "unknown index")

	assert.Panics(t, func() { enc.EncodeKey(NodeIndex, Edge{}) })
}

func TestEncodePrefixRange(t *testing.T) {
	var enc KeyEncoder

	start, end := enc.EncodePrefixRange(TypeFromTo, 5, 0xFF)
	assert.Equal(t, enc.EncodePrefix(TypeFromTo, 5, 0xFF), start)
	// Trailing 0xFF byte rolls over into the previous byte
	assert.Equal(t, append(enc.EncodePrefix(TypeFromTo, 5)[:1+idSize], 0, 0, 0, 0, 0, 0, 1), end)

	inside := enc.EncodeKey(TypeFromTo, Edge{ID: graph.ObjectID(math.MaxUint64), Type: 5, From: 0xFF, To: graph.ObjectID(math.MaxUint64)})
	assert.True(t, bytes.Compare(start, inside) <= 0)
	assert.True(t, bytes.Compare(inside, end) < 0)

	outside := enc.EncodeKey(TypeFromTo, Edge{Type: 5, From: 0x100})
	assert.True(t, bytes.Compare(outside, end) >= 0)

	_, end = enc.EncodePrefixRange(IndexType(0xFF))
	assert.Nil(t, end)
}
