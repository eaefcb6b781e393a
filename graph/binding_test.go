package graph

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindingResolve(t *testing.T) {
	b := NewBinding(2)
	b.Add(0, 7)

	t.Run("Object", func(t *testing.T) {
		o, err := b.Resolve(Object(42))
		require.NoError(t, err)
		assert.Equal(t, ObjectID(42), o)
	})

	t.Run("BoundVariable", func(t *testing.T) {
		o, err := b.Resolve(Var(0))
		require.NoError(t, err)
		assert.Equal(t, ObjectID(7), o)
	})

	t.Run("UnboundVariable", func(t *testing.T) {
		_, err := b.Resolve(Var(1))
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrUnboundVariable))
		assert.Contains(t, err.Error(), "?1")
	})

	t.Run("OutOfRangeVariable", func(t *testing.T) {
		_, err := b.Resolve(Var(9))
		assert.ErrorIs(t, err, ErrUnboundVariable)
	})

	t.Run("NilBinding", func(t *testing.T) {
		var nb *Binding
		_, err := nb.Resolve(Var(0))
		assert.ErrorIs(t, err, ErrUnboundVariable)
	})
}

func TestBindingAddGrowsAndClear(t *testing.T) {
	b := NewBinding(1)
	b.Add(3, 11)
	assert.Equal(t, 4, b.Len())
	assert.Equal(t, ObjectID(11), b.Get(3))
	assert.Equal(t, NullObjectID, b.Get(1))

	b.Clear()
	assert.Equal(t, NullObjectID, b.Get(3))
	assert.Equal(t, "{?0=null ?1=null ?2=null ?3=null}", b.String())
}

func TestIDString(t *testing.T) {
	assert.Equal(t, "?2", Var(2).String())
	assert.Equal(t, "#5", Object(5).String())
	assert.Equal(t, "null", ID{}.String())
	assert.True(t, Var(0).IsVar())
	assert.False(t, Object(1).IsVar())
}
