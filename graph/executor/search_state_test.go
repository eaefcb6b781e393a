package executor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wbrown/janus-paths/graph"
)

func TestVisitedSet(t *testing.T) {
	var v visitedSet
	a := SearchState{Node: 1, State: 0}
	b := SearchState{Node: 1, State: 1}

	ha, inserted := v.insert(a)
	require.True(t, inserted)
	hb, inserted := v.insert(b)
	require.True(t, inserted)
	assert.NotEqual(t, ha, hb)

	again, inserted := v.insert(SearchState{Node: 1, State: 0})
	assert.False(t, inserted)
	assert.Equal(t, ha, again)

	assert.Equal(t, 2, v.len())
	assert.Equal(t, b, v.get(hb))
	assert.True(t, v.contains(a))
	assert.False(t, v.contains(SearchState{Node: 2, State: 0}))

	v.reset()
	assert.Equal(t, 0, v.len())
	assert.False(t, v.contains(a))
	h, inserted := v.insert(b)
	assert.True(t, inserted)
	assert.Equal(t, stateHandle(0), h)
}

func TestPendingQueue(t *testing.T) {
	var q pendingQueue
	assert.True(t, q.empty())

	q.push(3)
	q.push(1)
	q.push(2)
	assert.Equal(t, 3, q.len())

	var order []stateHandle
	for !q.empty() {
		order = append(order, q.front())
		q.pop()
	}
	assert.Equal(t, []stateHandle{3, 1, 2}, order)

	t.Run("Compaction", func(t *testing.T) {
		var q pendingQueue
		for i := 0; i < 3000; i++ {
			q.push(stateHandle(i))
		}
		for i := 0; i < 2000; i++ {
			require.Equal(t, stateHandle(i), q.front())
			q.pop()
		}
		assert.Equal(t, 1000, q.len())
		assert.Less(t, q.head, 1024)
		for i := 2000; i < 3000; i++ {
			require.Equal(t, stateHandle(i), q.front())
			q.pop()
		}
		assert.True(t, q.empty())
	})

	t.Run("Reset", func(t *testing.T) {
		var q pendingQueue
		q.push(1)
		q.push(2)
		q.pop()
		q.reset()
		assert.True(t, q.empty())
		assert.Equal(t, 0, q.len())
	})
}

func TestSearchStateString(t *testing.T) {
	assert.Equal(t, "(#7, q2)", SearchState{Node: graph.ObjectID(7), State: 2}.String())
}
