package executor

import (
	"fmt"

	"github.com/wbrown/janus-paths/graph"
	"github.com/wbrown/janus-paths/graph/automaton"
)

// SearchState is a point of the breadth-first search: the graph node
// reached and the automaton state reached with it. Two states are the same
// regardless of the path that produced them.
type SearchState struct {
	Node  graph.ObjectID
	State automaton.StateID
}

// String returns a string representation
func (s SearchState) String() string {
	return fmt.Sprintf("(%s, q%d)", s.Node, s.State)
}

// stateHandle refers to a SearchState owned by a visitedSet
type stateHandle int32

// visitedSet owns every search state reached in one check. States live in
// an append-only arena and are deduplicated through the index; handles
// stay valid until reset.
type visitedSet struct {
	states []SearchState
	index  map[SearchState]stateHandle
}

// insert adds s unless already present. It returns the handle of s and
// whether it was added.
func (v *visitedSet) insert(s SearchState) (stateHandle, bool) {
	if v.index == nil {
		v.index = make(map[SearchState]stateHandle)
	}
	if h, ok := v.index[s]; ok {
		return h, false
	}
	h := stateHandle(len(v.states))
	v.states = append(v.states, s)
	v.index[s] = h
	return h, true
}

func (v *visitedSet) get(h stateHandle) SearchState {
	return v.states[h]
}

func (v *visitedSet) contains(s SearchState) bool {
	_, ok := v.index[s]
	return ok
}

func (v *visitedSet) len() int {
	return len(v.states)
}

func (v *visitedSet) reset() {
	v.states = v.states[:0]
	clear(v.index)
}

// pendingQueue is the BFS frontier: a FIFO of handles into a visitedSet
type pendingQueue struct {
	handles []stateHandle
	head    int
}

func (q *pendingQueue) push(h stateHandle) {
	q.handles = append(q.handles, h)
}

func (q *pendingQueue) empty() bool {
	return q.head == len(q.handles)
}

func (q *pendingQueue) len() int {
	return len(q.handles) - q.head
}

// front returns the oldest handle. The queue must not be empty.
func (q *pendingQueue) front() stateHandle {
	return q.handles[q.head]
}

func (q *pendingQueue) pop() {
	q.head++
	if q.head == len(q.handles) {
		q.handles = q.handles[:0]
		q.head = 0
		return
	}
	// Reclaim the consumed prefix once it dominates the buffer
	if q.head >= 1024 && q.head*2 >= len(q.handles) {
		n := copy(q.handles, q.handles[q.head:])
		q.handles = q.handles[:n]
		q.head = 0
	}
}

func (q *pendingQueue) reset() {
	q.handles = q.handles[:0]
	q.head = 0
}
