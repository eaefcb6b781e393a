package executor

import (
	"github.com/wbrown/janus-paths/graph"
	"github.com/wbrown/janus-paths/graph/automaton"
	"github.com/wbrown/janus-paths/graph/storage"
)

// scanRange is the index range holding the edges a transition can follow
// from one node
type scanRange struct {
	index  storage.IndexType
	prefix [2]graph.ObjectID
}

// scanRangeFor builds the range for following t from node. Forward
// transitions scan (type, from) in TypeFromTo; backward transitions scan
// (to, type) in ToTypeFrom.
func scanRangeFor(t automaton.Transition, node graph.ObjectID) scanRange {
	if t.Direction == automaton.Backward {
		return scanRange{index: storage.ToTypeFrom, prefix: [2]graph.ObjectID{node, t.Predicate}}
	}
	return scanRange{index: storage.TypeFromTo, prefix: [2]graph.ObjectID{t.Predicate, node}}
}

// candidate returns the node on the far side of an edge found in the range
func (r scanRange) candidate(e storage.Edge) graph.ObjectID {
	if r.index == storage.ToTypeFrom {
		return e.From
	}
	return e.To
}

func (r scanRange) open(index EdgeIndex) (storage.Iterator, error) {
	return index.ScanPrefix(r.index, r.prefix[0], r.prefix[1])
}
