// Package executor evaluates property paths over the graph indexes. Operators
// follow a pull protocol: Begin binds an operator to a row of the enclosing
// plan, Next produces results one call at a time, and Reset re-drives the
// operator for the next row.
package executor

import (
	"errors"
	"io"

	"github.com/wbrown/janus-paths/graph"
	"github.com/wbrown/janus-paths/graph/storage"
)

// BindingIter is the pull interface between plan operators
type BindingIter interface {
	// Begin prepares the operator for the given parent binding
	Begin(parent *graph.Binding) error

	// Next produces the next result. It returns false once the operator is
	// exhausted.
	Next() (bool, error)

	// Reset re-drives the operator against its parent binding
	Reset() error

	// AssignNulls sets the variables the operator binds to null
	AssignNulls()

	// Analyze writes execution statistics for plan introspection
	Analyze(w io.Writer, indent int)
}

// EdgeIndex is the read side of the graph store used by path evaluation.
// *storage.BadgerStore satisfies it.
type EdgeIndex interface {
	ScanPrefix(index storage.IndexType, parts ...graph.ObjectID) (storage.Iterator, error)
	HasNode(id graph.ObjectID) (bool, error)
}

// ErrNotBegun is returned by Next and Reset before a successful Begin
var ErrNotBegun = errors.New("iterator used before Begin")
