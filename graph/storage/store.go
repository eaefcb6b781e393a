package storage

import (
	"errors"
	"fmt"

	"github.com/wbrown/janus-paths/graph"
)

// IndexType represents different key orderings
type IndexType uint8

const (
	NodeIndex  IndexType = iota // Node
	TypeFromTo                  // Type-From-To-Edge, forward traversal
	ToTypeFrom                  // To-Type-From-Edge, backward traversal
	EdgeTable                   // Edge -> Type-From-To
	NameIndex                   // name -> id
	IDNameIndex                 // id -> name
)

// String returns the index name
func (i IndexType) String() string {
	switch i {
	case NodeIndex:
		return "nodes"
	case TypeFromTo:
		return "type_from_to"
	case ToTypeFrom:
		return "to_type_from"
	case EdgeTable:
		return "edges"
	case NameIndex:
		return "names"
	case IDNameIndex:
		return "ids"
	default:
		return fmt.Sprintf("index(%d)", uint8(i))
	}
}

// Columns returns the number of id columns in keys of the index
func (i IndexType) Columns() int {
	switch i {
	case NodeIndex, EdgeTable, IDNameIndex:
		return 1
	case TypeFromTo, ToTypeFrom:
		return 4
	default:
		return 0
	}
}

var (
	// ErrNotFound is returned when a requested object does not exist
	ErrNotFound = errors.New("not found")

	// ErrClosed is returned by operations on a closed store
	ErrClosed = errors.New("store closed")

	// ErrInvalidEdge is returned for edges with null endpoints or type
	ErrInvalidEdge = errors.New("invalid edge")
)

// Edge is a typed, directed connection between two nodes. Several edges
// may connect the same nodes with the same type; they differ by ID.
type Edge struct {
	ID   graph.ObjectID
	Type graph.ObjectID
	From graph.ObjectID
	To   graph.ObjectID
}

// String returns a string representation of the edge
func (e Edge) String() string {
	return fmt.Sprintf("(%s)-[%s %s]->(%s)", e.From, e.ID, e.Type, e.To)
}

func (e Edge) validate() error {
	if e.Type.IsNull() || e.From.IsNull() || e.To.IsNull() {
		return fmt.Errorf("%w: %s", ErrInvalidEdge, e)
	}
	return nil
}

// Iterator provides ordered access to the edges of one key range
type Iterator interface {
	// Next advances to the next entry, returning false at the end of the range
	Next() bool
	// Edge decodes the current entry. Only the columns stored in the
	// scanned index are set.
	Edge() (Edge, error)
	Close() error
}
