// Package graph holds the identifier space shared by storage and query
// execution: object ids, query variables and the bindings that map one to
// the other.
package graph

import (
	"errors"
	"fmt"
)

// ObjectID identifies a stored object: a node, a predicate or an edge.
// Ids are allocated by the store starting at 1.
type ObjectID uint64

// NullObjectID is the absence of a value. It never names a stored object,
// so scans keyed on it are always empty.
const NullObjectID ObjectID = 0

// IsNull reports whether the id is NullObjectID
func (o ObjectID) IsNull() bool {
	return o == NullObjectID
}

// String returns the id in the form used by explain output
func (o ObjectID) String() string {
	if o.IsNull() {
		return "null"
	}
	return fmt.Sprintf("#%d", uint64(o))
}

// VarID is the position of a query variable inside a Binding
type VarID uint32

// String returns the variable as ?N
func (v VarID) String() string {
	return fmt.Sprintf("?%d", uint32(v))
}

// ErrUnboundVariable is returned when a variable is resolved against a
// binding that holds no value for it.
var ErrUnboundVariable = errors.New("unbound variable")

// ID is either a query variable or a concrete object id.
// The zero value is the null object.
type ID struct {
	isVar bool
	v     VarID
	o     ObjectID
}

// Var creates an ID referring to a query variable
func Var(v VarID) ID {
	return ID{isVar: true, v: v}
}

// Object creates an ID referring to a concrete object
func Object(o ObjectID) ID {
	return ID{o: o}
}

// IsVar reports whether the id must be resolved against a binding
func (id ID) IsVar() bool {
	return id.isVar
}

// Var returns the variable. Only meaningful when IsVar is true.
func (id ID) Var() VarID {
	return id.v
}

// Object returns the object id. Only meaningful when IsVar is false.
func (id ID) Object() ObjectID {
	return id.o
}

// String returns a string representation
func (id ID) String() string {
	if id.isVar {
		return id.v.String()
	}
	return id.o.String()
}
