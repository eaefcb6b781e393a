package graph

import (
	"fmt"
	"strings"
)

// Binding maps query variables to object ids for one row of intermediate
// results. Unassigned variables hold NullObjectID.
type Binding struct {
	values []ObjectID
}

// NewBinding creates a binding with room for size variables
func NewBinding(size int) *Binding {
	return &Binding{values: make([]ObjectID, size)}
}

// Len returns the number of variable slots
func (b *Binding) Len() int {
	return len(b.values)
}

// Add assigns a value to a variable, growing the binding if needed
func (b *Binding) Add(v VarID, o ObjectID) {
	if int(v) >= len(b.values) {
		grown := make([]ObjectID, int(v)+1)
		copy(grown, b.values)
		b.values = grown
	}
	b.values[v] = o
}

// Get returns the value of a variable, or NullObjectID if it has none
func (b *Binding) Get(v VarID) ObjectID {
	if b == nil || int(v) >= len(b.values) {
		return NullObjectID
	}
	return b.values[v]
}

// Clear unassigns every variable
func (b *Binding) Clear() {
	for i := range b.values {
		b.values[i] = NullObjectID
	}
}

// Resolve turns an ID into a concrete object id. Variables are looked up in
// the binding; a variable without a value yields ErrUnboundVariable.
func (b *Binding) Resolve(id ID) (ObjectID, error) {
	if !id.IsVar() {
		return id.Object(), nil
	}
	o := b.Get(id.Var())
	if o.IsNull() {
		return NullObjectID, fmt.Errorf("resolve %s: %w", id.Var(), ErrUnboundVariable)
	}
	return o, nil
}

// String returns a string representation such as {?0=#3 ?1=null}
func (b *Binding) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, o := range b.values {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%s=%s", VarID(i), o)
	}
	sb.WriteByte('}')
	return sb.String()
}
