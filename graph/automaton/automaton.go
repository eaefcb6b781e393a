// Package automaton holds the finite automata that property paths compile
// to. States track progress through the path pattern; transitions consume
// one edge with a given predicate in a given direction.
//
// Automata are immutable once built and may be shared by any number of
// evaluators.
package automaton

import (
	"errors"
	"fmt"
	"strings"

	"github.com/wbrown/janus-paths/graph"
)

// StateID identifies an automaton state. States are numbered from 0.
type StateID uint32

// Direction selects which way an edge is traversed
type Direction uint8

const (
	Forward  Direction = iota // from source to target
	Backward                  // from target back to source
)

// String returns the direction name
func (d Direction) String() string {
	switch d {
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	default:
		return fmt.Sprintf("direction(%d)", uint8(d))
	}
}

// ParseDirection parses "forward"/"backward" (also "^" for backward)
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "forward", "fwd", ">":
		return Forward, nil
	case "backward", "bwd", "inverse", "^", "<":
		return Backward, nil
	default:
		return Forward, fmt.Errorf("unknown direction %q", s)
	}
}

// ErrMalformedAutomaton is returned when an automaton fails validation
var ErrMalformedAutomaton = errors.New("malformed automaton")

// Transition consumes one edge labeled Predicate in Direction and moves
// the automaton to state To.
type Transition struct {
	Predicate graph.ObjectID // resolved predicate; NullObjectID until resolved
	Name      string         // predicate name, empty for transitions built from ids
	Direction Direction
	To        StateID
}

// String returns a string representation such as likes>2 or ^likes>2
func (t Transition) String() string {
	label := t.Name
	if label == "" {
		label = t.Predicate.String()
	}
	if t.Direction == Backward {
		label = "^" + label
	}
	return fmt.Sprintf("%s>%d", label, t.To)
}

// PathAutomaton is a validated finite automaton over edge predicates
type PathAutomaton struct {
	starts      []StateID
	accepting   []bool
	transitions [][]Transition
}

// NumStates returns the number of states
func (a *PathAutomaton) NumStates() int {
	return len(a.accepting)
}

// StartStates returns the start states. The slice must not be modified.
func (a *PathAutomaton) StartStates() []StateID {
	return a.starts
}

// IsAccepting reports whether s is an accepting state
func (a *PathAutomaton) IsAccepting(s StateID) bool {
	return int(s) < len(a.accepting) && a.accepting[s]
}

// AcceptsEmpty reports whether some start state is also accepting,
// i.e. the automaton accepts the zero-length path.
func (a *PathAutomaton) AcceptsEmpty() bool {
	for _, s := range a.starts {
		if a.accepting[s] {
			return true
		}
	}
	return false
}

// Transitions returns the outgoing transitions of s in insertion order.
// The slice must not be modified.
func (a *PathAutomaton) Transitions(s StateID) []Transition {
	if int(s) >= len(a.transitions) {
		return nil
	}
	return a.transitions[s]
}

// Predicates returns the distinct predicate names used by the automaton
func (a *PathAutomaton) Predicates() []string {
	seen := make(map[string]bool)
	var names []string
	for _, ts := range a.transitions {
		for _, t := range ts {
			if t.Name != "" && !seen[t.Name] {
				seen[t.Name] = true
				names = append(names, t.Name)
			}
		}
	}
	return names
}

// String returns a compact description, e.g. start=[0] accept=[1] 0:{likes>1} 1:{likes>1}
func (a *PathAutomaton) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "start=%v accept=[", a.starts)
	first := true
	for s, ok := range a.accepting {
		if !ok {
			continue
		}
		if !first {
			sb.WriteByte(' ')
		}
		first = false
		fmt.Fprintf(&sb, "%d", s)
	}
	sb.WriteByte(']')
	for s, ts := range a.transitions {
		if len(ts) == 0 {
			continue
		}
		parts := make([]string, len(ts))
		for i, t := range ts {
			parts[i] = t.String()
		}
		fmt.Fprintf(&sb, " %d:{%s}", s, strings.Join(parts, " "))
	}
	return sb.String()
}

// PredicateResolver maps predicate names to stored object ids
type PredicateResolver interface {
	Lookup(name string) (graph.ObjectID, bool, error)
}

// Resolve returns a copy of the automaton whose named transitions carry the
// predicate ids known to r. Names r does not know resolve to
// graph.NullObjectID; those transitions can never match an edge.
func (a *PathAutomaton) Resolve(r PredicateResolver) (*PathAutomaton, error) {
	ids := make(map[string]graph.ObjectID)
	for _, name := range a.Predicates() {
		id, ok, err := r.Lookup(name)
		if err != nil {
			return nil, fmt.Errorf("resolve predicate %q: %w", name, err)
		}
		if !ok {
			id = graph.NullObjectID
		}
		ids[name] = id
	}

	resolved := &PathAutomaton{
		starts:      append([]StateID(nil), a.starts...),
		accepting:   append([]bool(nil), a.accepting...),
		transitions: make([][]Transition, len(a.transitions)),
	}
	for s, ts := range a.transitions {
		out := make([]Transition, len(ts))
		for i, t := range ts {
			if t.Name != "" {
				t.Predicate = ids[t.Name]
			}
			out[i] = t
		}
		resolved.transitions[s] = out
	}
	return resolved, nil
}
