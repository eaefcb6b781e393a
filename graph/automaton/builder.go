package automaton

import (
	"fmt"

	"github.com/wbrown/janus-paths/graph"
)

// Builder assembles a PathAutomaton. Errors are reported by Build.
type Builder struct {
	starts      []StateID
	accepting   []bool
	transitions [][]Transition
	pending     []StateID // accepting states marked before being added
}

// NewBuilder creates an empty builder
func NewBuilder() *Builder {
	return &Builder{}
}

// AddState adds a state and returns its id. States may be referenced by
// SetAccepting and transitions before they are added.
func (b *Builder) AddState() StateID {
	s := StateID(len(b.accepting))
	b.accepting = append(b.accepting, false)
	if len(b.transitions) < len(b.accepting) {
		b.transitions = append(b.transitions, nil)
	}

	kept := b.pending[:0]
	for _, p := range b.pending {
		if p == s {
			b.accepting[s] = true
		} else {
			kept = append(kept, p)
		}
	}
	b.pending = kept
	return s
}

// AddStates adds n states
func (b *Builder) AddStates(n int) *Builder {
	for i := 0; i < n; i++ {
		b.AddState()
	}
	return b
}

// AddStart marks s as a start state
func (b *Builder) AddStart(s StateID) *Builder {
	for _, existing := range b.starts {
		if existing == s {
			return b
		}
	}
	b.starts = append(b.starts, s)
	return b
}

// SetAccepting marks s as an accepting state
func (b *Builder) SetAccepting(s StateID) *Builder {
	if int(s) < len(b.accepting) {
		b.accepting[s] = true
	} else {
		b.pending = append(b.pending, s)
	}
	return b
}

// AddTransition adds a transition on a named predicate. The name is
// resolved to an id later with PathAutomaton.Resolve.
func (b *Builder) AddTransition(from StateID, predicate string, dir Direction, to StateID) *Builder {
	return b.add(from, Transition{Name: predicate, Direction: dir, To: to})
}

// AddResolvedTransition adds a transition on an already known predicate id
func (b *Builder) AddResolvedTransition(from StateID, predicate graph.ObjectID, dir Direction, to StateID) *Builder {
	return b.add(from, Transition{Predicate: predicate, Direction: dir, To: to})
}

func (b *Builder) add(from StateID, t Transition) *Builder {
	for int(from) >= len(b.transitions) {
		// Grow so the transition is kept; Build rejects the dangling state
		b.transitions = append(b.transitions, nil)
	}
	b.transitions[from] = append(b.transitions[from], t)
	return b
}

// Build validates and returns the automaton
func (b *Builder) Build() (*PathAutomaton, error) {
	n := len(b.accepting)
	if n == 0 {
		return nil, fmt.Errorf("%w: no states", ErrMalformedAutomaton)
	}
	if len(b.starts) == 0 {
		return nil, fmt.Errorf("%w: no start state", ErrMalformedAutomaton)
	}
	for _, s := range b.starts {
		if int(s) >= n {
			return nil, fmt.Errorf("%w: start state %d out of range [0..%d)", ErrMalformedAutomaton, s, n)
		}
	}
	if len(b.pending) > 0 {
		return nil, fmt.Errorf("%w: accepting state %d out of range [0..%d)", ErrMalformedAutomaton, b.pending[0], n)
	}
	if len(b.transitions) > n {
		return nil, fmt.Errorf("%w: transition from undeclared state %d", ErrMalformedAutomaton, len(b.transitions)-1)
	}
	for from, ts := range b.transitions {
		for _, t := range ts {
			if int(t.To) >= n {
				return nil, fmt.Errorf("%w: transition %d -> %d targets undeclared state",
					ErrMalformedAutomaton, from, t.To)
			}
			if t.Direction != Forward && t.Direction != Backward {
				return nil, fmt.Errorf("%w: transition %d -> %d has invalid %s",
					ErrMalformedAutomaton, from, t.To, t.Direction)
			}
		}
	}

	a := &PathAutomaton{
		starts:      append([]StateID(nil), b.starts...),
		accepting:   append([]bool(nil), b.accepting...),
		transitions: make([][]Transition, n),
	}
	for s, ts := range b.transitions {
		a.transitions[s] = append([]Transition(nil), ts...)
	}
	return a, nil
}

// Step is one predicate traversal in a Sequence
type Step struct {
	Predicate string
	Direction Direction
}

// OneOrMore accepts paths of one or more predicate edges (p+)
func OneOrMore(predicate string, dir Direction) *PathAutomaton {
	b := NewBuilder().AddStates(2).AddStart(0).SetAccepting(1)
	b.AddTransition(0, predicate, dir, 1)
	b.AddTransition(1, predicate, dir, 1)
	return mustBuild(b)
}

// ZeroOrMore accepts paths of zero or more predicate edges (p*)
func ZeroOrMore(predicate string, dir Direction) *PathAutomaton {
	b := NewBuilder().AddStates(1).AddStart(0).SetAccepting(0)
	b.AddTransition(0, predicate, dir, 0)
	return mustBuild(b)
}

// Sequence accepts exactly the given steps in order (p1/p2/...)
func Sequence(steps ...Step) *PathAutomaton {
	b := NewBuilder().AddStates(len(steps) + 1).AddStart(0).SetAccepting(StateID(len(steps)))
	for i, s := range steps {
		b.AddTransition(StateID(i), s.Predicate, s.Direction, StateID(i+1))
	}
	return mustBuild(b)
}

func mustBuild(b *Builder) *PathAutomaton {
	a, err := b.Build()
	if err != nil {
		panic(err)
	}
	return a
}
