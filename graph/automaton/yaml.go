package automaton

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wbrown/janus-paths/graph"
)

// Definition is the YAML form of an automaton:
//
//	states: 2
//	start: [0]
//	accept: [1]
//	transitions:
//	  - {from: 0, predicate: likes, to: 1}
//	  - {from: 1, predicate: likes, direction: forward, to: 1}
//
// A predicate written as ^name is traversed backward. A predicate written
// as #N is the already resolved predicate id N.
type Definition struct {
	States      int                    `yaml:"states"`
	Start       []StateID              `yaml:"start"`
	Accept      []StateID              `yaml:"accept"`
	Transitions []TransitionDefinition `yaml:"transitions"`
}

// TransitionDefinition is one transition of a Definition
type TransitionDefinition struct {
	From      StateID `yaml:"from"`
	Predicate string  `yaml:"predicate"`
	Direction string  `yaml:"direction,omitempty"`
	To        StateID `yaml:"to"`
}

// ParseYAML builds an automaton from its YAML definition
func ParseYAML(data []byte) (*PathAutomaton, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("parse automaton: %w", err)
	}
	return def.Build()
}

// LoadYAML reads and builds an automaton definition
func LoadYAML(r io.Reader) (*PathAutomaton, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read automaton: %w", err)
	}
	return ParseYAML(data)
}

// Build validates the definition and returns the automaton
func (d Definition) Build() (*PathAutomaton, error) {
	b := NewBuilder().AddStates(d.States)
	for _, s := range d.Start {
		b.AddStart(s)
	}
	for _, s := range d.Accept {
		b.SetAccepting(s)
	}
	for i, t := range d.Transitions {
		name := strings.TrimSpace(t.Predicate)
		dir, err := ParseDirection(t.Direction)
		if err != nil {
			return nil, fmt.Errorf("%w: transition %d: %v", ErrMalformedAutomaton, i, err)
		}
		if strings.HasPrefix(name, "^") {
			if strings.TrimSpace(t.Direction) != "" && dir == Forward {
				return nil, fmt.Errorf("%w: transition %d: %s contradicts direction %s",
					ErrMalformedAutomaton, i, name, t.Direction)
			}
			name = strings.TrimPrefix(name, "^")
			dir = Backward
		}
		if name == "" {
			return nil, fmt.Errorf("%w: transition %d has no predicate", ErrMalformedAutomaton, i)
		}
		if id, ok := parseResolved(name); ok {
			b.AddResolvedTransition(t.From, id, dir, t.To)
			continue
		}
		b.AddTransition(t.From, name, dir, t.To)
	}
	return b.Build()
}

// Definition returns the YAML form of the automaton
func (a *PathAutomaton) Definition() Definition {
	def := Definition{
		States: a.NumStates(),
		Start:  append([]StateID(nil), a.starts...),
	}
	for s, ok := range a.accepting {
		if ok {
			def.Accept = append(def.Accept, StateID(s))
		}
	}
	for s, ts := range a.transitions {
		for _, t := range ts {
			def.Transitions = append(def.Transitions, TransitionDefinition{
				From:      StateID(s),
				Predicate: predicateLabel(t),
				Direction: t.Direction.String(),
				To:        t.To,
			})
		}
	}
	return def
}

// MarshalYAML encodes the automaton in the form ParseYAML reads
func (a *PathAutomaton) MarshalYAML() (interface{}, error) {
	return a.Definition(), nil
}

// predicateLabel is the definition form of a transition's predicate: its
// name, or #N for a transition built on a resolved id
func predicateLabel(t Transition) string {
	if t.Name != "" {
		return t.Name
	}
	return "#" + strconv.FormatUint(uint64(t.Predicate), 10)
}

func parseResolved(name string) (graph.ObjectID, bool) {
	if !strings.HasPrefix(name, "#") {
		return graph.NullObjectID, false
	}
	n, err := strconv.ParseUint(name[1:], 10, 64)
	if err != nil {
		return graph.NullObjectID, false
	}
	return graph.ObjectID(n), true
}
