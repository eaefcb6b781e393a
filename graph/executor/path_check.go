package executor

import (
	"fmt"
	"io"
	"strings"

	"github.com/wbrown/janus-paths/graph"
	"github.com/wbrown/janus-paths/graph/automaton"
	"github.com/wbrown/janus-paths/graph/storage"
)

// PathCheck decides whether a path accepted by an automaton connects two
// nodes. Both endpoints are known when the check begins: they are either
// constants or variables already bound by an earlier operator.
//
// The search is a breadth-first search over (node, automaton state) pairs.
// Neighbors are produced by scanning the forward or backward edge index one
// transition at a time, and the open scan survives between calls to Next,
// so a check never materializes a node's full neighborhood.
//
// Next returns true at most once per Begin/Reset: this is an existence
// check, not an enumeration of paths.
type PathCheck struct {
	// Determined in the constructor
	index     EdgeIndex
	pathVar   graph.VarID
	start     graph.ID
	end       graph.ID
	automaton *automaton.PathAutomaton
	ctx       Context

	// Determined in Begin
	begun         bool
	startObjectID graph.ObjectID
	endObjectID   graph.ObjectID
	isFirst       bool

	// BFS structures
	visited visitedSet
	open    pendingQueue

	// Expansion of the state at the front of open
	phase       checkPhase
	transition  int // next transition of the front state to scan
	active      automaton.Transition
	activeFrom  SearchState
	activeRange scanRange
	iter        storage.Iterator
	iterEdges   int

	// Statistics
	stats    PathCheckStats
	runStart PathCheckStats
}

// checkPhase tracks the resumable scan between calls to Next
type checkPhase uint8

const (
	phaseIdle      checkPhase = iota // no scan open, pick the next transition
	phaseScanning                    // iter holds the scan of active
	phaseExhausted                   // answer delivered, Next returns false
)

// PathCheckStats are counters accumulated over every run of a check
type PathCheckStats struct {
	Runs          uint64 // Begin and Reset calls that started a search
	IndexProbes   uint64 // edge index ranges opened
	EdgesScanned  uint64 // index entries read
	StatesVisited uint64 // search states inserted into the visited set
	ResultsFound  uint64 // runs that found a path
}

func (s PathCheckStats) sub(o PathCheckStats) PathCheckStats {
	return PathCheckStats{
		Runs:          s.Runs - o.Runs,
		IndexProbes:   s.IndexProbes - o.IndexProbes,
		EdgesScanned:  s.EdgesScanned - o.EdgesScanned,
		StatesVisited: s.StatesVisited - o.StatesVisited,
		ResultsFound:  s.ResultsFound - o.ResultsFound,
	}
}

// PathCheckOption configures a PathCheck
type PathCheckOption func(*PathCheck)

// WithContext attaches an annotation context
func WithContext(ctx Context) PathCheckOption {
	return func(p *PathCheck) {
		if ctx != nil {
			p.ctx = ctx
		}
	}
}

// NewPathCheck creates a check for a path from start to end accepted by a.
// The automaton must have its predicates resolved against the store that
// backs index. pathVar names the path in the query; a check never binds it.
func NewPathCheck(
	index EdgeIndex,
	pathVar graph.VarID,
	start, end graph.ID,
	a *automaton.PathAutomaton,
	opts ...PathCheckOption,
) *PathCheck {
	if index == nil {
		panic("executor: NewPathCheck with nil index")
	}
	if a == nil {
		panic("executor: NewPathCheck with nil automaton")
	}

	p := &PathCheck{
		index:     index,
		pathVar:   pathVar,
		start:     start,
		end:       end,
		automaton: a,
		ctx:       BaseContext{},
		phase:     phaseExhausted,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Begin resolves both endpoints against parent and starts a new search.
// An unbound endpoint leaves the check unstarted.
func (p *PathCheck) Begin(parent *graph.Binding) error {
	p.begun = false
	if err := p.clear(); err != nil {
		return err
	}

	start, err := parent.Resolve(p.start)
	if err != nil {
		err = fmt.Errorf("path check start: %w", err)
		p.ctx.UnboundVariable(err)
		return err
	}
	end, err := parent.Resolve(p.end)
	if err != nil {
		err = fmt.Errorf("path check end: %w", err)
		p.ctx.UnboundVariable(err)
		return err
	}
	p.startObjectID = start
	p.endObjectID = end
	p.begun = true

	p.restart()
	return nil
}

// Reset starts the search over from the endpoints resolved by Begin
func (p *PathCheck) Reset() error {
	if !p.begun {
		return ErrNotBegun
	}
	if err := p.clear(); err != nil {
		return err
	}
	p.restart()
	return nil
}

// clear closes the open scan and empties the search structures. The
// structures are emptied even when closing the scan fails.
func (p *PathCheck) clear() error {
	err := p.closeScan()
	p.visited.reset()
	p.open.reset()
	p.phase = phaseExhausted
	return err
}

func (p *PathCheck) restart() {
	p.stats.Runs++
	p.runStart = p.stats

	for _, s := range p.automaton.StartStates() {
		p.push(SearchState{Node: p.startObjectID, State: s})
	}

	p.isFirst = true
	p.transition = 0
	p.phase = phaseIdle
	p.ctx.CheckBegin(p.startObjectID, p.endObjectID, p.automaton.NumStates())
}

// push records a newly reached state and queues it for expansion. It
// reports whether the state was new.
func (p *PathCheck) push(s SearchState) bool {
	h, inserted := p.visited.insert(s)
	if inserted {
		p.open.push(h)
		p.stats.StatesVisited++
	}
	return inserted
}

// StepOutcome is the result of one unit of search work
type StepOutcome uint8

const (
	StepPending   StepOutcome = iota // the search continues
	StepFound                        // a path was confirmed
	StepExhausted                    // no path exists, or the answer was already given
)

// Next returns true the first time a path is confirmed and false on every
// other call. Errors from the index abort the check.
func (p *PathCheck) Next() (bool, error) {
	for {
		outcome, err := p.Step()
		if err != nil {
			return false, err
		}
		switch outcome {
		case StepFound:
			return true, nil
		case StepExhausted:
			return false, nil
		}
	}
}

// Step performs one bounded unit of the search: reading one index entry,
// opening the scan of one transition, or retiring one expanded state.
// Callers that must bound the work done per call drive the check with
// Step instead of Next; the open scan is kept between calls.
func (p *PathCheck) Step() (StepOutcome, error) {
	if !p.begun {
		return StepExhausted, ErrNotBegun
	}

	switch p.phase {
	case phaseExhausted:
		return StepExhausted, nil
	case phaseScanning:
		return p.advance()
	}

	if p.isFirst {
		p.isFirst = false
		exists, err := p.index.HasNode(p.startObjectID)
		if err != nil {
			return p.fail(fmt.Errorf("path check: %w", err))
		}
		if !exists {
			return p.finish(false)
		}
		// The empty path reaches end only when it is the start node
		if p.startObjectID == p.endObjectID && p.automaton.AcceptsEmpty() {
			return p.finish(true)
		}
		return StepPending, nil
	}

	if p.open.empty() {
		return p.finish(false)
	}

	current := p.visited.get(p.open.front())
	transitions := p.automaton.Transitions(current.State)
	if p.transition < len(transitions) {
		t := transitions[p.transition]
		p.transition++
		if err := p.openScan(current, t); err != nil {
			return p.fail(err)
		}
		return StepPending, nil
	}

	// Every transition of the front state has been scanned
	p.open.pop()
	p.transition = 0
	return StepPending, nil
}

// openScan opens the index range holding the edges t can follow from
// the current state
func (p *PathCheck) openScan(from SearchState, t automaton.Transition) error {
	r := scanRangeFor(t, from.Node)
	it, err := r.open(p.index)
	if err != nil {
		return fmt.Errorf("path check: scan %v for %s from %s: %w", r.index, t, from, err)
	}
	p.stats.IndexProbes++
	p.iter = it
	p.iterEdges = 0
	p.active = t
	p.activeFrom = from
	p.activeRange = r
	p.phase = phaseScanning
	return nil
}

// advance reads one entry of the open scan. A new state at the end node
// in an accepting automaton state confirms the path without reading the
// rest of the scan. An exhausted scan is closed.
func (p *PathCheck) advance() (StepOutcome, error) {
	if !p.iter.Next() {
		if err := p.closeScan(); err != nil {
			return p.fail(err)
		}
		return StepPending, nil
	}

	e, err := p.iter.Edge()
	if err != nil {
		return p.fail(fmt.Errorf("path check: read %v: %w", p.activeRange.index, err))
	}
	p.stats.EdgesScanned++
	p.iterEdges++

	next := SearchState{Node: p.activeRange.candidate(e), State: p.active.To}
	if p.push(next) && next.Node == p.endObjectID && p.automaton.IsAccepting(next.State) {
		return p.finish(true)
	}
	return StepPending, nil
}

// closeScan releases the open scan, if any
func (p *PathCheck) closeScan() error {
	if p.iter == nil {
		return nil
	}
	err := p.iter.Close()
	p.iter = nil
	p.ctx.CheckProbe(p.activeFrom, p.active, p.iterEdges)
	if p.phase == phaseScanning {
		p.phase = phaseIdle
	}
	if err != nil {
		return fmt.Errorf("path check: close %v scan for %s from %s: %w",
			p.activeRange.index, p.active, p.activeFrom, err)
	}
	return nil
}

func (p *PathCheck) finish(found bool) (StepOutcome, error) {
	if err := p.closeScan(); err != nil {
		return p.fail(err)
	}
	p.phase = phaseExhausted
	p.ctx.CheckComplete(found, p.stats.sub(p.runStart), nil)
	if !found {
		return StepExhausted, nil
	}
	p.stats.ResultsFound++
	return StepFound, nil
}

func (p *PathCheck) fail(err error) (StepOutcome, error) {
	// The scan error, if any, is secondary to err
	_ = p.closeScan()
	p.phase = phaseExhausted
	p.ctx.CheckComplete(false, p.stats.sub(p.runStart), err)
	return StepExhausted, err
}

// AssignNulls is a no-op: a check confirms a path but binds nothing,
// including the path variable.
func (p *PathCheck) AssignNulls() {}

// Analyze writes the check and its statistics
func (p *PathCheck) Analyze(w io.Writer, indent int) {
	fmt.Fprintf(w, "%sPathCheck(path: %s, start: %s, end: %s, index probes: %d, found: %d)\n",
		strings.Repeat(" ", indent), p.pathVar, p.start, p.end,
		p.stats.IndexProbes, p.stats.ResultsFound)
}

// Stats returns the counters accumulated over every run
func (p *PathCheck) Stats() PathCheckStats {
	return p.stats
}

// Visited returns the number of search states reached by the current run
func (p *PathCheck) Visited() int {
	return p.visited.len()
}

// Pending returns the number of states waiting for expansion
func (p *PathCheck) Pending() int {
	return p.open.len()
}

// Scanning reports whether an index scan is open between calls to Next
func (p *PathCheck) Scanning() bool {
	return p.iter != nil
}

// Close releases the open scan and the search structures. The check can
// be started again with Begin.
func (p *PathCheck) Close() error {
	err := p.clear()
	p.visited = visitedSet{}
	p.open = pendingQueue{}
	return err
}
