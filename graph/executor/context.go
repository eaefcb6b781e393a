package executor

import (
	"time"

	"github.com/wbrown/janus-paths/graph"
	"github.com/wbrown/janus-paths/graph/annotations"
	"github.com/wbrown/janus-paths/graph/automaton"
)

// Context provides clean annotation points for path evaluation tracking.
type Context interface {
	CheckBegin(start, end graph.ObjectID, states int)
	CheckProbe(from SearchState, t automaton.Transition, edgesScanned int)
	CheckComplete(found bool, run PathCheckStats, err error)
	UnboundVariable(err error)

	// Get underlying collector
	Collector() *annotations.Collector
}

// BaseContext provides a no-op implementation with zero overhead.
type BaseContext struct{}

// NewContext creates an appropriate context based on whether annotations are needed.
func NewContext(handler annotations.Handler) Context {
	if handler == nil {
		return BaseContext{}
	}
	return &AnnotatedContext{
		collector: annotations.NewCollector(handler),
	}
}

func (BaseContext) CheckBegin(start, end graph.ObjectID, states int) {}

func (BaseContext) CheckProbe(from SearchState, t automaton.Transition, edgesScanned int) {}

func (BaseContext) CheckComplete(found bool, run PathCheckStats, err error) {}

func (BaseContext) UnboundVariable(err error) {}

func (BaseContext) Collector() *annotations.Collector {
	return nil
}

// AnnotatedContext provides full annotation tracking
type AnnotatedContext struct {
	collector  *annotations.Collector
	checkStart time.Time
}

func (c *AnnotatedContext) CheckBegin(start, end graph.ObjectID, states int) {
	c.checkStart = time.Now()
	c.collector.Add(annotations.Event{
		Name:  annotations.PathCheckBegin,
		Start: c.checkStart,
		Data: map[string]interface{}{
			"start":            start.String(),
			"end":              end.String(),
			"automaton.states": states,
		},
	})
}

func (c *AnnotatedContext) CheckProbe(from SearchState, t automaton.Transition, edgesScanned int) {
	c.collector.Add(annotations.Event{
		Name:  annotations.PathCheckProbe,
		Start: time.Now(),
		Data: map[string]interface{}{
			"node":          from.Node.String(),
			"state":         int(from.State),
			"transition":    t.String(),
			"direction":     t.Direction.String(),
			"edges.scanned": edgesScanned,
		},
	})
}

func (c *AnnotatedContext) CheckComplete(found bool, run PathCheckStats, err error) {
	data := map[string]interface{}{
		"found":          found,
		"index.probes":   run.IndexProbes,
		"edges.scanned":  run.EdgesScanned,
		"states.visited": run.StatesVisited,
		"success":        err == nil,
	}
	if err != nil {
		data["error"] = err.Error()
	}
	c.collector.AddTiming(annotations.PathCheckComplete, c.checkStart, data)

	if err != nil {
		c.collector.Add(annotations.Event{
			Name:  annotations.ErrorBackend,
			Start: time.Now(),
			Data:  map[string]interface{}{"error": err.Error()},
		})
	}
}

func (c *AnnotatedContext) UnboundVariable(err error) {
	c.collector.Add(annotations.Event{
		Name:  annotations.ErrorUnboundVariable,
		Start: time.Now(),
		Data:  map[string]interface{}{"error": err.Error()},
	})
}

func (c *AnnotatedContext) Collector() *annotations.Collector {
	return c.collector
}
