// Package annotations provides a clean, low-overhead annotation system for
// tracking path evaluation metrics and debugging information.
package annotations

import (
	"sync"
	"time"
)

// Event name constants following hierarchical naming pattern
const (
	// Existence check lifecycle
	PathCheckBegin    = "path/check.begin"
	PathCheckProbe    = "path/check.probe"
	PathCheckComplete = "path/check.complete"

	// Errors
	ErrorUnboundVariable = "error/unbound-variable"
	ErrorBackend         = "error/backend"
)

// Event represents a single annotation event during evaluation.
type Event struct {
	Name    string                 // Event name using hierarchical constants above
	Start   time.Time              // Start timestamp
	End     time.Time              // End timestamp
	Latency time.Duration          // Duration (End - Start)
	Data    map[string]interface{} // Additional event-specific data
}

// Handler processes annotation events as they occur.
type Handler func(event Event)

// Fanout returns a handler that passes every event to each non-nil handler
func Fanout(handlers ...Handler) Handler {
	var live []Handler
	for _, h := range handlers {
		if h != nil {
			live = append(live, h)
		}
	}
	switch len(live) {
	case 0:
		return nil
	case 1:
		return live[0]
	}
	return func(event Event) {
		for _, h := range live {
			h(event)
		}
	}
}

// DefaultEventLimit is the number of events a collector retains by default
const DefaultEventLimit = 4096

// Collector accumulates events during evaluation. Only the most recent
// events up to the limit are retained; the handler sees every event.
// A collector shared by a check that runs once per row keeps a bounded
// window of the latest runs.
type Collector struct {
	enabled bool
	handler Handler

	mu     sync.Mutex
	events []Event
	limit  int
	total  int
}

// NewCollector creates a new annotation collector.
func NewCollector(handler Handler) *Collector {
	return &Collector{
		enabled: handler != nil,
		handler: handler,
		events:  make([]Event, 0, 16),
		limit:   DefaultEventLimit,
	}
}

// SetLimit sets how many recent events are retained. Zero or less retains
// every event.
func (c *Collector) SetLimit(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.limit = n
}

// Handler returns the underlying event handler.
func (c *Collector) Handler() Handler {
	return c.handler
}

// Add records a new event.
// Thread-safe for concurrent access.
func (c *Collector) Add(event Event) {
	if !c.enabled {
		return
	}

	c.mu.Lock()
	c.events = append(c.events, event)
	c.total++
	// Compact once the buffer holds twice the retained window
	if c.limit > 0 && len(c.events) >= 2*c.limit {
		n := copy(c.events, c.events[len(c.events)-c.limit:])
		clear(c.events[n:])
		c.events = c.events[:n]
	}
	c.mu.Unlock()

	// Call handler outside the lock to avoid deadlocks
	c.handler(event)
}

// AddTiming records an event that started at start and ends now.
func (c *Collector) AddTiming(name string, start time.Time, data map[string]interface{}) {
	if !c.enabled {
		return
	}

	end := time.Now()
	c.Add(Event{
		Name:    name,
		Start:   start,
		End:     end,
		Latency: end.Sub(start),
		Data:    data,
	})
}

// Events returns the retained events, oldest first.
func (c *Collector) Events() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	retained := c.retained()
	eventsCopy := make([]Event, len(retained))
	copy(eventsCopy, retained)
	return eventsCopy
}

// Dropped returns how many events were discarded to respect the limit
func (c *Collector) Dropped() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total - len(c.retained())
}

func (c *Collector) retained() []Event {
	if c.limit > 0 && len(c.events) > c.limit {
		return c.events[len(c.events)-c.limit:]
	}
	return c.events
}

// Reset clears the collector for reuse.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.events)
	c.events = c.events[:0]
	c.total = 0
}
