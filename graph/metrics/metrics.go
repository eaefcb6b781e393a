// Package metrics exports path evaluation counters to Prometheus. A
// Recorder consumes annotation events, so any check run with an annotated
// context feeds it.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/wbrown/janus-paths/graph/annotations"
)

const namespace = "janus_paths"

// Result label values of ChecksTotal
const (
	ResultFound    = "found"
	ResultNotFound = "not_found"
	ResultError    = "error"
)

// Recorder holds the path check metrics. Safe for concurrent use.
type Recorder struct {
	// ChecksTotal counts completed checks by result
	ChecksTotal *prometheus.CounterVec

	// IndexProbesTotal counts edge index ranges opened
	IndexProbesTotal prometheus.Counter

	// EdgesScannedTotal counts index entries read
	EdgesScannedTotal prometheus.Counter

	// StatesVisited observes the search states reached per check
	StatesVisited prometheus.Histogram

	// CheckDurationSeconds observes the wall time of each check
	CheckDurationSeconds prometheus.Histogram

	// UnboundVariablesTotal counts checks that could not start
	UnboundVariablesTotal prometheus.Counter
}

// NewRecorder creates the metrics and registers them with reg. A nil reg
// leaves them unregistered.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		ChecksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "check",
				Name:      "total",
				Help:      "Completed path checks by result",
			},
			[]string{"result"},
		),
		IndexProbesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "check",
			Name:      "index_probes_total",
			Help:      "Edge index ranges opened by path checks",
		}),
		EdgesScannedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "check",
			Name:      "edges_scanned_total",
			Help:      "Edge index entries read by path checks",
		}),
		StatesVisited: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "check",
			Name:      "states_visited",
			Help:      "Search states reached per path check",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		}),
		CheckDurationSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "check",
			Name:      "duration_seconds",
			Help:      "Wall time of path checks in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		UnboundVariablesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "check",
			Name:      "unbound_variables_total",
			Help:      "Path checks rejected for an unbound endpoint",
		}),
	}
}

// Handle records an annotation event. Events other than check completion
// and unbound variables are ignored.
func (r *Recorder) Handle(event annotations.Event) {
	switch event.Name {
	case annotations.PathCheckComplete:
		result := ResultNotFound
		if _, failed := event.Data["error"]; failed {
			result = ResultError
		} else if found, _ := event.Data["found"].(bool); found {
			result = ResultFound
		}
		r.ChecksTotal.WithLabelValues(result).Inc()
		r.IndexProbesTotal.Add(count(event.Data["index.probes"]))
		r.EdgesScannedTotal.Add(count(event.Data["edges.scanned"]))
		r.StatesVisited.Observe(count(event.Data["states.visited"]))
		r.CheckDurationSeconds.Observe(event.Latency.Seconds())

	case annotations.ErrorUnboundVariable:
		r.UnboundVariablesTotal.Inc()
	}
}

// Handler returns Handle as an annotation handler
func (r *Recorder) Handler() annotations.Handler {
	return r.Handle
}

func count(v interface{}) float64 {
	switch n := v.(type) {
	case uint64:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return 0
}
