package metrics

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbrown/janus-paths/graph"
	"github.com/wbrown/janus-paths/graph/annotations"
	"github.com/wbrown/janus-paths/graph/automaton"
	"github.com/wbrown/janus-paths/graph/executor"
	"github.com/wbrown/janus-paths/graph/storage"
)

func TestRecorderHandle(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg)

	r.Handle(annotations.Event{Name: annotations.PathCheckComplete, Latency: time.Millisecond,
		Data: map[string]interface{}{
			"found": true, "index.probes": uint64(2), "edges.scanned": uint64(3), "states.visited": uint64(4),
		}})
	r.Handle(annotations.Event{Name: annotations.PathCheckComplete,
		Data: map[string]interface{}{
			"found": false, "index.probes": uint64(1), "edges.scanned": uint64(0), "states.visited": uint64(1),
		}})
	r.Handle(annotations.Event{Name: annotations.PathCheckComplete,
		Data: map[string]interface{}{"found": false, "error": errors.New("boom").Error()}})
	r.Handle(annotations.Event{Name: annotations.ErrorUnboundVariable})
	r.Handle(annotations.Event{Name: annotations.PathCheckProbe})

	assert.Equal(t, 1.0, testutil.ToFloat64(r.ChecksTotal.WithLabelValues(ResultFound)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.ChecksTotal.WithLabelValues(ResultNotFound)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.ChecksTotal.WithLabelValues(ResultError)))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.IndexProbesTotal))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.EdgesScannedTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.UnboundVariablesTotal))

	expected := `
# HELP janus_paths_check_unbound_variables_total Path checks rejected for an unbound endpoint
# TYPE janus_paths_check_unbound_variables_total counter
janus_paths_check_unbound_variables_total 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"janus_paths_check_unbound_variables_total"))
}

func TestRecorderUnregistered(t *testing.T) {
	r := NewRecorder(nil)
	r.Handle(annotations.Event{Name: annotations.ErrorUnboundVariable})
	assert.Equal(t, 1.0, testutil.ToFloat64(r.UnboundVariablesTotal))
}

func TestRecorderFromPathCheck(t *testing.T) {
	store, err := storage.Open(storage.InMemoryOptions())
	require.NoError(t, err)
	defer store.Close()

	likes, _ := store.Intern("likes")
	a, _ := store.Intern("a")
	b, _ := store.Intern("b")
	_, err = store.AddEdge(likes, a, b)
	require.NoError(t, err)

	pattern, err := automaton.OneOrMore("likes", automaton.Forward).Resolve(store)
	require.NoError(t, err)

	r := NewRecorder(prometheus.NewRegistry())
	check := executor.NewPathCheck(store, 0, graph.Object(a), graph.Object(b), pattern,
		executor.WithContext(executor.NewContext(r.Handler())))
	require.NoError(t, check.Begin(graph.NewBinding(0)))
	found, err := check.Next()
	require.NoError(t, err)
	require.True(t, found)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.ChecksTotal.WithLabelValues(ResultFound)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.IndexProbesTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.EdgesScannedTotal))
}
