package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/wbrown/janus-paths/graph"
	"github.com/wbrown/janus-paths/graph/annotations"
	"github.com/wbrown/janus-paths/graph/automaton"
	"github.com/wbrown/janus-paths/graph/executor"
	"github.com/wbrown/janus-paths/graph/metrics"
	"github.com/wbrown/janus-paths/graph/storage"
)

type checkOptions struct {
	automatonPath string
	predicate     string
	star          bool
	from, to      string
	loadPath      string
	explain       bool
	metrics       bool
}

func (a *app) checkCmd() *cobra.Command {
	var opts checkOptions
	cmd := &cobra.Command{
		Use:   "check --from NODE --to NODE (--automaton FILE | --predicate NAME)",
		Short: "Check whether a path connects two nodes",
		Long: `Check prints true when a path accepted by the automaton leads from the
--from node to the --to node, and false otherwise.

--predicate NAME is shorthand for NAME+ (or NAME* with --star); prefix the
name with ^ to follow edges backward.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCheck(opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.automatonPath, "automaton", "", "YAML automaton file")
	f.StringVar(&opts.predicate, "predicate", "", "single predicate path")
	f.BoolVar(&opts.star, "star", false, "with --predicate, also accept the empty path")
	f.StringVar(&opts.from, "from", "", "start node name")
	f.StringVar(&opts.to, "to", "", "end node name")
	f.StringVar(&opts.loadPath, "load", "", "load a triples file before checking")
	f.BoolVar(&opts.explain, "explain", false, "print the check and its statistics")
	f.BoolVar(&opts.metrics, "metrics", false, "print the collected metrics")
	cmd.MarkFlagRequired("from")
	cmd.MarkFlagRequired("to")
	cmd.MarkFlagsMutuallyExclusive("automaton", "predicate")
	cmd.MarkFlagsOneRequired("automaton", "predicate")
	return cmd
}

func (a *app) runCheck(opts checkOptions) error {
	pattern, err := buildAutomaton(opts)
	if err != nil {
		return err
	}

	store, err := a.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if opts.loadPath != "" {
		in, closeIn, err := openInput(opts.loadPath)
		if err != nil {
			return err
		}
		triples, err := ParseTriples(in)
		closeIn()
		if err != nil {
			return err
		}
		if _, err := LoadTriples(store, triples); err != nil {
			return err
		}
	}

	resolved, err := pattern.Resolve(store)
	if err != nil {
		return err
	}
	from, err := a.lookupNode(store, opts.from)
	if err != nil {
		return err
	}
	to, err := a.lookupNode(store, opts.to)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	recorder := metrics.NewRecorder(reg)
	handler := recorder.Handler()
	if a.cfg.Verbose {
		handler = annotations.Fanout(handler, annotations.NewOutputFormatter(a.errOut).Handle)
	}

	check := executor.NewPathCheck(store, 0, graph.Object(from), graph.Object(to), resolved,
		executor.WithContext(executor.NewContext(handler)))
	defer check.Close()

	if err := check.Begin(graph.NewBinding(0)); err != nil {
		return err
	}
	found, err := check.Next()
	if err != nil {
		return err
	}

	a.log.WithFields(logrus.Fields{
		"from":      opts.from,
		"to":        opts.to,
		"automaton": resolved.String(),
		"found":     found,
	}).Info("Path check finished")

	fmt.Fprintf(a.out, "%t\n", found)

	if opts.explain {
		fmt.Fprintln(a.out)
		check.Analyze(a.out, 0)
		fmt.Fprintln(a.out)
		fmt.Fprint(a.out, executor.FormatStats(executor.NamedStats{
			Name:  fmt.Sprintf("%s => %s", opts.from, opts.to),
			Stats: check.Stats(),
		}))
	}
	if opts.metrics {
		return writeMetrics(a, reg)
	}
	return nil
}

// buildAutomaton loads the automaton file or builds the single predicate path
func buildAutomaton(opts checkOptions) (*automaton.PathAutomaton, error) {
	if opts.automatonPath != "" {
		f, err := os.Open(opts.automatonPath)
		if err != nil {
			return nil, fmt.Errorf("open automaton: %w", err)
		}
		defer f.Close()
		return automaton.LoadYAML(f)
	}

	name, dir := opts.predicate, automaton.Forward
	if strings.HasPrefix(name, "^") {
		name, dir = name[1:], automaton.Backward
	}
	if name == "" {
		return nil, fmt.Errorf("empty predicate")
	}
	if opts.star {
		return automaton.ZeroOrMore(name, dir), nil
	}
	return automaton.OneOrMore(name, dir), nil
}

// lookupNode maps a node name to its id. Unknown names map to the null id,
// which is never a node, so checks from them find no path.
func (a *app) lookupNode(store *storage.BadgerStore, name string) (graph.ObjectID, error) {
	id, ok, err := store.Lookup(name)
	if err != nil {
		return graph.NullObjectID, err
	}
	if !ok {
		a.log.WithField("node", name).Warn("Unknown node")
		return graph.NullObjectID, nil
	}
	return id, nil
}

func writeMetrics(a *app, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	sort.Slice(families, func(i, j int) bool { return families[i].GetName() < families[j].GetName() })

	fmt.Fprintln(a.out)
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			var labels []string
			for _, lp := range m.GetLabel() {
				labels = append(labels, fmt.Sprintf("%s=%q", lp.GetName(), lp.GetValue()))
			}
			name := mf.GetName()
			if len(labels) > 0 {
				name += "{" + strings.Join(labels, ",") + "}"
			}
			switch {
			case m.GetCounter() != nil:
				fmt.Fprintf(a.out, "%s %g\n", name, m.GetCounter().GetValue())
			case m.GetHistogram() != nil:
				h := m.GetHistogram()
				fmt.Fprintf(a.out, "%s count=%d sum=%g\n", name, h.GetSampleCount(), h.GetSampleSum())
			}
		}
	}
	return nil
}
