// Command pathcheck loads edge triples into a badger store and checks
// whether property paths connect two nodes.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/wbrown/janus-paths/graph/storage"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

// app carries the settings shared by every subcommand
type app struct {
	out, errOut io.Writer
	configPath  string
	cfg         Config
	log         *logrus.Logger
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut, cfg: DefaultConfig()}

	root := &cobra.Command{
		Use:   "pathcheck",
		Short: "Property path existence checks over a badger graph store",
		Long: `pathcheck stores edges as (predicate, from, to) index entries and answers
whether a path matching an automaton connects two nodes.

Automata are YAML files:

  states: 2
  start: [0]
  accept: [1]
  transitions:
    - {from: 0, predicate: likes, direction: forward, to: 1}
    - {from: 1, predicate: likes, direction: forward, to: 1}`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.configure(cmd)
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "YAML config file")
	flags.StringVar(&a.cfg.DB, "db", a.cfg.DB, "database directory")
	flags.BoolVar(&a.cfg.InMemory, "in-memory", a.cfg.InMemory, "use an in-memory store")
	flags.BoolVar(&a.cfg.Verbose, "verbose", a.cfg.Verbose, "print evaluation annotations")
	flags.StringVar(&a.cfg.LogLevel, "log-level", a.cfg.LogLevel, "log level (debug, info, warn, error)")

	root.AddCommand(a.loadCmd(), a.checkCmd(), a.statsCmd())
	return root
}

// configure merges the config file under the flags set on the command line
func (a *app) configure(cmd *cobra.Command) error {
	if a.configPath != "" {
		fileCfg, err := LoadConfig(a.configPath)
		if err != nil {
			return err
		}
		a.cfg = fileCfg.Merge(a.cfg, cmd.Flags().Changed)
	}

	level, err := logrus.ParseLevel(a.cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	a.log = logrus.New()
	a.log.SetOutput(a.errOut)
	a.log.SetLevel(level)
	return nil
}

// openStore opens the configured store
func (a *app) openStore() (*storage.BadgerStore, error) {
	var opts storage.Options
	if a.cfg.InMemory {
		opts = storage.InMemoryOptions()
	} else {
		if a.cfg.DB == "" {
			return nil, fmt.Errorf("no database: set --db or --in-memory")
		}
		opts = storage.DefaultOptions(a.cfg.DB)
	}
	opts.Logger = a.log.WithField("db", a.cfg.DB)
	return storage.Open(opts)
}
