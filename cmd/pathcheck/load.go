package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/wbrown/janus-paths/graph/storage"
)

// Triple is one edge as written in a load file
type Triple struct {
	Subject, Predicate, Object string
}

// loadBatchSize bounds the edges written per badger batch
const loadBatchSize = 10000

func (a *app) loadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load FILE",
		Short: "Load subject predicate object lines into the store",
		Long: `Load reads one edge per line as whitespace separated subject, predicate and
object names. Blank lines and lines starting with # are skipped. Use - to
read standard input.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, closeIn, err := openInput(args[0])
			if err != nil {
				return err
			}
			defer closeIn()

			triples, err := ParseTriples(in)
			if err != nil {
				return err
			}

			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			n, err := LoadTriples(store, triples)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Loaded %s edges from %s\n", humanize.Comma(int64(n)), args[0])
			return nil
		},
	}
}

func openInput(path string) (io.Reader, func(), error) {
	if path == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open input: %w", err)
	}
	return f, func() { f.Close() }, nil
}

// ParseTriples reads load file lines
func ParseTriples(r io.Reader) ([]Triple, error) {
	var triples []Triple
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != 3 {
			return nil, fmt.Errorf("line %d: want subject predicate object, got %d fields", line, len(fields))
		}
		triples = append(triples, Triple{Subject: fields[0], Predicate: fields[1], Object: fields[2]})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read triples: %w", err)
	}
	return triples, nil
}

// LoadTriples interns every name and writes the edges in batches. It
// returns the number of edges written.
func LoadTriples(store *storage.BadgerStore, triples []Triple) (int, error) {
	batch := make([]storage.Edge, 0, min(len(triples), loadBatchSize))
	written := 0
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if _, err := store.AddEdges(batch); err != nil {
			return err
		}
		written += len(batch)
		batch = batch[:0]
		return nil
	}

	for _, t := range triples {
		from, err := store.Intern(t.Subject)
		if err != nil {
			return written, err
		}
		typ, err := store.Intern(t.Predicate)
		if err != nil {
			return written, err
		}
		to, err := store.Intern(t.Object)
		if err != nil {
			return written, err
		}
		batch = append(batch, storage.Edge{Type: typ, From: from, To: to})
		if len(batch) == loadBatchSize {
			if err := flush(); err != nil {
				return written, err
			}
		}
	}
	return written, flush()
}
