package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbrown/janus-paths/graph/storage"
)

const socialGraph = `
# who likes whom
alice likes bob
bob   likes carol
carol knows dave
`

func TestParseTriples(t *testing.T) {
	triples, err := ParseTriples(strings.NewReader(socialGraph))
	require.NoError(t, err)
	assert.Equal(t, []Triple{
		{"alice", "likes", "bob"},
		{"bob", "likes", "carol"},
		{"carol", "knows", "dave"},
	}, triples)

	_, err = ParseTriples(strings.NewReader("alice likes\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 1")
}

func TestLoadTriples(t *testing.T) {
	store, err := storage.Open(storage.InMemoryOptions())
	require.NoError(t, err)
	defer store.Close()

	triples, err := ParseTriples(strings.NewReader(socialGraph))
	require.NoError(t, err)
	n, err := LoadTriples(store, triples)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	st, err := store.Stats()
	require.NoError(t, err)
	assert.Equal(t, int64(4), st.Nodes)
	assert.Equal(t, int64(3), st.Edges)
	assert.Equal(t, int64(6), st.Names)
}

func TestConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte("db: /tmp/graph\nverbose: true\n"))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/graph", cfg.DB)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, "warn", cfg.LogLevel)

	flags := Config{DB: "flag.db", LogLevel: "debug"}
	merged := cfg.Merge(flags, func(name string) bool { return name == "log-level" })
	assert.Equal(t, "/tmp/graph", merged.DB)
	assert.Equal(t, "debug", merged.LogLevel)

	_, err = ParseConfig([]byte("db: [unclosed"))
	assert.Error(t, err)
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCommands(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "db")
	triples := writeFile(t, dir, "social.txt", socialGraph)

	out, err := run(t, "load", "--db", db, triples)
	require.NoError(t, err)
	assert.Contains(t, out, "Loaded 3 edges")

	t.Run("Predicate", func(t *testing.T) {
		out, err := run(t, "check", "--db", db, "--predicate", "likes", "--from", "alice", "--to", "carol")
		require.NoError(t, err)
		assert.Equal(t, "true\n", out)

		out, err = run(t, "check", "--db", db, "--predicate", "likes", "--from", "carol", "--to", "alice")
		require.NoError(t, err)
		assert.Equal(t, "false\n", out)

		out, err = run(t, "check", "--db", db, "--predicate", "^likes", "--from", "carol", "--to", "alice")
		require.NoError(t, err)
		assert.Equal(t, "true\n", out)
	})

	t.Run("Automaton", func(t *testing.T) {
		path := writeFile(t, dir, "likes-then-knows.yaml", `
states: 3
start: [0]
accept: [2]
transitions:
  - {from: 0, predicate: likes, direction: forward, to: 0}
  - {from: 0, predicate: knows, direction: forward, to: 2}
`)
		out, err := run(t, "check", "--db", db, "--automaton", path, "--from", "alice", "--to", "dave", "--explain")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(out, "true\n"))
		assert.Contains(t, out, "PathCheck(")
		assert.Contains(t, out, "alice => dave")
	})

	t.Run("UnknownNode", func(t *testing.T) {
		out, err := run(t, "check", "--db", db, "--predicate", "likes", "--from", "nobody", "--to", "bob")
		require.NoError(t, err)
		assert.Equal(t, "false\n", out)
	})

	t.Run("Metrics", func(t *testing.T) {
		out, err := run(t, "check", "--db", db, "--predicate", "likes", "--from", "alice", "--to", "bob", "--metrics")
		require.NoError(t, err)
		assert.Contains(t, out, `janus_paths_check_total{result="found"} 1`)
	})

	t.Run("Stats", func(t *testing.T) {
		out, err := run(t, "stats", "--db", db)
		require.NoError(t, err)
		assert.Contains(t, out, "nodes")
		assert.Contains(t, out, "edges")
	})

	t.Run("ConfigFile", func(t *testing.T) {
		cfg := writeFile(t, dir, "pathcheck.yaml", "db: "+db+"\n")
		out, err := run(t, "--config", cfg, "check", "--predicate", "likes", "--from", "alice", "--to", "carol")
		require.NoError(t, err)
		assert.Equal(t, "true\n", out)
	})

	t.Run("MissingPattern", func(t *testing.T) {
		_, err := run(t, "check", "--db", db, "--from", "alice", "--to", "bob")
		assert.Error(t, err)
	})
}

func TestInMemoryLoadAndCheck(t *testing.T) {
	triples := writeFile(t, t.TempDir(), "social.txt", socialGraph)
	out, err := run(t, "check", "--in-memory", "--load", triples,
		"--predicate", "likes", "--star", "--from", "dave", "--to", "dave")
	require.NoError(t, err)
	assert.Equal(t, "true\n", out)
}
