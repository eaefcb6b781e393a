package storage

import (
	"bytes"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/sirupsen/logrus"
	"github.com/wbrown/janus-paths/graph"
)

var sequenceKey = []byte("\xffseq/objects")

// Options configures a BadgerStore
type Options struct {
	Dir        string
	InMemory   bool
	SyncWrites bool

	BlockCacheSize int64
	IndexCacheSize int64

	// IDLease is how many object ids are reserved from disk at a time
	IDLease uint64

	// Logger receives store diagnostics and badger's own log output.
	// Nil disables logging.
	Logger *logrus.Entry
}

// DefaultOptions returns options for an on-disk store in dir
func DefaultOptions(dir string) Options {
	return Options{
		Dir:            dir,
		BlockCacheSize: 256 << 20, // 256MB block cache for faster reads
		IndexCacheSize: 100 << 20, // 100MB index cache
		IDLease:        1000,
	}
}

// InMemoryOptions returns options for a store that lives only in memory
func InMemoryOptions() Options {
	opts := DefaultOptions("")
	opts.InMemory = true
	opts.BlockCacheSize = 16 << 20
	opts.IndexCacheSize = 0
	return opts
}

// BadgerStore keeps the graph in BadgerDB. Each edge is written to the
// forward and backward indexes so that both traversal directions are
// prefix scans.
type BadgerStore struct {
	db      *badger.DB
	seq     *badger.Sequence
	encoder KeyEncoder
	log     *logrus.Entry

	mu     sync.Mutex // serializes catalog writes and Close
	closed atomic.Bool
}

// Open opens or creates a store
func Open(opts Options) (*BadgerStore, error) {
	log := opts.Logger
	if log == nil {
		quiet := logrus.New()
		quiet.SetOutput(io.Discard)
		log = logrus.NewEntry(quiet)
	}
	log = log.WithField("component", "storage")

	bopts := badger.DefaultOptions(opts.Dir)
	if opts.InMemory {
		bopts = bopts.WithInMemory(true)
	}
	bopts.SyncWrites = opts.SyncWrites
	bopts.BlockCacheSize = opts.BlockCacheSize
	bopts.IndexCacheSize = opts.IndexCacheSize
	if opts.BlockCacheSize == 0 {
		// Badger refuses compressed tables without a block cache
		bopts.Compression = options.None
	}
	if opts.Logger != nil {
		bopts.Logger = badgerLogger{log.WithField("engine", "badger")}
	} else {
		bopts.Logger = nil
	}

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}

	lease := opts.IDLease
	if lease == 0 {
		lease = 1000
	}
	seq, err := db.GetSequence(sequenceKey, lease)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open id sequence: %w", err)
	}

	log.WithFields(logrus.Fields{
		"dir":       opts.Dir,
		"in_memory": opts.InMemory,
	}).Info("Store opened")

	return &BadgerStore{
		db:  db,
		seq: seq,
		log: log,
	}, nil
}

// Close releases the id sequence and closes the database. Closing twice
// is a no-op.
func (s *BadgerStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}

	var firstErr error
	if err := s.seq.Release(); err != nil {
		firstErr = fmt.Errorf("release id sequence: %w", err)
	}
	if err := s.db.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("close badger: %w", err)
	}
	s.log.Info("Store closed")
	return firstErr
}

func (s *BadgerStore) ensureOpen() error {
	if s.closed.Load() {
		return ErrClosed
	}
	return nil
}

// nextID allocates a fresh object id. Ids start at 1.
func (s *BadgerStore) nextID() (graph.ObjectID, error) {
	n, err := s.seq.Next()
	if err != nil {
		return graph.NullObjectID, fmt.Errorf("allocate id: %w", err)
	}
	return graph.ObjectID(n + 1), nil
}

// Intern returns the id of a name, allocating one on first use
func (s *BadgerStore) Intern(name string) (graph.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, found, err := s.Lookup(name)
	if err != nil || found {
		return id, err
	}

	id, err = s.nextID()
	if err != nil {
		return graph.NullObjectID, err
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(nameKey(name), encodeID(id)); err != nil {
			return err
		}
		return txn.Set(s.encoder.EncodePrefix(IDNameIndex, id), []byte(name))
	})
	if err != nil {
		return graph.NullObjectID, fmt.Errorf("intern %q: %w", name, err)
	}
	return id, nil
}

// Lookup returns the id of a name without allocating one
func (s *BadgerStore) Lookup(name string) (graph.ObjectID, bool, error) {
	if err := s.ensureOpen(); err != nil {
		return graph.NullObjectID, false, err
	}

	var id graph.ObjectID
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		id, err = lookupName(txn, name)
		return err
	})
	if err != nil {
		return graph.NullObjectID, false, fmt.Errorf("lookup %q: %w", name, err)
	}
	return id, !id.IsNull(), nil
}

func lookupName(txn *badger.Txn, name string) (graph.ObjectID, error) {
	item, err := txn.Get(nameKey(name))
	if err == badger.ErrKeyNotFound {
		return graph.NullObjectID, nil
	}
	if err != nil {
		return graph.NullObjectID, err
	}
	var id graph.ObjectID
	err = item.Value(func(val []byte) error {
		if len(val) != idSize {
			return fmt.Errorf("name %q: corrupt id of %d bytes", name, len(val))
		}
		id = decodeID(val)
		return nil
	})
	return id, err
}

// Name returns the name an id was interned under
func (s *BadgerStore) Name(id graph.ObjectID) (string, error) {
	if err := s.ensureOpen(); err != nil {
		return "", err
	}

	var name string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(s.encoder.EncodePrefix(IDNameIndex, id))
		if err == badger.ErrKeyNotFound {
			return fmt.Errorf("name of %s: %w", id, ErrNotFound)
		}
		if err != nil {
			return err
		}
		val, err := item.ValueCopy(nil)
		name = string(val)
		return err
	})
	return name, err
}

// AddNode records a node in the node index
func (s *BadgerStore) AddNode(id graph.ObjectID) error {
	if id.IsNull() {
		return fmt.Errorf("add node: %w", ErrInvalidEdge)
	}
	if err := s.ensureOpen(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(s.encoder.EncodePrefix(NodeIndex, id), nil)
	})
}

// HasNode reports whether id is in the node index
func (s *BadgerStore) HasNode(id graph.ObjectID) (bool, error) {
	if err := s.ensureOpen(); err != nil {
		return false, err
	}
	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(s.encoder.EncodePrefix(NodeIndex, id))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		found = err == nil
		return err
	})
	if err != nil {
		return false, fmt.Errorf("lookup node %s: %w", id, err)
	}
	return found, nil
}

// AddEdge stores an edge and its endpoints, returning the new edge id
func (s *BadgerStore) AddEdge(typ, from, to graph.ObjectID) (graph.ObjectID, error) {
	ids, err := s.AddEdges([]Edge{{Type: typ, From: from, To: to}})
	if err != nil {
		return graph.NullObjectID, err
	}
	return ids[0], nil
}

// AddEdges stores many edges in one write batch. Edge ids in the input are
// ignored; the allocated ids are returned in input order.
func (s *BadgerStore) AddEdges(edges []Edge) ([]graph.ObjectID, error) {
	if err := s.ensureOpen(); err != nil {
		return nil, err
	}
	for _, e := range edges {
		if err := e.validate(); err != nil {
			return nil, err
		}
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	ids := make([]graph.ObjectID, len(edges))
	for i, e := range edges {
		id, err := s.nextID()
		if err != nil {
			return nil, err
		}
		e.ID = id
		ids[i] = id
		if err := s.writeEdge(wb, e); err != nil {
			return nil, fmt.Errorf("write edge %s: %w", e, err)
		}
	}

	if err := wb.Flush(); err != nil {
		return nil, fmt.Errorf("flush edges: %w", err)
	}
	s.log.WithField("edges", len(edges)).Debug("Edges added")
	return ids, nil
}

func (s *BadgerStore) writeEdge(wb *badger.WriteBatch, e Edge) error {
	writes := [][2][]byte{
		{s.encoder.EncodePrefix(NodeIndex, e.From), nil},
		{s.encoder.EncodePrefix(NodeIndex, e.To), nil},
		{s.encoder.EncodeKey(TypeFromTo, e), nil},
		{s.encoder.EncodeKey(ToTypeFrom, e), nil},
		{s.encoder.EncodeKey(EdgeTable, e), encodeEdgeValue(e)},
	}
	for _, w := range writes {
		if err := wb.Set(w[0], w[1]); err != nil {
			return err
		}
	}
	return nil
}

// GetEdge returns an edge by id
func (s *BadgerStore) GetEdge(id graph.ObjectID) (Edge, error) {
	if err := s.ensureOpen(); err != nil {
		return Edge{}, err
	}
	var e Edge
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		e, err = s.getEdge(txn, id)
		return err
	})
	return e, err
}

func (s *BadgerStore) getEdge(txn *badger.Txn, id graph.ObjectID) (Edge, error) {
	item, err := txn.Get(s.encoder.EncodeKey(EdgeTable, Edge{ID: id}))
	if err == badger.ErrKeyNotFound {
		return Edge{}, fmt.Errorf("edge %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Edge{}, err
	}
	var e Edge
	err = item.Value(func(val []byte) error {
		e, err = decodeEdgeValue(id, val)
		return err
	})
	return e, err
}

// DeleteEdge removes an edge from every index. Its endpoints stay in the
// node index.
func (s *BadgerStore) DeleteEdge(id graph.ObjectID) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		e, err := s.getEdge(txn, id)
		if err != nil {
			return err
		}
		for _, idx := range []IndexType{TypeFromTo, ToTypeFrom, EdgeTable} {
			if err := txn.Delete(s.encoder.EncodeKey(idx, e)); err != nil {
				return fmt.Errorf("failed to delete from %v index: %w", idx, err)
			}
		}
		return nil
	})
}

// Scan returns an iterator over keys in [start, end). A nil end scans to
// the end of the index.
func (s *BadgerStore) Scan(index IndexType, start, end []byte) (Iterator, error) {
	if err := s.ensureOpen(); err != nil {
		return nil, err
	}
	if len(start) == 0 || IndexType(start[0]) != index {
		return nil, fmt.Errorf("scan %v: start key outside index", index)
	}

	txn := s.db.NewTransaction(false)

	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false // all index columns live in the key
	opts.Prefix = []byte{byte(index)}

	return &BadgerIterator{
		txn:     txn,
		it:      txn.NewIterator(opts),
		start:   start,
		end:     end,
		index:   index,
		encoder: s.encoder,
	}, nil
}

// ScanPrefix returns an iterator over every key of index whose leading
// columns equal parts
func (s *BadgerStore) ScanPrefix(index IndexType, parts ...graph.ObjectID) (Iterator, error) {
	start, end := s.encoder.EncodePrefixRange(index, parts...)
	return s.Scan(index, start, end)
}

// CountKeys counts keys in [start, end) without decoding them
func (s *BadgerStore) CountKeys(index IndexType, start, end []byte) (int64, error) {
	if err := s.ensureOpen(); err != nil {
		return 0, err
	}
	txn := s.db.NewTransaction(false)
	defer txn.Discard()

	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = []byte{byte(index)}

	it := txn.NewIterator(opts)
	defer it.Close()

	var count int64
	for it.Seek(start); it.Valid(); it.Next() {
		if end != nil && bytes.Compare(it.Item().Key(), end) >= 0 {
			break
		}
		count++
	}
	return count, nil
}

// Stats holds entry counts per index
type Stats struct {
	Nodes int64
	Edges int64
	Names int64
}

// Stats counts the entries of the node, edge and name indexes
func (s *BadgerStore) Stats() (Stats, error) {
	var st Stats
	for _, c := range []struct {
		index IndexType
		dst   *int64
	}{
		{NodeIndex, &st.Nodes},
		{EdgeTable, &st.Edges},
		{NameIndex, &st.Names},
	} {
		n, err := s.CountKeys(c.index, []byte{byte(c.index)}, []byte{byte(c.index) + 1})
		if err != nil {
			return Stats{}, fmt.Errorf("count %v: %w", c.index, err)
		}
		*c.dst = n
	}
	return st, nil
}

// BadgerIterator implements Iterator for BadgerDB
type BadgerIterator struct {
	txn     *badger.Txn
	it      *badger.Iterator
	start   []byte
	end     []byte
	index   IndexType
	encoder KeyEncoder
	valid   bool
	closed  bool
}

// Next advances the iterator
func (i *BadgerIterator) Next() bool {
	if i.closed {
		return false
	}
	if !i.valid {
		// First call - seek to start
		i.it.Seek(i.start)
		i.valid = true
	} else {
		i.it.Next()
	}

	if !i.it.Valid() {
		return false
	}
	if i.end != nil && bytes.Compare(i.it.Item().Key(), i.end) >= 0 {
		return false
	}
	return true
}

// Edge decodes the current key
func (i *BadgerIterator) Edge() (Edge, error) {
	return i.encoder.DecodeKey(i.index, i.it.Item().Key())
}

// Close releases the iterator and its read transaction. Closing twice is a no-op.
func (i *BadgerIterator) Close() error {
	if i.closed {
		return nil
	}
	i.closed = true
	i.it.Close()
	i.txn.Discard()
	return nil
}

// badgerLogger routes badger's output through logrus. Badger is chatty at
// info level, so info is demoted to debug.
type badgerLogger struct {
	*logrus.Entry
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.Entry.Debugf(format, args...)
}
