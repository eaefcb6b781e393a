package storage

import (
	"encoding/binary"
	"fmt"

	"github.com/wbrown/janus-paths/graph"
)

const idSize = 8

// KeyEncoder builds and parses index keys. Every key starts with a 1-byte
// index tag followed by big-endian 8-byte id columns, so byte order matches
// column order.
type KeyEncoder struct{}

// EncodeKey creates the key of an edge in the given index
func (KeyEncoder) EncodeKey(index IndexType, e Edge) []byte {
	switch index {
	case TypeFromTo:
		return encodeIDs(index, e.Type, e.From, e.To, e.ID)
	case ToTypeFrom:
		return encodeIDs(index, e.To, e.Type, e.From, e.ID)
	case EdgeTable:
		return encodeIDs(index, e.ID)
	default:
		panic(fmt.Sprintf("index %v does not hold edges", index))
	}
}

// DecodeKey extracts the edge columns from a key
func (KeyEncoder) DecodeKey(index IndexType, key []byte) (Edge, error) {
	cols := index.Columns()
	if cols == 0 {
		return Edge{}, fmt.Errorf("decode key: unknown index %v", index)
	}
	if len(key) != 1+cols*idSize {
		return Edge{}, fmt.Errorf("decode %v key: expected %d bytes, got %d", index, 1+cols*idSize, len(key))
	}
	if IndexType(key[0]) != index {
		return Edge{}, fmt.Errorf("decode %v key: tag belongs to %v", index, IndexType(key[0]))
	}

	col := func(i int) graph.ObjectID {
		return graph.ObjectID(binary.BigEndian.Uint64(key[1+i*idSize:]))
	}

	switch index {
	case TypeFromTo:
		return Edge{Type: col(0), From: col(1), To: col(2), ID: col(3)}, nil
	case ToTypeFrom:
		return Edge{To: col(0), Type: col(1), From: col(2), ID: col(3)}, nil
	case NodeIndex:
		// Nodes are reported as self-referencing edges without a type
		return Edge{From: col(0), To: col(0)}, nil
	default:
		return Edge{ID: col(0)}, nil
	}
}

// EncodePrefix creates a prefix key for range scans
func (KeyEncoder) EncodePrefix(index IndexType, parts ...graph.ObjectID) []byte {
	return encodeIDs(index, parts...)
}

// EncodePrefixRange creates start and end keys for a prefix scan.
// The end key is exclusive.
func (e KeyEncoder) EncodePrefixRange(index IndexType, parts ...graph.ObjectID) (start, end []byte) {
	start = e.EncodePrefix(index, parts...)

	// End key is start with last byte incremented
	end = make([]byte, len(start))
	copy(end, start)

	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xFF {
			end[i]++
			return start, end[:i+1]
		}
	}
	// All bytes are 0xFF: no upper bound
	return start, nil
}

func encodeIDs(index IndexType, ids ...graph.ObjectID) []byte {
	buf := make([]byte, 1+len(ids)*idSize)
	buf[0] = byte(index)
	for i, id := range ids {
		binary.BigEndian.PutUint64(buf[1+i*idSize:], uint64(id))
	}
	return buf
}

func encodeID(id graph.ObjectID) []byte {
	buf := make([]byte, idSize)
	binary.BigEndian.PutUint64(buf, uint64(id))
	return buf
}

func decodeID(b []byte) graph.ObjectID {
	return graph.ObjectID(binary.BigEndian.Uint64(b))
}

// nameKey is the NameIndex key of a predicate or node name
func nameKey(name string) []byte {
	buf := make([]byte, 1+len(name))
	buf[0] = byte(NameIndex)
	copy(buf[1:], name)
	return buf
}

func encodeEdgeValue(e Edge) []byte {
	buf := make([]byte, 3*idSize)
	binary.BigEndian.PutUint64(buf[0:], uint64(e.Type))
	binary.BigEndian.PutUint64(buf[idSize:], uint64(e.From))
	binary.BigEndian.PutUint64(buf[2*idSize:], uint64(e.To))
	return buf
}

func decodeEdgeValue(id graph.ObjectID, val []byte) (Edge, error) {
	if len(val) != 3*idSize {
		return Edge{}, fmt.Errorf("edge %s: value has %d bytes, expected %d", id, len(val), 3*idSize)
	}
	return Edge{
		ID:   id,
		Type: graph.ObjectID(binary.BigEndian.Uint64(val[0:])),
		From: graph.ObjectID(binary.BigEndian.Uint64(val[idSize:])),
		To:   graph.ObjectID(binary.BigEndian.Uint64(val[2*idSize:])),
	}, nil
}
