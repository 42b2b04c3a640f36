// Package memorydb is a map-backed keyValueDb used by tests and by the
// "memory" database backend.
package memorydb

import (
	"bytes"
	"context"
	"sort"
	"sync"

	"github.com/LeJamon/goBountySplit/internal/storage/keyValueDb"
)

type DB struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed bool
}

func New() *DB {
	return &DB{data: make(map[string][]byte)}
}

func (m *DB) Read(ctx context.Context, key []byte) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, keyValueDb.ErrDBClosed
	}
	v, ok := m.data[string(key)]
	if !ok {
		return nil, keyValueDb.ErrNotFound
	}
	return bytes.Clone(v), nil
}

func (m *DB) Write(ctx context.Context, key, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return keyValueDb.ErrDBClosed
	}
	m.data[string(key)] = bytes.Clone(value)
	return nil
}

func (m *DB) Delete(ctx context.Context, key []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return keyValueDb.ErrDBClosed
	}
	delete(m.data, string(key))
	return nil
}

func (m *DB) Has(ctx context.Context, key []byte) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return false, keyValueDb.ErrDBClosed
	}
	_, ok := m.data[string(key)]
	return ok, nil
}

func (m *DB) Batch(ctx context.Context, ops []keyValueDb.BatchOperation) error {
	for _, op := range ops {
		if op.Type != keyValueDb.BatchPut && op.Type != keyValueDb.BatchDelete {
			return keyValueDb.ErrUnknownBatchOp
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return keyValueDb.ErrDBClosed
	}
	for _, op := range ops {
		if op.Type == keyValueDb.BatchPut {
			m.data[string(op.Key)] = bytes.Clone(op.Value)
		} else {
			delete(m.data, string(op.Key))
		}
	}
	return nil
}

// Iterator snapshots the matching range at creation time.
func (m *DB) Iterator(ctx context.Context, start, end []byte) (keyValueDb.Iterator, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, keyValueDb.ErrDBClosed
	}

	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		kb := []byte(k)
		if start != nil && bytes.Compare(kb, start) < 0 {
			continue
		}
		if end != nil && bytes.Compare(kb, end) >= 0 {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	it := &iterator{pos: -1}
	for _, k := range keys {
		it.keys = append(it.keys, []byte(k))
		it.values = append(it.values, bytes.Clone(m.data[k]))
	}
	return it, nil
}

func (m *DB) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Len returns the number of stored keys.
func (m *DB) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

type iterator struct {
	keys   [][]byte
	values [][]byte
	pos    int
}

func (it *iterator) Next() bool {
	if it.pos+1 >= len(it.keys) {
		it.pos = len(it.keys)
		return false
	}
	it.pos++
	return true
}

func (it *iterator) Key() []byte   { return it.keys[it.pos] }
func (it *iterator) Value() []byte { return it.values[it.pos] }
func (it *iterator) Error() error  { return nil }
func (it *iterator) Close() error  { return nil }
