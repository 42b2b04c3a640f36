package ledger

import (
	"bytes"
	"sort"
	"sync"

	"github.com/LeJamon/goBountySplit/internal/core/ledger/keylet"
	"github.com/LeJamon/goBountySplit/internal/core/tx"
)

// Memory is a map-backed ledger view.
type Memory struct {
	mu      sync.RWMutex
	entries map[[32]byte][]byte
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[[32]byte][]byte)}
}

func (m *Memory) Read(k keylet.Keylet) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.entries[k.Key]
	if !ok {
		return nil, nil
	}
	return bytes.Clone(data), nil
}

func (m *Memory) Exists(k keylet.Keylet) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.entries[k.Key]
	return ok, nil
}

func (m *Memory) Insert(k keylet.Keylet, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[k.Key]; ok {
		return ErrEntryExists
	}
	m.entries[k.Key] = bytes.Clone(data)
	return nil
}

func (m *Memory) Update(k keylet.Keylet, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[k.Key]; !ok {
		return ErrEntryNotFound
	}
	m.entries[k.Key] = bytes.Clone(data)
	return nil
}

func (m *Memory) Erase(k keylet.Keylet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[k.Key]; !ok {
		return ErrEntryNotFound
	}
	delete(m.entries, k.Key)
	return nil
}

// ForEach visits entries in key order over a snapshot, so fn may call
// back into the view.
func (m *Memory) ForEach(fn func(key [32]byte, data []byte) bool) error {
	snap := m.Snapshot()
	keys := make([][32]byte, 0, len(snap))
	for k := range snap {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return bytes.Compare(keys[i][:], keys[j][:]) < 0 })
	for _, k := range keys {
		if !fn(k, snap[k]) {
			return nil
		}
	}
	return nil
}

// Commit applies changes under one lock.
func (m *Memory) Commit(changes []tx.Change) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range changes {
		if c.Action == tx.ActionErase {
			delete(m.entries, c.Key)
			continue
		}
		m.entries[c.Key] = bytes.Clone(c.Data)
	}
	return nil
}

// Snapshot returns a copy of every entry.
func (m *Memory) Snapshot() map[[32]byte][]byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[[32]byte][]byte, len(m.entries))
	for k, v := range m.entries {
		out[k] = bytes.Clone(v)
	}
	return out
}

// Len returns the number of entries.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
