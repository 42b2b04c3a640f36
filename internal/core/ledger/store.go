package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/LeJamon/goBountySplit/internal/core/ledger/keylet"
	"github.com/LeJamon/goBountySplit/internal/core/tx"
	"github.com/LeJamon/goBountySplit/internal/storage/keyValueDb"
)

// DefaultCacheEntries is used when StoreConfig.CacheEntries is zero.
const DefaultCacheEntries = 4096

// StoreConfig holds configuration for Store
type StoreConfig struct {
	// CacheEntries is the size of the read cache in entries
	CacheEntries int

	Logger *zap.Logger
}

// Store is a persistent ledger view over a keyValueDb. Entries are keyed
// by their 32-byte keylet key. Recently read entries are kept in an LRU
// cache which is updated after every successful write.
type Store struct {
	mu     sync.RWMutex
	db     keyValueDb.DB
	cache  *lru.Cache[[32]byte, []byte]
	logger *zap.Logger

	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewStore creates a Store over db.
func NewStore(db keyValueDb.DB, config StoreConfig) (*Store, error) {
	if config.CacheEntries <= 0 {
		config.CacheEntries = DefaultCacheEntries
	}
	cache, err := lru.New[[32]byte, []byte](config.CacheEntries)
	if err != nil {
		return nil, err
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{db: db, cache: cache, logger: logger.Named("store")}, nil
}

func (s *Store) Read(k keylet.Keylet) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read(k.Key)
}

func (s *Store) read(key [32]byte) ([]byte, error) {
	if data, ok := s.cache.Get(key); ok {
		s.hits.Add(1)
		return data, nil
	}
	s.misses.Add(1)

	data, err := s.db.Read(context.Background(), key[:])
	if errors.Is(err, keyValueDb.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read ledger entry %x: %w", key, err)
	}
	s.cache.Add(key, data)
	return data, nil
}

func (s *Store) Exists(k keylet.Keylet) (bool, error) {
	data, err := s.Read(k)
	return data != nil, err
}

func (s *Store) Insert(k keylet.Keylet, data []byte) error {
	return s.write(k.Key, data, true)
}

func (s *Store) Update(k keylet.Keylet, data []byte) error {
	return s.write(k.Key, data, false)
}

func (s *Store) write(key [32]byte, data []byte, insert bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.read(key)
	if err != nil {
		return err
	}
	if insert && existing != nil {
		return ErrEntryExists
	}
	if !insert && existing == nil {
		return ErrEntryNotFound
	}
	if err := s.db.Write(context.Background(), key[:], data); err != nil {
		return fmt.Errorf("write ledger entry %x: %w", key, err)
	}
	s.cache.Add(key, data)
	return nil
}

func (s *Store) Erase(k keylet.Keylet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.read(k.Key)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrEntryNotFound
	}
	if err := s.db.Delete(context.Background(), k.Key[:]); err != nil {
		return fmt.Errorf("delete ledger entry %x: %w", k.Key, err)
	}
	s.cache.Remove(k.Key)
	return nil
}

// ForEach walks every entry in key order.
func (s *Store) ForEach(fn func(key [32]byte, data []byte) bool) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	it, err := s.db.Iterator(context.Background(), nil, nil)
	if err != nil {
		return err
	}
	defer it.Close()

	for it.Next() {
		raw := it.Key()
		if len(raw) != 32 {
			continue
		}
		var key [32]byte
		copy(key[:], raw)
		if !fn(key, it.Value()) {
			break
		}
	}
	return it.Error()
}

// Commit writes changes in a single batch.
func (s *Store) Commit(changes []tx.Change) error {
	if len(changes) == 0 {
		return nil
	}

	ops := make([]keyValueDb.BatchOperation, 0, len(changes))
	for _, c := range changes {
		key := c.Key
		if c.Action == tx.ActionErase {
			ops = append(ops, keyValueDb.BatchOperation{Type: keyValueDb.BatchDelete, Key: key[:]})
			continue
		}
		ops = append(ops, keyValueDb.BatchOperation{Type: keyValueDb.BatchPut, Key: key[:], Value: c.Data})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.Batch(context.Background(), ops); err != nil {
		return fmt.Errorf("commit %d ledger changes: %w", len(changes), err)
	}
	for _, c := range changes {
		if c.Action == tx.ActionErase {
			s.cache.Remove(c.Key)
		} else {
			s.cache.Add(c.Key, c.Data)
		}
	}
	s.logger.Debug("committed ledger changes", zap.Int("changes", len(changes)))
	return nil
}

// CacheStats returns read cache hits and misses.
func (s *Store) CacheStats() (hits, misses uint64) {
	return s.hits.Load(), s.misses.Load()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Purge()
	return s.db.Close()
}
