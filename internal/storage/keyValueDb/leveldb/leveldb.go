// Package leveldb is the syndtr/goleveldb keyValueDb backend.
package leveldb

import (
	"context"
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/LeJamon/goBountySplit/internal/storage/keyValueDb"
)

type DB struct {
	db *leveldb.DB
}

// Open opens or creates a leveldb database in dir.
func Open(dir string, cacheSizeMB int) (*DB, error) {
	opts := &opt.Options{}
	if cacheSizeMB > 0 {
		opts.BlockCacheCapacity = cacheSizeMB * opt.MiB
	}
	db, err := leveldb.OpenFile(dir, opts)
	if err != nil {
		return nil, fmt.Errorf("open leveldb at %s: %w", dir, err)
	}
	return &DB{db: db}, nil
}

func mapErr(err error) error {
	switch {
	case errors.Is(err, leveldb.ErrNotFound):
		return keyValueDb.ErrNotFound
	case errors.Is(err, leveldb.ErrClosed):
		return keyValueDb.ErrDBClosed
	default:
		return err
	}
}

func (l *DB) Read(ctx context.Context, key []byte) ([]byte, error) {
	v, err := l.db.Get(key, nil)
	if err != nil {
		return nil, mapErr(err)
	}
	return v, nil
}

func (l *DB) Write(ctx context.Context, key, value []byte) error {
	return mapErr(l.db.Put(key, value, &opt.WriteOptions{Sync: true}))
}

func (l *DB) Delete(ctx context.Context, key []byte) error {
	return mapErr(l.db.Delete(key, &opt.WriteOptions{Sync: true}))
}

func (l *DB) Has(ctx context.Context, key []byte) (bool, error) {
	ok, err := l.db.Has(key, nil)
	return ok, mapErr(err)
}

func (l *DB) Batch(ctx context.Context, ops []keyValueDb.BatchOperation) error {
	batch := new(leveldb.Batch)
	for _, op := range ops {
		switch op.Type {
		case keyValueDb.BatchPut:
			batch.Put(op.Key, op.Value)
		case keyValueDb.BatchDelete:
			batch.Delete(op.Key)
		default:
			return fmt.Errorf("%w: %d", keyValueDb.ErrUnknownBatchOp, op.Type)
		}
	}
	return mapErr(l.db.Write(batch, &opt.WriteOptions{Sync: true}))
}

func (l *DB) Iterator(ctx context.Context, start, end []byte) (keyValueDb.Iterator, error) {
	it := l.db.NewIterator(&util.Range{Start: start, Limit: end}, nil)
	return &iterator{it: it}, nil
}

func (l *DB) Close() error {
	return l.db.Close()
}

type iterator struct {
	it interface {
		Next() bool
		Key() []byte
		Value() []byte
		Error() error
		Release()
	}
}

func (i *iterator) Next() bool { return i.it.Next() }

func (i *iterator) Key() []byte { return append([]byte(nil), i.it.Key()...) }

func (i *iterator) Value() []byte { return append([]byte(nil), i.it.Value()...) }

func (i *iterator) Error() error { return i.it.Error() }

func (i *iterator) Close() error {
	i.it.Release()
	return nil
}
