package keyValueDb

import (
	"context"
	"fmt"

	"github.com/LeJamon/goBountySplit/internal/storage/compression"
)

// CompressedDB compresses values on the way in and decompresses them on
// the way out. Keys are stored as-is so iteration order is preserved.
type CompressedDB struct {
	DB
	compressor compression.Compressor
}

// Compressed wraps db with compressor. The "none" compressor returns db
// unchanged.
func Compressed(db DB, compressor compression.Compressor) DB {
	if compressor == nil || compressor.Name() == "none" {
		return db
	}
	return &CompressedDB{DB: db, compressor: compressor}
}

func (c *CompressedDB) Read(ctx context.Context, key []byte) ([]byte, error) {
	data, err := c.DB.Read(ctx, key)
	if err != nil {
		return nil, err
	}
	out, err := c.compressor.Decompress(data)
	if err != nil {
		return nil, fmt.Errorf("decompress %x: %w", key, err)
	}
	return out, nil
}

func (c *CompressedDB) Write(ctx context.Context, key []byte, value []byte) error {
	data, err := c.compressor.Compress(value, 0)
	if err != nil {
		return fmt.Errorf("compress %x: %w", key, err)
	}
	return c.DB.Write(ctx, key, data)
}

func (c *CompressedDB) Batch(ctx context.Context, ops []BatchOperation) error {
	packed := make([]BatchOperation, len(ops))
	for i, op := range ops {
		packed[i] = op
		if op.Type != BatchPut {
			continue
		}
		data, err := c.compressor.Compress(op.Value, 0)
		if err != nil {
			return fmt.Errorf("compress %x: %w", op.Key, err)
		}
		packed[i].Value = data
	}
	return c.DB.Batch(ctx, packed)
}

func (c *CompressedDB) Iterator(ctx context.Context, start, end []byte) (Iterator, error) {
	it, err := c.DB.Iterator(ctx, start, end)
	if err != nil {
		return nil, err
	}
	return &decompressingIterator{Iterator: it, compressor: c.compressor}, nil
}

type decompressingIterator struct {
	Iterator
	compressor compression.Compressor
	value      []byte
	err        error
}

func (it *decompressingIterator) Next() bool {
	if it.err != nil || !it.Iterator.Next() {
		return false
	}
	it.value, it.err = it.compressor.Decompress(it.Iterator.Value())
	return it.err == nil
}

func (it *decompressingIterator) Value() []byte {
	return it.value
}

func (it *decompressingIterator) Error() error {
	if it.err != nil {
		return it.err
	}
	return it.Iterator.Error()
}
