// Package kvtest holds the behaviour every keyValueDb backend must share.
package kvtest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goBountySplit/internal/storage/keyValueDb"
)

// Run exercises db. The database must be empty.
func Run(t *testing.T, db keyValueDb.DB) {
	ctx := context.Background()

	t.Run("ReadWriteDelete", func(t *testing.T) {
		key := []byte("lifecycle-test")

		_, err := db.Read(ctx, key)
		require.ErrorIs(t, err, keyValueDb.ErrNotFound)

		require.NoError(t, db.Write(ctx, key, []byte("test-value")))
		got, err := db.Read(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, []byte("test-value"), got)

		ok, err := db.Has(ctx, key)
		require.NoError(t, err)
		assert.True(t, ok)

		require.NoError(t, db.Delete(ctx, key))
		ok, err = db.Has(ctx, key)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Batch", func(t *testing.T) {
		ops := []keyValueDb.BatchOperation{
			{Type: keyValueDb.BatchPut, Key: []byte("batch1"), Value: []byte("value1")},
			{Type: keyValueDb.BatchPut, Key: []byte("batch2"), Value: []byte("value2")},
			{Type: keyValueDb.BatchDelete, Key: []byte("batch1")},
		}
		require.NoError(t, db.Batch(ctx, ops))

		_, err := db.Read(ctx, []byte("batch1"))
		assert.ErrorIs(t, err, keyValueDb.ErrNotFound)

		value, err := db.Read(ctx, []byte("batch2"))
		require.NoError(t, err)
		assert.Equal(t, []byte("value2"), value)

		bad := []keyValueDb.BatchOperation{{Type: keyValueDb.BatchOpType(9), Key: []byte("x")}}
		assert.ErrorIs(t, db.Batch(ctx, bad), keyValueDb.ErrUnknownBatchOp)
	})

	t.Run("Iterator", func(t *testing.T) {
		for _, k := range []string{"iter1", "iter2", "iter3"} {
			require.NoError(t, db.Write(ctx, []byte(k), []byte("v-"+k)))
		}

		iter, err := db.Iterator(ctx, []byte("iter1"), []byte("iter3"))
		require.NoError(t, err)
		defer func() { require.NoError(t, iter.Close()) }()

		var keys []string
		for iter.Next() {
			keys = append(keys, string(iter.Key()))
			assert.Equal(t, "v-"+string(iter.Key()), string(iter.Value()))
		}
		require.NoError(t, iter.Error())
		assert.Equal(t, []string{"iter1", "iter2"}, keys)
	})

	t.Run("ConcurrentAccess", func(t *testing.T) {
		const workers = 8
		const perWorker = 50

		var wg sync.WaitGroup
		errCh := make(chan error, workers)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(id int) {
				defer wg.Done()
				for j := 0; j < perWorker; j++ {
					key := []byte(fmt.Sprintf("concurrent-%d-%d", id, j))
					if err := db.Write(ctx, key, key); err != nil {
						errCh <- err
						return
					}
					if _, err := db.Read(ctx, key); err != nil {
						errCh <- err
						return
					}
				}
			}(i)
		}
		wg.Wait()
		close(errCh)
		for err := range errCh {
			t.Error(err)
		}
	})

	t.Run("Close", func(t *testing.T) {
		require.NoError(t, db.Close())
		_, err := db.Read(ctx, []byte("batch2"))
		assert.Error(t, err)
	})
}
