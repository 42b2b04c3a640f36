package tx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goBountySplit/internal/core/tx/sle"
	"github.com/LeJamon/goBountySplit/internal/core/types"
)

func TestStateTableReadsThrough(t *testing.T) {
	base := mapView{}
	k, data := testHolding(t, 1, 10)
	require.NoError(t, base.Insert(k, data))

	table := NewApplyStateTable(base, types.Hash256{1})
	got, err := table.Read(k)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	_, updated := testHolding(t, 1, 20)
	require.NoError(t, table.Update(k, updated))

	got, err = table.Read(k)
	require.NoError(t, err)
	assert.Equal(t, updated, got)
	assert.Equal(t, data, base[k.Key], "base untouched before Apply")
}

func TestStateTableInsertEraseRules(t *testing.T) {
	base := mapView{}
	k, data := testHolding(t, 1, 10)
	table := NewApplyStateTable(base, types.Hash256{1})

	require.Error(t, table.Update(k, data))
	require.Error(t, table.Erase(k))

	require.NoError(t, table.Insert(k, data))
	require.Error(t, table.Insert(k, data))

	// insert then erase leaves nothing to commit
	require.NoError(t, table.Erase(k))
	ok, err := table.Exists(k)
	require.NoError(t, err)
	assert.False(t, ok)

	meta, err := table.Apply()
	require.NoError(t, err)
	assert.Empty(t, meta.AffectedNodes)
	assert.Empty(t, base)
}

func TestStateTableMetadata(t *testing.T) {
	base := mapView{}
	k1, d1 := testHolding(t, 1, 10)
	k2, d2 := testHolding(t, 2, 20)
	k3, d3 := testHolding(t, 3, 30)
	require.NoError(t, base.Insert(k1, d1))
	require.NoError(t, base.Insert(k2, d2))

	txHash := types.Hash256{0xCD}
	table := NewApplyStateTable(base, txHash)
	_, d1b := testHolding(t, 1, 15)
	require.NoError(t, table.Update(k1, d1b))
	require.NoError(t, table.Erase(k2))
	require.NoError(t, table.Insert(k3, d3))

	meta, err := table.Apply()
	require.NoError(t, err)
	require.Len(t, meta.AffectedNodes, 3)

	byType := map[string]AffectedNode{}
	for _, n := range meta.AffectedNodes {
		assert.Equal(t, "Holding", n.LedgerEntryType)
		byType[n.NodeType] = n
	}

	modified := byType["ModifiedNode"]
	assert.EqualValues(t, 15, modified.FinalFields["balance"])
	assert.EqualValues(t, 10, modified.PreviousFields["balance"])
	assert.NotContains(t, modified.PreviousFields, "previous_txn_id")

	assert.Contains(t, byType, "CreatedNode")
	assert.Contains(t, byType, "DeletedNode")

	assert.NotContains(t, base, k2.Key)
	h, err := sle.ParseHolding(base[k3.Key])
	require.NoError(t, err)
	assert.Equal(t, txHash, h.PreviousTxnID)
}

func TestStateTableUnchangedUpdateIsSkipped(t *testing.T) {
	base := mapView{}
	k, data := testHolding(t, 1, 10)
	require.NoError(t, base.Insert(k, data))

	table := NewApplyStateTable(base, types.Hash256{1})
	require.NoError(t, table.Update(k, data))
	meta, err := table.Apply()
	require.NoError(t, err)
	assert.Empty(t, meta.AffectedNodes)
	assert.Equal(t, data, base[k.Key])
}

func TestStateTableForEachMerges(t *testing.T) {
	base := mapView{}
	k1, d1 := testHolding(t, 1, 10)
	k2, d2 := testHolding(t, 2, 20)
	k3, d3 := testHolding(t, 3, 30)
	require.NoError(t, base.Insert(k1, d1))
	require.NoError(t, base.Insert(k2, d2))

	table := NewApplyStateTable(base, types.Hash256{1})
	require.NoError(t, table.Erase(k1))
	require.NoError(t, table.Insert(k3, d3))

	seen := map[[32]byte][]byte{}
	require.NoError(t, table.ForEach(func(key [32]byte, data []byte) bool {
		seen[key] = data
		return true
	}))
	assert.Equal(t, map[[32]byte][]byte{k2.Key: d2, k3.Key: d3}, seen)
}
