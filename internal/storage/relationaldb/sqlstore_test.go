package relationaldb

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goBountySplit/internal/core/types"
)

func openTestStore(t *testing.T) *SQLStore {
	t.Helper()
	store, err := Open(context.Background(), SQLiteConfig(filepath.Join(t.TempDir(), "history.db")))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func identity(b byte) types.Identity {
	var id types.Identity
	id[0] = 0x02
	id[32] = b
	return id
}

func entry(b byte, account types.Identity) *TxEntry {
	var h types.Hash256
	h[0] = b
	return &TxEntry{
		Hash:            h,
		TransactionType: "FundEscrow",
		Account:         account,
		Result:          "tesSUCCESS",
		RawTxn:          []byte(`{"TransactionType":"FundEscrow"}`),
		Meta:            []byte(`{}`),
		AppliedAt:       time.Unix(1700000000+int64(b), 0).UTC(),
	}
}

func TestSaveAndGetTransaction(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	alice := identity(1)

	e := entry(1, alice)
	require.NoError(t, store.SaveTransaction(ctx, e, []types.Identity{alice}))
	assert.NotZero(t, e.Seq)

	got, err := store.GetTransaction(ctx, e.Hash)
	require.NoError(t, err)
	assert.Equal(t, e.Hash, got.Hash)
	assert.Equal(t, alice, got.Account)
	assert.Equal(t, e.RawTxn, got.RawTxn)
	assert.Equal(t, e.AppliedAt, got.AppliedAt)

	assert.ErrorIs(t, store.SaveTransaction(ctx, entry(1, alice), nil), ErrDuplicateEntry)

	_, err = store.GetTransaction(ctx, types.Hash256{0xFF})
	assert.ErrorIs(t, err, ErrTransactionNotFound)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestAccountTransactionsPaging(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	alice, bob := identity(1), identity(2)

	for i := byte(1); i <= 5; i++ {
		accounts := []types.Identity{alice, alice}
		if i%2 == 0 {
			accounts = append(accounts, bob)
		}
		require.NoError(t, store.SaveTransaction(ctx, entry(i, alice), accounts))
	}

	page, err := store.GetAccountTransactions(ctx, AccountTxOptions{Account: alice, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Transactions, 2)
	assert.Equal(t, byte(5), page.Transactions[0].Hash[0])
	assert.Equal(t, byte(4), page.Transactions[1].Hash[0])
	require.NotZero(t, page.Marker)

	next, err := store.GetAccountTransactions(ctx, AccountTxOptions{Account: alice, Limit: 2, Marker: page.Marker})
	require.NoError(t, err)
	require.Len(t, next.Transactions, 2)
	assert.Equal(t, byte(3), next.Transactions[0].Hash[0])

	last, err := store.GetAccountTransactions(ctx, AccountTxOptions{Account: alice, Limit: 2, Marker: next.Marker})
	require.NoError(t, err)
	require.Len(t, last.Transactions, 1)
	assert.Zero(t, last.Marker)

	forward, err := store.GetAccountTransactions(ctx, AccountTxOptions{Account: bob, Forward: true})
	require.NoError(t, err)
	require.Len(t, forward.Transactions, 2)
	assert.Equal(t, byte(2), forward.Transactions[0].Hash[0])
	assert.Equal(t, byte(4), forward.Transactions[1].Hash[0])

	_, err = store.GetAccountTransactions(ctx, AccountTxOptions{Account: bob, Limit: MaxAccountTxLimit + 1})
	assert.ErrorIs(t, err, ErrInvalidLimit)
}

func TestClosedStore(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.Close())
	_, err := store.GetTransaction(context.Background(), types.Hash256{1})
	assert.ErrorIs(t, err, ErrDatabaseClosed)
}

func TestConfigValidate(t *testing.T) {
	c := NewConfig()
	c.Driver = "sqlite3"
	require.NoError(t, c.Validate())
	assert.Equal(t, DriverSQLite, c.Driver)

	c = PostgresConfig("postgres://bounty@localhost/bounty")
	c.Driver = "postgresql"
	require.NoError(t, c.Validate())
	assert.Equal(t, DriverPostgres, c.Driver)
	assert.NotContains(t, c.String(), "bounty@localhost")

	c = NewConfig()
	c.Driver = "mysql"
	assert.ErrorIs(t, c.Validate(), ErrInvalidDriver)

	c = NewConfig()
	c.DSN = ""
	assert.ErrorIs(t, c.Validate(), ErrMissingDSN)

	c = NewConfig()
	c.MaxIdleConns = 4
	assert.ErrorIs(t, c.Validate(), ErrMaxIdleExceedsMaxOpen)
}

func TestRebind(t *testing.T) {
	pg := &SQLStore{dialect: dialects[DriverPostgres]}
	assert.Equal(t, "a = $1 AND b = $2", pg.rebind("a = ? AND b = ?"))

	lite := &SQLStore{dialect: dialects[DriverSQLite]}
	assert.Equal(t, "a = ? AND b = ?", lite.rebind("a = ? AND b = ?"))
}
